package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/morningistar/study-buddy/internal/middleware"
	authservice "github.com/morningistar/study-buddy/internal/service/auth"
	"github.com/morningistar/study-buddy/pkg/utils"
)

// Handler exposes account registration, login and logout.
type Handler struct {
	authSvc *authservice.Service
	logger  *zap.Logger
}

// New creates the auth handler.
func New(authSvc *authservice.Service, logger *zap.Logger) *Handler {
	return &Handler{authSvc: authSvc, logger: logger}
}

// RegisterRoutes mounts the auth routes. These are the only unauthenticated
// API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
}

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, token, err := h.authSvc.Register(r.Context(), payload.Email, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, authservice.ErrEmailRequired), errors.Is(err, authservice.ErrPasswordTooShort):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, authservice.ErrEmailTaken):
			utils.RespondError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("registration failed", zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"user":  u,
		"token": token.Value,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.authSvc.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, authservice.ErrInvalidCredentials) {
			utils.RespondError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"token": token.Value})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		utils.RespondError(w, http.StatusBadRequest, "missing token")
		return
	}

	if err := h.authSvc.Logout(r.Context(), token); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
