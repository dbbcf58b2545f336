package chat

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/morningistar/study-buddy/internal/middleware"
	chatservice "github.com/morningistar/study-buddy/internal/service/chat"
	"github.com/morningistar/study-buddy/pkg/utils"
)

// Handler exposes conversation and message access over HTTP.
type Handler struct {
	chatSvc *chatservice.Service
	logger  *zap.Logger
}

// New creates the chat handler.
func New(chatSvc *chatservice.Service, logger *zap.Logger) *Handler {
	return &Handler{chatSvc: chatSvc, logger: logger}
}

// RegisterRoutes mounts the chat routes; callers must place them behind the
// auth middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/conversations", h.handleListConversations)
	r.Post("/conversations", h.handleCreateConversation)
	r.Get("/conversations/{conversationID}/messages", h.handleListMessages)
	r.Post("/conversations/{conversationID}/messages", h.handleSendMessage)
}

func (h *Handler) handleListConversations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	conversations, err := h.chatSvc.ListConversations(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, conversations)
}

func (h *Handler) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var payload struct {
		Title string `json:"title"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conversation, err := h.chatSvc.CreateConversation(r.Context(), userID, payload.Title)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, conversation)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	conversationID := chi.URLParam(r, "conversationID")

	messages, err := h.chatSvc.ListMessages(r.Context(), userID, conversationID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	conversationID := chi.URLParam(r, "conversationID")

	var payload struct {
		Content string `json:"content"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Returns as soon as the user message is committed; the assistant reply
	// arrives later through the message listing and the realtime feed.
	message, err := h.chatSvc.SendMessage(r.Context(), userID, conversationID, payload.Content)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusAccepted, message)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatservice.ErrUnauthenticated):
		utils.RespondError(w, http.StatusUnauthorized, "unauthenticated")
	case errors.Is(err, chatservice.ErrConversationNotFound):
		utils.RespondError(w, http.StatusNotFound, "conversation not found")
	default:
		h.logger.Error("chat request failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
