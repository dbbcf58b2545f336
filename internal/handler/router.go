package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	authhandler "github.com/morningistar/study-buddy/internal/handler/auth"
	chathandler "github.com/morningistar/study-buddy/internal/handler/chat"
	studyhandler "github.com/morningistar/study-buddy/internal/handler/study"
	"github.com/morningistar/study-buddy/internal/middleware"
	"github.com/morningistar/study-buddy/internal/model/study"
	"github.com/morningistar/study-buddy/internal/realtime"
	authservice "github.com/morningistar/study-buddy/internal/service/auth"
	chatservice "github.com/morningistar/study-buddy/internal/service/chat"
)

// Deps carries everything the router wires together.
type Deps struct {
	AuthService   *authservice.Service
	ChatService   *chatservice.Service
	StudyContent  study.Store
	Hub           *realtime.Hub
	Conversations realtime.ConversationGetter
	Logger        *zap.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS)

	authHandler := authhandler.New(deps.AuthService, deps.Logger)
	chatHandler := chathandler.New(deps.ChatService, deps.Logger)
	studyHandler := studyhandler.New(deps.StudyContent)

	r.Route("/api", func(api chi.Router) {
		authHandler.RegisterRoutes(api)

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth(deps.AuthService))

			chatHandler.RegisterRoutes(protected)
			studyHandler.RegisterRoutes(protected)

			protected.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
				userID := middleware.UserIDFromContext(r.Context())
				realtime.ServeWS(deps.Hub, deps.Conversations, userID, w, r)
			})
		})
	})

	return r
}
