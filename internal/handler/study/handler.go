package study

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/morningistar/study-buddy/internal/model/study"
	"github.com/morningistar/study-buddy/pkg/utils"
)

// Handler serves the static study content lookups.
type Handler struct {
	content study.Store
}

// New creates the study content handler.
func New(content study.Store) *Handler {
	return &Handler{content: content}
}

// RegisterRoutes mounts the study routes; callers must place them behind the
// auth middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/study/tips", h.handleListTips)
	r.Get("/study/resources", h.handleListResources)
}

func (h *Handler) handleListTips(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	utils.RespondJSON(w, http.StatusOK, h.content.Tips(topic))
}

func (h *Handler) handleListResources(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	utils.RespondJSON(w, http.StatusOK, h.content.Resources(topic))
}
