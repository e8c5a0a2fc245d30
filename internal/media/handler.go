// AngelaMos | 2026
// handler.go

package media

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/asmr-backend/internal/core"
	"github.com/carterperez-dev/asmr-backend/internal/middleware"
)

type AudioURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresIn"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router, authenticator func(http.Handler) http.Handler) {
	r.Route("/media", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Get("/audio/{id}", h.GetAudioURL)
	})
}

func (h *Handler) GetAudioURL(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetAudioURL(
		r.Context(),
		chi.URLParam(r, "id"),
		r.URL.Query().Get("filename"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.service.List(r.Context(), middleware.GetUserRole(r.Context()), q.Get("type"), page, limit)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, result)
}
