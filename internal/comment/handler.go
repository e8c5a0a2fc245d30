// AngelaMos | 2026
// handler.go

package comment

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/asmr-backend/internal/core"
	"github.com/carterperez-dev/asmr-backend/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the thread endpoints relative to a resource route,
// so r is expected to be the /content router.
func (h *Handler) RegisterRoutes(r chi.Router, authenticator func(http.Handler) http.Handler) {
	r.Get("/{id}/comments", h.Thread)
	r.With(authenticator).Post("/{id}/comments", h.Create)
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/comments", h.List)
	r.Put("/comments/{commentID}/status", h.UpdateStatus)
}

func (h *Handler) Thread(w http.ResponseWriter, r *http.Request) {
	thread, err := h.service.Thread(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, thread)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.service.Create(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.service.List(r.Context(), ListParams{
		Status: Status(q.Get("status")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, result)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "commentID"), Status(req.Status))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}
