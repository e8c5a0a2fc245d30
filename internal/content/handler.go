// AngelaMos | 2026
// handler.go

package content

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/asmr-backend/internal/core"
	"github.com/carterperez-dev/asmr-backend/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the catalog under /content. Each extra func is
// called with the /content router so related handlers can hang routes off
// a resource id.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, optionalAuth func(http.Handler) http.Handler,
	extra ...func(chi.Router),
) {
	r.Route("/content", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/list", h.List)
			r.Get("/{id}", h.Get)
		})

		r.With(authenticator).Post("/purchase/{id}", h.Purchase)

		for _, mount := range extra {
			mount(r)
		}
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListParams{
		Page:   parsePositiveInt(q.Get("page")),
		Limit:  parsePositiveInt(q.Get("limit")),
		Sort:   q.Get("sort"),
		Search: q.Get("search"),
	}

	page, err := h.service.List(r.Context(), params, middleware.GetUserRole(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, page)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	resource, err := h.service.Get(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserRole(r.Context()),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resource)
}

func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Purchase(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, resp)
}

// parsePositiveInt returns 0 for anything that is not a positive integer so
// the caller's defaults apply.
func parsePositiveInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
