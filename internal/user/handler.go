// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/me", h.GetMe)
		r.Put("/me", h.UpdateMe)
		r.Put("/me/playlist", h.UpdatePlaylist)
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetProfile(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, ToProfileResponse(profile))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, ToProfileResponse(profile))
}

func (h *Handler) UpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req UpdatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "resources must be resource ids or {id} objects")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	profile, err := h.service.ReplacePlaylist(r.Context(), middleware.GetUserID(r.Context()), req.Resources)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.BadRequest(w, "playlist references an unknown resource")
			return
		}
		writeUserError(w, err)
		return
	}

	core.OK(w, ToProfileResponse(profile))
}

// RegisterAdminRoutes mounts user management under r, which the caller
// has already restricted to admins.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Get("/{userID}", h.GetUser)
		r.Put("/{userID}/role", h.UpdateUserRole)
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "limit", 20),
		Search:   r.URL.Query().Get("search"),
		Role:     r.URL.Query().Get("role"),
	}
	params.Normalize()

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToUserResponseList(users), params.Page, params.PageSize, total)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), id)
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, ToProfileResponse(profile))
}

func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	profile, err := h.service.UpdateUserRole(r.Context(), id, req.Role)
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, ToProfileResponse(profile))
}

// userIDParam answers 404 for path ids that cannot name a user.
func userIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "userID")
	if _, err := uuid.Parse(id); err != nil {
		core.NotFound(w, "User not found")
		return "", false
	}
	return id, true
}

func writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "User not found")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid request")
	default:
		core.InternalServerError(w, err)
	}
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
