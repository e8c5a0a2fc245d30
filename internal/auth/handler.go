// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/asmr-backend/internal/core"
	"github.com/carterperez-dev/asmr-backend/internal/middleware"
)

type Handler struct {
	service *Service
	cookies *SessionCookies
}

func NewHandler(service *Service, cookies *SessionCookies) *Handler {
	return &Handler{service: service, cookies: cookies}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
		r.With(optionalAuth).Post("/logout", h.Logout)
		r.With(authenticator).Get("/me", h.GetMe)
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid email address")
		return
	}

	session, err := h.service.Register(r.Context(), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	h.cookies.Set(w, session.Token.Token, session.Token.ExpiresAt)
	core.Created(w, UserEnvelope{User: toUserResponse(session.User)})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Email and password are required")
		return
	}

	session, err := h.service.Login(r.Context(), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	h.cookies.Set(w, session.Token.Token, session.Token.ExpiresAt)
	core.OK(w, LoginResponse{
		User: toUserResponse(session.User),
		Exp:  session.Token.ExpiresAt.Unix(),
	})
}

// Logout always succeeds from the caller's point of view.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), middleware.GetClaims(r.Context())); err != nil {
		slog.Warn("logout revocation failed", "error", err)
	}

	h.cookies.Clear(w)
	core.OK(w, MessageResponse{Message: "Logged out successfully"})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetCurrentUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, UserEnvelope{User: toUserResponse(user)})
}
