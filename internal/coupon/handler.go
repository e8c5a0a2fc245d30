// AngelaMos | 2026
// handler.go

package coupon

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

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

// RegisterRoutes mounts generation behind guard and redemption behind
// authenticator. guard is expected to accept an admin session or the
// server token.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, guard func(http.Handler) http.Handler,
) {
	r.With(guard).Post("/generate-coupons", h.Generate)
	r.With(authenticator).Post("/coupons/redeem", h.Redeem)
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		core.BadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.service.Generate(r.Context(), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid coupon code")
		return
	}

	resp, err := h.service.Redeem(r.Context(), req.Code, middleware.GetUserID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}
