// AngelaMos | 2026
// service.go

package giftcard

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/asmr-backend/internal/core"
)

type Service struct {
	repo        Repository
	allowRepeat bool
}

func NewService(repo Repository, allowRepeat bool) *Service {
	return &Service{repo: repo, allowRepeat: allowRepeat}
}

func (s *Service) Redeem(ctx context.Context, code, userID string) (result *RedeemResponse, err error) {
	if userID == "" {
		return nil, core.UnauthorizedError("Authentication required")
	}

	if strings.TrimSpace(code) == "" {
		return nil, core.ValidationError("Invalid gift card code")
	}

	card, ok := Lookup(code)
	if !ok {
		return nil, core.NotFoundError("Gift card not found")
	}

	ctx, span := core.StartSpan(ctx, "giftcard.Redeem",
		attribute.String("giftcard.code", card.Code),
	)
	defer func() { core.EndSpan(span, err) }()

	balance, err := s.repo.Credit(ctx, userID, card, s.allowRepeat)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrConflict):
			return nil, core.ConflictError("Gift card already redeemed")
		case errors.Is(err, core.ErrNotFound):
			return nil, core.UnauthorizedError("Invalid authentication token")
		default:
			return nil, core.NewAppError(err, "Internal server error",
				http.StatusInternalServerError, "SERVER_ERROR")
		}
	}

	return &RedeemResponse{
		GiftCard:    CardSummary{Code: card.Code, Description: card.Description},
		NewBalance:  balance,
		PointsAdded: card.Points,
	}, nil
}
