// AngelaMos | 2026
// service.go

package coupon

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/asmr-backend/internal/core"
)

const (
	DefaultCount = 10
	MaxCount     = 1000
)

type Service struct {
	repo     Repository
	generate CodeGenerator
	now      func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		generate: NewCode,
		now:      time.Now,
	}
}

// Generate creates up to count coupons in one batch. Codes that collide
// with an existing coupon are skipped, so generated may be below count.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (result *GenerateResponse, err error) {
	count := req.Count.Value()

	if count < 1 {
		return nil, core.ValidationError("count must be at least 1")
	}
	if count > MaxCount {
		return nil, core.ValidationError("count cannot exceed 1000")
	}

	batchID := strings.TrimSpace(req.BatchID)
	if batchID == "" {
		batchID = strconv.FormatInt(s.now().UnixMilli(), 10)
	}

	ctx, span := core.StartSpan(ctx, "coupon.Generate",
		attribute.Int("count", count),
		attribute.String("batch.id", batchID),
	)
	defer func() { core.EndSpan(span, err) }()

	generated := 0
	for range count {
		c := &Coupon{
			ID:      uuid.New().String(),
			Code:    s.generate(),
			Value:   DefaultValue,
			BatchID: batchID,
		}

		if insertErr := s.repo.Insert(ctx, c); insertErr != nil {
			if errors.Is(insertErr, core.ErrDuplicateKey) {
				continue
			}
			return nil, core.NewAppError(insertErr, "Failed to generate coupons",
				http.StatusInternalServerError, "SERVER_ERROR")
		}
		generated++
	}

	core.AddSpanEvent(ctx, "coupons.generated", attribute.Int("generated", generated))

	return &GenerateResponse{BatchID: batchID, Generated: generated}, nil
}

func (s *Service) Redeem(ctx context.Context, rawCode, userID string) (result *RedeemResponse, err error) {
	if userID == "" {
		return nil, core.UnauthorizedError("Authentication required")
	}

	code := NormalizeCode(rawCode)
	if code == "" {
		return nil, core.ValidationError("Invalid coupon code")
	}

	ctx, span := core.StartSpan(ctx, "coupon.Redeem")
	defer func() { core.EndSpan(span, err) }()

	c, balance, err := s.repo.Redeem(ctx, code, userID, s.now())
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			return nil, core.NotFoundError("Coupon not found")
		case errors.Is(err, core.ErrConflict):
			return nil, core.ConflictError("Coupon already used")
		case errors.Is(err, ErrExpired):
			return nil, core.ValidationError("Coupon has expired")
		case errors.Is(err, core.ErrUnauthorized):
			return nil, core.UnauthorizedError("Invalid authentication token")
		default:
			return nil, core.NewAppError(err, "Internal server error",
				http.StatusInternalServerError, "SERVER_ERROR")
		}
	}

	return &RedeemResponse{
		Coupon:      RedeemedCoupon{Code: c.Code, Value: c.Value, BatchID: c.BatchID},
		NewBalance:  balance,
		PointsAdded: c.Value,
	}, nil
}
