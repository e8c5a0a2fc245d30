// AngelaMos | 2026
// service.go

package content

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/asmr-backend/internal/core"
)

// AccountStore is the user ledger as the purchase flow sees it.
type AccountStore interface {
	GetAccount(ctx context.Context, userID string) (*Account, error)
	// Purchase atomically records ownership and deducts price, returning
	// the remaining balance. It fails with core.ErrConflict when the
	// resource is already owned and core.ErrInsufficientPoints when the
	// balance cannot cover price. Nothing is written on failure.
	Purchase(ctx context.Context, userID string, resourceID int64, price int) (int, error)
}

type Service struct {
	repo     Repository
	accounts AccountStore
	now      func() time.Time
}

func NewService(repo Repository, accounts AccountStore) *Service {
	return &Service{
		repo:     repo,
		accounts: accounts,
		now:      time.Now,
	}
}

func (s *Service) List(
	ctx context.Context,
	params ListParams,
	role string,
) (core.PageResult[ResourceResponse], error) {
	params.Normalize()

	if !IsValidSort(params.Sort) {
		return core.PageResult[ResourceResponse]{}, core.ValidationError("Invalid sort field")
	}

	resources, total, err := s.repo.List(ctx, params)
	if err != nil {
		return core.PageResult[ResourceResponse]{}, core.NewAppError(
			err, "Failed to fetch content", http.StatusBadGateway, "BAD_GATEWAY",
		)
	}

	return core.NewPageResult(
		ToResourceResponseList(resources, role),
		params.Page,
		params.Limit,
		total,
	), nil
}

// Get returns a public resource. Hidden resources are reported as missing.
func (s *Service) Get(
	ctx context.Context,
	rawID string,
	role string,
) (*ResourceResponse, error) {
	if strings.TrimSpace(rawID) == "" {
		return nil, core.ValidationError("Resource ID is required")
	}

	id, err := ParseResourceID(rawID)
	if err != nil {
		return nil, core.NotFoundError("Resource not found")
	}

	resource, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("Resource not found")
		}
		return nil, core.NewAppError(err, "Failed to fetch resource", http.StatusInternalServerError, "SERVER_ERROR")
	}

	if !resource.Public {
		return nil, core.NotFoundError("Resource not found")
	}

	resp := ToResourceResponse(resource, role)
	return &resp, nil
}

func (s *Service) Purchase(
	ctx context.Context,
	rawID string,
	userID string,
) (resp *PurchaseResponse, err error) {
	ctx, span := core.StartSpan(ctx, "content.Purchase",
		attribute.String("user.id", userID),
		attribute.String("resource.id", rawID),
	)
	defer func() { core.EndSpan(span, err) }()

	if strings.TrimSpace(rawID) == "" {
		return nil, core.ValidationError("resourceId is required")
	}

	if userID == "" {
		return nil, core.UnauthorizedError("")
	}

	id, err := ParseResourceID(rawID)
	if err != nil {
		return nil, core.NotFoundError("ASMR resource not found")
	}

	resource, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("ASMR resource not found")
		}
		return nil, purchaseFailed(err)
	}

	account, err := s.accounts.GetAccount(ctx, userID)
	if err != nil {
		return nil, core.NewAppError(err, "Invalid authentication token", http.StatusUnauthorized, "UNAUTHORIZED")
	}

	if account.Owns(resource.ID) {
		return nil, core.ConflictError("You already own this ASMR resource")
	}

	if resource.Price <= 0 {
		return nil, core.ValidationError("The resource is not allowed to purchase")
	}

	if account.Points < resource.Price {
		return nil, insufficientPoints(resource.Price, account.Points)
	}

	remaining, err := s.accounts.Purchase(ctx, account.ID, resource.ID, resource.Price)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrConflict):
			return nil, core.ConflictError("You already own this ASMR resource")
		case errors.Is(err, core.ErrInsufficientPoints):
			return nil, core.NewAppError(
				err,
				"Insufficient points to purchase this resource",
				http.StatusBadRequest,
				"INSUFFICIENT_POINTS",
			)
		default:
			return nil, purchaseFailed(err)
		}
	}

	purchasedAt := s.now().UTC()
	account.Points = remaining
	account.OwnedResourceIDs = append(account.OwnedResourceIDs, resource.ID)
	account.UpdatedAt = purchasedAt

	core.AddSpanEvent(ctx, "purchase.completed",
		attribute.Int("points.deducted", resource.Price),
		attribute.Int("points.remaining", remaining),
	)

	return &PurchaseResponse{
		User:     ToAccountResponse(account),
		Resource: ToResourceResponse(resource, account.Role),
		Transaction: TransactionSummary{
			PointsDeducted:  resource.Price,
			RemainingPoints: remaining,
			PurchaseTime:    purchasedAt,
		},
	}, nil
}

// LoadResource fetches a resource by its raw path id for other flows that
// gate on ownership.
func (s *Service) LoadResource(ctx context.Context, rawID string) (*Resource, error) {
	id, err := ParseResourceID(rawID)
	if err != nil {
		return nil, fmt.Errorf("load resource: %w", core.ErrNotFound)
	}
	return s.repo.GetByID(ctx, id)
}

func insufficientPoints(price, balance int) *core.AppError {
	return core.NewAppError(
		core.ErrInsufficientPoints,
		fmt.Sprintf(
			"You need %d points to purchase this resource, but you only have %d points",
			price,
			balance,
		),
		http.StatusBadRequest,
		"INSUFFICIENT_POINTS",
	)
}

func purchaseFailed(err error) *core.AppError {
	return core.NewAppError(err, "Failed to complete purchase", http.StatusInternalServerError, "SERVER_ERROR")
}
