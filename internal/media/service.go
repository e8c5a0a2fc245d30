// AngelaMos | 2026
// service.go

package media

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/asmr-backend/internal/access"
	"github.com/carterperez-dev/asmr-backend/internal/content"
	"github.com/carterperez-dev/asmr-backend/internal/core"
)

// AudioURLExpiry is how long a signed audio URL stays valid unless
// overridden with WithURLExpiry.
const AudioURLExpiry = 300 * time.Second

type ResourceLoader interface {
	LoadResource(ctx context.Context, rawID string) (*content.Resource, error)
}

type AccountLoader interface {
	GetAccount(ctx context.Context, userID string) (*content.Account, error)
}

type Service struct {
	resources ResourceLoader
	accounts  AccountLoader
	signer    URLSigner
	repo      Repository
	urlExpiry time.Duration
}

func NewService(
	resources ResourceLoader,
	accounts AccountLoader,
	signer URLSigner,
	repo Repository,
) *Service {
	return &Service{
		resources: resources,
		accounts:  accounts,
		signer:    signer,
		repo:      repo,
		urlExpiry: AudioURLExpiry,
	}
}

func (s *Service) WithURLExpiry(d time.Duration) *Service {
	if d > 0 {
		s.urlExpiry = d
	}
	return s
}

func audioURLFailed(err error) *core.AppError {
	return core.NewAppError(err, "Failed to generate audio URL", http.StatusInternalServerError, "SERVER_ERROR")
}

// GetAudioURL signs a short-lived URL for one audio file of a resource the
// caller may play: admins, free resources, or resources the caller owns.
func (s *Service) GetAudioURL(
	ctx context.Context,
	rawID, filename, userID string,
) (result *AudioURLResponse, err error) {
	if userID == "" {
		return nil, core.UnauthorizedError("Authentication required")
	}

	rawID = strings.TrimSpace(rawID)
	if rawID == "" {
		return nil, core.ValidationError("Resource ID is required")
	}

	if filename == "" {
		return nil, core.ValidationError("Filename parameter is required")
	}

	ctx, span := core.StartSpan(ctx, "media.GetAudioURL",
		attribute.String("resource.id", rawID),
		attribute.String("media.filename", filename),
	)
	defer func() { core.EndSpan(span, err) }()

	resource, err := s.resources.LoadResource(ctx, rawID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("ASMR resource not found")
		}
		return nil, audioURLFailed(err)
	}

	account, err := s.accounts.GetAccount(ctx, userID)
	if err != nil {
		return nil, core.UnauthorizedError("Authentication required")
	}

	if account.Role != access.RoleAdmin && !resource.IsFree() && !account.Owns(resource.ID) {
		return nil, core.ForbiddenError("Access denied")
	}

	audio, ok := resource.FindAudio(filename)
	if !ok {
		return nil, core.NotFoundError("Audio file not found")
	}

	url, err := s.signer.PresignGet(ctx, audio.Media.Filename, s.urlExpiry)
	if err != nil {
		return nil, audioURLFailed(err)
	}

	return &AudioURLResponse{
		URL:       url,
		ExpiresIn: int(s.urlExpiry.Seconds()),
	}, nil
}

func (s *Service) List(
	ctx context.Context,
	role, mediaType string,
	page, limit int,
) (core.PageResult[content.MediaResponse], error) {
	if !access.CanListMedia(role) {
		return core.PageResult[content.MediaResponse]{}, core.ForbiddenError("Access denied")
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	items, total, err := s.repo.List(ctx, mediaType, limit, (page-1)*limit)
	if err != nil {
		return core.PageResult[content.MediaResponse]{}, core.NewAppError(err,
			"Failed to fetch media", http.StatusBadGateway, "BAD_GATEWAY")
	}

	docs := make([]content.MediaResponse, 0, len(items))
	for i := range items {
		docs = append(docs, content.ToMediaResponse(&items[i]))
	}

	return core.NewPageResult(docs, page, limit, total), nil
}
