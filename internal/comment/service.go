// AngelaMos | 2026
// service.go

package comment

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/asmr-backend/internal/content"
	"github.com/carterperez-dev/asmr-backend/internal/core"
)

type ResourceLoader interface {
	LoadResource(ctx context.Context, rawID string) (*content.Resource, error)
}

type Service struct {
	repo      Repository
	resources ResourceLoader
	newID     func() string
}

func NewService(repo Repository, resources ResourceLoader) *Service {
	return &Service{
		repo:      repo,
		resources: resources,
		newID:     func() string { return uuid.New().String() },
	}
}

// Thread returns the approved comments on a public resource as a tree of
// top-level comments and their replies.
func (s *Service) Thread(ctx context.Context, rawResourceID string) ([]CommentResponse, error) {
	resource, appErr := s.publicResource(ctx, rawResourceID)
	if appErr != nil {
		return nil, appErr
	}

	comments, err := s.repo.ListByResource(ctx, resource.ID, StatusApproved)
	if err != nil {
		return nil, core.NewAppError(err, "Failed to fetch comments", http.StatusInternalServerError, "SERVER_ERROR")
	}

	return BuildThread(comments), nil
}

// Create stores a pending comment. A reply must name an approved comment on
// the same resource.
func (s *Service) Create(
	ctx context.Context,
	rawResourceID string,
	userID string,
	req CreateRequest,
) (result *CommentResponse, err error) {
	if userID == "" {
		return nil, core.UnauthorizedError("")
	}

	text := strings.TrimSpace(req.Content)
	if text == "" {
		return nil, core.ValidationError("Comment content is required")
	}
	if utf8.RuneCountInString(text) > MaxContentLength {
		return nil, core.ValidationError("Comment must be at most 2000 characters")
	}

	ctx, span := core.StartSpan(ctx, "comment.Create",
		attribute.String("user.id", userID),
		attribute.String("resource.id", rawResourceID),
	)
	defer func() { core.EndSpan(span, err) }()

	resource, appErr := s.publicResource(ctx, rawResourceID)
	if appErr != nil {
		return nil, appErr
	}

	c := &Comment{
		ID:         s.newID(),
		Content:    text,
		AuthorID:   userID,
		ResourceID: resource.ID,
		Status:     StatusPending,
	}

	if parentID := strings.TrimSpace(req.ParentID); parentID != "" {
		if appErr := s.checkParent(ctx, parentID, resource.ID); appErr != nil {
			return nil, appErr
		}
		c.ParentID = &parentID
	}

	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NewAppError(err, "Invalid authentication token", http.StatusUnauthorized, "UNAUTHORIZED")
		}
		return nil, core.NewAppError(err, "Failed to create comment", http.StatusInternalServerError, "SERVER_ERROR")
	}

	resp := ToCommentResponse(c)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, params ListParams) (core.PageResult[CommentResponse], error) {
	params.Normalize()

	if params.Status != "" && !params.Status.Valid() {
		return core.PageResult[CommentResponse]{}, core.ValidationError("Invalid status")
	}

	comments, total, err := s.repo.List(ctx, params)
	if err != nil {
		return core.PageResult[CommentResponse]{}, core.NewAppError(
			err, "Failed to fetch comments", http.StatusInternalServerError, "SERVER_ERROR",
		)
	}

	return core.NewPageResult(ToCommentResponseList(comments), params.Page, params.Limit, total), nil
}

func (s *Service) UpdateStatus(ctx context.Context, rawID string, status Status) (*CommentResponse, error) {
	if !status.Valid() {
		return nil, core.ValidationError("Invalid status")
	}

	if _, err := uuid.Parse(rawID); err != nil {
		return nil, core.NotFoundError("Comment not found")
	}

	c, err := s.repo.UpdateStatus(ctx, rawID, status)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("Comment not found")
		}
		return nil, core.NewAppError(err, "Failed to update comment", http.StatusInternalServerError, "SERVER_ERROR")
	}

	resp := ToCommentResponse(c)
	return &resp, nil
}

// publicResource loads the resource comments hang off. Hidden resources are
// reported as missing, as on the content endpoints.
func (s *Service) publicResource(ctx context.Context, rawID string) (*content.Resource, *core.AppError) {
	if strings.TrimSpace(rawID) == "" {
		return nil, core.ValidationError("Resource ID is required")
	}

	resource, err := s.resources.LoadResource(ctx, rawID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("Resource not found")
		}
		return nil, core.NewAppError(err, "Failed to fetch resource", http.StatusInternalServerError, "SERVER_ERROR")
	}

	if !resource.Public {
		return nil, core.NotFoundError("Resource not found")
	}

	return resource, nil
}

func (s *Service) checkParent(ctx context.Context, parentID string, resourceID int64) *core.AppError {
	if _, err := uuid.Parse(parentID); err != nil {
		return core.ValidationError("Invalid parent comment")
	}

	parent, err := s.repo.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.ValidationError("Invalid parent comment")
		}
		return core.NewAppError(err, "Failed to create comment", http.StatusInternalServerError, "SERVER_ERROR")
	}

	if parent.ResourceID != resourceID || parent.Status != StatusApproved {
		return core.ValidationError("Invalid parent comment")
	}

	return nil
}
