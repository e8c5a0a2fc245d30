// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/asmr-backend/internal/access"
	"github.com/carterperez-dev/asmr-backend/internal/auth"
	"github.com/carterperez-dev/asmr-backend/internal/content"
	"github.com/carterperez-dev/asmr-backend/internal/core"
)

// SessionRevoker ends a user's outstanding sessions.
type SessionRevoker interface {
	RevokeUserSessions(ctx context.Context, userID string) error
}

type Service struct {
	repo     Repository
	sessions SessionRevoker
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// WithSessionRevoker makes role changes sign the user out, so the new role
// is carried by the next token they are issued.
func (s *Service) WithSessionRevoker(r SessionRevoker) *Service {
	s.sessions = r
	return s
}

func (s *Service) GetByID(ctx context.Context, id string) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// Create registers a free-tier, unverified user.
func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, nickname string,
) (*auth.UserInfo, error) {
	user := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Nickname:     nickname,
		Role:         access.RoleFree,
		IsVerified:   false,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetAccount(ctx context.Context, userID string) (*content.Account, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &content.Account{
		ID:               profile.ID,
		Email:            profile.Email,
		Nickname:         profile.Nickname,
		Role:             profile.Role,
		Points:           profile.Points,
		IsVerified:       profile.IsVerified,
		OwnedResourceIDs: profile.Owned,
		CreatedAt:        profile.CreatedAt,
		UpdatedAt:        profile.UpdatedAt,
	}, nil
}

func (s *Service) Purchase(
	ctx context.Context,
	userID string,
	resourceID int64,
	price int,
) (remaining int, err error) {
	ctx, span := core.StartSpan(ctx, "user.Purchase",
		attribute.Int64("resource.id", resourceID),
		attribute.Int("price", price),
	)
	defer func() { core.EndSpan(span, err) }()

	return s.repo.Purchase(ctx, userID, resourceID, price)
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("get profile: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	owned, err := s.repo.OwnedResourceIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	playlist, err := s.repo.PlaylistIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: *user, Playlist: playlist, Owned: owned}, nil
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (*Profile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Nickname != nil {
		nickname := strings.TrimSpace(*req.Nickname)
		if nickname == "" {
			return nil, fmt.Errorf("update profile: empty nickname: %w", core.ErrInvalidInput)
		}
		profile.Nickname = nickname
	}

	if err := s.repo.UpdateProfile(ctx, &profile.User); err != nil {
		return nil, err
	}

	return profile, nil
}

func (s *Service) ReplacePlaylist(
	ctx context.Context,
	userID string,
	refs []content.RelationRef,
) (*Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("replace playlist: %w", core.ErrUnauthorized)
	}

	ids := make([]int64, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, int64(ref))
	}

	if err := s.repo.ReplacePlaylist(ctx, userID, ids); err != nil {
		return nil, err
	}

	return s.GetProfile(ctx, userID)
}

func (s *Service) ListUsers(ctx context.Context, params ListUsersParams) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) UpdateUserRole(ctx context.Context, id, role string) (*Profile, error) {
	if !access.IsValidRole(role) {
		return nil, fmt.Errorf("update role: invalid role %q: %w", role, core.ErrInvalidInput)
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}

	if s.sessions != nil {
		if err := s.sessions.RevokeUserSessions(ctx, id); err != nil {
			slog.Error("revoke sessions after role change failed", "user_id", id, "error", err)
		}
	}

	return s.GetProfile(ctx, id)
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Nickname:     u.Nickname,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Points:       u.Points,
		IsVerified:   u.IsVerified,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

var (
	_ auth.UserProvider    = (*Service)(nil)
	_ content.AccountStore = (*Service)(nil)
)
