// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/asmr-backend/internal/core"
	"github.com/carterperez-dev/asmr-backend/internal/middleware"
)

const (
	blacklistPrefix   = "blacklist:"
	revokedPrefix     = "revoked_before:"
	minPasswordLength = 8
	maxPasswordLength = 128
)

type UserInfo struct {
	ID           string
	Email        string
	Nickname     string
	PasswordHash string
	Role         string
	Points       int
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(ctx context.Context, email, passwordHash, nickname string) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// Session is a signed-in user together with the token to hand back.
type Session struct {
	User  *UserInfo
	Token *IssuedToken
}

type Service struct {
	jwt       *JWTManager
	users     UserProvider
	redis     *redis.Client
	validator *validator.Validate
}

func NewService(jwt *JWTManager, users UserProvider, redisClient *redis.Client) *Service {
	return &Service{
		jwt:       jwt,
		users:     users,
		redis:     redisClient,
		validator: validator.New(),
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Var(email, "required,email,max=255"); err != nil {
		return nil, core.ValidationError("Invalid email address")
	}

	if len(req.Password) < minPasswordLength {
		return nil, core.ValidationError("Password must be at least 8 characters")
	}
	if len(req.Password) > maxPasswordLength {
		return nil, core.ValidationError("Password must be at most 128 characters")
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, core.NewAppError(err, "Registration failed", http.StatusInternalServerError, "SERVER_ERROR")
	}

	user, err := s.users.Create(ctx, email, passwordHash, nicknameFor(req.Name, email))
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.NewAppError(err, "Email already exists", http.StatusConflict, "DUPLICATE")
		}
		return nil, core.NewAppError(err, "Registration failed", http.StatusInternalServerError, "SERVER_ERROR")
	}

	return s.issue(user, "Registration failed")
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, core.ValidationError("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // always verify so unknown emails cost the same
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, core.UnauthorizedError("Login failed")
		}
		return nil, core.NewAppError(err, "Login failed", http.StatusInternalServerError, "SERVER_ERROR")
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(req.Password, &user.PasswordHash)
	if err != nil || !valid {
		return nil, core.UnauthorizedError("Login failed")
	}

	if newHash != "" {
		if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
			slog.Warn("password rehash failed", "user_id", user.ID, "error", err)
		}
	}

	return s.issue(user, "Login failed")
}

func (s *Service) issue(user *UserInfo, failure string) (*Session, error) {
	token, err := s.jwt.CreateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, core.NewAppError(err, failure, http.StatusInternalServerError, "SERVER_ERROR")
	}

	return &Session{User: user, Token: token}, nil
}

// Logout revokes the token's jti until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, claims *middleware.AccessTokenClaims) error {
	if claims == nil || claims.JTI == "" {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, blacklistPrefix+claims.JTI, "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

// RevokeUserSessions invalidates every token issued to userID up to now.
// Tokens signed within the same second are also rejected, so the user must
// sign in again to pick up a new role.
func (s *Service) RevokeUserSessions(ctx context.Context, userID string) error {
	ttl := s.jwt.config.AccessTokenExpire
	cutoff := strconv.FormatInt(time.Now().Unix(), 10)

	if err := s.redis.Set(ctx, revokedPrefix+userID, cutoff, ttl).Err(); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	return nil
}

func (s *Service) IsRevoked(ctx context.Context, claims *middleware.AccessTokenClaims) (bool, error) {
	exists, err := s.redis.Exists(ctx, blacklistPrefix+claims.JTI).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	if exists > 0 {
		return true, nil
	}

	cutoff, err := s.redis.Get(ctx, revokedPrefix+claims.UserID).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check session cutoff: %w", err)
	}

	return claims.IssuedAt.Unix() <= cutoff, nil
}

// VerifyAccessToken validates the JWT and rejects revoked sessions. A
// blacklist lookup failure rejects the token.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.ParseAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.IsRevoked(ctx, claims)
	if err != nil {
		slog.Error("session revocation check failed", "error", err)
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	return claims, nil
}

func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*UserInfo, error) {
	if userID == "" {
		return nil, core.UnauthorizedError("Unauthorized")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.UnauthorizedError("Unauthorized")
		}
		return nil, core.NewAppError(err, "Internal server error", http.StatusInternalServerError, "SERVER_ERROR")
	}

	return user, nil
}

// nicknameFor falls back to the email local part, then to "user".
func nicknameFor(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}

	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}

	return "user"
}

var _ middleware.TokenVerifier = (*Service)(nil)
