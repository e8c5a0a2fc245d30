// AngelaMos | 2026
// auth_test.go

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/asmr-backend/internal/config"
	"github.com/carterperez-dev/asmr-backend/internal/core"
	"github.com/carterperez-dev/asmr-backend/internal/middleware"
)

func newJWT(t *testing.T, expire time.Duration) *JWTManager {
	t.Helper()
	dir := t.TempDir()
	priv := filepath.Join(dir, "private.pem")
	pub := filepath.Join(dir, "public.pem")
	require.NoError(t, GenerateKeyPair(priv, pub))

	m, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:    priv,
		PublicKeyPath:     pub,
		AccessTokenExpire: expire,
		Issuer:            "asmr-test",
		Audience:          "asmr-test-api",
	})
	require.NoError(t, err)
	return m
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*UserInfo
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) Create(_ context.Context, email, hash, nickname string) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return nil, core.ErrDuplicateKey
		}
	}
	u := &UserInfo{ID: uuid.NewString(), Email: email, PasswordHash: hash, Nickname: nickname, Role: "free"}
	f.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id].PasswordHash = hash
	return nil
}

func newService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewService(newJWT(t, time.Hour), &fakeUsers{users: map[string]*UserInfo{}}, rdb), mr
}

func appStatus(t *testing.T, err error) (int, string) {
	t.Helper()
	appErr, ok := core.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return appErr.StatusCode, appErr.Message
}

func TestTokenRoundTrip(t *testing.T) {
	m := newJWT(t, time.Hour)

	issued, err := m.CreateAccessToken("u1", "premium")
	require.NoError(t, err)

	claims, err := m.ParseAccessToken(context.Background(), issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "premium", claims.Role)
	assert.Equal(t, issued.JTI, claims.JTI)
	assert.WithinDuration(t, issued.ExpiresAt, claims.ExpiresAt, time.Second)
	assert.NotEmpty(t, m.GetKeyID())
}

func TestTokenRejections(t *testing.T) {
	m := newJWT(t, time.Hour)
	other := newJWT(t, time.Hour)

	foreign, err := other.CreateAccessToken("u1", "free")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(context.Background(), foreign.Token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	_, err = m.ParseAccessToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	expired := newJWT(t, -time.Hour)
	old, err := expired.CreateAccessToken("u1", "free")
	require.NoError(t, err)
	_, err = expired.ParseAccessToken(context.Background(), old.Token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestJWKSHandler(t *testing.T) {
	m := newJWT(t, time.Hour)

	rr := httptest.NewRecorder()
	m.GetJWKSHandler()(rr, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var set struct {
		Keys []map[string]any `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &set))
	require.Len(t, set.Keys, 1)
	assert.Equal(t, "EC", set.Keys[0]["kty"])
	assert.NotContains(t, set.Keys[0], "d")
}

func TestSessionCookie(t *testing.T) {
	c := NewSessionCookies(config.CookieConfig{Prefix: "asmr", SameSite: "Strict", Domain: "example.com"}, true)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	rr := httptest.NewRecorder()
	c.Set(rr, "tok", now.Add(2*time.Hour))
	cookie := rr.Result().Cookies()[0]

	assert.Equal(t, "asmr-token", cookie.Name)
	assert.Equal(t, "tok", cookie.Value)
	assert.Equal(t, 7200, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, "example.com", cookie.Domain)

	rr = httptest.NewRecorder()
	c.Set(rr, "tok", now.Add(-time.Minute))
	assert.Equal(t, -1, rr.Result().Cookies()[0].MaxAge)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newService(t)

	tests := []struct {
		name       string
		req        RegisterRequest
		wantStatus int
		wantMsg    string
	}{
		{"bad email", RegisterRequest{Email: "nope", Password: "longenough"}, 400, "Invalid email address"},
		{"short password", RegisterRequest{Email: "a@b.co", Password: "short"}, 400, "Password must be at least 8 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			status, msg := appStatus(t, err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterRequest{Email: " Whisper@Example.com ", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "whisper@example.com", session.User.Email)
	assert.Equal(t, "whisper", session.User.Nickname)
	assert.Equal(t, "free", session.User.Role)

	_, err = svc.Register(ctx, RegisterRequest{Email: "whisper@example.com", Password: "correct horse"})
	status, msg := appStatus(t, err)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Email already exists", msg)

	_, err = svc.Login(ctx, LoginRequest{Email: "whisper@example.com", Password: "wrong password"})
	status, msg = appStatus(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Login failed", msg)

	_, err = svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "whatever1"})
	status, _ = appStatus(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)

	_, err = svc.Login(ctx, LoginRequest{Email: "", Password: ""})
	status, msg = appStatus(t, err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email and password are required", msg)

	login, err := svc.Login(ctx, LoginRequest{Email: "WHISPER@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, login.User.ID)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, mr := newService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterRequest{Email: "a@b.co", Password: "password1"})
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(ctx, session.Token.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	assert.True(t, mr.Exists(blacklistPrefix+claims.JTI))
	assert.Greater(t, mr.TTL(blacklistPrefix+claims.JTI), time.Duration(0))

	_, err = svc.VerifyAccessToken(ctx, session.Token.Token)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	assert.NoError(t, svc.Logout(ctx, nil))
}

func TestRevokeUserSessionsRejectsOlderTokens(t *testing.T) {
	svc, mr := newService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterRequest{Email: "role@b.co", Password: "password1"})
	require.NoError(t, err)
	userID := session.User.ID

	require.NoError(t, svc.RevokeUserSessions(ctx, userID))
	assert.Greater(t, mr.TTL(revokedPrefix+userID), time.Duration(0))

	_, err = svc.VerifyAccessToken(ctx, session.Token.Token)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	// a cutoff in the past leaves newer tokens alone
	past := time.Now().Add(-time.Minute).Unix()
	require.NoError(t, mr.Set(revokedPrefix+userID, strconv.FormatInt(past, 10)))

	fresh, err := svc.Login(ctx, LoginRequest{Email: "role@b.co", Password: "password1"})
	require.NoError(t, err)
	claims, err := svc.VerifyAccessToken(ctx, fresh.Token.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.False(t, claims.IssuedAt.IsZero())
}

func TestNicknameFallback(t *testing.T) {
	assert.Equal(t, "Mia", nicknameFor(" Mia ", "x@y.z"))
	assert.Equal(t, "x", nicknameFor("", "x@y.z"))
	assert.Equal(t, "user", nicknameFor("", "@y.z"))
}

func TestHandlerSessionFlow(t *testing.T) {
	svc, _ := newService(t)
	cookies := NewSessionCookies(config.CookieConfig{Prefix: "asmr", SameSite: "Lax"}, false)
	sessions := middleware.NewSessionAuth(svc, cookies.Name())

	r := chi.NewRouter()
	NewHandler(svc, cookies).RegisterRoutes(r, sessions.Authenticator, sessions.OptionalAuth)

	post := func(path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	rr := post("/auth/register", `{"email":"a@b.co","password":"password1","name":"A"}`, nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"nickname":"A"`)
	session := rr.Result().Cookies()[0]
	assert.Equal(t, "asmr-token", session.Name)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(session)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"email":"a@b.co"`)

	rr = post("/auth/logout", "", session)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Logged out successfully")

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(session)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = post("/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
