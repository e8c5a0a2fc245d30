// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/asmr-backend/internal/core"
)

const testCookie = "asmr-token"

type fakeVerifier struct {
	tokens map[string]*AccessTokenClaims
	err    error
}

func (f *fakeVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*AccessTokenClaims, error) {
	if f.err != nil {
		return nil, f.err
	}
	claims, ok := f.tokens[token]
	if !ok {
		return nil, core.ErrTokenInvalid
	}
	return claims, nil
}

func newVerifier() *fakeVerifier {
	return &fakeVerifier{tokens: map[string]*AccessTokenClaims{
		"user-token":  {UserID: "u1", Role: "free", JTI: "j1"},
		"admin-token": {UserID: "a1", Role: "admin", JTI: "j2"},
	}}
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	core.OK(w, map[string]string{
		"id":   GetUserID(r.Context()),
		"role": GetUserRole(r.Context()),
	})
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) core.Response {
	t.Helper()
	var resp core.Response
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ExtractToken(req, testCookie))

	req.Header.Set("Authorization", "Bearer  abc ")
	assert.Equal(t, "abc", ExtractToken(req, testCookie))

	req.AddCookie(&http.Cookie{Name: testCookie, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", ExtractToken(req, testCookie))

	basic := httptest.NewRequest(http.MethodGet, "/", nil)
	basic.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, ExtractToken(basic, testCookie))
}

func TestAuthenticator(t *testing.T) {
	sa := NewSessionAuth(newVerifier(), testCookie)
	h := sa.Authenticator(http.HandlerFunc(echoUser))

	t.Run("missing token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Authentication required", decode(t, rr).Message)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: "bogus"})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "TOKEN_INVALID", decode(t, rr).Code)
	})

	t.Run("valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: "user-token"})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t,
			map[string]any{"id": "u1", "role": "free"},
			decode(t, rr).Data,
		)
	})
}

func TestAuthenticatorRevoked(t *testing.T) {
	sa := NewSessionAuth(&fakeVerifier{err: core.ErrTokenRevoked}, testCookie)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rr := httptest.NewRecorder()

	sa.Authenticator(http.HandlerFunc(echoUser)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "TOKEN_REVOKED", decode(t, rr).Code)
}

func TestOptionalAuthLetsAnonymousThrough(t *testing.T) {
	sa := NewSessionAuth(newVerifier(), testCookie)
	h := sa.OptionalAuth(http.HandlerFunc(echoUser))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "bogus"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"id": "", "role": ""}, decode(t, rr).Data)
}

func TestRequireAdmin(t *testing.T) {
	sa := NewSessionAuth(newVerifier(), testCookie)
	h := sa.Authenticator(RequireAdmin(http.HandlerFunc(echoUser)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "user-token"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "admin-token"})
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireAdminOrServerToken(t *testing.T) {
	sa := NewSessionAuth(newVerifier(), testCookie)
	h := sa.OptionalAuth(
		RequireAdminOrServerToken("X-Server-Auth-Token", "machine-secret")(
			http.HandlerFunc(echoUser),
		),
	)

	tests := []struct {
		name   string
		cookie string
		token  string
		want   int
	}{
		{"anonymous", "", "", http.StatusUnauthorized},
		{"wrong token", "", "nope", http.StatusUnauthorized},
		{"server token", "", "machine-secret", http.StatusOK},
		{"non-admin session", "user-token", "", http.StatusForbidden},
		{"admin session", "admin-token", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/generate-coupons", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: testCookie, Value: tt.cookie})
			}
			if tt.token != "" {
				req.Header.Set("X-Server-Auth-Token", tt.token)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestServerTokenUnsetSecretDenies(t *testing.T) {
	h := RequireAdminOrServerToken("X-Server-Auth-Token", "")(
		http.HandlerFunc(echoUser),
	)
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Server-Auth-Token", "")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
