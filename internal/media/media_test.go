// AngelaMos | 2026
// media_test.go

package media

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/asmr-backend/internal/config"
	"github.com/carterperez-dev/asmr-backend/internal/content"
	"github.com/carterperez-dev/asmr-backend/internal/core"
	"github.com/carterperez-dev/asmr-backend/internal/middleware"
)

type fakeResources map[string]*content.Resource

func (f fakeResources) LoadResource(_ context.Context, id string) (*content.Resource, error) {
	if r, ok := f[id]; ok {
		return r, nil
	}
	if id == "boom" {
		return nil, errors.New("db down")
	}
	return nil, core.ErrNotFound
}

type fakeAccounts map[string]*content.Account

func (f fakeAccounts) GetAccount(_ context.Context, id string) (*content.Account, error) {
	if a, ok := f[id]; ok {
		return a, nil
	}
	return nil, core.ErrNotFound
}

type fakeSigner struct {
	key    string
	expiry time.Duration
	err    error
}

func (f *fakeSigner) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	f.key, f.expiry = key, expiry
	if f.err != nil {
		return "", f.err
	}
	return "https://signed.example/" + key, nil
}

type fakeMediaRepo struct{ items []content.Media }

func (f *fakeMediaRepo) List(_ context.Context, _ string, limit, offset int) ([]content.Media, int, error) {
	end := min(offset+limit, len(f.items))
	if offset > end {
		offset = end
	}
	return f.items[offset:end], len(f.items), nil
}

func audio(name string) content.Audio {
	return content.Audio{Title: name, Media: content.Media{Filename: name, Type: "audio"}}
}

func newTestService(signer *fakeSigner) *Service {
	resources := fakeResources{
		"1": {ID: 1, Price: 100, Audios: []content.Audio{audio("rain.mp3")}},
		"2": {ID: 2, Price: 0, Audios: []content.Audio{audio("free.mp3")}},
	}
	accounts := fakeAccounts{
		"buyer":  {ID: "buyer", Role: "free", OwnedResourceIDs: []int64{1}},
		"stub":   {ID: "stub", Role: "premium"},
		"admin1": {ID: "admin1", Role: "admin"},
	}
	return NewService(resources, accounts, signer, &fakeMediaRepo{})
}

func TestGetAudioURLGrants(t *testing.T) {
	tests := []struct {
		name, id, file, user string
	}{
		{"owner", "1", "rain.mp3", "buyer"},
		{"admin", "1", "rain.mp3", "admin1"},
		{"free resource", "2", "free.mp3", "stub"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer := &fakeSigner{}
			resp, err := newTestService(signer).GetAudioURL(context.Background(), tt.id, tt.file, tt.user)
			require.NoError(t, err)
			assert.Equal(t, "https://signed.example/"+tt.file, resp.URL)
			assert.Equal(t, 300, resp.ExpiresIn)
			assert.Equal(t, 300*time.Second, signer.expiry)
		})
	}
}

func TestGetAudioURLConfiguredExpiry(t *testing.T) {
	signer := &fakeSigner{}
	svc := newTestService(signer).WithURLExpiry(time.Minute)

	resp, err := svc.GetAudioURL(context.Background(), "1", "rain.mp3", "buyer")
	require.NoError(t, err)
	assert.Equal(t, 60, resp.ExpiresIn)
	assert.Equal(t, time.Minute, signer.expiry)

	svc.WithURLExpiry(0)
	resp, err = svc.GetAudioURL(context.Background(), "1", "rain.mp3", "buyer")
	require.NoError(t, err)
	assert.Equal(t, 60, resp.ExpiresIn)
}

func TestGetAudioURLDenials(t *testing.T) {
	tests := []struct {
		name, id, file, user string
		status               int
		code, msg            string
	}{
		{"anonymous", "1", "rain.mp3", "", 401, "UNAUTHORIZED", "Authentication required"},
		{"no id", " ", "rain.mp3", "buyer", 400, "BAD_REQUEST", "Resource ID is required"},
		{"no filename", "1", "", "buyer", 400, "BAD_REQUEST", "Filename parameter is required"},
		{"unknown resource", "9", "rain.mp3", "buyer", 404, "NOT_FOUND", "ASMR resource not found"},
		{"resource load error", "boom", "rain.mp3", "buyer", 500, "SERVER_ERROR", "Failed to generate audio URL"},
		{"stale session", "1", "rain.mp3", "ghost", 401, "UNAUTHORIZED", "Authentication required"},
		{"not owned", "1", "rain.mp3", "stub", 403, "FORBIDDEN", "Access denied"},
		{"foreign file", "1", "free.mp3", "buyer", 404, "NOT_FOUND", "Audio file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer := &fakeSigner{}
			_, err := newTestService(signer).GetAudioURL(context.Background(), tt.id, tt.file, tt.user)

			appErr, ok := core.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, appErr.StatusCode)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.msg, appErr.Message)
			assert.Empty(t, signer.key)
		})
	}
}

type catalog map[int64]*content.Resource

func (c catalog) List(_ context.Context, _ content.ListParams) ([]content.Resource, int, error) {
	return nil, 0, nil
}

func (c catalog) GetByID(_ context.Context, id int64) (*content.Resource, error) {
	if r, ok := c[id]; ok {
		return r, nil
	}
	return nil, core.ErrNotFound
}

// wallet serves both the purchase flow and the audio grant check from one
// set of accounts.
type wallet map[string]*content.Account

func (w wallet) GetAccount(_ context.Context, id string) (*content.Account, error) {
	if a, ok := w[id]; ok {
		cp := *a
		cp.OwnedResourceIDs = append([]int64(nil), a.OwnedResourceIDs...)
		return &cp, nil
	}
	return nil, core.ErrNotFound
}

func (w wallet) Purchase(_ context.Context, userID string, resourceID int64, price int) (int, error) {
	a, ok := w[userID]
	if !ok {
		return 0, core.ErrNotFound
	}
	if a.Owns(resourceID) {
		return 0, core.ErrConflict
	}
	if a.Points < price {
		return 0, core.ErrInsufficientPoints
	}
	a.Points -= price
	a.OwnedResourceIDs = append(a.OwnedResourceIDs, resourceID)
	return a.Points, nil
}

func TestGetAudioURLAfterPurchase(t *testing.T) {
	ctx := context.Background()
	accounts := wallet{"stub": {ID: "stub", Role: "premium", Points: 150}}
	contentSvc := content.NewService(catalog{
		1: {ID: 1, Price: 100, Public: true, Audios: []content.Audio{audio("rain.mp3")}},
	}, accounts)
	signer := &fakeSigner{}
	svc := NewService(contentSvc, accounts, signer, &fakeMediaRepo{})

	_, err := svc.GetAudioURL(ctx, "1", "rain.mp3", "stub")
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, appErr.StatusCode)
	assert.Empty(t, signer.key)

	purchase, err := contentSvc.Purchase(ctx, "1", "stub")
	require.NoError(t, err)
	assert.Equal(t, 50, purchase.Transaction.RemainingPoints)

	resp, err := svc.GetAudioURL(ctx, "1", "rain.mp3", "stub")
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/rain.mp3", resp.URL)
	assert.Equal(t, "rain.mp3", signer.key)
}

func TestGetAudioURLStorageUnavailable(t *testing.T) {
	svc := newTestService(nil)
	svc.signer = NewR2Signer(config.StorageConfig{Endpoint: "https://r2.example"})

	_, err := svc.GetAudioURL(context.Background(), "1", "rain.mp3", "buyer")
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode)
	assert.Equal(t, "Failed to generate audio URL", appErr.Message)
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)
}

func TestR2SignerPresignsAudioBucket(t *testing.T) {
	signer := NewR2Signer(config.StorageConfig{
		Endpoint:        "https://acct.r2.cloudflarestorage.com",
		AccessKeyID:     "AKID",
		SecretAccessKey: "secret",
		Bucket:          "shared",
		AudioBucket:     "audio",
		Region:          "auto",
	})

	raw, err := signer.PresignGet(context.Background(), "rain.mp3", AudioURLExpiry)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Contains(t, u.Host+u.Path, "audio")
	assert.Contains(t, u.Path, "rain.mp3")
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))

	first, _ := signer.getClient()
	second, _ := signer.getClient()
	assert.Same(t, first, second)
}

func TestSplitEndpoint(t *testing.T) {
	host, secure, err := splitEndpoint("https://acct.r2.cloudflarestorage.com/")
	require.NoError(t, err)
	assert.Equal(t, "acct.r2.cloudflarestorage.com", host)
	assert.True(t, secure)

	host, secure, err = splitEndpoint("http://localhost:9000")
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", host)
	assert.False(t, secure)

	host, secure, err = splitEndpoint("minio.internal:9000")
	require.NoError(t, err)
	assert.Equal(t, "minio.internal:9000", host)
	assert.True(t, secure)
}

func TestMediaListAdminOnly(t *testing.T) {
	svc := newTestService(&fakeSigner{})
	svc.repo = &fakeMediaRepo{items: []content.Media{{ID: 1, Filename: "a"}, {ID: 2, Filename: "b"}}}

	r := chi.NewRouter()
	role := "free"
	NewHandler(svc).RegisterRoutes(r, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithClaims(req.Context(),
				&middleware.AccessTokenClaims{UserID: "x", Role: role})))
		})
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/media/", nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	role = "admin"
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/media/?limit=1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"totalDocs":2`)
	assert.Contains(t, rr.Body.String(), `"hasNextPage":true`)
}
