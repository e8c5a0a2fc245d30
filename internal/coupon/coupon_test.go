// AngelaMos | 2026
// coupon_test.go

package coupon

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/asmr-backend/internal/core"
	"github.com/carterperez-dev/asmr-backend/internal/middleware"
)

var codePattern = regexp.MustCompile(`^[23456789ABCDEFGHJKLMNPQRSTUVWXYZ]{4}(-[23456789ABCDEFGHJKLMNPQRSTUVWXYZ]{4}){3}$`)

func TestNewCodeShape(t *testing.T) {
	seen := map[string]bool{}
	for range 500 {
		code := NewCode()
		require.Regexp(t, codePattern, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 490)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "ABCD-EFGH", NormalizeCode("  abcd-efgh \n"))
	assert.Equal(t, "", NormalizeCode("   "))
}

type fakeRepo struct {
	codes     map[string]*Coupon
	insertErr error
	balance   int
}

func (f *fakeRepo) Insert(_ context.Context, c *Coupon) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, dup := f.codes[c.Code]; dup {
		return core.ErrDuplicateKey
	}
	f.codes[c.Code] = c
	return nil
}

func (f *fakeRepo) Redeem(_ context.Context, code, userID string, now time.Time) (*Coupon, int, error) {
	c, ok := f.codes[code]
	if !ok {
		return nil, 0, core.ErrNotFound
	}
	if c.Used {
		return nil, 0, core.ErrConflict
	}
	if c.IsExpired(now) {
		return nil, 0, ErrExpired
	}
	c.Used = true
	c.RedeemedBy = &userID
	f.balance += c.Value
	return c, f.balance, nil
}

func newTestService(repo *fakeRepo, codes ...string) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return time.UnixMilli(1767225600000) }
	if len(codes) > 0 {
		i := 0
		svc.generate = func() string {
			c := codes[i%len(codes)]
			i++
			return c
		}
	}
	return svc
}

func TestGenerateBounds(t *testing.T) {
	tests := []struct {
		name    string
		count   BatchSize
		wantMsg string
	}{
		{"zero", SizeOf(0), "count must be at least 1"},
		{"negative", SizeOf(-3), "count must be at least 1"},
		{"too many", SizeOf(1001), "count cannot exceed 1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{codes: map[string]*Coupon{}}
			_, err := newTestService(repo).Generate(context.Background(), GenerateRequest{Count: tt.count})

			appErr, ok := core.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
			assert.Equal(t, tt.wantMsg, appErr.Message)
			assert.Empty(t, repo.codes)
		})
	}
}

func TestBatchSizeParsing(t *testing.T) {
	tests := []struct {
		body string
		want int
	}{
		{`{}`, DefaultCount},
		{`{"count":5.5}`, 5},
		{`{"count":-2.9}`, -2},
		{`{"count":"5"}`, 5},
		{`{"count":" 12 "}`, 12},
		{`{"count":"abc"}`, DefaultCount},
		{`{"count":"Infinity"}`, DefaultCount},
		{`{"count":[1,2]}`, DefaultCount},
		{`{"count":""}`, 0},
		{`{"count":null}`, 0},
		{`{"count":true}`, 1},
		{`{"count":1e2}`, 100},
		{`{"count":1e12}`, math.MaxInt32},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var req GenerateRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.want, req.Count.Value())
		})
	}
}

func TestGenerateEndpointLooseCount(t *testing.T) {
	tests := []struct {
		body      string
		wantCode  int
		generated int
		wantMsg   string
	}{
		{`{"count":5.5}`, http.StatusOK, 5, ""},
		{`{"count":"5"}`, http.StatusOK, 5, ""},
		{`{"count":"abc"}`, http.StatusOK, 10, ""},
		{`{"count":0}`, http.StatusBadRequest, 0, "count must be at least 1"},
		{`{"count":"2000"}`, http.StatusBadRequest, 0, "count cannot exceed 1000"},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			repo := &fakeRepo{codes: map[string]*Coupon{}}
			r := chi.NewRouter()
			NewHandler(newTestService(repo)).RegisterRoutes(r,
				func(next http.Handler) http.Handler { return next },
				func(next http.Handler) http.Handler { return next },
			)

			req := httptest.NewRequest(http.MethodPost, "/generate-coupons", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			require.Equal(t, tt.wantCode, rr.Code)
			assert.Len(t, repo.codes, tt.generated)
			if tt.wantMsg != "" {
				assert.Contains(t, rr.Body.String(), tt.wantMsg)
			}
		})
	}
}

func TestGenerateDefaults(t *testing.T) {
	repo := &fakeRepo{codes: map[string]*Coupon{}}

	resp, err := newTestService(repo).Generate(context.Background(), GenerateRequest{BatchID: "  "})
	require.NoError(t, err)
	assert.Equal(t, 10, resp.Generated)
	assert.Equal(t, "1767225600000", resp.BatchID)

	for _, c := range repo.codes {
		assert.Equal(t, DefaultValue, c.Value)
		assert.Equal(t, "1767225600000", c.BatchID)
		assert.False(t, c.Used)
	}
}

func TestGenerateSkipsDuplicates(t *testing.T) {
	repo := &fakeRepo{codes: map[string]*Coupon{}}
	svc := newTestService(repo, "AAAA-AAAA-AAAA-AAAA", "AAAA-AAAA-AAAA-AAAA", "BBBB-BBBB-BBBB-BBBB")

	resp, err := svc.Generate(context.Background(), GenerateRequest{Count: SizeOf(3), BatchID: " spring "})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Generated)
	assert.Equal(t, "spring", resp.BatchID)
}

func TestGeneratePersistenceFailure(t *testing.T) {
	repo := &fakeRepo{codes: map[string]*Coupon{}, insertErr: errors.New("disk full")}

	_, err := newTestService(repo).Generate(context.Background(), GenerateRequest{Count: SizeOf(2)})
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode)
	assert.Equal(t, "Failed to generate coupons", appErr.Message)
}

func TestRedeem(t *testing.T) {
	past := time.UnixMilli(1767225600000).Add(-time.Hour)
	repo := &fakeRepo{codes: map[string]*Coupon{
		"GOOD-CODE": {Code: "GOOD-CODE", Value: 10, BatchID: "b"},
		"OLD-CODE":  {Code: "OLD-CODE", Value: 10, ExpiresAt: &past},
	}, balance: 5}
	svc := newTestService(repo)
	ctx := context.Background()

	resp, err := svc.Redeem(ctx, " good-code ", "u1")
	require.NoError(t, err)
	assert.Equal(t, 15, resp.NewBalance)
	assert.Equal(t, 10, resp.PointsAdded)

	cases := []struct {
		code, user string
		status     int
		msg        string
	}{
		{"good-code", "u1", http.StatusConflict, "Coupon already used"},
		{"old-code", "u1", http.StatusBadRequest, "Coupon has expired"},
		{"nope", "u1", http.StatusNotFound, "Coupon not found"},
		{"  ", "u1", http.StatusBadRequest, "Invalid coupon code"},
		{"good-code", "", http.StatusUnauthorized, "Authentication required"},
	}
	for _, tc := range cases {
		_, err := svc.Redeem(ctx, tc.code, tc.user)
		appErr, ok := core.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, tc.status, appErr.StatusCode, tc.code)
		assert.Equal(t, tc.msg, appErr.Message, tc.code)
	}
}

func TestGenerateEndpointGuard(t *testing.T) {
	repo := &fakeRepo{codes: map[string]*Coupon{}}
	r := chi.NewRouter()
	NewHandler(newTestService(repo)).RegisterRoutes(r,
		func(next http.Handler) http.Handler { return next },
		middleware.RequireAdminOrServerToken("X-Server-Auth-Token", "s3cret"),
	)

	req := httptest.NewRequest(http.MethodPost, "/generate-coupons", strings.NewReader(`{"count":2}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/generate-coupons", strings.NewReader(`{"count":2,"batchId":"x"}`))
	req.Header.Set("X-Server-Auth-Token", "s3cret")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"data":{"batchId":"x","generated":2}}`, rr.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/generate-coupons", nil)
	req.Header.Set("X-Server-Auth-Token", "s3cret")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, repo.codes, 12)
}

func TestRepositoryRedeemCredits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(sqlx.NewDb(db, "sqlmock"))
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM coupons")).
		WithArgs("ABCD").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "code", "value", "used", "expires_at", "batch_id", "redeemed_by", "used_at", "created_at",
		}).AddRow("c1", "ABCD", 10, false, nil, "b", nil, nil, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE coupons")).
		WithArgs("c1", "u1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WithArgs("u1", 10).
		WillReturnRows(sqlmock.NewRows([]string{"points"}).AddRow(110))
	mock.ExpectCommit()

	c, balance, err := repo.Redeem(context.Background(), "ABCD", "u1", now)
	require.NoError(t, err)
	assert.Equal(t, 110, balance)
	assert.True(t, c.Used)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryRedeemUsedRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(sqlx.NewDb(db, "sqlmock"))
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM coupons")).
		WithArgs("ABCD").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "code", "value", "used", "expires_at", "batch_id", "redeemed_by", "used_at", "created_at",
		}).AddRow("c1", "ABCD", 10, true, nil, "b", "u2", now, now))
	mock.ExpectRollback()

	_, _, err = repo.Redeem(context.Background(), "ABCD", "u1", now)
	assert.ErrorIs(t, err, core.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
