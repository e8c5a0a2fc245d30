// AngelaMos | 2026
// handler_test.go

package content

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/asmr-backend/internal/middleware"
)

// asUser stands in for the session middleware.
func asUser(id, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id != "" {
				r = r.WithContext(middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{
					UserID: id,
					Role:   role,
				}))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newRouter(svc *Service, id, role string) *chi.Mux {
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r, asUser(id, role), asUser(id, role))
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func serve(t *testing.T, h http.Handler, method, target string) (int, envelope) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return rr.Code, env
}

func TestPurchaseEndpointReturns201(t *testing.T) {
	svc, _, _ := newFixture(300)

	code, env := serve(t, newRouter(svc, "u1", "free"), http.MethodPost, "/content/purchase/1")
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, env.Success)

	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Contains(t, data, "user")
	assert.Contains(t, data, "resource")
	assert.JSONEq(t,
		`{"pointsDeducted":100,"remainingPoints":200,"purchaseTime":"2026-01-02T03:04:05Z"}`,
		string(data["transaction"]),
	)
}

func TestListEndpointShape(t *testing.T) {
	svc, _, _ := newFixture(0)

	code, env := serve(t, newRouter(svc, "", ""), http.MethodGet, "/content/list?page=abc&limit=5")
	require.Equal(t, http.StatusOK, code)

	var page map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &page))
	for _, key := range []string{"docs", "totalDocs", "page", "limit", "totalPages", "hasNextPage", "hasPrevPage"} {
		assert.Contains(t, page, key)
	}
	assert.Equal(t, float64(5), page["limit"])
	assert.Equal(t, float64(1), page["page"])
}

func TestDetailEndpointVisibility(t *testing.T) {
	svc, _, _ := newFixture(0)

	_, anon := serve(t, newRouter(svc, "", ""), http.MethodGet, "/content/1")
	assert.NotContains(t, string(anon.Data), `"audios"`)

	_, premium := serve(t, newRouter(svc, "p1", "premium"), http.MethodGet, "/content/1")
	assert.Contains(t, string(premium.Data), `"audios"`)

	code, hidden := serve(t, newRouter(svc, "", ""), http.MethodGet, "/content/3")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Resource not found", hidden.Message)
}
