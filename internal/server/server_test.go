// AngelaMos | 2026
// server_test.go

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/asmr-backend/internal/config"
)

type notifier struct{ shutdown bool }

func (n *notifier) SetShutdown(v bool) { n.shutdown = v }

func newTestServer(n *notifier) *Server {
	return New(Config{
		ServerConfig: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		},
		HealthHandler: n,
	})
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	srv := newTestServer(&notifier{})
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t,
		`{"success":false,"message":"Not found","code":"NOT_FOUND"}`,
		rr.Body.String(),
	)
}

func TestRecovererTurnsPanicInto500(t *testing.T) {
	srv := newTestServer(&notifier{})
	srv.Router().Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestShutdownNotifiesHealth(t *testing.T) {
	n := &notifier{}
	srv := newTestServer(n)

	require.NoError(t, srv.Shutdown(context.Background(), 0))
	assert.True(t, n.shutdown)
}
