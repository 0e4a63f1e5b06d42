package httpserver_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rai/bot-order-bridge/internal/platform/httpserver"
)

func TestHealth(t *testing.T) {
	ok := httpserver.Check{Name: "spanner", Fn: func(ctx context.Context) error { return nil }}
	down := httpserver.Check{Name: "postgres", Fn: func(ctx context.Context) error { return errors.New("connection refused") }}

	t.Run("all checks pass", func(t *testing.T) {
		rec := httptest.NewRecorder()
		httpserver.Health(time.Second, ok)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","checks":{"spanner":"ok"}}`, rec.Body.String())
	})

	t.Run("one check fails", func(t *testing.T) {
		rec := httptest.NewRecorder()
		httpserver.Health(time.Second, ok, down)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"status":"unavailable","checks":{"spanner":"ok","postgres":"connection refused"}}`, rec.Body.String())
	})

	t.Run("no checks", func(t *testing.T) {
		rec := httptest.NewRecorder()
		httpserver.Health(time.Second)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})
}

func TestServer_RunStopsWithContext(t *testing.T) {
	srv := httpserver.New(httpserver.Config{Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second}, http.NotFoundHandler(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
