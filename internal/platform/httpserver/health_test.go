package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	t.Run("all checks pass", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HealthHandler(map[string]HealthCheck{"mongo": ok, "redis": ok}).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
	})

	t.Run("no checks configured", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HealthHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("failing dependency is reported", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HealthHandler(map[string]HealthCheck{"mongo": down, "redis": ok}).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "mongo: connection refused", rec.Body.String())
	})
}

func TestNewAppliesTimeouts(t *testing.T) {
	srv := New(":0", http.NotFoundHandler())

	assert.Equal(t, ":0", srv.Addr)
	assert.NotZero(t, srv.ReadHeaderTimeout)
	assert.NotZero(t, srv.IdleTimeout)
}
