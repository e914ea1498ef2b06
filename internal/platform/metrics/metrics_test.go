package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesObservedRequests(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRequest("/mostrarTodos", http.MethodGet, "200", time.Now().Add(-10*time.Millisecond))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `potterdex_http_requests_total{method="GET",route="/mostrarTodos",status="200"} 1`)
	assert.Contains(t, string(body), "potterdex_http_request_duration_seconds_bucket")
}

func TestNewOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
