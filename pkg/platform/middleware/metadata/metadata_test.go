package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"potterdex/pkg/requestcontext"
)

func TestClientIP(t *testing.T) {
	behindProxy, err := NewResolver([]string{"10.0.0.0/8", "192.0.2.1"})
	require.NoError(t, err)
	direct, err := NewResolver(nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		resolver *Resolver
		headers  map[string]string
		remote   string
		want     string
	}{
		{name: "untrusted peer ignores forwarded header", resolver: direct, headers: map[string]string{"X-Forwarded-For": "203.0.113.7"}, remote: "198.51.100.9:1234", want: "198.51.100.9"},
		{name: "untrusted peer ignores real ip header", resolver: direct, headers: map[string]string{"X-Real-IP": "203.0.113.7"}, remote: "198.51.100.9:1234", want: "198.51.100.9"},
		{name: "trusted proxy forwards client", resolver: behindProxy, headers: map[string]string{"X-Forwarded-For": "203.0.113.7"}, remote: "10.0.0.2:1234", want: "203.0.113.7"},
		{name: "spoofed left hops are skipped", resolver: behindProxy, headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.7, 10.0.0.5"}, remote: "10.0.0.2:1234", want: "203.0.113.7"},
		{name: "garbage hop stops the walk", resolver: behindProxy, headers: map[string]string{"X-Forwarded-For": "nonsense, 10.0.0.5"}, remote: "10.0.0.2:1234", want: "10.0.0.5"},
		{name: "single trusted address", resolver: behindProxy, headers: map[string]string{"X-Forwarded-For": "203.0.113.8"}, remote: "192.0.2.1:80", want: "203.0.113.8"},
		{name: "trusted proxy real ip header", resolver: behindProxy, headers: map[string]string{"X-Real-IP": " 198.51.100.4 "}, remote: "10.0.0.2:1234", want: "198.51.100.4"},
		{name: "trusted proxy without headers", resolver: behindProxy, remote: "10.0.0.2:1234", want: "10.0.0.2"},
		{name: "ipv4 remote addr", resolver: direct, remote: "127.0.0.1:54321", want: "127.0.0.1"},
		{name: "ipv6 remote addr", resolver: direct, remote: "[::1]:54321", want: "::1"},
		{name: "empty remote addr", resolver: direct, remote: "", want: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, tt.resolver.ClientIP(r))
		})
	}
}

func TestNewResolverRejectsMalformedEntries(t *testing.T) {
	_, err := NewResolver([]string{"10.0.0.0/40"})
	assert.Error(t, err)

	_, err = NewResolver([]string{"proxy.internal"})
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	res, err := NewResolver(nil)
	require.NoError(t, err)

	var gotIP, gotUA string
	h := res.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIP = requestcontext.ClientIP(r.Context())
		gotUA = requestcontext.UserAgent(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.10:8080"
	r.Header.Set("User-Agent", "Mozilla/5.0")
	r.Header.Set("X-Forwarded-For", "203.0.113.99")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "192.0.2.10", gotIP)
	assert.Equal(t, "Mozilla/5.0", gotUA)
}
