package testutil

import (
	"net/http"

	"potterdex/pkg/requestcontext"
)

// WithClientIP sets the client address the metadata middleware would have stored.
func WithClientIP(req *http.Request, ip string) *http.Request {
	ctx := requestcontext.WithClientMetadata(req.Context(), ip, req.UserAgent())
	return req.WithContext(ctx)
}

// WithRequestID sets the request id the request id middleware would have stored.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
