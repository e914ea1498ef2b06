package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"potterdex/pkg/platform/httputil"
)

// Recovery converts panics into a generic 500 and logs the stack.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				ctx := r.Context()
				logger.ErrorContext(ctx, "panic recovered",
					"request_id", GetRequestID(ctx),
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				httputil.WriteText(w, http.StatusInternalServerError, httputil.MsgInternal)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
