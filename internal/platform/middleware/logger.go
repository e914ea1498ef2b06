package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/mssola/useragent"

	"potterdex/pkg/requestcontext"
)

// Logger writes one structured access-log line per request.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			ctx := r.Context()
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			attrs := []any{
				"request_id", GetRequestID(ctx),
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"client_ip", requestcontext.ClientIP(ctx),
			}
			if ua := requestcontext.UserAgent(ctx); ua != "" {
				parsed := useragent.New(ua)
				browser, version := parsed.Browser()
				attrs = append(attrs,
					"browser", browser,
					"browser_version", version,
					"os", parsed.OS(),
					"bot", parsed.Bot(),
				)
			}

			switch {
			case status >= http.StatusInternalServerError:
				logger.ErrorContext(ctx, "request failed", attrs...)
			case status >= http.StatusBadRequest:
				logger.WarnContext(ctx, "request rejected", attrs...)
			default:
				logger.InfoContext(ctx, "request served", attrs...)
			}
		})
	}
}
