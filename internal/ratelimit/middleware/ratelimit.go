package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"potterdex/internal/ratelimit/metrics"
	"potterdex/internal/ratelimit/models"
	"potterdex/pkg/platform/audit"
	"potterdex/pkg/platform/httputil"
	"potterdex/pkg/requestcontext"
)

// BucketStore is the sliding window backend.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// AuditPublisher records rejected requests.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Middleware struct {
	store    BucketStore
	limit    int
	window   time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	auditor  AuditPublisher
	disabled bool
}

type Option func(*Middleware)

func WithMetrics(metrics *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = metrics
	}
}

func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(m *Middleware) {
		m.auditor = auditor
	}
}

// New creates a limiter allowing limit requests per client IP within window.
// A non-positive limit disables limiting.
func New(store BucketStore, limit int, window time.Duration, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		limit:  limit,
		window: window,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if store == nil || limit <= 0 {
		m.disabled = true
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit limits requests per client IP for the named route class.
// Store failures fail open.
func (m *Middleware) RateLimit(class string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			if m.metrics != nil {
				m.metrics.IncrementChecks(class)
			}

			result, err := m.store.Allow(ctx, models.Key(class, ip), m.limit, m.window)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check rate limit", "error", err, "class", class, "client_ip", ip)
				if m.metrics != nil {
					m.metrics.IncrementErrors()
				}
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)

			if !result.Allowed {
				m.reject(ctx, class, ip)
				writeRateLimitExceeded(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) reject(ctx context.Context, class, ip string) {
	m.logger.WarnContext(ctx, "rate limit exceeded", "class", class, "client_ip", ip)
	if m.metrics != nil {
		m.metrics.IncrementRejected(class)
	}
	if m.auditor == nil {
		return
	}
	err := m.auditor.Emit(ctx, audit.Event{
		Action:    string(audit.EventRateLimitExceeded),
		Subject:   class,
		Reason:    "rate_limit_exceeded",
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  ip,
		Timestamp: requestcontext.Now(ctx),
	})
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to emit audit event", "error", err)
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteText(w, http.StatusTooManyRequests, httputil.MsgTooManyRequests)
}
