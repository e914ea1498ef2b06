package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

const healthTimeout = 2 * time.Second

// HealthHandler runs every check and answers 200 "ok" when all pass, 503 with
// one line per failing dependency otherwise.
func HealthHandler(checks map[string]HealthCheck) http.Handler {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		var failures []string
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			}
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if len(failures) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(strings.Join(failures, "\n")))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}
