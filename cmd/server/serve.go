package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"potterdex/internal/character/handler"
	"potterdex/internal/character/render"
	"potterdex/internal/platform/httpserver"
	platformmetrics "potterdex/internal/platform/metrics"
	"potterdex/internal/platform/redis"
	ratelimitmetrics "potterdex/internal/ratelimit/metrics"
	ratelimitmw "potterdex/internal/ratelimit/middleware"
	"potterdex/internal/ratelimit/store/bucket"
	"potterdex/pkg/platform/middleware/metadata"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default command)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	deps, err := buildDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := deps.close(closeCtx); err != nil {
			log.Error("failed to release resources", "error", err)
		}
	}()

	limiter, err := buildRateLimiter(ctx, deps)
	if err != nil {
		return err
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}

	clientIP, err := metadata.NewResolver(cfg.Server.TrustedProxies)
	if err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}

	httpMetrics := platformmetrics.New(deps.registry)
	router := chi.NewRouter()
	handler.New(deps.service, renderer, log,
		handler.WithMetrics(httpMetrics),
		handler.WithRateLimiter(limiter),
		handler.WithClientResolver(clientIP),
		handler.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		handler.WithRequestTimeout(cfg.Server.RequestTimeout),
	).Register(router)

	servers := []*http.Server{httpserver.New(cfg.Server.Addr, router)}
	if cfg.Server.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", httpMetrics.Handler())
		mux.Handle("/healthz", httpserver.HealthHandler(deps.health))
		servers = append(servers, httpserver.New(cfg.Server.MetricsAddr, mux))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			log.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server on %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

// buildRateLimiter returns a limiter backed by Redis when configured, otherwise
// by process memory. A zero request budget disables limiting.
func buildRateLimiter(ctx context.Context, deps *dependencies) (*ratelimitmw.Middleware, error) {
	cfg := deps.cfg
	opts := []ratelimitmw.Option{
		ratelimitmw.WithMetrics(ratelimitmetrics.New(deps.registry)),
		ratelimitmw.WithAuditPublisher(deps.audit),
	}
	if cfg.RateLimit.RequestsPerWindow <= 0 {
		return ratelimitmw.New(nil, 0, 0, deps.logger, opts...), nil
	}

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	if client == nil {
		return ratelimitmw.New(bucket.NewInMemoryBucketStore(),
			cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window, deps.logger, opts...), nil
	}

	deps.onClose(func(context.Context) error { return client.Close() })
	deps.health["redis"] = client.Health
	deps.logger.Info("rate limits shared through redis")
	return ratelimitmw.New(bucket.NewRedisBucketStore(client.Client),
		cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window, deps.logger, opts...), nil
}
