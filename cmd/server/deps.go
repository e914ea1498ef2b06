package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	charactermetrics "potterdex/internal/character/metrics"
	"potterdex/internal/character/seed"
	"potterdex/internal/character/service"
	"potterdex/internal/character/store"
	"potterdex/internal/platform/config"
	"potterdex/internal/platform/httpserver"
	"potterdex/internal/platform/logger"
	"potterdex/internal/platform/mongo"
	"potterdex/pkg/platform/audit"
	auditpublisher "potterdex/pkg/platform/audit/publisher"
	auditkafka "potterdex/pkg/platform/audit/store/kafka"
	auditlog "potterdex/pkg/platform/audit/store/logstore"
)

// dependencies holds everything both commands share. Closers run in reverse
// order of acquisition.
type dependencies struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	service  *service.Service
	audit    *auditpublisher.Publisher
	health   map[string]httpserver.HealthCheck
	closers  []func(context.Context) error
}

func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, logger.New(cfg.Log.Level, cfg.Log.Format), nil
}

func buildDependencies(ctx context.Context, cfg config.Config, log *slog.Logger) (_ *dependencies, err error) {
	d := &dependencies{
		cfg:      cfg,
		logger:   log,
		registry: prometheus.NewRegistry(),
		health:   map[string]httpserver.HealthCheck{},
	}
	defer func() {
		if err != nil {
			_ = d.close(context.Background())
		}
	}()

	d.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	characters, err := d.buildStore(ctx)
	if err != nil {
		return nil, err
	}

	sink, err := d.buildAuditSink()
	if err != nil {
		return nil, err
	}
	d.audit = auditpublisher.NewPublisher(sink,
		auditpublisher.WithAsyncBuffer(cfg.Audit.BufferSize),
		auditpublisher.WithLogger(log),
	)
	d.onClose(func(context.Context) error {
		d.audit.Close()
		return nil
	})

	d.service = service.New(characters, seed.NewLoader(cfg.SeedFile),
		service.WithLogger(log),
		service.WithAuditPublisher(d.audit),
		service.WithMetrics(charactermetrics.New(d.registry)),
	)
	return d, nil
}

func (d *dependencies) buildStore(ctx context.Context) (service.Store, error) {
	if d.cfg.StoreBackend == config.BackendMemory {
		d.logger.Warn("using in-memory character store; data is lost on exit")
		return store.NewInMemoryStore(), nil
	}

	client, err := mongo.New(ctx, d.cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	d.onClose(client.Close)
	d.health["mongo"] = client.Health
	d.logger.Info("connected to mongo",
		"database", d.cfg.Mongo.Database,
		"collection", d.cfg.Mongo.Collection,
	)
	return store.NewMongoStore(client.Database(), d.cfg.Mongo.Collection), nil
}

func (d *dependencies) buildAuditSink() (audit.Store, error) {
	if len(d.cfg.Audit.KafkaBrokers) == 0 {
		return auditlog.New(d.logger), nil
	}
	sink, err := auditkafka.New(d.cfg.Audit.KafkaBrokers, d.cfg.Audit.Topic)
	if err != nil {
		return nil, fmt.Errorf("creating kafka audit sink: %w", err)
	}
	d.onClose(func(context.Context) error {
		sink.Close()
		return nil
	})
	d.logger.Info("audit events published to kafka", "topic", d.cfg.Audit.Topic)
	return sink, nil
}

func (d *dependencies) onClose(fn func(context.Context) error) {
	d.closers = append(d.closers, fn)
}

func (d *dependencies) close(ctx context.Context) error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
