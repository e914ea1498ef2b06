package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"potterdex/internal/character/filter"
	"potterdex/internal/character/metrics"
	"potterdex/internal/character/models"
	dErrors "potterdex/pkg/domain-errors"
	"potterdex/pkg/platform/audit"
	"potterdex/pkg/platform/sentinel"
	"potterdex/pkg/requestcontext"
)

type Store interface {
	Replace(ctx context.Context, records []models.Character) (int, error)
	FindAll(ctx context.Context) ([]models.Character, error)
	Find(ctx context.Context, code filter.Code) ([]models.Character, error)
	Insert(ctx context.Context, c models.Character) (models.Character, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type SeedLoader interface {
	Load() ([]models.Character, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const defaultImportTimeout = 2 * time.Minute

// Service orchestrates the character collection: listing, filtering,
// single-record mutations and the bulk reload from the seed file.
type Service struct {
	store          Store
	seed           SeedLoader
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	importTimeout  time.Duration

	imports singleflight.Group
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithImportTimeout bounds a single drop-and-reload.
func WithImportTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.importTimeout = d
		}
	}
}

// New constructs a Service.
func New(store Store, seed SeedLoader, opts ...Option) *Service {
	s := &Service{
		store:         store,
		seed:          seed,
		logger:        slog.Default(),
		importTimeout: defaultImportTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Import replaces the whole collection with the seed file contents and
// returns the number of records written. Callers arriving while an import is
// running share its outcome instead of starting another drop.
func (s *Service) Import(ctx context.Context) (int, error) {
	ch := s.imports.DoChan("import", func() (any, error) {
		// detached so one caller going away does not abort the reload for the rest
		importCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.importTimeout)
		defer cancel()
		return s.runImport(importCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		if res.Shared {
			s.logger.InfoContext(ctx, "import coalesced with in-flight reload",
				"request_id", requestcontext.RequestID(ctx))
		}
		return res.Val.(int), nil
	case <-ctx.Done():
		return 0, dErrors.Wrap(ctx.Err(), dErrors.CodeInternal, "import interrupted")
	}
}

func (s *Service) runImport(ctx context.Context) (int, error) {
	start := time.Now()
	records, err := s.seed.Load()
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load seed file")
	}

	n, err := s.store.Replace(ctx, records)
	s.observe("import", start)
	if err != nil {
		s.storeError("import")
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reload collection")
	}

	attrs := []any{"inserted", n, "seed_records", len(records)}
	// the reload already succeeded; a failed count only costs the log field
	if size, err := s.store.Count(ctx); err != nil {
		s.storeError("count")
		s.logger.WarnContext(ctx, "failed to count collection after import", "error", err.Error())
	} else {
		attrs = append(attrs, "collection_size", size)
	}

	if s.metrics != nil {
		s.metrics.RecordImport(n)
	}
	s.logAudit(ctx, audit.EventCollectionImported, "collection", n, attrs...)
	return n, nil
}

// List returns every record in store order.
func (s *Service) List(ctx context.Context) ([]models.Character, error) {
	start := time.Now()
	records, err := s.store.FindAll(ctx)
	s.observe("list", start)
	if err != nil {
		s.storeError("list")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list characters")
	}
	return records, nil
}

// ListFiltered returns the records selected by code. Unknown codes select everything.
func (s *Service) ListFiltered(ctx context.Context, code filter.Code) ([]models.Character, error) {
	start := time.Now()
	records, err := s.store.Find(ctx, code)
	s.observe("filter", start)
	if err != nil {
		s.storeError("filter")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to filter characters")
	}
	return records, nil
}

// Create stores a record built from the insert form. The form is not validated.
func (s *Service) Create(ctx context.Context, form models.CharacterForm) (models.Character, error) {
	start := time.Now()
	created, err := s.store.Insert(ctx, form.ToCharacter())
	s.observe("insert", start)
	if err != nil {
		s.storeError("insert")
		return models.Character{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to insert character")
	}

	if s.metrics != nil {
		s.metrics.IncrementInserted()
	}
	s.logAudit(ctx, audit.EventCharacterInserted, created.IDHex(), 1, "name", created.Name)
	return created, nil
}

// Delete removes the record with the given hex id. An id that matches no
// record is not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dErrors.New(dErrors.CodeBadRequest, "falta el parámetro id")
	}

	start := time.Now()
	removed, err := s.store.Delete(ctx, id)
	s.observe("delete", start)
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidID) {
			return dErrors.Wrap(err, dErrors.CodeBadRequest, "identificador no válido")
		}
		s.storeError("delete")
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete character")
	}

	if !removed {
		s.logger.InfoContext(ctx, "delete matched no record",
			"id", id,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil
	}
	if s.metrics != nil {
		s.metrics.IncrementDeleted()
	}
	s.logAudit(ctx, audit.EventCharacterDeleted, id, 1)
	return nil
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, subject string, count int, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", string(event), "subject", subject, "log_type", "audit")
	s.logger.InfoContext(ctx, string(event), args...)

	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:    string(event),
		Subject:   subject,
		Count:     count,
		RequestID: requestID,
		ClientIP:  requestcontext.ClientIP(ctx),
		Timestamp: requestcontext.Now(ctx),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

func (s *Service) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveOp(op, start)
	}
}

func (s *Service) storeError(op string) {
	if s.metrics != nil {
		s.metrics.IncrementStoreError(op)
	}
}
