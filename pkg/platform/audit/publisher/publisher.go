// Package publisher fronts an audit.Store. In sync mode Emit writes through;
// with WithAsyncBuffer events are queued and a single goroutine drains them so
// request handling never waits on the sink.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	audit "potterdex/pkg/platform/audit"
)

// Publisher emits audit events to a store.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	inbox   chan audit.Event
	done    chan struct{}
	closeMu sync.RWMutex
	closed  bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer queues up to size events and writes them from a background goroutine.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.inbox = make(chan audit.Event, size)
		}
	}
}

// WithLogger sets the logger used to report sink failures in async mode.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a Publisher writing to store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.done = make(chan struct{})
		go p.run()
	}
	return p
}

// Emit records event. Missing timestamp and category are filled in. In async
// mode a full buffer drops the event with a warning rather than blocking.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return p.store.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"subject", event.Subject,
			"request_id", event.RequestID,
		)
	}
	return nil
}

func (p *Publisher) run() {
	defer close(p.done)
	for event := range p.inbox {
		// The request context is gone by now; give each write its own deadline.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := p.store.Append(ctx, event); err != nil {
			p.logger.Error("failed to write audit event",
				"action", event.Action,
				"subject", event.Subject,
				"error", err,
			)
		}
		cancel()
	}
}

// Close drains queued events and stops the background goroutine. Safe to call twice.
func (p *Publisher) Close() {
	if p.inbox == nil {
		return
	}
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return
	}
	p.closed = true
	close(p.inbox)
	p.closeMu.Unlock()
	<-p.done
}
