// Package logstore writes audit events to the structured application log. It
// is the default sink when no broker is configured.
package logstore

import (
	"context"
	"log/slog"

	audit "potterdex/pkg/platform/audit"
)

type Store struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Store {
	return &Store{logger: logger.With("component", "audit")}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	s.logger.InfoContext(ctx, "audit event",
		"category", event.Category,
		"action", event.Action,
		"subject", event.Subject,
		"count", event.Count,
		"reason", event.Reason,
		"request_id", event.RequestID,
		"client_ip", event.ClientIP,
		"timestamp", event.Timestamp,
	)
	return nil
}
