package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// route or retain them differently.
type EventCategory string

const (
	// CategoryData covers changes to stored records: inserts, deletes, reloads.
	CategoryData EventCategory = "data"

	// CategorySecurity covers events relevant to abuse monitoring, e.g. rate limiting.
	CategorySecurity EventCategory = "security"
)

// Event is emitted from the service layer to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    string        `json:"action"`
	// Subject is the affected record id, or the collection name for bulk actions.
	Subject   string `json:"subject"`
	Count     int    `json:"count,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
}

type AuditEvent string

const (
	EventCollectionImported AuditEvent = "collection_imported"
	EventCharacterInserted  AuditEvent = "character_inserted"
	EventCharacterDeleted   AuditEvent = "character_deleted"
	EventRateLimitExceeded  AuditEvent = "rate_limit_exceeded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventCollectionImported: CategoryData,
	EventCharacterInserted:  CategoryData,
	EventCharacterDeleted:   CategoryData,
	EventRateLimitExceeded:  CategorySecurity,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryData.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryData
}

// Store is a sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
