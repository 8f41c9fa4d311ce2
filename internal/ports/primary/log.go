package primary

import (
	"context"
	"time"
)

// LogService defines the primary port for the delivery audit trail.
type LogService interface {
	// ListHistory returns the audit entries of a delivery, oldest first.
	ListHistory(ctx context.Context, deliveryID string, limit int) ([]*LogEntry, error)

	// PruneLogs deletes entries older than the specified number of days.
	PruneLogs(ctx context.Context, olderThanDays int) (int, error)
}

// LogEntry represents an audit entry at the port boundary.
type LogEntry struct {
	ID         string
	DeliveryID string
	ActorID    string
	Action     string // 'create', 'update', 'delete', 'reorder'
	FieldName  string // For updates and reorders only
	OldValue   string
	NewValue   string
	CreatedAt  time.Time
}
