package secondary

import (
	"context"
	"time"
)

// LogWriter defines the interface for writing delivery audit entries.
// Implementations extract the operator from context.
type LogWriter interface {
	// LogCreate logs the creation of a delivery.
	LogCreate(ctx context.Context, deliveryID string) error

	// LogUpdate logs a change of one delivery field.
	// fieldName, oldValue, newValue describe what changed.
	LogUpdate(ctx context.Context, deliveryID, fieldName, oldValue, newValue string) error

	// LogDelete logs the removal of a delivery.
	LogDelete(ctx context.Context, deliveryID string) error

	// LogReorder logs a position change caused by a reorder.
	LogReorder(ctx context.Context, deliveryID string, oldPosition, newPosition int) error
}

// DeliveryEventRepository defines the secondary port for audit entry persistence.
type DeliveryEventRepository interface {
	// Create persists a new audit entry.
	Create(ctx context.Context, event *DeliveryEventRecord) error

	// ListByDelivery returns the entries for a delivery, oldest first.
	ListByDelivery(ctx context.Context, deliveryID string, limit int) ([]*DeliveryEventRecord, error)

	// PruneBefore deletes entries older than cutoff and returns how many were removed.
	PruneBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// DeliveryEventRecord represents an audit entry as stored in persistence.
type DeliveryEventRecord struct {
	ID         string
	DeliveryID string
	ActorID    string // Empty string means null
	Action     string // create, update, delete, reorder
	FieldName  string // Empty string means null
	OldValue   string // Empty string means null
	NewValue   string // Empty string means null
	CreatedAt  time.Time
}
