package sqlite

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/example/routeslip/internal/ctxutil"
	"github.com/example/routeslip/internal/ports/secondary"
)

// LogWriterAdapter implements secondary.LogWriter using DeliveryEventRepository.
type LogWriterAdapter struct {
	eventRepo secondary.DeliveryEventRepository
	now       func() time.Time
}

// NewLogWriterAdapter creates a new LogWriterAdapter.
func NewLogWriterAdapter(eventRepo secondary.DeliveryEventRepository) *LogWriterAdapter {
	return &LogWriterAdapter{
		eventRepo: eventRepo,
		now:       time.Now,
	}
}

// LogCreate logs the creation of a delivery.
func (w *LogWriterAdapter) LogCreate(ctx context.Context, deliveryID string) error {
	return w.writeLog(ctx, deliveryID, "create", "", "", "")
}

// LogUpdate logs a change of one delivery field.
func (w *LogWriterAdapter) LogUpdate(ctx context.Context, deliveryID, fieldName, oldValue, newValue string) error {
	return w.writeLog(ctx, deliveryID, "update", fieldName, oldValue, newValue)
}

// LogDelete logs the removal of a delivery.
func (w *LogWriterAdapter) LogDelete(ctx context.Context, deliveryID string) error {
	return w.writeLog(ctx, deliveryID, "delete", "", "", "")
}

// LogReorder logs a position change caused by a reorder.
func (w *LogWriterAdapter) LogReorder(ctx context.Context, deliveryID string, oldPosition, newPosition int) error {
	return w.writeLog(ctx, deliveryID, "reorder", "sequence_position", strconv.Itoa(oldPosition), strconv.Itoa(newPosition))
}

// writeLog writes a log entry with common logic.
func (w *LogWriterAdapter) writeLog(ctx context.Context, deliveryID, action, fieldName, oldValue, newValue string) error {
	record := &secondary.DeliveryEventRecord{
		ID:         uuid.NewString(),
		DeliveryID: deliveryID,
		ActorID:    ctxutil.ActorFromContext(ctx),
		Action:     action,
		FieldName:  fieldName,
		OldValue:   oldValue,
		NewValue:   newValue,
		CreatedAt:  w.now(),
	}

	return w.eventRepo.Create(ctx, record)
}

// Ensure LogWriterAdapter implements the interface
var _ secondary.LogWriter = (*LogWriterAdapter)(nil)
