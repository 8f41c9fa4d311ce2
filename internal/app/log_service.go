package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/routeslip/internal/ports/primary"
	"github.com/example/routeslip/internal/ports/secondary"
)

// LogServiceImpl implements the LogService interface.
type LogServiceImpl struct {
	eventRepo secondary.DeliveryEventRepository
	now       func() time.Time
}

// NewLogService creates a new LogService with injected dependencies.
func NewLogService(eventRepo secondary.DeliveryEventRepository) *LogServiceImpl {
	return &LogServiceImpl{
		eventRepo: eventRepo,
		now:       time.Now,
	}
}

// ListHistory returns the audit entries of a delivery, oldest first.
func (s *LogServiceImpl) ListHistory(ctx context.Context, deliveryID string, limit int) ([]*primary.LogEntry, error) {
	records, err := s.eventRepo.ListByDelivery(ctx, deliveryID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	entries := make([]*primary.LogEntry, len(records))
	for i, r := range records {
		entries[i] = recordToLogEntry(r)
	}
	return entries, nil
}

// PruneLogs deletes entries older than the specified number of days.
func (s *LogServiceImpl) PruneLogs(ctx context.Context, olderThanDays int) (int, error) {
	if olderThanDays < 0 {
		return 0, fmt.Errorf("days must be non-negative, got %d", olderThanDays)
	}
	cutoff := s.now().AddDate(0, 0, -olderThanDays)
	return s.eventRepo.PruneBefore(ctx, cutoff)
}

func recordToLogEntry(r *secondary.DeliveryEventRecord) *primary.LogEntry {
	return &primary.LogEntry{
		ID:         r.ID,
		DeliveryID: r.DeliveryID,
		ActorID:    r.ActorID,
		Action:     r.Action,
		FieldName:  r.FieldName,
		OldValue:   r.OldValue,
		NewValue:   r.NewValue,
		CreatedAt:  r.CreatedAt,
	}
}

// Ensure LogServiceImpl implements the interface
var _ primary.LogService = (*LogServiceImpl)(nil)
