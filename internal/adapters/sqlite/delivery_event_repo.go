package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/routeslip/internal/db"
	"github.com/example/routeslip/internal/errorx"
	"github.com/example/routeslip/internal/ports/secondary"
)

// DeliveryEventRepository implements secondary.DeliveryEventRepository with SQLite.
type DeliveryEventRepository struct {
	db *sql.DB
}

// NewDeliveryEventRepository creates a new SQLite delivery event repository.
func NewDeliveryEventRepository(db *sql.DB) *DeliveryEventRepository {
	return &DeliveryEventRepository{db: db}
}

// Create persists a new audit entry.
func (r *DeliveryEventRepository) Create(ctx context.Context, event *secondary.DeliveryEventRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO delivery_events (id, delivery_id, actor_id, action, field_name, old_value, new_value, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.DeliveryID,
		nullString(event.ActorID),
		event.Action,
		nullString(event.FieldName),
		nullString(event.OldValue),
		nullString(event.NewValue),
		db.FormatTime(event.CreatedAt),
	)
	if err != nil {
		return classify("create delivery event", err)
	}

	return nil
}

// ListByDelivery returns the entries for a delivery, oldest first.
func (r *DeliveryEventRepository) ListByDelivery(ctx context.Context, deliveryID string, limit int) ([]*secondary.DeliveryEventRecord, error) {
	query := `SELECT id, delivery_id, actor_id, action, field_name, old_value, new_value, created_at
		FROM delivery_events WHERE delivery_id = ? ORDER BY created_at ASC, rowid ASC`
	args := []any{deliveryID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errorx.Persistence("list delivery events", err)
	}
	defer rows.Close()

	var events []*secondary.DeliveryEventRecord
	for rows.Next() {
		var (
			actorID, fieldName, oldValue, newValue sql.NullString
			createdAt                              string
		)
		event := &secondary.DeliveryEventRecord{}
		if err := rows.Scan(&event.ID, &event.DeliveryID, &actorID, &event.Action, &fieldName, &oldValue, &newValue, &createdAt); err != nil {
			return nil, errorx.Persistence("scan delivery event", err)
		}
		event.ActorID = actorID.String
		event.FieldName = fieldName.String
		event.OldValue = oldValue.String
		event.NewValue = newValue.String
		if event.CreatedAt, err = db.ParseTime(createdAt); err != nil {
			return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, errorx.Persistence("list delivery events", err)
	}

	return events, nil
}

// PruneBefore deletes entries older than cutoff.
func (r *DeliveryEventRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM delivery_events WHERE created_at < ?", db.FormatTime(cutoff))
	if err != nil {
		return 0, errorx.Persistence("prune delivery events", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errorx.Persistence("prune delivery events", err)
	}
	return int(n), nil
}

// Ensure DeliveryEventRepository implements the interface
var _ secondary.DeliveryEventRepository = (*DeliveryEventRepository)(nil)
