// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/example/routeslip/internal/db"
	"github.com/example/routeslip/internal/errorx"
	"github.com/example/routeslip/internal/ports/secondary"
)

// DeliveryRepository implements secondary.DeliveryRepository with SQLite.
type DeliveryRepository struct {
	db *sql.DB
}

// NewDeliveryRepository creates a new SQLite delivery repository.
func NewDeliveryRepository(db *sql.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// scanDelivery scans a delivery row into a DeliveryRecord.
func scanDelivery(scanner interface {
	Scan(dest ...any) error
}) (*secondary.DeliveryRecord, error) {
	var (
		proofRef     sql.NullString
		signatureRef sql.NullString
		invoiceRef   sql.NullString
		notes        sql.NullString
		createdAt    string
		updatedAt    string
	)

	record := &secondary.DeliveryRecord{}
	err := scanner.Scan(
		&record.ID, &record.InvoiceNumber, &record.CustomerName, &record.CustomerAddress, &record.CustomerPhone,
		&record.Items, &record.Status, &proofRef, &signatureRef, &invoiceRef, &notes, &record.SequencePosition,
		&record.InvoiceOutcome, &record.NameOutcome, &record.AddressOutcome, &record.PhoneOutcome,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.ProofImageRef = proofRef.String
	record.SignatureImageRef = signatureRef.String
	record.InvoiceImageRef = invoiceRef.String
	record.Notes = notes.String

	if record.CreatedAt, err = db.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	if updatedAt != "" {
		if record.UpdatedAt, err = db.ParseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("bad updated_at %q: %w", updatedAt, err)
		}
	}

	return record, nil
}

const deliverySelectCols = "id, invoice_number, customer_name, customer_address, customer_phone, items, status, proof_image_ref, signature_image_ref, invoice_image_ref, notes, sequence_position, invoice_outcome, name_outcome, address_outcome, phone_outcome, created_at, updated_at"

// Create persists a new delivery at the end of the worklist.
func (r *DeliveryRepository) Create(ctx context.Context, delivery *secondary.DeliveryRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errorx.Persistence("create delivery", err)
	}
	defer tx.Rollback()

	var position int
	err = tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(sequence_position), -1) + 1 FROM deliveries").Scan(&position)
	if err != nil {
		return errorx.Persistence("create delivery", err)
	}

	items := delivery.Items
	if items == "" {
		items = "[]"
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO deliveries (id, invoice_number, customer_name, customer_address, customer_phone, items, status,
			proof_image_ref, signature_image_ref, invoice_image_ref, notes, sequence_position,
			invoice_outcome, name_outcome, address_outcome, phone_outcome, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		delivery.ID, delivery.InvoiceNumber, delivery.CustomerName, delivery.CustomerAddress, delivery.CustomerPhone,
		items, delivery.Status,
		nullString(delivery.ProofImageRef), nullString(delivery.SignatureImageRef),
		nullString(delivery.InvoiceImageRef), nullString(delivery.Notes), position,
		delivery.InvoiceOutcome, delivery.NameOutcome, delivery.AddressOutcome, delivery.PhoneOutcome,
		db.FormatTime(delivery.CreatedAt), db.FormatTime(delivery.UpdatedAt),
	)
	if err != nil {
		return classify("create delivery "+delivery.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return errorx.Persistence("create delivery", err)
	}

	delivery.Items = items
	delivery.SequencePosition = position
	return nil
}

// GetByID retrieves a delivery by its ID.
func (r *DeliveryRepository) GetByID(ctx context.Context, id string) (*secondary.DeliveryRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+deliverySelectCols+" FROM deliveries WHERE id = ?",
		id,
	)

	record, err := scanDelivery(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: delivery %s", errorx.ErrNotFound, id)
	}
	if err != nil {
		return nil, errorx.Persistence("get delivery", err)
	}

	return record, nil
}

// List retrieves deliveries matching the given filters in ascending position.
func (r *DeliveryRepository) List(ctx context.Context, filters secondary.DeliveryFilters) ([]*secondary.DeliveryRecord, error) {
	query := "SELECT " + deliverySelectCols + " FROM deliveries WHERE 1=1"
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	if !filters.CreatedFrom.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, db.FormatTime(filters.CreatedFrom))
	}

	if !filters.CreatedBefore.IsZero() {
		query += " AND created_at < ?"
		args = append(args, db.FormatTime(filters.CreatedBefore))
	}

	query += " ORDER BY sequence_position ASC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errorx.Persistence("list deliveries", err)
	}
	defer rows.Close()

	var deliveries []*secondary.DeliveryRecord
	for rows.Next() {
		record, err := scanDelivery(rows)
		if err != nil {
			return nil, errorx.Persistence("scan delivery", err)
		}
		deliveries = append(deliveries, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errorx.Persistence("list deliveries", err)
	}

	return deliveries, nil
}

// Update replaces every mutable column of an existing delivery.
func (r *DeliveryRepository) Update(ctx context.Context, delivery *secondary.DeliveryRecord) error {
	items := delivery.Items
	if items == "" {
		items = "[]"
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE deliveries SET invoice_number = ?, customer_name = ?, customer_address = ?, customer_phone = ?,
			items = ?, status = ?, proof_image_ref = ?, signature_image_ref = ?, invoice_image_ref = ?, notes = ?,
			invoice_outcome = ?, name_outcome = ?, address_outcome = ?, phone_outcome = ?, updated_at = ?
		WHERE id = ?`,
		delivery.InvoiceNumber, delivery.CustomerName, delivery.CustomerAddress, delivery.CustomerPhone,
		items, delivery.Status,
		nullString(delivery.ProofImageRef), nullString(delivery.SignatureImageRef),
		nullString(delivery.InvoiceImageRef), nullString(delivery.Notes),
		delivery.InvoiceOutcome, delivery.NameOutcome, delivery.AddressOutcome, delivery.PhoneOutcome,
		db.FormatTime(delivery.UpdatedAt),
		delivery.ID,
	)
	if err != nil {
		return classify("update delivery "+delivery.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errorx.Persistence("update delivery", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: delivery %s", errorx.ErrNotFound, delivery.ID)
	}

	return nil
}

// Delete removes a delivery from persistence.
func (r *DeliveryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM deliveries WHERE id = ?", id)
	if err != nil {
		return errorx.Persistence("delete delivery", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errorx.Persistence("delete delivery", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: delivery %s", errorx.ErrNotFound, id)
	}

	return nil
}

// Positions returns every live id with its position in ascending order.
func (r *DeliveryRepository) Positions(ctx context.Context) ([]secondary.PositionRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, sequence_position FROM deliveries ORDER BY sequence_position ASC")
	if err != nil {
		return nil, errorx.Persistence("list positions", err)
	}
	defer rows.Close()

	var positions []secondary.PositionRecord
	for rows.Next() {
		var p secondary.PositionRecord
		if err := rows.Scan(&p.ID, &p.Position); err != nil {
			return nil, errorx.Persistence("scan position", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errorx.Persistence("list positions", err)
	}

	return positions, nil
}

// ApplyPositions writes a complete set of positions in one transaction.
// Positions are first moved to distinct negative values so that the unique
// index holds at every intermediate step.
func (r *DeliveryRepository) ApplyPositions(ctx context.Context, positions []secondary.PositionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errorx.Persistence("apply positions", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "UPDATE deliveries SET sequence_position = -1 - sequence_position"); err != nil {
		return classify("park positions", err)
	}

	for _, p := range positions {
		if p.Position < 0 {
			return fmt.Errorf("%w: negative position %d for %s", errorx.ErrInvalidIndex, p.Position, p.ID)
		}
		result, err := tx.ExecContext(ctx, "UPDATE deliveries SET sequence_position = ? WHERE id = ?", p.Position, p.ID)
		if err != nil {
			return classify("apply position "+p.ID, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return errorx.Persistence("apply positions", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: delivery %s", errorx.ErrNotFound, p.ID)
		}
	}

	var unassigned int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM deliveries WHERE sequence_position < 0").Scan(&unassigned); err != nil {
		return errorx.Persistence("apply positions", err)
	}
	if unassigned > 0 {
		return fmt.Errorf("%w: %d deliveries missing from the new order", errorx.ErrReorderConflict, unassigned)
	}

	if err := tx.Commit(); err != nil {
		return errorx.Persistence("apply positions", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// classify maps constraint violations to invariant errors and everything
// else to a retryable persistence failure.
func classify(op string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique:
			return fmt.Errorf("%w: %s: %v", errorx.ErrDuplicatePosition, op, err)
		case sqlite3.ErrConstraintCheck:
			return fmt.Errorf("%w: %s: %v", errorx.ErrInvalidTransition, op, err)
		default:
			return fmt.Errorf("failed to %s: %w", op, err)
		}
	}
	return errorx.Persistence(op, err)
}

// Ensure DeliveryRepository implements the interface
var _ secondary.DeliveryRepository = (*DeliveryRepository)(nil)
