package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for a fresh store.
// This schema reflects the current state after all migrations.
//
// This is the single source of truth for the database schema. Tests load it via
// GetSchemaSQL() so that a repository referencing a column missing here fails
// with "no such column" at test time.
//
// When adding new columns:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
//  3. Run the repository tests to verify alignment
const SchemaSQL = `
-- Deliveries (the ordered worklist)
CREATE TABLE IF NOT EXISTS deliveries (
	id TEXT PRIMARY KEY,
	invoice_number TEXT NOT NULL DEFAULT '',
	customer_name TEXT NOT NULL DEFAULT '',
	customer_address TEXT NOT NULL DEFAULT '',
	customer_phone TEXT NOT NULL DEFAULT '',
	items TEXT NOT NULL DEFAULT '[]',
	status TEXT NOT NULL CHECK(status IN ('open', 'delivered', 'cancelled')) DEFAULT 'open',
	proof_image_ref TEXT,
	signature_image_ref TEXT,
	notes TEXT,
	sequence_position INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	invoice_image_ref TEXT,
	invoice_outcome TEXT NOT NULL CHECK(invoice_outcome IN ('matched', 'ambiguous', 'not_found', 'overridden')) DEFAULT 'not_found',
	name_outcome TEXT NOT NULL CHECK(name_outcome IN ('matched', 'ambiguous', 'not_found', 'overridden')) DEFAULT 'not_found',
	address_outcome TEXT NOT NULL CHECK(address_outcome IN ('matched', 'ambiguous', 'not_found', 'overridden')) DEFAULT 'not_found',
	phone_outcome TEXT NOT NULL CHECK(phone_outcome IN ('matched', 'ambiguous', 'not_found', 'overridden')) DEFAULT 'not_found',
	updated_at TEXT NOT NULL,
	CHECK(signature_image_ref IS NULL OR status = 'delivered')
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_deliveries_position ON deliveries(sequence_position);
CREATE INDEX IF NOT EXISTS idx_deliveries_created ON deliveries(created_at);
CREATE INDEX IF NOT EXISTS idx_deliveries_status ON deliveries(status);

-- Delivery events (audit trail of mutations)
CREATE TABLE IF NOT EXISTS delivery_events (
	id TEXT PRIMARY KEY,
	delivery_id TEXT NOT NULL,
	actor_id TEXT,
	action TEXT NOT NULL CHECK(action IN ('create', 'update', 'delete', 'reorder')),
	field_name TEXT,
	old_value TEXT,
	new_value TEXT,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_delivery_events_delivery ON delivery_events(delivery_id, created_at);
`

// InitSchema brings the database at db up to the current schema.
func InitSchema(db *sql.DB) error {
	// Check if schema_version table exists to determine if this is a fresh install
	var tableCount int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(db)
	}

	var oldTableCount int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='deliveries'").Scan(&oldTableCount)
	if err != nil {
		return err
	}
	if oldTableCount > 0 {
		// Pre-versioning store; replay migrations from the start.
		return RunMigrations(db)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := tx.Exec(schemaVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	// Mark all migrations as applied for fresh installs
	for _, m := range migrations {
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	return tx.Commit()
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
