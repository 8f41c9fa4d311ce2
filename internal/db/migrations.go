package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_deliveries",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_extraction_outcomes",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_updated_at_and_lookup_indexes",
		Up:      migrationV3,
	},
	{
		Version: 4,
		Name:    "add_delivery_events",
		Up:      migrationV4,
	},
}

const schemaVersionSQL = `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)
`

// RunMigrations executes all pending migrations, each in its own transaction.
func RunMigrations(db *sql.DB) error {
	if _, err := db.Exec(schemaVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	currentVersion, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration version, 0 if none.
func SchemaVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return version, nil
}

// LatestVersion returns the version a fully migrated store reports.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

// migrationV1 creates the original deliveries table.
func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
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
			CHECK(signature_image_ref IS NULL OR status = 'delivered')
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create deliveries table: %w", err)
	}

	_, err = tx.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_deliveries_position ON deliveries(sequence_position)")
	if err != nil {
		return fmt.Errorf("failed to create position index: %w", err)
	}
	return nil
}

// migrationV2 adds the source photo reference and per-field extraction outcomes.
// Records written before outcomes were tracked count as entered by hand.
func migrationV2(tx *sql.Tx) error {
	stmts := []string{
		"ALTER TABLE deliveries ADD COLUMN invoice_image_ref TEXT",
		"ALTER TABLE deliveries ADD COLUMN invoice_outcome TEXT NOT NULL CHECK(invoice_outcome IN ('matched', 'ambiguous', 'not_found', 'overridden')) DEFAULT 'not_found'",
		"ALTER TABLE deliveries ADD COLUMN name_outcome TEXT NOT NULL CHECK(name_outcome IN ('matched', 'ambiguous', 'not_found', 'overridden')) DEFAULT 'not_found'",
		"ALTER TABLE deliveries ADD COLUMN address_outcome TEXT NOT NULL CHECK(address_outcome IN ('matched', 'ambiguous', 'not_found', 'overridden')) DEFAULT 'not_found'",
		"ALTER TABLE deliveries ADD COLUMN phone_outcome TEXT NOT NULL CHECK(phone_outcome IN ('matched', 'ambiguous', 'not_found', 'overridden')) DEFAULT 'not_found'",
		"UPDATE deliveries SET invoice_outcome = 'overridden' WHERE invoice_number != ''",
		"UPDATE deliveries SET name_outcome = 'overridden' WHERE customer_name != ''",
		"UPDATE deliveries SET address_outcome = 'overridden' WHERE customer_address != ''",
		"UPDATE deliveries SET phone_outcome = 'overridden' WHERE customer_phone != ''",
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrationV3 adds updated_at, backfilled from created_at, and the export/status indexes.
func migrationV3(tx *sql.Tx) error {
	stmts := []string{
		"ALTER TABLE deliveries ADD COLUMN updated_at TEXT NOT NULL DEFAULT ''",
		"UPDATE deliveries SET updated_at = created_at",
		"CREATE INDEX IF NOT EXISTS idx_deliveries_created ON deliveries(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_deliveries_status ON deliveries(status)",
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrationV4 adds the delivery audit trail.
func migrationV4(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS delivery_events (
			id TEXT PRIMARY KEY,
			delivery_id TEXT NOT NULL,
			actor_id TEXT,
			action TEXT NOT NULL CHECK(action IN ('create', 'update', 'delete', 'reorder')),
			field_name TEXT,
			old_value TEXT,
			new_value TEXT,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create delivery_events table: %w", err)
	}

	_, err = tx.Exec("CREATE INDEX IF NOT EXISTS idx_delivery_events_delivery ON delivery_events(delivery_id, created_at)")
	if err != nil {
		return fmt.Errorf("failed to create delivery_events index: %w", err)
	}
	return nil
}
