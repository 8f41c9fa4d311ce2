// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the single point where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() so that tests run against
// the authoritative schema. Do not hardcode CREATE TABLE statements in test
// files; use setupTestDB() and the seed* helpers instead.
package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/routeslip/internal/adapters/sqlite"
	"github.com/example/routeslip/internal/db"
	"github.com/example/routeslip/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// A single connection keeps every query on the same in-memory database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

var testEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// newTestDelivery returns an open delivery with every outcome matched.
func newTestDelivery(id, invoice string, createdAt time.Time) *secondary.DeliveryRecord {
	return &secondary.DeliveryRecord{
		ID:              id,
		InvoiceNumber:   invoice,
		CustomerName:    "Test Customer",
		CustomerAddress: "42 Oak Ave",
		CustomerPhone:   "5550102020",
		Items:           `[{"description":"Widget","quantity":2}]`,
		Status:          "open",
		InvoiceOutcome:  "matched",
		NameOutcome:     "matched",
		AddressOutcome:  "matched",
		PhoneOutcome:    "matched",
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

// seedDeliveries creates n deliveries one minute apart and returns their ids in position order.
func seedDeliveries(t *testing.T, repo *sqlite.DeliveryRepository, n int) []string {
	t.Helper()
	ctx := context.Background()

	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = fmt.Sprintf("D-%03d", i+1)
		rec := newTestDelivery(ids[i], fmt.Sprintf("INV-%03d", i+1), testEpoch.Add(time.Duration(i)*time.Minute))
		if err := repo.Create(ctx, rec); err != nil {
			t.Fatalf("failed to seed delivery %s: %v", ids[i], err)
		}
	}
	return ids
}
