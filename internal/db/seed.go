package db

import (
	"database/sql"
	"fmt"
	"time"
)

// TimeLayout is the fixed-width UTC layout used for every stored timestamp,
// so that lexical order in SQL equals chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t in TimeLayout after converting it to UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a timestamp written by FormatTime.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// SeedFixtures populates an empty store with a small sample worklist.
func SeedFixtures(database *sql.DB) error {
	var count int
	if err := database.QueryRow("SELECT COUNT(*) FROM deliveries").Scan(&count); err != nil {
		return fmt.Errorf("seed deliveries: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("seed deliveries: store already holds %d records", count)
	}

	now := FormatTime(time.Now())

	deliveries := []struct {
		id, invoice, name, address, phone, items, outcome string
	}{
		{"8d0c5a6e-3f1b-4c7e-9a3d-1f2e3d4c5b6a", "A1001", "Maria Lopez", "9 Harbor Rd, Portland, OR 97201", "5035550199", `[{"description":"Crate","quantity":2}]`, "matched"},
		{"1b2c3d4e-5f60-4718-92a3-b4c5d6e7f809", "A1002", "Carlos Ruiz", "100 Main St, Apt 4B, Springfield, IL 62704", "2175550142", `[]`, "matched"},
		{"f0e1d2c3-b4a5-4968-8776-655443322110", "", "Ann Lee", "7 Birch Ln", "", `[{"description":"Bolts","quantity":4}]`, "not_found"},
	}
	for i, d := range deliveries {
		if _, err := database.Exec(
			`INSERT INTO deliveries (id, invoice_number, customer_name, customer_address, customer_phone, items,
				status, sequence_position, created_at, updated_at, invoice_outcome, name_outcome, address_outcome, phone_outcome)
			VALUES (?, ?, ?, ?, ?, ?, 'open', ?, ?, ?, ?, 'matched', 'matched', ?)`,
			d.id, d.invoice, d.name, d.address, d.phone, d.items, i, now, now, d.outcome, phoneOutcome(d.phone),
		); err != nil {
			return fmt.Errorf("seed deliveries: %w", err)
		}
	}

	return nil
}

func phoneOutcome(phone string) string {
	if phone == "" {
		return "not_found"
	}
	return "matched"
}
