// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"
)

// DeliveryRepository defines the secondary port for delivery persistence.
type DeliveryRepository interface {
	// Create persists a new delivery at the end of the worklist and sets
	// its SequencePosition to the assigned value (max+1, or 0 when empty).
	Create(ctx context.Context, delivery *DeliveryRecord) error

	// GetByID retrieves a delivery by its ID.
	GetByID(ctx context.Context, id string) (*DeliveryRecord, error)

	// List retrieves deliveries matching the given filters in ascending position.
	List(ctx context.Context, filters DeliveryFilters) ([]*DeliveryRecord, error)

	// Update replaces every mutable column of an existing delivery.
	// ID, CreatedAt and SequencePosition are never written.
	Update(ctx context.Context, delivery *DeliveryRecord) error

	// Delete removes a delivery. Remaining positions are left as they are.
	Delete(ctx context.Context, id string) error

	// Positions returns every live id with its position in ascending order.
	Positions(ctx context.Context) ([]PositionRecord, error)

	// ApplyPositions writes a complete set of positions in one transaction.
	// Every live record must be assigned; otherwise nothing is written.
	ApplyPositions(ctx context.Context, positions []PositionRecord) error
}

// DeliveryRecord represents a delivery as stored in persistence.
type DeliveryRecord struct {
	ID                string
	InvoiceNumber     string
	CustomerName      string
	CustomerAddress   string
	CustomerPhone     string
	Items             string // JSON array of line items
	Status            string
	ProofImageRef     string // Empty string means null
	SignatureImageRef string // Empty string means null
	InvoiceImageRef   string // Empty string means null
	Notes             string // Empty string means null
	SequencePosition  int
	InvoiceOutcome    string
	NameOutcome       string
	AddressOutcome    string
	PhoneOutcome      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DeliveryFilters contains filter options for querying deliveries.
type DeliveryFilters struct {
	Status        string
	CreatedFrom   time.Time // inclusive; zero means unbounded
	CreatedBefore time.Time // exclusive; zero means unbounded
	Limit         int
}

// PositionRecord pairs a delivery id with its sequence position.
type PositionRecord struct {
	ID       string
	Position int
}
