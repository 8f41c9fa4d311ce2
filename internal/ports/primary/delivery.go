package primary

import (
	"context"
	"time"
)

// DeliveryService defines the primary port for the ordered delivery worklist.
type DeliveryService interface {
	// CreateDelivery persists a new delivery at the end of the worklist.
	CreateDelivery(ctx context.Context, req CreateDeliveryRequest) (*Delivery, error)

	// GetDelivery retrieves a delivery by ID.
	GetDelivery(ctx context.Context, id string) (*Delivery, error)

	// ListDeliveries lists deliveries in ascending worklist order.
	ListDeliveries(ctx context.Context, filters DeliveryFilters) ([]*Delivery, error)

	// UpdateDelivery replaces the content of the delivery named by delivery.ID,
	// last write wins. CreatedAt and Position of the argument are ignored.
	UpdateDelivery(ctx context.Context, delivery *Delivery) (*Delivery, error)

	// DeleteDelivery removes a delivery. Other positions are not renumbered.
	DeleteDelivery(ctx context.Context, id string) error

	// MarkDelivered moves an open delivery to delivered.
	MarkDelivered(ctx context.Context, id string) (*Delivery, error)

	// CancelDelivery moves an open delivery to cancelled.
	CancelDelivery(ctx context.Context, id string) (*Delivery, error)

	// SignDelivery records a signature image; an open delivery becomes delivered.
	SignDelivery(ctx context.Context, id, signatureRef string) (*Delivery, error)

	// AttachProof records a proof-of-delivery photo.
	AttachProof(ctx context.Context, id, proofRef string) (*Delivery, error)

	// AnnotateDelivery replaces the delivery notes.
	AnnotateDelivery(ctx context.Context, id, notes string) (*Delivery, error)

	// EditFields corrects extracted fields by hand; edited fields become overridden.
	EditFields(ctx context.Context, id string, edits FieldEdits) (*Delivery, error)

	// ListCreatedBetween returns deliveries created in [start, end) in worklist order.
	ListCreatedBetween(ctx context.Context, start, end time.Time, confirmedOnly bool) ([]*Delivery, error)

	// Watch streams the full worklist after every durable change until ctx ends.
	Watch(ctx context.Context) (<-chan []*Delivery, error)
}

// Delivery is a worklist entry as seen by callers.
type Delivery struct {
	ID                string
	InvoiceNumber     string
	CustomerName      string
	CustomerAddress   string
	CustomerPhone     string
	Items             []LineItem
	Status            string
	ProofImageRef     string
	SignatureImageRef string
	InvoiceImageRef   string
	Notes             string
	Position          int
	Outcomes          FieldOutcomes
	Confirmed         bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// LineItem is one quantity line of an invoice.
type LineItem struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity,omitempty"`
}

// FieldOutcomes holds the extraction outcome of each structured field:
// matched, ambiguous, not_found or overridden.
type FieldOutcomes struct {
	InvoiceNumber   string
	CustomerName    string
	CustomerAddress string
	CustomerPhone   string
}

// CreateDeliveryRequest contains parameters for creating a delivery.
type CreateDeliveryRequest struct {
	InvoiceNumber   string
	CustomerName    string
	CustomerAddress string
	CustomerPhone   string
	Items           []LineItem
	InvoiceImageRef string
	Notes           string
	Outcomes        FieldOutcomes
}

// FieldEdits carries hand corrections. A nil field is left unchanged.
type FieldEdits struct {
	InvoiceNumber   *string
	CustomerName    *string
	CustomerAddress *string
	CustomerPhone   *string
	Items           []LineItem // nil leaves items unchanged
}

// Empty reports whether no field is edited.
func (e FieldEdits) Empty() bool {
	return e.InvoiceNumber == nil && e.CustomerName == nil && e.CustomerAddress == nil &&
		e.CustomerPhone == nil && e.Items == nil
}

// DeliveryFilters contains filter options for listing deliveries.
type DeliveryFilters struct {
	Status string
	Limit  int
}
