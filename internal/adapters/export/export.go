// Package export serializes delivery worklists for hand-off to billing.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/example/routeslip/internal/ports/primary"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or json)", name)
	}
}

// Write encodes deliveries to w in format, preserving their order.
func Write(w io.Writer, format Format, deliveries []*primary.Delivery) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, deliveries)
	case FormatJSON:
		return WriteJSON(w, deliveries)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// Header is the CSV column order.
var Header = []string{
	"id", "position", "invoice_number", "customer_name", "customer_address", "customer_phone",
	"items", "status", "proof_image_ref", "signature_image_ref", "invoice_image_ref", "notes",
	"invoice_outcome", "name_outcome", "address_outcome", "phone_outcome",
	"created_at", "updated_at",
}

// WriteCSV writes a header row and one row per delivery.
func WriteCSV(w io.Writer, deliveries []*primary.Delivery) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, d := range deliveries {
		row := []string{
			d.ID,
			strconv.Itoa(d.Position),
			d.InvoiceNumber,
			d.CustomerName,
			d.CustomerAddress,
			d.CustomerPhone,
			FormatItems(d.Items),
			d.Status,
			d.ProofImageRef,
			d.SignatureImageRef,
			d.InvoiceImageRef,
			d.Notes,
			d.Outcomes.InvoiceNumber,
			d.Outcomes.CustomerName,
			d.Outcomes.CustomerAddress,
			d.Outcomes.CustomerPhone,
			formatTime(d.CreatedAt),
			formatTime(d.UpdatedAt),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", d.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatItems renders items as "2 x Flour; Sugar".
func FormatItems(items []primary.LineItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		if it.Quantity > 0 {
			parts[i] = fmt.Sprintf("%d x %s", it.Quantity, it.Description)
		} else {
			parts[i] = it.Description
		}
	}
	return strings.Join(parts, "; ")
}

type jsonOutcomes struct {
	InvoiceNumber   string `json:"invoice_number"`
	CustomerName    string `json:"customer_name"`
	CustomerAddress string `json:"customer_address"`
	CustomerPhone   string `json:"customer_phone"`
}

type jsonDelivery struct {
	ID                string             `json:"id"`
	Position          int                `json:"position"`
	InvoiceNumber     string             `json:"invoice_number"`
	CustomerName      string             `json:"customer_name"`
	CustomerAddress   string             `json:"customer_address"`
	CustomerPhone     string             `json:"customer_phone"`
	Items             []primary.LineItem `json:"items"`
	Status            string             `json:"status"`
	ProofImageRef     string             `json:"proof_image_ref,omitempty"`
	SignatureImageRef string             `json:"signature_image_ref,omitempty"`
	InvoiceImageRef   string             `json:"invoice_image_ref,omitempty"`
	Notes             string             `json:"notes,omitempty"`
	Outcomes          jsonOutcomes       `json:"outcomes"`
	CreatedAt         string             `json:"created_at"`
	UpdatedAt         string             `json:"updated_at"`
}

// WriteJSON writes deliveries as an indented JSON array.
func WriteJSON(w io.Writer, deliveries []*primary.Delivery) error {
	out := make([]jsonDelivery, len(deliveries))
	for i, d := range deliveries {
		items := d.Items
		if items == nil {
			items = []primary.LineItem{}
		}
		out[i] = jsonDelivery{
			ID:                d.ID,
			Position:          d.Position,
			InvoiceNumber:     d.InvoiceNumber,
			CustomerName:      d.CustomerName,
			CustomerAddress:   d.CustomerAddress,
			CustomerPhone:     d.CustomerPhone,
			Items:             items,
			Status:            d.Status,
			ProofImageRef:     d.ProofImageRef,
			SignatureImageRef: d.SignatureImageRef,
			InvoiceImageRef:   d.InvoiceImageRef,
			Notes:             d.Notes,
			Outcomes: jsonOutcomes{
				InvoiceNumber:   d.Outcomes.InvoiceNumber,
				CustomerName:    d.Outcomes.CustomerName,
				CustomerAddress: d.Outcomes.CustomerAddress,
				CustomerPhone:   d.Outcomes.CustomerPhone,
			},
			CreatedAt: formatTime(d.CreatedAt),
			UpdatedAt: formatTime(d.UpdatedAt),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
