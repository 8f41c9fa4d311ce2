// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/example/routeslip/internal/adapters/export"
	"github.com/example/routeslip/internal/ports/primary"
)

// DeliveryAdapter is a thin adapter that translates CLI operations to
// DeliveryService and ReorderService calls.
type DeliveryAdapter struct {
	service primary.DeliveryService
	reorder primary.ReorderService
	out     io.Writer
}

// NewDeliveryAdapter creates a new DeliveryAdapter with the given services.
func NewDeliveryAdapter(service primary.DeliveryService, reorder primary.ReorderService, out io.Writer) *DeliveryAdapter {
	return &DeliveryAdapter{
		service: service,
		reorder: reorder,
		out:     out,
	}
}

// List prints the worklist with an optional status filter.
func (a *DeliveryAdapter) List(ctx context.Context, status string, limit int) error {
	deliveries, err := a.service.ListDeliveries(ctx, primary.DeliveryFilters{
		Status: status,
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	if len(deliveries) == 0 {
		fmt.Fprintln(a.out, "No deliveries found")
		return nil
	}

	a.printTable(deliveries)
	return nil
}

func (a *DeliveryAdapter) printTable(deliveries []*primary.Delivery) {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tINVOICE\tCUSTOMER\tADDRESS\tSTATUS")
	for _, d := range deliveries {
		invoice := d.InvoiceNumber
		if !d.Confirmed {
			invoice += "?"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			d.Position, d.ID, invoice, d.CustomerName, d.CustomerAddress, statusLabel(d.Status))
	}
	tw.Flush()
}

// Show displays every field of a delivery.
func (a *DeliveryAdapter) Show(ctx context.Context, id string) (*primary.Delivery, error) {
	d, err := a.service.GetDelivery(ctx, id)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "\nDelivery: %s\n", d.ID)
	fmt.Fprintf(a.out, "Position: %d\n", d.Position)
	fmt.Fprintf(a.out, "Status:   %s\n", statusLabel(d.Status))
	fmt.Fprintf(a.out, "Invoice:  %s (%s)\n", d.InvoiceNumber, d.Outcomes.InvoiceNumber)
	fmt.Fprintf(a.out, "Customer: %s (%s)\n", d.CustomerName, d.Outcomes.CustomerName)
	fmt.Fprintf(a.out, "Address:  %s (%s)\n", d.CustomerAddress, d.Outcomes.CustomerAddress)
	fmt.Fprintf(a.out, "Phone:    %s (%s)\n", d.CustomerPhone, d.Outcomes.CustomerPhone)
	if len(d.Items) > 0 {
		fmt.Fprintf(a.out, "Items:    %s\n", export.FormatItems(d.Items))
	}
	if d.InvoiceImageRef != "" {
		fmt.Fprintf(a.out, "Invoice image:   %s\n", d.InvoiceImageRef)
	}
	if d.ProofImageRef != "" {
		fmt.Fprintf(a.out, "Proof image:     %s\n", d.ProofImageRef)
	}
	if d.SignatureImageRef != "" {
		fmt.Fprintf(a.out, "Signature image: %s\n", d.SignatureImageRef)
	}
	if d.Notes != "" {
		fmt.Fprintf(a.out, "Notes:    %s\n", d.Notes)
	}
	fmt.Fprintf(a.out, "Created:  %s\n", d.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(a.out, "Updated:  %s\n", d.UpdatedAt.Local().Format(time.DateTime))
	fmt.Fprintln(a.out)

	return d, nil
}

// Deliver marks a delivery as delivered.
func (a *DeliveryAdapter) Deliver(ctx context.Context, id string) error {
	d, err := a.service.MarkDelivered(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Delivery %s %s\n", d.ID, statusLabel(d.Status))
	return nil
}

// Cancel cancels a delivery.
func (a *DeliveryAdapter) Cancel(ctx context.Context, id string) error {
	d, err := a.service.CancelDelivery(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Delivery %s %s\n", d.ID, statusLabel(d.Status))
	return nil
}

// Sign records a signature image.
func (a *DeliveryAdapter) Sign(ctx context.Context, id, ref string) error {
	d, err := a.service.SignDelivery(ctx, id, ref)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Signature recorded for %s (%s)\n", d.ID, statusLabel(d.Status))
	return nil
}

// Proof attaches a proof-of-delivery photo.
func (a *DeliveryAdapter) Proof(ctx context.Context, id, ref string) error {
	d, err := a.service.AttachProof(ctx, id, ref)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Proof attached to %s\n", d.ID)
	return nil
}

// Note replaces the notes of a delivery.
func (a *DeliveryAdapter) Note(ctx context.Context, id, notes string) error {
	d, err := a.service.AnnotateDelivery(ctx, id, notes)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Notes updated for %s\n", d.ID)
	return nil
}

// Edit applies hand corrections to extracted fields.
func (a *DeliveryAdapter) Edit(ctx context.Context, id string, edits primary.FieldEdits) error {
	if edits.Empty() {
		return fmt.Errorf("must specify at least one of --invoice, --name, --address, --phone")
	}
	d, err := a.service.EditFields(ctx, id, edits)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Delivery %s updated\n", d.ID)
	return nil
}

// Delete removes a delivery.
func (a *DeliveryAdapter) Delete(ctx context.Context, id string) error {
	if err := a.service.DeleteDelivery(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Deleted delivery %s\n", id)
	return nil
}

// Move places a delivery at a zero-based index in the worklist.
func (a *DeliveryAdapter) Move(ctx context.Context, id string, index int) error {
	resp, err := a.reorder.Move(ctx, primary.MoveRequest{RecordID: id, NewIndex: index})
	if err != nil {
		return err
	}
	if !resp.Changed {
		fmt.Fprintf(a.out, "Delivery %s is already at %d\n", id, index)
		return nil
	}
	fmt.Fprintf(a.out, "✓ Moved %s to %d\n", id, index)
	for i, rid := range resp.Order {
		fmt.Fprintf(a.out, "  %d. %s\n", i, rid)
	}
	return nil
}

// Export writes deliveries created in [start, end) to w.
func (a *DeliveryAdapter) Export(ctx context.Context, w io.Writer, format export.Format, start, end time.Time, confirmedOnly bool) (int, error) {
	deliveries, err := a.service.ListCreatedBetween(ctx, start, end, confirmedOnly)
	if err != nil {
		return 0, err
	}
	if err := export.Write(w, format, deliveries); err != nil {
		return 0, err
	}
	return len(deliveries), nil
}

// Watch prints the worklist after every change until ctx ends.
func (a *DeliveryAdapter) Watch(ctx context.Context) error {
	ch, err := a.service.Watch(ctx)
	if err != nil {
		return err
	}
	for snapshot := range ch {
		fmt.Fprintf(a.out, "── %s ── %d deliveries\n", time.Now().Format(time.TimeOnly), len(snapshot))
		a.printTable(snapshot)
		fmt.Fprintln(a.out)
	}
	return nil
}

func statusLabel(status string) string {
	switch status {
	case "delivered":
		return color.New(color.FgGreen).Sprint(status)
	case "cancelled":
		return color.New(color.FgRed).Sprint(status)
	default:
		return color.New(color.FgYellow).Sprint(status)
	}
}
