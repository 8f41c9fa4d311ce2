package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/example/routeslip/internal/ports/primary"
)

// HistoryAdapter prints and prunes the delivery audit trail.
type HistoryAdapter struct {
	service primary.LogService
	out     io.Writer
}

// NewHistoryAdapter creates a new HistoryAdapter.
func NewHistoryAdapter(service primary.LogService, out io.Writer) *HistoryAdapter {
	return &HistoryAdapter{service: service, out: out}
}

// History prints the audit entries of a delivery, oldest first.
func (a *HistoryAdapter) History(ctx context.Context, deliveryID string, limit int) error {
	entries, err := a.service.ListHistory(ctx, deliveryID, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(a.out, "No history for %s\n", deliveryID)
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tACTOR\tACTION\tFIELD\tCHANGE")
	for _, e := range entries {
		actor := e.ActorID
		if actor == "" {
			actor = "-"
		}
		change := ""
		if e.FieldName != "" {
			change = fmt.Sprintf("%q → %q", e.OldValue, e.NewValue)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Local().Format(time.DateTime), actor, e.Action, e.FieldName, change)
	}
	return tw.Flush()
}

// Prune deletes audit entries older than days.
func (a *HistoryAdapter) Prune(ctx context.Context, days int) error {
	count, err := a.service.PruneLogs(ctx, days)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Pruned %d audit entries older than %d days\n", count, days)
	return nil
}
