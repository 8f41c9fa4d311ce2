package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/routeslip/internal/adapters/export"
)

// ExportCmd returns the export command
func ExportCmd(s *Session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export deliveries created in a time range",
		Long: `Export deliveries whose creation time falls in [--from, --to) in worklist
order. Bounds accept a date (2006-01-02, local midnight) or an RFC 3339 time.
Without bounds, today's deliveries are exported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			formatName, _ := cmd.Flags().GetString("format")
			confirmedOnly, _ := cmd.Flags().GetBool("confirmed-only")
			outPath, _ := cmd.Flags().GetString("out")

			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			start, end, err := exportRange(from, to, time.Now())
			if err != nil {
				return err
			}

			app, err := s.App()
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create export file: %w", err)
				}
				defer f.Close()
				w = f
			}

			count, err := app.DeliveryAdapter(cmd.OutOrStdout()).Export(s.Context(), w, format, start, end, confirmedOnly)
			if err != nil {
				return err
			}
			if outPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d deliveries to %s\n", count, outPath)
			}
			return nil
		},
	}
	cmd.Flags().String("from", "", "Start of the range, inclusive (default: today)")
	cmd.Flags().String("to", "", "End of the range, exclusive (default: the day after --from)")
	cmd.Flags().StringP("format", "f", "csv", "Output format (csv, json)")
	cmd.Flags().Bool("confirmed-only", false, "Skip deliveries whose invoice number is not confirmed")
	cmd.Flags().StringP("out", "o", "", "Write to a file instead of stdout")
	return cmd
}

// exportRange resolves the --from and --to flags against now.
func exportRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	var start time.Time
	if from == "" {
		y, m, d := now.Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	} else {
		t, err := parseBound(from, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
		}
		start = t
	}

	end := start.AddDate(0, 0, 1)
	if to != "" {
		t, err := parseBound(to, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
		}
		end = t
	}
	return start, end, nil
}

func parseBound(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD or RFC 3339, got %q", value)
	}
	return t, nil
}
