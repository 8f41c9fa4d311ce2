package cli

import (
	"github.com/spf13/cobra"
)

// HistoryCmd returns the history command
func HistoryCmd(s *Session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [delivery-id]",
		Short: "Show the audit trail of a delivery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			app, err := s.App()
			if err != nil {
				return err
			}
			return app.HistoryAdapter(cmd.OutOrStdout()).History(s.Context(), args[0], limit)
		},
	}
	cmd.Flags().IntP("limit", "n", 0, "Show at most n entries")
	return cmd
}

// PruneCmd returns the prune command
func PruneCmd(s *Session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete audit entries older than --days",
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")

			app, err := s.App()
			if err != nil {
				return err
			}
			return app.HistoryAdapter(cmd.OutOrStdout()).Prune(s.Context(), days)
		},
	}
	cmd.Flags().Int("days", 90, "Keep entries newer than this many days")
	return cmd
}
