package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/routeslip/internal/version"
)

// skipSession marks commands that run before a store exists.
const skipSession = "routeslip/skip-session"

// NewRootCmd builds the routeslip command tree on s. The caller closes s
// once the command has run.
func NewRootCmd(s *Session) *cobra.Command {
	var dir string
	var metrics bool

	rootCmd := &cobra.Command{
		Use:     "routeslip",
		Short:   "Routeslip - invoice capture and delivery worklist",
		Version: version.String(),
		Long: `Routeslip turns photographed invoices into an ordered delivery worklist.
Capture reads invoice text, extracts the invoice number and customer details,
and appends confirmed deliveries to a durable worklist you can reorder,
complete and export.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if metrics {
				s.dumpMetrics = true
			}
			if _, ok := cmd.Annotations[skipSession]; ok {
				return nil
			}
			_, err := s.open(dir)
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&dir, "dir", ".", "Workspace directory holding .routeslip/")
	rootCmd.PersistentFlags().BoolVar(&metrics, "metrics", false, "Print metrics to stderr on exit")

	rootCmd.AddCommand(InitCmd(s, &dir))

	// Capture
	rootCmd.AddCommand(CaptureCmd(s))
	rootCmd.AddCommand(ImportCmd(s))
	rootCmd.AddCommand(PendingCmd(s))
	rootCmd.AddCommand(ConfirmCmd(s))
	rootCmd.AddCommand(DiscardCmd(s))

	// Worklist
	rootCmd.AddCommand(ListCmd(s))
	rootCmd.AddCommand(ShowCmd(s))
	rootCmd.AddCommand(EditCmd(s))
	rootCmd.AddCommand(DeliverCmd(s))
	rootCmd.AddCommand(CancelCmd(s))
	rootCmd.AddCommand(SignCmd(s))
	rootCmd.AddCommand(ProofCmd(s))
	rootCmd.AddCommand(NoteCmd(s))
	rootCmd.AddCommand(MoveCmd(s))
	rootCmd.AddCommand(DeleteCmd(s))
	rootCmd.AddCommand(WatchCmd(s))

	// Reporting
	rootCmd.AddCommand(ExportCmd(s))
	rootCmd.AddCommand(HistoryCmd(s))
	rootCmd.AddCommand(PruneCmd(s))

	rootCmd.AddCommand(ShellCmd(s))

	return rootCmd
}
