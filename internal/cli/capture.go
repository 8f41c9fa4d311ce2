package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/routeslip/internal/adapters/filesystem"
	"github.com/example/routeslip/internal/ports/primary"
)

// CaptureCmd returns the capture command
func CaptureCmd(s *Session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Read invoice photos from the inbox and review each one",
		Long: `Recognize the text of each photo waiting in the inbox, extract the invoice
number and customer details, and ask whether to confirm, edit, discard or skip
the result. Confirmed invoices are appended to the worklist.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			max, _ := cmd.Flags().GetInt("max")
			yes, _ := cmd.Flags().GetBool("yes")

			app, err := s.App()
			if err != nil {
				return err
			}
			return app.CaptureAdapter(cmd.InOrStdin(), cmd.OutOrStdout()).Capture(s.Context(), max, yes)
		},
	}
	cmd.Flags().IntP("max", "n", 0, "Process at most n photos (0 = all)")
	cmd.Flags().BoolP("yes", "y", false, "Confirm every candidate without asking")
	return cmd
}

// ImportCmd returns the import command
func ImportCmd(s *Session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [transcript...]",
		Short: "Extract deliveries from already-recognized text files",
		Long: `Process text transcripts as one batch. An image with the same name next to
a transcript (scan-17.txt, scan-17.png) is kept as the invoice image.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")

			inputs := make([]primary.RecognizedText, 0, len(args))
			for _, path := range args {
				text, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read transcript: %w", err)
				}
				inputs = append(inputs, primary.RecognizedText{
					Text:     string(text),
					ImageRef: filesystem.CompanionImage(path),
				})
			}

			app, err := s.App()
			if err != nil {
				return err
			}
			return app.CaptureAdapter(cmd.InOrStdin(), cmd.OutOrStdout()).Import(s.Context(), inputs, yes)
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Confirm every candidate without asking")
	return cmd
}

// PendingCmd returns the pending command
func PendingCmd(s *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List candidates skipped during review in this session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			return app.CaptureAdapter(cmd.InOrStdin(), cmd.OutOrStdout()).Pending(s.Context())
		},
	}
}

// ConfirmCmd returns the confirm command
func ConfirmCmd(s *Session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confirm [token]",
		Short: "Save a pending candidate to the worklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			return app.CaptureAdapter(cmd.InOrStdin(), cmd.OutOrStdout()).Confirm(s.Context(), args[0], editsFromFlags(cmd))
		},
	}
	addEditFlags(cmd)
	return cmd
}

// DiscardCmd returns the discard command
func DiscardCmd(s *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "discard [token]",
		Short: "Drop a pending candidate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			return app.CaptureAdapter(cmd.InOrStdin(), cmd.OutOrStdout()).Discard(s.Context(), args[0])
		},
	}
}
