package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/routeslip/internal/config"
)

// InitCmd returns the init command
func InitCmd(s *Session, dir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Initialize a routeslip workspace",
		Long:        `Write .routeslip/config.yaml, create the store and the capture inbox.`,
		Annotations: map[string]string{skipSession: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			operator, _ := cmd.Flags().GetString("operator")
			seed, _ := cmd.Flags().GetBool("seed")
			force, _ := cmd.Flags().GetBool("force")
			out := cmd.OutOrStdout()

			path := config.Path(*dir)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.Default()
			cfg.Operator.ID = operator
			if err := config.SaveConfig(*dir, cfg); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote %s\n", path)

			app, err := s.open(*dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Store ready at %s\n", app.Config.Store.Path)
			if app.Config.Capture.Inbox != "" {
				fmt.Fprintf(out, "✓ Inbox ready at %s\n", app.Config.Capture.Inbox)
			}

			if seed {
				if err := app.Seed(); err != nil {
					return fmt.Errorf("failed to seed store: %w", err)
				}
				fmt.Fprintln(out, "✓ Seeded sample deliveries")
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  drop invoice photos into the inbox, then: routeslip capture")
			fmt.Fprintln(out, "  routeslip list")
			return nil
		},
	}

	cmd.Flags().String("operator", "", "Operator id recorded in the audit trail")
	cmd.Flags().Bool("seed", false, "Fill the new store with sample deliveries")
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing config")
	return cmd
}
