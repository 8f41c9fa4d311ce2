package cli

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// WatchCmd returns the watch command
func WatchCmd(s *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the worklist after every change",
		Long: `Print the worklist now and again after every change made by this process.
Inside "routeslip shell" the watcher runs in the background; otherwise it runs
until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			adapter := app.DeliveryAdapter(cmd.OutOrStdout())

			if s.shellCtx != nil {
				if s.watching {
					fmt.Fprintln(cmd.OutOrStdout(), "Already watching")
					return nil
				}
				s.watching = true
				ctx := s.shellCtx
				go func() {
					if err := adapter.Watch(ctx); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "watch: %v\n", err)
					}
				}()
				return nil
			}

			ctx, stop := signal.NotifyContext(s.Context(), os.Interrupt)
			defer stop()
			return adapter.Watch(ctx)
		},
	}
}
