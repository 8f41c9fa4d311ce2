package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/routeslip/internal/ports/primary"
)

// ListCmd returns the list command
func ListCmd(s *Session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the delivery worklist in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			limit, _ := cmd.Flags().GetInt("limit")

			app, err := s.App()
			if err != nil {
				return err
			}
			return app.DeliveryAdapter(cmd.OutOrStdout()).List(s.Context(), status, limit)
		},
	}
	cmd.Flags().StringP("status", "s", "", "Filter by status (open, delivered, cancelled)")
	cmd.Flags().IntP("limit", "n", 0, "Show at most n deliveries")
	return cmd
}

// ShowCmd returns the show command
func ShowCmd(s *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "show [delivery-id]",
		Short: "Show every field of a delivery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			_, err = app.DeliveryAdapter(cmd.OutOrStdout()).Show(s.Context(), args[0])
			return err
		},
	}
}

// EditCmd returns the edit command
func EditCmd(s *Session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [delivery-id]",
		Short: "Correct extracted fields by hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			return app.DeliveryAdapter(cmd.OutOrStdout()).Edit(s.Context(), args[0], editsFromFlags(cmd))
		},
	}
	addEditFlags(cmd)
	return cmd
}

func addEditFlags(cmd *cobra.Command) {
	cmd.Flags().String("invoice", "", "Invoice number")
	cmd.Flags().String("name", "", "Customer name")
	cmd.Flags().String("address", "", "Customer address")
	cmd.Flags().String("phone", "", "Customer phone")
}

// editsFromFlags turns the edit flags that were set into field edits.
func editsFromFlags(cmd *cobra.Command) primary.FieldEdits {
	var edits primary.FieldEdits
	for flag, target := range map[string]**string{
		"invoice": &edits.InvoiceNumber,
		"name":    &edits.CustomerName,
		"address": &edits.CustomerAddress,
		"phone":   &edits.CustomerPhone,
	} {
		if cmd.Flags().Changed(flag) {
			value, _ := cmd.Flags().GetString(flag)
			*target = &value
		}
	}
	return edits
}

// DeliverCmd returns the deliver command
func DeliverCmd(s *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "deliver [delivery-id]",
		Short: "Mark a delivery as delivered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			return app.DeliveryAdapter(cmd.OutOrStdout()).Deliver(s.Context(), args[0])
		},
	}
}

// CancelCmd returns the cancel command
func CancelCmd(s *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel [delivery-id]",
		Short: "Cancel an open delivery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			return app.DeliveryAdapter(cmd.OutOrStdout()).Cancel(s.Context(), args[0])
		},
	}
}

// SignCmd returns the sign command
func SignCmd(s *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "sign [delivery-id] [signature-image]",
		Short: "Record the customer's signature (marks the delivery delivered)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			return app.DeliveryAdapter(cmd.OutOrStdout()).Sign(s.Context(), args[0], args[1])
		},
	}
}

// ProofCmd returns the proof command
func ProofCmd(s *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "proof [delivery-id] [photo]",
		Short: "Attach a proof-of-delivery photo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			return app.DeliveryAdapter(cmd.OutOrStdout()).Proof(s.Context(), args[0], args[1])
		},
	}
}

// NoteCmd returns the note command
func NoteCmd(s *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "note [delivery-id] [text...]",
		Short: "Replace the notes of a delivery",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			return app.DeliveryAdapter(cmd.OutOrStdout()).Note(s.Context(), args[0], strings.Join(args[1:], " "))
		},
	}
}

// MoveCmd returns the move command
func MoveCmd(s *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "move [delivery-id] [index]",
		Short: "Move a delivery to a zero-based place in the worklist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[1], err)
			}
			app, err := s.App()
			if err != nil {
				return err
			}
			return app.DeliveryAdapter(cmd.OutOrStdout()).Move(s.Context(), args[0], index)
		},
	}
}

// DeleteCmd returns the delete command
func DeleteCmd(s *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [delivery-id]",
		Short: "Delete a delivery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			return app.DeliveryAdapter(cmd.OutOrStdout()).Delete(s.Context(), args[0])
		},
	}
}
