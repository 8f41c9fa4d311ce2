package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/example/routeslip/internal/adapters/export"
	"github.com/example/routeslip/internal/errorx"
	"github.com/example/routeslip/internal/ports/primary"
)

// CaptureAdapter drives the capture review loop: show a candidate, then
// confirm, edit, discard or skip it.
type CaptureAdapter struct {
	service primary.CaptureService
	in      *bufio.Reader
	out     io.Writer
}

// NewCaptureAdapter creates a new CaptureAdapter reading answers from in.
func NewCaptureAdapter(service primary.CaptureService, in io.Reader, out io.Writer) *CaptureAdapter {
	return &CaptureAdapter{
		service: service,
		in:      bufio.NewReader(in),
		out:     out,
	}
}

// Capture processes up to max frames from the inbox (all when max <= 0).
func (a *CaptureAdapter) Capture(ctx context.Context, max int, autoConfirm bool) error {
	count := 0
	for max <= 0 || count < max {
		c, err := a.service.Capture(ctx)
		if errors.Is(err, errorx.ErrNoFrame) {
			break
		}
		if err != nil {
			return err
		}
		count++
		if err := a.review(ctx, c, autoConfirm); err != nil {
			return err
		}
	}

	if count == 0 {
		fmt.Fprintln(a.out, "No frames waiting in the inbox")
	}
	return nil
}

// Import processes already-recognized texts as one batch.
func (a *CaptureAdapter) Import(ctx context.Context, inputs []primary.RecognizedText, autoConfirm bool) error {
	candidates, err := a.service.ProcessBatch(ctx, inputs)
	if err != nil {
		return err
	}
	for _, c := range candidates {
		if err := a.review(ctx, c, autoConfirm); err != nil {
			return err
		}
	}
	return nil
}

// Pending lists candidates awaiting confirmation.
func (a *CaptureAdapter) Pending(ctx context.Context) error {
	candidates, err := a.service.Pending(ctx)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Fprintln(a.out, "No pending candidates")
		return nil
	}
	for _, c := range candidates {
		a.PrintCandidate(c)
	}
	return nil
}

// Confirm persists a pending candidate.
func (a *CaptureAdapter) Confirm(ctx context.Context, token string, edits primary.FieldEdits) error {
	d, err := a.service.Confirm(ctx, token, edits)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Saved delivery %s at position %d\n", d.ID, d.Position)
	return nil
}

// Discard drops a pending candidate.
func (a *CaptureAdapter) Discard(ctx context.Context, token string) error {
	if err := a.service.Discard(ctx, token); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Discarded candidate %s\n", token)
	return nil
}

// PrintCandidate shows a candidate with the outcome of each field.
func (a *CaptureAdapter) PrintCandidate(c *primary.Candidate) {
	fmt.Fprintf(a.out, "\nCandidate %s", c.Token)
	if c.ImageRef != "" {
		fmt.Fprintf(a.out, " (%s)", c.ImageRef)
	}
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "  Invoice:  %-30s %s\n", c.InvoiceNumber, outcomeLabel(c.Outcomes.InvoiceNumber))
	fmt.Fprintf(a.out, "  Customer: %-30s %s\n", c.CustomerName, outcomeLabel(c.Outcomes.CustomerName))
	fmt.Fprintf(a.out, "  Address:  %-30s %s\n", c.CustomerAddress, outcomeLabel(c.Outcomes.CustomerAddress))
	fmt.Fprintf(a.out, "  Phone:    %-30s %s\n", c.CustomerPhone, outcomeLabel(c.Outcomes.CustomerPhone))
	if len(c.Items) > 0 {
		fmt.Fprintf(a.out, "  Items:    %s\n", export.FormatItems(c.Items))
	}
}

func (a *CaptureAdapter) review(ctx context.Context, c *primary.Candidate, autoConfirm bool) error {
	a.PrintCandidate(c)
	if autoConfirm {
		return a.Confirm(ctx, c.Token, primary.FieldEdits{})
	}

	for {
		answer, err := a.prompt("[c]onfirm, [e]dit, [d]iscard, [s]kip? ")
		if err != nil {
			return err
		}
		switch strings.ToLower(answer) {
		case "c", "confirm", "":
			return a.Confirm(ctx, c.Token, primary.FieldEdits{})
		case "e", "edit":
			edits, err := a.promptEdits(c)
			if err != nil {
				return err
			}
			return a.Confirm(ctx, c.Token, edits)
		case "d", "discard":
			return a.Discard(ctx, c.Token)
		case "s", "skip":
			fmt.Fprintf(a.out, "Candidate %s left pending\n", c.Token)
			return nil
		default:
			fmt.Fprintf(a.out, "Unknown answer %q\n", answer)
		}
	}
}

// promptEdits asks for each field; an empty answer keeps the extracted value.
func (a *CaptureAdapter) promptEdits(c *primary.Candidate) (primary.FieldEdits, error) {
	var edits primary.FieldEdits
	fields := []struct {
		label   string
		current string
		target  **string
	}{
		{"Invoice", c.InvoiceNumber, &edits.InvoiceNumber},
		{"Customer", c.CustomerName, &edits.CustomerName},
		{"Address", c.CustomerAddress, &edits.CustomerAddress},
		{"Phone", c.CustomerPhone, &edits.CustomerPhone},
	}
	for _, f := range fields {
		answer, err := a.prompt(fmt.Sprintf("%s [%s]: ", f.label, f.current))
		if err != nil {
			return edits, err
		}
		if answer != "" && answer != f.current {
			value := answer
			*f.target = &value
		}
	}
	return edits, nil
}

func (a *CaptureAdapter) prompt(question string) (string, error) {
	fmt.Fprint(a.out, question)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("input closed before an answer was given")
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func outcomeLabel(outcome string) string {
	switch outcome {
	case "matched", "overridden":
		return color.New(color.FgGreen).Sprint(outcome)
	case "ambiguous":
		return color.New(color.FgYellow).Sprint(outcome)
	default:
		return color.New(color.FgRed).Sprint(outcome)
	}
}
