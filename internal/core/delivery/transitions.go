package delivery

import "strings"

// UpdateContext captures the stored state and the requested replacement
// relevant to status rules.
type UpdateContext struct {
	RecordID        string
	CurrentStatus   Status
	RequestedStatus Status
	Signature       string // signature ref carried by the replacement
}

// StatusTransitionResult is the status to persist for an accepted update.
type StatusTransitionResult struct {
	NewStatus Status
	Promoted  bool // signature promoted an open record to delivered
}

// ApplyUpdate resolves the status a replacement record should be written with.
// A signature on an open record promotes it to delivered in the same write.
// Rejected updates leave the stored record unchanged.
func ApplyUpdate(ctx UpdateContext) (StatusTransitionResult, GuardResult) {
	next := ctx.RequestedStatus
	hasSignature := strings.TrimSpace(ctx.Signature) != ""

	if check := CanTransition(TransitionContext{
		RecordID: ctx.RecordID,
		Current:  ctx.CurrentStatus,
		Next:     next,
	}); !check.Allowed {
		return StatusTransitionResult{}, check
	}

	if check := CanHoldSignature(SignatureContext{
		RecordID:     ctx.RecordID,
		Status:       next,
		HasSignature: hasSignature,
	}); !check.Allowed {
		return StatusTransitionResult{}, check
	}

	result := StatusTransitionResult{NewStatus: next}
	if hasSignature && next == StatusOpen {
		result.NewStatus = StatusDelivered
		result.Promoted = true
	}
	return result, GuardResult{Allowed: true}
}

// ConfirmationContext holds the fields that decide whether a record is exportable.
type ConfirmationContext struct {
	InvoiceNumber  string
	InvoiceOutcome string
}

// IsConfirmed reports whether a record's invoice number was either read
// unambiguously or entered by hand. Only confirmed records are exported.
func IsConfirmed(ctx ConfirmationContext) bool {
	if strings.TrimSpace(ctx.InvoiceNumber) == "" {
		return false
	}
	return ctx.InvoiceOutcome == "matched" || ctx.InvoiceOutcome == "overridden"
}
