// Package delivery contains the pure business logic for delivery records.
// Guards are pure functions that evaluate preconditions without side effects.
package delivery

import "fmt"

// Status is the lifecycle state of a delivery record.
type Status string

const (
	StatusOpen      Status = "open"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// InitialStatus returns the status of a freshly confirmed record.
func InitialStatus() Status {
	return StatusOpen
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// TransitionContext provides context for status transition guards.
type TransitionContext struct {
	RecordID string
	Current  Status
	Next     Status
}

// CanTransition evaluates whether a record may move from Current to Next.
// Rules:
// - Next must be a known status
// - Staying in the same status is always allowed
// - Only open records may change status, and only forward
func CanTransition(ctx TransitionContext) GuardResult {
	if !ctx.Next.Valid() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown status %q for delivery %s", ctx.Next, ctx.RecordID),
		}
	}

	if ctx.Current == ctx.Next {
		return GuardResult{Allowed: true}
	}

	if ctx.Current != StatusOpen {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("delivery %s is %s and cannot become %s", ctx.RecordID, ctx.Current, ctx.Next),
		}
	}

	return GuardResult{Allowed: true}
}

// SignatureContext provides context for the signature guard.
type SignatureContext struct {
	RecordID     string
	Status       Status // status after the requested transition
	HasSignature bool
}

// CanHoldSignature evaluates whether a record in Status may carry a signature.
// Rules:
// - A signature is only valid on an open (to be promoted) or delivered record
func CanHoldSignature(ctx SignatureContext) GuardResult {
	if ctx.HasSignature && ctx.Status == StatusCancelled {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot record a signature on cancelled delivery %s", ctx.RecordID),
		}
	}

	return GuardResult{Allowed: true}
}
