package primary

import "context"

// ReorderService defines the primary port for reordering the worklist.
type ReorderService interface {
	// Move places a delivery at NewIndex and renumbers the worklist densely.
	Move(ctx context.Context, req MoveRequest) (*MoveResponse, error)
}

// MoveRequest contains parameters for a move.
type MoveRequest struct {
	RecordID      string
	NewIndex      int
	ExpectedOrder []string // Optional; rejects the move if the worklist changed
}

// MoveResponse contains the worklist order after a move.
type MoveResponse struct {
	Order   []string
	Changed bool
}
