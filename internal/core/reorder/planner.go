// Package reorder contains the pure planning logic for moving a delivery
// within the worklist. No I/O; the caller fetches the current order and
// applies the resulting assignments atomically.
package reorder

import (
	"fmt"

	"github.com/example/routeslip/internal/errorx"
)

// Entry is a live record's id and stored position.
type Entry struct {
	ID       string
	Position int
}

// Assignment is a position to write for a record.
type Assignment struct {
	ID       string
	Position int
}

// PlanInput contains everything needed to plan a move.
// Current must be sorted by ascending position.
type PlanInput struct {
	RecordID      string
	NewIndex      int
	Current       []Entry
	ExpectedOrder []string // optional; when set, must equal the current id order
}

// Plan is the total order after a move and the positions that realize it.
type Plan struct {
	Order       []string
	Assignments []Assignment // dense 0..n-1, one per live record
	Changed     bool         // false when the move leaves the order as it was
}

// GeneratePlan validates the current positions and plans the move of
// RecordID to NewIndex. Every live record is renumbered so the result is dense.
func GeneratePlan(input PlanInput) (Plan, error) {
	if err := Validate(input.Current); err != nil {
		return Plan{}, err
	}

	current := IDs(input.Current)
	if input.ExpectedOrder != nil && !sameOrder(current, input.ExpectedOrder) {
		return Plan{}, fmt.Errorf("%w: worklist changed since it was read", errorx.ErrReorderConflict)
	}

	order, err := Move(current, input.RecordID, input.NewIndex)
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{Order: order, Assignments: make([]Assignment, len(order))}
	for i, id := range order {
		plan.Assignments[i] = Assignment{ID: id, Position: i}
		if input.Current[i].ID != id || input.Current[i].Position != i {
			plan.Changed = true
		}
	}
	return plan, nil
}

// Move returns a copy of order with id moved to newIndex; the relative order
// of every other id is preserved.
func Move(order []string, id string, newIndex int) ([]string, error) {
	from := -1
	for i, v := range order {
		if v == id {
			from = i
			break
		}
	}
	if from < 0 {
		return nil, fmt.Errorf("%w: delivery %s", errorx.ErrNotFound, id)
	}
	if newIndex < 0 || newIndex >= len(order) {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", errorx.ErrInvalidIndex, newIndex, len(order)-1)
	}

	rest := make([]string, 0, len(order)-1)
	rest = append(rest, order[:from]...)
	rest = append(rest, order[from+1:]...)

	result := make([]string, 0, len(order))
	result = append(result, rest[:newIndex]...)
	result = append(result, id)
	result = append(result, rest[newIndex:]...)
	return result, nil
}

// Validate checks that ids and positions are each unique.
func Validate(entries []Entry) error {
	ids := make(map[string]bool, len(entries))
	positions := make(map[int]string, len(entries))
	for _, e := range entries {
		if ids[e.ID] {
			return fmt.Errorf("%w: delivery %s listed twice", errorx.ErrDuplicatePosition, e.ID)
		}
		ids[e.ID] = true
		if other, ok := positions[e.Position]; ok {
			return fmt.Errorf("%w: %s and %s share position %d", errorx.ErrDuplicatePosition, other, e.ID, e.Position)
		}
		positions[e.Position] = e.ID
	}
	return nil
}

// IsDense reports whether positions run 0..n-1 in order.
func IsDense(entries []Entry) bool {
	for i, e := range entries {
		if e.Position != i {
			return false
		}
	}
	return true
}

// IDs returns the ids of entries in order.
func IDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

func sameOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
