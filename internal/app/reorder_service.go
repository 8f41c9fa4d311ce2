package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/routeslip/internal/core/reorder"
	"github.com/example/routeslip/internal/ports/primary"
	"github.com/example/routeslip/internal/ports/secondary"
)

// ReorderServiceImpl implements the ReorderService interface. Moves share the
// delivery store's write lock so a plan is never applied over a concurrent write.
type ReorderServiceImpl struct {
	store *DeliveryServiceImpl
}

// NewReorderService creates a reorder service over store.
func NewReorderService(store *DeliveryServiceImpl) *ReorderServiceImpl {
	return &ReorderServiceImpl{store: store}
}

// Move places req.RecordID at req.NewIndex and renumbers the worklist 0..n-1
// in one atomic batch.
func (s *ReorderServiceImpl) Move(ctx context.Context, req primary.MoveRequest) (*primary.MoveResponse, error) {
	st := s.store
	start := time.Now()

	st.mu.Lock()
	defer st.mu.Unlock()

	resp, err := s.moveLocked(ctx, req)
	st.metrics.ReorderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		st.metrics.Reorders.WithLabelValues("rejected").Inc()
		st.log.Warnf(ctx, "move of %s to %d rejected: %v", req.RecordID, req.NewIndex, err)
		return nil, err
	}
	if !resp.Changed {
		st.metrics.Reorders.WithLabelValues("noop").Inc()
		return resp, nil
	}
	st.metrics.Reorders.WithLabelValues("applied").Inc()
	return resp, nil
}

func (s *ReorderServiceImpl) moveLocked(ctx context.Context, req primary.MoveRequest) (*primary.MoveResponse, error) {
	st := s.store

	positions, err := st.repo.Positions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}

	current := make([]reorder.Entry, len(positions))
	before := make(map[string]int, len(positions))
	for i, p := range positions {
		current[i] = reorder.Entry{ID: p.ID, Position: p.Position}
		before[p.ID] = p.Position
	}

	plan, err := reorder.GeneratePlan(reorder.PlanInput{
		RecordID:      req.RecordID,
		NewIndex:      req.NewIndex,
		Current:       current,
		ExpectedOrder: req.ExpectedOrder,
	})
	if err != nil {
		return nil, err
	}
	if !plan.Changed {
		return &primary.MoveResponse{Order: plan.Order}, nil
	}

	batch := make([]secondary.PositionRecord, len(plan.Assignments))
	for i, a := range plan.Assignments {
		batch[i] = secondary.PositionRecord{ID: a.ID, Position: a.Position}
	}
	if err := st.repo.ApplyPositions(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to apply reorder: %w", err)
	}

	st.metrics.StoreMutations.WithLabelValues("reorder").Inc()
	for _, a := range plan.Assignments {
		old := before[a.ID]
		if old == a.Position {
			continue
		}
		st.audit(ctx, func() error { return st.logWriter.LogReorder(ctx, a.ID, old, a.Position) })
	}
	st.log.Infof(ctx, "moved %s to index %d", req.RecordID, req.NewIndex)
	st.publishLocked(ctx)

	return &primary.MoveResponse{Order: plan.Order, Changed: true}, nil
}

// Ensure ReorderServiceImpl implements the interface
var _ primary.ReorderService = (*ReorderServiceImpl)(nil)
