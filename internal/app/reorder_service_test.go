package app

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/example/routeslip/internal/errorx"
	"github.com/example/routeslip/internal/ports/primary"
)

func worklistIDs(t *testing.T, svc *DeliveryServiceImpl) ([]string, []int) {
	t.Helper()
	list, err := svc.ListDeliveries(context.Background(), primary.DeliveryFilters{})
	if err != nil {
		t.Fatalf("ListDeliveries failed: %v", err)
	}
	ids := make([]string, len(list))
	positions := make([]int, len(list))
	for i, d := range list {
		ids[i] = d.ID
		positions[i] = d.Position
	}
	return ids, positions
}

func TestReorderService_Move(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		newIndex int
		want     []string
	}{
		{"first to last", "D-001", 2, []string{"D-002", "D-003", "D-001"}},
		{"last to first", "D-003", 0, []string{"D-003", "D-001", "D-002"}},
		{"middle to first", "D-002", 0, []string{"D-002", "D-001", "D-003"}},
		{"first to middle", "D-001", 1, []string{"D-002", "D-001", "D-003"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestDeliveryService()
			createN(t, svc, 3)
			reorderSvc := NewReorderService(svc)

			resp, err := reorderSvc.Move(context.Background(), primary.MoveRequest{RecordID: tt.id, NewIndex: tt.newIndex})
			if err != nil {
				t.Fatalf("Move failed: %v", err)
			}
			if !resp.Changed {
				t.Error("expected Changed")
			}
			if !reflect.DeepEqual(resp.Order, tt.want) {
				t.Errorf("expected order %v, got %v", tt.want, resp.Order)
			}

			ids, positions := worklistIDs(t, svc)
			if !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("expected stored order %v, got %v", tt.want, ids)
			}
			if !reflect.DeepEqual(positions, []int{0, 1, 2}) {
				t.Errorf("expected dense positions, got %v", positions)
			}
		})
	}
}

func TestReorderService_MoveCompactsGaps(t *testing.T) {
	svc, _, logs := newTestDeliveryService()
	ctx := context.Background()
	createN(t, svc, 4)
	if err := svc.DeleteDelivery(ctx, "D-002"); err != nil {
		t.Fatalf("DeleteDelivery failed: %v", err)
	}

	resp, err := NewReorderService(svc).Move(ctx, primary.MoveRequest{RecordID: "D-004", NewIndex: 0})
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	want := []string{"D-004", "D-001", "D-003"}
	if !reflect.DeepEqual(resp.Order, want) {
		t.Errorf("expected %v, got %v", want, resp.Order)
	}
	_, positions := worklistIDs(t, svc)
	if !reflect.DeepEqual(positions, []int{0, 1, 2}) {
		t.Errorf("expected dense positions, got %v", positions)
	}

	entries := logs.snapshot()
	for _, e := range []string{"reorder:D-004:3->0", "reorder:D-001:0->1"} {
		if !contains(entries, e) {
			t.Errorf("missing audit entry %s in %v", e, entries)
		}
	}
	if contains(entries, "reorder:D-003:2->2") {
		t.Error("unexpected audit entry for unmoved record")
	}
}

func TestReorderService_NoOp(t *testing.T) {
	svc, _, _ := newTestDeliveryService()
	createN(t, svc, 3)
	reg := prometheus.NewRegistry()
	svc.metrics = NewMetrics(reg)

	resp, err := NewReorderService(svc).Move(context.Background(), primary.MoveRequest{RecordID: "D-002", NewIndex: 1})
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if resp.Changed {
		t.Error("expected no change")
	}
	if got := testutil.ToFloat64(svc.metrics.Reorders.WithLabelValues("noop")); got != 1 {
		t.Errorf("expected 1 noop reorder, got %v", got)
	}
}

func TestReorderService_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		req     primary.MoveRequest
		wantErr error
	}{
		{"unknown record", primary.MoveRequest{RecordID: "D-999", NewIndex: 0}, errorx.ErrNotFound},
		{"negative index", primary.MoveRequest{RecordID: "D-001", NewIndex: -1}, errorx.ErrInvalidIndex},
		{"index past end", primary.MoveRequest{RecordID: "D-001", NewIndex: 3}, errorx.ErrInvalidIndex},
		{"stale expected order", primary.MoveRequest{
			RecordID:      "D-001",
			NewIndex:      2,
			ExpectedOrder: []string{"D-002", "D-001", "D-003"},
		}, errorx.ErrReorderConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestDeliveryService()
			createN(t, svc, 3)

			_, err := NewReorderService(svc).Move(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			ids, _ := worklistIDs(t, svc)
			if !reflect.DeepEqual(ids, []string{"D-001", "D-002", "D-003"}) {
				t.Errorf("expected worklist unchanged, got %v", ids)
			}
		})
	}
}

func TestReorderService_ApplyFailureLeavesOrder(t *testing.T) {
	svc, repo, _ := newTestDeliveryService()
	createN(t, svc, 3)
	repo.applyErr = errorx.Persistence("apply positions", errors.New("disk I/O error"))

	_, err := NewReorderService(svc).Move(context.Background(), primary.MoveRequest{RecordID: "D-001", NewIndex: 2})
	if !errorx.Retryable(err) {
		t.Fatalf("expected retryable persistence error, got %v", err)
	}

	ids, _ := worklistIDs(t, svc)
	if !reflect.DeepEqual(ids, []string{"D-001", "D-002", "D-003"}) {
		t.Errorf("expected worklist unchanged, got %v", ids)
	}
}

func TestReorderService_PublishesToWatchers(t *testing.T) {
	svc, _, _ := newTestDeliveryService()
	createN(t, svc, 3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := svc.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	receive(t, ch)

	if _, err := NewReorderService(svc).Move(context.Background(), primary.MoveRequest{RecordID: "D-001", NewIndex: 2}); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	snap := receive(t, ch)
	if snap[2].ID != "D-001" || snap[2].Position != 2 {
		t.Errorf("expected D-001 last in snapshot, got %s at %d", snap[2].ID, snap[2].Position)
	}
}
