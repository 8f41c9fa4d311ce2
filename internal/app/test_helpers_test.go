package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/routeslip/internal/errorx"
	"github.com/example/routeslip/internal/ports/secondary"
)

// Ensure mocks implement the interfaces
var (
	_ secondary.DeliveryRepository = (*mockDeliveryRepository)(nil)
	_ secondary.ImageResolver      = (*mockImageResolver)(nil)
	_ secondary.LogWriter          = (*mockLogWriter)(nil)
	_ secondary.TextRecognizer     = (*mockRecognizer)(nil)
	_ secondary.FrameSource        = (*mockFrameSource)(nil)
)

// mockDeliveryRepository is an in-memory DeliveryRepository.
type mockDeliveryRepository struct {
	mu        sync.Mutex
	records   map[string]*secondary.DeliveryRecord
	applyErr  error
	createErr error
}

func newMockDeliveryRepository() *mockDeliveryRepository {
	return &mockDeliveryRepository{records: make(map[string]*secondary.DeliveryRecord)}
}

func (m *mockDeliveryRepository) Create(ctx context.Context, d *secondary.DeliveryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.records[d.ID]; ok {
		return fmt.Errorf("delivery %s already exists", d.ID)
	}
	next := 0
	for _, r := range m.records {
		if r.SequencePosition >= next {
			next = r.SequencePosition + 1
		}
	}
	d.SequencePosition = next
	cp := *d
	m.records[d.ID] = &cp
	return nil
}

func (m *mockDeliveryRepository) GetByID(ctx context.Context, id string) (*secondary.DeliveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: delivery %s", errorx.ErrNotFound, id)
	}
	cp := *r
	return &cp, nil
}

func (m *mockDeliveryRepository) List(ctx context.Context, filters secondary.DeliveryFilters) ([]*secondary.DeliveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*secondary.DeliveryRecord
	for _, r := range m.sortedLocked() {
		if filters.Status != "" && r.Status != filters.Status {
			continue
		}
		if !filters.CreatedFrom.IsZero() && r.CreatedAt.Before(filters.CreatedFrom) {
			continue
		}
		if !filters.CreatedBefore.IsZero() && !r.CreatedAt.Before(filters.CreatedBefore) {
			continue
		}
		cp := *r
		result = append(result, &cp)
	}
	if filters.Limit > 0 && len(result) > filters.Limit {
		result = result[:filters.Limit]
	}
	return result, nil
}

func (m *mockDeliveryRepository) Update(ctx context.Context, d *secondary.DeliveryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.records[d.ID]
	if !ok {
		return fmt.Errorf("%w: delivery %s", errorx.ErrNotFound, d.ID)
	}
	cp := *d
	cp.SequencePosition = existing.SequencePosition
	cp.CreatedAt = existing.CreatedAt
	m.records[d.ID] = &cp
	return nil
}

func (m *mockDeliveryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("%w: delivery %s", errorx.ErrNotFound, id)
	}
	delete(m.records, id)
	return nil
}

func (m *mockDeliveryRepository) Positions(ctx context.Context) ([]secondary.PositionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sorted := m.sortedLocked()
	positions := make([]secondary.PositionRecord, len(sorted))
	for i, r := range sorted {
		positions[i] = secondary.PositionRecord{ID: r.ID, Position: r.SequencePosition}
	}
	return positions, nil
}

func (m *mockDeliveryRepository) ApplyPositions(ctx context.Context, positions []secondary.PositionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.applyErr != nil {
		return m.applyErr
	}
	seen := make(map[int]bool, len(positions))
	for _, p := range positions {
		if _, ok := m.records[p.ID]; !ok {
			return fmt.Errorf("%w: delivery %s", errorx.ErrNotFound, p.ID)
		}
		if seen[p.Position] {
			return errorx.ErrDuplicatePosition
		}
		seen[p.Position] = true
	}
	for _, p := range positions {
		m.records[p.ID].SequencePosition = p.Position
	}
	return nil
}

func (m *mockDeliveryRepository) sortedLocked() []*secondary.DeliveryRecord {
	sorted := make([]*secondary.DeliveryRecord, 0, len(m.records))
	for _, r := range m.records {
		sorted = append(sorted, r)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].SequencePosition < sorted[j].SequencePosition
	})
	return sorted
}

// mockImageResolver resolves every ref except those marked missing.
type mockImageResolver struct {
	missing map[string]bool
}

func newMockImageResolver(missing ...string) *mockImageResolver {
	m := &mockImageResolver{missing: make(map[string]bool)}
	for _, ref := range missing {
		m.missing[ref] = true
	}
	return m
}

func (m *mockImageResolver) Resolve(ctx context.Context, ref string) (secondary.ImageInfo, error) {
	if m.missing[ref] {
		return secondary.ImageInfo{}, fmt.Errorf("open %s: no such file", ref)
	}
	return secondary.ImageInfo{Ref: ref, Format: "png", Width: 10, Height: 10, Size: 100}, nil
}

// mockLogWriter records audit calls as "action:id[:field]".
type mockLogWriter struct {
	mu      sync.Mutex
	entries []string
}

func (m *mockLogWriter) add(entry string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockLogWriter) LogCreate(ctx context.Context, id string) error {
	return m.add("create:" + id)
}

func (m *mockLogWriter) LogUpdate(ctx context.Context, id, field, oldValue, newValue string) error {
	return m.add("update:" + id + ":" + field)
}

func (m *mockLogWriter) LogDelete(ctx context.Context, id string) error {
	return m.add("delete:" + id)
}

func (m *mockLogWriter) LogReorder(ctx context.Context, id string, oldPosition, newPosition int) error {
	return m.add(fmt.Sprintf("reorder:%s:%d->%d", id, oldPosition, newPosition))
}

func (m *mockLogWriter) snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.entries...)
}

// mockRecognizer returns canned text per image ref.
type mockRecognizer struct {
	texts map[string]string
	err   error
}

func (m *mockRecognizer) Recognize(ctx context.Context, imageRef string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.texts[imageRef], nil
}

// mockFrameSource hands out frames in order.
type mockFrameSource struct {
	frames    []string
	processed []string
}

func (m *mockFrameSource) NextFrame(ctx context.Context) (string, error) {
	for _, f := range m.frames {
		if !contains(m.processed, f) {
			return f, nil
		}
	}
	return "", errorx.ErrNoFrame
}

func (m *mockFrameSource) MarkProcessed(ctx context.Context, ref string) (string, error) {
	m.processed = append(m.processed, ref)
	return "processed/" + ref, nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// newTestDeliveryService wires a delivery service over an in-memory repository
// with a clock that advances one minute per call, starting at testEpoch.
func newTestDeliveryService() (*DeliveryServiceImpl, *mockDeliveryRepository, *mockLogWriter) {
	repo := newMockDeliveryRepository()
	logs := &mockLogWriter{}
	svc := NewDeliveryService(repo, newMockImageResolver("missing.png"), logs, nil, nil)

	var mu sync.Mutex
	tick := testEpoch
	svc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := tick
		tick = tick.Add(time.Minute)
		return t
	}
	ids := 0
	svc.newID = func() string {
		ids++
		return fmt.Sprintf("D-%03d", ids)
	}
	return svc, repo, logs
}

var testEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string {
	return &s
}
