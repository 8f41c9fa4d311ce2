package app

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/example/routeslip/internal/ports/primary"
)

// snapshotHub fans worklist snapshots out to watchers. Each watcher has a
// one-slot buffer; a slow watcher only ever sees the latest snapshot.
type snapshotHub struct {
	mu     sync.Mutex
	subs   map[int]chan []*primary.Delivery
	nextID int
	closed atomic.Bool
	done   chan struct{}
}

func newSnapshotHub() *snapshotHub {
	return &snapshotHub{
		subs: make(map[int]chan []*primary.Delivery),
		done: make(chan struct{}),
	}
}

// subscribe registers a watcher. ok is false once the hub is closed.
func (h *snapshotHub) subscribe() (id int, ch chan []*primary.Delivery, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed.Load() {
		return 0, nil, false
	}
	h.nextID++
	ch = make(chan []*primary.Delivery, 1)
	h.subs[h.nextID] = ch
	return h.nextID, ch, true
}

// unsubscribe removes a watcher and closes its channel.
func (h *snapshotHub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// publish offers snapshot to every watcher, replacing an unread older one.
func (h *snapshotHub) publish(snapshot []*primary.Delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		offer(ch, snapshot)
	}
}

// offer must be called with h.mu held; only the hub sends on ch.
func offer(ch chan []*primary.Delivery, snapshot []*primary.Delivery) {
	select {
	case ch <- snapshot:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snapshot:
	default:
	}
}

// count returns the number of active watchers.
func (h *snapshotHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// close ends every subscription and closes done; later subscribes fail.
func (h *snapshotHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed.Swap(true) {
		return
	}
	close(h.done)
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
