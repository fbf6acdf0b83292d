package terminal

import (
	"sync"
	"sync/atomic"

	"github.com/asc2563/regression-thing/internal/infrastructure/monitoring"
	"github.com/asc2563/regression-thing/internal/shared/id"
)

// Listener receives shell events. It is called from the goroutine that read
// the chunk, so a slow listener delays later chunks of the same stream.
type Listener func(Event)

type subscription struct {
	id    id.SubscriptionID
	owner id.SurfaceID
	kind  EventKind
	fn    Listener

	// removed is set under the registry lock; snapshots skip removed entries
	removed atomic.Bool
}

// Registry tracks which surfaces listen to which event kinds
type Registry struct {
	metrics *monitoring.Metrics

	mu     sync.RWMutex
	byKind map[EventKind][]*subscription
	byID   map[id.SubscriptionID]*subscription
}

// NewRegistry creates an empty listener registry
func NewRegistry(metrics *monitoring.Metrics) *Registry {
	return &Registry{
		metrics: metrics,
		byKind:  make(map[EventKind][]*subscription),
		byID:    make(map[id.SubscriptionID]*subscription),
	}
}

// Subscribe registers fn for events of kind on behalf of owner
func (r *Registry) Subscribe(owner id.SurfaceID, kind EventKind, fn Listener) id.SubscriptionID {
	sub := &subscription{
		id:    id.NewSubscriptionID(),
		owner: owner,
		kind:  kind,
		fn:    fn,
	}

	r.mu.Lock()
	r.byKind[kind] = append(r.byKind[kind], sub)
	r.byID[sub.id] = sub
	count := len(r.byKind[kind])
	r.mu.Unlock()

	r.metrics.SetListeners(string(kind), count)
	return sub.id
}

// Unsubscribe removes one subscription; unknown IDs are ignored
func (r *Registry) Unsubscribe(sid id.SubscriptionID) bool {
	r.mu.Lock()
	sub, ok := r.byID[sid]
	if ok {
		r.removeLocked(sub.kind, func(s *subscription) bool { return s.id == sid })
	}
	r.mu.Unlock()

	if ok {
		r.metrics.SetListeners(string(sub.kind), r.Count(sub.kind))
	}
	return ok
}

// Detach removes every listener of kind registered by owner
func (r *Registry) Detach(owner id.SurfaceID, kind EventKind) int {
	r.mu.Lock()
	n := r.removeLocked(kind, func(s *subscription) bool { return s.owner == owner })
	r.mu.Unlock()

	r.metrics.SetListeners(string(kind), r.Count(kind))
	return n
}

// DetachOwner removes every listener registered by owner
func (r *Registry) DetachOwner(owner id.SurfaceID) int {
	total := 0
	for _, kind := range Kinds {
		total += r.Detach(owner, kind)
	}
	return total
}

// DetachAll removes every listener of kind, regardless of owner
func (r *Registry) DetachAll(kind EventKind) int {
	r.mu.Lock()
	n := r.removeLocked(kind, func(*subscription) bool { return true })
	r.mu.Unlock()

	r.metrics.SetListeners(string(kind), 0)
	return n
}

// Has reports whether owner has at least one listener of kind
func (r *Registry) Has(owner id.SurfaceID, kind EventKind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sub := range r.byKind[kind] {
		if sub.owner == owner {
			return true
		}
	}
	return false
}

// Count returns the number of listeners of kind
func (r *Registry) Count(kind EventKind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byKind[kind])
}

// Publish delivers ev to every listener of its kind.
// Listeners run outside the lock and may subscribe or detach. A listener
// removed before its turn in an ongoing delivery is skipped.
func (r *Registry) Publish(ev Event) {
	r.mu.RLock()
	snapshot := r.byKind[ev.Kind]
	r.mu.RUnlock()

	for _, sub := range snapshot {
		if sub.removed.Load() {
			continue
		}
		sub.fn(ev)
	}
}

// removeLocked rebuilds the kind's slice so published snapshots stay intact
func (r *Registry) removeLocked(kind EventKind, match func(*subscription) bool) int {
	current := r.byKind[kind]
	kept := make([]*subscription, 0, len(current))
	removed := 0
	for _, sub := range current {
		if match(sub) {
			sub.removed.Store(true)
			delete(r.byID, sub.id)
			removed++
			continue
		}
		kept = append(kept, sub)
	}

	if len(kept) == 0 {
		delete(r.byKind, kind)
	} else {
		r.byKind[kind] = kept
	}
	return removed
}
