package core

import (
	"errors"

	"github.com/signalsfoundry/drone-courier-sim/model"
)

// ErrColliderRegistered is returned when an owner already has a collider in
// the world.
var ErrColliderRegistered = errors.New("collider already registered for owner")

// CollisionHandler receives contact notifications for a registered collider.
type CollisionHandler interface {
	OnCollision(other *Collider)
}

type registration struct {
	collider *Collider
	handler  CollisionHandler
}

// CollisionWorld is a flat registry of live colliders with an O(n^2)
// broad-phase pass. It is not safe for concurrent use; the simulation
// driver owns it and calls it from the tick loop.
type CollisionWorld struct {
	entries []registration
	index   map[model.EntityID]int
}

// NewCollisionWorld returns an empty world.
func NewCollisionWorld() *CollisionWorld {
	return &CollisionWorld{index: make(map[model.EntityID]int)}
}

// Add appends c to the registry. Insertion order defines pairing order.
func (w *CollisionWorld) Add(c *Collider, h CollisionHandler) error {
	if _, exists := w.index[c.Owner()]; exists {
		return ErrColliderRegistered
	}
	w.index[c.Owner()] = len(w.entries)
	w.entries = append(w.entries, registration{collider: c, handler: h})
	return nil
}

// Remove deregisters the collider owned by id. It reports whether anything
// was removed.
func (w *CollisionWorld) Remove(id model.EntityID) bool {
	i, ok := w.index[id]
	if !ok {
		return false
	}
	// Copy rather than shift in place: an in-flight pass may still hold the
	// previous backing array.
	next := make([]registration, 0, len(w.entries)-1)
	next = append(next, w.entries[:i]...)
	next = append(next, w.entries[i+1:]...)
	w.entries = next

	delete(w.index, id)
	for j := i; j < len(w.entries); j++ {
		w.index[w.entries[j].collider.Owner()] = j
	}
	return true
}

// Contains reports whether id has a registered collider.
func (w *CollisionWorld) Contains(id model.EntityID) bool {
	_, ok := w.index[id]
	return ok
}

// Collider returns the registered collider for id.
func (w *CollisionWorld) Collider(id model.EntityID) (*Collider, bool) {
	i, ok := w.index[id]
	if !ok {
		return nil, false
	}
	return w.entries[i].collider, true
}

// Len returns the number of registered colliders.
func (w *CollisionWorld) Len() int { return len(w.entries) }

// Colliders returns a snapshot of registered colliders in insertion order,
// e.g. for debug visualisation.
func (w *CollisionWorld) Colliders() []*Collider {
	out := make([]*Collider, len(w.entries))
	for i, e := range w.entries {
		out[i] = e.collider
	}
	return out
}

// Intersects is the broad-phase test used by CheckCollisions.
func (w *CollisionWorld) Intersects(a, b *Collider) bool {
	return a.Box().Intersects(b.Box())
}

// CheckCollisions tests every unordered pair once and notifies both owners
// of each intersecting pair, first i then j. It returns the number of
// intersecting pairs. Changes to the registry made by handlers take effect
// on the next pass.
func (w *CollisionWorld) CheckCollisions() int {
	snapshot := w.entries
	pairs := 0
	for i := 0; i < len(snapshot); i++ {
		for j := i + 1; j < len(snapshot); j++ {
			a, b := snapshot[i], snapshot[j]
			if !w.Intersects(a.collider, b.collider) {
				continue
			}
			pairs++
			if a.handler != nil {
				a.handler.OnCollision(b.collider)
			}
			if b.handler != nil {
				b.handler.OnCollision(a.collider)
			}
		}
	}
	return pairs
}
