package kb

import (
	"fmt"
	"sync"

	"github.com/signalsfoundry/drone-courier-sim/core"
	"github.com/signalsfoundry/drone-courier-sim/model"
)

// EventType indicates what kind of change happened in the scene.
type EventType int

const (
	EventEntityAdded EventType = iota
	EventEntityRemoved
	EventActivationChanged
	EventDelivered
)

func (t EventType) String() string {
	switch t {
	case EventEntityAdded:
		return "entity_added"
	case EventEntityRemoved:
		return "entity_removed"
	case EventActivationChanged:
		return "activation_changed"
	case EventDelivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// Event is emitted to subscribers when something interesting happens.
type Event struct {
	Type EventType
	ID   model.EntityID
	Kind model.Kind
	Name string

	// Set on EventDelivered.
	Carrier     model.EntityID
	Destination model.EntityID
	Score       float64
}

type subscriber struct {
	id int
	fn func(Event)
}

// Scene is the world context the simulation driver constructs and passes
// around. It owns the entity registry and the collision world and keeps the
// two in step: an entity's collider is registered exactly while the entity
// is in the scene and active.
//
// The mutex makes snapshots safe to read from other goroutines (metrics,
// status output). Structural changes and ticking are expected to happen on
// a single goroutine.
type Scene struct {
	mu sync.RWMutex

	world    *core.CollisionWorld
	entities map[model.EntityID]core.Entity
	names    map[string]model.EntityID
	order    []model.EntityID
	lastID   model.EntityID

	subs    []subscriber
	nextSub int
}

// NewScene constructs an empty scene with a fresh collision world.
func NewScene() *Scene {
	return &Scene{
		world:    core.NewCollisionWorld(),
		entities: make(map[model.EntityID]core.Entity),
		names:    make(map[string]model.EntityID),
	}
}

// World returns the scene's collision world.
func (s *Scene) World() *core.CollisionWorld { return s.world }

// NextID reserves a fresh entity ID. IDs are never reused.
func (s *Scene) NextID() model.EntityID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	return s.lastID
}

// Add registers e and its collider. It returns an error if the ID already
// exists.
func (s *Scene) Add(e core.Entity) error {
	return s.AddNamed("", e)
}

// AddNamed registers e under an optional unique name.
func (s *Scene) AddNamed(name string, e core.Entity) error {
	s.mu.Lock()
	id := e.ID()
	if id == 0 {
		s.mu.Unlock()
		return fmt.Errorf("entity has zero ID")
	}
	if _, exists := s.entities[id]; exists {
		s.mu.Unlock()
		return fmt.Errorf("entity with ID %d already exists", id)
	}
	if name != "" {
		if _, exists := s.names[name]; exists {
			s.mu.Unlock()
			return fmt.Errorf("entity named %q already exists", name)
		}
	}
	if e.Active() {
		if err := s.world.Add(e.Collider(), e); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("register collider for entity %d: %w", id, err)
		}
	}
	s.entities[id] = e
	s.order = append(s.order, id)
	if name != "" {
		s.names[name] = id
	}
	if id > s.lastID {
		s.lastID = id
	}
	event := Event{Type: EventEntityAdded, ID: id, Kind: e.Kind(), Name: name}
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, event)
	return nil
}

// Remove deregisters the entity's collider and then drops the entity.
func (s *Scene) Remove(id model.EntityID) error {
	s.mu.Lock()
	e, ok := s.entities[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("entity with ID %d not found", id)
	}
	s.world.Remove(id)
	delete(s.entities, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	name := ""
	for n, nid := range s.names {
		if nid == id {
			name = n
			delete(s.names, n)
			break
		}
	}
	s.forgetContactsLocked(id)
	event := Event{Type: EventEntityRemoved, ID: id, Kind: e.Kind(), Name: name}
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, event)
	return nil
}

// forgetContactsLocked clears id from every drone's contact set so a
// collider that leaves the world stops counting as a held contact.
func (s *Scene) forgetContactsLocked(id model.EntityID) {
	for _, e := range s.entities {
		if d, ok := e.(*core.Drone); ok {
			d.ForgetContact(id)
		}
	}
}

type activatable interface {
	SetActive(bool)
}

// SetActive shows or hides an entity. Hidden entities are not updated and
// their collider leaves the collision world until they are shown again.
func (s *Scene) SetActive(id model.EntityID, active bool) error {
	s.mu.Lock()
	e, ok := s.entities[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("entity with ID %d not found", id)
	}
	a, ok := e.(activatable)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("entity with ID %d cannot be toggled", id)
	}
	if e.Active() == active {
		s.mu.Unlock()
		return nil
	}
	a.SetActive(active)
	if active {
		if err := s.world.Add(e.Collider(), e); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("register collider for entity %d: %w", id, err)
		}
	} else {
		s.world.Remove(id)
		s.forgetContactsLocked(id)
	}
	event := Event{Type: EventActivationChanged, ID: id, Kind: e.Kind()}
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, event)
	return nil
}

// Entity returns the entity with the given ID.
func (s *Scene) Entity(id model.EntityID) (core.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	return e, ok
}

// Lookup returns the entity registered under name.
func (s *Scene) Lookup(name string) (core.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.names[name]
	if !ok {
		return nil, false
	}
	e, ok := s.entities[id]
	return e, ok
}

// Entities returns a snapshot of all entities in insertion order.
func (s *Scene) Entities() []core.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]core.Entity, 0, len(s.order))
	for _, id := range s.order {
		res = append(res, s.entities[id])
	}
	return res
}

// Count returns the number of entities in the scene.
func (s *Scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// Drones returns every drone in insertion order.
func (s *Scene) Drones() []*core.Drone {
	var out []*core.Drone
	for _, e := range s.Entities() {
		if d, ok := e.(*core.Drone); ok {
			out = append(out, d)
		}
	}
	return out
}

// Carrier resolves id to something that can carry a package. Only drones
// qualify.
func (s *Scene) Carrier(id model.EntityID) (core.Carrier, bool) {
	e, ok := s.Entity(id)
	if !ok || e.Kind() != model.KindDrone {
		return nil, false
	}
	c, ok := e.(core.Carrier)
	return c, ok
}

// Markable resolves id to an entity whose look can be changed.
func (s *Scene) Markable(id model.EntityID) (core.Markable, bool) {
	e, ok := s.Entity(id)
	if !ok {
		return nil, false
	}
	m, ok := e.(core.Markable)
	return m, ok
}

// Publish sends an event to all subscribers.
func (s *Scene) Publish(ev Event) {
	s.mu.RLock()
	subs := s.subscribersLocked()
	s.mu.RUnlock()
	notify(subs, ev)
}

// Subscribe registers a callback for scene events. It returns an
// unsubscribe function.
func (s *Scene) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Scene) subscribersLocked() []func(Event) {
	fns := make([]func(Event), len(s.subs))
	for i, sub := range s.subs {
		fns[i] = sub.fn
	}
	return fns
}

// notify runs outside the lock so subscribers may call back into the scene.
func notify(subs []func(Event), ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}
