package kb

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/drone-courier-sim/core"
	"github.com/signalsfoundry/drone-courier-sim/model"
)

func newObstacle(s *Scene, name string) *core.Obstacle {
	return core.NewObstacle(s.NextID(), name, core.AABB{Max: mgl64.Vec3{1, 1, 1}})
}

func TestAddAndLookup(t *testing.T) {
	s := NewScene()
	o := newObstacle(s, "tower")
	if err := s.AddNamed("tower", o); err != nil {
		t.Fatalf("AddNamed error: %v", err)
	}

	got, ok := s.Lookup("tower")
	if !ok || got.ID() != o.ID() {
		t.Fatalf("Lookup(tower) = %v, %v", got, ok)
	}
	if e, ok := s.Entity(o.ID()); !ok || e != core.Entity(o) {
		t.Fatalf("Entity(%d) not found", o.ID())
	}
	if !s.World().Contains(o.ID()) {
		t.Fatalf("collider not registered on Add")
	}
}

func TestAddDuplicate(t *testing.T) {
	s := NewScene()
	o := newObstacle(s, "a")
	if err := s.Add(o); err != nil {
		t.Fatalf("first Add error: %v", err)
	}
	if err := s.Add(o); err == nil {
		t.Fatalf("expected duplicate Add to fail")
	}
	if err := s.AddNamed("a", newObstacle(s, "a")); err != nil {
		t.Fatalf("AddNamed error: %v", err)
	}
	if err := s.AddNamed("a", newObstacle(s, "a")); err == nil {
		t.Fatalf("expected duplicate name to fail")
	}
	if err := s.Add(core.NewObstacle(0, "zero", core.AABB{})); err == nil {
		t.Fatalf("expected zero ID to fail")
	}
	if s.Count() != 2 || s.World().Len() != 2 {
		t.Fatalf("Count = %d colliders = %d, want 2 and 2", s.Count(), s.World().Len())
	}
}

func TestNextIDSkipsExplicitIDs(t *testing.T) {
	s := NewScene()
	if err := s.Add(core.NewObstacle(10, "ten", core.AABB{})); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if id := s.NextID(); id != 11 {
		t.Fatalf("NextID = %d, want 11", id)
	}
}

func TestRemoveDeregistersCollider(t *testing.T) {
	s := NewScene()
	a, b := newObstacle(s, "a"), newObstacle(s, "b")
	for _, o := range []*core.Obstacle{a, b} {
		if err := s.AddNamed(o.Name, o); err != nil {
			t.Fatalf("AddNamed error: %v", err)
		}
	}

	if err := s.Remove(a.ID()); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if s.World().Contains(a.ID()) {
		t.Fatalf("collider still registered after Remove")
	}
	if _, ok := s.Lookup("a"); ok {
		t.Fatalf("name still resolves after Remove")
	}
	if err := s.Remove(a.ID()); err == nil {
		t.Fatalf("expected second Remove to fail")
	}
	ents := s.Entities()
	if len(ents) != 1 || ents[0].ID() != b.ID() {
		t.Fatalf("Entities = %v, want only b", ents)
	}
	// The freed name can be reused; the ID is not.
	if err := s.AddNamed("a", newObstacle(s, "a")); err != nil {
		t.Fatalf("re-adding name error: %v", err)
	}
}

func TestEntitiesKeepInsertionOrder(t *testing.T) {
	s := NewScene()
	var want []model.EntityID
	for i := 0; i < 20; i++ {
		o := newObstacle(s, fmt.Sprintf("o%d", i))
		if err := s.Add(o); err != nil {
			t.Fatalf("Add error: %v", err)
		}
		want = append(want, o.ID())
	}
	for i, e := range s.Entities() {
		if e.ID() != want[i] {
			t.Fatalf("Entities()[%d] = %d, want %d", i, e.ID(), want[i])
		}
	}
}

func TestSetActiveTogglesCollider(t *testing.T) {
	s := NewScene()
	o := newObstacle(s, "a")
	if err := s.Add(o); err != nil {
		t.Fatalf("Add error: %v", err)
	}

	if err := s.SetActive(o.ID(), false); err != nil {
		t.Fatalf("SetActive(false) error: %v", err)
	}
	if o.Active() || s.World().Contains(o.ID()) {
		t.Fatalf("hidden entity still active or registered")
	}
	if err := s.SetActive(o.ID(), false); err != nil {
		t.Fatalf("repeated SetActive(false) error: %v", err)
	}
	if err := s.SetActive(o.ID(), true); err != nil {
		t.Fatalf("SetActive(true) error: %v", err)
	}
	if !o.Active() || !s.World().Contains(o.ID()) {
		t.Fatalf("shown entity not active or not registered")
	}
	if err := s.SetActive(999, true); err == nil {
		t.Fatalf("expected SetActive on unknown ID to fail")
	}
}

func TestAddInactiveEntitySkipsCollider(t *testing.T) {
	s := NewScene()
	o := newObstacle(s, "a")
	o.SetActive(false)
	if err := s.Add(o); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if s.World().Contains(o.ID()) {
		t.Fatalf("inactive entity registered a collider")
	}
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	s := NewScene()
	var got []EventType
	unsubscribe := s.Subscribe(func(ev Event) { got = append(got, ev.Type) })

	o := newObstacle(s, "a")
	_ = s.AddNamed("a", o)
	_ = s.SetActive(o.ID(), false)
	s.Publish(Event{Type: EventDelivered})
	_ = s.Remove(o.ID())

	want := []EventType{EventEntityAdded, EventActivationChanged, EventDelivered, EventEntityRemoved}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	unsubscribe()
	_ = s.Add(newObstacle(s, "b"))
	if len(got) != len(want) {
		t.Fatalf("received events after unsubscribe: %v", got)
	}
}

func TestSubscriberMayCallBack(t *testing.T) {
	s := NewScene()
	var count int
	s.Subscribe(func(ev Event) {
		if ev.Type == EventEntityAdded {
			count = s.Count()
		}
	})
	_ = s.Add(newObstacle(s, "a"))
	if count != 1 {
		t.Fatalf("Count from subscriber = %d, want 1", count)
	}
}

func TestCarrierAndMarkable(t *testing.T) {
	s := NewScene()
	d := core.NewDrone(s.NextID(), mgl64.Vec3{}, core.DefaultDroneParams())
	o := newObstacle(s, "a")
	_ = s.Add(d)
	_ = s.Add(o)

	if c, ok := s.Carrier(d.ID()); !ok || c.MaxBattery() != 100 {
		t.Fatalf("Carrier(drone) = %v, %v", c, ok)
	}
	if _, ok := s.Carrier(o.ID()); ok {
		t.Fatalf("obstacle resolved as carrier")
	}
	if m, ok := s.Markable(o.ID()); !ok || m.ID() != o.ID() {
		t.Fatalf("Markable(obstacle) = %v, %v", m, ok)
	}
	if _, ok := s.Markable(999); ok {
		t.Fatalf("unknown ID resolved as markable")
	}
	if drones := s.Drones(); len(drones) != 1 || drones[0] != d {
		t.Fatalf("Drones = %v", drones)
	}
}

func TestConcurrentReads(t *testing.T) {
	s := NewScene()
	for i := 0; i < 50; i++ {
		_ = s.Add(newObstacle(s, ""))
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Entities()
				_ = s.Count()
			}
		}()
	}
	for i := 0; i < 20; i++ {
		_ = s.Add(newObstacle(s, ""))
	}
	wg.Wait()

	if s.Count() != 70 {
		t.Fatalf("Count = %d, want 70", s.Count())
	}
}

func TestPopulateCity(t *testing.T) {
	sc, err := core.LoadScenarioFile(filepath.Join("..", "configs", "city.yaml"))
	if err != nil {
		t.Fatalf("LoadScenarioFile: %v", err)
	}
	s := NewScene()
	layout, err := Populate(s, sc, DefaultParams(), rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatalf("Populate: %v", err)
	}

	if layout.Drone == nil || layout.Package == nil {
		t.Fatalf("layout missing drone or package: %+v", layout)
	}
	if len(layout.Movers) != sc.Movers.Count {
		t.Fatalf("movers = %d, want %d", len(layout.Movers), sc.Movers.Count)
	}
	if len(layout.Destinations) != len(sc.Destinations()) {
		t.Fatalf("destinations = %d, want %d", len(layout.Destinations), len(sc.Destinations()))
	}
	wantCount := len(sc.Obstacles) + 2 + sc.Movers.Count
	if s.Count() != wantCount || s.World().Len() != wantCount {
		t.Fatalf("Count = %d colliders = %d, want %d", s.Count(), s.World().Len(), wantCount)
	}
	if e, ok := s.Lookup("drone"); !ok || e.Kind() != model.KindDrone {
		t.Fatalf("drone not registered by name")
	}
	if layout.Drone.Position() != sc.DronePosition {
		t.Fatalf("drone at %v, want %v", layout.Drone.Position(), sc.DronePosition)
	}
	if layout.Package.Position() != sc.PackageSpawns[0] {
		t.Fatalf("package at %v, want first spawn", layout.Package.Position())
	}

	for _, m := range layout.Movers {
		p := m.Position()
		if p.Y() != 5 || core.HorizontalLen(p) > sc.Movers.Radius*1.5 {
			t.Fatalf("mover spawned at %v", p)
		}
	}
}

func TestPopulateNilScenario(t *testing.T) {
	if _, err := Populate(NewScene(), nil, DefaultParams(), rand.New(rand.NewPCG(1, 2))); err == nil {
		t.Fatalf("expected error for nil scenario")
	}
}

func TestRemovedColliderLeavesDroneContacts(t *testing.T) {
	s := NewScene()
	d := core.NewDrone(s.NextID(), mgl64.Vec3{0, 1, 0}, core.DefaultDroneParams())
	wall := core.NewObstacle(s.NextID(), "wall", core.AABB{Min: mgl64.Vec3{-1, 0, -1}, Max: mgl64.Vec3{1, 3, 1}})
	crate := core.NewObstacle(s.NextID(), "crate", core.AABB{Min: mgl64.Vec3{-1, 0, -1}, Max: mgl64.Vec3{1, 2, 1}})
	for _, e := range []core.Entity{d, wall, crate} {
		if err := s.Add(e); err != nil {
			t.Fatalf("Add error: %v", err)
		}
	}

	s.World().CheckCollisions()
	if !d.Tracking(wall.ID()) || !d.Tracking(crate.ID()) {
		t.Fatalf("drone should track both overlapping obstacles")
	}

	if err := s.Remove(wall.ID()); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if d.Tracking(wall.ID()) {
		t.Fatalf("drone still tracks a removed obstacle")
	}
	if err := s.SetActive(crate.ID(), false); err != nil {
		t.Fatalf("SetActive error: %v", err)
	}
	if d.Tracking(crate.ID()) {
		t.Fatalf("drone still tracks a hidden obstacle")
	}

	// Showing the crate again counts as a fresh contact.
	before := d.Penalties()
	if err := s.SetActive(crate.ID(), true); err != nil {
		t.Fatalf("SetActive error: %v", err)
	}
	s.World().CheckCollisions()
	if d.Penalties() != before+1 {
		t.Fatalf("Penalties = %d, want %d after the crate reappears", d.Penalties(), before+1)
	}
}
