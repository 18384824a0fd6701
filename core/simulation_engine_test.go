package core

import (
	"context"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/drone-courier-sim/model"
)

type entityList []Entity

func (l entityList) Entities() []Entity { return l }

type tickCounter struct {
	ticks, pairs, colliders int
}

func (c *tickCounter) RecordTick(_ time.Duration, pairs, colliders int) {
	c.ticks++
	c.pairs += pairs
	c.colliders = colliders
}

func TestSimulationEngineStep(t *testing.T) {
	w := NewCollisionWorld()
	d := NewDrone(1, mgl64.Vec3{0, 1, 0}, DefaultDroneParams())
	wall := NewObstacle(2, "wall", AABB{Min: mgl64.Vec3{-1, 0, -1}, Max: mgl64.Vec3{1, 3, 1}})
	far := NewObstacle(3, "far", AABB{Min: mgl64.Vec3{100, 0, 100}, Max: mgl64.Vec3{101, 1, 101}})
	for _, e := range []Entity{d, wall, far} {
		must(t, w.Add(e.Collider(), e))
	}

	engine := NewSimulationEngine(entityList{d, wall, far}, w)
	rec := &tickCounter{}
	engine.Metrics = rec

	var infos []TickInfo
	engine.RegisterTickListener(func(info TickInfo) { infos = append(infos, info) })

	engine.Run(context.Background(), 5, dt)

	if engine.Ticks() != 5 || len(infos) != 5 {
		t.Fatalf("Ticks = %d listener calls = %d, want 5", engine.Ticks(), len(infos))
	}
	if infos[4].Index != 4 || infos[4].DT != dt {
		t.Fatalf("last TickInfo = %+v", infos[4])
	}
	if rec.ticks != 5 || rec.pairs != 5 || rec.colliders != 3 {
		t.Fatalf("recorder = %+v, want 5 ticks, 5 pairs, 3 colliders", rec)
	}
	if d.Penalties() != 1 {
		t.Fatalf("Penalties = %d, want 1 for a sustained contact", d.Penalties())
	}
}

func TestSimulationEngineSkipsInactive(t *testing.T) {
	w := NewCollisionWorld()
	rng := zeroRand{}
	m := NewAutoMover(1, mgl64.Vec3{0, 5, 0}, mgl64.Vec3{1, 1, 1}, 50, 4, DefaultMoverParams(), rng)
	m.SetActive(false)

	engine := NewSimulationEngine(entityList{m}, w)
	engine.Step(context.Background(), 1)

	if m.Position() != (mgl64.Vec3{0, 5, 0}) {
		t.Fatalf("inactive mover moved to %v", m.Position())
	}
}

func TestSimulationEngineRunStopsOnCancel(t *testing.T) {
	engine := NewSimulationEngine(entityList{}, NewCollisionWorld())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	engine.Run(ctx, 10, dt)
	if engine.Ticks() != 0 {
		t.Fatalf("Ticks = %d, want 0 after cancel", engine.Ticks())
	}
}

func TestAutoMoverUpdate(t *testing.T) {
	params := DefaultMoverParams()
	m := NewAutoMover(1, mgl64.Vec3{10, 5, 0}, mgl64.Vec3{0.5, 2, 1}, 100, 4, params, zeroRand{})

	box := m.Collider().Box()
	if !box.Size().ApproxEqual(mgl64.Vec3{8, 2, 8}) {
		t.Fatalf("mover box size = %v, want (8, 2, 8)", box.Size())
	}
	if !box.Center().ApproxEqual(m.Position()) {
		t.Fatalf("mover box not centred on position")
	}

	start := m.Position()
	m.Update(0.5)
	if moved := m.Position().Sub(start).Len(); moved < 2-1e-9 || moved > 2+1e-9 {
		t.Fatalf("mover moved %v, want speed*dt = 2", moved)
	}
	yaw, _, _ := m.Rotation()
	if yaw != params.SpinRate*0.5 {
		t.Fatalf("yaw = %v, want %v", yaw, params.SpinRate*0.5)
	}
	if !m.Collider().Box().Center().ApproxEqual(m.Position()) {
		t.Fatalf("mover box not refreshed after Update")
	}
	// Movers do not react to contact.
	m.OnCollision(NewCollider(9, m.Kind()))
}

func TestObstacleSetPositionMovesBox(t *testing.T) {
	o := NewObstacle(1, "crate", AABB{Min: mgl64.Vec3{1, 0, 1}, Max: mgl64.Vec3{3, 2, 4}})
	if o.Scale() != (mgl64.Vec3{2, 2, 3}) {
		t.Fatalf("Scale = %v, want box size", o.Scale())
	}
	o.SetPosition(mgl64.Vec3{10, 0, 10})
	box := o.Collider().Box()
	if box.Min != (mgl64.Vec3{10, 0, 10}) || box.Max != (mgl64.Vec3{12, 2, 13}) {
		t.Fatalf("box after SetPosition = %+v", box)
	}
}

func TestBodyScaleClampsNegative(t *testing.T) {
	o := NewObstacle(1, "x", AABB{Max: mgl64.Vec3{1, 1, 1}})
	o.SetScale(mgl64.Vec3{-1, 2, -3})
	if o.Scale() != (mgl64.Vec3{0, 2, 0}) {
		t.Fatalf("Scale = %v, want negatives clamped", o.Scale())
	}
	o.SetAppearance(model.Appearance{MeshIDs: []int{1}})
	a := o.Appearance()
	a.MeshIDs[0] = 7
	if got := o.Appearance().MeshIDs; len(got) != 1 || got[0] != 1 {
		t.Fatalf("Appearance shares storage with caller")
	}
}
