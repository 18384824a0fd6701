package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/drone-courier-sim/model"
)

// AutoMover is a wandering obstacle. It has no reaction of its own to
// contact; drones detect it through its collider.
type AutoMover struct {
	Body

	motion   *WanderMotion
	spinRate float64
}

// NewAutoMover places a mover at pos wandering within radius at speed.
func NewAutoMover(id model.EntityID, pos, scale mgl64.Vec3, radius, speed float64, params MoverParams, rng RandSource) *AutoMover {
	m := &AutoMover{
		Body:     newBody(id, model.KindAutoMover, pos),
		motion:   NewWanderMotion(pos, radius, speed, params, rng),
		spinRate: params.SpinRate,
	}
	m.SetScale(scale)
	m.refreshCollider()
	return m
}

// Motion exposes the wander model, mostly for inspection.
func (m *AutoMover) Motion() *WanderMotion { return m.motion }

// Direction returns the current unit heading.
func (m *AutoMover) Direction() mgl64.Vec3 { return m.motion.Direction }

// Update moves the mover, spins it and refreshes its box.
func (m *AutoMover) Update(dt float64) {
	m.position = m.motion.Advance(m.position, dt)
	m.yaw += m.spinRate * dt
	m.refreshCollider()
}

func (m *AutoMover) refreshCollider() {
	size := math.Max(m.scale.X(), math.Max(m.scale.Y(), m.scale.Z()))
	r := 2 * size
	ry := 0.5 * size
	m.collider.SetBox(BoxFromCenter(m.position, mgl64.Vec3{r, ry, r}))
}
