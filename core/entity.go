package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/drone-courier-sim/model"
)

// Entity is anything that lives in a scene: it has a pose, owns exactly one
// collider, advances once per tick and may react to contacts.
type Entity interface {
	ID() model.EntityID
	Kind() model.Kind
	Update(dt float64)
	OnCollision(other *Collider)
	Collider() *Collider
	Pose() model.Pose
	Active() bool
}

// Carrier is the capability a Package needs from whoever picks it up.
type Carrier interface {
	Position() mgl64.Vec3
	Battery() float64
	SetBattery(v float64)
	MaxBattery() float64
	AddScore(v float64)
}

// Markable is an entity whose look and placement can be saved, overwritten
// and restored, such as a delivery destination.
type Markable interface {
	ID() model.EntityID
	Appearance() model.Appearance
	SetAppearance(a model.Appearance)
	Position() mgl64.Vec3
	SetPosition(p mgl64.Vec3)
}

// Directory resolves weak entity handles. A false result means the entity
// has been removed.
type Directory interface {
	Carrier(id model.EntityID) (Carrier, bool)
	Markable(id model.EntityID) (Markable, bool)
}

// Body carries the state shared by every entity: transform, collider,
// appearance and the active flag. Update and OnCollision are no-ops.
type Body struct {
	id         model.EntityID
	kind       model.Kind
	position   mgl64.Vec3
	yaw        float64
	pitch      float64
	roll       float64
	scale      mgl64.Vec3
	collider   *Collider
	appearance model.Appearance
	active     bool
}

func newBody(id model.EntityID, kind model.Kind, pos mgl64.Vec3) Body {
	return Body{
		id:       id,
		kind:     kind,
		position: pos,
		scale:    mgl64.Vec3{1, 1, 1},
		collider: NewCollider(id, kind),
		active:   true,
	}
}

func (b *Body) ID() model.EntityID       { return b.id }
func (b *Body) Kind() model.Kind         { return b.kind }
func (b *Body) Update(float64)           {}
func (b *Body) OnCollision(*Collider)    {}
func (b *Body) Collider() *Collider      { return b.collider }
func (b *Body) Active() bool             { return b.active }
func (b *Body) SetActive(active bool)    { b.active = active }
func (b *Body) Position() mgl64.Vec3     { return b.position }
func (b *Body) SetPosition(p mgl64.Vec3) { b.position = p }
func (b *Body) Scale() mgl64.Vec3        { return b.scale }

// Appearance returns a copy of the entity's visual identity.
func (b *Body) Appearance() model.Appearance { return b.appearance.Clone() }

// SetAppearance replaces the entity's visual identity.
func (b *Body) SetAppearance(a model.Appearance) { b.appearance = a.Clone() }

// Rotation returns yaw, pitch and roll in degrees.
func (b *Body) Rotation() (yaw, pitch, roll float64) {
	return b.yaw, b.pitch, b.roll
}

// SetRotation stores yaw, pitch and roll in degrees.
func (b *Body) SetRotation(yaw, pitch, roll float64) {
	b.yaw, b.pitch, b.roll = yaw, pitch, roll
}

// SetScale stores the scale, clamping negative components to zero.
func (b *Body) SetScale(s mgl64.Vec3) {
	b.scale = mgl64.Vec3{math.Max(0, s.X()), math.Max(0, s.Y()), math.Max(0, s.Z())}
}

// Pose returns the renderer-facing transform.
func (b *Body) Pose() model.Pose {
	return model.Pose{
		Position: ModelVec(b.position),
		Yaw:      b.yaw,
		Pitch:    b.pitch,
		Roll:     b.roll,
		Scale:    ModelVec(b.scale),
	}
}

// Obstacle is a static entity with a fixed box, such as a building or the
// ground slab.
type Obstacle struct {
	Body
	Name string
}

// NewObstacle returns a static entity whose collider is box. The position is
// the box's min corner and the scale its size.
func NewObstacle(id model.EntityID, name string, box AABB) *Obstacle {
	o := &Obstacle{Body: newBody(id, model.KindStatic, box.Min), Name: name}
	o.SetScale(box.Size())
	o.collider.SetBox(box)
	return o
}

// SetPosition moves the obstacle and its box together.
func (o *Obstacle) SetPosition(p mgl64.Vec3) {
	delta := p.Sub(o.position)
	o.position = p
	box := o.collider.Box()
	o.collider.SetBox(AABB{Min: box.Min.Add(delta), Max: box.Max.Add(delta)})
}
