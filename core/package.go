package core

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/drone-courier-sim/model"
)

// ErrNilDestination is returned when a package is given no destination.
var ErrNilDestination = errors.New("package destination is nil")

// Package is a delivery parcel. A drone picks it up by touching it; it then
// hangs below the drone until the drone touches the assigned destination.
type Package struct {
	Body

	params PackageParams
	dir    Directory

	status      model.MissionStatus
	carrier     model.EntityID
	destination model.EntityID

	savedAppearance model.Appearance
	savedPosition   mgl64.Vec3

	onDelivered func()
}

// NewPackage returns an idle package at pos. dir resolves carrier and
// destination handles.
func NewPackage(id model.EntityID, pos mgl64.Vec3, params PackageParams, dir Directory) *Package {
	p := &Package{
		Body:   newBody(id, model.KindPackage, pos),
		params: params,
		dir:    dir,
	}
	p.refreshCollider()
	return p
}

// OnDelivered registers the completion callback. It replaces any earlier
// callback.
func (p *Package) OnDelivered(fn func()) { p.onDelivered = fn }

// Status returns the mission state.
func (p *Package) Status() model.MissionStatus { return p.status }

// Carrier returns the carrying entity, if any.
func (p *Package) Carrier() (model.EntityID, bool) {
	return p.carrier, p.status == model.MissionCarried
}

// Destination returns the assigned destination, if any.
func (p *Package) Destination() (model.EntityID, bool) {
	return p.destination, p.destination != 0
}

// Update keeps a carried package attached below its carrier.
func (p *Package) Update(float64) {
	if p.status == model.MissionCarried {
		c, ok := p.dir.Carrier(p.carrier)
		if !ok {
			// Carrier is gone: drop where we are.
			p.status = model.MissionIdle
			p.carrier = 0
		} else {
			p.position = c.Position().Add(mgl64.Vec3{
				p.params.CarryOffsetX,
				p.params.CarryOffsetY,
				p.params.CarryOffsetZ,
			})
		}
	}
	p.refreshCollider()
}

// OnCollision picks the package up on drone contact and delivers it on
// contact with the destination's collider.
func (p *Package) OnCollision(other *Collider) {
	if p.status == model.MissionIdle && other.Kind() == model.KindDrone {
		if _, ok := p.dir.Carrier(other.Owner()); ok {
			p.status = model.MissionCarried
			p.carrier = other.Owner()
		}
	}
	if p.status == model.MissionCarried && p.destination != 0 && other.Owner() == p.destination {
		p.deliver()
	}
}

func (p *Package) deliver() {
	c, ok := p.dir.Carrier(p.carrier)
	if !ok {
		p.status = model.MissionIdle
		p.carrier = 0
		return
	}
	c.AddScore(c.Battery())
	c.SetBattery(c.MaxBattery())

	p.status = model.MissionDelivered
	p.carrier = 0
	if p.onDelivered != nil {
		p.onDelivered()
	}
}

// SetDestination makes dest the delivery target. The previous target, if
// it still exists, gets back the look and position it had before it was
// marked; dest's current look and position are saved and its look is
// replaced by the destination marker.
func (p *Package) SetDestination(dest Markable) error {
	if dest == nil {
		return ErrNilDestination
	}
	if p.destination != 0 {
		if prev, ok := p.dir.Markable(p.destination); ok {
			prev.SetAppearance(p.savedAppearance)
			prev.SetPosition(p.savedPosition)
		}
	}

	p.savedAppearance = dest.Appearance()
	p.savedPosition = dest.Position()
	p.destination = dest.ID()
	dest.SetAppearance(model.Appearance{
		MeshIDs:     []int{p.params.DestinationMeshID},
		TextureMode: p.savedAppearance.TextureMode,
	})
	return nil
}

// Reset moves the package to pos and starts a new mission cycle. The
// destination is kept.
func (p *Package) Reset(pos mgl64.Vec3) {
	p.position = pos
	p.status = model.MissionIdle
	p.carrier = 0
	p.refreshCollider()
}

func (p *Package) refreshCollider() {
	s := p.params.Size
	p.collider.SetBox(AABB{Min: p.position, Max: p.position.Add(mgl64.Vec3{s, s, s})})
}
