package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/drone-courier-sim/model"
)

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// BoxFromCenter builds a box around center with the given half extents.
func BoxFromCenter(center, half mgl64.Vec3) AABB {
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// Intersects reports whether a and b overlap on all three axes. Touching
// faces count as overlapping.
func (a AABB) Intersects(b AABB) bool {
	return a.Min.X() <= b.Max.X() && a.Max.X() >= b.Min.X() &&
		a.Min.Y() <= b.Max.Y() && a.Max.Y() >= b.Min.Y() &&
		a.Min.Z() <= b.Max.Z() && a.Max.Z() >= b.Min.Z()
}

// Overlap returns the per-axis overlap depth of a and b, zero on axes where
// they are apart.
func (a AABB) Overlap(b AABB) mgl64.Vec3 {
	var out mgl64.Vec3
	for i := 0; i < 3; i++ {
		out[i] = math.Max(0, math.Min(a.Max[i], b.Max[i])-math.Max(a.Min[i], b.Min[i]))
	}
	return out
}

// Center returns the midpoint of the box.
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Size returns the edge lengths of the box.
func (a AABB) Size() mgl64.Vec3 {
	return a.Max.Sub(a.Min)
}

// Collider is an entity's bounding box plus a weak handle back to its owner.
// The owner recomputes the box every tick; the collision world only reads it.
type Collider struct {
	owner model.EntityID
	kind  model.Kind
	box   AABB
}

// NewCollider returns a collider owned by the given entity.
func NewCollider(owner model.EntityID, kind model.Kind) *Collider {
	return &Collider{owner: owner, kind: kind}
}

// Owner returns the ID of the owning entity.
func (c *Collider) Owner() model.EntityID { return c.owner }

// Kind reports what sort of entity owns this collider.
func (c *Collider) Kind() model.Kind { return c.kind }

// Box returns the current world-space box.
func (c *Collider) Box() AABB { return c.box }

// SetBox replaces the current box.
func (c *Collider) SetBox(box AABB) { c.box = box }
