package model

import "fmt"

// EntityID is a stable, never-reused handle for an entity in a scene.
// The zero value means "no entity".
type EntityID uint64

// Kind is the closed set of entity categories that collision handlers can
// ask about.
type Kind int

const (
	KindStatic Kind = iota // buildings, ground, props
	KindDrone
	KindAutoMover
	KindPackage
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindDrone:
		return "drone"
	case KindAutoMover:
		return "automover"
	case KindPackage:
		return "package"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Vec3 is a plain position or scale triple used at the package boundary.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// Pose is the visual transform the renderer reads once per frame.
// Angles are in degrees.
type Pose struct {
	Position Vec3
	Yaw      float64
	Pitch    float64
	Roll     float64
	Scale    Vec3
}

// Appearance is the renderer-facing visual identity of an entity. Package
// destinations overwrite it with a marker and restore it afterwards.
type Appearance struct {
	MeshIDs     []int
	TextureMode int
}

// Clone returns a deep copy so saved appearances are not aliased.
func (a Appearance) Clone() Appearance {
	out := Appearance{TextureMode: a.TextureMode}
	if a.MeshIDs != nil {
		out.MeshIDs = append([]int(nil), a.MeshIDs...)
	}
	return out
}
