package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// FollowCamera orbits the drone on a sphere. Alpha tracks the drone's yaw
// plus a user-chosen offset; Beta is the elevation. Angles are degrees.
type FollowCamera struct {
	Alpha    float64
	Beta     float64
	Radius   float64
	Position mgl64.Vec3
	Target   mgl64.Vec3
}

// Headlight is a spot light mounted on the drone.
type Headlight struct {
	Position mgl64.Vec3
	Yaw      float64
	Pitch    float64
}

// Headlight mount points in the drone frame.
const (
	headlightSpacing = 0.25
	headlightReach   = 1.21
)

// Camera returns the follow camera derived from the current pose.
func (d *Drone) Camera() FollowCamera { return d.camera }

// Headlights returns the left and right headlights.
func (d *Drone) Headlights() [2]Headlight { return d.headlights }

// OrbitCamera moves the camera to the given spherical angles around the
// drone. The horizontal angle is kept relative to the drone's yaw from then
// on.
func (d *Drone) OrbitCamera(alpha, beta, radius float64) {
	d.cameraOffset = alpha - d.yaw
	d.camera.Beta = beta
	if radius > 0 {
		d.camera.Radius = radius
	}
	d.updateRig()
}

// CameraOffset returns the camera's horizontal angle relative to yaw.
func (d *Drone) CameraOffset() float64 { return d.cameraOffset }

func (d *Drone) updateRig() {
	d.updateCamera()
	d.updateHeadlights()
}

func (d *Drone) updateCamera() {
	c := &d.camera
	c.Alpha = d.yaw + d.cameraOffset

	sinA, cosA := math.Sincos(mgl64.DegToRad(c.Alpha))
	sinB, cosB := math.Sincos(mgl64.DegToRad(c.Beta))
	offset := mgl64.Vec3{
		c.Radius * sinA * cosB,
		c.Radius * sinB,
		c.Radius * cosA * cosB,
	}
	c.Position = d.position.Add(offset)
	c.Target = d.position
}

func (d *Drone) updateHeadlights() {
	sinY, cosY := yawBasis(d.yaw)
	sinP, cosP := math.Sincos(mgl64.DegToRad(d.pitch))

	// Keeps the vertical offset on the correct side when the drone faces
	// backwards.
	yawDir := 1.0
	if cosY < 0 {
		yawDir = -1
	}

	for i, side := range [2]float64{-1, 1} {
		lateral := side * headlightSpacing
		x := lateral*cosY - headlightReach*sinY
		var y float64
		if side < 0 {
			y = (lateral*sinY + headlightReach*cosY) * sinP
		} else {
			y = (lateral*yawDir*sinY + headlightReach*cosY) * sinP
		}
		z := (lateral*sinY + headlightReach*cosY) * cosP

		d.headlights[i] = Headlight{
			Position: mgl64.Vec3{
				d.position.X() + x,
				d.position.Y() + yawDir*y,
				d.position.Z() - z,
			},
			Yaw:   d.yaw,
			Pitch: d.pitch,
		}
	}
}
