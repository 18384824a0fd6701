package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/drone-courier-sim/model"
)

// GroundLevel is the world Y coordinate of the ground plane.
const GroundLevel = 0.0

// epsilon guards normalisation of near-zero vectors.
const epsilon = 1e-6

// Vec converts a boundary triple into an mgl64 vector.
func Vec(v model.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// ModelVec converts an mgl64 vector into a boundary triple.
func ModelVec(v mgl64.Vec3) model.Vec3 {
	return model.Vec3{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// HorizontalLen returns the length of v projected onto the XZ plane.
func HorizontalLen(v mgl64.Vec3) float64 {
	return math.Hypot(v.X(), v.Z())
}

// clampHorizontal rescales the X and Z components of v uniformly so that
// their combined magnitude does not exceed limit. Y is left untouched.
func clampHorizontal(v mgl64.Vec3, limit float64) mgl64.Vec3 {
	h := HorizontalLen(v)
	if h <= limit || h == 0 {
		return v
	}
	s := limit / h
	return mgl64.Vec3{v.X() * s, v.Y(), v.Z() * s}
}

// approach moves current toward target by a first-order exponential step.
func approach(current, target, rate, dt float64) float64 {
	return current + (target-current)*rate*dt
}

// yawBasis returns sin and cos of a yaw angle given in degrees.
func yawBasis(yawDeg float64) (sin, cos float64) {
	return math.Sincos(mgl64.DegToRad(yawDeg))
}
