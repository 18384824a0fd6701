package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RandSource is the subset of *math/rand/v2.Rand used by motion models.
// Tests substitute deterministic or adversarial sources.
type RandSource interface {
	Float64() float64
	NormFloat64() float64
}

// defaultDirection is used when a direction draw degenerates.
var defaultDirection = mgl64.Vec3{1, 0, 0}

// WanderMotion moves in a straight line at a fixed speed until it leaves
// its band (beyond Radius horizontally, or outside the altitude limits),
// then jumps to a random point on the band's rim and heads back inward.
type WanderMotion struct {
	Radius    float64
	Speed     float64
	Direction mgl64.Vec3

	params MoverParams
	rng    RandSource

	resamples int
}

// NewWanderMotion returns a wander model with an initial direction drawn
// from the starting position.
func NewWanderMotion(start mgl64.Vec3, radius, speed float64, params MoverParams, rng RandSource) *WanderMotion {
	w := &WanderMotion{
		Radius: radius,
		Speed:  speed,
		params: params,
		rng:    rng,
	}
	w.Direction = w.drawDirection(start)
	return w
}

// Resamples returns how many times the model has jumped back to the rim.
func (w *WanderMotion) Resamples() int { return w.resamples }

// OutOfBounds reports whether pos has left the wander band.
func (w *WanderMotion) OutOfBounds(pos mgl64.Vec3) bool {
	return HorizontalLen(pos) >= w.Radius ||
		pos.Y() <= w.params.MinAltitude ||
		pos.Y() >= w.params.MaxAltitude
}

// Advance checks the band, resampling first if needed, then integrates one
// tick of straight-line motion.
func (w *WanderMotion) Advance(pos mgl64.Vec3, dt float64) mgl64.Vec3 {
	if w.OutOfBounds(pos) {
		pos = w.drawPosition()
		w.Direction = w.drawDirection(pos)
		w.resamples++
	}
	return pos.Add(w.Direction.Mul(w.Speed * dt))
}

// drawDirection aims roughly at the origin from pos, with jitter.
func (w *WanderMotion) drawDirection(pos mgl64.Vec3) mgl64.Vec3 {
	j, jy := w.params.HorizontalJitter, w.params.VerticalJitter
	raw := mgl64.Vec3{
		-pos.X() + w.uniform(-j, j),
		w.uniform(-jy, jy),
		-pos.Z() + w.uniform(-j, j),
	}
	if raw.Len() <= epsilon {
		return defaultDirection
	}
	return raw.Normalize()
}

// drawPosition picks a point on the rim of the wander disk at a random
// altitude inside the band. Both draws give up after MaxSampleAttempts and
// fall back to a fixed choice.
func (w *WanderMotion) drawPosition() mgl64.Vec3 {
	attempts := w.params.MaxSampleAttempts
	if attempts < 1 {
		attempts = 1
	}

	x, z := 1.0, 0.0
	for i := 0; i < attempts; i++ {
		cx, cz := w.rng.NormFloat64(), w.rng.NormFloat64()
		if cx*cx+cz*cz > epsilon {
			x, z = cx, cz
			break
		}
	}
	l := math.Hypot(x, z)
	x, z = x/l*w.Radius, z/l*w.Radius

	lo, hi := w.params.MinAltitude, w.params.MaxAltitude
	y := mgl64.Clamp(w.params.AltitudeMean, lo, hi)
	for i := 0; i < attempts; i++ {
		c := w.rng.NormFloat64()*w.params.AltitudeStdDev + w.params.AltitudeMean
		if c > lo && c < hi {
			y = c
			break
		}
	}
	return mgl64.Vec3{x, y, z}
}

func (w *WanderMotion) uniform(lo, hi float64) float64 {
	return lo + w.rng.Float64()*(hi-lo)
}
