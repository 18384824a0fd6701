package core

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// seqRand replays fixed draws, then repeats the last one.
type seqRand struct {
	uniform []float64
	normal  []float64
}

func (r *seqRand) Float64() float64 { return popDraw(&r.uniform) }

func (r *seqRand) NormFloat64() float64 { return popDraw(&r.normal) }

func popDraw(vals *[]float64) float64 {
	if len(*vals) == 0 {
		return 0
	}
	v := (*vals)[0]
	if len(*vals) > 1 {
		*vals = (*vals)[1:]
	}
	return v
}

func TestWanderMotionMovesInStraightLine(t *testing.T) {
	params := DefaultMoverParams()
	w := NewWanderMotion(mgl64.Vec3{10, 5, 0}, 100, 4, params, rand.New(rand.NewPCG(1, 2)))

	dir := w.Direction
	if math.Abs(dir.Len()-1) > 1e-9 {
		t.Fatalf("direction not unit length: %v", dir)
	}
	pos := mgl64.Vec3{10, 5, 0}
	got := w.Advance(pos, 0.5)
	want := pos.Add(dir.Mul(2))
	if !got.ApproxEqual(want) {
		t.Fatalf("Advance = %v, want %v", got, want)
	}
	if w.Resamples() != 0 {
		t.Fatalf("Resamples = %d, want 0 inside the band", w.Resamples())
	}
}

func TestWanderMotionStaysNearBand(t *testing.T) {
	params := DefaultMoverParams()
	const (
		radius = 100.0
		speed  = 8.0
		dt     = 1.0 / 60
	)
	rng := rand.New(rand.NewPCG(42, 7))
	pos := mgl64.Vec3{0, 5, 0}
	w := NewWanderMotion(pos, radius, speed, params, rng)

	slack := speed*dt + 1e-9
	for i := 0; i < 20000; i++ {
		pos = w.Advance(pos, dt)
		if HorizontalLen(pos) > radius+slack {
			t.Fatalf("tick %d: horizontal distance %v beyond radius", i, HorizontalLen(pos))
		}
		if pos.Y() < params.MinAltitude-slack || pos.Y() > params.MaxAltitude+slack {
			t.Fatalf("tick %d: altitude %v outside band", i, pos.Y())
		}
	}
	if w.Resamples() == 0 {
		t.Fatalf("expected at least one resample over a long run")
	}
}

func TestWanderMotionDirectionFromNewPosition(t *testing.T) {
	params := DefaultMoverParams()
	params.HorizontalJitter = 0
	params.VerticalJitter = 0

	rng := &seqRand{uniform: []float64{0.5}, normal: []float64{3, 4, 0}}
	w := NewWanderMotion(mgl64.Vec3{0, 5, 0}, 10, 1, params, rng)

	// Start far outside: resample to the rim at (6, 5, 8), then head home.
	pos := w.Advance(mgl64.Vec3{500, 5, 0}, 0)
	if !pos.ApproxEqual(mgl64.Vec3{6, params.AltitudeMean, 8}) {
		t.Fatalf("resampled position = %v, want (6, %v, 8)", pos, params.AltitudeMean)
	}
	if !w.Direction.ApproxEqual(mgl64.Vec3{-0.6, 0, -0.8}) {
		t.Fatalf("Direction = %v, want (-0.6, 0, -0.8)", w.Direction)
	}
	if w.Resamples() != 1 {
		t.Fatalf("Resamples = %d, want 1", w.Resamples())
	}
}

type zeroRand struct{}

func (zeroRand) Float64() float64     { return 0 }
func (zeroRand) NormFloat64() float64 { return 0 }

func TestWanderMotionAdversarialSourceTerminates(t *testing.T) {
	params := DefaultMoverParams()
	w := NewWanderMotion(mgl64.Vec3{}, 50, 2, params, zeroRand{})

	pos := w.Advance(mgl64.Vec3{0, 100, 0}, 0)
	want := mgl64.Vec3{50, params.AltitudeMean, 0}
	if !pos.ApproxEqual(want) {
		t.Fatalf("fallback position = %v, want %v", pos, want)
	}
	for i := 0; i < 3; i++ {
		if math.IsNaN(w.Direction[i]) {
			t.Fatalf("Direction has NaN: %v", w.Direction)
		}
	}
}

func TestWanderMotionAltitudeRejection(t *testing.T) {
	params := DefaultMoverParams()
	// First two altitude draws land outside (0.1, 20), the third inside.
	rng := &seqRand{uniform: []float64{0.5}, normal: []float64{1, 0, -3, 5, 1}}
	w := NewWanderMotion(mgl64.Vec3{}, 10, 1, params, rng)

	pos := w.Advance(mgl64.Vec3{0, -1, 0}, 0)
	if pos.Y() != 10 {
		t.Fatalf("altitude = %v, want 10", pos.Y())
	}
}
