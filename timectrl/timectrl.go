package timectrl

import (
	"context"
	"sync"
	"time"
)

// SimClock is an interface for accessing simulation time, so components can
// depend on a clock abstraction rather than the concrete controller.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
	// Elapsed returns simulation time since start.
	Elapsed() time.Duration
}

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// RealTime advances according to wall-clock time. Each tick's dt is the
	// measured wall-clock gap since the previous tick, so it varies.
	RealTime Mode = iota
	// Accelerated advances as quickly as the loop can run while still
	// stepping by a fixed Tick.
	Accelerated
)

func (m Mode) String() string {
	switch m {
	case RealTime:
		return "realtime"
	case Accelerated:
		return "accelerated"
	default:
		return "unknown"
	}
}

// ParseMode maps "realtime" or "accelerated" to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "realtime", "real-time", "":
		return RealTime, true
	case "accelerated":
		return Accelerated, true
	default:
		return RealTime, false
	}
}

// Listener is invoked once per tick with the new simulation time and the
// step length in seconds.
type Listener func(simTime time.Time, dt float64)

// TimeController drives simulation time and notifies registered listeners.
// It implements SimClock.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	// MaxStep caps a single real-time dt so a stalled host does not produce
	// one huge integration step. Zero means no cap.
	MaxStep time.Duration

	currentTime time.Time
	ticks       int

	listeners []Listener

	// wallNow is the wall clock used in RealTime mode.
	wallNow func() time.Time
}

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		MaxStep:     250 * time.Millisecond,
		currentTime: start,
		wallNow:     time.Now,
	}
}

// Now returns the current simulation time. Implements SimClock.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// Elapsed returns simulation time since StartTime. Implements SimClock.
func (tc *TimeController) Elapsed() time.Duration {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime.Sub(tc.StartTime)
}

// Ticks returns how many ticks have been emitted.
func (tc *TimeController) Ticks() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.ticks
}

// SetTime jumps simulation time to t without notifying listeners.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.currentTime = t
}

// AddListener registers a callback invoked on every tick.
func (tc *TimeController) AddListener(fn Listener) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.listeners = append(tc.listeners, fn)
}

// Start runs the controller for the specified duration of simulation time
// in a separate goroutine, or until ctx is cancelled. A zero duration runs
// until cancellation. It returns a channel that is closed when the
// controller finishes.
func (tc *TimeController) Start(ctx context.Context, duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		tc.mu.Lock()
		tc.currentTime = tc.StartTime
		tc.ticks = 0
		tc.mu.Unlock()

		if tc.Mode == Accelerated {
			tc.runAccelerated(ctx, duration)
			return
		}
		tc.runRealTime(ctx, duration)
	}()
	return done
}

func (tc *TimeController) runAccelerated(ctx context.Context, duration time.Duration) {
	elapsed := time.Duration(0)
	for duration <= 0 || elapsed < duration {
		if ctx.Err() != nil {
			return
		}
		step := tc.Tick
		if duration > 0 && elapsed+step > duration {
			step = duration - elapsed
		}
		elapsed += step
		tc.advance(step)
	}
}

func (tc *TimeController) runRealTime(ctx context.Context, duration time.Duration) {
	ticker := time.NewTicker(tc.Tick)
	defer ticker.Stop()

	last := tc.wallNow()
	elapsed := time.Duration(0)
	for duration <= 0 || elapsed < duration {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		now := tc.wallNow()
		step := now.Sub(last)
		last = now
		if tc.MaxStep > 0 && step > tc.MaxStep {
			step = tc.MaxStep
		}
		if duration > 0 && elapsed+step > duration {
			step = duration - elapsed
		}
		if step <= 0 {
			continue
		}
		elapsed += step
		tc.advance(step)
	}
}

func (tc *TimeController) advance(step time.Duration) {
	tc.mu.Lock()
	tc.currentTime = tc.currentTime.Add(step)
	tc.ticks++
	simTime := tc.currentTime
	listeners := append([]Listener(nil), tc.listeners...)
	tc.mu.Unlock()

	dt := step.Seconds()
	for _, fn := range listeners {
		fn(simTime, dt)
	}
}
