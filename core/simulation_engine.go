package core

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/signalsfoundry/drone-courier-sim/core"

// EntitySource lists the entities to advance each tick, in a stable order.
type EntitySource interface {
	Entities() []Entity
}

// TickRecorder receives per-tick statistics, typically a metrics collector.
type TickRecorder interface {
	RecordTick(elapsed time.Duration, pairs, colliders int)
}

// TickInfo summarises one completed tick.
type TickInfo struct {
	Index     int
	DT        float64
	Pairs     int
	Colliders int
	Elapsed   time.Duration
}

// SimulationEngine runs the fixed tick sequence: every active entity
// updates, then one collision pass runs.
type SimulationEngine struct {
	Entities EntitySource
	World    *CollisionWorld
	Metrics  TickRecorder

	tracer        trace.Tracer
	tick          int
	tickListeners []func(TickInfo)
}

func NewSimulationEngine(src EntitySource, world *CollisionWorld) *SimulationEngine {
	return &SimulationEngine{
		Entities:      src,
		World:         world,
		tracer:        otel.Tracer(tracerName),
		tickListeners: []func(TickInfo){},
	}
}

func (se *SimulationEngine) RegisterTickListener(fn func(TickInfo)) {
	se.tickListeners = append(se.tickListeners, fn)
}

// Ticks returns how many ticks have completed.
func (se *SimulationEngine) Ticks() int { return se.tick }

// Step advances the simulation by dt seconds.
func (se *SimulationEngine) Step(ctx context.Context, dt float64) TickInfo {
	_, span := se.tracer.Start(ctx, "sim.tick")
	defer span.End()

	start := time.Now()

	for _, e := range se.Entities.Entities() {
		if e.Active() {
			e.Update(dt)
		}
	}
	pairs := se.World.CheckCollisions()

	info := TickInfo{
		Index:     se.tick,
		DT:        dt,
		Pairs:     pairs,
		Colliders: se.World.Len(),
		Elapsed:   time.Since(start),
	}
	se.tick++

	span.SetAttributes(
		attribute.Int("sim.tick", info.Index),
		attribute.Float64("sim.dt", dt),
		attribute.Int("sim.collision_pairs", pairs),
	)

	if se.Metrics != nil {
		se.Metrics.RecordTick(info.Elapsed, info.Pairs, info.Colliders)
	}
	for _, fn := range se.tickListeners {
		fn(info)
	}
	return info
}

// Run performs ticks fixed steps of dt seconds.
func (se *SimulationEngine) Run(ctx context.Context, ticks int, dt float64) {
	for i := 0; i < ticks; i++ {
		if ctx.Err() != nil {
			return
		}
		se.Step(ctx, dt)
	}
}
