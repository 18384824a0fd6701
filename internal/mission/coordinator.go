// Package mission runs the delivery cycle: assign a destination, wait for
// the package to be delivered, then pick a new destination and respawn the
// package.
package mission

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/drone-courier-sim/core"
	"github.com/signalsfoundry/drone-courier-sim/internal/logging"
	"github.com/signalsfoundry/drone-courier-sim/kb"
	"github.com/signalsfoundry/drone-courier-sim/model"
)

const tracerName = "github.com/signalsfoundry/drone-courier-sim/internal/mission"

var (
	ErrNoDestinations = errors.New("mission: no destinations")
	ErrNoSpawns       = errors.New("mission: no package spawn points")
)

// DeliveryRecorder counts completed deliveries.
type DeliveryRecorder interface {
	RecordDelivery(drone model.EntityID)
}

// Options configures a Coordinator.
type Options struct {
	Scene        *kb.Scene
	Drone        *core.Drone
	Package      *core.Package
	Destinations []core.Markable
	Spawns       []mgl64.Vec3
	Rand         core.RandSource
	Log          logging.Logger
	Metrics      DeliveryRecorder
}

// Coordinator owns the package's destination choice across missions.
type Coordinator struct {
	scene        *kb.Scene
	drone        *core.Drone
	pkg          *core.Package
	destinations []core.Markable
	spawns       []mgl64.Vec3
	rng          core.RandSource
	log          logging.Logger
	metrics      DeliveryRecorder
	tracer       trace.Tracer

	current    int
	deliveries int
}

func NewCoordinator(opts Options) (*Coordinator, error) {
	if opts.Package == nil || opts.Drone == nil {
		return nil, fmt.Errorf("mission: package and drone are required")
	}
	if len(opts.Destinations) == 0 {
		return nil, ErrNoDestinations
	}
	if len(opts.Spawns) == 0 {
		return nil, ErrNoSpawns
	}
	if opts.Rand == nil {
		return nil, fmt.Errorf("mission: random source is required")
	}
	log := opts.Log
	if log == nil {
		log = logging.Noop()
	}
	return &Coordinator{
		scene:        opts.Scene,
		drone:        opts.Drone,
		pkg:          opts.Package,
		destinations: opts.Destinations,
		spawns:       opts.Spawns,
		rng:          opts.Rand,
		log:          log.With(logging.String("component", "mission")),
		metrics:      opts.Metrics,
		tracer:       otel.Tracer(tracerName),
		current:      -1,
	}, nil
}

// Start assigns the first destination and hooks the delivery callback.
// ctx is used for logging and spans raised from the callback.
func (c *Coordinator) Start(ctx context.Context) error {
	idx := c.pick()
	if err := c.pkg.SetDestination(c.destinations[idx]); err != nil {
		return err
	}
	c.current = idx
	c.pkg.OnDelivered(func() { c.handleDelivered(ctx) })

	c.log.Info(ctx, "mission assigned",
		logging.Int("destination", int(c.destinations[idx].ID())),
		logging.Int("package", int(c.pkg.ID())),
	)
	return nil
}

// Deliveries returns how many deliveries have completed.
func (c *Coordinator) Deliveries() int { return c.deliveries }

// Current returns the active destination.
func (c *Coordinator) Current() core.Markable {
	if c.current < 0 {
		return nil
	}
	return c.destinations[c.current]
}

func (c *Coordinator) handleDelivered(ctx context.Context) {
	ctx, span := c.tracer.Start(ctx, "mission.delivered")
	defer span.End()

	c.deliveries++
	delivered := c.destinations[c.current]

	next := c.pick()
	if err := c.pkg.SetDestination(c.destinations[next]); err != nil {
		c.log.Error(ctx, "reassign destination failed", logging.Err(err))
		span.RecordError(err)
		return
	}
	c.current = next
	spawn := c.spawns[c.index(len(c.spawns))]
	c.pkg.Reset(spawn)

	span.SetAttributes(
		attribute.Int("mission.deliveries", c.deliveries),
		attribute.Int64("mission.destination", int64(delivered.ID())),
		attribute.Float64("drone.score", c.drone.Score()),
	)

	if c.metrics != nil {
		c.metrics.RecordDelivery(c.drone.ID())
	}
	if c.scene != nil {
		c.scene.Publish(kb.Event{
			Type:        kb.EventDelivered,
			ID:          c.pkg.ID(),
			Kind:        model.KindPackage,
			Carrier:     c.drone.ID(),
			Destination: delivered.ID(),
			Score:       c.drone.Score(),
		})
	}
	c.log.Info(ctx, "package delivered",
		logging.Int("deliveries", c.deliveries),
		logging.Float64("score", c.drone.Score()),
		logging.Int("next_destination", int(c.destinations[next].ID())),
	)
}

// pick chooses a destination index different from the current one when
// more than one exists.
func (c *Coordinator) pick() int {
	n := len(c.destinations)
	if c.current < 0 || n == 1 {
		return c.index(n)
	}
	idx := c.index(n - 1)
	if idx >= c.current {
		idx++
	}
	return idx
}

func (c *Coordinator) index(n int) int {
	i := int(c.rng.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
