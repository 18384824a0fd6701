package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalsfoundry/drone-courier-sim/core"
	"github.com/signalsfoundry/drone-courier-sim/internal/config"
	"github.com/signalsfoundry/drone-courier-sim/internal/input"
	"github.com/signalsfoundry/drone-courier-sim/internal/logging"
	"github.com/signalsfoundry/drone-courier-sim/internal/mission"
	"github.com/signalsfoundry/drone-courier-sim/internal/observability"
	"github.com/signalsfoundry/drone-courier-sim/kb"
	"github.com/signalsfoundry/drone-courier-sim/model"
	"github.com/signalsfoundry/drone-courier-sim/timectrl"
)

// Summary is the end-of-run report.
type Summary struct {
	Ticks      int
	SimTime    time.Duration
	Battery    float64
	Score      float64
	Deliveries int
	Penalties  int
	Disabled   bool
}

// run builds the scene described by cfg and drives it until the
// configured duration elapses or ctx is cancelled. A nil reg gets a fresh
// Prometheus registry.
func run(ctx context.Context, cfg *config.Config, log logging.Logger, reg *prometheus.Registry) (Summary, error) {
	if log == nil {
		log = logging.Noop()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	mode, ok := timectrl.ParseMode(cfg.Sim.Mode)
	if !ok {
		return Summary{}, fmt.Errorf("unknown sim.mode %q", cfg.Sim.Mode)
	}

	scenario, err := core.LoadScenarioFile(cfg.Sim.Scenario)
	if err != nil {
		return Summary{}, err
	}

	rng := rand.New(rand.NewPCG(cfg.Sim.Seed, cfg.Sim.Seed^0x9e3779b97f4a7c15))
	scene := kb.NewScene()
	layout, err := kb.Populate(scene, scenario, cfg.SceneParams(), rng)
	if err != nil {
		return Summary{}, err
	}

	simMetrics, err := observability.NewSimCollector(reg)
	if err != nil {
		return Summary{}, err
	}
	missionMetrics, err := observability.NewMissionCollector(reg)
	if err != nil {
		return Summary{}, err
	}
	recordEntityCounts(scene, simMetrics)

	log.Info(ctx, "scene populated",
		logging.String("scenario", cfg.Sim.Scenario),
		logging.Int("entities", scene.Count()),
		logging.Int("obstacles", len(layout.Obstacles)),
		logging.Int("destinations", len(layout.Destinations)),
		logging.Int("movers", len(layout.Movers)),
		logging.Any("seed", cfg.Sim.Seed),
	)

	drone := layout.Drone
	coordinator, err := startMission(ctx, scene, layout, rng, log, missionMetrics)
	if err != nil {
		return Summary{}, err
	}

	var player *input.Player
	if cfg.Sim.Script != "" {
		script, err := input.LoadScriptFile(cfg.Sim.Script, input.DefaultKeymap())
		if err != nil {
			return Summary{}, err
		}
		player = input.NewPlayer(script, drone)
		log.Info(ctx, "replaying flight script",
			logging.String("path", cfg.Sim.Script),
			logging.String("name", script.Name),
			logging.Int("events", len(script.Events)),
		)
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsSrv = serveMetrics(cfg.Metrics.Addr, simMetrics, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	engine := core.NewSimulationEngine(scene, scene.World())
	engine.Metrics = simMetrics
	engine.RegisterTickListener(func(core.TickInfo) {
		missionMetrics.ObserveDrone(drone.Telemetry())
	})

	start := time.Now().UTC()
	tc := timectrl.NewTimeController(start, cfg.Sim.Tick, mode)

	var wasDisabled bool
	nextStatus := cfg.Sim.StatusInterval
	tc.AddListener(func(simTime time.Time, dt float64) {
		elapsed := simTime.Sub(start)
		if player != nil {
			player.Advance(elapsed)
		}
		engine.Step(ctx, dt)

		if drone.Disabled() && !wasDisabled {
			wasDisabled = true
			log.Warn(ctx, "drone battery depleted", logging.Duration("sim_time", elapsed))
		}
		if cfg.Sim.StatusInterval > 0 && elapsed >= nextStatus {
			nextStatus += cfg.Sim.StatusInterval
			logStatus(ctx, log, elapsed, drone.Telemetry(), coordinator)
		}
	})

	log.Info(ctx, "simulation started",
		logging.String("mode", mode.String()),
		logging.Duration("tick", cfg.Sim.Tick),
		logging.Duration("duration", cfg.Sim.Duration),
	)
	<-tc.Start(ctx, cfg.Sim.Duration)

	t := drone.Telemetry()
	summary := Summary{
		Ticks:     engine.Ticks(),
		SimTime:   tc.Elapsed(),
		Battery:   t.Battery,
		Score:     t.Score,
		Penalties: t.Penalties,
		Disabled:  t.Disabled,
	}
	if coordinator != nil {
		summary.Deliveries = coordinator.Deliveries()
	}
	return summary, nil
}

// startMission wires the delivery cycle when the scenario has a package
// and at least one destination.
func startMission(ctx context.Context, scene *kb.Scene, layout *kb.Layout, rng core.RandSource, log logging.Logger, metrics mission.DeliveryRecorder) (*mission.Coordinator, error) {
	if layout.Package == nil || len(layout.Destinations) == 0 {
		log.Warn(ctx, "scenario has no package or destinations; deliveries disabled")
		return nil, nil
	}
	destinations := make([]core.Markable, 0, len(layout.Destinations))
	for _, d := range layout.Destinations {
		destinations = append(destinations, d)
	}
	c, err := mission.NewCoordinator(mission.Options{
		Scene:        scene,
		Drone:        layout.Drone,
		Package:      layout.Package,
		Destinations: destinations,
		Spawns:       layout.PackageSpawns,
		Rand:         rng,
		Log:          log,
		Metrics:      metrics,
	})
	if err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func recordEntityCounts(scene *kb.Scene, m *observability.SimCollector) {
	counts := map[model.Kind]int{}
	for _, e := range scene.Entities() {
		counts[e.Kind()]++
	}
	for _, k := range []model.Kind{model.KindStatic, model.KindDrone, model.KindAutoMover, model.KindPackage} {
		m.SetEntityCount(k.String(), counts[k])
	}
}

func logStatus(ctx context.Context, log logging.Logger, elapsed time.Duration, t model.DroneTelemetry, c *mission.Coordinator) {
	fields := []logging.Field{
		logging.Duration("sim_time", elapsed),
		logging.Float64("battery", t.Battery),
		logging.Float64("score", t.Score),
		logging.Float64("speed", t.Speed),
		logging.Vec3("position", t.Position.X, t.Position.Y, t.Position.Z),
		logging.Bool("disabled", t.Disabled),
	}
	if c != nil {
		fields = append(fields, logging.Int("deliveries", c.Deliveries()))
		if dest := c.Current(); dest != nil {
			fields = append(fields, logging.Int("destination", int(dest.ID())))
		}
	}
	log.Info(ctx, "status", fields...)
}

func serveMetrics(addr string, collector *observability.SimCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
