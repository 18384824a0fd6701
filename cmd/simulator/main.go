package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/signalsfoundry/drone-courier-sim/internal/config"
	"github.com/signalsfoundry/drone-courier-sim/internal/logging"
	"github.com/signalsfoundry/drone-courier-sim/internal/observability"
)

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "simulator: %v\n", err)
		os.Exit(2)
	}

	ctx, log := logging.WithRunLogger(context.Background(), logging.New(cfg.LoggingConfig()))

	shutdownTracing, err := observability.InitTracing(ctx, cfg.TracingSettings(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := run(stopCtx, cfg, log, nil)
	if err != nil {
		log.Error(ctx, "simulation failed", logging.Err(err))
		stop()
		observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)
		os.Exit(1)
	}

	log.Info(ctx, "simulation finished",
		logging.Int("ticks", summary.Ticks),
		logging.Duration("sim_time", summary.SimTime),
		logging.Float64("battery", summary.Battery),
		logging.Float64("score", summary.Score),
		logging.Int("deliveries", summary.Deliveries),
		logging.Int("penalties", summary.Penalties),
		logging.Bool("disabled", summary.Disabled),
	)
}

// parseFlags loads the config file named by -config, then applies any
// flags that were set explicitly on top of it.
func parseFlags(args []string, out io.Writer) (*config.Config, error) {
	fs := flag.NewFlagSet("simulator", flag.ContinueOnError)
	fs.SetOutput(out)

	configPath := fs.String("config", "", "path to a YAML or JSON simulator config")
	scenario := fs.String("scenario", "", "scenario layout file (overrides sim.scenario)")
	script := fs.String("script", "", "flight script to replay (overrides sim.script)")
	duration := fs.Duration("duration", 0, "total simulation time; 0 runs until interrupted")
	tick := fs.Duration("tick", 0, "tick interval")
	accelerated := fs.Bool("accelerated", true, "run in accelerated mode (vs real-time)")
	seed := fs.Uint64("seed", 0, "random seed for mover placement and wandering")
	metricsAddr := fs.String("metrics-addr", "", "serve Prometheus /metrics on this address")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["scenario"] {
		cfg.Sim.Scenario = *scenario
	}
	if set["script"] {
		cfg.Sim.Script = *script
	}
	if set["duration"] {
		cfg.Sim.Duration = *duration
	}
	if set["tick"] {
		if *tick <= 0 {
			return nil, fmt.Errorf("-tick must be positive")
		}
		cfg.Sim.Tick = *tick
	}
	if set["accelerated"] {
		if *accelerated {
			cfg.Sim.Mode = "accelerated"
		} else {
			cfg.Sim.Mode = "realtime"
		}
	}
	if set["seed"] {
		cfg.Sim.Seed = *seed
	}
	if set["metrics-addr"] {
		cfg.Metrics.Enabled = *metricsAddr != ""
		cfg.Metrics.Addr = *metricsAddr
	}
	return cfg, nil
}
