package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/signalsfoundry/drone-courier-sim/core"
	"github.com/signalsfoundry/drone-courier-sim/internal/logging"
	"github.com/signalsfoundry/drone-courier-sim/internal/observability"
	"github.com/signalsfoundry/drone-courier-sim/kb"
)

// EnvPrefix is prepended to environment overrides, e.g. DRONESIM_SIM_SEED.
const EnvPrefix = "DRONESIM"

// Config is the full simulator configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Sim     SimConfig     `mapstructure:"sim"`
	Drone   DroneConfig   `mapstructure:"drone"`
	Mover   MoverConfig   `mapstructure:"mover"`
	Package PackageConfig `mapstructure:"package"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	Backend string `mapstructure:"backend"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"serviceName"`
	Exporter    string  `mapstructure:"exporter"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sampleRatio"`
}

// SimConfig holds run settings for the driver.
type SimConfig struct {
	Tick           time.Duration `mapstructure:"tick"`
	Duration       time.Duration `mapstructure:"duration"`
	Mode           string        `mapstructure:"mode"`
	Seed           uint64        `mapstructure:"seed"`
	Scenario       string        `mapstructure:"scenario"`
	Script         string        `mapstructure:"script"`
	StatusInterval time.Duration `mapstructure:"statusInterval"`
}

// DroneConfig mirrors core.DroneParams.
type DroneConfig struct {
	MaxBattery             float64 `mapstructure:"maxBattery"`
	MaxHorizontalSpeed     float64 `mapstructure:"maxHorizontalSpeed"`
	HorizontalAcceleration float64 `mapstructure:"horizontalAcceleration"`
	HorizontalDrag         float64 `mapstructure:"horizontalDrag"`
	MaxVerticalSpeed       float64 `mapstructure:"maxVerticalSpeed"`
	VerticalAcceleration   float64 `mapstructure:"verticalAcceleration"`
	MaxYawSpeed            float64 `mapstructure:"maxYawSpeed"`
	YawAcceleration        float64 `mapstructure:"yawAcceleration"`
	MaxTilt                float64 `mapstructure:"maxTilt"`
	FallSpeed              float64 `mapstructure:"fallSpeed"`
	DisabledDecay          float64 `mapstructure:"disabledDecay"`
	BatteryDrain           float64 `mapstructure:"batteryDrain"`
	VerticalWeight         float64 `mapstructure:"verticalWeight"`
	YawWeight              float64 `mapstructure:"yawWeight"`
	TiltWeight             float64 `mapstructure:"tiltWeight"`
	CollisionPenalty       float64 `mapstructure:"collisionPenalty"`
}

// MoverConfig mirrors core.MoverParams.
type MoverConfig struct {
	MinAltitude       float64 `mapstructure:"minAltitude"`
	MaxAltitude       float64 `mapstructure:"maxAltitude"`
	HorizontalJitter  float64 `mapstructure:"horizontalJitter"`
	VerticalJitter    float64 `mapstructure:"verticalJitter"`
	AltitudeMean      float64 `mapstructure:"altitudeMean"`
	AltitudeStdDev    float64 `mapstructure:"altitudeStdDev"`
	SpinRate          float64 `mapstructure:"spinRate"`
	MaxSampleAttempts int     `mapstructure:"maxSampleAttempts"`
}

// PackageConfig mirrors core.PackageParams.
type PackageConfig struct {
	CarryOffset       []float64 `mapstructure:"carryOffset"`
	Size              float64   `mapstructure:"size"`
	DestinationMeshID int       `mapstructure:"destinationMeshId"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.backend", "slog")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9464")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.serviceName", "drone-courier-sim")
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.sampleRatio", 0.01)

	v.SetDefault("sim.tick", "16ms")
	v.SetDefault("sim.duration", "60s")
	v.SetDefault("sim.mode", "accelerated")
	v.SetDefault("sim.seed", 1)
	v.SetDefault("sim.scenario", "configs/city.yaml")
	v.SetDefault("sim.script", "")
	v.SetDefault("sim.statusInterval", "1s")

	d := core.DefaultDroneParams()
	v.SetDefault("drone.maxBattery", d.MaxBattery)
	v.SetDefault("drone.maxHorizontalSpeed", d.MaxHorizontalSpeed)
	v.SetDefault("drone.horizontalAcceleration", d.HorizontalAcceleration)
	v.SetDefault("drone.horizontalDrag", d.HorizontalDrag)
	v.SetDefault("drone.maxVerticalSpeed", d.MaxVerticalSpeed)
	v.SetDefault("drone.verticalAcceleration", d.VerticalAcceleration)
	v.SetDefault("drone.maxYawSpeed", d.MaxYawSpeed)
	v.SetDefault("drone.yawAcceleration", d.YawAcceleration)
	v.SetDefault("drone.maxTilt", d.MaxTilt)
	v.SetDefault("drone.fallSpeed", d.FallSpeed)
	v.SetDefault("drone.disabledDecay", d.DisabledDecay)
	v.SetDefault("drone.batteryDrain", d.BatteryDrain)
	v.SetDefault("drone.verticalWeight", d.VerticalWeight)
	v.SetDefault("drone.yawWeight", d.YawWeight)
	v.SetDefault("drone.tiltWeight", d.TiltWeight)
	v.SetDefault("drone.collisionPenalty", d.CollisionPenalty)

	m := core.DefaultMoverParams()
	v.SetDefault("mover.minAltitude", m.MinAltitude)
	v.SetDefault("mover.maxAltitude", m.MaxAltitude)
	v.SetDefault("mover.horizontalJitter", m.HorizontalJitter)
	v.SetDefault("mover.verticalJitter", m.VerticalJitter)
	v.SetDefault("mover.altitudeMean", m.AltitudeMean)
	v.SetDefault("mover.altitudeStdDev", m.AltitudeStdDev)
	v.SetDefault("mover.spinRate", m.SpinRate)
	v.SetDefault("mover.maxSampleAttempts", m.MaxSampleAttempts)

	p := core.DefaultPackageParams()
	v.SetDefault("package.carryOffset", []float64{p.CarryOffsetX, p.CarryOffsetY, p.CarryOffsetZ})
	v.SetDefault("package.size", p.Size)
	v.SetDefault("package.destinationMeshId", p.DestinationMeshID)
}

// Load reads configuration from an optional file at path (YAML or JSON,
// by extension), applies DRONESIM_* environment overrides and fills in
// defaults for everything else. An empty path uses defaults and env only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			v.SetConfigType("json")
		default:
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the simulation cannot run with.
func (c *Config) Validate() error {
	if c.Sim.Tick <= 0 {
		return fmt.Errorf("sim.tick must be positive, got %s", c.Sim.Tick)
	}
	if c.Drone.MaxBattery <= 0 {
		return fmt.Errorf("drone.maxBattery must be positive")
	}
	if c.Drone.MaxHorizontalSpeed <= 0 {
		return fmt.Errorf("drone.maxHorizontalSpeed must be positive")
	}
	if c.Mover.MinAltitude >= c.Mover.MaxAltitude {
		return fmt.Errorf("mover.minAltitude must be below mover.maxAltitude")
	}
	if len(c.Package.CarryOffset) != 3 {
		return fmt.Errorf("package.carryOffset needs 3 components, got %d", len(c.Package.CarryOffset))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sampleRatio must be in [0,1]")
	}
	return nil
}

// DroneParams converts the drone section to core tunables. Geometry and
// camera values keep their defaults.
func (c *Config) DroneParams() core.DroneParams {
	p := core.DefaultDroneParams()
	d := c.Drone
	p.MaxBattery = d.MaxBattery
	p.MaxHorizontalSpeed = d.MaxHorizontalSpeed
	p.HorizontalAcceleration = d.HorizontalAcceleration
	p.HorizontalDrag = d.HorizontalDrag
	p.MaxVerticalSpeed = d.MaxVerticalSpeed
	p.VerticalAcceleration = d.VerticalAcceleration
	p.MaxYawSpeed = d.MaxYawSpeed
	p.YawAcceleration = d.YawAcceleration
	p.MaxTilt = d.MaxTilt
	p.FallSpeed = d.FallSpeed
	p.DisabledDecay = d.DisabledDecay
	p.BatteryDrain = d.BatteryDrain
	p.VerticalWeight = d.VerticalWeight
	p.YawWeight = d.YawWeight
	p.TiltWeight = d.TiltWeight
	p.CollisionPenalty = d.CollisionPenalty
	return p
}

// MoverParams converts the mover section to core tunables.
func (c *Config) MoverParams() core.MoverParams {
	m := c.Mover
	return core.MoverParams{
		MinAltitude:       m.MinAltitude,
		MaxAltitude:       m.MaxAltitude,
		HorizontalJitter:  m.HorizontalJitter,
		VerticalJitter:    m.VerticalJitter,
		AltitudeMean:      m.AltitudeMean,
		AltitudeStdDev:    m.AltitudeStdDev,
		SpinRate:          m.SpinRate,
		MaxSampleAttempts: m.MaxSampleAttempts,
	}
}

// PackageParams converts the package section to core tunables.
func (c *Config) PackageParams() core.PackageParams {
	p := c.Package
	return core.PackageParams{
		CarryOffsetX:      p.CarryOffset[0],
		CarryOffsetY:      p.CarryOffset[1],
		CarryOffsetZ:      p.CarryOffset[2],
		Size:              p.Size,
		DestinationMeshID: p.DestinationMeshID,
	}
}

// SceneParams bundles every per-kind tunable for kb.Populate.
func (c *Config) SceneParams() kb.Params {
	return kb.Params{
		Drone:   c.DroneParams(),
		Mover:   c.MoverParams(),
		Package: c.PackageParams(),
	}
}

// LoggingConfig converts the log section.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:   c.Log.Level,
		Format:  c.Log.Format,
		Backend: c.Log.Backend,
	}
}

// TracingSettings converts the tracing section.
func (c *Config) TracingSettings() observability.TracingConfig {
	t := c.Tracing
	return observability.TracingConfig{
		Enabled:     t.Enabled,
		ServiceName: t.ServiceName,
		Exporter:    t.Exporter,
		Endpoint:    t.Endpoint,
		SampleRatio: t.SampleRatio,
	}
}
