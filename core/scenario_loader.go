// core/scenario_loader.go
package core

import (
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Scenario is a world layout: the drone spawn, package spawn points,
// static obstacles and a block of wandering movers.
type Scenario struct {
	DronePosition mgl64.Vec3
	DroneScale    mgl64.Vec3
	PackageSpawns []mgl64.Vec3
	Obstacles     []ObstacleSpec
	Movers        MoverSpawn
}

// ObstacleSpec describes one static box. Destination marks buildings that
// may be chosen as delivery targets.
type ObstacleSpec struct {
	Name        string
	Box         AABB
	MeshID      int
	Destination bool
}

// MoverSpawn describes how many movers to scatter and their ranges.
type MoverSpawn struct {
	Count    int
	Radius   float64
	SpeedMin float64
	SpeedMax float64
	ScaleMin float64
	ScaleMax float64
}

// Destinations returns the obstacles that may be delivery targets.
func (s *Scenario) Destinations() []ObstacleSpec {
	var out []ObstacleSpec
	for _, o := range s.Obstacles {
		if o.Destination {
			out = append(out, o)
		}
	}
	return out
}

// internal YAML shapes; JSON documents decode through the same path.
type scenarioYAML struct {
	Drone struct {
		Position []float64 `yaml:"position"`
		Scale    []float64 `yaml:"scale"`
	} `yaml:"drone"`
	Package struct {
		Spawns [][]float64 `yaml:"spawns"`
	} `yaml:"package"`
	Obstacles []obstacleYAML `yaml:"obstacles"`
	Movers    moverYAML      `yaml:"movers"`
}

type obstacleYAML struct {
	Name        string    `yaml:"name"`
	Min         []float64 `yaml:"min"`
	Max         []float64 `yaml:"max"`
	Mesh        int       `yaml:"mesh"`
	Destination bool      `yaml:"destination"`
}

type moverYAML struct {
	Count    int     `yaml:"count"`
	Radius   float64 `yaml:"radius"`
	SpeedMin float64 `yaml:"speedMin"`
	SpeedMax float64 `yaml:"speedMax"`
	ScaleMin float64 `yaml:"scaleMin"`
	ScaleMax float64 `yaml:"scaleMax"`
}

// LoadScenario decodes a YAML (or JSON) scenario from r. Missing drone
// fields default to a spawn at (0,5,0) with unit scale.
func LoadScenario(r io.Reader) (*Scenario, error) {
	var payload scenarioYAML
	if err := yaml.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadScenario: decode failed: %w", err)
	}

	sc := &Scenario{
		DronePosition: mgl64.Vec3{0, 5, 0},
		DroneScale:    mgl64.Vec3{1, 1, 1},
		Movers: MoverSpawn{
			Count:    payload.Movers.Count,
			Radius:   payload.Movers.Radius,
			SpeedMin: payload.Movers.SpeedMin,
			SpeedMax: payload.Movers.SpeedMax,
			ScaleMin: payload.Movers.ScaleMin,
			ScaleMax: payload.Movers.ScaleMax,
		},
	}

	var err error
	if payload.Drone.Position != nil {
		if sc.DronePosition, err = vec3From(payload.Drone.Position); err != nil {
			return nil, fmt.Errorf("LoadScenario: drone position: %w", err)
		}
	}
	if payload.Drone.Scale != nil {
		if sc.DroneScale, err = vec3From(payload.Drone.Scale); err != nil {
			return nil, fmt.Errorf("LoadScenario: drone scale: %w", err)
		}
	}

	for i, raw := range payload.Package.Spawns {
		p, err := vec3From(raw)
		if err != nil {
			return nil, fmt.Errorf("LoadScenario: package spawn %d: %w", i, err)
		}
		sc.PackageSpawns = append(sc.PackageSpawns, p)
	}

	seen := make(map[string]bool, len(payload.Obstacles))
	for i, o := range payload.Obstacles {
		if o.Name == "" {
			return nil, fmt.Errorf("LoadScenario: obstacle %d has empty name", i)
		}
		if seen[o.Name] {
			return nil, fmt.Errorf("LoadScenario: duplicate obstacle %q", o.Name)
		}
		seen[o.Name] = true

		lo, err := vec3From(o.Min)
		if err != nil {
			return nil, fmt.Errorf("LoadScenario: obstacle %q min: %w", o.Name, err)
		}
		hi, err := vec3From(o.Max)
		if err != nil {
			return nil, fmt.Errorf("LoadScenario: obstacle %q max: %w", o.Name, err)
		}
		for axis := 0; axis < 3; axis++ {
			if lo[axis] > hi[axis] {
				return nil, fmt.Errorf("LoadScenario: obstacle %q has min > max on axis %d", o.Name, axis)
			}
		}
		sc.Obstacles = append(sc.Obstacles, ObstacleSpec{
			Name:        o.Name,
			Box:         AABB{Min: lo, Max: hi},
			MeshID:      o.Mesh,
			Destination: o.Destination,
		})
	}

	m := sc.Movers
	if m.Count < 0 || m.SpeedMin > m.SpeedMax || m.ScaleMin > m.ScaleMax {
		return nil, fmt.Errorf("LoadScenario: invalid mover block %+v", m)
	}
	if m.Count > 0 && m.Radius <= 0 {
		return nil, fmt.Errorf("LoadScenario: movers need a positive radius")
	}

	return sc, nil
}

// LoadScenarioFile opens path and decodes it with LoadScenario.
func LoadScenarioFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario %q: %w", path, err)
	}
	defer f.Close()
	return LoadScenario(f)
}

func vec3From(v []float64) (mgl64.Vec3, error) {
	if len(v) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("want 3 components, got %d", len(v))
	}
	return mgl64.Vec3{v[0], v[1], v[2]}, nil
}
