package kb

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/drone-courier-sim/core"
	"github.com/signalsfoundry/drone-courier-sim/model"
)

// Params bundles the per-kind tunables used when spawning entities.
type Params struct {
	Drone   core.DroneParams
	Mover   core.MoverParams
	Package core.PackageParams
}

// DefaultParams returns the stock tunables.
func DefaultParams() Params {
	return Params{
		Drone:   core.DefaultDroneParams(),
		Mover:   core.DefaultMoverParams(),
		Package: core.DefaultPackageParams(),
	}
}

// Layout is what Populate created, for the driver to hold on to.
type Layout struct {
	Drone         *core.Drone
	Package       *core.Package
	Obstacles     []*core.Obstacle
	Destinations  []*core.Obstacle
	Movers        []*core.AutoMover
	PackageSpawns []mgl64.Vec3
}

// Populate fills an empty scene from a scenario: static obstacles first,
// then the drone, the package and the movers. rng drives mover placement
// and wandering.
func Populate(s *Scene, sc *core.Scenario, p Params, rng core.RandSource) (*Layout, error) {
	if sc == nil {
		return nil, fmt.Errorf("Populate: scenario is nil")
	}
	layout := &Layout{PackageSpawns: append([]mgl64.Vec3(nil), sc.PackageSpawns...)}

	for _, spec := range sc.Obstacles {
		o := core.NewObstacle(s.NextID(), spec.Name, spec.Box)
		o.SetAppearance(appearanceFor(spec.MeshID))
		if err := s.AddNamed(spec.Name, o); err != nil {
			return nil, fmt.Errorf("Populate: obstacle %q: %w", spec.Name, err)
		}
		layout.Obstacles = append(layout.Obstacles, o)
		if spec.Destination {
			layout.Destinations = append(layout.Destinations, o)
		}
	}

	drone := core.NewDrone(s.NextID(), sc.DronePosition, p.Drone)
	drone.SetScale(sc.DroneScale)
	if err := s.AddNamed("drone", drone); err != nil {
		return nil, fmt.Errorf("Populate: drone: %w", err)
	}
	layout.Drone = drone

	if len(sc.PackageSpawns) > 0 {
		pkg := core.NewPackage(s.NextID(), sc.PackageSpawns[0], p.Package, s)
		if err := s.AddNamed("package", pkg); err != nil {
			return nil, fmt.Errorf("Populate: package: %w", err)
		}
		layout.Package = pkg
	}

	movers, err := SpawnMovers(s, sc.Movers, p.Mover, rng)
	if err != nil {
		return nil, fmt.Errorf("Populate: %w", err)
	}
	layout.Movers = movers

	return layout, nil
}

// SpawnMovers scatters spec.Count movers over the square of side
// 2*spec.Radius at altitude 5, each with a random speed and per-axis scale.
func SpawnMovers(s *Scene, spec core.MoverSpawn, p core.MoverParams, rng core.RandSource) ([]*core.AutoMover, error) {
	movers := make([]*core.AutoMover, 0, spec.Count)
	for i := 0; i < spec.Count; i++ {
		pos := mgl64.Vec3{
			uniform(rng, -spec.Radius, spec.Radius),
			5,
			uniform(rng, -spec.Radius, spec.Radius),
		}
		scale := mgl64.Vec3{
			uniform(rng, spec.ScaleMin, spec.ScaleMax),
			uniform(rng, spec.ScaleMin, spec.ScaleMax),
			uniform(rng, spec.ScaleMin, spec.ScaleMax),
		}
		speed := uniform(rng, spec.SpeedMin, spec.SpeedMax)

		m := core.NewAutoMover(s.NextID(), pos, scale, spec.Radius, speed, p, rng)
		if err := s.Add(m); err != nil {
			return nil, fmt.Errorf("mover %d: %w", i, err)
		}
		movers = append(movers, m)
	}
	return movers, nil
}

func uniform(rng core.RandSource, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func appearanceFor(meshID int) model.Appearance {
	if meshID == 0 {
		return model.Appearance{}
	}
	return model.Appearance{MeshIDs: []int{meshID}, TextureMode: 1}
}
