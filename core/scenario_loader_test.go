// core/scenario_loader_test.go
package core

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestLoadScenario_ParsesLayout(t *testing.T) {
	data := `
drone:
  position: [1, 6, -1]
  scale: [1.6, 2, 1.4]
package:
  spawns:
    - [2, 0, -2]
    - [-6, 0, 8]
obstacles:
  - name: floor
    min: [-100, -0.1, -100]
    max: [100, 0, 100]
  - { name: tower_1, min: [10, 0, 5], max: [12, 10, 7], mesh: 1, destination: true }
movers:
  count: 3
  radius: 50
  speedMin: 4
  speedMax: 8
  scaleMin: 0.5
  scaleMax: 2
`
	sc, err := LoadScenario(strings.NewReader(data))
	if err != nil {
		t.Fatalf("LoadScenario returned error: %v", err)
	}

	if sc.DronePosition != (mgl64.Vec3{1, 6, -1}) {
		t.Fatalf("DronePosition = %v", sc.DronePosition)
	}
	if len(sc.PackageSpawns) != 2 || sc.PackageSpawns[1] != (mgl64.Vec3{-6, 0, 8}) {
		t.Fatalf("PackageSpawns = %v", sc.PackageSpawns)
	}
	if len(sc.Obstacles) != 2 {
		t.Fatalf("expected 2 obstacles, got %d", len(sc.Obstacles))
	}
	tower := sc.Obstacles[1]
	if tower.Name != "tower_1" || tower.MeshID != 1 || !tower.Destination {
		t.Fatalf("tower spec = %+v", tower)
	}
	if tower.Box.Max != (mgl64.Vec3{12, 10, 7}) {
		t.Fatalf("tower box = %+v", tower.Box)
	}
	if d := sc.Destinations(); len(d) != 1 || d[0].Name != "tower_1" {
		t.Fatalf("Destinations = %+v", d)
	}
	if sc.Movers.Count != 3 || sc.Movers.Radius != 50 || sc.Movers.SpeedMax != 8 {
		t.Fatalf("Movers = %+v", sc.Movers)
	}
}

func TestLoadScenario_Defaults(t *testing.T) {
	sc, err := LoadScenario(strings.NewReader("obstacles: []\n"))
	if err != nil {
		t.Fatalf("LoadScenario returned error: %v", err)
	}
	if sc.DronePosition != (mgl64.Vec3{0, 5, 0}) || sc.DroneScale != (mgl64.Vec3{1, 1, 1}) {
		t.Fatalf("drone defaults = %v / %v", sc.DronePosition, sc.DroneScale)
	}
}

func TestLoadScenario_Errors(t *testing.T) {
	cases := map[string]string{
		"bad yaml":        "obstacles: [",
		"empty name":      "obstacles:\n  - { min: [0,0,0], max: [1,1,1] }\n",
		"duplicate name":  "obstacles:\n  - { name: a, min: [0,0,0], max: [1,1,1] }\n  - { name: a, min: [0,0,0], max: [1,1,1] }\n",
		"short vector":    "obstacles:\n  - { name: a, min: [0,0], max: [1,1,1] }\n",
		"inverted box":    "obstacles:\n  - { name: a, min: [2,0,0], max: [1,1,1] }\n",
		"bad spawn":       "package:\n  spawns:\n    - [1, 2]\n",
		"bad drone":       "drone:\n  position: [1]\n",
		"inverted speeds": "movers: { count: 1, radius: 5, speedMin: 9, speedMax: 1 }\n",
		"radius required": "movers: { count: 1 }\n",
		"negative count":  "movers: { count: -1 }\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadScenario(strings.NewReader(data))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.HasPrefix(err.Error(), "LoadScenario:") {
				t.Fatalf("error %q lacks LoadScenario prefix", err)
			}
		})
	}
}

func TestLoadScenarioFile_City(t *testing.T) {
	sc, err := LoadScenarioFile(filepath.Join("..", "configs", "city.yaml"))
	if err != nil {
		t.Fatalf("LoadScenarioFile: %v", err)
	}
	if len(sc.Obstacles) < 10 {
		t.Fatalf("city has %d obstacles, want a full layout", len(sc.Obstacles))
	}
	if len(sc.Destinations()) == 0 {
		t.Fatalf("city has no destinations")
	}
	if len(sc.PackageSpawns) == 0 {
		t.Fatalf("city has no package spawns")
	}
	if sc.Movers.Count != 20 {
		t.Fatalf("mover count = %d, want 20", sc.Movers.Count)
	}
}

func TestLoadScenarioFile_Missing(t *testing.T) {
	if _, err := LoadScenarioFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
