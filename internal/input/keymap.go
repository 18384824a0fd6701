// Package input maps keys to drone controls and replays scripted flights.
package input

import (
	"fmt"
	"strings"

	"github.com/signalsfoundry/drone-courier-sim/model"
)

// Controllable receives level-triggered control input. *core.Drone
// satisfies it.
type Controllable interface {
	Press(model.Control)
	Release(model.Control)
	ReleaseAll()
}

// Keymap binds key names to controls.
type Keymap map[string]model.Control

// DefaultKeymap is the stock layout: w/s climb and sink, a/d yaw, arrow
// keys tilt.
func DefaultKeymap() Keymap {
	return Keymap{
		"w":     model.ControlAscend,
		"s":     model.ControlDescend,
		"a":     model.ControlYawLeft,
		"d":     model.ControlYawRight,
		"up":    model.ControlPitchForward,
		"down":  model.ControlPitchBack,
		"left":  model.ControlRollLeft,
		"right": model.ControlRollRight,
	}
}

// Resolve maps a key or a control name to a control. Key bindings win
// over control names.
func (k Keymap) Resolve(name string) (model.Control, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if c, ok := k[name]; ok {
		return c, nil
	}
	if c, ok := model.ParseControl(name); ok {
		return c, nil
	}
	return 0, fmt.Errorf("unknown key or control %q", name)
}

// KeyDown presses the control bound to key. Unbound keys are ignored.
func (k Keymap) KeyDown(target Controllable, key string) bool {
	c, ok := k[strings.ToLower(key)]
	if ok {
		target.Press(c)
	}
	return ok
}

// KeyUp releases the control bound to key. Unbound keys are ignored.
func (k Keymap) KeyUp(target Controllable, key string) bool {
	c, ok := k[strings.ToLower(key)]
	if ok {
		target.Release(c)
	}
	return ok
}
