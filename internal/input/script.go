package input

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/drone-courier-sim/model"
)

// Action is what a script event does to a control.
type Action int

const (
	ActionPress Action = iota
	ActionRelease
	ActionReleaseAll
)

func (a Action) String() string {
	switch a {
	case ActionPress:
		return "press"
	case ActionRelease:
		return "release"
	case ActionReleaseAll:
		return "release_all"
	default:
		return "unknown"
	}
}

// Event is one scripted input change at a point in simulation time.
type Event struct {
	At      time.Duration
	Action  Action
	Control model.Control
}

// Script is a time-ordered list of input events.
type Script struct {
	Name   string
	Events []Event
}

type scriptFile struct {
	Name   string      `yaml:"name"`
	Events []eventFile `yaml:"events"`
}

type eventFile struct {
	At      string   `yaml:"at"`
	Press   []string `yaml:"press"`
	Release []string `yaml:"release"`
	Clear   bool     `yaml:"releaseAll"`
}

// LoadScript decodes a YAML flight script. Each entry names a sim time
// offset ("1.5s") and the keys or controls to press and release at it:
//
//	events:
//	  - at: 0s
//	    press: [w]
//	  - at: 2s
//	    release: [w]
//	    press: [up]
//
// Events keep file order within the same instant; releases apply before
// presses.
func LoadScript(r io.Reader, keys Keymap) (*Script, error) {
	if keys == nil {
		keys = DefaultKeymap()
	}
	var f scriptFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("LoadScript: decode failed: %w", err)
	}

	s := &Script{Name: f.Name}
	for i, ef := range f.Events {
		at, err := time.ParseDuration(ef.At)
		if err != nil {
			return nil, fmt.Errorf("LoadScript: event %d: bad time %q: %w", i, ef.At, err)
		}
		if at < 0 {
			return nil, fmt.Errorf("LoadScript: event %d: negative time %s", i, at)
		}
		if ef.Clear {
			s.Events = append(s.Events, Event{At: at, Action: ActionReleaseAll})
		}
		for _, name := range ef.Release {
			c, err := keys.Resolve(name)
			if err != nil {
				return nil, fmt.Errorf("LoadScript: event %d: %w", i, err)
			}
			s.Events = append(s.Events, Event{At: at, Action: ActionRelease, Control: c})
		}
		for _, name := range ef.Press {
			c, err := keys.Resolve(name)
			if err != nil {
				return nil, fmt.Errorf("LoadScript: event %d: %w", i, err)
			}
			s.Events = append(s.Events, Event{At: at, Action: ActionPress, Control: c})
		}
	}
	sort.SliceStable(s.Events, func(i, j int) bool { return s.Events[i].At < s.Events[j].At })
	return s, nil
}

// LoadScriptFile opens path and decodes it with LoadScript.
func LoadScriptFile(path string, keys Keymap) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadScriptFile: %w", err)
	}
	defer f.Close()
	return LoadScript(f, keys)
}

// Duration is the time of the last event.
func (s *Script) Duration() time.Duration {
	if s == nil || len(s.Events) == 0 {
		return 0
	}
	return s.Events[len(s.Events)-1].At
}

// Player applies a script to a target as simulation time advances.
type Player struct {
	script *Script
	target Controllable
	next   int
}

func NewPlayer(script *Script, target Controllable) *Player {
	return &Player{script: script, target: target}
}

// Advance applies every event due at or before elapsed and returns how
// many were applied.
func (p *Player) Advance(elapsed time.Duration) int {
	if p.script == nil {
		return 0
	}
	applied := 0
	for p.next < len(p.script.Events) {
		ev := p.script.Events[p.next]
		if ev.At > elapsed {
			break
		}
		switch ev.Action {
		case ActionPress:
			p.target.Press(ev.Control)
		case ActionRelease:
			p.target.Release(ev.Control)
		case ActionReleaseAll:
			p.target.ReleaseAll()
		}
		p.next++
		applied++
	}
	return applied
}

// Done reports whether every event has been applied.
func (p *Player) Done() bool {
	return p.script == nil || p.next >= len(p.script.Events)
}
