package model

// Control is one of the eight discrete drone inputs. Controls are
// level-triggered: they act for as long as they are held.
type Control int

const (
	ControlAscend Control = iota
	ControlDescend
	ControlYawLeft
	ControlYawRight
	ControlPitchForward
	ControlPitchBack
	ControlRollLeft
	ControlRollRight

	ControlCount
)

var controlNames = [...]string{
	ControlAscend:       "ascend",
	ControlDescend:      "descend",
	ControlYawLeft:      "yaw_left",
	ControlYawRight:     "yaw_right",
	ControlPitchForward: "pitch_forward",
	ControlPitchBack:    "pitch_back",
	ControlRollLeft:     "roll_left",
	ControlRollRight:    "roll_right",
}

func (c Control) String() string {
	if c < 0 || c >= ControlCount {
		return "unknown"
	}
	return controlNames[c]
}

// ParseControl maps a control name back to its value.
func ParseControl(name string) (Control, bool) {
	for i, n := range controlNames {
		if n == name {
			return Control(i), true
		}
	}
	return 0, false
}
