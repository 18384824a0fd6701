package model

// MissionStatus is the state of a package delivery mission.
type MissionStatus int

const (
	MissionIdle MissionStatus = iota
	MissionCarried
	MissionDelivered
)

func (s MissionStatus) String() string {
	switch s {
	case MissionIdle:
		return "idle"
	case MissionCarried:
		return "carried"
	case MissionDelivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// DroneTelemetry is the HUD-facing snapshot of a drone.
type DroneTelemetry struct {
	ID        EntityID
	Battery   float64 // 0..MaxBattery
	Score     float64
	Disabled  bool
	Position  Vec3
	Speed     float64 // horizontal, units/s
	Penalties int     // collision penalties applied so far
}
