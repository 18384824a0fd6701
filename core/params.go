package core

// DroneParams holds the flight, battery and collision tunables for a Drone.
// Speeds are units/s, angular values are degrees, and rates are 1/s.
type DroneParams struct {
	MaxBattery             float64
	MaxHorizontalSpeed     float64
	HorizontalAcceleration float64
	HorizontalDrag         float64
	MaxVerticalSpeed       float64
	VerticalAcceleration   float64
	MaxYawSpeed            float64
	YawAcceleration        float64
	MaxTilt                float64
	FallSpeed              float64
	DisabledDecay          float64 // per-tick horizontal velocity factor while disabled

	BatteryDrain   float64 // battery units/s at full throttle
	VerticalWeight float64 // throttle share of ascend/descend
	YawWeight      float64 // throttle share of yaw input
	TiltWeight     float64 // throttle share of pitch/roll input

	CollisionPenalty float64 // fraction of MaxBattery lost per new contact

	HalfWidth  float64 // X half extent at yaw 0
	HalfDepth  float64 // Z half extent at yaw 0
	BodyHeight float64 // box spans [pos.y, pos.y+BodyHeight]

	CameraRadius float64
	CameraBeta   float64 // elevation, degrees
}

// DefaultDroneParams returns the stock flight model.
func DefaultDroneParams() DroneParams {
	return DroneParams{
		MaxBattery:             100,
		MaxHorizontalSpeed:     10,
		HorizontalAcceleration: 8,
		HorizontalDrag:         2,
		MaxVerticalSpeed:       5,
		VerticalAcceleration:   3,
		MaxYawSpeed:            90,
		YawAcceleration:        4,
		MaxTilt:                20,
		FallSpeed:              9.8,
		DisabledDecay:          0.98,

		BatteryDrain:   2,
		VerticalWeight: 0.3,
		YawWeight:      0.2,
		TiltWeight:     0.5,

		CollisionPenalty: 0.2,

		HalfWidth:  1.4,
		HalfDepth:  1.8,
		BodyHeight: 1.2,

		CameraRadius: 15,
		CameraBeta:   20,
	}
}

// MoverParams tunes AutoMover wandering.
type MoverParams struct {
	MinAltitude       float64
	MaxAltitude       float64
	HorizontalJitter  float64 // direction jitter on X/Z, uniform in [-j, j]
	VerticalJitter    float64 // direction jitter on Y
	AltitudeMean      float64
	AltitudeStdDev    float64
	SpinRate          float64 // degrees/s, cosmetic
	MaxSampleAttempts int
}

// DefaultMoverParams returns the stock wander band.
func DefaultMoverParams() MoverParams {
	return MoverParams{
		MinAltitude:       0.1,
		MaxAltitude:       20,
		HorizontalJitter:  10,
		VerticalJitter:    5,
		AltitudeMean:      5,
		AltitudeStdDev:    5,
		SpinRate:          1000,
		MaxSampleAttempts: 16,
	}
}

// PackageParams tunes package attachment and destination marking.
type PackageParams struct {
	CarryOffsetX      float64
	CarryOffsetY      float64
	CarryOffsetZ      float64
	Size              float64
	DestinationMeshID int
}

// DefaultPackageParams hangs the package just below and behind the carrier.
func DefaultPackageParams() PackageParams {
	return PackageParams{
		CarryOffsetX:      -0.5,
		CarryOffsetY:      -2,
		CarryOffsetZ:      -0.5,
		Size:              1,
		DestinationMeshID: 9,
	}
}
