package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/drone-courier-sim/model"
)

// Drone is the player-controlled vehicle. It flies a first-order control
// model, drains battery while inputs are held, loses a fixed share of its
// battery whenever it starts touching something, and falls to the ground
// once the battery is empty.
type Drone struct {
	Body

	params DroneParams

	velocity      mgl64.Vec3
	verticalSpeed float64
	yawSpeed      float64

	battery   float64
	score     float64
	disabled  bool
	penalties int

	inputs [model.ControlCount]bool

	// contacts holds colliders already penalised and still overlapping,
	// keyed by owner so a handle survives box refreshes.
	contacts map[model.EntityID]*Collider

	cameraOffset float64
	camera       FollowCamera
	headlights   [2]Headlight
}

// NewDrone returns a full-battery drone at pos.
func NewDrone(id model.EntityID, pos mgl64.Vec3, params DroneParams) *Drone {
	d := &Drone{
		Body:     newBody(id, model.KindDrone, pos),
		params:   params,
		battery:  params.MaxBattery,
		contacts: make(map[model.EntityID]*Collider),
		camera: FollowCamera{
			Beta:   params.CameraBeta,
			Radius: params.CameraRadius,
		},
	}
	d.refreshCollider()
	d.updateRig()
	return d
}

// Params returns the tunables the drone was built with.
func (d *Drone) Params() DroneParams { return d.params }

// Press marks a control as held.
func (d *Drone) Press(c model.Control) {
	if c >= 0 && c < model.ControlCount {
		d.inputs[c] = true
	}
}

// Release marks a control as no longer held.
func (d *Drone) Release(c model.Control) {
	if c >= 0 && c < model.ControlCount {
		d.inputs[c] = false
	}
}

// ReleaseAll clears every held control.
func (d *Drone) ReleaseAll() {
	d.inputs = [model.ControlCount]bool{}
}

// Held reports whether a control is currently held.
func (d *Drone) Held(c model.Control) bool {
	if c < 0 || c >= model.ControlCount {
		return false
	}
	return d.inputs[c]
}

// Update advances the drone by dt seconds.
func (d *Drone) Update(dt float64) {
	if d.battery <= 0 {
		d.disabled = true
	}

	if d.disabled {
		d.fall(dt)
	} else {
		d.fly(dt)
		d.drain(dt)
	}

	d.refreshCollider()
	d.pruneContacts()
	d.updateRig()
}

func (d *Drone) fly(dt float64) {
	p := d.params
	in := &d.inputs

	targetVertical := 0.0
	if in[model.ControlAscend] {
		targetVertical += p.MaxVerticalSpeed
	}
	if in[model.ControlDescend] {
		targetVertical -= p.MaxVerticalSpeed
	}
	d.verticalSpeed = approach(d.verticalSpeed, targetVertical, p.VerticalAcceleration, dt)

	yawInput := 0.0
	if in[model.ControlYawLeft] {
		yawInput++
	}
	if in[model.ControlYawRight] {
		yawInput--
	}
	d.yawSpeed = approach(d.yawSpeed, yawInput*p.MaxYawSpeed, p.YawAcceleration, dt)
	d.yaw += d.yawSpeed * dt

	pitchInput, rollInput := 0.0, 0.0
	if in[model.ControlPitchForward] {
		pitchInput--
	}
	if in[model.ControlPitchBack] {
		pitchInput++
	}
	if in[model.ControlRollLeft] {
		rollInput--
	}
	if in[model.ControlRollRight] {
		rollInput++
	}

	sin, cos := yawBasis(d.yaw)
	accelX := sin*pitchInput + cos*rollInput
	accelZ := cos*pitchInput - sin*rollInput

	vx := d.velocity.X() + accelX*p.HorizontalAcceleration*dt
	vz := d.velocity.Z() + accelZ*p.HorizontalAcceleration*dt
	if accelX == 0 {
		vx -= vx * p.HorizontalDrag * dt
	}
	if accelZ == 0 {
		vz -= vz * p.HorizontalDrag * dt
	}

	d.velocity = clampHorizontal(mgl64.Vec3{vx, d.verticalSpeed, vz}, p.MaxHorizontalSpeed)
	d.position = d.position.Add(d.velocity.Mul(dt))

	// Cosmetic tilt from velocity in the drone's own frame.
	localX := cos*d.velocity.X() - sin*d.velocity.Z()
	localZ := sin*d.velocity.X() + cos*d.velocity.Z()
	d.pitch = localZ / p.MaxHorizontalSpeed * p.MaxTilt
	d.roll = -localX / p.MaxHorizontalSpeed * p.MaxTilt
}

// throttle is the weighted share of input groups currently held.
func (d *Drone) throttle() float64 {
	p := d.params
	in := &d.inputs
	t := 0.0
	if in[model.ControlAscend] || in[model.ControlDescend] {
		t += p.VerticalWeight
	}
	if in[model.ControlYawLeft] || in[model.ControlYawRight] {
		t += p.YawWeight
	}
	if in[model.ControlPitchForward] || in[model.ControlPitchBack] ||
		in[model.ControlRollLeft] || in[model.ControlRollRight] {
		t += p.TiltWeight
	}
	return t
}

func (d *Drone) drain(dt float64) {
	t := d.throttle()
	if t <= 0 {
		return
	}
	d.SetBattery(d.battery - d.params.BatteryDrain*t*dt)
}

func (d *Drone) fall(dt float64) {
	p := d.params

	d.verticalSpeed -= p.FallSpeed * dt
	// Horizontal velocity decays without moving the drone; it drops straight
	// down.
	d.velocity = mgl64.Vec3{
		d.velocity.X() * p.DisabledDecay,
		d.verticalSpeed,
		d.velocity.Z() * p.DisabledDecay,
	}
	d.position[1] += d.verticalSpeed * dt

	// The collider's lower face sits at pos.y.
	if d.position.Y() <= GroundLevel {
		d.position[1] = GroundLevel
		d.verticalSpeed = 0
		d.velocity[1] = 0
	}

	d.pitch, d.roll = 0, 0
	d.yawSpeed = 0
}

func (d *Drone) refreshCollider() {
	p := d.params
	sin, cos := yawBasis(d.yaw)
	sin, cos = math.Abs(sin), math.Abs(cos)

	hx := p.HalfWidth*cos + p.HalfDepth*sin
	hz := p.HalfWidth*sin + p.HalfDepth*cos

	d.collider.SetBox(AABB{
		Min: mgl64.Vec3{d.position.X() - hx, d.position.Y(), d.position.Z() - hz},
		Max: mgl64.Vec3{d.position.X() + hx, d.position.Y() + p.BodyHeight, d.position.Z() + hz},
	})
}

// pruneContacts forgets colliders the drone no longer overlaps so that the
// next contact with them is penalised again.
func (d *Drone) pruneContacts() {
	box := d.collider.Box()
	for id, c := range d.contacts {
		if !box.Intersects(c.Box()) {
			delete(d.contacts, id)
		}
	}
}

// OnCollision resolves overlap with obstacles and applies the contact
// penalty once per entry into overlap. Movers are ignored and packages are
// never penalised.
func (d *Drone) OnCollision(other *Collider) {
	if other.Kind() == model.KindAutoMover {
		return
	}

	d.resolve(other.Box())

	if other.Kind() == model.KindPackage {
		return
	}
	if _, seen := d.contacts[other.Owner()]; seen {
		return
	}
	d.contacts[other.Owner()] = other
	d.penalties++
	d.SetBattery(d.battery - d.params.MaxBattery*d.params.CollisionPenalty)
}

// resolve pushes the drone out along the axis of least overlap, against its
// velocity on that axis, and stops motion on that axis.
func (d *Drone) resolve(other AABB) {
	o := d.collider.Box().Overlap(other)

	axis := 2
	switch {
	case o.X() <= o.Y() && o.X() <= o.Z():
		axis = 0
	case o.Y() <= o.Z():
		axis = 1
	}

	switch v := d.velocity[axis]; {
	case v > 0:
		d.position[axis] -= o[axis]
	case v < 0:
		d.position[axis] += o[axis]
	}
	d.velocity[axis] = 0
	if axis == 1 {
		d.verticalSpeed = 0
	}
}

// Velocity returns the current world-space velocity.
func (d *Drone) Velocity() mgl64.Vec3 { return d.velocity }

// SetVelocity overrides the current velocity, e.g. when respawning.
func (d *Drone) SetVelocity(v mgl64.Vec3) {
	d.velocity = v
	d.verticalSpeed = v.Y()
}

// VerticalSpeed returns the vertical speed state.
func (d *Drone) VerticalSpeed() float64 { return d.verticalSpeed }

// YawSpeed returns the yaw rate in degrees per second.
func (d *Drone) YawSpeed() float64 { return d.yawSpeed }

// Battery returns the battery level in [0, MaxBattery].
func (d *Drone) Battery() float64 { return d.battery }

// MaxBattery returns the battery capacity.
func (d *Drone) MaxBattery() float64 { return d.params.MaxBattery }

// SetBattery sets the battery level, clamped into [0, MaxBattery].
func (d *Drone) SetBattery(v float64) {
	d.battery = mgl64.Clamp(v, 0, d.params.MaxBattery)
}

// Score returns the accumulated score.
func (d *Drone) Score() float64 { return d.score }

// AddScore adds points to the score.
func (d *Drone) AddScore(v float64) { d.score += v }

// SetScore overwrites the score.
func (d *Drone) SetScore(v float64) { d.score = v }

// Disabled reports whether the drone is grounded for lack of battery or by
// an explicit Disable.
func (d *Drone) Disabled() bool { return d.disabled }

// Enable clears the disabled flag. A drone with an empty battery disables
// itself again on the next update.
func (d *Drone) Enable() { d.disabled = false }

// Disable grounds the drone until Enable is called.
func (d *Drone) Disable() { d.disabled = true }

// Penalties returns how many contact penalties have been applied.
func (d *Drone) Penalties() int { return d.penalties }

// Tracking reports whether the drone is currently overlapping the given
// collider owner after having been penalised for it.
func (d *Drone) Tracking(id model.EntityID) bool {
	_, ok := d.contacts[id]
	return ok
}

// ForgetContact drops id from the penalised contacts, for colliders that
// left the world while still overlapping the drone.
func (d *Drone) ForgetContact(id model.EntityID) {
	delete(d.contacts, id)
}

// Telemetry returns the HUD snapshot.
func (d *Drone) Telemetry() model.DroneTelemetry {
	return model.DroneTelemetry{
		ID:        d.id,
		Battery:   d.battery,
		Score:     d.score,
		Disabled:  d.disabled,
		Position:  ModelVec(d.position),
		Speed:     HorizontalLen(d.velocity),
		Penalties: d.penalties,
	}
}
