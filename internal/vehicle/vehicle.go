package vehicle

import (
	"fmt"
	"math"

	"raycar/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
)

// Chassis frame forward axis.
var forwardLocal = rl.Vector3{Z: 1}

const (
	// Below this projection of the contact normal on the suspension axis the
	// ground is treated as a wall and suspension damping is ignored.
	minContactDot float32 = -0.1
	maxClip       float32 = 10
	airborneDecay float32 = 0.99

	metersPerSecToKmh = 3.6
)

type Option func(*RaycastVehicle)

func WithLogger(logger zerolog.Logger) Option {
	return func(v *RaycastVehicle) { v.logger = logger }
}

func WithName(name string) Option {
	return func(v *RaycastVehicle) { v.Name = name }
}

// RaycastVehicle drives a chassis body with suspension rays instead of
// wheel bodies. Once attached it steps after every world step.
type RaycastVehicle struct {
	Name string

	chassis     *physics.Body
	world       *physics.World
	ownsChassis bool

	wheels   []WheelConfig
	states   []WheelState
	controls ControlState
	scratch  []wheelStep

	logger zerolog.Logger
}

// wheelStep is the uncommitted result of one wheel for the current step.
type wheelStep struct {
	state       WheelState
	orientation rl.Quaternion // chassis, at cast time
	connection  rl.Vector3
	direction   rl.Vector3
	axle        rl.Vector3 // steered, world space
	velocity    rl.Vector3 // chassis relative to ground at the contact
	forward     rl.Vector3
	lateral     rl.Vector3
	vLong       float32
}

func New(chassis *physics.Body, opts ...Option) (*RaycastVehicle, error) {
	if chassis == nil {
		return nil, &ConfigError{Field: "chassis", Reason: "must not be nil"}
	}
	if chassis.Type != physics.Dynamic || !(chassis.Mass > 0) {
		return nil, &ConfigError{Field: "chassis", Reason: "must be a dynamic body with positive mass"}
	}
	v := &RaycastVehicle{
		Name:    chassis.Name,
		chassis: chassis,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// AddWheel validates cfg and returns the new wheel's index.
func (v *RaycastVehicle) AddWheel(cfg WheelConfig) (int, error) {
	if v.world != nil {
		return -1, ErrAlreadyAttached
	}
	if err := cfg.Validate(); err != nil {
		return -1, err
	}

	v.wheels = append(v.wheels, cfg)
	v.states = append(v.states, restingState(cfg))
	v.controls = append(v.controls, WheelControl{})
	index := len(v.wheels) - 1
	v.states[index].WorldTransform = v.hubTransform(index)

	v.logger.Debug().
		Str("vehicle", v.Name).
		Int("wheel", index).
		Bool("front", cfg.IsFrontWheel).
		Float32("radius", cfg.Radius).
		Msg("wheel added")
	return index, nil
}

// AttachToWorld adds the chassis to w if needed and registers the vehicle
// to run after each world step.
func (v *RaycastVehicle) AttachToWorld(w *physics.World) error {
	if w == nil {
		return &ConfigError{Field: "world", Reason: "must not be nil"}
	}
	if v.world != nil {
		return ErrAlreadyAttached
	}
	switch v.chassis.World() {
	case nil:
		if err := w.AddBody(v.chassis); err != nil {
			return fmt.Errorf("vehicle: adding chassis: %w", err)
		}
		v.ownsChassis = true
	case w:
	default:
		return &ConfigError{Field: "chassis", Reason: "belongs to another world"}
	}

	w.AddStepHook(v)
	v.world = w
	v.logger.Debug().Str("vehicle", v.Name).Int("wheels", len(v.wheels)).Msg("attached to world")
	return nil
}

// DetachFromWorld stops stepping the vehicle. A chassis added by
// AttachToWorld is removed again.
func (v *RaycastVehicle) DetachFromWorld() error {
	if v.world == nil {
		return ErrNotAttached
	}
	v.world.RemoveStepHook(v)
	if v.ownsChassis {
		v.world.RemoveBody(v.chassis)
		v.ownsChassis = false
	}
	v.world = nil
	v.logger.Debug().Str("vehicle", v.Name).Msg("detached from world")
	return nil
}

func (v *RaycastVehicle) Chassis() *physics.Body { return v.chassis }

func (v *RaycastVehicle) NumWheels() int { return len(v.wheels) }

func (v *RaycastVehicle) WheelConfig(wheel int) (WheelConfig, error) {
	if err := v.checkIndex(wheel); err != nil {
		return WheelConfig{}, err
	}
	return v.wheels[wheel], nil
}

func (v *RaycastVehicle) WheelState(wheel int) (WheelState, error) {
	if err := v.checkIndex(wheel); err != nil {
		return WheelState{}, err
	}
	return v.states[wheel], nil
}

// WheelStates returns a copy of every wheel's committed state.
func (v *RaycastVehicle) WheelStates() []WheelState {
	return append([]WheelState(nil), v.states...)
}

func (v *RaycastVehicle) WheelsInContact() int {
	n := 0
	for i := range v.states {
		if v.states[i].InContact {
			n++
		}
	}
	return n
}

// CurrentSpeed is the chassis speed along its forward axis in km/h,
// negative when reversing.
func (v *RaycastVehicle) CurrentSpeed() float32 {
	forward := v.chassis.VectorToWorld(forwardLocal)
	return rl.Vector3DotProduct(v.chassis.Velocity, forward) * metersPerSecToKmh
}

// Step runs the suspension and tire model for every wheel. All wheels are
// evaluated before any force is applied, so a degenerate wheel leaves the
// chassis and the previous wheel states untouched.
func (v *RaycastVehicle) Step(dt float32) error {
	if v.world == nil {
		return ErrNotAttached
	}
	if !(dt > 0) || !physics.IsFinite(dt) {
		return fmt.Errorf("vehicle: invalid time step %v", dt)
	}

	n := len(v.wheels)
	if cap(v.scratch) < n {
		v.scratch = make([]wheelStep, n)
	}
	steps := v.scratch[:n]

	inContact := 0
	for i := range steps {
		steps[i] = v.castWheel(i)
		if steps[i].state.InContact {
			inContact++
		}
	}

	mass := v.chassis.Mass
	for i := range steps {
		computeForces(&steps[i], v.wheels[i], mass, inContact, dt)
	}

	for i := range steps {
		if quantity := steps[i].nonFinite(); quantity != "" {
			return &DegenerateStepError{Wheel: i, Quantity: quantity}
		}
	}

	for i := range steps {
		v.applyForces(&steps[i], v.wheels[i])
	}
	for i := range steps {
		v.commit(i, &steps[i], dt)
	}
	return nil
}

func (v *RaycastVehicle) castWheel(i int) wheelStep {
	cfg := v.wheels[i]
	ctrl := v.controls[i]
	prev := v.states[i]
	chassis := v.chassis

	ws := wheelStep{
		state: WheelState{
			SuspensionLength: cfg.SuspensionRestLength,
			SkidInfo:         1,
			EngineForce:      ctrl.EngineForce,
			Brake:            ctrl.Brake,
			Steering:         ctrl.Steering,
			Rotation:         prev.Rotation,
			DeltaRotation:    prev.DeltaRotation,
		},
		orientation: chassis.Rotation,
		connection:  chassis.PointToWorld(cfg.ChassisConnectionPointLocal),
		direction:   chassis.VectorToWorld(cfg.DirectionLocal),
		axle:        chassis.VectorToWorld(steeredAxle(cfg, ctrl.Steering)),
	}

	rayLength := cfg.SuspensionRestLength + cfg.Radius
	hit, ok := v.world.RaycastClosest(ws.connection, ws.direction, rayLength, physics.RayOptions{Skip: chassis})
	if !ok {
		return ws
	}

	st := &ws.state
	st.InContact = true
	st.ContactPoint = hit.Point
	st.ContactNormal = hit.Normal
	st.GroundDistance = hit.Distance
	st.GroundBody = hit.Body

	length := hit.Distance - cfg.Radius
	minLength := cfg.SuspensionRestLength - cfg.MaxSuspensionTravel
	st.SuspensionLength = clamp(length, minLength, cfg.SuspensionRestLength)

	ws.velocity = chassis.VelocityAt(hit.Point)
	if hit.Body != nil {
		ws.velocity = rl.Vector3Subtract(ws.velocity, hit.Body.VelocityAt(hit.Point))
	}

	denominator := rl.Vector3DotProduct(hit.Normal, ws.direction)
	if denominator >= minContactDot {
		st.SuspensionRelativeVelocity = 0
		st.SuspensionClip = maxClip
	} else {
		inv := -1 / denominator
		st.SuspensionRelativeVelocity = rl.Vector3DotProduct(hit.Normal, ws.velocity) * inv
		st.SuspensionClip = inv
	}
	return ws
}

func computeForces(ws *wheelStep, cfg WheelConfig, chassisMass float32, inContact int, dt float32) {
	st := &ws.state
	if !st.InContact {
		return
	}
	st.SuspensionForce = SuspensionForce(cfg, *st, chassisMass)

	normal := st.ContactNormal
	forward := rl.Vector3CrossProduct(normal, ws.axle)
	if l := rl.Vector3Length(forward); l > 1e-6 {
		ws.forward = rl.Vector3Scale(forward, 1/l)
		ws.lateral = rl.Vector3CrossProduct(ws.forward, normal)
	}

	ws.vLong = rl.Vector3DotProduct(ws.velocity, ws.forward)
	vLat := rl.Vector3DotProduct(ws.velocity, ws.lateral)
	st.SlipLongitudinal, st.SlipLateral = slipRatios(ws.vLong, vLat, rl.Vector3Length(ws.velocity))

	longitudinal, lateral, skid := FrictionForces(cfg, *st)

	// Never push sideways harder than needed to cancel the slip this step.
	limit := chassisMass / float32(inContact) * absf(vLat) / dt
	if absf(lateral) > limit {
		lateral = float32(math.Copysign(float64(limit), float64(lateral)))
	}

	st.ForwardForce = longitudinal
	st.SideForce = lateral
	st.SkidInfo = skid
	st.Sliding = skid < 1
}

func (ws *wheelStep) nonFinite() string {
	st := &ws.state
	switch {
	case !physics.IsFiniteQuaternion(ws.orientation):
		return "chassis orientation"
	case !physics.IsFinite(st.Rotation) || !physics.IsFinite(st.DeltaRotation):
		return "hub rotation"
	case !physics.IsFiniteVector(ws.connection) || !physics.IsFiniteVector(ws.direction):
		return "connection point"
	case !physics.IsFinite(st.SuspensionLength):
		return "suspension length"
	case !physics.IsFinite(st.SuspensionRelativeVelocity):
		return "suspension velocity"
	case !physics.IsFinite(st.SuspensionForce):
		return "suspension force"
	case !physics.IsFinite(st.ForwardForce):
		return "forward force"
	case !physics.IsFinite(st.SideForce):
		return "side force"
	case !physics.IsFinite(ws.vLong):
		return "wheel speed"
	}
	return ""
}

func (v *RaycastVehicle) applyForces(ws *wheelStep, cfg WheelConfig) {
	st := &ws.state
	if !st.InContact {
		return
	}
	chassis := v.chassis
	point := st.ContactPoint

	chassis.ApplyForce(rl.Vector3Scale(st.ContactNormal, st.SuspensionForce), point)
	chassis.ApplyForce(rl.Vector3Scale(ws.forward, st.ForwardForce), point)

	// Lower the side force towards the centre of mass to reduce roll.
	rel := chassis.VectorToLocal(rl.Vector3Subtract(point, chassis.Position))
	rel.Y *= cfg.RollInfluence
	sidePoint := rl.Vector3Add(chassis.Position, chassis.VectorToWorld(rel))
	chassis.ApplyForce(rl.Vector3Scale(ws.lateral, st.SideForce), sidePoint)
}

func (v *RaycastVehicle) commit(i int, ws *wheelStep, dt float32) {
	cfg := v.wheels[i]
	st := ws.state

	if st.InContact {
		st.DeltaRotation = ws.vLong * dt / cfg.Radius
	}
	if (st.Sliding || !st.InContact) && st.EngineForce != 0 && cfg.UseCustomSlidingRotationalSpeed {
		sign := float32(1)
		if st.EngineForce < 0 {
			sign = -1
		}
		st.DeltaRotation = sign * cfg.CustomSlidingRotationalSpeed * dt
	}
	if absf(st.Brake) > absf(st.EngineForce) {
		st.DeltaRotation = 0
	}
	st.Rotation = float32(math.Remainder(float64(st.Rotation+st.DeltaRotation), 2*math.Pi))
	if !st.InContact {
		st.DeltaRotation *= airborneDecay
	}

	v.states[i] = st
	v.states[i].WorldTransform = v.hubTransform(i)
}

// UpdateWheelTransform recomputes a wheel's hub pose from the current
// chassis pose, the last suspension length and the current steering input.
func (v *RaycastVehicle) UpdateWheelTransform(wheel int) (Transform, error) {
	if err := v.checkIndex(wheel); err != nil {
		return Transform{}, err
	}
	t := v.hubTransform(wheel)
	v.states[wheel].WorldTransform = t
	return t, nil
}

func (v *RaycastVehicle) hubTransform(i int) Transform {
	cfg := v.wheels[i]
	st := v.states[i]
	chassis := v.chassis

	connection := chassis.PointToWorld(cfg.ChassisConnectionPointLocal)
	direction := chassis.VectorToWorld(cfg.DirectionLocal)

	up := rl.Vector3Negate(cfg.DirectionLocal)
	steer := rl.QuaternionFromAxisAngle(up, v.controls[i].Steering)
	spin := rl.QuaternionFromAxisAngle(rl.Vector3Negate(cfg.AxleLocal), st.Rotation)

	return Transform{
		Position: rl.Vector3Add(connection, rl.Vector3Scale(direction, st.SuspensionLength)),
		Rotation: rl.QuaternionMultiply(rl.QuaternionMultiply(chassis.Rotation, steer), spin),
	}
}

// steeredAxle turns the local axle about the suspension's up axis.
func steeredAxle(cfg WheelConfig, steering float32) rl.Vector3 {
	if steering == 0 {
		return cfg.AxleLocal
	}
	up := rl.Vector3Negate(cfg.DirectionLocal)
	return rl.Vector3RotateByQuaternion(cfg.AxleLocal, rl.QuaternionFromAxisAngle(up, steering))
}

// Snapshot captures wheel states and control inputs.
type Snapshot struct {
	states   []WheelState
	controls ControlState
}

func (v *RaycastVehicle) Snapshot() Snapshot {
	return Snapshot{
		states:   append([]WheelState(nil), v.states...),
		controls: v.controls.clone(),
	}
}

func (v *RaycastVehicle) Restore(s Snapshot) error {
	if len(s.states) != len(v.wheels) {
		return fmt.Errorf("vehicle: snapshot has %d wheels, vehicle has %d", len(s.states), len(v.wheels))
	}
	copy(v.states, s.states)
	copy(v.controls, s.controls)
	return nil
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
