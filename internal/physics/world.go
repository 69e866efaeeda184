package physics

import (
	"errors"
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
)

// StepHook runs once per fixed step, after bodies are integrated and
// contacts resolved. Forces applied from a hook take effect at the next step.
type StepHook interface {
	Step(dt float32) error
}

// StepHookFunc adapts a function to StepHook.
type StepHookFunc func(dt float32) error

func (f StepHookFunc) Step(dt float32) error { return f(dt) }

const (
	DefaultFixedTimeStep    float32 = 1.0 / 60.0
	DefaultSolverIterations         = 10
)

type World struct {
	Gravity                rl.Vector3
	DefaultContactMaterial *ContactMaterial
	SolverIterations       int
	FixedTimeStep          float32
	Logger                 zerolog.Logger

	bodies           []*Body
	contactMaterials map[materialPair]*ContactMaterial
	hooks            []StepHook

	stepping    bool
	started     bool
	accumulator float32
	time        float64
	stepCount   uint64
	contacts    []Contact
}

func NewWorld() *World {
	def := NewContactMaterial(nil, nil, 0.3, 0)
	return &World{
		Gravity:                rl.Vector3{X: 0, Y: -9.82, Z: 0},
		DefaultContactMaterial: def,
		SolverIterations:       DefaultSolverIterations,
		FixedTimeStep:          DefaultFixedTimeStep,
		Logger:                 zerolog.Nop(),
		contactMaterials:       make(map[materialPair]*ContactMaterial),
	}
}

func (w *World) AddBody(b *Body) error {
	if b == nil {
		return fmt.Errorf("%w: nil", ErrInvalidBody)
	}
	if b.world != nil {
		return fmt.Errorf("%w: %q is already in a world", ErrInvalidBody, b.Name)
	}
	switch b.Shape.Kind {
	case ShapeBox:
		h := b.Shape.HalfExtents
		if h.X <= 0 || h.Y <= 0 || h.Z <= 0 {
			return fmt.Errorf("%w: %q box half extents must be positive", ErrInvalidBody, b.Name)
		}
	case ShapeSphere:
		if b.Shape.Radius <= 0 {
			return fmt.Errorf("%w: %q sphere radius must be positive", ErrInvalidBody, b.Name)
		}
	}
	if b.Type == Dynamic && b.invMass == 0 {
		return fmt.Errorf("%w: %q dynamic body needs a positive mass", ErrInvalidBody, b.Name)
	}

	b.world = w
	w.bodies = append(w.bodies, b)
	w.Logger.Debug().
		Str("body", b.Name).
		Str("type", b.Type.String()).
		Float32("mass", b.Mass).
		Msg("body added")
	return nil
}

// RemoveBody reports whether b was registered.
func (w *World) RemoveBody(b *Body) bool {
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			b.world = nil
			return true
		}
	}
	return false
}

// Bodies returns the registered bodies in registration order.
func (w *World) Bodies() []*Body {
	return w.bodies
}

// AddContactMaterial registers parameters for an unordered material pair.
// Registration is only allowed before the first step.
func (w *World) AddContactMaterial(cm *ContactMaterial) error {
	if cm == nil {
		return errors.New("physics: nil contact material")
	}
	if w.started {
		return ErrWorldStarted
	}
	key := pairKey(cm.A, cm.B)
	if _, exists := w.contactMaterials[key]; exists {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateContactMaterial, key.a, key.b)
	}
	w.contactMaterials[key] = cm
	return nil
}

// ContactMaterialFor returns the registered parameters for the pair, or the
// world default.
func (w *World) ContactMaterialFor(a, b *Material) *ContactMaterial {
	if cm, ok := w.contactMaterials[pairKey(a, b)]; ok {
		return cm
	}
	return w.DefaultContactMaterial
}

func (w *World) AddStepHook(h StepHook) {
	w.hooks = append(w.hooks, h)
}

// RemoveStepHook reports whether h was registered.
func (w *World) RemoveStepHook(h StepHook) bool {
	for i, other := range w.hooks {
		if other == h {
			w.hooks = append(w.hooks[:i], w.hooks[i+1:]...)
			return true
		}
	}
	return false
}

// Step advances the world by exactly dt. Every hook runs even if an earlier
// one fails; their errors are joined.
func (w *World) Step(dt float32) error {
	if w.stepping {
		return ErrReentrantStep
	}
	if dt <= 0 || !IsFinite(dt) {
		return fmt.Errorf("%w: %v", ErrInvalidTimeStep, dt)
	}
	w.stepping = true
	defer func() { w.stepping = false }()
	w.started = true

	for _, b := range w.bodies {
		b.integrate(dt, w.Gravity)
	}

	w.contacts = w.findContacts(w.contacts[:0])
	w.solveContacts(w.contacts, dt)

	w.time += float64(dt)
	w.stepCount++

	hooks := append([]StepHook(nil), w.hooks...)
	var errs []error
	for _, h := range hooks {
		if err := h.Step(dt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Advance consumes frameTime in fixed steps, running at most maxSubSteps of
// them. Time that could not be consumed is dropped, except for the fraction
// of a step that carries over. A failing step stops the frame.
func (w *World) Advance(frameTime float32, maxSubSteps int) (int, error) {
	if frameTime < 0 || !IsFinite(frameTime) {
		return 0, fmt.Errorf("%w: frame time %v", ErrInvalidTimeStep, frameTime)
	}
	if maxSubSteps < 1 {
		maxSubSteps = 1
	}
	step := w.FixedTimeStep
	if step <= 0 {
		step = DefaultFixedTimeStep
	}

	w.accumulator += frameTime
	steps := 0
	for w.accumulator >= step && steps < maxSubSteps {
		err := w.Step(step)
		if errors.Is(err, ErrReentrantStep) {
			return steps, err
		}
		w.accumulator -= step
		steps++
		if err != nil {
			return steps, fmt.Errorf("sub-step %d: %w", steps, err)
		}
	}
	if w.accumulator >= step {
		w.Logger.Warn().
			Float32("dropped", w.accumulator-float32(math.Mod(float64(w.accumulator), float64(step)))).
			Int("max_sub_steps", maxSubSteps).
			Msg("simulation falling behind, dropping time")
		w.accumulator = float32(math.Mod(float64(w.accumulator), float64(step)))
	}
	return steps, nil
}

// Time is the simulated time in seconds.
func (w *World) Time() float64 { return w.time }

func (w *World) StepCount() uint64 { return w.stepCount }

// Contacts returns the contacts resolved during the last step.
func (w *World) Contacts() []Contact { return w.contacts }

type bodyState struct {
	body            *Body
	position        rl.Vector3
	rotation        rl.Quaternion
	velocity        rl.Vector3
	angularVelocity rl.Vector3
	force           rl.Vector3
	torque          rl.Vector3
}

// WorldSnapshot captures the dynamic state of every body, pending forces
// included, plus the world clock.
type WorldSnapshot struct {
	bodies      []bodyState
	accumulator float32
	time        float64
	stepCount   uint64
}

func (w *World) Snapshot() WorldSnapshot {
	s := WorldSnapshot{
		bodies:      make([]bodyState, len(w.bodies)),
		accumulator: w.accumulator,
		time:        w.time,
		stepCount:   w.stepCount,
	}
	for i, b := range w.bodies {
		s.bodies[i] = bodyState{
			body:            b,
			position:        b.Position,
			rotation:        b.Rotation,
			velocity:        b.Velocity,
			angularVelocity: b.AngularVelocity,
			force:           b.Force,
			torque:          b.Torque,
		}
	}
	return s
}

// Restore rewinds the bodies captured in s. Bodies added after the snapshot
// are left untouched.
func (w *World) Restore(s WorldSnapshot) {
	for _, st := range s.bodies {
		b := st.body
		b.Position = st.position
		b.Rotation = st.rotation
		b.Velocity = st.velocity
		b.AngularVelocity = st.angularVelocity
		b.Force = st.force
		b.Torque = st.torque
	}
	w.accumulator = s.accumulator
	w.time = s.time
	w.stepCount = s.stepCount
}
