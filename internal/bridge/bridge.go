package bridge

import (
	"errors"
	"fmt"

	"raycar/internal/engine"
	"raycar/internal/physics"
	"raycar/internal/vehicle"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	ErrNoVehicle          = errors.New("bridge: no vehicle")
	ErrWheelCountMismatch = errors.New("bridge: wheel count mismatch")
)

// SyncChassis copies the body pose into t. Scale is left alone.
func SyncChassis(body *physics.Body, t *engine.Transform) {
	t.Position = body.Position
	t.Rotation = body.Rotation
}

// SyncWheel copies a wheel's hub pose into t.
func SyncWheel(state vehicle.WheelState, t *engine.Transform) {
	t.Position = state.WorldTransform.Position
	t.Rotation = state.WorldTransform.Rotation
}

// SyncWheelBody teleports a kinematic wheel body to the hub pose. Its
// velocities are cleared so the world does not move it between syncs.
func SyncWheelBody(state vehicle.WheelState, b *physics.Body) {
	b.Position = state.WorldTransform.Position
	b.Rotation = state.WorldTransform.Rotation
	b.Velocity = rl.Vector3{}
	b.AngularVelocity = rl.Vector3{}
}

// Bridge pushes simulated poses out to the scene. Wheel objects must be
// scene roots since their transforms are written in world space. Either
// wheel slice may be empty; a non-empty one must match the wheel count.
type Bridge struct {
	Vehicle     *vehicle.RaycastVehicle
	Chassis     *engine.GameObject
	Wheels      []*engine.GameObject
	WheelBodies []*physics.Body
}

// Sync runs once per frame, after the world has finished advancing.
func (b *Bridge) Sync() error {
	if b.Vehicle == nil {
		return ErrNoVehicle
	}
	n := b.Vehicle.NumWheels()
	if len(b.Wheels) != 0 && len(b.Wheels) != n {
		return fmt.Errorf("%w: %d wheel objects for %d wheels", ErrWheelCountMismatch, len(b.Wheels), n)
	}
	if len(b.WheelBodies) != 0 && len(b.WheelBodies) != n {
		return fmt.Errorf("%w: %d wheel bodies for %d wheels", ErrWheelCountMismatch, len(b.WheelBodies), n)
	}

	if b.Chassis != nil {
		SyncChassis(b.Vehicle.Chassis(), &b.Chassis.Transform)
	}

	for i := 0; i < n; i++ {
		if _, err := b.Vehicle.UpdateWheelTransform(i); err != nil {
			return err
		}
		state, err := b.Vehicle.WheelState(i)
		if err != nil {
			return err
		}
		if len(b.Wheels) != 0 && b.Wheels[i] != nil {
			SyncWheel(state, &b.Wheels[i].Transform)
		}
		if len(b.WheelBodies) != 0 && b.WheelBodies[i] != nil {
			SyncWheelBody(state, b.WheelBodies[i])
		}
	}
	return nil
}
