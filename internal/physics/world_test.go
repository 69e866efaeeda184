package physics

import (
	"errors"
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldAddBodyValidates(t *testing.T) {
	w := NewWorld()

	assert.ErrorIs(t, w.AddBody(nil), ErrInvalidBody)
	assert.ErrorIs(t, w.AddBody(NewBody("flat", Static, Box(rl.Vector3{X: 1, Z: 1}), 0)), ErrInvalidBody)
	assert.ErrorIs(t, w.AddBody(NewBody("dot", Static, Sphere(0), 0)), ErrInvalidBody)
	assert.ErrorIs(t, w.AddBody(NewBody("weightless", Dynamic, Sphere(1), 0)), ErrInvalidBody)

	b := NewBody("ball", Dynamic, Sphere(1), 1)
	require.NoError(t, w.AddBody(b))
	assert.Same(t, w, b.World())
	assert.ErrorIs(t, w.AddBody(b), ErrInvalidBody)

	assert.True(t, w.RemoveBody(b))
	assert.Nil(t, b.World())
	assert.False(t, w.RemoveBody(b))
}

func TestWorldFreeFall(t *testing.T) {
	w := NewWorld()
	b := NewBody("ball", Dynamic, Sphere(0.5), 1)
	b.LinearDamping = 0
	b.Position = rl.Vector3{Y: 100}
	require.NoError(t, w.AddBody(b))

	for i := 0; i < 60; i++ {
		require.NoError(t, w.Step(1.0/60))
	}

	assert.InDelta(t, -9.82, b.Velocity.Y, 1e-3)
	assert.InDelta(t, 1.0, w.Time(), 1e-6)
	assert.Equal(t, uint64(60), w.StepCount())
}

func TestWorldForcesApplyAtNextStepAndClear(t *testing.T) {
	w := NewWorld()
	w.Gravity = rl.Vector3{}
	b := NewBody("crate", Dynamic, Box(rl.Vector3{X: 1, Y: 1, Z: 1}), 2)
	b.LinearDamping = 0
	require.NoError(t, w.AddBody(b))

	b.ApplyForce(rl.Vector3{X: 120}, b.Position)
	require.NoError(t, w.Step(1.0/60))

	assert.InDelta(t, 1.0, b.Velocity.X, 1e-4)
	assert.Zero(t, b.Force)
	assert.Zero(t, b.Torque)
}

func TestWorldStaticBodiesIgnoreForces(t *testing.T) {
	w := NewWorld()
	b := NewBody("wall", Static, Box(rl.Vector3{X: 1, Y: 1, Z: 1}), 50)
	require.NoError(t, w.AddBody(b))

	b.ApplyForce(rl.Vector3{X: 100}, rl.Vector3{X: 1})
	require.NoError(t, w.Step(1.0/60))

	assert.Zero(t, b.Mass)
	assert.Equal(t, rl.Vector3{}, b.Position)
	assert.Equal(t, rl.Vector3{}, b.Velocity)
}

func TestWorldBoxRestsOnPlane(t *testing.T) {
	w, _ := newGroundWorld(t)
	box := NewBody("crate", Dynamic, Box(rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}), 10)
	box.Position = rl.Vector3{Y: 1}
	require.NoError(t, w.AddBody(box))

	for i := 0; i < 180; i++ {
		require.NoError(t, w.Step(1.0/60))
	}

	assert.InDelta(t, 0.5, box.Position.Y, 0.05)
	assert.InDelta(t, 0, box.Velocity.Y, 0.2)
	assert.NotEmpty(t, w.Contacts())
}

func TestWorldBoxRestsOnStaticBox(t *testing.T) {
	w := NewWorld()
	floor := NewBody("floor", Static, Box(rl.Vector3{X: 10, Y: 0.5, Z: 10}), 0)
	floor.Position = rl.Vector3{Y: -0.5}
	require.NoError(t, w.AddBody(floor))
	box := NewBody("crate", Dynamic, Box(rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}), 10)
	box.Position = rl.Vector3{Y: 1}
	require.NoError(t, w.AddBody(box))

	for i := 0; i < 180; i++ {
		require.NoError(t, w.Step(1.0/60))
	}

	assert.InDelta(t, 0.5, box.Position.Y, 0.05)
}

func TestFindContactsBoxPairs(t *testing.T) {
	w := NewWorld()
	block := NewBody("block", Static, Box(rl.Vector3{X: 1, Y: 1, Z: 1}), 0)
	require.NoError(t, w.AddBody(block))
	crate := NewBody("crate", Dynamic, Box(rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}), 10)
	require.NoError(t, w.AddBody(crate))

	// Bounds overlap but the tilted crate sits clear of the block's corner.
	crate.Position = rl.Vector3{X: 1.6, Y: 1.6}
	crate.Rotation = rl.QuaternionFromAxisAngle(rl.Vector3{Z: 1}, math.Pi/4)
	aBounds, _ := crate.Bounds()
	bBounds, _ := block.Bounds()
	require.True(t, aBounds.Intersects(bBounds))
	assert.Empty(t, w.findContacts(nil))

	crate.Position = rl.Vector3{Y: 1.3}
	crate.Rotation = rl.QuaternionIdentity()
	contacts := w.findContacts(nil)
	require.Len(t, contacts, 4)
	for _, c := range contacts {
		assert.Same(t, crate, c.A)
		assert.Same(t, block, c.B)
		assert.InDelta(t, 0.2, c.Depth, 1e-4)
		assert.InDelta(t, 1, c.Normal.Y, 1e-5)
	}
}

func TestWorldSphereBouncesWithRestitution(t *testing.T) {
	w, _ := newGroundWorld(t)
	rubber := NewMaterial("rubber")
	require.NoError(t, w.AddContactMaterial(NewContactMaterial(rubber, nil, 0.3, 0.8)))

	ball := NewBody("ball", Dynamic, Sphere(0.5), 1)
	ball.Material = rubber
	ball.Position = rl.Vector3{Y: 0.45}
	ball.Velocity = rl.Vector3{Y: -5}
	require.NoError(t, w.AddBody(ball))

	require.NoError(t, w.Step(1.0/60))
	assert.Greater(t, ball.Velocity.Y, float32(3))
}

func TestWorldFrictionSlowsSlidingBox(t *testing.T) {
	w, _ := newGroundWorld(t)
	box := NewBody("crate", Dynamic, Box(rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}), 10)
	box.Position = rl.Vector3{Y: 0.5}
	box.Velocity = rl.Vector3{X: 5}
	require.NoError(t, w.AddBody(box))

	for i := 0; i < 60; i++ {
		require.NoError(t, w.Step(1.0/60))
	}

	assert.Less(t, box.Velocity.X, float32(3.5))
	assert.GreaterOrEqual(t, box.Velocity.X, float32(-0.1))
}

func TestWorldContactMaterials(t *testing.T) {
	w := NewWorld()
	wheel := NewMaterial("wheel")
	ground := NewMaterial("ground")

	cm := NewContactMaterial(wheel, ground, 0.3, 0)
	require.NoError(t, w.AddContactMaterial(cm))
	assert.ErrorIs(t, w.AddContactMaterial(NewContactMaterial(ground, wheel, 0.5, 0)), ErrDuplicateContactMaterial)

	assert.Same(t, cm, w.ContactMaterialFor(ground, wheel))
	assert.Same(t, w.DefaultContactMaterial, w.ContactMaterialFor(wheel, wheel))
	assert.Same(t, w.DefaultContactMaterial, w.ContactMaterialFor(nil, ground))

	require.NoError(t, w.Step(1.0/60))
	assert.ErrorIs(t, w.AddContactMaterial(NewContactMaterial(wheel, wheel, 1, 0)), ErrWorldStarted)
}

func TestWorldHooksRunAfterIntegration(t *testing.T) {
	w := NewWorld()
	b := NewBody("ball", Dynamic, Sphere(0.5), 1)
	b.Position = rl.Vector3{Y: 10}
	require.NoError(t, w.AddBody(b))

	var seen []float32
	w.AddStepHook(StepHookFunc(func(dt float32) error {
		seen = append(seen, b.Position.Y)
		return nil
	}))

	require.NoError(t, w.Step(1.0/60))
	require.Len(t, seen, 1)
	assert.Equal(t, b.Position.Y, seen[0])
	assert.Less(t, seen[0], float32(10))
}

func TestWorldRejectsReentrantStep(t *testing.T) {
	w := NewWorld()
	var inner error
	w.AddStepHook(StepHookFunc(func(dt float32) error {
		inner = w.Step(dt)
		return inner
	}))

	err := w.Step(1.0 / 60)
	assert.ErrorIs(t, inner, ErrReentrantStep)
	assert.ErrorIs(t, err, ErrReentrantStep)
	assert.Equal(t, uint64(1), w.StepCount())
}

func TestWorldStepJoinsHookErrors(t *testing.T) {
	w := NewWorld()
	errA := errors.New("a")
	errB := errors.New("b")
	calls := 0
	w.AddStepHook(StepHookFunc(func(float32) error { calls++; return errA }))
	w.AddStepHook(StepHookFunc(func(float32) error { calls++; return errB }))

	err := w.Step(1.0 / 60)
	assert.Equal(t, 2, calls)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestWorldRemoveStepHook(t *testing.T) {
	w := NewWorld()
	calls := 0
	hook := &countingHook{calls: &calls}
	w.AddStepHook(hook)
	require.NoError(t, w.Step(1.0/60))
	assert.True(t, w.RemoveStepHook(hook))
	assert.False(t, w.RemoveStepHook(hook))
	require.NoError(t, w.Step(1.0/60))
	assert.Equal(t, 1, calls)
}

type countingHook struct{ calls *int }

func (h *countingHook) Step(float32) error {
	*h.calls++
	return nil
}

func TestWorldStepRejectsBadTimeStep(t *testing.T) {
	w := NewWorld()
	assert.ErrorIs(t, w.Step(0), ErrInvalidTimeStep)
	assert.ErrorIs(t, w.Step(-1), ErrInvalidTimeStep)
	assert.Equal(t, uint64(0), w.StepCount())
}

func TestWorldAdvanceFixedSteps(t *testing.T) {
	w := NewWorld()

	steps, err := w.Advance(0.04, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, steps)

	// 0.04 - 2/60 leaves under a step; adding a little more completes one.
	steps, err = w.Advance(0.011, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, steps)
}

func TestWorldAdvanceDropsExcessTime(t *testing.T) {
	w := NewWorld()

	steps, err := w.Advance(1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, steps)
	assert.Less(t, w.accumulator, w.FixedTimeStep)
	assert.GreaterOrEqual(t, w.accumulator, float32(0))
}

func TestWorldSnapshotRestoreIsDeterministic(t *testing.T) {
	w, _ := newGroundWorld(t)
	box := NewBody("crate", Dynamic, Box(rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}), 10)
	box.Position = rl.Vector3{Y: 2}
	box.Velocity = rl.Vector3{X: 1}
	box.AngularVelocity = rl.Vector3{Z: 2}
	require.NoError(t, w.AddBody(box))

	for i := 0; i < 20; i++ {
		require.NoError(t, w.Step(1.0/60))
	}
	box.ApplyForce(rl.Vector3{X: 50}, rl.Vector3{X: 0.5, Y: 2})
	snap := w.Snapshot()

	run := func() (rl.Vector3, rl.Quaternion) {
		for i := 0; i < 40; i++ {
			require.NoError(t, w.Step(1.0/60))
		}
		return box.Position, box.Rotation
	}
	pos1, rot1 := run()
	w.Restore(snap)
	pos2, rot2 := run()

	assert.Equal(t, pos1, pos2)
	assert.Equal(t, rot1, rot2)
	assert.Equal(t, uint64(60), w.StepCount())
}

func TestWorldAdvanceStopsOnHookError(t *testing.T) {
	w := NewWorld()
	boom := errors.New("boom")
	calls := 0
	w.AddStepHook(StepHookFunc(func(float32) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	}))

	steps, err := w.Advance(0.1, 10)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, steps)
	assert.Equal(t, 2, calls)
}
