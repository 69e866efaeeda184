package input

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wheelControl struct {
	engine, brake, steer float32
}

type fakeControls struct {
	wheels []wheelControl
}

var errBadWheel = errors.New("bad wheel")

func newFakeControls(n int) *fakeControls {
	return &fakeControls{wheels: make([]wheelControl, n)}
}

func (f *fakeControls) NumWheels() int { return len(f.wheels) }

func (f *fakeControls) check(w int) error {
	if w < 0 || w >= len(f.wheels) {
		return errBadWheel
	}
	return nil
}

func (f *fakeControls) SetEngineForce(force float32, w int) error {
	if err := f.check(w); err != nil {
		return err
	}
	f.wheels[w].engine = force
	return nil
}

func (f *fakeControls) SetBrake(brake float32, w int) error {
	if err := f.check(w); err != nil {
		return err
	}
	f.wheels[w].brake = brake
	return nil
}

func (f *fakeControls) SetSteeringValue(angle float32, w int) error {
	if err := f.check(w); err != nil {
		return err
	}
	f.wheels[w].steer = angle
	return nil
}

func TestIntentsClampAndReset(t *testing.T) {
	in := Intents{}
	in.Set(Accelerate, 2)
	in.Set(Brake, -1)
	in.Set(SteerLeft, 0.25)

	assert.Equal(t, float32(1), in.Get(Accelerate))
	assert.Zero(t, in.Get(Brake))
	assert.Equal(t, float32(0.25), in.Get(SteerLeft))
	assert.Zero(t, in.Get(Reverse))

	in.Reset()
	assert.Empty(t, in)
}

func TestMapperDrivesFrontWheels(t *testing.T) {
	m := DefaultMapper()
	c := newFakeControls(4)
	in := Intents{}
	in.Press(Accelerate)
	in.Press(SteerLeft)

	require.NoError(t, m.Apply(in, c))

	assert.Equal(t, wheelControl{engine: 1000, steer: 0.4}, c.wheels[0])
	assert.Equal(t, wheelControl{engine: 1000, steer: 0.4}, c.wheels[1])
	assert.Equal(t, wheelControl{}, c.wheels[2])
	assert.Equal(t, wheelControl{}, c.wheels[3])
}

func TestMapperReverseAndSteerRight(t *testing.T) {
	m := DefaultMapper()
	c := newFakeControls(4)
	in := Intents{}
	in.Press(Reverse)
	in.Set(SteerRight, 0.5)

	require.NoError(t, m.Apply(in, c))

	assert.Equal(t, float32(-1000), c.wheels[0].engine)
	assert.InDelta(t, -0.2, c.wheels[1].steer, 1e-6)
}

func TestMapperOpposingInputsCancel(t *testing.T) {
	m := DefaultMapper()
	c := newFakeControls(4)
	in := Intents{}
	in.Press(Accelerate)
	in.Press(Reverse)
	in.Press(SteerLeft)
	in.Press(SteerRight)

	require.NoError(t, m.Apply(in, c))
	assert.Zero(t, c.wheels[0].engine)
	assert.Zero(t, c.wheels[0].steer)
}

func TestMapperReleasesBrakes(t *testing.T) {
	m := DefaultMapper()
	c := newFakeControls(4)
	in := Intents{}
	in.Press(Brake)

	require.NoError(t, m.Apply(in, c))
	for i, w := range c.wheels {
		assert.Equal(t, float32(1500), w.brake, "wheel %d", i)
	}

	in.Reset()
	require.NoError(t, m.Apply(in, c))
	for i, w := range c.wheels {
		assert.Zero(t, w.brake, "wheel %d", i)
	}
}

func TestMapperExplicitBrakeWheels(t *testing.T) {
	m := DefaultMapper()
	m.BrakeWheels = []int{2, 3}
	c := newFakeControls(4)
	in := Intents{}
	in.Press(Brake)

	require.NoError(t, m.Apply(in, c))
	assert.Zero(t, c.wheels[0].brake)
	assert.Equal(t, float32(1500), c.wheels[3].brake)
}

func TestMapperSurfacesControlErrors(t *testing.T) {
	m := DefaultMapper()
	m.DriveWheels = []int{5}
	err := m.Apply(Intents{}, newFakeControls(4))
	assert.ErrorIs(t, err, errBadWheel)
	assert.Contains(t, err.Error(), "engine force")
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "steer_left", SteerLeft.String())
	assert.Equal(t, "action(42)", Action(42).String())
}
