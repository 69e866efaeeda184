package sim

import (
	"bytes"
	"context"
	"math"
	"testing"

	"raycar/internal/config"
	"raycar/internal/input"
	"raycar/internal/telemetry"
	"raycar/internal/vehicle"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frameTime float32 = 1.0 / 60

func newSim(t *testing.T) *Simulation {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	s, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	return s
}

func runFrames(t *testing.T, s *Simulation, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := s.Frame(context.Background(), frameTime)
		require.NoError(t, err)
	}
}

func TestNewBuildsCar(t *testing.T) {
	s := newSim(t)
	assert.Equal(t, 4, s.Vehicle.NumWheels())
	assert.Same(t, s.World, s.Vehicle.Chassis().World())
	// ground, chassis and four wheel bodies
	assert.Len(t, s.World.Bodies(), 6)
	assert.Same(t, s.World.ContactMaterialFor(WheelMaterial, GroundMaterial),
		s.World.ContactMaterialFor(GroundMaterial, WheelMaterial))
}

func TestFrameSettlesAndDrives(t *testing.T) {
	s := newSim(t)
	runFrames(t, s, 300)

	assert.Equal(t, 4, s.Vehicle.WheelsInContact())
	assert.InDelta(t, 0, s.Vehicle.CurrentSpeed(), 0.5)
	assert.Equal(t, uint64(300), s.Frames())
	assert.Equal(t, uint64(300), s.World.StepCount())

	s.Intents.Press(input.Accelerate)
	runFrames(t, s, 60)
	assert.Greater(t, s.Vehicle.CurrentSpeed(), float32(5))
	assert.Greater(t, s.Vehicle.Chassis().Position.Z, float32(0.5))

	// Wheel bodies follow the hubs.
	for i, b := range s.Bridge.WheelBodies {
		st, err := s.Vehicle.WheelState(i)
		require.NoError(t, err)
		assert.Equal(t, st.WorldTransform.Position, b.Position)
	}

	s.Intents.Reset()
	s.Intents.Press(input.Brake)
	runFrames(t, s, 180)
	assert.InDelta(t, 0, s.Vehicle.CurrentSpeed(), 1)
}

func TestFrameSubSteps(t *testing.T) {
	s := newSim(t)
	steps, err := s.Frame(context.Background(), frameTime/2)
	require.NoError(t, err)
	assert.Zero(t, steps)

	steps, err = s.Frame(context.Background(), 10*frameTime)
	require.NoError(t, err)
	assert.Equal(t, s.MaxSubSteps, steps)
}

func TestFrameReportsDegenerateStep(t *testing.T) {
	s := newSim(t)
	var buf bytes.Buffer
	s.Logger = zerolog.New(&buf)
	metrics, err := telemetry.NewMetrics()
	require.NoError(t, err)
	s.Metrics = metrics

	s.Vehicle.Chassis().Velocity = rl.Vector3{Y: float32(math.NaN())}
	_, err = s.Frame(context.Background(), frameTime)

	var deg *vehicle.DegenerateStepError
	require.ErrorAs(t, err, &deg)
	assert.Contains(t, buf.String(), "vehicle step rejected")
	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestFrameRecordsTelemetry(t *testing.T) {
	s := newSim(t)
	rec, err := telemetry.Open("", zerolog.Nop())
	require.NoError(t, err)
	defer rec.Close()
	run, err := rec.StartRun(s.Vehicle.Name, nil)
	require.NoError(t, err)

	s.Recorder = rec
	s.SampleEvery = 2
	runFrames(t, s, 10)
	require.NoError(t, rec.Flush())

	samples, err := rec.Samples(run.ID)
	require.NoError(t, err)
	require.Len(t, samples, 5)
	assert.Equal(t, uint64(2), samples[0].Step)
	assert.Equal(t, uint64(10), samples[4].Step)
}

func TestResetRestoresStart(t *testing.T) {
	s := newSim(t)
	start := s.Vehicle.Chassis().Position

	s.Intents.Press(input.Accelerate)
	s.Intents.Press(input.SteerLeft)
	runFrames(t, s, 120)
	require.NotEqual(t, start, s.Vehicle.Chassis().Position)

	require.NoError(t, s.Reset())
	assert.Equal(t, start, s.Vehicle.Chassis().Position)
	assert.Equal(t, rl.Vector3{}, s.Vehicle.Chassis().Velocity)
	assert.Zero(t, s.Frames())
	assert.Zero(t, s.World.StepCount())
	assert.Empty(t, s.Intents)

	c, err := s.Vehicle.Control(vehicle.FrontLeft)
	require.NoError(t, err)
	assert.Zero(t, c.EngineForce)
}

func TestAddObstacle(t *testing.T) {
	s := newSim(t)
	ramp, err := s.AddObstacle("ramp", rl.Vector3{Z: 10}, rl.Vector3{X: 2, Y: 0.5, Z: 2}, rl.QuaternionIdentity())
	require.NoError(t, err)
	assert.Same(t, GroundMaterial, ramp.Material)
	assert.Contains(t, s.World.Bodies(), ramp)
}
