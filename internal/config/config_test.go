package config

import (
	"os"
	"path/filepath"
	"testing"

	"raycar/internal/physics"
	"raycar/internal/vehicle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.InDelta(t, -9.82, cfg.World.Gravity.Y, 1e-6)
	assert.InDelta(t, 1.0/60.0, cfg.World.FixedTimeStep, 1e-7)
	assert.Equal(t, 3, cfg.World.MaxSubSteps)
	assert.Equal(t, float32(150), cfg.Chassis.Mass)
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.False(t, cfg.Telemetry.Enabled)

	wheels := cfg.WheelConfigs()
	require.Len(t, wheels, 4)
	def := vehicle.DefaultWheelConfig()
	assert.Equal(t, def.Radius, wheels[vehicle.FrontLeft].Radius)
	assert.Equal(t, def.SuspensionStiffness, wheels[vehicle.RearRight].SuspensionStiffness)
	assert.InDelta(t, 1.4, wheels[vehicle.FrontLeft].ChassisConnectionPointLocal.Z, 1e-6)
	assert.InDelta(t, -1.4, wheels[vehicle.RearLeft].ChassisConnectionPointLocal.Z, 1e-6)

	m := cfg.Mapper()
	assert.Equal(t, []int{0, 1}, m.DriveWheels)
	assert.Empty(t, m.BrakeWheels)
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raycar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logLevel: debug
world:
  maxSubSteps: 5
chassis:
  mass: 400
wheel:
  radius: 0.35
  frictionSlip: 2.5
controls:
  driveWheels: [2, 3]
telemetry:
  enabled: true
  dbPath: run.db
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5, cfg.World.MaxSubSteps)
	assert.Equal(t, float32(400), cfg.Chassis.Mass)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "run.db", cfg.Telemetry.DBPath)
	assert.Equal(t, []int{2, 3}, cfg.Mapper().DriveWheels)

	for _, w := range cfg.WheelConfigs() {
		assert.InDelta(t, 0.35, w.Radius, 1e-6)
		assert.InDelta(t, 2.5, w.FrictionSlip, 1e-6)
	}
	// Untouched keys keep their defaults.
	assert.InDelta(t, -9.82, cfg.World.Gravity.Y, 1e-6)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("RAYCAR_CHASSIS_MASS", "220")
	t.Setenv("RAYCAR_LOGLEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, float32(220), cfg.Chassis.Mass)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"time step", "world:\n  fixedTimeStep: 0\n", "fixedTimeStep"},
		{"sub steps", "world:\n  maxSubSteps: 0\n", "maxSubSteps"},
		{"mass", "chassis:\n  mass: -1\n", "chassis.mass"},
		{"wheel", "wheel:\n  radius: -0.5\n", "wheel"},
		{"max brake", "controls:\n  maxBrake: -10\n", "controls.maxBrake"},
		{"drive index", "controls:\n  driveWheels: [2, 4]\n", "controls.driveWheels index 4"},
		{"steer index", "controls:\n  steerWheels: [-1]\n", "controls.steerWheels index -1"},
		{"brake index", "controls:\n  brakeWheels: [0, 7]\n", "controls.brakeWheels index 7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSurfaceContactMaterial(t *testing.T) {
	a, b := physics.NewMaterial("wheel"), physics.NewMaterial("ground")
	cm := SurfaceConfig{Friction: 0.8, Restitution: 0.1, Stiffness: 500}.ContactMaterial(a, b)
	assert.Same(t, a, cm.A)
	assert.Same(t, b, cm.B)
	assert.Equal(t, float32(0.8), cm.Friction)
	assert.Equal(t, float32(500), cm.ContactEquationStiffness)
}
