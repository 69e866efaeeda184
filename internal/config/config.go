package config

import (
	"fmt"
	"strings"

	"raycar/internal/input"
	"raycar/internal/physics"
	"raycar/internal/vehicle"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. RAYCAR_CHASSIS_MASS.
const EnvPrefix = "RAYCAR"

type Vec3 struct {
	X float32 `mapstructure:"x"`
	Y float32 `mapstructure:"y"`
	Z float32 `mapstructure:"z"`
}

func (v Vec3) Vector3() rl.Vector3 {
	return rl.Vector3{X: v.X, Y: v.Y, Z: v.Z}
}

type WorldConfig struct {
	Gravity          Vec3    `mapstructure:"gravity"`
	FixedTimeStep    float32 `mapstructure:"fixedTimeStep"`
	MaxSubSteps      int     `mapstructure:"maxSubSteps"`
	SolverIterations int     `mapstructure:"solverIterations"`
}

type ChassisConfig struct {
	Mass        float32 `mapstructure:"mass"`
	HalfExtents Vec3    `mapstructure:"halfExtents"`
	Start       Vec3    `mapstructure:"start"`
}

type WheelConfig struct {
	Radius                          float32 `mapstructure:"radius"`
	SuspensionRestLength            float32 `mapstructure:"suspensionRestLength"`
	SuspensionStiffness             float32 `mapstructure:"suspensionStiffness"`
	DampingCompression              float32 `mapstructure:"dampingCompression"`
	DampingRelaxation               float32 `mapstructure:"dampingRelaxation"`
	MaxSuspensionForce              float32 `mapstructure:"maxSuspensionForce"`
	MaxSuspensionTravel             float32 `mapstructure:"maxSuspensionTravel"`
	FrictionSlip                    float32 `mapstructure:"frictionSlip"`
	SideFrictionStiffness           float32 `mapstructure:"sideFrictionStiffness"`
	RollInfluence                   float32 `mapstructure:"rollInfluence"`
	CustomSlidingRotationalSpeed    float32 `mapstructure:"customSlidingRotationalSpeed"`
	UseCustomSlidingRotationalSpeed bool    `mapstructure:"useCustomSlidingRotationalSpeed"`
}

type LayoutConfig struct {
	HalfTrack        float32 `mapstructure:"halfTrack"`
	FrontAxle        float32 `mapstructure:"frontAxle"`
	RearAxle         float32 `mapstructure:"rearAxle"`
	ConnectionHeight float32 `mapstructure:"connectionHeight"`
}

type SurfaceConfig struct {
	Friction    float32 `mapstructure:"friction"`
	Restitution float32 `mapstructure:"restitution"`
	Stiffness   float32 `mapstructure:"stiffness"`
}

type MaterialsConfig struct {
	Default       SurfaceConfig `mapstructure:"default"`
	WheelGround   SurfaceConfig `mapstructure:"wheelGround"`
	ChassisGround SurfaceConfig `mapstructure:"chassisGround"`
}

type ControlsConfig struct {
	MaxEngineForce float32 `mapstructure:"maxEngineForce"`
	MaxBrake       float32 `mapstructure:"maxBrake"`
	MaxSteering    float32 `mapstructure:"maxSteering"`
	DriveWheels    []int   `mapstructure:"driveWheels"`
	SteerWheels    []int   `mapstructure:"steerWheels"`
	BrakeWheels    []int   `mapstructure:"brakeWheels"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	DBPath      string `mapstructure:"dbPath"` // empty records to memory
	SampleEvery int    `mapstructure:"sampleEvery"`
}

type WindowConfig struct {
	Width     int    `mapstructure:"width"`
	Height    int    `mapstructure:"height"`
	Title     string `mapstructure:"title"`
	TargetFPS int    `mapstructure:"targetFPS"`
}

type Config struct {
	LogLevel  string          `mapstructure:"logLevel"`
	World     WorldConfig     `mapstructure:"world"`
	Chassis   ChassisConfig   `mapstructure:"chassis"`
	Wheel     WheelConfig     `mapstructure:"wheel"`
	Layout    LayoutConfig    `mapstructure:"layout"`
	Materials MaterialsConfig `mapstructure:"materials"`
	Controls  ControlsConfig  `mapstructure:"controls"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Window    WindowConfig    `mapstructure:"window"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")

	v.SetDefault("world.gravity.x", 0)
	v.SetDefault("world.gravity.y", -9.82)
	v.SetDefault("world.gravity.z", 0)
	v.SetDefault("world.fixedTimeStep", 1.0/60.0)
	v.SetDefault("world.maxSubSteps", 3)
	v.SetDefault("world.solverIterations", physics.DefaultSolverIterations)

	v.SetDefault("chassis.mass", 150)
	v.SetDefault("chassis.halfExtents.x", 1)
	v.SetDefault("chassis.halfExtents.y", 0.5)
	v.SetDefault("chassis.halfExtents.z", 2)
	v.SetDefault("chassis.start.x", 0)
	v.SetDefault("chassis.start.y", 2)
	v.SetDefault("chassis.start.z", 0)

	w := vehicle.DefaultWheelConfig()
	v.SetDefault("wheel.radius", w.Radius)
	v.SetDefault("wheel.suspensionRestLength", w.SuspensionRestLength)
	v.SetDefault("wheel.suspensionStiffness", w.SuspensionStiffness)
	v.SetDefault("wheel.dampingCompression", w.DampingCompression)
	v.SetDefault("wheel.dampingRelaxation", w.DampingRelaxation)
	v.SetDefault("wheel.maxSuspensionForce", w.MaxSuspensionForce)
	v.SetDefault("wheel.maxSuspensionTravel", w.MaxSuspensionTravel)
	v.SetDefault("wheel.frictionSlip", w.FrictionSlip)
	v.SetDefault("wheel.sideFrictionStiffness", w.SideFrictionStiffness)
	v.SetDefault("wheel.rollInfluence", w.RollInfluence)
	v.SetDefault("wheel.customSlidingRotationalSpeed", w.CustomSlidingRotationalSpeed)
	v.SetDefault("wheel.useCustomSlidingRotationalSpeed", w.UseCustomSlidingRotationalSpeed)

	v.SetDefault("layout.halfTrack", 1)
	v.SetDefault("layout.frontAxle", 1.4)
	v.SetDefault("layout.rearAxle", 1.4)
	v.SetDefault("layout.connectionHeight", 0)

	v.SetDefault("materials.default.friction", 0.3)
	v.SetDefault("materials.default.restitution", 0)
	v.SetDefault("materials.default.stiffness", physics.DefaultContactStiffness)
	v.SetDefault("materials.wheelGround.friction", 0.3)
	v.SetDefault("materials.wheelGround.restitution", 0)
	v.SetDefault("materials.wheelGround.stiffness", 1000)
	v.SetDefault("materials.chassisGround.friction", 0.3)
	v.SetDefault("materials.chassisGround.restitution", 0)
	v.SetDefault("materials.chassisGround.stiffness", physics.DefaultContactStiffness)

	m := input.DefaultMapper()
	v.SetDefault("controls.maxEngineForce", m.MaxEngineForce)
	v.SetDefault("controls.maxBrake", m.MaxBrake)
	v.SetDefault("controls.maxSteering", m.MaxSteering)
	v.SetDefault("controls.driveWheels", m.DriveWheels)
	v.SetDefault("controls.steerWheels", m.SteerWheels)
	v.SetDefault("controls.brakeWheels", []int{})

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.dbPath", "")
	v.SetDefault("telemetry.sampleEvery", 6)

	v.SetDefault("window.width", 1280)
	v.SetDefault("window.height", 720)
	v.SetDefault("window.title", "raycar")
	v.SetDefault("window.targetFPS", 60)
}

// Load reads the file at path (JSON, YAML or TOML by extension) over the
// defaults. An empty path loads defaults and environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case !(c.World.FixedTimeStep > 0):
		return fmt.Errorf("config: world.fixedTimeStep must be positive, got %v", c.World.FixedTimeStep)
	case c.World.MaxSubSteps < 1:
		return fmt.Errorf("config: world.maxSubSteps must be at least 1, got %d", c.World.MaxSubSteps)
	case !(c.Chassis.Mass > 0):
		return fmt.Errorf("config: chassis.mass must be positive, got %v", c.Chassis.Mass)
	case c.Controls.MaxBrake < 0:
		return fmt.Errorf("config: controls.maxBrake must not be negative, got %v", c.Controls.MaxBrake)
	case c.Telemetry.SampleEvery < 1:
		return fmt.Errorf("config: telemetry.sampleEvery must be at least 1, got %d", c.Telemetry.SampleEvery)
	}
	wheels := c.WheelConfigs()
	for _, w := range wheels {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("config: wheel: %w", err)
		}
	}
	for _, set := range []struct {
		key     string
		indices []int
	}{
		{"controls.driveWheels", c.Controls.DriveWheels},
		{"controls.steerWheels", c.Controls.SteerWheels},
		{"controls.brakeWheels", c.Controls.BrakeWheels},
	} {
		for _, i := range set.indices {
			if i < 0 || i >= len(wheels) {
				return fmt.Errorf("config: %s index %d out of range [0, %d)", set.key, i, len(wheels))
			}
		}
	}
	return nil
}

// WheelConfigs expands the shared wheel options over the four-wheel layout.
func (c *Config) WheelConfigs() []vehicle.WheelConfig {
	base := vehicle.DefaultWheelConfig()
	w := c.Wheel
	base.Radius = w.Radius
	base.SuspensionRestLength = w.SuspensionRestLength
	base.SuspensionStiffness = w.SuspensionStiffness
	base.DampingCompression = w.DampingCompression
	base.DampingRelaxation = w.DampingRelaxation
	base.MaxSuspensionForce = w.MaxSuspensionForce
	base.MaxSuspensionTravel = w.MaxSuspensionTravel
	base.FrictionSlip = w.FrictionSlip
	base.SideFrictionStiffness = w.SideFrictionStiffness
	base.RollInfluence = w.RollInfluence
	base.CustomSlidingRotationalSpeed = w.CustomSlidingRotationalSpeed
	base.UseCustomSlidingRotationalSpeed = w.UseCustomSlidingRotationalSpeed

	return vehicle.FourWheelLayout(base, vehicle.Layout{
		HalfTrack:        c.Layout.HalfTrack,
		FrontAxle:        c.Layout.FrontAxle,
		RearAxle:         c.Layout.RearAxle,
		ConnectionHeight: c.Layout.ConnectionHeight,
	})
}

func (c *Config) Mapper() input.Mapper {
	return input.Mapper{
		MaxEngineForce: c.Controls.MaxEngineForce,
		MaxBrake:       c.Controls.MaxBrake,
		MaxSteering:    c.Controls.MaxSteering,
		DriveWheels:    c.Controls.DriveWheels,
		SteerWheels:    c.Controls.SteerWheels,
		BrakeWheels:    c.Controls.BrakeWheels,
	}
}

func (s SurfaceConfig) ContactMaterial(a, b *physics.Material) *physics.ContactMaterial {
	cm := physics.NewContactMaterial(a, b, s.Friction, s.Restitution)
	cm.ContactEquationStiffness = s.Stiffness
	return cm
}
