package vehicle

import (
	"raycar/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// WheelConfig describes one suspension ray in the chassis frame
// (+Y up, +Z forward, +X left). It is fixed once the wheel is added.
type WheelConfig struct {
	Radius float32

	// Direction the suspension extends, normally straight down.
	DirectionLocal rl.Vector3

	SuspensionRestLength float32
	SuspensionStiffness  float32
	DampingCompression   float32
	DampingRelaxation    float32
	MaxSuspensionForce   float32
	MaxSuspensionTravel  float32

	// Tire grip: the friction budget is FrictionSlip times the suspension force.
	FrictionSlip          float32
	SideFrictionStiffness float32

	// Scales the height at which side forces act; 0 removes body roll.
	RollInfluence float32

	AxleLocal                   rl.Vector3
	ChassisConnectionPointLocal rl.Vector3

	// Spin rate (rad/s) shown while the wheel slides under power, in the
	// direction of the engine force.
	CustomSlidingRotationalSpeed    float32
	UseCustomSlidingRotationalSpeed bool

	IsFrontWheel bool
}

func DefaultWheelConfig() WheelConfig {
	return WheelConfig{
		Radius:                          0.5,
		DirectionLocal:                  rl.Vector3{Y: -1},
		SuspensionRestLength:            0.3,
		SuspensionStiffness:             30,
		DampingCompression:              4.4,
		DampingRelaxation:               2.3,
		MaxSuspensionForce:              100000,
		MaxSuspensionTravel:             0.3,
		FrictionSlip:                    5,
		SideFrictionStiffness:           1,
		RollInfluence:                   0.01,
		AxleLocal:                       rl.Vector3{X: -1},
		CustomSlidingRotationalSpeed:    30,
		UseCustomSlidingRotationalSpeed: true,
	}
}

const unitTolerance = 1e-3

func (c WheelConfig) Validate() error {
	switch {
	case !(c.Radius > 0):
		return &ConfigError{Field: "Radius", Reason: "must be positive"}
	case !isUnit(c.DirectionLocal):
		return &ConfigError{Field: "DirectionLocal", Reason: "must be unit length"}
	case !isUnit(c.AxleLocal):
		return &ConfigError{Field: "AxleLocal", Reason: "must be unit length"}
	case absf(rl.Vector3DotProduct(c.DirectionLocal, c.AxleLocal)) > unitTolerance:
		return &ConfigError{Field: "AxleLocal", Reason: "must be perpendicular to DirectionLocal"}
	case !nonNegative(c.SuspensionRestLength):
		return &ConfigError{Field: "SuspensionRestLength", Reason: "must not be negative"}
	case !nonNegative(c.SuspensionStiffness):
		return &ConfigError{Field: "SuspensionStiffness", Reason: "must not be negative"}
	case !nonNegative(c.DampingCompression):
		return &ConfigError{Field: "DampingCompression", Reason: "must not be negative"}
	case !nonNegative(c.DampingRelaxation):
		return &ConfigError{Field: "DampingRelaxation", Reason: "must not be negative"}
	case !nonNegative(c.MaxSuspensionForce):
		return &ConfigError{Field: "MaxSuspensionForce", Reason: "must not be negative"}
	case !nonNegative(c.MaxSuspensionTravel):
		return &ConfigError{Field: "MaxSuspensionTravel", Reason: "must not be negative"}
	case !nonNegative(c.FrictionSlip):
		return &ConfigError{Field: "FrictionSlip", Reason: "must not be negative"}
	case !nonNegative(c.SideFrictionStiffness):
		return &ConfigError{Field: "SideFrictionStiffness", Reason: "must not be negative"}
	case !physics.IsFinite(c.RollInfluence):
		return &ConfigError{Field: "RollInfluence", Reason: "must be finite"}
	case !physics.IsFiniteVector(c.ChassisConnectionPointLocal):
		return &ConfigError{Field: "ChassisConnectionPointLocal", Reason: "must be finite"}
	case !physics.IsFinite(c.CustomSlidingRotationalSpeed):
		return &ConfigError{Field: "CustomSlidingRotationalSpeed", Reason: "must be finite"}
	}
	return nil
}

// Transform is a wheel hub pose in world space.
type Transform struct {
	Position rl.Vector3
	Rotation rl.Quaternion
}

// WheelState is recomputed every step and read by the bridge and telemetry.
type WheelState struct {
	InContact      bool
	ContactPoint   rl.Vector3
	ContactNormal  rl.Vector3
	GroundDistance float32 // along the ray from the connection point
	GroundBody     *physics.Body

	SuspensionLength           float32
	SuspensionRelativeVelocity float32
	// Inverse of how squarely the ground faces the suspension axis, clipped.
	SuspensionClip  float32
	SuspensionForce float32

	SlipLongitudinal float32
	SlipLateral      float32
	SkidInfo         float32 // 1 while gripping, below 1 while sliding
	Sliding          bool
	ForwardForce     float32
	SideForce        float32

	// Control inputs seen during the step.
	EngineForce float32
	Brake       float32
	Steering    float32

	Rotation      float32
	DeltaRotation float32

	WorldTransform Transform
}

func restingState(cfg WheelConfig) WheelState {
	return WheelState{
		SuspensionLength: cfg.SuspensionRestLength,
		SkidInfo:         1,
		WorldTransform:   Transform{Rotation: rl.QuaternionIdentity()},
	}
}

func isUnit(v rl.Vector3) bool {
	return physics.IsFiniteVector(v) && absf(rl.Vector3Length(v)-1) <= unitTolerance
}

func nonNegative(x float32) bool {
	return physics.IsFinite(x) && x >= 0
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
