package vehicle

import rl "github.com/gen2brain/raylib-go/raylib"

// Wheel indices produced by FourWheelLayout.
const (
	FrontLeft = iota
	FrontRight
	RearLeft
	RearRight
)

// Layout places four wheels symmetrically around the chassis origin.
type Layout struct {
	HalfTrack        float32 // lateral offset of each wheel
	FrontAxle        float32 // forward offset of the front axle
	RearAxle         float32 // backward offset of the rear axle, as a positive distance
	ConnectionHeight float32
}

// FourWheelLayout returns base copied to the four corners in index order.
func FourWheelLayout(base WheelConfig, l Layout) []WheelConfig {
	corners := [4]struct {
		x, z  float32
		front bool
	}{
		FrontLeft:  {l.HalfTrack, l.FrontAxle, true},
		FrontRight: {-l.HalfTrack, l.FrontAxle, true},
		RearLeft:   {l.HalfTrack, -l.RearAxle, false},
		RearRight:  {-l.HalfTrack, -l.RearAxle, false},
	}

	wheels := make([]WheelConfig, 0, len(corners))
	for _, c := range corners {
		cfg := base
		cfg.ChassisConnectionPointLocal = rl.Vector3{X: c.x, Y: l.ConnectionHeight, Z: c.z}
		cfg.IsFrontWheel = c.front
		wheels = append(wheels, cfg)
	}
	return wheels
}
