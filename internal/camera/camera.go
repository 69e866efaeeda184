package camera

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ChaseCamera trails behind a body's heading and eases toward it.
type ChaseCamera struct {
	Position rl.Vector3
	Target   rl.Vector3

	Distance  float32 // behind the target
	Height    float32 // above the target
	Stiffness float32 // higher catches up faster, per second
	LookSpeed float32

	// Orbit offset around the heading, in degrees.
	Yaw   float32
	Pitch float32

	heading rl.Vector3
	placed  bool
}

func New(distance, height float32) *ChaseCamera {
	return &ChaseCamera{
		Distance:  distance,
		Height:    height,
		Stiffness: 6.0,
		LookSpeed: 0.2,
		heading:   rl.Vector3{Z: 1},
	}
}

// Orbit turns the camera around the target, typically by the mouse delta.
func (c *ChaseCamera) Orbit(dx, dy float32) {
	c.Yaw = float32(math.Remainder(float64(c.Yaw+dx*c.LookSpeed), 360))
	c.Pitch -= dy * c.LookSpeed

	// Clamp pitch
	if c.Pitch > 60 {
		c.Pitch = 60
	}
	if c.Pitch < -20 {
		c.Pitch = -20
	}
}

// ResetOrbit puts the camera straight behind the target again.
func (c *ChaseCamera) ResetOrbit() {
	c.Yaw = 0
	c.Pitch = 0
}

// Follow moves the camera toward its spot behind pos, facing along the
// body's forward (+Z) axis. The first call snaps into place.
func (c *ChaseCamera) Follow(pos rl.Vector3, rot rl.Quaternion, dt float32) {
	forward := rl.Vector3RotateByQuaternion(rl.Vector3{Z: 1}, rot)
	forward.Y = 0
	// Keep the last heading while the body points straight up or down.
	if l := rl.Vector3Length(forward); l > 1e-3 {
		c.heading = rl.Vector3Scale(forward, 1/l)
	}

	desired := c.desiredPosition(pos)
	if !c.placed || dt <= 0 {
		c.Position = desired
		c.placed = true
	} else {
		t := 1 - float32(math.Exp(float64(-c.Stiffness*dt)))
		c.Position = rl.Vector3Lerp(c.Position, desired, t)
	}
	c.Target = pos
}

func (c *ChaseCamera) desiredPosition(pos rl.Vector3) rl.Vector3 {
	yawRad := float64(c.Yaw) * math.Pi / 180
	pitchRad := float64(c.Pitch) * math.Pi / 180

	back := rl.Vector3RotateByAxisAngle(rl.Vector3Negate(c.heading), rl.Vector3{Y: 1}, float32(yawRad))
	horizontal := c.Distance * float32(math.Cos(pitchRad))
	vertical := c.Height + c.Distance*float32(math.Sin(pitchRad))

	return rl.Vector3{
		X: pos.X + back.X*horizontal,
		Y: pos.Y + vertical,
		Z: pos.Z + back.Z*horizontal,
	}
}

func (c *ChaseCamera) GetRaylibCamera() rl.Camera3D {
	return rl.Camera3D{
		Position:   c.Position,
		Target:     c.Target,
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       60,
		Projection: rl.CameraPerspective,
	}
}
