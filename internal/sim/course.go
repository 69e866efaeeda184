package sim

import (
	"time"

	"raycar/internal/input"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Obstacle is a static box placed on the ground.
type Obstacle struct {
	Name        string
	Center      rl.Vector3
	HalfExtents rl.Vector3
	Pitch       float32 // radians about the X axis, for ramps
}

// DefaultCourse is a ramp ahead of the start and a few blocks to steer around.
var DefaultCourse = []Obstacle{
	{Name: "ramp", Center: rl.Vector3{Y: -0.3, Z: 30}, HalfExtents: rl.Vector3{X: 3, Y: 0.5, Z: 5}, Pitch: -0.2},
	{Name: "block-1", Center: rl.Vector3{X: 8, Y: 0.5, Z: 15}, HalfExtents: rl.Vector3{X: 1, Y: 0.5, Z: 1}},
	{Name: "block-2", Center: rl.Vector3{X: -8, Y: 0.5, Z: 20}, HalfExtents: rl.Vector3{X: 1, Y: 0.5, Z: 1}},
	{Name: "block-3", Center: rl.Vector3{X: 0, Y: 1, Z: 60}, HalfExtents: rl.Vector3{X: 4, Y: 1, Z: 1}},
}

func (s *Simulation) AddCourse(course []Obstacle) error {
	for _, o := range course {
		rot := rl.QuaternionFromAxisAngle(rl.Vector3{X: 1}, o.Pitch)
		if _, err := s.AddObstacle(o.Name, o.Center, o.HalfExtents, rot); err != nil {
			return err
		}
	}
	return nil
}

// Phase holds a set of intents for a stretch of simulated time.
type Phase struct {
	Name     string
	Duration time.Duration
	Intents  map[input.Action]float32
}

// Script is a timed sequence of phases for unattended drives.
type Script []Phase

// DefaultScript settles, accelerates, turns left, then brakes to a stop.
var DefaultScript = Script{
	{Name: "settle", Duration: 2 * time.Second},
	{Name: "accelerate", Duration: 3 * time.Second, Intents: map[input.Action]float32{input.Accelerate: 1}},
	{Name: "turn", Duration: 3 * time.Second, Intents: map[input.Action]float32{input.Accelerate: 0.6, input.SteerLeft: 0.7}},
	{Name: "brake", Duration: 3 * time.Second, Intents: map[input.Action]float32{input.Brake: 1}},
}

func (sc Script) Duration() time.Duration {
	var d time.Duration
	for _, p := range sc {
		d += p.Duration
	}
	return d
}

// At returns the phase active at elapsed, and false once the script is over.
func (sc Script) At(elapsed time.Duration) (Phase, bool) {
	for _, p := range sc {
		if elapsed < p.Duration {
			return p, true
		}
		elapsed -= p.Duration
	}
	return Phase{}, false
}

// Apply refills in with the phase active at elapsed.
func (sc Script) Apply(in input.Intents, elapsed time.Duration) (Phase, bool) {
	in.Reset()
	p, ok := sc.At(elapsed)
	for a, amount := range p.Intents {
		in.Set(a, amount)
	}
	return p, ok
}
