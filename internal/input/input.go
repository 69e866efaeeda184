package input

import "fmt"

type Action int

const (
	Accelerate Action = iota
	Reverse
	Brake
	SteerLeft
	SteerRight
)

func (a Action) String() string {
	switch a {
	case Accelerate:
		return "accelerate"
	case Reverse:
		return "reverse"
	case Brake:
		return "brake"
	case SteerLeft:
		return "steer_left"
	case SteerRight:
		return "steer_right"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Intents holds how hard each action is requested this frame, 0 to 1.
// The caller owns it and refills it every frame; absent actions are idle.
type Intents map[Action]float32

func (in Intents) Set(a Action, amount float32) {
	switch {
	case amount < 0:
		amount = 0
	case amount > 1:
		amount = 1
	}
	in[a] = amount
}

// Press is Set(a, 1).
func (in Intents) Press(a Action) {
	in[a] = 1
}

func (in Intents) Get(a Action) float32 {
	return in[a]
}

// Reset releases every action.
func (in Intents) Reset() {
	for a := range in {
		delete(in, a)
	}
}

// Controls is the per-wheel control surface the mapper drives.
type Controls interface {
	NumWheels() int
	SetEngineForce(force float32, wheel int) error
	SetBrake(brake float32, wheel int) error
	SetSteeringValue(angle float32, wheel int) error
}

// Mapper turns intents into wheel controls. Every Apply writes the full
// control state for the wheels it covers, so released inputs return to zero.
type Mapper struct {
	MaxEngineForce float32
	MaxBrake       float32
	MaxSteering    float32 // radians

	DriveWheels []int
	SteerWheels []int
	BrakeWheels []int // empty means every wheel
}

func DefaultMapper() Mapper {
	return Mapper{
		MaxEngineForce: 1000,
		MaxBrake:       1500,
		MaxSteering:    0.4,
		DriveWheels:    []int{0, 1},
		SteerWheels:    []int{0, 1},
	}
}

func (m Mapper) Apply(in Intents, c Controls) error {
	engine := (in.Get(Accelerate) - in.Get(Reverse)) * m.MaxEngineForce
	brake := in.Get(Brake) * m.MaxBrake
	steer := (in.Get(SteerLeft) - in.Get(SteerRight)) * m.MaxSteering

	for _, w := range m.DriveWheels {
		if err := c.SetEngineForce(engine, w); err != nil {
			return fmt.Errorf("input: engine force: %w", err)
		}
	}
	for _, w := range m.SteerWheels {
		if err := c.SetSteeringValue(steer, w); err != nil {
			return fmt.Errorf("input: steering: %w", err)
		}
	}

	brakeWheels := m.BrakeWheels
	if len(brakeWheels) == 0 {
		for w := 0; w < c.NumWheels(); w++ {
			if err := c.SetBrake(brake, w); err != nil {
				return fmt.Errorf("input: brake: %w", err)
			}
		}
		return nil
	}
	for _, w := range brakeWheels {
		if err := c.SetBrake(brake, w); err != nil {
			return fmt.Errorf("input: brake: %w", err)
		}
	}
	return nil
}
