package game

import (
	"raycar/internal/input"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Bindings maps each action to the keys that request it.
type Bindings map[input.Action][]int32

func DefaultBindings() Bindings {
	return Bindings{
		input.Accelerate: {rl.KeyW, rl.KeyUp},
		input.Reverse:    {rl.KeyS, rl.KeyDown},
		input.Brake:      {rl.KeySpace},
		input.SteerLeft:  {rl.KeyA, rl.KeyLeft},
		input.SteerRight: {rl.KeyD, rl.KeyRight},
	}
}

// Poll refills in from the keyboard. isDown is rl.IsKeyDown outside tests.
func (b Bindings) Poll(in input.Intents, isDown func(key int32) bool) {
	in.Reset()
	for action, keys := range b {
		for _, k := range keys {
			if isDown(k) {
				in.Press(action)
				break
			}
		}
	}
}
