package physics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// clamp restricts a value to a range
func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float32) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// IsFiniteVector reports whether every component of v is finite.
func IsFiniteVector(v rl.Vector3) bool {
	return IsFinite(v.X) && IsFinite(v.Y) && IsFinite(v.Z)
}

// IsFiniteQuaternion reports whether every component of q is finite.
func IsFiniteQuaternion(q rl.Quaternion) bool {
	return IsFinite(q.X) && IsFinite(q.Y) && IsFinite(q.Z) && IsFinite(q.W)
}

// effectiveMass returns the inverse of the generalized mass seen along dir
// at offset r from the centre of mass.
func effectiveMass(b *Body, r, dir rl.Vector3) float32 {
	rxn := rl.Vector3CrossProduct(r, dir)
	angular := rl.Vector3DotProduct(dir, rl.Vector3CrossProduct(b.applyInvInertia(rxn), r))
	return b.invMass + angular
}
