package vehicle

import "math"

// Below this approach speed slip ratios are normalised by a fixed speed so
// they stay bounded when the car is nearly stopped.
const minSlipSpeed float32 = 1

// SuspensionForce returns the spring-damper force along the contact for a
// wheel whose ray-cast result is already in state. Airborne wheels push
// nothing; the result never pulls the chassis down and never exceeds
// MaxSuspensionForce.
func SuspensionForce(cfg WheelConfig, state WheelState, chassisMass float32) float32 {
	if !state.InContact {
		return 0
	}
	compression := cfg.SuspensionRestLength - state.SuspensionLength
	force := cfg.SuspensionStiffness * compression * state.SuspensionClip

	damping := cfg.DampingRelaxation
	if state.SuspensionRelativeVelocity < 0 {
		damping = cfg.DampingCompression
	}
	force -= damping * state.SuspensionRelativeVelocity
	force *= chassisMass

	if force < 0 {
		return 0
	}
	if force > cfg.MaxSuspensionForce {
		return cfg.MaxSuspensionForce
	}
	return force
}

// FrictionForces combines drive, brake and cornering forces for one wheel
// and clamps them to the friction circle of radius FrictionSlip times the
// suspension force. skid is the applied scale, 1 when the tire grips.
func FrictionForces(cfg WheelConfig, state WheelState) (longitudinal, lateral, skid float32) {
	if !state.InContact {
		return 0, 0, 1
	}
	budget := cfg.FrictionSlip * state.SuspensionForce

	longitudinal = state.EngineForce - state.Brake*state.SlipLongitudinal
	lateral = -cfg.SideFrictionStiffness * budget * state.SlipLateral

	magnitude := float32(math.Hypot(float64(longitudinal), float64(lateral)))
	if magnitude <= budget || magnitude == 0 {
		return longitudinal, lateral, 1
	}
	skid = budget / magnitude
	return longitudinal * skid, lateral * skid, skid
}

// slipRatios splits the contact velocity into forward and sideways
// components normalised by the contact speed.
func slipRatios(vLong, vLat, speed float32) (float32, float32) {
	if speed < minSlipSpeed {
		speed = minSlipSpeed
	}
	return vLong / speed, vLat / speed
}
