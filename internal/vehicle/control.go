package vehicle

import "raycar/internal/physics"

// WheelControl holds the driver inputs for one wheel. Values persist until
// changed; stepping reads them but never writes them.
type WheelControl struct {
	EngineForce float32 // newtons, positive drives forward
	Brake       float32 // newtons at full slip
	Steering    float32 // radians, positive turns left
}

// ControlState is indexed like the vehicle's wheels.
type ControlState []WheelControl

func (c ControlState) clone() ControlState {
	return append(ControlState(nil), c...)
}

func (v *RaycastVehicle) checkIndex(wheel int) error {
	if wheel < 0 || wheel >= len(v.wheels) {
		return &IndexError{Index: wheel, Count: len(v.wheels)}
	}
	return nil
}

func (v *RaycastVehicle) SetEngineForce(force float32, wheel int) error {
	if err := v.checkIndex(wheel); err != nil {
		return err
	}
	v.controls[wheel].EngineForce = force
	return nil
}

// SetBrake sets the brake magnitude for a wheel. Negative or non-finite
// values are rejected and leave the current input unchanged.
func (v *RaycastVehicle) SetBrake(brake float32, wheel int) error {
	if err := v.checkIndex(wheel); err != nil {
		return err
	}
	if !physics.IsFinite(brake) || brake < 0 {
		return &ConfigError{Field: "brake", Reason: "must be a non-negative finite value"}
	}
	v.controls[wheel].Brake = brake
	return nil
}

func (v *RaycastVehicle) SetSteeringValue(angle float32, wheel int) error {
	if err := v.checkIndex(wheel); err != nil {
		return err
	}
	v.controls[wheel].Steering = angle
	return nil
}

// Control returns the current inputs for a wheel.
func (v *RaycastVehicle) Control(wheel int) (WheelControl, error) {
	if err := v.checkIndex(wheel); err != nil {
		return WheelControl{}, err
	}
	return v.controls[wheel], nil
}
