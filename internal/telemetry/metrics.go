package telemetry

import (
	"context"
	"fmt"

	"raycar/internal/vehicle"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "raycar/internal/telemetry"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics publishes simulation counters through the global OTel meter
// provider. Without a configured provider every instrument is a no-op.
type Metrics struct {
	steps      metric.Int64Counter
	degenerate metric.Int64Counter
	airborne   metric.Int64Counter
	speed      metric.Float64Histogram
}

func NewMetrics() (*Metrics, error) {
	return newMetrics(meter())
}

func newMetrics(m metric.Meter) (*Metrics, error) {
	var (
		mt  Metrics
		err error
	)

	mt.steps, err = m.Int64Counter(
		"sim.steps",
		metric.WithDescription("Fixed physics steps taken"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating steps counter: %w", err)
	}

	mt.degenerate, err = m.Int64Counter(
		"vehicle.steps.degenerate",
		metric.WithDescription("Vehicle steps rejected for non-finite wheel values"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating degenerate counter: %w", err)
	}

	mt.airborne, err = m.Int64Counter(
		"vehicle.wheels.airborne",
		metric.WithDescription("Wheel samples taken without ground contact"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating airborne counter: %w", err)
	}

	mt.speed, err = m.Float64Histogram(
		"vehicle.speed",
		metric.WithDescription("Forward chassis speed"),
		metric.WithUnit("km/h"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating speed histogram: %w", err)
	}

	return &mt, nil
}

// RecordFrame reports the steps taken during one frame and the vehicle's
// state at its end.
func (m *Metrics) RecordFrame(ctx context.Context, v *vehicle.RaycastVehicle, steps int) {
	attrs := metric.WithAttributes(attribute.String("vehicle", v.Name))
	m.steps.Add(ctx, int64(steps), attrs)
	if airborne := v.NumWheels() - v.WheelsInContact(); airborne > 0 {
		m.airborne.Add(ctx, int64(airborne), attrs)
	}
	m.speed.Record(ctx, float64(v.CurrentSpeed()), attrs)
}

func (m *Metrics) RecordDegenerate(ctx context.Context, v *vehicle.RaycastVehicle, e *vehicle.DegenerateStepError) {
	m.degenerate.Add(ctx, 1, metric.WithAttributes(
		attribute.String("vehicle", v.Name),
		attribute.Int("wheel", e.Wheel),
		attribute.String("quantity", e.Quantity),
	))
}
