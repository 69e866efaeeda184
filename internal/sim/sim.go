package sim

import (
	"context"
	"errors"
	"fmt"

	"raycar/internal/bridge"
	"raycar/internal/config"
	"raycar/internal/input"
	"raycar/internal/logging"
	"raycar/internal/physics"
	"raycar/internal/telemetry"
	"raycar/internal/vehicle"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
)

// Materials used by the car and the ground it drives on.
var (
	GroundMaterial  = physics.NewMaterial("ground")
	WheelMaterial   = physics.NewMaterial("wheel")
	ChassisMaterial = physics.NewMaterial("chassis")
)

// Simulation owns one world with a single car and drives it frame by frame:
// intents are mapped onto the car, the world advances in fixed steps, then
// poses are pushed out through the bridge.
type Simulation struct {
	World   *physics.World
	Ground  *physics.Body
	Vehicle *vehicle.RaycastVehicle
	Bridge  *bridge.Bridge

	Mapper      input.Mapper
	Intents     input.Intents
	MaxSubSteps int

	// Optional sinks.
	Metrics     *telemetry.Metrics
	Recorder    *telemetry.Recorder
	SampleEvery int

	Logger zerolog.Logger

	frames       uint64
	worldStart   physics.WorldSnapshot
	vehicleStart vehicle.Snapshot
}

// New builds the world, ground plane and car described by cfg. The car is
// attached and its starting state saved for Reset.
func New(cfg *config.Config, logger zerolog.Logger) (*Simulation, error) {
	w := physics.NewWorld()
	// Falling-behind warnings can fire every frame on a slow machine.
	w.Logger = logging.Sampled(logger.With().Str("component", "physics").Logger())
	w.Gravity = cfg.World.Gravity.Vector3()
	w.FixedTimeStep = cfg.World.FixedTimeStep
	w.SolverIterations = cfg.World.SolverIterations

	def := cfg.Materials.Default
	w.DefaultContactMaterial = def.ContactMaterial(nil, nil)
	if err := w.AddContactMaterial(cfg.Materials.WheelGround.ContactMaterial(WheelMaterial, GroundMaterial)); err != nil {
		return nil, err
	}
	if err := w.AddContactMaterial(cfg.Materials.ChassisGround.ContactMaterial(ChassisMaterial, GroundMaterial)); err != nil {
		return nil, err
	}

	ground := physics.NewBody("ground", physics.Static, physics.Plane(), 0)
	ground.Material = GroundMaterial
	if err := w.AddBody(ground); err != nil {
		return nil, err
	}

	chassis := physics.NewBody("chassis", physics.Dynamic, physics.Box(cfg.Chassis.HalfExtents.Vector3()), cfg.Chassis.Mass)
	chassis.Material = ChassisMaterial
	chassis.Position = cfg.Chassis.Start.Vector3()

	v, err := vehicle.New(chassis,
		vehicle.WithName("car"),
		vehicle.WithLogger(logger.With().Str("component", "vehicle").Logger()),
	)
	if err != nil {
		return nil, err
	}
	for _, wc := range cfg.WheelConfigs() {
		if _, err := v.AddWheel(wc); err != nil {
			return nil, err
		}
	}
	if err := v.AttachToWorld(w); err != nil {
		return nil, err
	}

	// Visual-only wheel bodies follow the hubs and never collide.
	wheelBodies := make([]*physics.Body, v.NumWheels())
	for i := range wheelBodies {
		b := physics.NewBody(fmt.Sprintf("wheel-%d", i), physics.Kinematic, physics.Sphere(cfg.Wheel.Radius), 0)
		b.Material = WheelMaterial
		b.CollisionGroup = 0
		if err := w.AddBody(b); err != nil {
			return nil, err
		}
		wheelBodies[i] = b
	}

	s := &Simulation{
		World:       w,
		Ground:      ground,
		Vehicle:     v,
		Bridge:      &bridge.Bridge{Vehicle: v, WheelBodies: wheelBodies},
		Mapper:      cfg.Mapper(),
		Intents:     input.Intents{},
		MaxSubSteps: cfg.World.MaxSubSteps,
		SampleEvery: cfg.Telemetry.SampleEvery,
		Logger:      logger,
	}
	if err := s.Bridge.Sync(); err != nil {
		return nil, err
	}
	s.worldStart = w.Snapshot()
	s.vehicleStart = v.Snapshot()
	return s, nil
}

// AddObstacle registers a static box on the ground material.
func (s *Simulation) AddObstacle(name string, center, halfExtents rl.Vector3, rotation rl.Quaternion) (*physics.Body, error) {
	b := physics.NewBody(name, physics.Static, physics.Box(halfExtents), 0)
	b.Material = GroundMaterial
	b.Position = center
	b.Rotation = rotation
	if err := s.World.AddBody(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Frame maps the current intents onto the car and advances the world by
// frameTime. It returns the number of fixed steps taken.
func (s *Simulation) Frame(ctx context.Context, frameTime float32) (int, error) {
	if err := s.Mapper.Apply(s.Intents, s.Vehicle); err != nil {
		return 0, err
	}

	steps, err := s.World.Advance(frameTime, s.MaxSubSteps)
	if err != nil {
		var deg *vehicle.DegenerateStepError
		if errors.As(err, &deg) {
			s.Logger.Error().Err(err).
				Str("vehicle", s.Vehicle.Name).
				Int("wheel", deg.Wheel).
				Str("quantity", deg.Quantity).
				Uint64("step", s.World.StepCount()).
				Msg("vehicle step rejected")
			if s.Metrics != nil {
				s.Metrics.RecordDegenerate(ctx, s.Vehicle, deg)
			}
		}
		return steps, fmt.Errorf("sim: advance: %w", err)
	}

	if err := s.Bridge.Sync(); err != nil {
		return steps, fmt.Errorf("sim: sync: %w", err)
	}
	s.frames++

	if s.Metrics != nil {
		s.Metrics.RecordFrame(ctx, s.Vehicle, steps)
	}
	if s.Recorder != nil && s.SampleEvery > 0 && s.frames%uint64(s.SampleEvery) == 0 {
		if err := s.Recorder.Record(s.World, s.Vehicle); err != nil {
			s.Logger.Warn().Err(err).Msg("telemetry sample dropped")
		}
	}
	return steps, nil
}

// Frames is the number of completed frames since New or Reset.
func (s *Simulation) Frames() uint64 { return s.frames }

// Reset puts the world and the car back where New left them and releases
// every input.
func (s *Simulation) Reset() error {
	s.World.Restore(s.worldStart)
	if err := s.Vehicle.Restore(s.vehicleStart); err != nil {
		return err
	}
	s.Intents.Reset()
	s.frames = 0
	s.Logger.Info().Msg("simulation reset")
	return s.Bridge.Sync()
}
