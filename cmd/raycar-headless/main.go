// Drives the car through a scripted course without a window and records
// the run to SQLite.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"raycar/internal/config"
	"raycar/internal/logging"
	"raycar/internal/sim"
	"raycar/internal/telemetry"
)

var (
	configPath = flag.String("config", "", "Config file (json, yaml or toml)")
	dbPath     = flag.String("db", "raycar-run.db", "SQLite file for the recorded run, empty for memory")
	frameRate  = flag.Int("fps", 60, "Simulated frames per second")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := logging.New("info", os.Stderr)
		fallback.Fatal().Err(err).Msg("loading config")
	}
	logger := logging.New(cfg.LogLevel, os.Stdout)

	s, err := sim.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("building simulation")
	}
	if err := s.AddCourse(sim.DefaultCourse); err != nil {
		logger.Fatal().Err(err).Msg("building course")
	}
	if s.Metrics, err = telemetry.NewMetrics(); err != nil {
		logger.Fatal().Err(err).Msg("creating metrics")
	}

	rec, err := telemetry.Open(*dbPath, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("opening telemetry")
	}
	run, err := rec.StartRun(s.Vehicle.Name, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("starting telemetry run")
	}
	s.Recorder = rec

	frameTime := 1 / float32(*frameRate)
	frameDur := time.Duration(float64(time.Second) / float64(*frameRate))
	script := sim.DefaultScript

	ctx := context.Background()
	start := time.Now()
	var (
		elapsed time.Duration
		phase   string
		steps   int
	)
	for {
		p, ok := script.Apply(s.Intents, elapsed)
		if !ok {
			break
		}
		if p.Name != phase {
			phase = p.Name
			logger.Info().Str("phase", phase).Dur("at", elapsed).Msg("script phase")
		}

		n, err := s.Frame(ctx, frameTime)
		steps += n
		if err != nil {
			logger.Error().Err(err).Dur("at", elapsed).Msg("run aborted")
			break
		}
		elapsed += frameDur
	}

	if err := rec.Close(); err != nil {
		logger.Error().Err(err).Msg("closing telemetry")
	}

	pos := s.Vehicle.Chassis().Position
	logger.Info().
		Uint("run", run.ID).
		Int("steps", steps).
		Uint64("frames", s.Frames()).
		Float64("sim_time", s.World.Time()).
		Dur("wall_time", time.Since(start).Round(time.Microsecond)).
		Float32("x", pos.X).
		Float32("y", pos.Y).
		Float32("z", pos.Z).
		Float32("speed_kmh", s.Vehicle.CurrentSpeed()).
		Msg("run finished")
}
