package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"

	"raycar/internal/config"
	"raycar/internal/game"
	"raycar/internal/logging"
	"raycar/internal/sim"
	"raycar/internal/telemetry"
)

var configPath = flag.String("config", "", "Config file (json, yaml or toml)")

func main() {
	flag.Parse()

	// Change working directory to executable location for deployed builds.
	// Skip this for "go run" which puts the binary in a temp directory.
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		if !strings.Contains(execDir, "go-build") && *configPath == "" {
			os.Chdir(execDir)
		}
	}

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
	if cfg.Telemetry.Enabled {
		rec, err := telemetry.Open(cfg.Telemetry.DBPath, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("opening telemetry")
		}
		defer rec.Close()
		if _, err := rec.StartRun(s.Vehicle.Name, cfg); err != nil {
			logger.Fatal().Err(err).Msg("starting telemetry run")
		}
		s.Recorder = rec
	}

	game.New(cfg, s, logger).Run()
}
