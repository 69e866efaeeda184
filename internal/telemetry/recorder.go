package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"raycar/internal/physics"
	"raycar/internal/vehicle"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrNoRun = errors.New("telemetry: no run started")

// Run is one recorded drive.
type Run struct {
	gorm.Model
	Vehicle   string `gorm:"size:64"`
	StartedAt time.Time
	Config    datatypes.JSON
	Samples   []Sample `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Sample is the vehicle state at the end of one frame.
type Sample struct {
	ID              uint    `gorm:"primarykey"`
	RunID           uint    `gorm:"index:idx_run_id"`
	Step            uint64  `gorm:"index:idx_run_id"`
	SimTime         float64
	PositionX       float32
	PositionY       float32
	PositionZ       float32
	SpeedKmh        float32
	WheelsInContact int
	Wheels          datatypes.JSON
}

// WheelSample is the per-wheel payload stored in Sample.Wheels.
type WheelSample struct {
	Index            int     `json:"index"`
	InContact        bool    `json:"inContact"`
	Ground           string  `json:"ground,omitempty"`
	SuspensionLength float32 `json:"suspensionLength"`
	SuspensionForce  float32 `json:"suspensionForce"`
	SkidInfo         float32 `json:"skidInfo"`
	Sliding          bool    `json:"sliding"`
	EngineForce      float32 `json:"engineForce"`
	Brake            float32 `json:"brake"`
	Steering         float32 `json:"steering"`
	Rotation         float32 `json:"rotation"`
}

// Recorder buffers samples and writes them to SQLite in batches.
type Recorder struct {
	DB        *gorm.DB
	BatchSize int
	Logger    zerolog.Logger

	run     *Run
	pending []Sample
}

// Open connects to the SQLite file at path, or to a private in-memory
// database when path is empty, and migrates the schema.
func Open(path string, log zerolog.Logger) (*Recorder, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        500,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening telemetry db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	// Every pooled connection to :memory: would see its own empty database.
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
	}
	for _, p := range pragmas {
		if err := db.Exec(p).Error; err != nil {
			return nil, fmt.Errorf("setting %q: %w", p, err)
		}
	}

	if err := db.AutoMigrate(&Run{}, &Sample{}); err != nil {
		return nil, fmt.Errorf("migrating telemetry schema: %w", err)
	}

	if path == "" {
		log.Info().Msg("Recording telemetry to in-memory SQLite DB")
	} else {
		log.Info().Str("path", path).Msg("Recording telemetry to SQLite DB")
	}
	return &Recorder{DB: db, BatchSize: 120, Logger: log}, nil
}

// StartRun flushes any previous run and opens a new one. cfg is stored as
// JSON alongside the run.
func (r *Recorder) StartRun(vehicleName string, cfg any) (*Run, error) {
	if err := r.Flush(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding run config: %w", err)
	}
	run := &Run{
		Vehicle:   vehicleName,
		StartedAt: time.Now().UTC(),
		Config:    datatypes.JSON(raw),
	}
	if err := r.DB.Create(run).Error; err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}
	r.run = run
	r.Logger.Debug().Uint("run", run.ID).Str("vehicle", vehicleName).Msg("telemetry run started")
	return run, nil
}

// Record samples the vehicle. Samples reach the database every BatchSize
// records or on Flush.
func (r *Recorder) Record(w *physics.World, v *vehicle.RaycastVehicle) error {
	if r.run == nil {
		return ErrNoRun
	}

	states := v.WheelStates()
	wheels := make([]WheelSample, len(states))
	for i, s := range states {
		ws := WheelSample{
			Index:            i,
			InContact:        s.InContact,
			SuspensionLength: s.SuspensionLength,
			SuspensionForce:  s.SuspensionForce,
			SkidInfo:         s.SkidInfo,
			Sliding:          s.Sliding,
			EngineForce:      s.EngineForce,
			Brake:            s.Brake,
			Steering:         s.Steering,
			Rotation:         s.Rotation,
		}
		if s.GroundBody != nil {
			ws.Ground = s.GroundBody.Name
		}
		wheels[i] = ws
	}
	raw, err := json.Marshal(wheels)
	if err != nil {
		return fmt.Errorf("encoding wheel samples: %w", err)
	}

	pos := v.Chassis().Position
	r.pending = append(r.pending, Sample{
		RunID:           r.run.ID,
		Step:            w.StepCount(),
		SimTime:         w.Time(),
		PositionX:       pos.X,
		PositionY:       pos.Y,
		PositionZ:       pos.Z,
		SpeedKmh:        v.CurrentSpeed(),
		WheelsInContact: v.WheelsInContact(),
		Wheels:          datatypes.JSON(raw),
	})

	if r.BatchSize > 0 && len(r.pending) >= r.BatchSize {
		return r.Flush()
	}
	return nil
}

func (r *Recorder) Flush() error {
	if len(r.pending) == 0 {
		return nil
	}
	if err := r.DB.CreateInBatches(r.pending, len(r.pending)).Error; err != nil {
		return fmt.Errorf("writing %d samples: %w", len(r.pending), err)
	}
	r.Logger.Trace().Int("count", len(r.pending)).Msg("telemetry flushed")
	r.pending = r.pending[:0]
	return nil
}

// Samples loads a run's samples in step order.
func (r *Recorder) Samples(runID uint) ([]Sample, error) {
	var out []Sample
	if err := r.DB.Where("run_id = ?", runID).Order("step").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("loading samples: %w", err)
	}
	return out, nil
}

// WheelSamples decodes the per-wheel payload of s.
func (s Sample) WheelSamples() ([]WheelSample, error) {
	var out []WheelSample
	if err := json.Unmarshal(s.Wheels, &out); err != nil {
		return nil, fmt.Errorf("decoding wheel samples: %w", err)
	}
	return out, nil
}

// Close flushes pending samples and closes the database.
func (r *Recorder) Close() error {
	flushErr := r.Flush()
	sqlDB, err := r.DB.DB()
	if err != nil {
		return errors.Join(flushErr, err)
	}
	return errors.Join(flushErr, sqlDB.Close())
}
