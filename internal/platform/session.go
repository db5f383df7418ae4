package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"eikon/internal/evo"
	"eikon/internal/genotype"
	"eikon/internal/model"
	"eikon/internal/render"
	"eikon/internal/storage"
)

// Config wires a session to its collaborators. Both are required; callers
// that want persistence off use a storage.MemoryStore.
type Config struct {
	Store      storage.Store
	Rasterizer render.Rasterizer
}

// Session owns one evolution pipeline at a time. It holds no global state:
// two sessions with separate stores are fully independent, and a session
// serializes its own runs with a mutex rather than sharing anything
// process-wide.
type Session struct {
	mu  sync.Mutex
	cfg Config
}

func NewSession(cfg Config) (*Session, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.Rasterizer == nil {
		return nil, errors.New("rasterizer is required")
	}
	return &Session{cfg: cfg}, nil
}

// EvolutionConfig describes one run. Zero-value fields are defaulted by
// RunEvolution where a sane default exists; Target and Generations are
// mandatory.
type EvolutionConfig struct {
	RunID          string
	Target         *image.RGBA
	PopulationSize int
	Generations    int
	KeepN          int
	MaxAge         int
	Seed           int64
	Hook           evo.Hook
}

// EvolutionResult carries everything a caller needs after a run: the
// per-generation best fitness series, per-generation diagnostics, the best
// creature (with its cached render still attached), and the final
// population.
type EvolutionResult struct {
	RunID            string
	BestByGeneration []float64
	Diagnostics      []model.GenerationDiagnostics
	Best             model.Creature
	FinalPopulation  evo.Population
}

const (
	DefaultPopulationSize = 30
	DefaultMaxAge         = 10
)

// RunEvolution seeds a population of empty genomes, advances it one
// generation per configured step, and persists the run's records before
// returning. The hook, when set, observes every generation as it completes.
func (s *Session) RunEvolution(ctx context.Context, cfg EvolutionConfig) (EvolutionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg.Target == nil {
		return EvolutionResult{}, errors.New("target raster is required")
	}
	if cfg.Generations <= 0 {
		return EvolutionResult{}, fmt.Errorf("generations must be > 0, got %d", cfg.Generations)
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.PopulationSize <= 0 {
		cfg.PopulationSize = DefaultPopulationSize
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if err := s.cfg.Store.Init(ctx); err != nil {
		return EvolutionResult{}, fmt.Errorf("init store: %w", err)
	}

	env, err := evo.NewEnvironment(cfg.Target, cfg.MaxAge)
	if err != nil {
		return EvolutionResult{}, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	mutator, err := evo.NewMutator(rng)
	if err != nil {
		return EvolutionResult{}, err
	}
	cycle, err := evo.NewCycle(rng, mutator, evo.Evaluator{Rasterizer: s.cfg.Rasterizer})
	if err != nil {
		return EvolutionResult{}, err
	}

	seeds, err := genotype.ConstructSeedPopulation(cfg.RunID, cfg.PopulationSize)
	if err != nil {
		return EvolutionResult{}, err
	}
	population, err := evo.NewPopulation(env, seeds)
	if err != nil {
		return EvolutionResult{}, err
	}

	driver, err := evo.NewDriver(cycle, population, cfg.KeepN, cfg.Hook)
	if err != nil {
		return EvolutionResult{}, err
	}

	bestByGeneration := make([]float64, 0, cfg.Generations)
	diagnostics := make([]model.GenerationDiagnostics, 0, cfg.Generations)
	for i := 0; i < cfg.Generations; i++ {
		population, err = driver.Step(ctx)
		if err != nil {
			return EvolutionResult{}, fmt.Errorf("generation %d: %w", i+1, err)
		}
		bestByGeneration = append(bestByGeneration, population.Members[0].Fitness)
		diagnostics = append(diagnostics, evo.Summarize(population))
	}

	best := population.Members[0]
	if err := s.persistRun(ctx, cfg.RunID, best, population, bestByGeneration, diagnostics); err != nil {
		return EvolutionResult{}, err
	}

	return EvolutionResult{
		RunID:            cfg.RunID,
		BestByGeneration: bestByGeneration,
		Diagnostics:      diagnostics,
		Best:             best,
		FinalPopulation:  population,
	}, nil
}

// FitnessHistory returns the persisted best-by-generation series for a run.
func (s *Session) FitnessHistory(ctx context.Context, runID string) ([]float64, bool, error) {
	return s.cfg.Store.GetFitnessHistory(ctx, runID)
}

// Diagnostics returns the persisted per-generation diagnostics for a run.
func (s *Session) Diagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error) {
	return s.cfg.Store.GetGenerationDiagnostics(ctx, runID)
}

// BestRender returns the persisted PNG of a run's best creature.
func (s *Session) BestRender(ctx context.Context, runID string) ([]byte, bool, error) {
	return s.cfg.Store.GetBestRender(ctx, runID)
}

// BestCreature returns the persisted best creature of a run.
func (s *Session) BestCreature(ctx context.Context, runID string) (model.Creature, bool, error) {
	return s.cfg.Store.GetCreature(ctx, bestCreatureKey(runID))
}

func (s *Session) persistRun(ctx context.Context, runID string, best model.Creature, population evo.Population, history []float64, diagnostics []model.GenerationDiagnostics) error {
	versions := model.VersionedRecord{
		SchemaVersion: storage.CurrentSchemaVersion,
		CodecVersion:  storage.CurrentCodecVersion,
	}

	stored := best
	stored.VersionedRecord = versions
	stored.ID = bestCreatureKey(runID)
	if err := s.cfg.Store.SaveCreature(ctx, stored); err != nil {
		return fmt.Errorf("save best creature: %w", err)
	}

	creatures := make([]model.Creature, len(population.Members))
	for i, creature := range population.Members {
		creature.VersionedRecord = versions
		creatures[i] = creature
	}
	snapshot := model.PopulationSnapshot{
		VersionedRecord: versions,
		ID:              runID,
		Generation:      population.Generation,
		Creatures:       creatures,
	}
	if err := s.cfg.Store.SavePopulation(ctx, snapshot); err != nil {
		return fmt.Errorf("save population: %w", err)
	}

	if err := s.cfg.Store.SaveFitnessHistory(ctx, runID, history); err != nil {
		return fmt.Errorf("save fitness history: %w", err)
	}
	if err := s.cfg.Store.SaveGenerationDiagnostics(ctx, runID, diagnostics); err != nil {
		return fmt.Errorf("save diagnostics: %w", err)
	}

	if best.Render != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, best.Render); err != nil {
			return fmt.Errorf("encode best render: %w", err)
		}
		if err := s.cfg.Store.SaveBestRender(ctx, runID, buf.Bytes()); err != nil {
			return fmt.Errorf("save best render: %w", err)
		}
	}
	return nil
}

func bestCreatureKey(runID string) string {
	return runID + "-best"
}
