package storage

import (
	"context"

	"eikon/internal/model"
)

// Store defines persistence operations for evolution run records. Best
// renders are stored as encoded PNG bytes so backends never depend on image
// types.
type Store interface {
	Init(ctx context.Context) error
	SaveCreature(ctx context.Context, creature model.Creature) error
	GetCreature(ctx context.Context, id string) (model.Creature, bool, error)
	SavePopulation(ctx context.Context, snapshot model.PopulationSnapshot) error
	GetPopulation(ctx context.Context, id string) (model.PopulationSnapshot, bool, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SaveGenerationDiagnostics(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error
	GetGenerationDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)
	SaveBestRender(ctx context.Context, runID string, png []byte) error
	GetBestRender(ctx context.Context, runID string) ([]byte, bool, error)
}
