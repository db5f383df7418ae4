package storage

import (
	"context"
	"sync"

	"eikon/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	creatures   map[string]model.Creature
	populations map[string]model.PopulationSnapshot
	history     map[string][]float64
	diagnostics map[string][]model.GenerationDiagnostics
	renders     map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.creatures = make(map[string]model.Creature)
	s.populations = make(map[string]model.PopulationSnapshot)
	s.history = make(map[string][]float64)
	s.diagnostics = make(map[string][]model.GenerationDiagnostics)
	s.renders = make(map[string][]byte)
	return nil
}

func (s *MemoryStore) SaveCreature(_ context.Context, creature model.Creature) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	creature.Render = nil
	creature.Genome = append(model.Genome(nil), creature.Genome...)
	s.creatures[creature.ID] = creature
	return nil
}

func (s *MemoryStore) GetCreature(_ context.Context, id string) (model.Creature, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	creature, ok := s.creatures[id]
	if !ok {
		return model.Creature{}, false, nil
	}
	creature.Genome = append(model.Genome(nil), creature.Genome...)
	return creature, true, nil
}

func (s *MemoryStore) SavePopulation(_ context.Context, snapshot model.PopulationSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.populations[snapshot.ID] = copySnapshot(snapshot)
	return nil
}

func (s *MemoryStore) GetPopulation(_ context.Context, id string) (model.PopulationSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.populations[id]
	if !ok {
		return model.PopulationSnapshot{}, false, nil
	}
	return copySnapshot(snapshot), true, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[runID] = append([]float64(nil), history...)
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]float64(nil), history...), true, nil
}

func (s *MemoryStore) SaveGenerationDiagnostics(_ context.Context, runID string, diagnostics []model.GenerationDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	s.diagnostics[runID] = copied
	return nil
}

func (s *MemoryStore) GetGenerationDiagnostics(_ context.Context, runID string) ([]model.GenerationDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	diagnostics, ok := s.diagnostics[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	return copied, true, nil
}

func (s *MemoryStore) SaveBestRender(_ context.Context, runID string, png []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.renders[runID] = append([]byte(nil), png...)
	return nil
}

func (s *MemoryStore) GetBestRender(_ context.Context, runID string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	png, ok := s.renders[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), png...), true, nil
}

func copySnapshot(snapshot model.PopulationSnapshot) model.PopulationSnapshot {
	creatures := make([]model.Creature, len(snapshot.Creatures))
	for i, creature := range snapshot.Creatures {
		creature.Render = nil
		creature.Genome = append(model.Genome(nil), creature.Genome...)
		creatures[i] = creature
	}
	snapshot.Creatures = creatures
	return snapshot
}
