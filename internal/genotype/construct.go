package genotype

import (
	"fmt"

	"eikon/internal/model"
)

// NewCreature produces an empty generation-zero individual. Genomes start
// with no genes at all; insert and append mutations grow them over the
// following cycles.
func NewCreature(id string) model.Creature {
	return model.Creature{
		ID:     id,
		Genome: model.Genome{},
	}
}

// ConstructSeedPopulation builds the generation-zero creature list.
func ConstructSeedPopulation(runID string, size int) ([]model.Creature, error) {
	if size <= 0 {
		return nil, fmt.Errorf("population size must be > 0, got %d", size)
	}
	creatures := make([]model.Creature, 0, size)
	for i := 0; i < size; i++ {
		creatures = append(creatures, NewCreature(fmt.Sprintf("%s-seed-%d", runID, i)))
	}
	return creatures, nil
}
