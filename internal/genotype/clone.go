package genotype

import "eikon/internal/model"

// CloneGenome returns an independent copy of a genome.
func CloneGenome(genome model.Genome) model.Genome {
	if genome == nil {
		return nil
	}
	cloned := make(model.Genome, len(genome))
	copy(cloned, genome)
	return cloned
}

// CloneCreature copies a creature under a new identity. The cached render is
// shared deliberately: a clone carries the same genome, so its raster is
// identical until the genome changes, at which point the producing operation
// clears the cache.
func CloneCreature(creature model.Creature, newID string) model.Creature {
	cloned := creature
	cloned.ID = newID
	cloned.Genome = CloneGenome(creature.Genome)
	return cloned
}
