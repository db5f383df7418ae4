package evo

import (
	"math/rand"

	"eikon/internal/model"
)

// CrossBreed zips two parent genomes positionally. The child genome is as
// long as the shorter parent — the longer parent's tail is dropped, not
// inherited — and each position comes from either parent with equal
// independent probability. The child starts fresh: age zero, generation one
// past the older parent, no fitness, no cached render.
func CrossBreed(rng *rand.Rand, a, b model.Creature, childID string) (model.Creature, error) {
	if rng == nil {
		return model.Creature{}, ErrRandSourceRequired
	}

	length := len(a.Genome)
	if len(b.Genome) < length {
		length = len(b.Genome)
	}
	genome := make(model.Genome, length)
	for i := 0; i < length; i++ {
		if rng.Intn(2) == 0 {
			genome[i] = a.Genome[i]
		} else {
			genome[i] = b.Genome[i]
		}
	}

	generation := a.Generation
	if b.Generation > generation {
		generation = b.Generation
	}

	return model.Creature{
		ID:         childID,
		Age:        0,
		Generation: generation + 1,
		Genome:     genome,
	}, nil
}
