package evo

import (
	"context"

	"eikon/internal/model"
)

// Operator is a pure transform over a genome. Implementations never modify
// their input; they return a fresh genome.
type Operator interface {
	Name() string
	Apply(ctx context.Context, genome model.Genome) (model.Genome, error)
}

// WeightedMutation pairs an operator with its selection weight.
type WeightedMutation struct {
	Operator Operator
	Weight   float64
}
