package evo

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"eikon/internal/genotype"
	"eikon/internal/model"
)

// ErrRandSourceRequired reports a mutation constructed without a random
// source. Operators cannot proceed without one.
var ErrRandSourceRequired = errors.New("random source is required")

// DropGene removes the value at a uniformly random index. Genomes too short
// to have an index to drop pass through unchanged.
type DropGene struct {
	Rand *rand.Rand
}

func (o *DropGene) Name() string {
	return "drop_gene"
}

func (o *DropGene) Apply(_ context.Context, genome model.Genome) (model.Genome, error) {
	if o == nil || o.Rand == nil {
		return nil, ErrRandSourceRequired
	}
	if len(genome) == 0 {
		return genotype.CloneGenome(genome), nil
	}

	idx := o.Rand.Intn(len(genome))
	mutated := make(model.Genome, 0, len(genome)-1)
	mutated = append(mutated, genome[:idx]...)
	mutated = append(mutated, genome[idx+1:]...)
	return mutated, nil
}

// InsertGene splices a newly sampled value in at a uniformly random
// position, including one past the end. An interior insertion lands before
// the existing element and carries that element with it, so the genome grows
// by two; insertion at the end grows it by one.
type InsertGene struct {
	Rand *rand.Rand
}

func (o *InsertGene) Name() string {
	return "insert_gene"
}

func (o *InsertGene) Apply(_ context.Context, genome model.Genome) (model.Genome, error) {
	if o == nil || o.Rand == nil {
		return nil, ErrRandSourceRequired
	}

	idx := o.Rand.Intn(len(genome) + 1)
	if idx == len(genome) {
		mutated := make(model.Genome, 0, len(genome)+1)
		mutated = append(mutated, genome...)
		mutated = append(mutated, o.Rand.Float64())
		return mutated, nil
	}

	mutated := make(model.Genome, 0, len(genome)+2)
	mutated = append(mutated, genome[:idx]...)
	mutated = append(mutated, o.Rand.Float64(), genome[idx])
	mutated = append(mutated, genome[idx:]...)
	return mutated, nil
}

// AppendGene adds one newly sampled value at the end.
type AppendGene struct {
	Rand *rand.Rand
}

func (o *AppendGene) Name() string {
	return "append_gene"
}

func (o *AppendGene) Apply(_ context.Context, genome model.Genome) (model.Genome, error) {
	if o == nil || o.Rand == nil {
		return nil, ErrRandSourceRequired
	}

	mutated := make(model.Genome, 0, len(genome)+1)
	mutated = append(mutated, genome...)
	mutated = append(mutated, o.Rand.Float64())
	return mutated, nil
}

// ChangeGene replaces the value at a uniformly random index with a newly
// sampled one. Empty genomes pass through unchanged.
type ChangeGene struct {
	Rand *rand.Rand
}

func (o *ChangeGene) Name() string {
	return "change_gene"
}

func (o *ChangeGene) Apply(_ context.Context, genome model.Genome) (model.Genome, error) {
	if o == nil || o.Rand == nil {
		return nil, ErrRandSourceRequired
	}
	if len(genome) == 0 {
		return genotype.CloneGenome(genome), nil
	}

	mutated := genotype.CloneGenome(genome)
	mutated[o.Rand.Intn(len(mutated))] = o.Rand.Float64()
	return mutated, nil
}

// Mutator draws one operator from its policy per Apply call and applies it
// exactly once. It implements Operator so callers can treat a whole policy
// as a single mutation.
type Mutator struct {
	Rand   *rand.Rand
	Policy []WeightedMutation
}

// NewMutator builds a mutator over the standard four operators, each with
// equal weight so the draw is uniform.
func NewMutator(rng *rand.Rand) (*Mutator, error) {
	if rng == nil {
		return nil, ErrRandSourceRequired
	}
	return &Mutator{
		Rand: rng,
		Policy: []WeightedMutation{
			{Operator: &DropGene{Rand: rng}, Weight: 1},
			{Operator: &InsertGene{Rand: rng}, Weight: 1},
			{Operator: &AppendGene{Rand: rng}, Weight: 1},
			{Operator: &ChangeGene{Rand: rng}, Weight: 1},
		},
	}, nil
}

func (m *Mutator) Name() string {
	return "mutate"
}

func (m *Mutator) Apply(ctx context.Context, genome model.Genome) (model.Genome, error) {
	if m == nil || m.Rand == nil {
		return nil, ErrRandSourceRequired
	}
	if len(m.Policy) == 0 {
		return nil, errors.New("mutation policy is empty")
	}

	total := 0.0
	for i, item := range m.Policy {
		if item.Operator == nil {
			return nil, fmt.Errorf("mutation policy operator is required at index %d", i)
		}
		if item.Weight < 0 {
			return nil, fmt.Errorf("mutation policy weight must be >= 0 at index %d", i)
		}
		total += item.Weight
	}
	if total <= 0 {
		return nil, errors.New("mutation policy requires at least one positive weight")
	}

	pick := m.Rand.Float64() * total
	acc := 0.0
	chosen := m.Policy[len(m.Policy)-1].Operator
	for _, item := range m.Policy {
		acc += item.Weight
		if pick <= acc {
			chosen = item.Operator
			break
		}
	}
	return chosen.Apply(ctx, genome)
}
