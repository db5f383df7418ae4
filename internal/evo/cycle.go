package evo

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"eikon/internal/genotype"
	"eikon/internal/model"
)

var (
	// ErrInvalidKeepN reports a cull asked to keep zero or fewer members,
	// which would silently extinguish the population.
	ErrInvalidKeepN = errors.New("keep count must be > 0")

	// ErrEmptyPopulation reports a cycle over a population with no members.
	ErrEmptyPopulation = errors.New("population has no members")
)

// Population is one generation of creatures bound to a shared environment.
// After every completed cycle its members are sorted ascending by fitness
// (best first) and their count equals Size. Cycles never mutate a population
// in place: each produces a new value, so a caller that retains earlier
// populations can still inspect them.
type Population struct {
	Env        *Environment
	Size       int
	Generation int
	Members    []model.Creature
}

// NewPopulation binds seed creatures to an environment. The seed list sets
// the population size for the population's lifetime.
func NewPopulation(env *Environment, members []model.Creature) (Population, error) {
	if env == nil {
		return Population{}, errors.New("environment is required")
	}
	if len(members) == 0 {
		return Population{}, ErrEmptyPopulation
	}
	copied := make([]model.Creature, len(members))
	copy(copied, members)
	return Population{Env: env, Size: len(members), Members: copied}, nil
}

// DefaultKeepN is the default cull survivor count: a third of the
// population, rounded down.
func DefaultKeepN(size int) int {
	return size / 3
}

// Cull retains only the first keepN members. Members must already be in
// fitness order, so the survivors are the fittest keepN.
func Cull(p Population, keepN int) (Population, error) {
	if keepN <= 0 {
		return Population{}, fmt.Errorf("cull population: %w (got %d)", ErrInvalidKeepN, keepN)
	}
	if keepN > len(p.Members) {
		keepN = len(p.Members)
	}
	survivors := make([]model.Creature, keepN)
	copy(survivors, p.Members[:keepN])
	return Population{Env: p.Env, Size: p.Size, Generation: p.Generation, Members: survivors}, nil
}

// Cycle advances populations one generation at a time.
type Cycle struct {
	Rand      *rand.Rand
	Mutation  Operator
	Evaluator Evaluator
}

// NewCycle validates the collaborators a cycle needs.
func NewCycle(rng *rand.Rand, mutation Operator, evaluator Evaluator) (*Cycle, error) {
	if rng == nil {
		return nil, ErrRandSourceRequired
	}
	if mutation == nil {
		return nil, errors.New("mutation operator is required")
	}
	if evaluator.Rasterizer == nil {
		return nil, errors.New("evaluator rasterizer is required")
	}
	return &Cycle{Rand: rng, Mutation: mutation, Evaluator: evaluator}, nil
}

// Bootstrap evaluates and sorts a freshly seeded population so the
// fitness-order invariant holds before the first cull. The generation
// counter is untouched.
func (c *Cycle) Bootstrap(ctx context.Context, p Population) (Population, error) {
	if len(p.Members) == 0 {
		return Population{}, ErrEmptyPopulation
	}

	members, err := c.evaluateAll(ctx, p.Env, p.Members)
	if err != nil {
		return Population{}, err
	}
	sortByFitness(members)
	return Population{Env: p.Env, Size: p.Size, Generation: p.Generation, Members: members}, nil
}

// Regenerate ages every survivor by one, breeds mutated offspring of the
// best survivor crossed with a uniformly drawn survivor (redrawn per
// offspring, with replacement) until the population is back to Size,
// evaluates every member, and returns the next generation sorted ascending
// by fitness.
func (c *Cycle) Regenerate(ctx context.Context, p Population) (Population, error) {
	if len(p.Members) == 0 {
		return Population{}, fmt.Errorf("regenerate: %w", ErrEmptyPopulation)
	}
	if p.Size <= 0 {
		return Population{}, fmt.Errorf("regenerate: population size must be > 0, got %d", p.Size)
	}

	nextGeneration := p.Generation + 1

	members := make([]model.Creature, 0, p.Size)
	for _, survivor := range p.Members {
		survivor.Age++
		members = append(members, survivor)
	}

	best := members[0]
	for len(members) < p.Size {
		if err := ctx.Err(); err != nil {
			return Population{}, err
		}

		other := members[c.Rand.Intn(len(p.Members))]
		childID := fmt.Sprintf("%s-g%d-i%d", best.ID, nextGeneration, len(members))
		child, err := CrossBreed(c.Rand, best, other, childID)
		if err != nil {
			return Population{}, err
		}
		mutated, err := c.Mutation.Apply(ctx, child.Genome)
		if err != nil {
			return Population{}, fmt.Errorf("mutate offspring %s: %w", childID, err)
		}
		child.Genome = mutated
		members = append(members, child)
	}

	members, err := c.evaluateAll(ctx, p.Env, members)
	if err != nil {
		return Population{}, err
	}
	sortByFitness(members)

	return Population{Env: p.Env, Size: p.Size, Generation: nextGeneration, Members: members}, nil
}

// Advance runs one full cull-then-regenerate cycle.
func (c *Cycle) Advance(ctx context.Context, p Population, keepN int) (Population, error) {
	culled, err := Cull(p, keepN)
	if err != nil {
		return Population{}, err
	}
	return c.Regenerate(ctx, culled)
}

func (c *Cycle) evaluateAll(ctx context.Context, env *Environment, members []model.Creature) ([]model.Creature, error) {
	evaluated := make([]model.Creature, 0, len(members))
	for _, member := range members {
		scored, err := c.Evaluator.Evaluate(ctx, member, env)
		if err != nil {
			return nil, err
		}
		evaluated = append(evaluated, scored)
	}
	return evaluated, nil
}

func sortByFitness(members []model.Creature) {
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Fitness < members[j].Fitness
	})
}

// Summarize condenses a population into its generation diagnostics.
func Summarize(p Population) model.GenerationDiagnostics {
	if len(p.Members) == 0 {
		return model.GenerationDiagnostics{Generation: p.Generation}
	}

	diag := model.GenerationDiagnostics{
		Generation:   p.Generation,
		BestFitness:  p.Members[0].Fitness,
		WorstFitness: p.Members[0].Fitness,
	}
	totalFitness := 0.0
	totalGenes := 0
	totalPolygons := 0
	for _, member := range p.Members {
		totalFitness += member.Fitness
		if member.Fitness > diag.WorstFitness {
			diag.WorstFitness = member.Fitness
		}
		if member.Fitness < diag.BestFitness {
			diag.BestFitness = member.Fitness
		}
		totalGenes += len(member.Genome)
		totalPolygons += len(genotype.Decode(member.Genome))
		if member.Age > diag.OldestAge {
			diag.OldestAge = member.Age
		}
	}
	count := float64(len(p.Members))
	diag.MeanFitness = totalFitness / count
	diag.MeanGenomeLen = float64(totalGenes) / count
	diag.MeanPolygonCount = float64(totalPolygons) / count
	return diag
}
