package evo

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"eikon/internal/model"
)

func testCycle(t *testing.T, seed int64) (*Cycle, *Environment) {
	t.Helper()
	env, err := NewEnvironment(whiteTarget(2, 2), 10)
	if err != nil {
		t.Fatalf("environment: %v", err)
	}
	rng := rand.New(rand.NewSource(seed))
	mutator, err := NewMutator(rng)
	if err != nil {
		t.Fatalf("mutator: %v", err)
	}
	cycle, err := NewCycle(rng, mutator, Evaluator{Rasterizer: &countingRasterizer{}})
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	return cycle, env
}

func seedMembers(n int) []model.Creature {
	members := make([]model.Creature, 0, n)
	for i := 0; i < n; i++ {
		members = append(members, model.Creature{ID: string(rune('a' + i)), Genome: model.Genome{}})
	}
	return members
}

func TestCullKeepsFittest(t *testing.T) {
	p := Population{
		Size: 4,
		Members: []model.Creature{
			{ID: "best", Fitness: 1},
			{ID: "mid", Fitness: 2},
			{ID: "worse", Fitness: 3},
			{ID: "worst", Fitness: 4},
		},
	}

	culled, err := Cull(p, 2)
	if err != nil {
		t.Fatalf("cull: %v", err)
	}
	if len(culled.Members) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(culled.Members))
	}
	if culled.Members[0].ID != "best" || culled.Members[1].ID != "mid" {
		t.Fatalf("unexpected survivors: %s, %s", culled.Members[0].ID, culled.Members[1].ID)
	}
	if culled.Size != 4 {
		t.Fatalf("cull must preserve population size, got %d", culled.Size)
	}
	if len(p.Members) != 4 {
		t.Fatal("cull must not modify the input population")
	}
}

func TestCullRejectsNonPositiveKeep(t *testing.T) {
	p := Population{Size: 3, Members: seedMembers(3)}
	for _, keepN := range []int{0, -1} {
		if _, err := Cull(p, keepN); !errors.Is(err, ErrInvalidKeepN) {
			t.Fatalf("keepN=%d: expected ErrInvalidKeepN, got %v", keepN, err)
		}
	}
}

func TestCullClampsKeepToPopulation(t *testing.T) {
	p := Population{Size: 2, Members: seedMembers(2)}
	culled, err := Cull(p, 10)
	if err != nil {
		t.Fatalf("cull: %v", err)
	}
	if len(culled.Members) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(culled.Members))
	}
}

func TestDefaultKeepN(t *testing.T) {
	cases := []struct{ size, want int }{
		{9, 3},
		{10, 3},
		{30, 10},
		{2, 0},
	}
	for _, tc := range cases {
		if got := DefaultKeepN(tc.size); got != tc.want {
			t.Fatalf("DefaultKeepN(%d) = %d, want %d", tc.size, got, tc.want)
		}
	}
}

func TestBootstrapScoresAndSorts(t *testing.T) {
	ctx := context.Background()
	cycle, env := testCycle(t, 1)

	p, err := NewPopulation(env, seedMembers(5))
	if err != nil {
		t.Fatalf("population: %v", err)
	}
	booted, err := cycle.Bootstrap(ctx, p)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if booted.Generation != 0 {
		t.Fatalf("bootstrap must not advance the generation, got %d", booted.Generation)
	}
	for i, member := range booted.Members {
		if !member.Scored {
			t.Fatalf("member %d not scored", i)
		}
		if i > 0 && booted.Members[i-1].Fitness > member.Fitness {
			t.Fatalf("members not sorted ascending at %d", i)
		}
	}
}

func TestRegenerateRefillsAndAges(t *testing.T) {
	ctx := context.Background()
	cycle, env := testCycle(t, 2)

	p, err := NewPopulation(env, seedMembers(9))
	if err != nil {
		t.Fatalf("population: %v", err)
	}
	booted, err := cycle.Bootstrap(ctx, p)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	next, err := cycle.Advance(ctx, booted, 3)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if next.Generation != 1 {
		t.Fatalf("expected generation 1, got %d", next.Generation)
	}
	if len(next.Members) != 9 {
		t.Fatalf("expected 9 members, got %d", len(next.Members))
	}

	aged, fresh := 0, 0
	for i, member := range next.Members {
		if !member.Scored {
			t.Fatalf("member %d not scored", i)
		}
		switch member.Age {
		case 1:
			aged++
		case 0:
			fresh++
		default:
			t.Fatalf("unexpected age %d", member.Age)
		}
		if i > 0 && next.Members[i-1].Fitness > member.Fitness {
			t.Fatalf("members not sorted ascending at %d", i)
		}
	}
	if aged != 3 {
		t.Fatalf("expected 3 aged survivors, got %d", aged)
	}
	if fresh != 6 {
		t.Fatalf("expected 6 fresh offspring, got %d", fresh)
	}
}

func TestRegenerateProducesNewPopulationValue(t *testing.T) {
	ctx := context.Background()
	cycle, env := testCycle(t, 3)

	p, err := NewPopulation(env, seedMembers(6))
	if err != nil {
		t.Fatalf("population: %v", err)
	}
	booted, err := cycle.Bootstrap(ctx, p)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	before := make([]string, len(booted.Members))
	for i, member := range booted.Members {
		before[i] = member.ID
	}

	if _, err := cycle.Advance(ctx, booted, 2); err != nil {
		t.Fatalf("advance: %v", err)
	}
	for i, member := range booted.Members {
		if member.ID != before[i] {
			t.Fatal("advance modified the previous population")
		}
		if member.Age != 0 {
			t.Fatal("advance aged members of the previous population")
		}
	}
}

func TestRegenerateEmptyPopulation(t *testing.T) {
	cycle, _ := testCycle(t, 4)
	if _, err := cycle.Regenerate(context.Background(), Population{Size: 5}); !errors.Is(err, ErrEmptyPopulation) {
		t.Fatalf("expected ErrEmptyPopulation, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	p := Population{
		Generation: 3,
		Size:       3,
		Members: []model.Creature{
			{ID: "a", Fitness: 10, Age: 2, Genome: make(model.Genome, 11)},
			{ID: "b", Fitness: 20, Age: 0, Genome: make(model.Genome, 5)},
			{ID: "c", Fitness: 30, Age: 1, Genome: make(model.Genome, 2)},
		},
	}

	diag := Summarize(p)
	if diag.Generation != 3 {
		t.Fatalf("unexpected generation: %d", diag.Generation)
	}
	if diag.BestFitness != 10 || diag.WorstFitness != 30 {
		t.Fatalf("unexpected best/worst: %f/%f", diag.BestFitness, diag.WorstFitness)
	}
	if diag.MeanFitness != 20 {
		t.Fatalf("unexpected mean fitness: %f", diag.MeanFitness)
	}
	if diag.MeanGenomeLen != 6 {
		t.Fatalf("unexpected mean genome length: %f", diag.MeanGenomeLen)
	}
	if diag.OldestAge != 2 {
		t.Fatalf("unexpected oldest age: %d", diag.OldestAge)
	}
}
