package evo

import (
	"errors"
	"math/rand"
	"testing"

	"eikon/internal/model"
)

func TestCrossBreedChildLength(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := model.Creature{ID: "a", Generation: 2, Genome: model.Genome{0.1, 0.2, 0.3, 0.4, 0.5}}
	b := model.Creature{ID: "b", Generation: 4, Genome: model.Genome{0.6, 0.7, 0.8}}

	child, err := CrossBreed(rng, a, b, "child")
	if err != nil {
		t.Fatalf("crossbreed: %v", err)
	}
	if len(child.Genome) != 3 {
		t.Fatalf("expected child genome length 3, got %d", len(child.Genome))
	}
	for i, gene := range child.Genome {
		if gene != a.Genome[i] && gene != b.Genome[i] {
			t.Fatalf("position %d not inherited from either parent: %f", i, gene)
		}
	}
}

func TestCrossBreedChildStartsFresh(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	a := model.Creature{ID: "a", Age: 3, Generation: 5, Fitness: 10, Scored: true, Genome: model.Genome{0.1, 0.2}}
	b := model.Creature{ID: "b", Age: 1, Generation: 7, Fitness: 20, Scored: true, Genome: model.Genome{0.3, 0.4}}

	child, err := CrossBreed(rng, a, b, "child")
	if err != nil {
		t.Fatalf("crossbreed: %v", err)
	}
	if child.ID != "child" {
		t.Fatalf("unexpected child id: %s", child.ID)
	}
	if child.Age != 0 {
		t.Fatalf("child age should be 0, got %d", child.Age)
	}
	if child.Generation != 8 {
		t.Fatalf("child generation should be 8, got %d", child.Generation)
	}
	if child.Scored || child.Fitness != 0 {
		t.Fatal("child should carry no fitness")
	}
	if child.Render != nil {
		t.Fatal("child should carry no cached render")
	}
}

func TestCrossBreedMixesBothParents(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	length := 64
	a := model.Creature{ID: "a", Genome: make(model.Genome, length)}
	b := model.Creature{ID: "b", Genome: make(model.Genome, length)}
	for i := 0; i < length; i++ {
		a.Genome[i] = 0.0
		b.Genome[i] = 1.0
	}

	child, err := CrossBreed(rng, a, b, "child")
	if err != nil {
		t.Fatalf("crossbreed: %v", err)
	}
	fromA, fromB := 0, 0
	for _, gene := range child.Genome {
		if gene == 0.0 {
			fromA++
		} else {
			fromB++
		}
	}
	if fromA == 0 || fromB == 0 {
		t.Fatalf("expected genes from both parents, got a=%d b=%d", fromA, fromB)
	}
}

func TestCrossBreedRequiresRand(t *testing.T) {
	_, err := CrossBreed(nil, model.Creature{}, model.Creature{}, "child")
	if !errors.Is(err, ErrRandSourceRequired) {
		t.Fatalf("expected ErrRandSourceRequired, got %v", err)
	}
}
