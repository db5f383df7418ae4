package storage

import (
	"context"
	"image"
	"testing"

	"eikon/internal/model"
)

func TestMemoryStoreCreatureRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := model.Creature{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "c1",
		Age:             2,
		Generation:      5,
		Genome:          model.Genome{0.1, 0.2, 0.3},
		Fitness:         123.5,
		Scored:          true,
		Render:          image.NewRGBA(image.Rect(0, 0, 2, 2)),
	}
	if err := store.SaveCreature(ctx, input); err != nil {
		t.Fatalf("save creature: %v", err)
	}

	output, ok, err := store.GetCreature(ctx, "c1")
	if err != nil {
		t.Fatalf("get creature: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted creature")
	}
	if output.ID != "c1" || output.Fitness != 123.5 || len(output.Genome) != 3 {
		t.Fatalf("unexpected creature: %+v", output)
	}
	if output.Render != nil {
		t.Fatal("cached render must not be persisted")
	}

	// Mutating the returned genome must not leak back into the store.
	output.Genome[0] = 0.9
	again, _, err := store.GetCreature(ctx, "c1")
	if err != nil {
		t.Fatalf("get creature again: %v", err)
	}
	if again.Genome[0] != 0.1 {
		t.Fatal("store returned a shared genome slice")
	}
}

func TestMemoryStoreCreatureMissing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	_, ok, err := store.GetCreature(ctx, "missing")
	if err != nil {
		t.Fatalf("get creature: %v", err)
	}
	if ok {
		t.Fatal("expected missing creature")
	}
}

func TestMemoryStorePopulationRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := model.PopulationSnapshot{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "run-1",
		Generation:      7,
		Creatures: []model.Creature{
			{ID: "a", Fitness: 1, Genome: model.Genome{0.5}},
			{ID: "b", Fitness: 2, Genome: model.Genome{0.6}},
		},
	}
	if err := store.SavePopulation(ctx, input); err != nil {
		t.Fatalf("save population: %v", err)
	}

	output, ok, err := store.GetPopulation(ctx, "run-1")
	if err != nil {
		t.Fatalf("get population: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted population")
	}
	if output.Generation != 7 || len(output.Creatures) != 2 || output.Creatures[1].ID != "b" {
		t.Fatalf("unexpected population: %+v", output)
	}
}

func TestMemoryStoreFitnessHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []float64{900, 850, 700}
	if err := store.SaveFitnessHistory(ctx, "run-1", input); err != nil {
		t.Fatalf("save history: %v", err)
	}
	output, ok, err := store.GetFitnessHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted fitness history")
	}
	if len(output) != len(input) || output[2] != input[2] {
		t.Fatalf("unexpected history: %+v", output)
	}
}

func TestMemoryStoreGenerationDiagnosticsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.GenerationDiagnostics{
		{Generation: 1, BestFitness: 900, MeanFitness: 950, WorstFitness: 990, MeanGenomeLen: 4, MeanPolygonCount: 0.5, OldestAge: 1},
		{Generation: 2, BestFitness: 850, MeanFitness: 920, WorstFitness: 980, MeanGenomeLen: 5, MeanPolygonCount: 0.8, OldestAge: 2},
	}
	if err := store.SaveGenerationDiagnostics(ctx, "run-1", input); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}
	output, ok, err := store.GetGenerationDiagnostics(ctx, "run-1")
	if err != nil {
		t.Fatalf("get diagnostics: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted diagnostics")
	}
	if len(output) != len(input) || output[1].OldestAge != input[1].OldestAge {
		t.Fatalf("unexpected diagnostics: %+v", output)
	}
}

func TestMemoryStoreBestRenderRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []byte{0x89, 0x50, 0x4E, 0x47}
	if err := store.SaveBestRender(ctx, "run-1", input); err != nil {
		t.Fatalf("save render: %v", err)
	}
	output, ok, err := store.GetBestRender(ctx, "run-1")
	if err != nil {
		t.Fatalf("get render: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted render")
	}
	if len(output) != len(input) || output[0] != 0x89 {
		t.Fatalf("unexpected render bytes: %v", output)
	}

	output[0] = 0x00
	again, _, err := store.GetBestRender(ctx, "run-1")
	if err != nil {
		t.Fatalf("get render again: %v", err)
	}
	if again[0] != 0x89 {
		t.Fatal("store returned a shared byte slice")
	}
}
