package genotype

import (
	"math/rand"
	"testing"

	"eikon/internal/model"
)

func TestDecodeSingleTriangle(t *testing.T) {
	genome := model.Genome{
		1, 0, 0, 1, // color
		0.0,          // vertex count gene -> 3
		0, 0, 1, 0, 0, 1, // (x,y) pairs
	}

	polygons := Decode(genome)
	if len(polygons) != 1 {
		t.Fatalf("expected 1 polygon, got %d", len(polygons))
	}

	polygon := polygons[0]
	want := model.Color{R: 1, G: 0, B: 0, A: 1}
	if polygon.Color != want {
		t.Fatalf("unexpected color: %+v", polygon.Color)
	}
	vertices := []model.Vertex{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	if len(polygon.Vertices) != len(vertices) {
		t.Fatalf("expected %d vertices, got %d", len(vertices), len(polygon.Vertices))
	}
	for i, v := range vertices {
		if polygon.Vertices[i] != v {
			t.Fatalf("vertex %d: got %+v want %+v", i, polygon.Vertices[i], v)
		}
	}
}

func TestDecodeVertexCountGene(t *testing.T) {
	cases := []struct {
		gene float64
		want int
	}{
		{0.0, 3},
		{0.49, 5},
		{0.5, 6},
		{0.99, 8},
		{1.0, 9},
	}
	for _, tc := range cases {
		genome := model.Genome{0.5, 0.5, 0.5, 0.5, tc.gene}
		for i := 0; i < tc.want; i++ {
			genome = append(genome, 0.1, 0.2)
		}
		polygons := Decode(genome)
		if len(polygons) != 1 {
			t.Fatalf("gene %.2f: expected 1 polygon, got %d", tc.gene, len(polygons))
		}
		if got := len(polygons[0].Vertices); got != tc.want {
			t.Fatalf("gene %.2f: expected %d vertices, got %d", tc.gene, tc.want, got)
		}
	}
}

func TestDecodeShortGenomes(t *testing.T) {
	short := []model.Genome{
		nil,
		{},
		{0.1},
		{0.1, 0.2, 0.3, 0.4},
		{0.1, 0.2, 0.3, 0.4, 0.5},                     // header only
		{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}, // 4 coordinate genes, under the 3-vertex minimum
	}
	for i, genome := range short {
		if got := Decode(genome); len(got) != 0 {
			t.Fatalf("case %d: expected no polygons, got %d", i, len(got))
		}
	}
}

func TestDecodeTruncatedTail(t *testing.T) {
	// Header asks for 9 vertices but only 7 coordinate genes remain: the
	// polygon keeps the 3 complete pairs and the odd gene is dropped.
	genome := model.Genome{0.5, 0.5, 0.5, 0.5, 1.0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7}

	polygons := Decode(genome)
	if len(polygons) != 1 {
		t.Fatalf("expected 1 polygon, got %d", len(polygons))
	}
	if got := len(polygons[0].Vertices); got != 3 {
		t.Fatalf("expected 3 vertices from the truncated tail, got %d", got)
	}
}

func TestDecodeMultiplePolygons(t *testing.T) {
	genome := model.Genome{}
	genome = append(genome, 1, 0, 0, 0.5, 0.0, 0, 0, 1, 0, 0, 1)
	genome = append(genome, 0, 1, 0, 0.5, 0.5)
	for i := 0; i < 6; i++ {
		genome = append(genome, 0.25, 0.75)
	}

	polygons := Decode(genome)
	if len(polygons) != 2 {
		t.Fatalf("expected 2 polygons, got %d", len(polygons))
	}
	if len(polygons[0].Vertices) != 3 {
		t.Fatalf("first polygon: expected 3 vertices, got %d", len(polygons[0].Vertices))
	}
	if len(polygons[1].Vertices) != 6 {
		t.Fatalf("second polygon: expected 6 vertices, got %d", len(polygons[1].Vertices))
	}
}

func TestDecodeVertexBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		genome := make(model.Genome, rng.Intn(120))
		for i := range genome {
			genome[i] = rng.Float64()
		}
		for _, polygon := range Decode(genome) {
			n := len(polygon.Vertices)
			if n < MinVertices || n > MaxVertices {
				t.Fatalf("polygon with %d vertices from genome of length %d", n, len(genome))
			}
		}
	}
}

func TestDecodeDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	genome := make(model.Genome, 64)
	for i := range genome {
		genome[i] = rng.Float64()
	}

	first := Decode(genome)
	second := Decode(genome)
	if len(first) != len(second) {
		t.Fatalf("polygon counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Color != second[i].Color {
			t.Fatalf("polygon %d colors differ", i)
		}
		if len(first[i].Vertices) != len(second[i].Vertices) {
			t.Fatalf("polygon %d vertex counts differ", i)
		}
		for j := range first[i].Vertices {
			if first[i].Vertices[j] != second[i].Vertices[j] {
				t.Fatalf("polygon %d vertex %d differs", i, j)
			}
		}
	}
}

func TestConstructSeedPopulation(t *testing.T) {
	creatures, err := ConstructSeedPopulation("run-1", 5)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	if len(creatures) != 5 {
		t.Fatalf("expected 5 creatures, got %d", len(creatures))
	}
	for i, creature := range creatures {
		if creature.ID == "" {
			t.Fatalf("creature %d has no id", i)
		}
		if len(creature.Genome) != 0 {
			t.Fatalf("creature %d genome should start empty, got %d genes", i, len(creature.Genome))
		}
		if creature.Age != 0 || creature.Generation != 0 {
			t.Fatalf("creature %d should start at age 0 generation 0", i)
		}
	}

	if _, err := ConstructSeedPopulation("run-1", 0); err == nil {
		t.Fatal("expected error for zero population size")
	}
}

func TestCloneCreatureIndependentGenome(t *testing.T) {
	original := model.Creature{ID: "a", Genome: model.Genome{0.1, 0.2, 0.3}}
	clone := CloneCreature(original, "b")

	if clone.ID != "b" {
		t.Fatalf("unexpected clone id: %s", clone.ID)
	}
	clone.Genome[0] = 0.9
	if original.Genome[0] != 0.1 {
		t.Fatal("clone genome shares backing array with original")
	}
}
