package model

import "image"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Genome is a flat ordered sequence of values in [0,1]. Order is significant:
// the decoder consumes it left to right, and length changes under mutation.
type Genome []float64

// Color holds fractional channels in [0,1]. A carries the raw alpha gene,
// not the opacity used for compositing.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Vertex is a resolution-independent coordinate pair in [0,1], scaled to
// pixel space only at render time.
type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polygon is one drawable shape decoded from a genome.
type Polygon struct {
	Color    Color    `json:"color"`
	Vertices []Vertex `json:"vertices"`
}

// Creature is one candidate solution: a genome plus selection bookkeeping.
type Creature struct {
	VersionedRecord
	ID         string  `json:"id"`
	Age        int     `json:"age"`
	Generation int     `json:"generation"`
	Genome     Genome  `json:"genome"`
	Fitness    float64 `json:"fitness"`
	Scored     bool    `json:"scored"`

	// Render caches the creature's rasterization at the environment's
	// resolution. A new genome always starts with a nil cache; the cache is
	// never persisted.
	Render *image.RGBA `json:"-"`
}

// PopulationSnapshot is the persistable view of one generation.
type PopulationSnapshot struct {
	VersionedRecord
	ID         string     `json:"id"`
	Generation int        `json:"generation"`
	Creatures  []Creature `json:"creatures"`
}

// GenerationDiagnostics summarizes one completed cycle.
type GenerationDiagnostics struct {
	Generation       int     `json:"generation"`
	BestFitness      float64 `json:"best_fitness"`
	MeanFitness      float64 `json:"mean_fitness"`
	WorstFitness     float64 `json:"worst_fitness"`
	MeanGenomeLen    float64 `json:"mean_genome_len"`
	MeanPolygonCount float64 `json:"mean_polygon_count"`
	OldestAge        int     `json:"oldest_age"`
}
