package genotype

import "eikon/internal/model"

const (
	colorGenes  = 4
	headerGenes = colorGenes + 1

	// MinVertices and MaxVertices bound the vertex count a single count
	// gene can select: floor(3 + 6v) for v in [0,1].
	MinVertices = 3
	MaxVertices = 9
)

// Decode converts a genome into its draw list. It peels polygon records off
// the front of the genome: four color genes, one vertex-count gene, then the
// coordinate genes consumed as consecutive (x,y) pairs. A record whose
// coordinate tail is shorter than requested yields a polygon with as many
// complete pairs as remain; a tail too short to form even a 3-vertex polygon
// is discarded outright. Decode is pure: the same genome always yields the
// same phenotype.
func Decode(genome model.Genome) []model.Polygon {
	polygons := make([]model.Polygon, 0, len(genome)/(headerGenes+2*MinVertices))
	rest := genome
	for len(rest) >= headerGenes {
		color := model.Color{R: rest[0], G: rest[1], B: rest[2], A: rest[3]}
		count := MinVertices + int(6*rest[4])
		if count > MaxVertices {
			count = MaxVertices
		}
		rest = rest[headerGenes:]

		if len(rest) < 2*MinVertices {
			break
		}
		need := 2 * count
		if need > len(rest) {
			need = len(rest)
		}
		pairs := need / 2
		vertices := make([]model.Vertex, 0, pairs)
		for i := 0; i < pairs; i++ {
			vertices = append(vertices, model.Vertex{X: rest[2*i], Y: rest[2*i+1]})
		}
		rest = rest[2*pairs:]

		polygons = append(polygons, model.Polygon{Color: color, Vertices: vertices})
	}
	return polygons
}
