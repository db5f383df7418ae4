package evo

import (
	"context"
	"errors"
	"fmt"
	"image"

	"eikon/internal/genotype"
	"eikon/internal/model"
	"eikon/internal/render"
)

// CompositeOpacity maps a raw alpha gene to the opacity used for
// compositing: 0.25 + 0.5a, always inside [0.25, 0.75]. No polygon can fully
// occlude what lies beneath it or vanish entirely, which keeps every shape's
// contribution visible to the search.
func CompositeOpacity(a float64) float64 {
	return 0.25 + 0.5*a
}

// RenderGenome decodes a genome and rasterizes it at the given resolution,
// substituting each polygon's composite opacity for its raw alpha gene. All
// rendering — evaluation and export alike — goes through here so a genome
// always looks the same at a given size.
func RenderGenome(rasterizer render.Rasterizer, genome model.Genome, width, height int) (*image.RGBA, error) {
	if rasterizer == nil {
		return nil, errors.New("rasterizer is required")
	}

	decoded := genotype.Decode(genome)
	polygons := make([]model.Polygon, len(decoded))
	for i, polygon := range decoded {
		polygon.Color.A = CompositeOpacity(polygon.Color.A)
		polygons[i] = polygon
	}
	return rasterizer.Rasterize(polygons, width, height)
}

// ChannelCyclingDistance sums, in scan order, the absolute difference of a
// single 8-bit channel per pixel, cycling red, green, blue with the pixel
// index. Each channel is sampled at a third of the pixels an exhaustive RGB
// comparison would need; lower is better.
func ChannelCyclingDistance(candidate, target []uint32) (float64, error) {
	if len(candidate) != len(target) {
		return 0, fmt.Errorf("pixel buffer length mismatch: candidate=%d target=%d", len(candidate), len(target))
	}

	var sum int64
	for i := range candidate {
		shift := uint(16 - 8*(i%3))
		cv := int64(candidate[i] >> shift & 0xff)
		tv := int64(target[i] >> shift & 0xff)
		if cv > tv {
			sum += cv - tv
		} else {
			sum += tv - cv
		}
	}
	return float64(sum), nil
}

// Evaluator renders creatures and scores them against an environment.
type Evaluator struct {
	Rasterizer render.Rasterizer
}

// Evaluate returns the creature with fitness set and the cached render
// populated. Rendering is skipped when a cached render is present — the
// cache is only ever invalidated by producing a new genome — but the score
// is recomputed on every call, since scoring is cheap next to rendering.
// A render failure propagates to the caller; there is no sane placeholder
// fitness to invent.
func (e Evaluator) Evaluate(ctx context.Context, creature model.Creature, env *Environment) (model.Creature, error) {
	if env == nil {
		return model.Creature{}, errors.New("environment is required")
	}
	if err := ctx.Err(); err != nil {
		return model.Creature{}, err
	}

	if creature.Render == nil {
		raster, err := RenderGenome(e.Rasterizer, creature.Genome, env.Width, env.Height)
		if err != nil {
			return model.Creature{}, fmt.Errorf("render creature %s: %w", creature.ID, err)
		}
		creature.Render = raster
	}

	fitness, err := ChannelCyclingDistance(render.Pixels(creature.Render), env.Pixels)
	if err != nil {
		return model.Creature{}, fmt.Errorf("score creature %s: %w", creature.ID, err)
	}
	creature.Fitness = fitness
	creature.Scored = true
	return creature, nil
}
