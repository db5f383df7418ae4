package evo

import (
	"errors"
	"image"

	"eikon/internal/render"
)

// Environment is the immutable evaluation context shared by every creature
// in a run: the target raster, its precomputed packed pixel buffer, and the
// working resolution. Loading a new target means building a new Environment,
// never mutating one in place.
//
// MaxAge is carried through the environment schema and incremented against
// by aging, but no cycle logic enforces it.
type Environment struct {
	Target *image.RGBA
	Pixels []uint32
	Width  int
	Height int
	MaxAge int
}

// NewEnvironment derives the packed pixel buffer from the target raster.
func NewEnvironment(target *image.RGBA, maxAge int) (*Environment, error) {
	if target == nil {
		return nil, errors.New("target raster is required")
	}
	bounds := target.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, errors.New("target raster is empty")
	}

	return &Environment{
		Target: target,
		Pixels: render.Pixels(target),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		MaxAge: maxAge,
	}, nil
}
