package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"eikon/internal/model"
)

// Rasterizer turns an ordered polygon list into a raster. Input order is
// draw order: the first polygon is the bottom layer. Implementations clear
// the canvas to solid white before drawing and composite with alpha
// blending, taking each polygon's alpha channel as the opacity to use.
type Rasterizer interface {
	Rasterize(polygons []model.Polygon, width, height int) (*image.RGBA, error)
}

// Vector renders polygons with the x/image anti-aliased scanline
// rasterizer. The zero value is ready to use and safe for concurrent use.
type Vector struct{}

func (Vector) Rasterize(polygons []model.Polygon, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", width, height)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for _, polygon := range polygons {
		if len(polygon.Vertices) < 3 {
			continue
		}
		rz := vector.NewRasterizer(width, height)
		rz.DrawOp = draw.Over

		first := polygon.Vertices[0]
		rz.MoveTo(float32(first.X*float64(width)), float32(first.Y*float64(height)))
		for _, v := range polygon.Vertices[1:] {
			rz.LineTo(float32(v.X*float64(width)), float32(v.Y*float64(height)))
		}
		rz.ClosePath()

		rz.Draw(dst, dst.Bounds(), image.NewUniform(fillColor(polygon.Color)), image.Point{})
	}
	return dst, nil
}

// fillColor converts fractional channels to premultiplied 8-bit color.
func fillColor(c model.Color) color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: channelByte(clamp01(c.R) * a),
		G: channelByte(clamp01(c.G) * a),
		B: channelByte(clamp01(c.B) * a),
		A: channelByte(a),
	}
}

func channelByte(v float64) uint8 {
	return uint8(math.Round(v * 255))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
