package render

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	xdraw "golang.org/x/image/draw"
)

// DecodeTarget reads a PNG or JPEG raster and scales it, preserving aspect
// ratio, so that its longer side is maxDim pixels. The returned image is the
// reference every candidate in a run is scored against, so the working
// resolution directly controls evaluation cost.
func DecodeTarget(r io.Reader, maxDim int) (*image.RGBA, error) {
	if maxDim <= 0 {
		return nil, fmt.Errorf("max dimension must be > 0, got %d", maxDim)
	}

	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode target image: %w", err)
	}

	srcBounds := src.Bounds()
	srcW := srcBounds.Dx()
	srcH := srcBounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, fmt.Errorf("target image is empty")
	}

	dstW, dstH := srcW, srcH
	if srcW > maxDim || srcH > maxDim {
		if srcW >= srcH {
			dstW = maxDim
			dstH = srcH * maxDim / srcW
		} else {
			dstH = maxDim
			dstW = srcW * maxDim / srcH
		}
		if dstW < 1 {
			dstW = 1
		}
		if dstH < 1 {
			dstH = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, srcBounds, xdraw.Src, nil)
	return dst, nil
}
