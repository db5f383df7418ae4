package render

import "image"

// Pixels flattens a raster into scan-order packed 0xRRGGBB values. Alpha is
// dropped: the distance metric only reads color channels. Target and
// candidate rasters must both go through this packing so channel extraction
// stays aligned between them.
func Pixels(img *image.RGBA) []uint32 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	packed := make([]uint32, 0, width*height)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := img.Pix[(y-bounds.Min.Y)*img.Stride:]
		for x := 0; x < width; x++ {
			p := row[x*4:]
			packed = append(packed, uint32(p[0])<<16|uint32(p[1])<<8|uint32(p[2]))
		}
	}
	return packed
}
