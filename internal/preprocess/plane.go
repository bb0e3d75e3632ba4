package preprocess

import (
	"image"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/mempool"
)

// grayToPlane copies a Gray image into a pooled row-major float32 plane
// with values in [0,255]. The release func returns the buffer to the pool.
func grayToPlane(img *image.Gray) (plane []float32, release func()) {
	b := img.Bounds()
	width := b.Dx()
	height := b.Dy()
	plane = mempool.GetFloat32(width * height)
	for y := range height {
		row := img.Pix[y*img.Stride : y*img.Stride+width]
		for x, v := range row {
			plane[y*width+x] = float32(v)
		}
	}
	return plane, func() { mempool.PutFloat32(plane) }
}

// planeToGray converts a float32 plane back into a Gray image, rounding
// and clamping each value to [0,255].
func planeToGray(plane []float32, width, height int) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, width, height))
	for y := range height {
		row := out.Pix[y*out.Stride : y*out.Stride+width]
		for x := range width {
			row[x] = clampToByte(plane[y*width+x])
		}
	}
	return out
}

func clampToByte(v float32) uint8 {
	r := v + 0.5
	if r <= 0 {
		return 0
	}
	if r >= 255 {
		return 255
	}
	return uint8(r)
}
