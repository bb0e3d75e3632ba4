package preprocess

import (
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/mempool"
)

// applyAdaptiveThreshold binarizes plane in place. Each pixel is compared
// against the mean of its surrounding blockSize window minus c: above
// becomes background (255), at or below becomes ink (0). The locally
// varying threshold handles non-uniform illumination that defeats any
// single global level.
func applyAdaptiveThreshold(plane []float32, width, height, blockSize int, c float64) {
	if width == 0 || height == 0 {
		return
	}
	half := blockSize / 2

	// Summed-area table over (width+1) x (height+1) for O(1) window sums.
	iw := width + 1
	integral := mempool.GetFloat64(iw * (height + 1))
	defer mempool.PutFloat64(integral)
	for x := range iw {
		integral[x] = 0
	}
	for y := range height {
		rowSum := 0.0
		for x := range width {
			rowSum += float64(plane[y*width+x])
			integral[(y+1)*iw+x+1] = integral[y*iw+x+1] + rowSum
		}
		integral[(y+1)*iw] = 0
	}

	for y := range height {
		y0 := maxInt(y-half, 0)
		y1 := minInt(y+half, height-1)
		for x := range width {
			x0 := maxInt(x-half, 0)
			x1 := minInt(x+half, width-1)

			sum := integral[(y1+1)*iw+x1+1] - integral[y0*iw+x1+1] -
				integral[(y1+1)*iw+x0] + integral[y0*iw+x0]
			area := float64((y1 - y0 + 1) * (x1 - x0 + 1))
			threshold := sum/area - c

			idx := y*width + x
			if float64(plane[idx]) > threshold {
				plane[idx] = 255
			} else {
				plane[idx] = 0
			}
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
