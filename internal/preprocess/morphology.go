package preprocess

import (
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/mempool"
)

// applyInkDilate thickens ink strokes in place. Documents carry dark text
// on a light background, so thickening strokes means taking the minimum
// over the kernel neighborhood. Restores glyph connectivity lost to
// binarization of thin or broken strokes.
func applyInkDilate(plane []float32, width, height, kernelSize, iterations int) {
	if kernelSize <= 1 || iterations <= 0 || width == 0 || height == 0 {
		return
	}

	scratch := mempool.GetFloat32(len(plane))
	defer mempool.PutFloat32(scratch)

	// Kernel offsets cover kernelSize pixels anchored at the center,
	// favoring the trailing side for even sizes.
	lo := -((kernelSize - 1) / 2)
	hi := kernelSize / 2

	src := plane
	dst := scratch
	for range iterations {
		for y := range height {
			for x := range width {
				minVal := src[y*width+x]
				for ky := lo; ky <= hi; ky++ {
					ny := y + ky
					if ny < 0 || ny >= height {
						continue
					}
					for kx := lo; kx <= hi; kx++ {
						nx := x + kx
						if nx < 0 || nx >= width {
							continue
						}
						if v := src[ny*width+nx]; v < minVal {
							minVal = v
						}
					}
				}
				dst[y*width+x] = minVal
			}
		}
		src, dst = dst, src
	}

	// After an odd number of iterations the result lives in scratch.
	if iterations%2 == 1 {
		copy(plane, scratch[:len(plane)])
	}
}
