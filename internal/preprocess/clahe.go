package preprocess

import (
	"math"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/mempool"
)

const claheBins = 256

// applyCLAHE performs contrast-limited adaptive histogram equalization on
// plane in place. The image is divided into a grid of tiles; each tile
// gets its own clipped-histogram equalization mapping, and every pixel is
// remapped by bilinear interpolation between the four surrounding tile
// mappings. Compensates for uneven lighting across a photographed page.
func applyCLAHE(plane []float32, width, height int, clipLimit float64, grid int) {
	if grid < 1 || width == 0 || height == 0 {
		return
	}
	tilesX := grid
	tilesY := grid
	if tilesX > width {
		tilesX = width
	}
	if tilesY > height {
		tilesY = height
	}
	tileW := (width + tilesX - 1) / tilesX
	tileH := (height + tilesY - 1) / tilesY

	// One equalization lookup table per tile, flattened tile-major.
	luts := mempool.GetFloat64(tilesX * tilesY * claheBins)
	defer mempool.PutFloat64(luts)

	var hist [claheBins]int
	for ty := range tilesY {
		y0 := ty * tileH
		y1 := minInt(y0+tileH, height)
		for tx := range tilesX {
			x0 := tx * tileW
			x1 := minInt(x0+tileW, width)
			buildTileLUT(plane, width, x0, y0, x1, y1, clipLimit, &hist,
				luts[(ty*tilesX+tx)*claheBins:(ty*tilesX+tx+1)*claheBins])
		}
	}

	// Remap each pixel by interpolating between neighboring tile mappings.
	for y := range height {
		gy := float64(y)/float64(tileH) - 0.5
		ty0 := int(math.Floor(gy))
		wy := gy - float64(ty0)
		ty1 := clampInt(ty0+1, 0, tilesY-1)
		ty0 = clampInt(ty0, 0, tilesY-1)

		for x := range width {
			gx := float64(x)/float64(tileW) - 0.5
			tx0 := int(math.Floor(gx))
			wx := gx - float64(tx0)
			tx1 := clampInt(tx0+1, 0, tilesX-1)
			tx0 = clampInt(tx0, 0, tilesX-1)

			v := binOf(plane[y*width+x])
			v00 := luts[(ty0*tilesX+tx0)*claheBins+v]
			v01 := luts[(ty0*tilesX+tx1)*claheBins+v]
			v10 := luts[(ty1*tilesX+tx0)*claheBins+v]
			v11 := luts[(ty1*tilesX+tx1)*claheBins+v]

			top := v00*(1-wx) + v01*wx
			bottom := v10*(1-wx) + v11*wx
			plane[y*width+x] = float32(top*(1-wy) + bottom*wy)
		}
	}
}

// buildTileLUT fills lut with the clipped-histogram equalization mapping
// for the tile covering [x0,x1)x[y0,y1).
func buildTileLUT(plane []float32, width, x0, y0, x1, y1 int, clipLimit float64, hist *[claheBins]int, lut []float64) {
	for i := range hist {
		hist[i] = 0
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[binOf(plane[y*width+x])]++
		}
	}

	tilePixels := (x1 - x0) * (y1 - y0)
	if tilePixels == 0 {
		for i := range lut {
			lut[i] = float64(i)
		}
		return
	}

	// Clip the histogram and redistribute the excess evenly. The leftover
	// from integer division goes to the lowest bins so the result stays
	// deterministic.
	clip := int(clipLimit * float64(tilePixels) / claheBins)
	if clip < 1 {
		clip = 1
	}
	excess := 0
	for i := range hist {
		if hist[i] > clip {
			excess += hist[i] - clip
			hist[i] = clip
		}
	}
	perBin := excess / claheBins
	leftover := excess % claheBins
	for i := range hist {
		hist[i] += perBin
		if i < leftover {
			hist[i]++
		}
	}

	scale := 255.0 / float64(tilePixels)
	cdf := 0
	for i := range hist {
		cdf += hist[i]
		lut[i] = float64(cdf) * scale
	}
}

func binOf(v float32) int {
	b := int(v)
	if b < 0 {
		return 0
	}
	if b >= claheBins {
		return claheBins - 1
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
