package preprocess

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func fillPlane(width, height, seed int) []float32 {
	plane := make([]float32, width*height)
	for i := range plane {
		plane[i] = float32((i*seed + seed) % 256)
	}
	return plane
}

// TestApplyAdaptiveThreshold_TwoLevelProperty verifies output is strictly binary.
func TestApplyAdaptiveThreshold_TwoLevelProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("adaptive threshold produces only ink and background values", prop.ForAll(
		func(width, height, seed, blockIdx int) bool {
			if width < 5 || height < 5 || width > 50 || height > 50 {
				return true
			}
			if seed < 1 || seed > 97 {
				return true
			}

			// Odd block sizes only: 3, 5, ..., 15.
			blockSize := 3 + 2*(blockIdx%7)

			plane := fillPlane(width, height, seed)
			applyAdaptiveThreshold(plane, width, height, blockSize, 2.0)

			for _, v := range plane {
				if v != 0 && v != 255 {
					return false
				}
			}
			return true
		},
		gen.IntRange(5, 50),
		gen.IntRange(5, 50),
		gen.IntRange(1, 97),
		gen.IntRange(0, 6),
	))

	properties.TestingRun(t)
}

// TestApplyInkDilate_NeverBrightens verifies dilation only darkens pixels.
func TestApplyInkDilate_NeverBrightens(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("ink dilation decreases or maintains every pixel", prop.ForAll(
		func(width, height, seed, kernelSize, iterations int) bool {
			if width < 5 || height < 5 || width > 40 || height > 40 {
				return true
			}
			if kernelSize < 2 || kernelSize > 5 {
				return true
			}
			if iterations < 1 || iterations > 3 {
				return true
			}

			before := fillPlane(width, height, seed)
			plane := make([]float32, len(before))
			copy(plane, before)

			applyInkDilate(plane, width, height, kernelSize, iterations)

			for i := range plane {
				if plane[i] > before[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(5, 40),
		gen.IntRange(5, 40),
		gen.IntRange(1, 97),
		gen.IntRange(2, 5),
		gen.IntRange(1, 3),
	))

	properties.TestingRun(t)
}

// TestApplyCLAHE_BoundsProperty verifies equalized values stay within byte range.
func TestApplyCLAHE_BoundsProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("contrast equalization keeps values in [0, 255]", prop.ForAll(
		func(width, height, seed, grid int) bool {
			if width < 5 || height < 5 || width > 50 || height > 50 {
				return true
			}
			if grid < 1 || grid > 12 {
				return true
			}

			plane := fillPlane(width, height, seed)
			applyCLAHE(plane, width, height, 2.0, grid)

			for _, v := range plane {
				if v < 0 || v > 255 {
					return false
				}
			}
			return true
		},
		gen.IntRange(5, 50),
		gen.IntRange(5, 50),
		gen.IntRange(1, 97),
		gen.IntRange(1, 12),
	))

	properties.TestingRun(t)
}

// TestPixelStages_Deterministic verifies each stage is a pure function of its input.
func TestPixelStages_Deterministic(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("pixel stages produce identical output on identical input", prop.ForAll(
		func(width, height, seed int) bool {
			if width < 8 || height < 8 || width > 40 || height > 40 {
				return true
			}

			run := func() []float32 {
				plane := fillPlane(width, height, seed)
				applyCLAHE(plane, width, height, 2.0, 8)
				applyAdaptiveThreshold(plane, width, height, 11, 2.0)
				applyInkDilate(plane, width, height, 2, 1)
				return plane
			}

			first := run()
			second := run()
			for i := range first {
				if first[i] != second[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(8, 40),
		gen.IntRange(8, 40),
		gen.IntRange(1, 97),
	))

	properties.TestingRun(t)
}
