package testutil

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDocumentImage(t *testing.T) {
	img, err := GenerateDocumentImage(DefaultDocumentImageConfig())
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, MediumSize.Width, bounds.Dx())
	assert.Equal(t, MediumSize.Height, bounds.Dy())

	// Rendered text means some pixels are no longer background white.
	dark := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r < 0x8000 && g < 0x8000 && b < 0x8000 {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 100, "expected text pixels on the page")
}

func TestGenerateDocumentImage_InvalidSize(t *testing.T) {
	config := DefaultDocumentImageConfig()
	config.Size = ImageSize{0, 100}

	_, err := GenerateDocumentImage(config)
	assert.ErrorContains(t, err, "invalid image size")
}

func TestGenerateDocumentImage_Rotation(t *testing.T) {
	config := DefaultDocumentImageConfig()
	config.Size = SmallSize
	config.Rotation = 90

	img, err := GenerateDocumentImage(config)
	require.NoError(t, err)

	// A 90 degree rotation swaps the dimensions.
	assert.Equal(t, SmallSize.Height, img.Bounds().Dx())
	assert.Equal(t, SmallSize.Width, img.Bounds().Dy())
}

func TestGeneratePrescriptionImage(t *testing.T) {
	img, err := GeneratePrescriptionImage()
	require.NoError(t, err)
	assert.NotNil(t, img)
}

func TestGenerateLabReportImage(t *testing.T) {
	img, err := GenerateLabReportImage()
	require.NoError(t, err)
	assert.NotNil(t, img)
}

func TestAddScanNoise(t *testing.T) {
	img, err := GeneratePrescriptionImage()
	require.NoError(t, err)

	noisy := AddScanNoise(img, 0.02, 42)
	require.Equal(t, img.Bounds(), noisy.Bounds())

	changed := 0
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if img.At(x, y) != noisy.At(x, y) {
				changed++
			}
		}
	}
	assert.Greater(t, changed, 0, "noise should change pixels")

	// Same seed, same speckles.
	again := AddScanNoise(img, 0.02, 42)
	assert.Equal(t, noisy.Pix, again.Pix)
}

func TestSaveAndLoadImage(t *testing.T) {
	img, err := GeneratePrescriptionImage()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "rx", "prescription.png")
	SaveImage(t, img, path)
	require.True(t, FileExists(path))

	loaded := LoadImage(t, path)
	assert.Equal(t, img.Bounds(), loaded.Bounds())
}

func TestLoadImageFile_Errors(t *testing.T) {
	_, err := LoadImageFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorContains(t, err, "failed to open")

	bad := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o600))
	_, err = LoadImageFile(bad)
	assert.ErrorContains(t, err, "failed to decode")
}

func TestPrescriptionLines(t *testing.T) {
	lines := PrescriptionLines()
	assert.NotEmpty(t, lines)

	joined := ""
	for _, l := range lines {
		joined += l + "\n"
	}
	assert.Contains(t, joined, "Aspirin")
	assert.Contains(t, joined, "mg")
}

func TestGenerateDocumentImage_CustomColors(t *testing.T) {
	config := DefaultDocumentImageConfig()
	config.Size = SmallSize
	config.Background = color.RGBA{248, 248, 248, 255}
	config.Foreground = color.RGBA{32, 32, 32, 255}

	img, err := GenerateDocumentImage(config)
	require.NoError(t, err)
	assert.NotNil(t, img)
}
