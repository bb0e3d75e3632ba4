package testutil

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // register decoder for LoadImageFile
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ImageSize represents common document image dimensions.
type ImageSize struct {
	Width  int
	Height int
}

var (
	SmallSize  = ImageSize{320, 240}
	MediumSize = ImageSize{640, 480}
	LargeSize  = ImageSize{1024, 768}
)

// DocumentImageConfig holds configuration for generating document images.
type DocumentImageConfig struct {
	Lines      []string
	Size       ImageSize
	Background color.Color
	Foreground color.Color
	FontFace   font.Face
	Rotation   float64 // rotation in degrees
	LeftAlign  bool
}

// DefaultDocumentImageConfig returns a default configuration resembling a
// printed prescription.
func DefaultDocumentImageConfig() DocumentImageConfig {
	return DocumentImageConfig{
		Lines:      PrescriptionLines(),
		Size:       MediumSize,
		Background: color.White,
		Foreground: color.Black,
		FontFace:   basicfont.Face7x13,
		LeftAlign:  true,
	}
}

// PrescriptionLines returns the text of a plausible printed prescription.
func PrescriptionLines() []string {
	return []string{
		"City Medical Center",
		"Patient: Jane Smith    DOB: 03/14/1961",
		"Rx",
		"Aspirin 81 mg",
		"Take 1 tablet by mouth once daily",
		"Metformin 500 mg",
		"Take 1 tablet PO BID with meals",
		"Refills: 3",
	}
}

// LabReportLines returns the text of a plausible lab report page.
func LabReportLines() []string {
	return []string{
		"Laboratory Results",
		"Specimen: Blood",
		"Glucose      98 mg/dL",
		"Hemoglobin   13.8 g/dL",
		"WBC          6.1",
		"Creatinine   0.9 mg/dL",
		"TSH          2.1",
	}
}

// GenerateDocumentImage renders the configured lines onto an image the way a
// printed page would look. Pass a rotation to simulate a skewed scan.
func GenerateDocumentImage(config DocumentImageConfig) (*image.RGBA, error) {
	if config.Size.Width <= 0 || config.Size.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", config.Size.Width, config.Size.Height)
	}

	img := image.NewRGBA(image.Rect(0, 0, config.Size.Width, config.Size.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{config.Background}, image.Point{}, draw.Src)

	face := config.FontFace
	if face == nil {
		face = basicfont.Face7x13
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{config.Foreground},
		Face: face,
	}

	lineHeight := face.Metrics().Height.Ceil() * 2
	startY := (config.Size.Height - len(config.Lines)*lineHeight) / 2
	if startY < lineHeight {
		startY = lineHeight
	}

	for i, line := range config.Lines {
		y := startY + i*lineHeight
		x := 20
		if !config.LeftAlign {
			x = (config.Size.Width - font.MeasureString(face, line).Ceil()) / 2
		}
		drawer.Dot = fixed.P(x, y)
		drawer.DrawString(line)
	}

	if config.Rotation != 0 {
		rotated := imaging.Rotate(img, config.Rotation, color.White)
		rgba := image.NewRGBA(rotated.Bounds())
		draw.Draw(rgba, rgba.Bounds(), rotated, rotated.Bounds().Min, draw.Src)
		return rgba, nil
	}

	return img, nil
}

// GeneratePrescriptionImage renders the default prescription text.
func GeneratePrescriptionImage() (*image.RGBA, error) {
	return GenerateDocumentImage(DefaultDocumentImageConfig())
}

// GenerateLabReportImage renders the default lab report text.
func GenerateLabReportImage() (*image.RGBA, error) {
	config := DefaultDocumentImageConfig()
	config.Lines = LabReportLines()
	return GenerateDocumentImage(config)
}

// AddScanNoise flips a fraction of pixels to gray speckles, simulating a
// flatbed scan.
func AddScanNoise(img *image.RGBA, fraction float64, seed int64) *image.RGBA {
	bounds := img.Bounds()
	noisy := image.NewRGBA(bounds)
	draw.Draw(noisy, bounds, img, bounds.Min, draw.Src)

	rng := rand.New(rand.NewSource(seed))
	total := bounds.Dx() * bounds.Dy()
	flips := int(float64(total) * fraction)
	for i := 0; i < flips; i++ {
		x := bounds.Min.X + rng.Intn(bounds.Dx())
		y := bounds.Min.Y + rng.Intn(bounds.Dy())
		v := uint8(rng.Intn(256))
		noisy.Set(x, y, color.RGBA{v, v, v, 255})
	}
	return noisy
}

// SaveImage saves an image as PNG to the specified path, failing the test
// on error.
func SaveImage(t *testing.T, img image.Image, path string) {
	t.Helper()
	require.NoError(t, WriteImageFile(path, img), "Failed to save image %s", path)
}

// WriteImageFile saves an image as PNG to the specified path, creating
// parent directories as needed.
func WriteImageFile(path string, img image.Image) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file %s: %w", path, err)
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode PNG image: %w", err)
	}
	return file.Close()
}

// LoadImage loads an image from the specified path, failing the test on error.
func LoadImage(t *testing.T, path string) image.Image {
	t.Helper()

	img, err := LoadImageFile(path)
	require.NoError(t, err, "Failed to load image %s", path)
	return img
}

// LoadImageFile loads an image from the specified path.
func LoadImageFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return img, nil
}
