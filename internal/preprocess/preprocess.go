package preprocess

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"

	// Register decoders for the supported input formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// Stage names recorded in processing metadata, in chain order.
const (
	StageResize    = "resize"
	StageGrayscale = "grayscale"
	StageDenoise   = "denoise"
	StageCLAHE     = "clahe"
	StageThreshold = "adaptive_threshold"
	StageDilate    = "dilate"
)

// UnsupportedFormatError reports input bytes that cannot be decoded as a
// supported image format. The pipeline aborts before invoking OCR.
type UnsupportedFormatError struct {
	Format string
	Err    error
}

func (e *UnsupportedFormatError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("unsupported image format %q: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("unsupported image format: %v", e.Err)
}

func (e *UnsupportedFormatError) Unwrap() error { return e.Err }

// GrayscaleConfig controls the luminance reduction stage.
type GrayscaleConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
}

// DenoiseConfig controls the edge-preserving median filter stage.
type DenoiseConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Radius  int  `mapstructure:"radius"  yaml:"radius"  json:"radius"`
}

// ContrastConfig controls contrast-limited adaptive histogram equalization.
type ContrastConfig struct {
	Enabled   bool    `mapstructure:"enabled"    yaml:"enabled"    json:"enabled"`
	ClipLimit float64 `mapstructure:"clip_limit" yaml:"clip_limit" json:"clip_limit"`
	GridSize  int     `mapstructure:"grid_size"  yaml:"grid_size"  json:"grid_size"`
}

// ThresholdConfig controls adaptive binarization. The threshold for each
// pixel is the local window mean minus C.
type ThresholdConfig struct {
	Enabled   bool    `mapstructure:"enabled"    yaml:"enabled"    json:"enabled"`
	BlockSize int     `mapstructure:"block_size" yaml:"block_size" json:"block_size"`
	C         float64 `mapstructure:"c"          yaml:"c"          json:"c"`
}

// DilateConfig controls morphological stroke thickening after binarization.
type DilateConfig struct {
	Enabled    bool `mapstructure:"enabled"     yaml:"enabled"     json:"enabled"`
	KernelSize int  `mapstructure:"kernel_size" yaml:"kernel_size" json:"kernel_size"`
	Iterations int  `mapstructure:"iterations"  yaml:"iterations"  json:"iterations"`
}

// Config holds the preprocessing chain configuration. Stages run in the
// fixed order grayscale, denoise, clahe, adaptive_threshold, dilate; each
// stage is independently optional.
type Config struct {
	MaxDimension int             `mapstructure:"max_dimension" yaml:"max_dimension" json:"max_dimension"`
	Grayscale    GrayscaleConfig `mapstructure:"grayscale"     yaml:"grayscale"     json:"grayscale"`
	Denoise      DenoiseConfig   `mapstructure:"denoise"       yaml:"denoise"       json:"denoise"`
	Contrast     ContrastConfig  `mapstructure:"contrast"      yaml:"contrast"      json:"contrast"`
	Threshold    ThresholdConfig `mapstructure:"threshold"     yaml:"threshold"     json:"threshold"`
	Dilate       DilateConfig    `mapstructure:"dilate"        yaml:"dilate"        json:"dilate"`
}

// DefaultConfig returns the chain configuration tuned for photographed
// documents: every stage enabled, thresholds matched to typical phone
// captures of printed pages.
func DefaultConfig() Config {
	return Config{
		MaxDimension: 4096,
		Grayscale:    GrayscaleConfig{Enabled: true},
		Denoise:      DenoiseConfig{Enabled: true, Radius: 1},
		Contrast:     ContrastConfig{Enabled: true, ClipLimit: 2.0, GridSize: 8},
		Threshold:    ThresholdConfig{Enabled: true, BlockSize: 11, C: 2.0},
		Dilate:       DilateConfig{Enabled: true, KernelSize: 2, Iterations: 1},
	}
}

// EnabledStages lists the configured stage names in chain order. Resize
// depends on the input size and is reported by Apply only.
func (c Config) EnabledStages() []string {
	var stages []string
	if c.Grayscale.Enabled {
		stages = append(stages, StageGrayscale)
	}
	if c.Denoise.Enabled {
		stages = append(stages, StageDenoise)
	}
	if c.Contrast.Enabled {
		stages = append(stages, StageCLAHE)
	}
	if c.Threshold.Enabled {
		stages = append(stages, StageThreshold)
	}
	if c.Dilate.Enabled {
		stages = append(stages, StageDilate)
	}
	return stages
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	var errs []error
	if c.MaxDimension < 256 {
		errs = append(errs, fmt.Errorf("max_dimension must be at least 256, got %d", c.MaxDimension))
	}
	if c.Denoise.Enabled && c.Denoise.Radius < 1 {
		errs = append(errs, fmt.Errorf("denoise radius must be at least 1, got %d", c.Denoise.Radius))
	}
	if c.Contrast.Enabled {
		if c.Contrast.ClipLimit < 1.0 {
			errs = append(errs, fmt.Errorf("contrast clip_limit must be at least 1.0, got %g", c.Contrast.ClipLimit))
		}
		if c.Contrast.GridSize < 1 {
			errs = append(errs, fmt.Errorf("contrast grid_size must be at least 1, got %d", c.Contrast.GridSize))
		}
	}
	if c.Threshold.Enabled {
		if c.Threshold.BlockSize < 3 {
			errs = append(errs, fmt.Errorf("threshold block_size must be at least 3, got %d", c.Threshold.BlockSize))
		}
		if c.Threshold.BlockSize%2 == 0 {
			errs = append(errs, fmt.Errorf("threshold block_size must be odd, got %d", c.Threshold.BlockSize))
		}
	}
	if c.Dilate.Enabled {
		if c.Dilate.KernelSize < 2 {
			errs = append(errs, fmt.Errorf("dilate kernel_size must be at least 2, got %d", c.Dilate.KernelSize))
		}
		if c.Dilate.Iterations < 1 {
			errs = append(errs, fmt.Errorf("dilate iterations must be at least 1, got %d", c.Dilate.Iterations))
		}
	}
	return errors.Join(errs...)
}

// Preprocessor normalizes raw document images for OCR. It is stateless
// apart from its configuration and safe for concurrent use.
type Preprocessor struct {
	config Config
}

// New creates a Preprocessor with the given configuration.
func New(config Config) (*Preprocessor, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid preprocess config: %w", err)
	}
	return &Preprocessor{config: config}, nil
}

// Config returns the active configuration.
func (p *Preprocessor) Config() Config { return p.config }

// Decode decodes raw image bytes into an image, returning the detected
// format name. Undecodable input fails with *UnsupportedFormatError.
func (p *Preprocessor) Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", &UnsupportedFormatError{Err: errors.New("empty input")}
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &UnsupportedFormatError{Format: sniffFormat(data), Err: err}
	}
	return img, format, nil
}

// Apply runs the enabled chain stages over img in fixed order and returns
// the single-channel result plus the names of the stages applied.
// The transform is fully deterministic: identical input and configuration
// produce byte-identical output.
func (p *Preprocessor) Apply(img image.Image) (*image.Gray, []string) {
	stages := make([]string, 0, 6)
	work := img

	if maxDim := p.config.MaxDimension; maxDim > 0 {
		b := work.Bounds()
		if b.Dx() > maxDim || b.Dy() > maxDim {
			work = imaging.Fit(work, maxDim, maxDim, imaging.Lanczos)
			stages = append(stages, StageResize)
		}
	}

	if p.config.Grayscale.Enabled {
		work = imaging.Grayscale(work)
		stages = append(stages, StageGrayscale)
	}
	if p.config.Denoise.Enabled {
		work = effect.Median(work, float64(p.config.Denoise.Radius))
		stages = append(stages, StageDenoise)
	}

	gray := toGray(work)
	width := gray.Bounds().Dx()
	height := gray.Bounds().Dy()
	if width == 0 || height == 0 {
		return gray, stages
	}

	plane, release := grayToPlane(gray)
	defer release()

	if p.config.Contrast.Enabled {
		applyCLAHE(plane, width, height, p.config.Contrast.ClipLimit, p.config.Contrast.GridSize)
		stages = append(stages, StageCLAHE)
	}
	if p.config.Threshold.Enabled {
		applyAdaptiveThreshold(plane, width, height, p.config.Threshold.BlockSize, p.config.Threshold.C)
		stages = append(stages, StageThreshold)
	}
	if p.config.Dilate.Enabled {
		applyInkDilate(plane, width, height, p.config.Dilate.KernelSize, p.config.Dilate.Iterations)
		stages = append(stages, StageDilate)
	}

	return planeToGray(plane, width, height), stages
}

// Process decodes and preprocesses raw image bytes in one call.
func (p *Preprocessor) Process(data []byte) (*image.Gray, []string, error) {
	img, _, err := p.Decode(data)
	if err != nil {
		return nil, nil, err
	}
	out, stages := p.Apply(img)
	return out, stages, nil
}

// toGray converts any image into a Gray image with zero-based bounds.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// sniffFormat guesses a format name from magic bytes for error messages.
func sniffFormat(data []byte) string {
	switch {
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("%PDF")):
		return "pdf"
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("RIFF")):
		return "webp"
	case len(data) >= 2 && data[0] == 'B' && data[1] == 'M':
		return "bmp"
	default:
		return ""
	}
}
