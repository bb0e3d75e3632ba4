// Package ocr defines the engine-agnostic recognition contract and the
// mode fallback ladder used to coax text out of difficult documents.
package ocr

import (
	"context"
	"fmt"
	"image"
)

// PageSegMode controls how the engine segments the page before recognizing.
// Values follow the tesseract --psm numbering.
type PageSegMode int

const (
	PSMAutoOSD      PageSegMode = 1
	PSMAuto         PageSegMode = 3
	PSMSingleColumn PageSegMode = 4
	PSMSingleBlock  PageSegMode = 6
	PSMSingleLine   PageSegMode = 7
	PSMSparseText   PageSegMode = 11
)

// EngineMode selects the recognition model family, following tesseract --oem.
type EngineMode int

const (
	EngineLegacy  EngineMode = 0
	EngineNeural  EngineMode = 1
	EngineDefault EngineMode = 3
)

// ModeCombo pairs a page segmentation mode with an engine mode. The fallback
// ladder is an ordered list of these.
type ModeCombo struct {
	PSM PageSegMode `mapstructure:"psm" yaml:"psm" json:"psm"`
	OEM EngineMode  `mapstructure:"oem" yaml:"oem" json:"oem"`
}

func (c ModeCombo) String() string {
	return fmt.Sprintf("psm=%d oem=%d", c.PSM, c.OEM)
}

// Word is one recognized token with its page position and confidence in [0, 1].
// A negative confidence means the engine did not report one.
type Word struct {
	Text       string
	Confidence float64
	Box        image.Rectangle
}

// Output is the raw result of a single recognition attempt.
type Output struct {
	Text  string
	Words []Word
}

// Engine runs one recognition attempt with the given mode combination.
// Implementations live in subpackages so this package stays cgo-free.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image, combo ModeCombo) (Output, error)
}
