// Package tesseract adapts the gosseract client to the ocr.Engine interface.
// It carries the cgo dependency, keeping the parent package buildable without
// a local tesseract installation.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strconv"

	"github.com/otiai10/gosseract/v2"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/ocr"
)

// Config controls the tesseract client setup.
type Config struct {
	// Languages are tesseract language codes, joined for multi-language
	// documents (e.g. ["eng", "deu"]).
	Languages []string `mapstructure:"languages" yaml:"languages" json:"languages"`

	// DPI sets user_defined_dpi for images without density metadata.
	DPI int `mapstructure:"dpi" yaml:"dpi" json:"dpi"`
}

// DefaultConfig returns the standard tesseract setup.
func DefaultConfig() Config {
	return Config{Languages: []string{"eng"}}
}

// Engine runs recognition through a local tesseract installation.
type Engine struct {
	config        Config
	clientFactory func() *gosseract.Client
}

// New creates a tesseract-backed engine.
func New(config Config) *Engine {
	if len(config.Languages) == 0 {
		config.Languages = []string{"eng"}
	}
	return &Engine{config: config, clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize runs one attempt with a fresh client so mode settings never leak
// between attempts.
func (e *Engine) Recognize(ctx context.Context, img image.Image, combo ocr.ModeCombo) (ocr.Output, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Output{}, err
	}

	data, err := encodePNG(img)
	if err != nil {
		return ocr.Output{}, err
	}

	client := e.clientFactory()
	defer client.Close()

	if err := client.SetImageFromBytes(data); err != nil {
		return ocr.Output{}, fmt.Errorf("set image: %w", err)
	}
	if err := client.SetLanguage(e.config.Languages...); err != nil {
		return ocr.Output{}, fmt.Errorf("set languages: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(combo.PSM)); err != nil {
		return ocr.Output{}, fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := client.SetVariable(gosseract.SettableVariable("tessedit_ocr_engine_mode"),
		strconv.Itoa(int(combo.OEM))); err != nil {
		return ocr.Output{}, fmt.Errorf("set engine mode: %w", err)
	}
	if e.config.DPI > 0 {
		if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"),
			strconv.Itoa(e.config.DPI)); err != nil {
			return ocr.Output{}, fmt.Errorf("set dpi: %w", err)
		}
	}

	text, err := client.Text()
	if err != nil {
		return ocr.Output{}, fmt.Errorf("recognize: %w", err)
	}

	return ocr.Output{Text: text, Words: collectWords(client)}, nil
}

// collectWords reads word-level boxes from the client after Text has run.
// Box errors are not fatal: plain text without positions is still usable.
func collectWords(client *gosseract.Client) []ocr.Word {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return nil
	}
	words := make([]ocr.Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, ocr.Word{
			Text:       b.Word,
			Confidence: b.Confidence / 100.0,
			Box:        b.Box,
		})
	}
	return words
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
