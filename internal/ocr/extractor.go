package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"
)

// DefaultMinTextLength is the accept threshold for a recognition attempt:
// trimmed output at or above this length stops the ladder.
const DefaultMinTextLength = 10

// DefaultCombos returns the standard fallback ladder: column layout first
// (printed prescriptions), then uniform block, then full auto, each with the
// neural model before the combined one.
func DefaultCombos() []ModeCombo {
	psms := []PageSegMode{PSMSingleColumn, PSMSingleBlock, PSMAuto, PSMAutoOSD}
	oems := []EngineMode{EngineNeural, EngineDefault}
	combos := make([]ModeCombo, 0, len(psms)*len(oems))
	for _, psm := range psms {
		for _, oem := range oems {
			combos = append(combos, ModeCombo{PSM: psm, OEM: oem})
		}
	}
	return combos
}

// Config controls the fallback ladder.
type Config struct {
	// Combos is the ordered ladder of mode combinations to try.
	Combos []ModeCombo `mapstructure:"combos" yaml:"combos" json:"combos"`

	// MinTextLength is the minimum trimmed output length for a combination
	// to be accepted without falling through to the next one.
	MinTextLength int `mapstructure:"min_text_length" yaml:"min_text_length" json:"min_text_length"`
}

// DefaultConfig returns the ladder configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Combos:        DefaultCombos(),
		MinTextLength: DefaultMinTextLength,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	var errs []error
	if c.MinTextLength < 0 {
		errs = append(errs, fmt.Errorf("min_text_length must not be negative, got %d", c.MinTextLength))
	}
	for i, combo := range c.Combos {
		if combo.PSM < 0 || combo.PSM > 13 {
			errs = append(errs, fmt.Errorf("combo %d: psm %d out of range", i, combo.PSM))
		}
		if combo.OEM < 0 || combo.OEM > 3 {
			errs = append(errs, fmt.Errorf("combo %d: oem %d out of range", i, combo.OEM))
		}
	}
	return errors.Join(errs...)
}

// Result is the accepted output of the fallback ladder.
type Result struct {
	Text     string
	Words    []Word
	Combo    ModeCombo   // combination that produced Text
	Attempts []ModeCombo // every combination tried, in order
	Degraded bool        // no attempt reached MinTextLength
	Engine   string
	Duration time.Duration
}

// Extractor drives an Engine through the mode ladder until an attempt
// produces usable text.
type Extractor struct {
	engine Engine
	config Config
}

// NewExtractor creates an extractor over the given engine. Zero-value config
// fields fall back to defaults.
func NewExtractor(engine Engine, config Config) (*Extractor, error) {
	if engine == nil {
		return nil, errors.New("ocr: engine is nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("ocr: invalid config: %w", err)
	}
	if len(config.Combos) == 0 {
		config.Combos = DefaultCombos()
	}
	if config.MinTextLength == 0 {
		config.MinTextLength = DefaultMinTextLength
	}
	return &Extractor{engine: engine, config: config}, nil
}

// EngineName returns the name of the wrapped engine.
func (e *Extractor) EngineName() string {
	return e.engine.Name()
}

// Config returns a copy of the extractor's configuration.
func (e *Extractor) Config() Config {
	cfg := e.config
	cfg.Combos = make([]ModeCombo, len(e.config.Combos))
	copy(cfg.Combos, e.config.Combos)
	return cfg
}

// Extract tries mode combinations in order until one produces text of at
// least MinTextLength trimmed characters. Hints are tried before the
// configured ladder; duplicates are attempted once. When no attempt reaches
// the threshold the longest non-empty output is returned with Degraded set.
// If every attempt yields empty text the error is *ExtractionError.
func (e *Extractor) Extract(ctx context.Context, img image.Image, hints ...ModeCombo) (*Result, error) {
	if img == nil {
		return nil, errors.New("ocr: input image is nil")
	}

	start := time.Now()
	ladder := make([]ModeCombo, 0, len(hints)+len(e.config.Combos))
	seen := make(map[ModeCombo]struct{}, len(hints)+len(e.config.Combos))
	for _, combo := range append(append([]ModeCombo{}, hints...), e.config.Combos...) {
		if _, ok := seen[combo]; ok {
			continue
		}
		seen[combo] = struct{}{}
		ladder = append(ladder, combo)
	}

	var (
		attempts  []ModeCombo
		best      Output
		bestText  string
		bestCombo ModeCombo
		errs      []error
	)

	for _, combo := range ladder {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := e.engine.Recognize(ctx, img, combo)
		attempts = append(attempts, combo)
		if err != nil {
			slog.Debug("recognition attempt failed",
				"engine", e.engine.Name(),
				"combo", combo.String(),
				"error", err)
			errs = append(errs, fmt.Errorf("%s: %w", combo, err))
			continue
		}

		trimmed := strings.TrimSpace(out.Text)
		if len(trimmed) >= e.config.MinTextLength {
			slog.Debug("recognition attempt accepted",
				"engine", e.engine.Name(),
				"combo", combo.String(),
				"chars", len(trimmed),
				"attempts", len(attempts))
			return &Result{
				Text:     trimmed,
				Words:    out.Words,
				Combo:    combo,
				Attempts: attempts,
				Engine:   e.engine.Name(),
				Duration: time.Since(start),
			}, nil
		}
		if len(trimmed) > len(bestText) {
			best = out
			bestText = trimmed
			bestCombo = combo
		}
	}

	if bestText != "" {
		slog.Warn("no recognition attempt reached minimum length, keeping longest output",
			"engine", e.engine.Name(),
			"combo", bestCombo.String(),
			"chars", len(bestText),
			"attempts", len(attempts))
		return &Result{
			Text:     bestText,
			Words:    best.Words,
			Combo:    bestCombo,
			Attempts: attempts,
			Degraded: true,
			Engine:   e.engine.Name(),
			Duration: time.Since(start),
		}, nil
	}

	if len(errs) > 0 && len(errs) == len(attempts) {
		return nil, fmt.Errorf("ocr: every recognition attempt failed: %w", errors.Join(errs...))
	}
	return nil, &ExtractionError{Attempts: attempts}
}
