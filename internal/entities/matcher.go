package entities

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/terms"
)

const (
	// DefaultMaxWindow covers the longest multi-word dictionary terms
	// ("three times daily").
	DefaultMaxWindow = 3

	// DefaultDosageWindow is how far, in tokens, an amount may sit from the
	// medication it is attributed to.
	DefaultDosageWindow = 3
)

// Config bounds the matching and dosage-association windows.
type Config struct {
	MaxWindow    int `mapstructure:"max_window" yaml:"max_window" json:"max_window"`
	DosageWindow int `mapstructure:"dosage_window" yaml:"dosage_window" json:"dosage_window"`
}

// DefaultConfig returns the standard window bounds.
func DefaultConfig() Config {
	return Config{MaxWindow: DefaultMaxWindow, DosageWindow: DefaultDosageWindow}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	var errs []error
	if c.MaxWindow < 0 {
		errs = append(errs, fmt.Errorf("max_window must not be negative, got %d", c.MaxWindow))
	}
	if c.DosageWindow < 0 {
		errs = append(errs, fmt.Errorf("dosage_window must not be negative, got %d", c.DosageWindow))
	}
	return errors.Join(errs...)
}

// Entity is one dictionary hit over a span of consecutive tokens.
type Entity struct {
	Category  terms.Category `json:"category"`
	Canonical string         `json:"canonical_term"`

	// Surface is the raw text slice from the first token's start to the
	// last token's end, inter-token whitespace included.
	Surface string `json:"surface_text"`

	Start int `json:"start_offset"` // index of the first token in the span
	End   int `json:"end_offset"`   // index one past the last token

	// Confidence is the weakest aligned token confidence over the span,
	// or 1.0 when the engine reported none.
	Confidence float64 `json:"confidence"`
}

// Matcher finds dictionary terms in tokenized text.
type Matcher struct {
	dict   *terms.Dictionary
	config Config
}

// NewMatcher creates a matcher over the given dictionary. Zero-value config
// fields fall back to defaults.
func NewMatcher(dict *terms.Dictionary, config Config) (*Matcher, error) {
	if dict == nil {
		return nil, errors.New("entities: dictionary is nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("entities: invalid config: %w", err)
	}
	if config.MaxWindow == 0 {
		config.MaxWindow = DefaultMaxWindow
	}
	if config.DosageWindow == 0 {
		config.DosageWindow = DefaultDosageWindow
	}
	return &Matcher{dict: dict, config: config}, nil
}

// Config returns the matcher's effective configuration.
func (m *Matcher) Config() Config {
	return m.config
}

// Match scans tokens left to right. At each position the longest window with
// a dictionary hit wins and the scan resumes after the committed span, so
// matches never overlap and are ordered by start. Text with no dictionary
// terms yields an empty slice, never an error.
func (m *Matcher) Match(text string, tokens []Token) []Entity {
	entities := []Entity{}
	for i := 0; i < len(tokens); {
		window := m.config.MaxWindow
		if rest := len(tokens) - i; rest < window {
			window = rest
		}

		matched := false
		for n := window; n >= 1; n-- {
			span := tokens[i : i+n]
			hit, ok := m.lookupSpan(span)
			if !ok {
				continue
			}
			entities = append(entities, Entity{
				Category:   hit.Category,
				Canonical:  hit.Canonical,
				Surface:    text[span[0].Start:span[n-1].End],
				Start:      i,
				End:        i + n,
				Confidence: spanConfidence(span),
			})
			i += n
			matched = true
			break
		}
		if !matched {
			i++
		}
	}
	return entities
}

// MatchText tokenizes and matches in one step, for callers without engine
// word confidences.
func (m *Matcher) MatchText(text string) []Entity {
	return m.Match(text, Tokenize(text))
}

// lookupSpan tries the joined window as-is, then with surrounding
// punctuation stripped from each token ("aspirin," or "(bp)"). Dictionary
// folding handles case and whitespace.
func (m *Matcher) lookupSpan(span []Token) (terms.Match, bool) {
	parts := make([]string, len(span))
	for i, tok := range span {
		parts[i] = tok.Text
	}
	if match, ok := m.dict.Lookup(strings.Join(parts, " ")); ok {
		return match, true
	}

	trimmed := false
	for i, part := range parts {
		clean := strings.TrimFunc(part, unicode.IsPunct)
		if clean != part {
			parts[i] = clean
			trimmed = true
		}
	}
	if !trimmed {
		return terms.Match{}, false
	}
	joined := strings.Join(parts, " ")
	if strings.TrimSpace(joined) == "" {
		return terms.Match{}, false
	}
	return m.dict.Lookup(joined)
}

// spanConfidence is the minimum aligned confidence over the span, or 1.0
// when no token carries one.
func spanConfidence(span []Token) float64 {
	conf := 1.0
	found := false
	for _, tok := range span {
		if tok.Confidence < 0 {
			continue
		}
		if !found || tok.Confidence < conf {
			conf = tok.Confidence
			found = true
		}
	}
	if !found {
		return 1.0
	}
	return conf
}
