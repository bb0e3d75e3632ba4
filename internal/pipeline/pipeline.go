// Package pipeline orchestrates the document processing chain: image
// preparation, the OCR mode ladder, entity matching, and result assembly.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/entities"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/ocr"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/ocr/gvision"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/ocr/tesseract"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/pdf"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/preprocess"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/terms"
)

// Engine names accepted in Config.Engine.
const (
	EngineTesseract = "tesseract"
	EngineGVision   = "gvision"
)

// Config aggregates the configuration of every pipeline stage.
type Config struct {
	// Dictionary is an optional path to a term dictionary file. Empty
	// means the usual locations are searched and the built-in vocabulary
	// is the fallback.
	Dictionary string `mapstructure:"dictionary" yaml:"dictionary" json:"dictionary"`

	// Engine selects the recognition backend by name.
	Engine string `mapstructure:"engine" yaml:"engine" json:"engine"`

	Preprocess preprocess.Config `mapstructure:"preprocess" yaml:"preprocess" json:"preprocess"`
	OCR        ocr.Config        `mapstructure:"ocr"        yaml:"ocr"        json:"ocr"`
	Tesseract  tesseract.Config  `mapstructure:"tesseract"  yaml:"tesseract"  json:"tesseract"`
	Matcher    entities.Config   `mapstructure:"matcher"    yaml:"matcher"    json:"matcher"`
	PDF        PDFConfig         `mapstructure:"pdf"        yaml:"pdf"        json:"pdf"`

	ExtractFields bool `mapstructure:"extract_fields" yaml:"extract_fields" json:"extract_fields"`
	LinkDosages   bool `mapstructure:"link_dosages"   yaml:"link_dosages"   json:"link_dosages"`
}

// PDFConfig controls how PDF documents are handled.
type PDFConfig struct {
	// UseTextLayer routes pages with a usable embedded text layer past
	// recognition.
	UseTextLayer bool `mapstructure:"use_text_layer" yaml:"use_text_layer" json:"use_text_layer"`

	Analyzer pdf.AnalyzerConfig `mapstructure:"analyzer" yaml:"analyzer" json:"analyzer"`

	// Credentials unlock password-protected documents.
	Credentials pdf.Credentials `mapstructure:"credentials" yaml:"credentials" json:"credentials"`
}

// DefaultConfig returns the standard chain configuration: every stage
// enabled, tesseract backend, built-in vocabulary.
func DefaultConfig() Config {
	return Config{
		Engine:     EngineTesseract,
		Preprocess: preprocess.DefaultConfig(),
		OCR:        ocr.DefaultConfig(),
		Tesseract:  tesseract.DefaultConfig(),
		Matcher:    entities.DefaultConfig(),
		PDF: PDFConfig{
			UseTextLayer: true,
			Analyzer:     pdf.DefaultAnalyzerConfig(),
		},
		ExtractFields: true,
		LinkDosages:   true,
	}
}

// Builder provides a fluent interface for constructing pipelines.
type Builder struct {
	cfg    Config
	dict   *terms.Dictionary
	engine ocr.Engine
}

// NewBuilder creates a pipeline builder with default configuration.
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithDictionary uses an already loaded term dictionary.
func (b *Builder) WithDictionary(dict *terms.Dictionary) *Builder {
	if dict != nil {
		b.dict = dict
	}
	return b
}

// WithDictionaryFile loads the vocabulary from the given file.
func (b *Builder) WithDictionaryFile(path string) *Builder {
	if path != "" {
		b.cfg.Dictionary = path
	}
	return b
}

// WithEngine injects a recognition engine, overriding the configured backend.
func (b *Builder) WithEngine(engine ocr.Engine) *Builder {
	if engine != nil {
		b.engine = engine
	}
	return b
}

// WithEngineName selects the recognition backend to construct.
func (b *Builder) WithEngineName(name string) *Builder {
	if name != "" {
		b.cfg.Engine = name
	}
	return b
}

// WithPreprocessConfig replaces the image preparation configuration.
func (b *Builder) WithPreprocessConfig(cfg preprocess.Config) *Builder {
	b.cfg.Preprocess = cfg
	return b
}

// WithModeCombos sets the recognition fallback ladder.
func (b *Builder) WithModeCombos(combos ...ocr.ModeCombo) *Builder {
	if len(combos) > 0 {
		b.cfg.OCR.Combos = combos
	}
	return b
}

// WithMinTextLength sets the acceptance threshold for recognized text.
func (b *Builder) WithMinTextLength(n int) *Builder {
	if n > 0 {
		b.cfg.OCR.MinTextLength = n
	}
	return b
}

// WithLanguages sets the tesseract recognition languages.
func (b *Builder) WithLanguages(langs ...string) *Builder {
	if len(langs) > 0 {
		b.cfg.Tesseract.Languages = langs
	}
	return b
}

// WithMatcherConfig replaces the entity matching configuration.
func (b *Builder) WithMatcherConfig(cfg entities.Config) *Builder {
	b.cfg.Matcher = cfg
	return b
}

// WithFieldExtraction toggles regex document field extraction.
func (b *Builder) WithFieldExtraction(enabled bool) *Builder {
	b.cfg.ExtractFields = enabled
	return b
}

// WithDosageLinks toggles numeric dosage association.
func (b *Builder) WithDosageLinks(enabled bool) *Builder {
	b.cfg.LinkDosages = enabled
	return b
}

// Config returns a copy of the current configuration.
func (b *Builder) Config() Config {
	return b.cfg
}

// Validate checks configuration consistency before building.
func (b *Builder) Validate() error {
	if b.cfg.Dictionary != "" {
		if _, err := os.Stat(b.cfg.Dictionary); err != nil {
			return fmt.Errorf("dictionary file not accessible: %w", err)
		}
	}
	if b.engine == nil {
		switch b.cfg.Engine {
		case "", EngineTesseract, EngineGVision:
		default:
			return fmt.Errorf("unknown engine %q", b.cfg.Engine)
		}
	}
	if err := b.cfg.Preprocess.Validate(); err != nil {
		return fmt.Errorf("preprocess: %w", err)
	}
	if err := b.cfg.OCR.Validate(); err != nil {
		return fmt.Errorf("ocr: %w", err)
	}
	if err := b.cfg.Matcher.Validate(); err != nil {
		return fmt.Errorf("matcher: %w", err)
	}
	return nil
}

// Build constructs the pipeline. The term dictionary loads here, so a
// broken vocabulary fails the build before any document is processed.
func (b *Builder) Build() (*Pipeline, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline configuration: %w", err)
	}

	slog.Debug("Building processing pipeline",
		"dictionary", b.cfg.Dictionary,
		"engine", b.cfg.Engine,
		"mode_combos", len(b.cfg.OCR.Combos))

	dict := b.dict
	dictPath := b.cfg.Dictionary
	if dict == nil {
		var err error
		dict, dictPath, err = terms.LoadResolved(b.cfg.Dictionary)
		if err != nil {
			return nil, fmt.Errorf("failed to load term dictionary: %w", err)
		}
	}

	pre, err := preprocess.New(b.cfg.Preprocess)
	if err != nil {
		return nil, fmt.Errorf("failed to create preprocessor: %w", err)
	}

	engine := b.engine
	ownsEngine := false
	if engine == nil {
		engine, err = b.newEngine()
		if err != nil {
			return nil, err
		}
		ownsEngine = true
	}

	extractor, err := ocr.NewExtractor(engine, b.cfg.OCR)
	if err != nil {
		if ownsEngine {
			closeEngine(engine)
		}
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	matcher, err := entities.NewMatcher(dict, b.cfg.Matcher)
	if err != nil {
		if ownsEngine {
			closeEngine(engine)
		}
		return nil, fmt.Errorf("failed to create entity matcher: %w", err)
	}

	p := &Pipeline{
		cfg:        b.cfg,
		dict:       dict,
		dictPath:   dictPath,
		pre:        pre,
		engine:     engine,
		ownsEngine: ownsEngine,
		extractor:  extractor,
		matcher:    matcher,
	}

	slog.Info("Processing pipeline ready",
		"dictionary_terms", dict.Len(),
		"dictionary_file", dictPath,
		"engine", engine.Name())
	return p, nil
}

func (b *Builder) newEngine() (ocr.Engine, error) {
	switch b.cfg.Engine {
	case "", EngineTesseract:
		return tesseract.New(b.cfg.Tesseract), nil
	case EngineGVision:
		eng, err := gvision.New(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create vision engine: %w", err)
		}
		return eng, nil
	default:
		return nil, fmt.Errorf("unknown engine %q", b.cfg.Engine)
	}
}

func closeEngine(engine ocr.Engine) {
	if c, ok := engine.(io.Closer); ok {
		_ = c.Close()
	}
}

// Pipeline runs the document processing chain. It is safe for concurrent
// use once built.
type Pipeline struct {
	cfg        Config
	dict       *terms.Dictionary
	dictPath   string
	pre        *preprocess.Preprocessor
	engine     ocr.Engine
	ownsEngine bool
	extractor  *ocr.Extractor
	matcher    *entities.Matcher
	mu         sync.Mutex
}

// Close releases engine resources. The pipeline must not be used afterwards.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	if p.engine != nil && p.ownsEngine {
		if c, ok := p.engine.(io.Closer); ok {
			if err := c.Close(); err != nil {
				firstErr = fmt.Errorf("failed to close engine: %w", err)
			}
		}
	}
	p.engine = nil
	p.extractor = nil
	p.matcher = nil
	p.pre = nil
	p.dict = nil
	return firstErr
}

// GetConfig returns a copy of the pipeline configuration.
func (p *Pipeline) GetConfig() Config {
	return p.cfg
}

// Dictionary returns the loaded term dictionary.
func (p *Pipeline) Dictionary() *terms.Dictionary {
	return p.dict
}

// Info returns a summary of the pipeline composition.
func (p *Pipeline) Info() map[string]interface{} {
	info := make(map[string]interface{})
	if p.dict != nil {
		info["dictionary_terms"] = p.dict.Len()
		info["dictionary_keys"] = p.dict.Keys()
		if p.dictPath != "" {
			info["dictionary_file"] = p.dictPath
		} else {
			info["dictionary_file"] = "built-in"
		}
	}
	if p.engine != nil {
		info["engine"] = p.engine.Name()
	}
	info["mode_combos"] = len(p.cfg.OCR.Combos)
	info["min_text_length"] = p.cfg.OCR.MinTextLength
	info["preprocess_stages"] = p.cfg.Preprocess.EnabledStages()
	info["max_window"] = p.cfg.Matcher.MaxWindow
	info["field_extraction"] = p.cfg.ExtractFields
	info["dosage_links"] = p.cfg.LinkDosages
	return info
}
