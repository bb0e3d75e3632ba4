package pdf

import "image"

// Strategy tells the caller how to get text out of a page.
type Strategy int

const (
	// StrategyTextLayer reads the embedded text directly.
	StrategyTextLayer Strategy = iota
	// StrategyOCR runs recognition on the page images.
	StrategyOCR
	// StrategySkip drops the page, nothing useful on it.
	StrategySkip
)

func (s Strategy) String() string {
	switch s {
	case StrategyTextLayer:
		return "text_layer"
	case StrategyOCR:
		return "ocr"
	case StrategySkip:
		return "skip"
	default:
		return "unknown"
	}
}

// AnalyzerConfig sets the thresholds for routing pages.
type AnalyzerConfig struct {
	// TextScoreThreshold is the minimum text layer score for the direct path.
	TextScoreThreshold float64 `mapstructure:"text_score_threshold" yaml:"text_score_threshold" json:"text_score_threshold"`

	// MinWords is the minimum word count for a text layer to be trusted.
	MinWords int `mapstructure:"min_words" yaml:"min_words" json:"min_words"`
}

// DefaultAnalyzerConfig returns the routing thresholds used when nothing
// is configured.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		TextScoreThreshold: 0.7,
		MinWords:           5,
	}
}

// PageAnalysis is the routing decision for one page.
type PageAnalysis struct {
	Page       int        `json:"page"`
	Strategy   Strategy   `json:"strategy"`
	TextLayer  *TextLayer `json:"text_layer,omitempty"`
	ImageCount int        `json:"image_count"`
	Reason     string     `json:"reason"`
}

// Analyze decides per page whether the text layer suffices or the page
// images need recognition. It works on already gathered inputs, keeping
// the routing a pure function of them.
func Analyze(layers map[int]TextLayer, images map[int][]image.Image, cfg AnalyzerConfig) map[int]PageAnalysis {
	pages := make(map[int]PageAnalysis, len(layers)+len(images))
	for n := range layers {
		pages[n] = analyzePage(n, layers, images, cfg)
	}
	for n := range images {
		if _, done := pages[n]; !done {
			pages[n] = analyzePage(n, layers, images, cfg)
		}
	}
	return pages
}

func analyzePage(n int, layers map[int]TextLayer, images map[int][]image.Image, cfg AnalyzerConfig) PageAnalysis {
	analysis := PageAnalysis{Page: n, ImageCount: len(images[n])}
	layer, hasLayer := layers[n]

	switch {
	case hasLayer && layer.Usable(cfg.TextScoreThreshold) && layer.WordCount >= cfg.MinWords:
		analysis.Strategy = StrategyTextLayer
		analysis.TextLayer = &layer
		analysis.Reason = "embedded text layer is usable"
	case analysis.ImageCount > 0:
		analysis.Strategy = StrategyOCR
		analysis.Reason = "page is a scan"
	case hasLayer:
		analysis.Strategy = StrategyTextLayer
		analysis.TextLayer = &layer
		analysis.Reason = "sparse text layer, no page images to recognize"
	default:
		analysis.Strategy = StrategySkip
		analysis.Reason = "page has no text and no images"
	}
	return analysis
}
