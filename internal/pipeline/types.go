package pipeline

import (
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/entities"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/fields"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/ocr"
)

// StructuredResult is the canonical output of document processing.
type StructuredResult struct {
	DocumentType string            `json:"document_type"`
	RawText      string            `json:"raw_text"`
	Entities     []entities.Entity `json:"entities"`

	// DosageLinks are advisory numeric associations, never part of the
	// entity set itself.
	DosageLinks []entities.DosageLink `json:"dosage_links,omitempty"`

	// Fields holds regex-extracted document fields when field extraction
	// is enabled and anything matched.
	Fields *fields.DocumentFields `json:"fields,omitempty"`

	// Words carries per-word geometry when requested via Options.
	Words []WordBox `json:"words,omitempty"`

	Width  int `json:"width"`
	Height int `json:"height"`

	Metadata Metadata `json:"processing_metadata"`
}

// WordBox is a recognized word with its position in image coordinates.
type WordBox struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}

// Box is an axis-aligned rectangle in pixel coordinates.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Metadata records how a result was produced.
type Metadata struct {
	PreprocessStages []string    `json:"preprocess_stages"`
	OCR              OCRMetadata `json:"ocr"`
	Timing           Timing      `json:"timing"`
	Timestamp        string      `json:"timestamp"`
}

// OCRMetadata describes the recognition run: the mode that produced the
// text and every mode tried before it.
type OCRMetadata struct {
	Engine   string          `json:"engine"`
	Mode     ocr.ModeCombo   `json:"mode"`
	Attempts []ocr.ModeCombo `json:"attempts"`
	Degraded bool            `json:"degraded,omitempty"`
}

// Timing holds per-stage durations.
type Timing struct {
	PreprocessNs int64 `json:"preprocess_ns"`
	OCRNs        int64 `json:"ocr_ns"`
	MatchNs      int64 `json:"match_ns"`
	TotalNs      int64 `json:"total_ns"`
}

// Stage names reported through Options.OnStage.
const (
	StagePreprocessing = "preprocessing"
	StageRecognizing   = "recognizing"
	StageMatching      = "matching"
)

// Options adjust a single processing run.
type Options struct {
	// DocumentType skips classification when set.
	DocumentType string

	// Hints are mode combinations tried before the configured ladder.
	Hints []ocr.ModeCombo

	// IncludeWords keeps per-word geometry in the result.
	IncludeWords bool

	// OnStage, when set, is invoked as each processing stage begins.
	// Callers use it to surface live progress.
	OnStage func(stage string)
}

func (o Options) notify(stage string) {
	if o.OnStage != nil {
		o.OnStage(stage)
	}
}

func wordBoxes(words []ocr.Word) []WordBox {
	if len(words) == 0 {
		return nil
	}
	out := make([]WordBox, len(words))
	for i, w := range words {
		out[i] = WordBox{
			Text:       w.Text,
			Confidence: w.Confidence,
			Box:        Box{X: w.Box.Min.X, Y: w.Box.Min.Y, W: w.Box.Dx(), H: w.Box.Dy()},
		}
	}
	return out
}
