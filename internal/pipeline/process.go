package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/entities"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/fields"
)

// ProcessBytes decodes and processes an encoded document image.
func (p *Pipeline) ProcessBytes(data []byte, opts Options) (*StructuredResult, error) {
	return p.ProcessBytesContext(context.Background(), data, opts)
}

// ProcessBytesContext decodes raw bytes and runs the full chain. Input in
// an unknown format fails with *preprocess.UnsupportedFormatError.
func (p *Pipeline) ProcessBytesContext(ctx context.Context, data []byte, opts Options) (*StructuredResult, error) {
	if p == nil || p.pre == nil {
		return nil, errors.New("pipeline not initialized")
	}
	img, format, err := p.pre.Decode(data)
	if err != nil {
		return nil, err
	}
	slog.Debug("Decoded document image", "format", format, "bytes", len(data))
	return p.ProcessImageContext(ctx, img, opts)
}

// ProcessFile reads and processes a document image from disk.
func (p *Pipeline) ProcessFile(path string, opts Options) (*StructuredResult, error) {
	return p.ProcessFileContext(context.Background(), path, opts)
}

// ProcessFileContext is ProcessFile with cancellation support.
func (p *Pipeline) ProcessFileContext(ctx context.Context, path string, opts Options) (*StructuredResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return p.ProcessBytesContext(ctx, data, opts)
}

// ProcessImage runs the full chain on a decoded image.
func (p *Pipeline) ProcessImage(img image.Image, opts Options) (*StructuredResult, error) {
	return p.ProcessImageContext(context.Background(), img, opts)
}

// ProcessImageContext runs preparation, the recognition ladder, entity
// matching, and assembly, checking for cancellation between stages.
func (p *Pipeline) ProcessImageContext(ctx context.Context, img image.Image, opts Options) (*StructuredResult, error) {
	if p == nil || p.pre == nil || p.extractor == nil || p.matcher == nil {
		return nil, errors.New("pipeline not initialized")
	}
	if img == nil {
		return nil, errors.New("input image is nil")
	}

	bounds := img.Bounds()
	slog.Debug("Starting document processing", "width", bounds.Dx(), "height", bounds.Dy())

	totalStart := time.Now()

	opts.notify(StagePreprocessing)
	preStart := time.Now()
	prepared, stages := p.pre.Apply(img)
	preNs := time.Since(preStart).Nanoseconds()
	slog.Debug("Image preparation completed", "stages", stages, "duration_ms", preNs/1000000)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts.notify(StageRecognizing)
	ocrStart := time.Now()
	rec, err := p.extractor.Extract(ctx, prepared, opts.Hints...)
	if err != nil {
		return nil, fmt.Errorf("recognition failed: %w", err)
	}
	ocrNs := time.Since(ocrStart).Nanoseconds()
	slog.Debug("Text recognition completed",
		"mode", rec.Combo.String(),
		"attempts", len(rec.Attempts),
		"degraded", rec.Degraded,
		"duration_ms", ocrNs/1000000)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts.notify(StageMatching)
	matchStart := time.Now()
	tokens := entities.Tokenize(rec.Text)
	entities.AlignConfidences(tokens, rec.Words)
	ents := p.matcher.Match(rec.Text, tokens)
	var links []entities.DosageLink
	if p.cfg.LinkDosages {
		links = p.matcher.DosageLinks(tokens, ents)
	}
	var flds *fields.DocumentFields
	if p.cfg.ExtractFields {
		flds = fields.Extract(rec.Text)
		if flds.Empty() {
			flds = nil
		}
	}
	matchNs := time.Since(matchStart).Nanoseconds()
	slog.Debug("Entity matching completed",
		"tokens", len(tokens),
		"entities", len(ents),
		"dosage_links", len(links))

	docType := opts.DocumentType
	if docType == "" {
		docType = ClassifyText(rec.Text)
	}

	meta := Metadata{
		PreprocessStages: stages,
		OCR: OCRMetadata{
			Engine:   rec.Engine,
			Mode:     rec.Combo,
			Attempts: rec.Attempts,
			Degraded: rec.Degraded,
		},
		Timing: Timing{
			PreprocessNs: preNs,
			OCRNs:        ocrNs,
			MatchNs:      matchNs,
			TotalNs:      time.Since(totalStart).Nanoseconds(),
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	res, err := Assemble(docType, rec.Text, ents, links, flds, meta)
	if err != nil {
		return nil, err
	}
	res.Width = bounds.Dx()
	res.Height = bounds.Dy()
	if opts.IncludeWords {
		res.Words = wordBoxes(rec.Words)
	}

	slog.Debug("Document processing completed",
		"document_type", res.DocumentType,
		"entities", len(res.Entities),
		"total_duration_ms", meta.Timing.TotalNs/1000000)
	return res, nil
}

// ProcessText runs entity matching, field extraction, and classification
// on text that is already available, skipping preparation and recognition.
// PDF text layers and plain text documents take this path.
func (p *Pipeline) ProcessText(text string, opts Options) (*StructuredResult, error) {
	if p == nil || p.matcher == nil {
		return nil, errors.New("pipeline not initialized")
	}

	totalStart := time.Now()
	tokens := entities.Tokenize(text)
	ents := p.matcher.Match(text, tokens)
	var links []entities.DosageLink
	if p.cfg.LinkDosages {
		links = p.matcher.DosageLinks(tokens, ents)
	}
	var flds *fields.DocumentFields
	if p.cfg.ExtractFields {
		flds = fields.Extract(text)
		if flds.Empty() {
			flds = nil
		}
	}
	matchNs := time.Since(totalStart).Nanoseconds()

	docType := opts.DocumentType
	if docType == "" {
		docType = ClassifyText(text)
	}

	meta := Metadata{
		PreprocessStages: []string{},
		OCR:              OCRMetadata{Engine: "text"},
		Timing: Timing{
			MatchNs: matchNs,
			TotalNs: time.Since(totalStart).Nanoseconds(),
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	return Assemble(docType, text, ents, links, flds, meta)
}

// ProcessImages processes multiple images sequentially.
func (p *Pipeline) ProcessImages(images []image.Image, opts Options) ([]*StructuredResult, error) {
	return p.ProcessImagesContext(context.Background(), images, opts)
}

// ProcessImagesContext processes images sequentially with cancellation
// support, stopping at the first failure.
func (p *Pipeline) ProcessImagesContext(ctx context.Context, images []image.Image, opts Options) ([]*StructuredResult, error) {
	if len(images) == 0 {
		return nil, errors.New("no images provided")
	}
	results := make([]*StructuredResult, len(images))
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := p.ProcessImageContext(ctx, img, opts)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		results[i] = res
	}
	return results, nil
}
