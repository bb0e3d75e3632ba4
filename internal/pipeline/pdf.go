package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/pdf"
)

// PDFResult holds the processing output for a whole PDF document.
type PDFResult struct {
	Filename   string          `json:"filename"`
	TotalPages int             `json:"total_pages"`
	Pages      []PDFPageResult `json:"pages"`
	Timing     struct {
		ExtractionNs int64 `json:"extraction_ns"`
		TotalNs      int64 `json:"total_ns"`
	} `json:"timing"`
}

// PDFPageResult holds the results for one page along with the path that
// produced them.
type PDFPageResult struct {
	PageNumber int                 `json:"page_number"`
	Source     string              `json:"source"`
	Results    []*StructuredResult `json:"results"`
}

// ProcessPDF routes every page of a PDF through the cheapest path that
// yields text: the embedded text layer when it is usable, recognition on
// the page scans otherwise.
func (p *Pipeline) ProcessPDF(filename, pageRange string, opts Options) (*PDFResult, error) {
	return p.ProcessPDFContext(context.Background(), filename, pageRange, opts)
}

// ProcessPDFContext is ProcessPDF with cancellation support. Pages are
// processed in ascending page order.
func (p *Pipeline) ProcessPDFContext(ctx context.Context, filename, pageRange string, opts Options) (*PDFResult, error) {
	if p == nil || p.extractor == nil || p.matcher == nil {
		return nil, errors.New("pipeline not initialized")
	}

	totalStart := time.Now()

	path, cleanup, err := pdf.Decrypt(filename, p.cfg.PDF.Credentials)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	extractStart := time.Now()
	var layers map[int]pdf.TextLayer
	if p.cfg.PDF.UseTextLayer {
		// Best effort: a PDF without readable text objects still has scans.
		layers, _ = pdf.ReadTextLayers(path, pageRange)
	}
	pageImages, err := pdf.ExtractImages(path, pageRange)
	if err != nil {
		return nil, fmt.Errorf("failed to extract images from PDF: %w", err)
	}
	analysis := pdf.Analyze(layers, pageImages, p.cfg.PDF.Analyzer)
	extractNs := time.Since(extractStart).Nanoseconds()
	slog.Debug("Routed PDF pages",
		"file", filename,
		"pages", len(analysis),
		"text_layers", len(layers))

	pageNumbers := make([]int, 0, len(analysis))
	for pageNum := range analysis {
		pageNumbers = append(pageNumbers, pageNum)
	}
	sort.Ints(pageNumbers)

	pages := make([]PDFPageResult, 0, len(pageNumbers))
	for _, pageNum := range pageNumbers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		decision := analysis[pageNum]
		page := PDFPageResult{PageNumber: pageNum, Source: decision.Strategy.String()}

		switch decision.Strategy {
		case pdf.StrategyTextLayer:
			res, err := p.ProcessText(decision.TextLayer.Text, opts)
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", pageNum, err)
			}
			page.Results = []*StructuredResult{res}

		case pdf.StrategyOCR:
			images := pageImages[pageNum]
			page.Results = make([]*StructuredResult, 0, len(images))
			for i, img := range images {
				res, err := p.ProcessImageContext(ctx, img, opts)
				if err != nil {
					return nil, fmt.Errorf("page %d image %d: %w", pageNum, i, err)
				}
				page.Results = append(page.Results, res)
			}

		default:
			continue
		}
		pages = append(pages, page)
	}

	result := &PDFResult{
		Filename:   filename,
		TotalPages: len(pages),
		Pages:      pages,
	}
	result.Timing.ExtractionNs = extractNs
	result.Timing.TotalNs = time.Since(totalStart).Nanoseconds()
	return result, nil
}
