// Package gvision adapts the Cloud Vision document-text endpoint to the
// ocr.Engine interface, as a remote alternative to the local tesseract
// engine for handwriting-heavy documents.
package gvision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/ocr"
)

// Engine sends images to the Cloud Vision API. Credentials come from the
// ambient environment (GOOGLE_APPLICATION_CREDENTIALS).
type Engine struct {
	client *vision.ImageAnnotatorClient
}

// New creates a Cloud Vision backed engine.
func New(ctx context.Context) (*Engine, error) {
	client, err := vision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create vision client: %w", err)
	}
	return &Engine{client: client}, nil
}

func (e *Engine) Name() string { return "gvision" }

// Close releases the underlying API client.
func (e *Engine) Close() error {
	return e.client.Close()
}

// Recognize sends the image to the document-text endpoint. The mode
// combination is accepted for interface compatibility only: the service has
// no page segmentation or engine mode concept, so the ladder degenerates to
// a single effective attempt.
func (e *Engine) Recognize(ctx context.Context, img image.Image, _ ocr.ModeCombo) (ocr.Output, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ocr.Output{}, fmt.Errorf("encode image: %w", err)
	}

	visionImg, err := vision.NewImageFromReader(&buf)
	if err != nil {
		return ocr.Output{}, fmt.Errorf("prepare request image: %w", err)
	}

	annotation, err := e.client.DetectDocumentText(ctx, visionImg, nil)
	if err != nil {
		return ocr.Output{}, fmt.Errorf("detect document text: %w", err)
	}
	if annotation == nil {
		return ocr.Output{}, nil
	}

	return ocr.Output{Text: annotation.GetText(), Words: flattenWords(annotation)}, nil
}

// flattenWords walks pages, blocks, and paragraphs into a flat word list with
// symbol-joined text.
func flattenWords(annotation *visionpb.TextAnnotation) []ocr.Word {
	var words []ocr.Word
	for _, page := range annotation.GetPages() {
		for _, block := range page.GetBlocks() {
			for _, paragraph := range block.GetParagraphs() {
				for _, word := range paragraph.GetWords() {
					var sb strings.Builder
					for _, symbol := range word.GetSymbols() {
						sb.WriteString(symbol.GetText())
					}
					words = append(words, ocr.Word{
						Text:       sb.String(),
						Confidence: float64(word.GetConfidence()),
						Box:        polyBounds(word.GetBoundingBox()),
					})
				}
			}
		}
	}
	return words
}

// polyBounds converts a bounding polygon to its axis-aligned rectangle.
func polyBounds(poly *visionpb.BoundingPoly) image.Rectangle {
	vertices := poly.GetVertices()
	if len(vertices) == 0 {
		return image.Rectangle{}
	}
	minX, minY := int(vertices[0].GetX()), int(vertices[0].GetY())
	maxX, maxY := minX, minY
	for _, v := range vertices[1:] {
		x, y := int(v.GetX()), int(v.GetY())
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	return image.Rect(minX, minY, maxX, maxY)
}
