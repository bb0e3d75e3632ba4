// Package support holds the shared scenario state and step definitions for
// the behavior suite. Each scenario gets a fresh TestContext with its own
// pipeline, scratch directories, and, when a scenario starts one, an
// embedded HTTP server.
package support

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/batch"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/ocr"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/pipeline"
)

// ScriptedEngine satisfies ocr.Engine with whatever text a scenario loads
// into it, standing in for tesseract so features control exactly what the
// recognizer reads off a page.
type ScriptedEngine struct {
	mu   sync.Mutex
	text string
}

// Name implements ocr.Engine.
func (e *ScriptedEngine) Name() string { return "scripted" }

// SetText replaces the text every following recognition attempt returns.
func (e *ScriptedEngine) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
}

// Recognize implements ocr.Engine, ignoring the image content.
func (e *ScriptedEngine) Recognize(ctx context.Context, _ image.Image, _ ocr.ModeCombo) (ocr.Output, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Output{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return ocr.Output{Text: e.text}, nil
}

// TestContext carries the state shared by step definitions within one
// scenario.
type TestContext struct {
	Engine   *ScriptedEngine
	Pipeline *pipeline.Pipeline

	// InputDir receives generated document files, OutputDir batch results.
	InputDir  string
	OutputDir string

	LastResult *pipeline.StructuredResult
	LastErr    error

	Summary  *batch.Summary
	BatchErr error

	httpServer *httptest.Server

	LastStatus      int
	LastBody        []byte
	LastContentType string
	LastHeader      http.Header
	DocumentID      string

	vocabularies map[string]string
	tempRoot     string
}

// NewTestContext builds a fresh scenario context around a pipeline whose
// recognition engine is scripted.
func NewTestContext() (*TestContext, error) {
	tempRoot, err := os.MkdirTemp("", "medocr-features-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario directory: %w", err)
	}

	testCtx := &TestContext{
		Engine:       &ScriptedEngine{},
		InputDir:     filepath.Join(tempRoot, "input"),
		OutputDir:    filepath.Join(tempRoot, "output"),
		vocabularies: make(map[string]string),
		tempRoot:     tempRoot,
	}
	for _, dir := range []string{testCtx.InputDir, testCtx.OutputDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create scenario directory: %w", err)
		}
	}

	if err := testCtx.rebuildPipeline(""); err != nil {
		return nil, err
	}
	return testCtx, nil
}

// rebuildPipeline replaces the pipeline, optionally loading a vocabulary
// file, keeping the scripted engine.
func (testCtx *TestContext) rebuildPipeline(vocabularyFile string) error {
	p, err := pipeline.NewBuilder().
		WithEngine(testCtx.Engine).
		WithDictionaryFile(vocabularyFile).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	if testCtx.Pipeline != nil {
		_ = testCtx.Pipeline.Close()
	}
	testCtx.Pipeline = p
	return nil
}

// Cleanup releases the scenario's server, pipeline, and scratch files.
func (testCtx *TestContext) Cleanup() error {
	if testCtx.httpServer != nil {
		testCtx.httpServer.Close()
		testCtx.httpServer = nil
	}

	var firstErr error
	if testCtx.Pipeline != nil {
		if err := testCtx.Pipeline.Close(); err != nil {
			firstErr = err
		}
		testCtx.Pipeline = nil
	}
	if err := os.RemoveAll(testCtx.tempRoot); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// inputPath resolves a scenario file name inside the input directory.
func (testCtx *TestContext) inputPath(name string) string {
	return filepath.Join(testCtx.InputDir, name)
}

// scratchPath resolves a scenario file name outside the input directory, so
// batch discovery does not pick it up.
func (testCtx *TestContext) scratchPath(name string) string {
	return filepath.Join(testCtx.tempRoot, name)
}
