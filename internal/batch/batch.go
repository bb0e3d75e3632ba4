// Package batch runs the document pipeline over many files with a bounded
// worker pool, writing one result file per input.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/pipeline"
)

// Output formats for per-file results.
const (
	FormatJSON = "json"
	FormatText = "txt"
)

// Config controls a batch run.
type Config struct {
	// Workers bounds concurrent file processing.
	Workers int

	// OutputDir receives the result files. Empty writes each result next
	// to its input.
	OutputDir string

	// Format is the per-file output format, json or txt.
	Format string

	// DocumentType overrides classification for every file when set.
	DocumentType string

	Recursive bool

	// ContinueOnError records failures and keeps going instead of
	// stopping the run at the first one.
	ContinueOnError bool

	IncludePatterns []string
	ExcludePatterns []string

	// Progress receives run updates. Nil disables reporting.
	Progress pipeline.ProgressCallback
}

// DefaultConfig returns a batch configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers: 4,
		Format:  FormatJSON,
	}
}

// FileError pairs a failed input with its error.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Summary describes a finished batch run.
type Summary struct {
	Total     int
	Processed int
	Failed    int
	Failures  []FileError
	Duration  time.Duration
	Workers   int
}

// Throughput returns processed files per second.
func (s *Summary) Throughput() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Processed) / s.Duration.Seconds()
}

// Processor runs documents through a pipeline in parallel.
type Processor struct {
	pipe *pipeline.Pipeline
	cfg  Config
}

// New creates a batch processor around an already built pipeline.
func New(pipe *pipeline.Pipeline, cfg Config) (*Processor, error) {
	if pipe == nil {
		return nil, errors.New("nil pipeline")
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("invalid worker count: %d", cfg.Workers)
	}
	switch cfg.Format {
	case FormatJSON, FormatText:
	default:
		return nil, fmt.Errorf("invalid output format: %s (must be %s or %s)", cfg.Format, FormatJSON, FormatText)
	}
	return &Processor{pipe: pipe, cfg: cfg}, nil
}

type outcome struct {
	path string
	err  error
}

// Run discovers the input files and processes them. Unless
// ContinueOnError is set, the first failure stops the run and is returned
// after in-flight files finish.
func (p *Processor) Run(ctx context.Context, inputs []string) (*Summary, error) {
	files, err := Discover(inputs, p.cfg.Recursive, p.cfg.IncludePatterns, p.cfg.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover input files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no processable files found")
	}

	if p.cfg.OutputDir != "" {
		if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	slog.Info("Starting batch run", "files", len(files), "workers", p.cfg.Workers)
	if p.cfg.Progress != nil {
		p.cfg.Progress.OnStart(len(files))
		defer p.cfg.Progress.OnComplete()
	}

	jobs := make(chan string)
	outcomes := make(chan outcome)

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				outcomes <- outcome{path: path, err: p.processFile(runCtx, path)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, f := range files {
			select {
			case jobs <- f:
			case <-runCtx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	summary := &Summary{Total: len(files), Workers: p.cfg.Workers}
	done := 0
	for out := range outcomes {
		done++
		if out.err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, FileError{Path: out.path, Err: out.err})
			slog.Error("Failed to process document", "file", out.path, "error", out.err)
			if p.cfg.Progress != nil {
				p.cfg.Progress.OnError(done, out.err)
			}
			if !p.cfg.ContinueOnError {
				cancel()
			}
			continue
		}
		summary.Processed++
		if p.cfg.Progress != nil {
			p.cfg.Progress.OnProgress(done, len(files))
		}
	}
	summary.Duration = time.Since(start)

	if !p.cfg.ContinueOnError && len(summary.Failures) > 0 {
		return summary, summary.Failures[0]
	}

	slog.Info("Batch run finished",
		"processed", summary.Processed,
		"failed", summary.Failed,
		"duration_ms", summary.Duration.Milliseconds())
	return summary, nil
}

func (p *Processor) processFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	opts := pipeline.Options{DocumentType: p.cfg.DocumentType}

	var rendered string
	var err error
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		rendered, err = p.renderPDF(ctx, path, opts)
	} else {
		rendered, err = p.renderImage(ctx, path, opts)
	}
	if err != nil {
		return err
	}

	outPath := p.outputPath(path)
	if err := os.WriteFile(outPath, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	slog.Debug("Processed document",
		"file", path,
		"output", outPath,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (p *Processor) renderImage(ctx context.Context, path string, opts pipeline.Options) (string, error) {
	res, err := p.pipe.ProcessFileContext(ctx, path, opts)
	if err != nil {
		return "", err
	}
	if p.cfg.Format == FormatText {
		return pipeline.ToPlainText(res)
	}
	return pipeline.ToJSON(res)
}

func (p *Processor) renderPDF(ctx context.Context, path string, opts pipeline.Options) (string, error) {
	res, err := p.pipe.ProcessPDFContext(ctx, path, "", opts)
	if err != nil {
		return "", err
	}
	if p.cfg.Format == FormatText {
		var sections []string
		for _, page := range res.Pages {
			for _, pageRes := range page.Results {
				text, err := pipeline.ToPlainText(pageRes)
				if err != nil {
					return "", fmt.Errorf("page %d: %w", page.PageNumber, err)
				}
				sections = append(sections, fmt.Sprintf("=== Page %d ===\n%s", page.PageNumber, text))
			}
		}
		return strings.Join(sections, "\n\n"), nil
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// outputPath derives the result filename for an input. scan.png becomes
// scan.json or scan.txt, in OutputDir when set.
func (p *Processor) outputPath(input string) string {
	dir := p.cfg.OutputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(dir, base+"."+p.cfg.Format)
}
