package batch

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/ocr"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/pipeline"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/preprocess"
)

// fakeEngine recognizes the same text in every image.
type fakeEngine struct {
	text string
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Recognize(context.Context, image.Image, ocr.ModeCombo) (ocr.Output, error) {
	return ocr.Output{Text: e.text}, nil
}

func buildTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.NewBuilder().
		WithPreprocessConfig(preprocess.Config{
			MaxDimension: 1024,
			Grayscale:    preprocess.GrayscaleConfig{Enabled: true},
		}).
		WithEngine(&fakeEngine{text: "Take aspirin 81 mg once daily"}).
		Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestNew_Validation(t *testing.T) {
	p := buildTestPipeline(t)

	_, err := New(nil, DefaultConfig())
	assert.ErrorContains(t, err, "nil pipeline")

	cfg := DefaultConfig()
	cfg.Workers = 0
	_, err = New(p, cfg)
	assert.ErrorContains(t, err, "invalid worker count")

	cfg = DefaultConfig()
	cfg.Format = "xml"
	_, err = New(p, cfg)
	assert.ErrorContains(t, err, "invalid output format")

	_, err = New(p, DefaultConfig())
	assert.NoError(t, err)
}

func TestProcessor_Run(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()
	writePNG(t, filepath.Join(dir, "rx1.png"))
	writePNG(t, filepath.Join(dir, "rx2.png"))

	cfg := DefaultConfig()
	cfg.Workers = 2
	cfg.OutputDir = outDir
	proc, err := New(buildTestPipeline(t), cfg)
	require.NoError(t, err)

	summary, err := proc.Run(context.Background(), []string{dir})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Processed)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, 2, summary.Workers)
	assert.Greater(t, summary.Duration.Nanoseconds(), int64(0))

	for _, name := range []string{"rx1.json", "rx2.json"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.Contains(t, string(data), "aspirin")
		assert.Contains(t, string(data), "prescription")
	}
}

func TestProcessor_Run_TextFormat(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "scan.png"))

	cfg := DefaultConfig()
	cfg.Format = FormatText
	proc, err := New(buildTestPipeline(t), cfg)
	require.NoError(t, err)

	_, err = proc.Run(context.Background(), []string{dir})
	require.NoError(t, err)

	// No output dir configured, the result lands next to the input.
	data, err := os.ReadFile(filepath.Join(dir, "scan.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Take aspirin 81 mg once daily")
}

func TestProcessor_Run_DocumentTypeOverride(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "scan.png"))

	cfg := DefaultConfig()
	cfg.DocumentType = pipeline.DocTypeLabReport
	proc, err := New(buildTestPipeline(t), cfg)
	require.NoError(t, err)

	_, err = proc.Run(context.Background(), []string{dir})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "scan.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), pipeline.DocTypeLabReport)
}

func TestProcessor_Run_StopsOnFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not an image"), 0o600))

	proc, err := New(buildTestPipeline(t), DefaultConfig())
	require.NoError(t, err)

	summary, err := proc.Run(context.Background(), []string{dir})
	require.Error(t, err)
	assert.ErrorContains(t, err, "broken.png")

	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.Failed)
	assert.Zero(t, summary.Processed)
	assert.NoFileExists(t, filepath.Join(dir, "broken.json"))
}

func TestProcessor_Run_ContinueOnError(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "good1.png"))
	writePNG(t, filepath.Join(dir, "good2.png"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not an image"), 0o600))

	cfg := DefaultConfig()
	cfg.ContinueOnError = true
	proc, err := New(buildTestPipeline(t), cfg)
	require.NoError(t, err)

	summary, err := proc.Run(context.Background(), []string{dir})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Contains(t, summary.Failures[0].Path, "broken.png")
	assert.FileExists(t, filepath.Join(dir, "good1.json"))
	assert.FileExists(t, filepath.Join(dir, "good2.json"))
}

// recordingProgress captures callback invocations for assertions.
type recordingProgress struct {
	started   int
	updates   []int
	errors    int
	completed bool
}

func (r *recordingProgress) OnStart(total int)     { r.started = total }
func (r *recordingProgress) OnProgress(cur, _ int) { r.updates = append(r.updates, cur) }
func (r *recordingProgress) OnComplete()           { r.completed = true }
func (r *recordingProgress) OnError(int, error)    { r.errors++ }

func TestProcessor_Run_ReportsProgress(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"))
	writePNG(t, filepath.Join(dir, "b.png"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not an image"), 0o600))

	rec := &recordingProgress{}
	cfg := DefaultConfig()
	cfg.ContinueOnError = true
	cfg.Progress = rec
	proc, err := New(buildTestPipeline(t), cfg)
	require.NoError(t, err)

	_, err = proc.Run(context.Background(), []string{dir})
	require.NoError(t, err)

	assert.Equal(t, 3, rec.started)
	assert.Len(t, rec.updates, 2)
	assert.Equal(t, 1, rec.errors)
	assert.True(t, rec.completed)
}

func TestProcessor_Run_NoFiles(t *testing.T) {
	proc, err := New(buildTestPipeline(t), DefaultConfig())
	require.NoError(t, err)

	_, err = proc.Run(context.Background(), []string{t.TempDir()})
	assert.ErrorContains(t, err, "no processable files")
}

func TestProcessor_Run_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "scan.png"))

	proc, err := New(buildTestPipeline(t), DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := proc.Run(ctx, []string{dir})
	require.Error(t, err)
	require.NotNil(t, summary)
	assert.Zero(t, summary.Processed)
}

func TestOutputPath(t *testing.T) {
	proc := &Processor{cfg: Config{OutputDir: "/tmp/out", Format: FormatJSON}}
	assert.Equal(t, filepath.Join("/tmp/out", "scan.json"), proc.outputPath("/data/in/scan.png"))

	proc = &Processor{cfg: Config{Format: FormatText}}
	assert.Equal(t, filepath.Join("/data/in", "scan.txt"), proc.outputPath("/data/in/scan.png"))
}

func TestSummary_Throughput(t *testing.T) {
	s := &Summary{Processed: 10, Duration: 2 * time.Second}
	assert.InDelta(t, 5.0, s.Throughput(), 0.01)

	s = &Summary{Processed: 10}
	assert.Zero(t, s.Throughput())
}
