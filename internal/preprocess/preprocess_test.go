package preprocess

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDocumentImage builds a small deterministic page: uneven background
// with a few dark strokes.
func testDocumentImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			bg := uint8(150 + (x*40)/width + (y*30)/height)
			img.Set(x, y, color.NRGBA{R: bg, G: bg, B: bg, A: 255})
		}
	}
	for x := width / 4; x < 3*width/4; x++ {
		img.Set(x, height/3, color.NRGBA{R: 20, G: 20, B: 20, A: 255})
		img.Set(x, 2*height/3, color.NRGBA{R: 30, G: 30, B: 30, A: 255})
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Threshold.BlockSize = 10 // must be odd
	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be odd")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults valid", func(c *Config) {}, ""},
		{"tiny max dimension", func(c *Config) { c.MaxDimension = 100 }, "max_dimension"},
		{"zero denoise radius", func(c *Config) { c.Denoise.Radius = 0 }, "denoise radius"},
		{"low clip limit", func(c *Config) { c.Contrast.ClipLimit = 0.5 }, "clip_limit"},
		{"zero grid", func(c *Config) { c.Contrast.GridSize = 0 }, "grid_size"},
		{"small block", func(c *Config) { c.Threshold.BlockSize = 1 }, "block_size"},
		{"small kernel", func(c *Config) { c.Dilate.KernelSize = 1 }, "kernel_size"},
		{"zero iterations", func(c *Config) { c.Dilate.Iterations = 0 }, "iterations"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestDecode_PNG(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)

	img, format, err := p.Decode(encodePNG(t, testDocumentImage(64, 48)))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 64, img.Bounds().Dx())
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)

	_, _, err = p.Decode([]byte("%PDF-1.4 not an image"))
	var ufe *UnsupportedFormatError
	require.ErrorAs(t, err, &ufe)
	assert.Equal(t, "pdf", ufe.Format)
}

func TestDecode_EmptyInput(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)

	_, _, err = p.Decode(nil)
	var ufe *UnsupportedFormatError
	require.ErrorAs(t, err, &ufe)
}

func TestApply_Deterministic(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)

	img := testDocumentImage(120, 90)
	first, stages1 := p.Apply(img)
	second, stages2 := p.Apply(img)

	assert.Equal(t, stages1, stages2)
	require.Equal(t, first.Bounds(), second.Bounds())
	assert.Equal(t, first.Pix, second.Pix, "repeated preprocessing must be byte-identical")
}

func TestApply_RecordsStagesInChainOrder(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)

	_, stages := p.Apply(testDocumentImage(60, 40))
	assert.Equal(t, []string{StageGrayscale, StageDenoise, StageCLAHE, StageThreshold, StageDilate}, stages)
}

func TestApply_DisabledStagesSkipped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Denoise.Enabled = false
	cfg.Contrast.Enabled = false
	p, err := New(cfg)
	require.NoError(t, err)

	_, stages := p.Apply(testDocumentImage(60, 40))
	assert.Equal(t, []string{StageGrayscale, StageThreshold, StageDilate}, stages)
}

func TestApply_AllStagesDisabledStillGray(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Grayscale.Enabled = false
	cfg.Denoise.Enabled = false
	cfg.Contrast.Enabled = false
	cfg.Threshold.Enabled = false
	cfg.Dilate.Enabled = false
	p, err := New(cfg)
	require.NoError(t, err)

	out, stages := p.Apply(testDocumentImage(60, 40))
	assert.Empty(t, stages)
	assert.Equal(t, 60, out.Bounds().Dx())
	assert.Equal(t, 40, out.Bounds().Dy())
}

func TestApply_ThresholdOutputTwoLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dilate.Enabled = false
	p, err := New(cfg)
	require.NoError(t, err)

	out, _ := p.Apply(testDocumentImage(80, 60))
	for i, v := range out.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("pixel %d has intermediate value %d after binarization", i, v)
		}
	}
}

func TestApply_BinarizationSeparatesInkFromBackground(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)

	out, _ := p.Apply(testDocumentImage(80, 60))
	ink := 0
	background := 0
	for _, v := range out.Pix {
		if v == 0 {
			ink++
		} else {
			background++
		}
	}
	assert.Positive(t, ink, "dark strokes should survive binarization")
	assert.Greater(t, background, ink, "the page should remain mostly background")
}

func TestApply_ResizeGuard(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDimension = 256
	p, err := New(cfg)
	require.NoError(t, err)

	out, stages := p.Apply(testDocumentImage(512, 300))
	require.NotEmpty(t, stages)
	assert.Equal(t, StageResize, stages[0])
	assert.LessOrEqual(t, out.Bounds().Dx(), 256)
	assert.LessOrEqual(t, out.Bounds().Dy(), 256)
}

func TestProcess_EndToEnd(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)

	out, stages, err := p.Process(encodePNG(t, testDocumentImage(100, 70)))
	require.NoError(t, err)
	assert.Len(t, stages, 5)
	assert.Equal(t, 100, out.Bounds().Dx())
}

func TestProcess_PropagatesDecodeFailure(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)

	_, _, err = p.Process([]byte{0xde, 0xad, 0xbe, 0xef})
	var ufe *UnsupportedFormatError
	assert.ErrorAs(t, err, &ufe)
}
