package ocr

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEngine returns scripted outputs per mode combination and records the
// order in which combinations were attempted.
type stubEngine struct {
	name    string
	outputs map[ModeCombo]Output
	errs    map[ModeCombo]error
	calls   []ModeCombo
}

func (s *stubEngine) Name() string {
	if s.name == "" {
		return "stub"
	}
	return s.name
}

func (s *stubEngine) Recognize(_ context.Context, _ image.Image, combo ModeCombo) (Output, error) {
	s.calls = append(s.calls, combo)
	if err, ok := s.errs[combo]; ok {
		return Output{}, err
	}
	return s.outputs[combo], nil
}

func testImage() image.Image {
	return image.NewGray(image.Rect(0, 0, 10, 10))
}

const longText = "Patient takes aspirin 81 mg once daily"

func TestDefaultCombos(t *testing.T) {
	combos := DefaultCombos()
	require.Len(t, combos, 8)

	want := []ModeCombo{
		{PSM: PSMSingleColumn, OEM: EngineNeural},
		{PSM: PSMSingleColumn, OEM: EngineDefault},
		{PSM: PSMSingleBlock, OEM: EngineNeural},
		{PSM: PSMSingleBlock, OEM: EngineDefault},
		{PSM: PSMAuto, OEM: EngineNeural},
		{PSM: PSMAuto, OEM: EngineDefault},
		{PSM: PSMAutoOSD, OEM: EngineNeural},
		{PSM: PSMAutoOSD, OEM: EngineDefault},
	}
	assert.Equal(t, want, combos)
}

func TestModeComboString(t *testing.T) {
	combo := ModeCombo{PSM: PSMSingleColumn, OEM: EngineNeural}
	assert.Equal(t, "psm=4 oem=1", combo.String())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{MinTextLength: -1}.Validate())
	assert.Error(t, Config{Combos: []ModeCombo{{PSM: 99, OEM: 1}}}.Validate())
	assert.Error(t, Config{Combos: []ModeCombo{{PSM: 4, OEM: 7}}}.Validate())
}

func TestNewExtractor_NilEngine(t *testing.T) {
	_, err := NewExtractor(nil, DefaultConfig())
	assert.Error(t, err)
}

func TestNewExtractor_ZeroConfigGetsDefaults(t *testing.T) {
	ext, err := NewExtractor(&stubEngine{}, Config{})
	require.NoError(t, err)

	cfg := ext.Config()
	assert.Equal(t, DefaultCombos(), cfg.Combos)
	assert.Equal(t, DefaultMinTextLength, cfg.MinTextLength)
}

func TestExtract_FirstComboAccepted(t *testing.T) {
	first := ModeCombo{PSM: PSMSingleColumn, OEM: EngineNeural}
	engine := &stubEngine{outputs: map[ModeCombo]Output{
		first: {Text: longText + "\n\n"},
	}}
	ext, err := NewExtractor(engine, Config{})
	require.NoError(t, err)

	result, err := ext.Extract(context.Background(), testImage())
	require.NoError(t, err)

	assert.Equal(t, longText, result.Text)
	assert.Equal(t, first, result.Combo)
	assert.Equal(t, []ModeCombo{first}, result.Attempts)
	assert.False(t, result.Degraded)
	assert.Len(t, engine.calls, 1, "accepted combo must stop the ladder")
}

func TestExtract_FallsBackUntilThreshold(t *testing.T) {
	combos := DefaultCombos()
	engine := &stubEngine{outputs: map[ModeCombo]Output{
		combos[0]: {Text: ""},
		combos[1]: {Text: "Rx"},
		combos[2]: {Text: "   \n"},
		combos[3]: {Text: longText},
	}}
	ext, err := NewExtractor(engine, Config{})
	require.NoError(t, err)

	result, err := ext.Extract(context.Background(), testImage())
	require.NoError(t, err)

	assert.Equal(t, combos[3], result.Combo)
	assert.Equal(t, combos[:4], result.Attempts)
	assert.False(t, result.Degraded)
	assert.Len(t, engine.calls, 4)
}

func TestExtract_DegradedKeepsLongestOutput(t *testing.T) {
	combos := DefaultCombos()
	outputs := make(map[ModeCombo]Output, len(combos))
	for _, c := range combos {
		outputs[c] = Output{Text: "Rx"}
	}
	outputs[combos[5]] = Output{Text: "aspirin\n"}
	engine := &stubEngine{outputs: outputs}
	ext, err := NewExtractor(engine, Config{})
	require.NoError(t, err)

	result, err := ext.Extract(context.Background(), testImage())
	require.NoError(t, err)

	assert.Equal(t, "aspirin", result.Text)
	assert.Equal(t, combos[5], result.Combo)
	assert.True(t, result.Degraded)
	assert.Equal(t, combos, result.Attempts, "degraded accept only after the full ladder")
}

func TestExtract_AllEmptyReturnsExtractionError(t *testing.T) {
	engine := &stubEngine{}
	ext, err := NewExtractor(engine, Config{})
	require.NoError(t, err)

	result, err := ext.Extract(context.Background(), testImage())
	require.Error(t, err)
	assert.Nil(t, result)

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, DefaultCombos(), extractionErr.Attempts)
	assert.Contains(t, extractionErr.Error(), "psm=4 oem=1")
}

func TestExtract_EngineErrorSkipped(t *testing.T) {
	combos := DefaultCombos()
	engine := &stubEngine{
		errs:    map[ModeCombo]error{combos[0]: errors.New("segfault in engine")},
		outputs: map[ModeCombo]Output{combos[1]: {Text: longText}},
	}
	ext, err := NewExtractor(engine, Config{})
	require.NoError(t, err)

	result, err := ext.Extract(context.Background(), testImage())
	require.NoError(t, err)
	assert.Equal(t, combos[1], result.Combo)
	assert.Equal(t, combos[:2], result.Attempts)
}

func TestExtract_AllErrorsPropagate(t *testing.T) {
	combos := DefaultCombos()
	errs := make(map[ModeCombo]error, len(combos))
	for _, c := range combos {
		errs[c] = errors.New("engine unavailable")
	}
	engine := &stubEngine{errs: errs}
	ext, err := NewExtractor(engine, Config{})
	require.NoError(t, err)

	_, err = ext.Extract(context.Background(), testImage())
	require.Error(t, err)

	var extractionErr *ExtractionError
	assert.False(t, errors.As(err, &extractionErr),
		"engine failures are not the empty-text error")
	assert.Contains(t, err.Error(), "engine unavailable")
}

func TestExtract_HintsTriedFirst(t *testing.T) {
	hint := ModeCombo{PSM: PSMSingleLine, OEM: EngineDefault}
	engine := &stubEngine{outputs: map[ModeCombo]Output{
		hint: {Text: longText},
	}}
	ext, err := NewExtractor(engine, Config{})
	require.NoError(t, err)

	result, err := ext.Extract(context.Background(), testImage(), hint)
	require.NoError(t, err)
	assert.Equal(t, hint, result.Combo)
	assert.Equal(t, []ModeCombo{hint}, result.Attempts)
}

func TestExtract_DuplicateHintAttemptedOnce(t *testing.T) {
	combos := DefaultCombos()
	engine := &stubEngine{}
	ext, err := NewExtractor(engine, Config{})
	require.NoError(t, err)

	_, err = ext.Extract(context.Background(), testImage(), combos[0])
	require.Error(t, err)
	assert.Len(t, engine.calls, len(combos))
}

func TestExtract_ContextCancelled(t *testing.T) {
	engine := &stubEngine{}
	ext, err := NewExtractor(engine, Config{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ext.Extract(ctx, testImage())
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, engine.calls)
}

func TestExtract_NilImage(t *testing.T) {
	ext, err := NewExtractor(&stubEngine{}, Config{})
	require.NoError(t, err)

	_, err = ext.Extract(context.Background(), nil)
	assert.Error(t, err)
}

func TestExtract_WordsCarriedThrough(t *testing.T) {
	first := DefaultCombos()[0]
	words := []Word{
		{Text: "aspirin", Confidence: 0.93, Box: image.Rect(10, 5, 60, 20)},
		{Text: "81", Confidence: 0.88, Box: image.Rect(65, 5, 80, 20)},
	}
	engine := &stubEngine{outputs: map[ModeCombo]Output{
		first: {Text: longText, Words: words},
	}}
	ext, err := NewExtractor(engine, Config{})
	require.NoError(t, err)

	result, err := ext.Extract(context.Background(), testImage())
	require.NoError(t, err)
	assert.Equal(t, words, result.Words)
	assert.Equal(t, "stub", result.Engine)
}
