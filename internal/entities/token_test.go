package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/ocr"
)

func TestTokenize_OffsetsSliceBackToText(t *testing.T) {
	text := "Take aspirin 81 mg\nonce daily"
	tokens := Tokenize(text)
	require.Len(t, tokens, 6)

	for _, tok := range tokens {
		assert.Equal(t, tok.Text, text[tok.Start:tok.End])
	}
	assert.Equal(t, "aspirin", tokens[1].Text)
	assert.Equal(t, "once", tokens[4].Text)
}

func TestTokenize_PunctuationStaysAttached(t *testing.T) {
	tokens := Tokenize("Take aspirin, then rest.")
	require.Len(t, tokens, 4)
	assert.Equal(t, "aspirin,", tokens[1].Text)
	assert.Equal(t, "rest.", tokens[3].Text)
}

func TestTokenize_CollapsesRuns(t *testing.T) {
	tokens := Tokenize("  bp \t 120/80 \n\n temp  ")
	require.Len(t, tokens, 3)
	assert.Equal(t, "bp", tokens[0].Text)
	assert.Equal(t, "120/80", tokens[1].Text)
	assert.Equal(t, "temp", tokens[2].Text)
}

func TestTokenize_Empty(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("   \n\t "))
}

func TestTokenize_MultibyteOffsets(t *testing.T) {
	text := "Dr. Müller prescribed 5 mg"
	for _, tok := range Tokenize(text) {
		assert.Equal(t, tok.Text, text[tok.Start:tok.End])
	}
}

func TestTokenize_ConfidenceStartsUnset(t *testing.T) {
	for _, tok := range Tokenize("aspirin 81 mg") {
		assert.Negative(t, tok.Confidence)
	}
}

func TestAlignConfidences_InOrder(t *testing.T) {
	tokens := Tokenize("aspirin 81 mg")
	words := []ocr.Word{
		{Text: "aspirin", Confidence: 0.93},
		{Text: "81", Confidence: 0.88},
		{Text: "mg", Confidence: 0.95},
	}

	AlignConfidences(tokens, words)

	assert.InDelta(t, 0.93, tokens[0].Confidence, 1e-9)
	assert.InDelta(t, 0.88, tokens[1].Confidence, 1e-9)
	assert.InDelta(t, 0.95, tokens[2].Confidence, 1e-9)
}

func TestAlignConfidences_CaseFold(t *testing.T) {
	tokens := Tokenize("Aspirin")
	AlignConfidences(tokens, []ocr.Word{{Text: "ASPIRIN", Confidence: 0.8}})
	assert.InDelta(t, 0.8, tokens[0].Confidence, 1e-9)
}

func TestAlignConfidences_SkipsUnmatchedWords(t *testing.T) {
	tokens := Tokenize("aspirin mg")
	words := []ocr.Word{
		{Text: "aspirin", Confidence: 0.9},
		{Text: "~~", Confidence: 0.1},
		{Text: "mg", Confidence: 0.85},
	}

	AlignConfidences(tokens, words)

	assert.InDelta(t, 0.9, tokens[0].Confidence, 1e-9)
	assert.InDelta(t, 0.85, tokens[1].Confidence, 1e-9)
}

func TestAlignConfidences_UnmatchedTokenStaysUnset(t *testing.T) {
	tokens := Tokenize("aspirin unreadable mg")
	words := []ocr.Word{
		{Text: "aspirin", Confidence: 0.9},
		{Text: "mg", Confidence: 0.85},
	}

	AlignConfidences(tokens, words)

	assert.InDelta(t, 0.9, tokens[0].Confidence, 1e-9)
	assert.Negative(t, tokens[1].Confidence)
	assert.InDelta(t, 0.85, tokens[2].Confidence, 1e-9)
}

func TestAlignConfidences_LookaheadBounded(t *testing.T) {
	tokens := Tokenize("mg")
	words := []ocr.Word{
		{Text: "a", Confidence: 0.1},
		{Text: "b", Confidence: 0.1},
		{Text: "c", Confidence: 0.1},
		{Text: "mg", Confidence: 0.9},
	}

	AlignConfidences(tokens, words)

	assert.Negative(t, tokens[0].Confidence, "match beyond the lookahead window must not apply")
}

func TestAlignConfidences_NoWords(t *testing.T) {
	tokens := Tokenize("aspirin")
	AlignConfidences(tokens, nil)
	assert.Negative(t, tokens[0].Confidence)
}
