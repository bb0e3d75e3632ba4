package pipeline

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/entities"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/ocr"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/terms"
)

func sampleResult() *StructuredResult {
	return &StructuredResult{
		DocumentType: DocTypePrescription,
		RawText:      "Take aspirin 81 mg once daily",
		Entities: []entities.Entity{
			{Category: terms.CategoryMedication, Canonical: "aspirin", Surface: "aspirin", Start: 1, End: 2, Confidence: 0.93},
			{Category: terms.CategoryDosageUnit, Canonical: "mg", Surface: "mg", Start: 3, End: 4, Confidence: 0.97},
			{Category: terms.CategoryDosageFrequency, Canonical: "once daily", Surface: "once daily", Start: 4, End: 6, Confidence: 0.88},
		},
		DosageLinks: []entities.DosageLink{
			{Medication: "aspirin", Amount: "81", Unit: "mg", Distance: 1},
		},
		Width:  640,
		Height: 480,
		Metadata: Metadata{
			PreprocessStages: []string{"grayscale", "clahe", "adaptive_threshold"},
			OCR: OCRMetadata{
				Engine:   "tesseract",
				Mode:     ocr.ModeCombo{PSM: ocr.PSMSingleColumn, OEM: ocr.EngineNeural},
				Attempts: []ocr.ModeCombo{{PSM: ocr.PSMSingleColumn, OEM: ocr.EngineNeural}},
			},
			Timing:    Timing{PreprocessNs: 1200, OCRNs: 90000, MatchNs: 400, TotalNs: 91600},
			Timestamp: "2026-08-01T12:00:00Z",
		},
	}
}

func TestStructuredResult_JSONShape(t *testing.T) {
	data, err := json.Marshal(sampleResult())
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Contains(t, doc, "document_type")
	assert.Contains(t, doc, "raw_text")
	assert.Contains(t, doc, "entities")
	assert.Contains(t, doc, "processing_metadata")
	assert.NotContains(t, doc, "fields")
	assert.NotContains(t, doc, "words")

	ents, ok := doc["entities"].([]interface{})
	require.True(t, ok)
	require.Len(t, ents, 3)
	first, ok := ents[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "medication", first["category"])
	assert.Equal(t, "aspirin", first["canonical_term"])
	assert.Equal(t, "aspirin", first["surface_text"])
	assert.Equal(t, float64(1), first["start_offset"])
	assert.Equal(t, float64(2), first["end_offset"])
	assert.InDelta(t, 0.93, first["confidence"], 1e-9)

	meta, ok := doc["processing_metadata"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, meta, "preprocess_stages")
	assert.Contains(t, meta, "ocr")
	assert.Contains(t, meta, "timestamp")

	ocrMeta, ok := meta["ocr"].(map[string]interface{})
	require.True(t, ok)
	mode, ok := ocrMeta["mode"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(4), mode["psm"])
	assert.Equal(t, float64(1), mode["oem"])
}

func TestStructuredResult_RoundTripPreservesOrder(t *testing.T) {
	res := sampleResult()
	data, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded StructuredResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *res, decoded)

	for i, e := range decoded.Entities {
		assert.Equal(t, res.Entities[i].Canonical, e.Canonical)
	}
}

func TestToJSON(t *testing.T) {
	out, err := ToJSON(sampleResult())
	require.NoError(t, err)
	assert.Contains(t, out, `"document_type": "prescription"`)
	assert.Contains(t, out, `"canonical_term": "aspirin"`)

	_, err = ToJSON(nil)
	require.Error(t, err)
}

func TestToJSONResults(t *testing.T) {
	out, err := ToJSONResults([]*StructuredResult{sampleResult(), sampleResult()})
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, `"raw_text"`))
}

func TestToPlainText(t *testing.T) {
	out, err := ToPlainText(sampleResult())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Take aspirin 81 mg once daily"))
	assert.Contains(t, out, "medication\taspirin")
	assert.Contains(t, out, "dosage_frequency\tonce daily")

	_, err = ToPlainText(nil)
	require.Error(t, err)
}

func TestToPlainText_NoEntities(t *testing.T) {
	res := &StructuredResult{RawText: "nothing matched here"}
	out, err := ToPlainText(res)
	require.NoError(t, err)
	assert.Equal(t, "nothing matched here", out)
}

func TestToCSVEntities(t *testing.T) {
	out, err := ToCSVEntities(sampleResult())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "category,canonical_term,surface_text,start_offset,end_offset,confidence", lines[0])
	assert.Equal(t, "medication,aspirin,aspirin,1,2,0.930", lines[1])
	assert.Equal(t, "dosage_frequency,once daily,once daily,4,6,0.880", lines[3])
}

func TestValidateResult(t *testing.T) {
	require.NoError(t, ValidateResult(sampleResult()))

	require.Error(t, ValidateResult(nil))

	bad := sampleResult()
	bad.RawText = "  "
	require.ErrorIs(t, ValidateResult(bad), ErrInconsistentResult)

	bad = sampleResult()
	bad.Entities[1].End = 0
	require.Error(t, ValidateResult(bad))

	bad = sampleResult()
	bad.Entities[0].Confidence = 1.7
	require.Error(t, ValidateResult(bad))

	bad = sampleResult()
	bad.Entities[2].Start = 0
	require.Error(t, ValidateResult(bad))
}
