package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ToJSON serializes a result to pretty JSON.
func ToJSON(res *StructuredResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToJSONResults serializes multiple results to pretty JSON.
func ToJSONResults(results []*StructuredResult) (string, error) {
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToPlainText renders the recognized text followed by the matched terms,
// one per line.
func ToPlainText(res *StructuredResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	var sb strings.Builder
	sb.WriteString(res.RawText)
	if len(res.Entities) > 0 {
		sb.WriteString("\n\n")
		for _, e := range res.Entities {
			fmt.Fprintf(&sb, "%s\t%s\t%q\n", e.Category, e.Canonical, e.Surface)
		}
	}
	return sb.String(), nil
}

// ToCSVEntities exports matched entities as CSV with a header row.
func ToCSVEntities(res *StructuredResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"category", "canonical_term", "surface_text", "start_offset", "end_offset", "confidence"})
	for _, e := range res.Entities {
		row := []string{
			string(e.Category),
			e.Canonical,
			e.Surface,
			strconv.Itoa(e.Start),
			strconv.Itoa(e.End),
			fmt.Sprintf("%.3f", e.Confidence),
		}
		_ = w.Write(row)
	}
	w.Flush()
	return buf.String(), nil
}

// ValidateResult performs simple consistency checks on a result.
func ValidateResult(res *StructuredResult) error {
	if res == nil {
		return errors.New("nil result")
	}
	if strings.TrimSpace(res.RawText) == "" && len(res.Entities) > 0 {
		return ErrInconsistentResult
	}
	for i, e := range res.Entities {
		if e.Start < 0 || e.End < e.Start {
			return fmt.Errorf("entity %d has invalid token span [%d,%d)", i, e.Start, e.End)
		}
		if e.Confidence < 0 || e.Confidence > 1 {
			return fmt.Errorf("entity %d confidence out of range: %g", i, e.Confidence)
		}
		if i > 0 && e.Start < res.Entities[i-1].Start {
			return fmt.Errorf("entity %d out of order", i)
		}
	}
	return nil
}
