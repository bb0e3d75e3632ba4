package pdf

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dslipak/pdf"
)

// TextLayer is the embedded text of one PDF page together with a rough
// usability score.
type TextLayer struct {
	Page      int     `json:"page"`
	Text      string  `json:"text"`
	WordCount int     `json:"word_count"`
	Score     float64 `json:"score"`
}

// Usable reports whether the layer is good enough to stand in for
// recognition output.
func (l TextLayer) Usable(threshold float64) bool {
	return l.Score >= threshold
}

// ReadTextLayers returns the embedded text of the selected pages, keyed by
// page number. Pages without a text layer are absent from the map. Digital
// exports (e-prescriptions, lab system reports) carry their full content
// here and need no recognition pass.
func ReadTextLayers(filename, pageRange string) (map[int]TextLayer, error) {
	pages, err := parsePageRange(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}

	reader, err := pdf.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}

	total := reader.NumPage()
	if len(pages) == 0 {
		pages = make([]int, 0, total)
		for n := 1; n <= total; n++ {
			pages = append(pages, n)
		}
	}

	layers := make(map[int]TextLayer)
	for _, n := range pages {
		if n < 1 || n > total {
			continue
		}
		text := pageText(reader.Page(n))
		if strings.TrimSpace(text) == "" {
			continue
		}
		words := len(strings.Fields(text))
		layers[n] = TextLayer{
			Page:      n,
			Text:      text,
			WordCount: words,
			Score:     scoreText(text, words),
		}
	}
	return layers, nil
}

// pageText reads the text of one page, preserving row breaks so that
// line-anchored field patterns keep working downstream.
func pageText(page pdf.Page) string {
	if page.V.IsNull() {
		return ""
	}

	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		var sb strings.Builder
		for _, row := range rows {
			for i, word := range row.Content {
				if i > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(word.S)
			}
			sb.WriteByte('\n')
		}
		return sb.String()
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

// scoreText rates extracted text between 0 and 1. Scanned pages often
// carry a sparse or garbled layer left behind by an earlier OCR pass; low
// scores route those pages to recognition instead.
func scoreText(text string, words int) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	score := 0.4
	if words >= 5 {
		score += 0.3
	}
	if alnumRatio(trimmed) >= 0.5 {
		score += 0.3
	}
	return score
}

func alnumRatio(s string) float64 {
	alnum, total := 0, 0
	for _, r := range s {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(alnum) / float64(total)
}
