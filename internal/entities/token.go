// Package entities matches dictionary terms in recognized text using a
// bounded sliding window with greedy longest-match semantics.
package entities

import (
	"strings"
	"unicode"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/ocr"
)

// Token is one whitespace-delimited chunk of recognized text with its byte
// span in the source string.
type Token struct {
	Text  string
	Start int // byte offset of the first byte in the source text
	End   int // byte offset one past the last byte

	// Confidence in [0, 1]; negative until an engine word is aligned.
	Confidence float64
}

// Tokenize splits text on Unicode whitespace, keeping punctuation attached
// to its token. Offsets satisfy text[tok.Start:tok.End] == tok.Text.
func Tokenize(text string) []Token {
	var tokens []Token
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, Token{Text: text[start:i], Start: start, End: i, Confidence: -1})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, Token{Text: text[start:], Start: start, End: len(text), Confidence: -1})
	}
	return tokens
}

// alignLookahead bounds how far the word pointer may scan for a match, so a
// single garbled token cannot consume the rest of the word stream.
const alignLookahead = 3

// AlignConfidences copies engine word confidences onto case-fold-equal
// tokens. Both sequences are in reading order; words that do not line up
// with the current token are skipped, tolerating drift between the text
// split and the engine's word boxes.
func AlignConfidences(tokens []Token, words []ocr.Word) {
	wi := 0
	for ti := range tokens {
		limit := wi + alignLookahead
		if limit > len(words) {
			limit = len(words)
		}
		for wj := wi; wj < limit; wj++ {
			if strings.EqualFold(tokens[ti].Text, words[wj].Text) {
				if words[wj].Confidence >= 0 {
					tokens[ti].Confidence = words[wj].Confidence
				}
				wi = wj + 1
				break
			}
		}
	}
}
