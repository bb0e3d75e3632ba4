package pipeline

import (
	"strings"
	"unicode"
)

// Document types produced by classification.
const (
	DocTypePrescription = "prescription"
	DocTypeLabReport    = "lab_report"
	DocTypeMedicalNote  = "medical_note"
)

// DocumentTypes returns the known document types.
func DocumentTypes() []string {
	return []string{DocTypePrescription, DocTypeLabReport, DocTypeMedicalNote}
}

// Cue words and phrases per document type. Single words must match whole
// tokens; phrases match as substrings.
var (
	prescriptionCues = []string{
		"rx", "prescription", "pharmacy", "refill", "refills", "sig",
		"dispense", "tablet", "tablets", "capsule", "capsules",
	}
	labReportCues = []string{
		"laboratory", "lab", "specimen", "collected", "wbc", "rbc",
		"hemoglobin", "hematocrit", "platelets", "glucose",
		"reference range", "test results",
	}
)

// ClassifyText guesses the document type from recognized text by counting
// cue hits per type. Ties and texts without any cue fall through to the
// generic note type.
func ClassifyText(text string) string {
	folded := strings.ToLower(text)
	tokens := tokenSet(folded)

	rxScore := countCues(folded, tokens, prescriptionCues)
	labScore := countCues(folded, tokens, labReportCues)

	switch {
	case rxScore > labScore:
		return DocTypePrescription
	case labScore > rxScore:
		return DocTypeLabReport
	default:
		return DocTypeMedicalNote
	}
}

func tokenSet(folded string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		set[tok] = struct{}{}
	}
	return set
}

func countCues(folded string, tokens map[string]struct{}, cues []string) int {
	n := 0
	for _, cue := range cues {
		if strings.ContainsRune(cue, ' ') {
			if strings.Contains(folded, cue) {
				n++
			}
			continue
		}
		if _, ok := tokens[cue]; ok {
			n++
		}
	}
	return n
}
