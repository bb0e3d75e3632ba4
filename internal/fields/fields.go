// Package fields pulls labeled document fields out of raw text with
// compiled regular expressions: dates, patient and doctor details, lab
// values, instruction and diagnosis lines.
package fields

import (
	"regexp"
	"strings"
	"unicode"
)

// PatientInfo holds labeled patient fields found in the text.
type PatientInfo struct {
	Name string `json:"name,omitempty"`
	DOB  string `json:"dob,omitempty"`
	MRN  string `json:"mrn,omitempty"`
}

// DoctorInfo holds the prescribing or reporting physician's details.
type DoctorInfo struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// LabResult is one "Name: 12.3 unit" measurement line.
type LabResult struct {
	Test  string `json:"test"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// DocumentFields is the regex-extracted supplement to dictionary entities.
type DocumentFields struct {
	Dates        []string     `json:"dates,omitempty"`
	Patient      *PatientInfo `json:"patient,omitempty"`
	Doctor       *DoctorInfo  `json:"doctor,omitempty"`
	LabResults   []LabResult  `json:"lab_results,omitempty"`
	Instructions []string     `json:"instructions,omitempty"`
	Diagnoses    []string     `json:"diagnoses,omitempty"`
}

// Empty reports whether nothing was extracted.
func (f *DocumentFields) Empty() bool {
	return len(f.Dates) == 0 && f.Patient == nil && f.Doctor == nil &&
		len(f.LabResults) == 0 && len(f.Instructions) == 0 && len(f.Diagnoses) == 0
}

var (
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
		regexp.MustCompile(`\b\d{1,2}-\d{1,2}-\d{2,4}\b`),
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{1,2},? \d{4}\b`),
		regexp.MustCompile(`(?i)\b\d{1,2} (?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{4}\b`),
	}

	patientNamePattern = regexp.MustCompile(`\b(?i:Patient|Name)[:\s]+([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+){1,2})`)
	dobPattern         = regexp.MustCompile(`(?i)\b(?:DOB|Date of Birth|Born|Birth)[:\s]*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`)
	mrnPattern         = regexp.MustCompile(`(?i)\b(?:Patient ID|Medical Record Number|MRN|ID)\b[:\s]*([A-Z0-9-]+)`)

	// Doctor names stay case-sensitive: the capitalization is the signal.
	doctorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:Dr\.|Doctor)[ \t]+([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+){1,2})`),
		regexp.MustCompile(`(?:Physician|Provider):[ \t]*([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+){1,2})`),
	}
	phonePattern = regexp.MustCompile(`(?i)\b(?:Phone|Tel|Contact)(?:\s*number)?\s*:?\s*(\(\d{3}\)\s*\d{3}-\d{4}|\d{3}[-.\s]\d{3}[-.\s]\d{4}|\d{10})`)

	labPattern = regexp.MustCompile(`([A-Za-z][A-Za-z ]*):\s*(\d+\.?\d*)\s*([A-Za-z/%]+)`)

	instructionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:Take|Use|Apply|Inject)\b[^.;\n]+`),
		regexp.MustCompile(`(?i)\b(?:Instructions?|Directions?):\s*([^.;\n]+)`),
	}
	diagnosisPattern = regexp.MustCompile(`(?i)\b(?:Diagnosis|Diagnoses|Assessment|Impression|Conditions?):\s*([^.;\n]+)`)
)

// Extract runs every extractor over the text. Pure: no error conditions,
// missing fields stay zero.
func Extract(text string) *DocumentFields {
	f := &DocumentFields{
		Dates:        extractDates(text),
		Patient:      extractPatient(text),
		Doctor:       extractDoctor(text),
		LabResults:   extractLabResults(text),
		Instructions: extractInstructions(text),
		Diagnoses:    extractDiagnoses(text),
	}
	return f
}

func extractDates(text string) []string {
	var dates []string
	seen := make(map[string]struct{})
	for _, pattern := range datePatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			dates = append(dates, match)
		}
	}
	return dates
}

func extractPatient(text string) *PatientInfo {
	info := PatientInfo{}
	if m := patientNamePattern.FindStringSubmatch(text); m != nil {
		info.Name = m[1]
	}
	if m := dobPattern.FindStringSubmatch(text); m != nil {
		info.DOB = m[1]
	}
	if m := mrnPattern.FindStringSubmatch(text); m != nil {
		info.MRN = m[1]
	}
	if info == (PatientInfo{}) {
		return nil
	}
	return &info
}

func extractDoctor(text string) *DoctorInfo {
	info := DoctorInfo{}
	for _, pattern := range doctorPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			info.Name = m[1]
			break
		}
	}
	if m := phonePattern.FindStringSubmatch(text); m != nil {
		info.Phone = m[1]
	}
	if info == (DoctorInfo{}) {
		return nil
	}
	return &info
}

func extractLabResults(text string) []LabResult {
	var results []LabResult
	for _, m := range labPattern.FindAllStringSubmatch(text, -1) {
		unit := m[3]
		if !strings.ContainsFunc(unit, unicode.IsLetter) && !strings.Contains(unit, "%") {
			continue
		}
		results = append(results, LabResult{
			Test:  strings.TrimSpace(m[1]),
			Value: m[2],
			Unit:  unit,
		})
	}
	return results
}

func extractInstructions(text string) []string {
	var instructions []string
	seen := make(map[string]struct{})
	for _, pattern := range instructionPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			line := m[0]
			if len(m) > 1 && m[1] != "" {
				line = m[1]
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if _, ok := seen[line]; ok {
				continue
			}
			seen[line] = struct{}{}
			instructions = append(instructions, line)
		}
	}
	return instructions
}

func extractDiagnoses(text string) []string {
	var diagnoses []string
	for _, m := range diagnosisPattern.FindAllStringSubmatch(text, -1) {
		if d := strings.TrimSpace(m[1]); d != "" {
			diagnoses = append(diagnoses, d)
		}
	}
	return diagnoses
}
