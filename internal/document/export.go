package document

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/entities"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/terms"
)

// ExportJSON renders one stored document as indented JSON.
func (s *Store) ExportJSON(id uuid.UUID) ([]byte, error) {
	doc, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ExportText renders one stored document as a human-readable report.
func (s *Store) ExportText(id uuid.UUID) (string, error) {
	doc, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return renderReport(doc), nil
}

func renderReport(doc *Document) string {
	var sb strings.Builder
	res := doc.Result

	fmt.Fprintf(&sb, "Document: %s\n", doc.Filename)
	fmt.Fprintf(&sb, "Type: %s\n", res.DocumentType)
	fmt.Fprintf(&sb, "Created: %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05 UTC"))

	sb.WriteString("\nText:\n")
	sb.WriteString(res.RawText)
	if !strings.HasSuffix(res.RawText, "\n") {
		sb.WriteString("\n")
	}

	if len(res.Entities) > 0 {
		sb.WriteString("\nEntities:\n")
		byCategory := make(map[terms.Category][]entities.Entity)
		for _, e := range res.Entities {
			byCategory[e.Category] = append(byCategory[e.Category], e)
		}
		for _, cat := range terms.AllCategories() {
			ents := byCategory[cat]
			if len(ents) == 0 {
				continue
			}
			fmt.Fprintf(&sb, "  %s:\n", cat)
			for _, e := range ents {
				fmt.Fprintf(&sb, "    - %s (%q, confidence %.2f)\n", e.Canonical, e.Surface, e.Confidence)
			}
		}
	}

	if len(res.DosageLinks) > 0 {
		sb.WriteString("\nDosages:\n")
		for _, l := range res.DosageLinks {
			fmt.Fprintf(&sb, "  - %s %s %s\n", l.Medication, l.Amount, l.Unit)
		}
	}

	if f := res.Fields; f != nil {
		sb.WriteString("\nFields:\n")
		if len(f.Dates) > 0 {
			fmt.Fprintf(&sb, "  Dates: %s\n", strings.Join(f.Dates, ", "))
		}
		if p := f.Patient; p != nil {
			fmt.Fprintf(&sb, "  Patient: %s", p.Name)
			if p.DOB != "" {
				fmt.Fprintf(&sb, " (DOB %s)", p.DOB)
			}
			if p.MRN != "" {
				fmt.Fprintf(&sb, " MRN %s", p.MRN)
			}
			sb.WriteString("\n")
		}
		if d := f.Doctor; d != nil {
			fmt.Fprintf(&sb, "  Doctor: %s", d.Name)
			if d.Phone != "" {
				fmt.Fprintf(&sb, " (%s)", d.Phone)
			}
			sb.WriteString("\n")
		}
		for _, lr := range f.LabResults {
			fmt.Fprintf(&sb, "  Lab: %s = %s %s\n", lr.Test, lr.Value, lr.Unit)
		}
		for _, ins := range f.Instructions {
			fmt.Fprintf(&sb, "  Instruction: %s\n", ins)
		}
		for _, dg := range f.Diagnoses {
			fmt.Fprintf(&sb, "  Diagnosis: %s\n", dg)
		}
	}

	return sb.String()
}
