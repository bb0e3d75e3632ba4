package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/entities"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/fields"
)

// ErrInconsistentResult reports entities without any source text. That
// combination can only come from a stage wiring mistake, never from an
// empty document.
var ErrInconsistentResult = errors.New("entities present without source text")

// Assemble composes the final structured result from the stage outputs.
// It validates cross-stage consistency and fills metadata defaults but
// performs no I/O.
func Assemble(docType, rawText string, ents []entities.Entity, links []entities.DosageLink,
	flds *fields.DocumentFields, meta Metadata,
) (*StructuredResult, error) {
	if strings.TrimSpace(rawText) == "" && len(ents) > 0 {
		return nil, fmt.Errorf("assemble %d entities: %w", len(ents), ErrInconsistentResult)
	}
	if docType == "" {
		docType = DocTypeMedicalNote
	}
	if ents == nil {
		ents = []entities.Entity{}
	}
	if meta.PreprocessStages == nil {
		meta.PreprocessStages = []string{}
	}
	if meta.Timestamp == "" {
		meta.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return &StructuredResult{
		DocumentType: docType,
		RawText:      rawText,
		Entities:     ents,
		DosageLinks:  links,
		Fields:       flds,
		Metadata:     meta,
	}, nil
}
