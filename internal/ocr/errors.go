package ocr

import (
	"fmt"
	"strings"
)

// ExtractionError reports that every attempted mode combination produced
// empty text. Attempts preserves the order in which combinations were tried.
type ExtractionError struct {
	Attempts []ModeCombo
}

func (e *ExtractionError) Error() string {
	combos := make([]string, len(e.Attempts))
	for i, c := range e.Attempts {
		combos[i] = c.String()
	}
	return fmt.Sprintf("ocr: no text extracted after %d attempts (%s)",
		len(e.Attempts), strings.Join(combos, ", "))
}
