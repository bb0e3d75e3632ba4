package entities

import (
	"strings"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/terms"
)

// DosageLink attributes an amount and unit pair to a nearby medication.
// Links are advisory: their absence says nothing about the entities involved.
type DosageLink struct {
	Medication string `json:"medication"`
	Amount     string `json:"amount"`
	Unit       string `json:"unit"`

	// Distance in tokens between the amount and the medication span.
	Distance int `json:"distance"`
}

// DosageLinks pairs each numeric token with a dosage-unit entity starting at
// the following token, then attributes the pair to the closest medication
// entity within the configured window. Preceding medications win ties.
func (m *Matcher) DosageLinks(tokens []Token, entities []Entity) []DosageLink {
	var links []DosageLink
	for i, tok := range tokens {
		amount, ok := numericValue(tok.Text)
		if !ok {
			continue
		}
		unit := entityStartingAt(entities, i+1, terms.CategoryDosageUnit)
		if unit == nil {
			continue
		}
		med, distance := m.nearestMedication(entities, i)
		if med == nil {
			continue
		}
		links = append(links, DosageLink{
			Medication: med.Canonical,
			Amount:     amount,
			Unit:       unit.Canonical,
			Distance:   distance,
		})
	}
	return links
}

// numericValue reports whether the token is a bare number ("500", "12.5",
// "500,") after stripping surrounding punctuation, returning the cleaned
// text.
func numericValue(s string) (string, bool) {
	s = strings.Trim(s, "()[]\"'.,;:")
	if s == "" {
		return "", false
	}
	digits, separators := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' || r == ',':
			separators++
			if separators > 1 {
				return "", false
			}
		default:
			return "", false
		}
	}
	if digits == 0 {
		return "", false
	}
	return s, true
}

// entityStartingAt returns the entity of the given category whose span
// starts exactly at the token index. Entities are ordered by start.
func entityStartingAt(entities []Entity, index int, category terms.Category) *Entity {
	for i := range entities {
		switch {
		case entities[i].Start > index:
			return nil
		case entities[i].Start == index && entities[i].Category == category:
			return &entities[i]
		}
	}
	return nil
}

// nearestMedication finds the closest medication entity to the token at
// index, measured in tokens from the span edge, within the dosage window.
func (m *Matcher) nearestMedication(entities []Entity, index int) (*Entity, int) {
	var before, after *Entity
	for i := range entities {
		e := &entities[i]
		if e.Category != terms.CategoryMedication {
			continue
		}
		if e.End <= index {
			before = e
		} else if e.Start > index && after == nil {
			after = e
		}
	}

	outside := m.config.DosageWindow + 1
	beforeDist, afterDist := outside, outside
	if before != nil {
		beforeDist = index - before.End + 1
	}
	if after != nil {
		afterDist = after.Start - index
	}

	switch {
	case beforeDist <= afterDist && beforeDist <= m.config.DosageWindow:
		return before, beforeDist
	case afterDist <= m.config.DosageWindow:
		return after, afterDist
	}
	return nil, 0
}
