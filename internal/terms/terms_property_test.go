package terms

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genPhrase generates words joined and padded by erratic whitespace.
func genPhrase() gopter.Gen {
	return gopter.CombineGens(
		gen.SliceOf(gen.AlphaString()),
		gen.OneConstOf(" ", "  ", "\t", " \t ", "\n"),
	).Map(func(vals []interface{}) string {
		words := vals[0].([]string)
		pad := vals[1].(string)
		return pad + strings.Join(words, pad) + pad
	})
}

// TestFold_Idempotent verifies folding an already folded phrase changes nothing.
func TestFold_Idempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("folding twice equals folding once", prop.ForAll(
		func(s string) bool {
			once := Fold(s)
			return Fold(once) == once
		},
		genPhrase(),
	))

	properties.TestingRun(t)
}

// TestFold_CollapsesWhitespace verifies the folded form is trimmed with single spaces.
func TestFold_CollapsesWhitespace(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("folded phrase has no leading, trailing or doubled spaces", prop.ForAll(
		func(s string) bool {
			folded := Fold(s)
			if folded == "" {
				return true
			}
			return folded == strings.TrimSpace(folded) && !strings.Contains(folded, "  ")
		},
		genPhrase(),
	))

	properties.TestingRun(t)
}

// TestFold_CaseInsensitive verifies case never changes the folded form.
func TestFold_CaseInsensitive(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("upper-cased input folds to the same key", prop.ForAll(
		func(s string) bool {
			return Fold(strings.ToUpper(s)) == Fold(s)
		},
		genPhrase(),
	))

	properties.TestingRun(t)
}

// TestLookup_SurvivesMangling verifies known terms resolve however they are
// cased and padded.
func TestLookup_SurvivesMangling(t *testing.T) {
	dict := Default()
	properties := gopter.NewProperties(nil)

	properties.Property("mangled known terms still resolve to their canonical form", prop.ForAll(
		func(term, pad string, upper bool) bool {
			mangled := pad + term + pad
			if upper {
				mangled = strings.ToUpper(mangled)
			}

			m, ok := dict.Lookup(mangled)
			if !ok {
				return false
			}

			want, ok := dict.Lookup(term)
			return ok && m.Canonical == want.Canonical && m.Category == want.Category
		},
		gen.OneConstOf("aspirin", "metformin", "once daily", "mg", "blood pressure", "asa"),
		gen.OneConstOf("", " ", "  ", "\t"),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
