package terms

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Category identifies the kind of medical term an entry describes.
// The set is closed; sources referencing any other category fail to load.
type Category string

const (
	CategoryMedication      Category = "medication"
	CategoryDosageUnit      Category = "dosage_unit"
	CategoryDosageFrequency Category = "dosage_frequency"
	CategoryLabTest         Category = "lab_test"
	CategoryVitalSign       Category = "vital_sign"
	CategoryAbbreviation    Category = "abbreviation"
)

// AllCategories returns the closed category set in canonical order.
// The order also decides which category wins when the same surface form
// appears in more than one.
func AllCategories() []Category {
	return []Category{
		CategoryMedication,
		CategoryDosageUnit,
		CategoryDosageFrequency,
		CategoryLabTest,
		CategoryVitalSign,
		CategoryAbbreviation,
	}
}

// ParseCategory converts a source category name into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllCategories() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Valid reports whether c is one of the closed category set.
func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// Entry is a single reference term: the canonical form plus the surface
// forms that should resolve to it. Abbreviation keys expand to the
// canonical form on lookup while the surface text is preserved by callers.
type Entry struct {
	Canonical     string   `json:"canonical"               yaml:"canonical"`
	Synonyms      []string `json:"synonyms,omitempty"      yaml:"synonyms,omitempty"`
	Abbreviations []string `json:"abbreviations,omitempty" yaml:"abbreviations,omitempty"`
}

// Match is the result of a successful dictionary lookup.
type Match struct {
	Category  Category
	Canonical string
	Entry     *Entry
}

// Dictionary is the immutable reference vocabulary. It is built once and
// shared read-only across concurrent pipeline runs; no method mutates it.
type Dictionary struct {
	entries map[Category][]Entry
	index   map[string]Match
}

// New builds a validated Dictionary from entries grouped by category.
// Validation failures return a *LoadError; no partial dictionary is
// ever returned.
func New(entries map[Category][]Entry) (*Dictionary, error) {
	d := &Dictionary{
		entries: make(map[Category][]Entry, len(entries)),
		index:   make(map[string]Match, len(entries)*4),
	}
	for cat, list := range entries {
		if !cat.Valid() {
			return nil, &LoadError{Reason: fmt.Sprintf("unknown category %q", cat)}
		}
		if len(list) == 0 {
			return nil, &LoadError{Reason: fmt.Sprintf("category %q has no entries", cat)}
		}
		copied := make([]Entry, len(list))
		copy(copied, list)
		d.entries[cat] = copied
	}
	if len(d.entries) == 0 {
		return nil, &LoadError{Reason: "no categories defined"}
	}
	if err := d.buildIndex(); err != nil {
		return nil, err
	}
	return d, nil
}

// buildIndex validates entries and fills the lookup index. Categories are
// walked in AllCategories order and entries in source order so collisions
// resolve deterministically (first occurrence wins).
func (d *Dictionary) buildIndex() error {
	for _, cat := range AllCategories() {
		list, ok := d.entries[cat]
		if !ok {
			continue
		}
		seen := make(map[string]struct{}, len(list))
		for i := range list {
			entry := &list[i]
			canonical := Fold(entry.Canonical)
			if canonical == "" {
				return &LoadError{Reason: fmt.Sprintf("category %q: entry %d has empty canonical form", cat, i)}
			}
			if _, dup := seen[canonical]; dup {
				return &LoadError{Reason: fmt.Sprintf("category %q: duplicate canonical term %q", cat, entry.Canonical)}
			}
			seen[canonical] = struct{}{}

			d.addKey(canonical, cat, entry)
			for _, s := range entry.Synonyms {
				d.addKey(Fold(s), cat, entry)
			}
			for _, a := range entry.Abbreviations {
				d.addKey(Fold(a), cat, entry)
			}
		}
	}
	return nil
}

func (d *Dictionary) addKey(key string, cat Category, entry *Entry) {
	if key == "" {
		return
	}
	if _, exists := d.index[key]; exists {
		return
	}
	d.index[key] = Match{Category: cat, Canonical: entry.Canonical, Entry: entry}
}

// Lookup resolves a token or phrase against the dictionary. Matching is
// case-insensitive and whitespace-folded; canonical forms, synonyms, and
// abbreviation keys match equally.
func (d *Dictionary) Lookup(phrase string) (Match, bool) {
	m, ok := d.index[Fold(phrase)]
	return m, ok
}

// LookupFolded is Lookup for callers that already folded the phrase,
// avoiding a second normalization pass on hot paths.
func (d *Dictionary) LookupFolded(folded string) (Match, bool) {
	m, ok := d.index[folded]
	return m, ok
}

// Categories returns the categories present, in canonical order.
func (d *Dictionary) Categories() []Category {
	out := make([]Category, 0, len(d.entries))
	for _, cat := range AllCategories() {
		if _, ok := d.entries[cat]; ok {
			out = append(out, cat)
		}
	}
	return out
}

// Entries returns a copy of the entries for one category.
func (d *Dictionary) Entries(cat Category) []Entry {
	list, ok := d.entries[cat]
	if !ok {
		return nil
	}
	out := make([]Entry, len(list))
	copy(out, list)
	return out
}

// Len returns the total number of entries across all categories.
func (d *Dictionary) Len() int {
	n := 0
	for _, list := range d.entries {
		n += len(list)
	}
	return n
}

// Keys returns the number of distinct lookup keys in the index.
func (d *Dictionary) Keys() int { return len(d.index) }

// Fold normalizes a phrase for matching: NFKC normalization, lower case,
// and inner whitespace collapsed to single spaces.
func Fold(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}
