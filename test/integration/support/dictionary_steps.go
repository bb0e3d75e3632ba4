package support

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/terms"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/testutil"
)

// aVocabularyFileContaining writes a vocabulary file for later loading.
func (testCtx *TestContext) aVocabularyFileContaining(name string, doc *godog.DocString) error {
	path := testCtx.scratchPath(name)
	if err := os.WriteFile(path, []byte(doc.Content), 0o600); err != nil {
		return fmt.Errorf("failed to write vocabulary file: %w", err)
	}
	testCtx.vocabularies[name] = path
	return nil
}

// thePipelineUsesVocabulary rebuilds the pipeline around a previously
// written vocabulary file.
func (testCtx *TestContext) thePipelineUsesVocabulary(name string) error {
	path, ok := testCtx.vocabularies[name]
	if !ok {
		return fmt.Errorf("no vocabulary file %q was written", name)
	}
	return testCtx.rebuildPipeline(path)
}

// thePipelineUsesTheSampleVocabulary loads testdata/medical_terms.yaml from
// the repository.
func (testCtx *TestContext) thePipelineUsesTheSampleVocabulary() error {
	root, err := testutil.GetProjectRoot()
	if err != nil {
		return fmt.Errorf("failed to find project root: %w", err)
	}
	return testCtx.rebuildPipeline(filepath.Join(root, "testdata", "medical_terms.yaml"))
}

// loadingVocabularyShouldFailMentioning expects the pipeline build to
// reject the named vocabulary file.
func (testCtx *TestContext) loadingVocabularyShouldFailMentioning(name, text string) error {
	path, ok := testCtx.vocabularies[name]
	if !ok {
		return fmt.Errorf("no vocabulary file %q was written", name)
	}
	err := testCtx.rebuildPipeline(path)
	if err == nil {
		return fmt.Errorf("vocabulary %q loaded when it should have been rejected", name)
	}
	if !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(text)) {
		return fmt.Errorf("rejection does not mention %q: %v", text, err)
	}
	return nil
}

func (testCtx *TestContext) lookingUpShouldResolveTo(phrase, canonical, category string) error {
	dict := testCtx.Pipeline.Dictionary()
	if dict == nil {
		return errors.New("pipeline has no dictionary")
	}
	match, ok := dict.Lookup(phrase)
	if !ok {
		return fmt.Errorf("%q not found in the vocabulary", phrase)
	}
	if match.Canonical != canonical || match.Category != terms.Category(category) {
		return fmt.Errorf("%q resolved to %s %q, expected %s %q",
			phrase, match.Category, match.Canonical, category, canonical)
	}
	return nil
}

func (testCtx *TestContext) lookingUpShouldFindNothing(phrase string) error {
	dict := testCtx.Pipeline.Dictionary()
	if dict == nil {
		return errors.New("pipeline has no dictionary")
	}
	if match, ok := dict.Lookup(phrase); ok {
		return fmt.Errorf("%q unexpectedly resolved to %s %q", phrase, match.Category, match.Canonical)
	}
	return nil
}

func (testCtx *TestContext) theVocabularyShouldContainAtLeastEntries(count int) error {
	dict := testCtx.Pipeline.Dictionary()
	if dict == nil {
		return errors.New("pipeline has no dictionary")
	}
	if dict.Len() < count {
		return fmt.Errorf("vocabulary has %d entries, expected at least %d", dict.Len(), count)
	}
	return nil
}

func (testCtx *TestContext) theVocabularyShouldCoverCategory(category string) error {
	dict := testCtx.Pipeline.Dictionary()
	if dict == nil {
		return errors.New("pipeline has no dictionary")
	}
	for _, cat := range dict.Categories() {
		if cat == terms.Category(category) {
			return nil
		}
	}
	return fmt.Errorf("category %q not among %v", category, dict.Categories())
}

// RegisterDictionarySteps wires the vocabulary loading and lookup steps.
func (testCtx *TestContext) RegisterDictionarySteps(sc *godog.ScenarioContext) {
	sc.Step(`^a vocabulary file "([^"]*)" containing:$`, testCtx.aVocabularyFileContaining)
	sc.Step(`^the pipeline uses vocabulary "([^"]*)"$`, testCtx.thePipelineUsesVocabulary)
	sc.Step(`^the pipeline uses the sample vocabulary$`, testCtx.thePipelineUsesTheSampleVocabulary)
	sc.Step(`^loading vocabulary "([^"]*)" should fail mentioning "([^"]*)"$`,
		testCtx.loadingVocabularyShouldFailMentioning)
	sc.Step(`^looking up "([^"]*)" should resolve to "([^"]*)" in category "([^"]*)"$`,
		testCtx.lookingUpShouldResolveTo)
	sc.Step(`^looking up "([^"]*)" should find nothing$`, testCtx.lookingUpShouldFindNothing)
	sc.Step(`^the vocabulary should contain at least (\d+) entries$`,
		testCtx.theVocabularyShouldContainAtLeastEntries)
	sc.Step(`^the vocabulary should cover category "([^"]*)"$`, testCtx.theVocabularyShouldCoverCategory)
}
