package terms

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
medication:
  - canonical: aspirin
    synonyms: [acetylsalicylic acid]
    abbreviations: [asa]
dosage_frequency:
  - canonical: twice daily
    abbreviations: [bid]
`

const sampleJSON = `{
  "medication": [
    {"canonical": "aspirin", "synonyms": ["acetylsalicylic acid"]}
  ],
  "vital_sign": [
    {"canonical": "blood pressure", "abbreviations": ["bp"]}
  ]
}`

func TestLoad_YAML(t *testing.T) {
	d, err := Load(strings.NewReader(sampleYAML), "yaml")
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())

	m, ok := d.Lookup("BID")
	require.True(t, ok)
	assert.Equal(t, "twice daily", m.Canonical)
}

func TestLoad_JSON(t *testing.T) {
	d, err := Load(strings.NewReader(sampleJSON), "json")
	require.NoError(t, err)

	m, ok := d.Lookup("bp")
	require.True(t, ok)
	assert.Equal(t, CategoryVitalSign, m.Category)
	assert.Equal(t, "blood pressure", m.Canonical)
}

func TestLoad_MalformedJSON(t *testing.T) {
	_, err := Load(strings.NewReader(`{"medication": [`), "json")
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Error(), "parsing JSON")
}

func TestLoad_UnknownCategoryName(t *testing.T) {
	_, err := Load(strings.NewReader(`{"potions": [{"canonical": "x"}]}`), "json")
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Error(), "unknown category")
}

func TestLoad_DuplicateCanonicalFailsBeforeUse(t *testing.T) {
	src := `{"medication": [{"canonical": "aspirin"}, {"canonical": "ASPIRIN"}]}`
	d, err := Load(strings.NewReader(src), "json")
	assert.Nil(t, d)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Error(), "duplicate canonical")
}

func TestLoad_EmptySource(t *testing.T) {
	_, err := Load(strings.NewReader(`{}`), "json")
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Error(), "no categories")
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load(strings.NewReader("whatever"), "toml")
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Error(), "unsupported dictionary format")
}

func TestLoadFile_InfersFormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	d, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Error(), "opening source")
}

func TestLoadFile_EmptyPath(t *testing.T) {
	_, err := LoadFile("")
	var le *LoadError
	require.ErrorAs(t, err, &le)
}

func TestLoadFile_NoExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terms")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	_, err := LoadFile(path)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Error(), "cannot infer format")
}

func TestDefault_ValidAndComplete(t *testing.T) {
	d := Default()
	assert.Equal(t, AllCategories(), d.Categories())

	// Spot checks against the reference data.
	m, ok := d.Lookup("tid")
	require.True(t, ok)
	assert.Equal(t, "three times daily", m.Canonical)

	m, ok = d.Lookup("BP")
	require.True(t, ok)
	assert.Equal(t, "blood pressure", m.Canonical)

	m, ok = d.Lookup("Tylenol")
	require.True(t, ok)
	assert.Equal(t, "acetaminophen", m.Canonical)

	m, ok = d.Lookup("hba1c")
	require.True(t, ok)
	assert.Equal(t, CategoryLabTest, m.Category)
}

func TestResolveDictionaryPath_Explicit(t *testing.T) {
	assert.Equal(t, "/tmp/x.yaml", ResolveDictionaryPath("/tmp/x.yaml"))
}

func TestResolveDictionaryPath_Environment(t *testing.T) {
	t.Setenv(EnvDictionaryPath, "/tmp/from-env.yaml")
	assert.Equal(t, "/tmp/from-env.yaml", ResolveDictionaryPath(""))
}

func TestResolveDictionaryPath_WorkingDirectory(t *testing.T) {
	t.Setenv(EnvDictionaryPath, "")
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultDictionaryFile)
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))
	t.Chdir(dir)

	assert.Equal(t, path, ResolveDictionaryPath(""))
}

func TestLoadResolved_FallsBackToDefault(t *testing.T) {
	t.Setenv(EnvDictionaryPath, "")
	t.Chdir(t.TempDir())

	d, path, err := LoadResolved("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, AllCategories(), d.Categories())
}

func TestLoadResolved_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terms.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o600))

	d, used, err := LoadResolved(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 2, d.Len())
}
