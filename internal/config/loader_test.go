package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "medocr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadWithFile(t *testing.T) {
	path := writeConfigFile(t, `
log_level: debug
log_format: json
server:
  port: 9090
  max_upload_mb: 32
pipeline:
  engine: gvision
  ocr:
    min_text_length: 3
  pdf:
    use_text_layer: false
batch:
  workers: 8
`)

	cfg, err := NewLoader().LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 32, cfg.Server.MaxUploadMB)
	assert.Equal(t, "gvision", cfg.Pipeline.Engine)
	assert.Equal(t, 3, cfg.Pipeline.OCR.MinTextLength)
	assert.False(t, cfg.Pipeline.PDF.UseTextLayer)
	assert.Equal(t, 8, cfg.Batch.Workers)

	// Everything not in the file keeps its default.
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 3, cfg.Pipeline.Matcher.MaxWindow)
}

func TestLoadWithFile_KeepsNestedDefaults(t *testing.T) {
	path := writeConfigFile(t, "log_level: warn\n")

	cfg, err := NewLoader().LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	defaults := DefaultConfig()
	assert.Equal(t, defaults.Pipeline.OCR.Combos, cfg.Pipeline.OCR.Combos)
	assert.Equal(t, defaults.Pipeline.Preprocess, cfg.Pipeline.Preprocess)
	assert.Equal(t, defaults.Server, cfg.Server)
}

func TestLoadWithFile_Missing(t *testing.T) {
	_, err := NewLoader().LoadWithFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadWithFile_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "log_level: [unclosed\n")
	_, err := NewLoader().LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadWithFile_FailsValidation(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: -1\n")
	_, err := NewLoader().LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestLoadWithFile_EmptyPathFallsBack(t *testing.T) {
	// With no config file in the search paths this still succeeds on
	// defaults; run from a temp dir so a developer's medocr.yaml in the
	// working directory cannot interfere.
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.Chdir(t.TempDir()))

	cfg, err := NewLoader().LoadWithFile("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadReadsEnvironment(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.Chdir(t.TempDir()))

	t.Setenv("MEDOCR_LOG_LEVEL", "error")
	t.Setenv("MEDOCR_SERVER_PORT", "7070")
	t.Setenv("MEDOCR_PIPELINE_OCR_MIN_TEXT_LENGTH", "25")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Pipeline.OCR.MinTextLength)
}

func TestConfigFileUsed(t *testing.T) {
	path := writeConfigFile(t, "log_level: info\n")
	loader := NewLoader()
	_, err := loader.LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, loader.ConfigFileUsed())
}

func TestGenerateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generated.yaml")
	require.NoError(t, GenerateDefaultConfigFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "log_level: info")
	assert.Contains(t, string(data), "port: 8080")

	// The generated file loads back cleanly.
	cfg, err := NewLoader().LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestConfigSearchPaths(t *testing.T) {
	paths := ConfigSearchPaths()
	assert.Contains(t, paths, ".")
	assert.Contains(t, paths, "/etc/medocr")
}
