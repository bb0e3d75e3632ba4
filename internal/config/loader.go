package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "medocr"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "MEDOCR"
)

// Loader reads configuration from files, environment variables, and bound
// flags.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with its own viper instance.
func NewLoader() *Loader {
	return NewLoaderWith(viper.New())
}

// NewLoaderWith creates a loader around an existing viper instance, usually
// the global one so cobra flag bindings take effect.
func NewLoaderWith(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load reads configuration from the search paths and environment, then
// validates it. A missing config file is fine; defaults and environment
// variables apply.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironment()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return l.unmarshal()
}

// LoadWithFile reads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironment()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	return l.unmarshal()
}

// unmarshal decodes viper state over the compiled-in defaults so nested
// values absent from every source keep their default.
func (l *Loader) unmarshal() (*Config, error) {
	config := DefaultConfig()
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// ConfigFileUsed returns the path of the config file used, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Viper returns the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".medocr"))
	}

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "medocr"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "medocr"))
	}

	l.v.AddConfigPath("/etc/medocr")
}

// setupEnvironment configures environment variable handling.
func (l *Loader) setupEnvironment() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults registers default values for the keys reachable through
// environment variables. Nested structures not listed here still default
// through DefaultConfig at unmarshal time.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	// Global settings
	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("log_format", defaults.LogFormat)

	// Pipeline defaults
	l.v.SetDefault("pipeline.engine", defaults.Pipeline.Engine)
	l.v.SetDefault("pipeline.dictionary", defaults.Pipeline.Dictionary)
	l.v.SetDefault("pipeline.extract_fields", defaults.Pipeline.ExtractFields)
	l.v.SetDefault("pipeline.link_dosages", defaults.Pipeline.LinkDosages)

	l.v.SetDefault("pipeline.preprocess.max_dimension", defaults.Pipeline.Preprocess.MaxDimension)
	l.v.SetDefault("pipeline.preprocess.grayscale.enabled", defaults.Pipeline.Preprocess.Grayscale.Enabled)
	l.v.SetDefault("pipeline.preprocess.denoise.enabled", defaults.Pipeline.Preprocess.Denoise.Enabled)
	l.v.SetDefault("pipeline.preprocess.denoise.radius", defaults.Pipeline.Preprocess.Denoise.Radius)
	l.v.SetDefault("pipeline.preprocess.contrast.enabled", defaults.Pipeline.Preprocess.Contrast.Enabled)
	l.v.SetDefault("pipeline.preprocess.contrast.clip_limit", defaults.Pipeline.Preprocess.Contrast.ClipLimit)
	l.v.SetDefault("pipeline.preprocess.contrast.grid_size", defaults.Pipeline.Preprocess.Contrast.GridSize)
	l.v.SetDefault("pipeline.preprocess.threshold.enabled", defaults.Pipeline.Preprocess.Threshold.Enabled)
	l.v.SetDefault("pipeline.preprocess.threshold.block_size", defaults.Pipeline.Preprocess.Threshold.BlockSize)
	l.v.SetDefault("pipeline.preprocess.threshold.c", defaults.Pipeline.Preprocess.Threshold.C)
	l.v.SetDefault("pipeline.preprocess.dilate.enabled", defaults.Pipeline.Preprocess.Dilate.Enabled)
	l.v.SetDefault("pipeline.preprocess.dilate.kernel_size", defaults.Pipeline.Preprocess.Dilate.KernelSize)
	l.v.SetDefault("pipeline.preprocess.dilate.iterations", defaults.Pipeline.Preprocess.Dilate.Iterations)

	l.v.SetDefault("pipeline.ocr.min_text_length", defaults.Pipeline.OCR.MinTextLength)
	l.v.SetDefault("pipeline.tesseract.languages", defaults.Pipeline.Tesseract.Languages)
	l.v.SetDefault("pipeline.tesseract.dpi", defaults.Pipeline.Tesseract.DPI)

	l.v.SetDefault("pipeline.matcher.max_window", defaults.Pipeline.Matcher.MaxWindow)
	l.v.SetDefault("pipeline.matcher.dosage_window", defaults.Pipeline.Matcher.DosageWindow)

	l.v.SetDefault("pipeline.pdf.use_text_layer", defaults.Pipeline.PDF.UseTextLayer)
	l.v.SetDefault("pipeline.pdf.analyzer.text_score_threshold", defaults.Pipeline.PDF.Analyzer.TextScoreThreshold)
	l.v.SetDefault("pipeline.pdf.analyzer.min_words", defaults.Pipeline.PDF.Analyzer.MinWords)

	// Output defaults
	l.v.SetDefault("output.format", defaults.Output.Format)

	// Server defaults
	l.v.SetDefault("server.host", defaults.Server.Host)
	l.v.SetDefault("server.port", defaults.Server.Port)
	l.v.SetDefault("server.cors_origin", defaults.Server.CORSOrigin)
	l.v.SetDefault("server.max_upload_mb", defaults.Server.MaxUploadMB)
	l.v.SetDefault("server.timeout_sec", defaults.Server.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout", defaults.Server.ShutdownTimeout)
	l.v.SetDefault("server.store_limit", defaults.Server.StoreLimit)
	l.v.SetDefault("server.rate_limit_rps", defaults.Server.RateLimitRPS)
	l.v.SetDefault("server.rate_limit_burst", defaults.Server.RateLimitBurst)

	// Batch defaults
	l.v.SetDefault("batch.workers", defaults.Batch.Workers)
	l.v.SetDefault("batch.format", defaults.Batch.Format)
	l.v.SetDefault("batch.recursive", defaults.Batch.Recursive)
	l.v.SetDefault("batch.continue_on_error", defaults.Batch.ContinueOnError)
}

// GenerateDefaultConfigFile writes the default configuration to a file.
func GenerateDefaultConfigFile(filename string) error {
	loader := NewLoader()
	loader.setDefaults()

	if filename == "" {
		filename = ConfigFileName + ".yaml"
	}
	return loader.v.WriteConfigAs(filename)
}

// ConfigSearchPaths returns the paths where configuration files are searched.
func ConfigSearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".medocr"))
		paths = append(paths, filepath.Join(home, ".config", "medocr"))
	}
	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, "medocr"))
	}

	paths = append(paths, "/etc/medocr")
	return paths
}
