// Package config holds the application configuration tree and its loader.
// Values come from, in increasing precedence: defaults, a config file,
// MEDOCR_ environment variables, and bound command-line flags.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/pipeline"
)

// Config is the complete configuration for the medocr application.
// It covers every command (process, batch, serve, dict) and loads from
// configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" json:"log_format"`

	// Processing chain configuration
	Pipeline pipeline.Config `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`

	// Output configuration (process command)
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch processing configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format     string `mapstructure:"format" yaml:"format" json:"format"`
	File       string `mapstructure:"file" yaml:"file" json:"file"`
	OverlayDir string `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`

	// StoreLimit bounds the in-memory document store; 0 keeps everything.
	StoreLimit int `mapstructure:"store_limit" yaml:"store_limit" json:"store_limit"`

	// RateLimitRPS enables per-client rate limiting when positive.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" yaml:"rate_limit_rps" json:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst" json:"rate_limit_burst"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	Format          string `mapstructure:"format" yaml:"format" json:"format"`
	Recursive       bool   `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}

// DefaultConfig returns a configuration with every default named.
func DefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Pipeline:  pipeline.DefaultConfig(),
		Output: OutputConfig{
			Format: "json",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     16,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
			StoreLimit:      100,
			RateLimitRPS:    0,
			RateLimitBurst:  20,
		},
		Batch: BatchConfig{
			Workers:         4,
			Format:          "json",
			Recursive:       false,
			ContinueOnError: false,
		},
	}
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		return fmt.Errorf("invalid log format: %s (must be one of: %s)", c.LogFormat, strings.Join(validLogFormats, ", "))
	}

	validOutputFormats := []string{"json", "text", "csv", "overlay"}
	if c.Output.Format != "" && !contains(validOutputFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validOutputFormats, ", "))
	}

	validEngines := []string{pipeline.EngineTesseract, pipeline.EngineGVision}
	if c.Pipeline.Engine != "" && !contains(validEngines, c.Pipeline.Engine) {
		return fmt.Errorf("invalid ocr engine: %s (must be one of: %s)", c.Pipeline.Engine, strings.Join(validEngines, ", "))
	}

	if c.Pipeline.OCR.MinTextLength < 0 {
		return fmt.Errorf("invalid min text length: %d (must not be negative)", c.Pipeline.OCR.MinTextLength)
	}
	if err := c.Pipeline.Matcher.Validate(); err != nil {
		return fmt.Errorf("invalid matcher configuration: %w", err)
	}
	if err := validateThreshold(c.Pipeline.PDF.Analyzer.TextScoreThreshold, "pdf.analyzer.text_score_threshold"); err != nil {
		return err
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout: %d (must be positive)", c.Server.ShutdownTimeout)
	}
	if c.Server.StoreLimit < 0 {
		return fmt.Errorf("invalid store limit: %d (must not be negative)", c.Server.StoreLimit)
	}
	if c.Server.RateLimitRPS < 0 {
		return fmt.Errorf("invalid rate limit: %.2f (must not be negative)", c.Server.RateLimitRPS)
	}

	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}
	validBatchFormats := []string{"json", "txt"}
	if c.Batch.Format != "" && !contains(validBatchFormats, c.Batch.Format) {
		return fmt.Errorf("invalid batch format: %s (must be one of: %s)", c.Batch.Format, strings.Join(validBatchFormats, ", "))
	}

	return nil
}

// SlogLevel maps the configured log level onto a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func validateThreshold(value float64, name string) error {
	if value < 0.0 || value > 1.0 {
		return fmt.Errorf("invalid %s: %.2f (must be between 0.0 and 1.0)", name, value)
	}
	return nil
}
