package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/config"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Global configuration, populated before any command runs.
	globalConfig *config.Config
	// Configuration file path from --config.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "medocr",
	Short: "OCR and entity extraction for medical documents",
	Long: `Extract text from scanned medical documents and match it against a
medical vocabulary: medications, dosages, lab tests, vital signs and
common clinical abbreviations.

The processing chain prepares the image, runs OCR with a ladder of
recognition modes, classifies the document and annotates the matched
terms with their position and confidence.

Examples:
  medocr process prescription.jpg
  medocr process report.pdf --pages 1-3 --format text
  medocr batch ./scans --output-dir ./results
  medocr serve --port 8080`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// GetRootCommand returns the root command. main uses it to execute, tests
// use it to run commands without exiting the process.
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	configLoader = config.NewLoader()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default searches ., $HOME/.medocr, $XDG_CONFIG_HOME/medocr, /etc/medocr)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().String("dict", "", "medical term dictionary file")
	rootCmd.PersistentFlags().String("engine", "", "OCR engine (tesseract, gvision)")

	bindFlag("log_level", "log-level")
	bindFlag("log_format", "log-format")
	bindFlag("pipeline.dictionary", "dict")
	bindFlag("pipeline.engine", "engine")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		setupLogging(globalConfig)
		return nil
	}
}

func bindFlag(key, flag string) {
	if err := configLoader.Viper().BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flag %s: %v\n", flag, err)
	}
}

// initConfig loads configuration from file, environment and bound flags.
func initConfig() error {
	var err error
	if cfgFile != "" {
		globalConfig, err = configLoader.LoadWithFile(cfgFile)
	} else {
		globalConfig, err = configLoader.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return nil
}

// GetConfig returns the loaded configuration, loading defaults when no
// command has run yet (tests call handlers directly).
func GetConfig() *config.Config {
	if globalConfig == nil {
		if err := initConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
	}
	return globalConfig
}

func setupLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
