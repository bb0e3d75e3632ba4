package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/batch"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/config"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/pipeline"
)

var batchCmd = &cobra.Command{
	Use:   "batch [files or directories...]",
	Short: "Process many documents in parallel",
	Long: `Process multiple document files in parallel and write one result file
per input. Directories are scanned for supported files (JPEG, PNG, PDF).

Examples:
  medocr batch scans/
  medocr batch scans/ --recursive --workers 8 --output-dir results/
  medocr batch rx1.png rx2.png --format txt --type prescription
  medocr batch scans/ --include 'rx_*' --continue-on-error`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runBatchCommand,
}

// configToBatchConfig maps the central configuration to batch.Config,
// with changed CLI flags taking precedence.
func configToBatchConfig(cfg *config.Config, cmd *cobra.Command) batch.Config {
	bc := batch.DefaultConfig()

	bc.Workers = cfg.Batch.Workers
	if cmd.Flags().Changed("workers") {
		bc.Workers, _ = cmd.Flags().GetInt("workers")
	}

	bc.OutputDir = cfg.Batch.OutputDir
	if cmd.Flags().Changed("output-dir") {
		bc.OutputDir, _ = cmd.Flags().GetString("output-dir")
	}

	bc.Format = cfg.Batch.Format
	if cmd.Flags().Changed("format") {
		bc.Format, _ = cmd.Flags().GetString("format")
	}

	bc.Recursive = cfg.Batch.Recursive
	if cmd.Flags().Changed("recursive") {
		bc.Recursive, _ = cmd.Flags().GetBool("recursive")
	}

	bc.ContinueOnError = cfg.Batch.ContinueOnError
	if cmd.Flags().Changed("continue-on-error") {
		bc.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
	}

	// CLI-only settings.
	bc.DocumentType, _ = cmd.Flags().GetString("type")
	bc.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
	bc.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")
	if progress, _ := cmd.Flags().GetBool("progress"); progress {
		bc.Progress = pipeline.NewConsoleProgressCallback(cmd.ErrOrStderr(), "Processing: ")
	}

	return bc
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	bc := configToBatchConfig(cfg, cmd)

	if bc.DocumentType != "" && !validDocumentType(bc.DocumentType) {
		return fmt.Errorf("invalid document type: %s (must be one of: %v)",
			bc.DocumentType, pipeline.DocumentTypes())
	}

	p, err := pipeline.NewBuilder().WithConfig(cfg.Pipeline).Build()
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer func() { _ = p.Close() }()

	proc, err := batch.New(p, bc)
	if err != nil {
		return err
	}

	summary, err := proc.Run(cmd.Context(), args)
	if summary != nil {
		printBatchSummary(cmd, summary)
	}
	if err != nil {
		return fmt.Errorf("batch processing failed: %w", err)
	}
	return nil
}

func printBatchSummary(cmd *cobra.Command, s *batch.Summary) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Processed %d/%d documents in %v (%.1f docs/sec, %d workers)\n",
		s.Processed, s.Total, s.Duration.Round(time.Millisecond), s.Throughput(), s.Workers)
	if s.Failed > 0 {
		_, _ = fmt.Fprintf(out, "Failed: %d\n", s.Failed)
		for _, f := range s.Failures {
			_, _ = fmt.Fprintf(out, "  %s: %v\n", f.Path, f.Err)
		}
	}
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntP("workers", "w", 0, "number of parallel workers")
	batchCmd.Flags().String("output-dir", "", "directory for result files (default: next to each input)")
	batchCmd.Flags().StringP("format", "f", "", "result file format: json, txt")
	batchCmd.Flags().StringP("type", "t", "", "document type hint: prescription, lab_report, medical_note")
	batchCmd.Flags().BoolP("recursive", "r", false, "recursively scan directories")
	batchCmd.Flags().Bool("continue-on-error", false, "keep processing after individual failures")
	batchCmd.Flags().StringSlice("include", nil, "file patterns to include")
	batchCmd.Flags().StringSlice("exclude", nil, "file patterns to exclude")
	batchCmd.Flags().Bool("progress", false, "show a progress bar on stderr")
}
