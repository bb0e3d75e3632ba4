package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"

	"github.com/spf13/cobra"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/ocr"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/pipeline"
)

const (
	outputFormatJSON    = "json"
	outputFormatText    = "text"
	outputFormatCSV     = "csv"
	outputFormatOverlay = "overlay"
)

// processCmd represents the process command.
var processCmd = &cobra.Command{
	Use:   "process FILE...",
	Short: "Process medical document images and PDFs",
	Long: `Process one or more document files: prepare the image, extract text,
classify the document and annotate matched medical terms.

Supported inputs: JPEG, PNG and PDF. PDF pages with a usable embedded
text layer skip recognition entirely.

Examples:
  medocr process prescription.jpg
  medocr process report.pdf --pages 1-3
  medocr process scan.png --type lab_report --format csv
  medocr process scan.png --format overlay --overlay-dir ./annotated`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()

		format := cfg.Output.Format
		if cmd.Flags().Changed("format") {
			format, _ = cmd.Flags().GetString("format")
		}
		outputFile := cfg.Output.File
		if cmd.Flags().Changed("output") {
			outputFile, _ = cmd.Flags().GetString("output")
		}
		overlayDir := cfg.Output.OverlayDir
		if cmd.Flags().Changed("overlay-dir") {
			overlayDir, _ = cmd.Flags().GetString("overlay-dir")
		}
		docType, _ := cmd.Flags().GetString("type")
		pages, _ := cmd.Flags().GetString("pages")
		includeWords, _ := cmd.Flags().GetBool("words")

		switch format {
		case outputFormatJSON, outputFormatText, outputFormatCSV, outputFormatOverlay:
		default:
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, csv, overlay)", format)
		}
		if docType != "" && !validDocumentType(docType) {
			return fmt.Errorf("invalid document type: %s (must be one of: %s)",
				docType, strings.Join(pipeline.DocumentTypes(), ", "))
		}

		opts := pipeline.Options{
			DocumentType: docType,
			IncludeWords: includeWords || format == outputFormatOverlay,
		}
		if cmd.Flags().Changed("psm") || cmd.Flags().Changed("oem") {
			psm, _ := cmd.Flags().GetInt("psm")
			oem, _ := cmd.Flags().GetInt("oem")
			opts.Hints = []ocr.ModeCombo{{PSM: ocr.PageSegMode(psm), OEM: ocr.EngineMode(oem)}}
		}

		p, err := pipeline.NewBuilder().WithConfig(cfg.Pipeline).Build()
		if err != nil {
			return fmt.Errorf("failed to build pipeline: %w", err)
		}
		defer func() { _ = p.Close() }()

		var sections []string
		for _, file := range args {
			section, err := processOne(p, file, pages, overlayDir, format, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			sections = append(sections, section)
		}

		rendered := strings.Join(sections, "\n")
		if outputFile != "" {
			if err := os.WriteFile(outputFile, []byte(rendered+"\n"), 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", outputFile)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func processOne(p *pipeline.Pipeline, file, pages, overlayDir, format string, opts pipeline.Options) (string, error) {
	if strings.EqualFold(filepath.Ext(file), ".pdf") {
		return processOnePDF(p, file, pages, format, opts)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}
	res, err := p.ProcessBytes(data, opts)
	if err != nil {
		return "", err
	}

	switch format {
	case outputFormatText:
		return pipeline.ToPlainText(res)
	case outputFormatCSV:
		return pipeline.ToCSVEntities(res)
	case outputFormatOverlay:
		return writeOverlay(data, file, overlayDir, res)
	default:
		return pipeline.ToJSON(res)
	}
}

func processOnePDF(p *pipeline.Pipeline, file, pages, format string, opts pipeline.Options) (string, error) {
	if format == outputFormatOverlay {
		return "", errors.New("overlay output is not supported for PDF input")
	}
	res, err := p.ProcessPDF(file, pages, opts)
	if err != nil {
		return "", err
	}

	switch format {
	case outputFormatText, outputFormatCSV:
		var sections []string
		for _, page := range res.Pages {
			for _, pageRes := range page.Results {
				var section string
				if format == outputFormatCSV {
					section, err = pipeline.ToCSVEntities(pageRes)
				} else {
					section, err = pipeline.ToPlainText(pageRes)
				}
				if err != nil {
					return "", fmt.Errorf("page %d: %w", page.PageNumber, err)
				}
				sections = append(sections, fmt.Sprintf("=== Page %d ===\n%s", page.PageNumber, section))
			}
		}
		return strings.Join(sections, "\n\n"), nil
	default:
		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

// writeOverlay saves an annotated copy of the source image and returns the
// written path for display.
func writeOverlay(data []byte, file, overlayDir string, res *pipeline.StructuredResult) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image for overlay: %w", err)
	}

	overlay := pipeline.RenderOverlay(img, res)
	if overlay == nil {
		return "", errors.New("failed to render overlay")
	}

	if overlayDir == "" {
		overlayDir = "."
	}
	if err := os.MkdirAll(overlayDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create overlay directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	outPath := filepath.Join(overlayDir, base+"_overlay.png")
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create overlay file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if err := png.Encode(out, overlay); err != nil {
		return "", fmt.Errorf("failed to encode overlay: %w", err)
	}
	return outPath, nil
}

func validDocumentType(docType string) bool {
	for _, t := range pipeline.DocumentTypes() {
		if docType == t {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringP("format", "f", "json", "output format (json, text, csv, overlay)")
	processCmd.Flags().StringP("output", "o", "", "write results to file instead of stdout")
	processCmd.Flags().String("overlay-dir", "", "directory for overlay images (default current directory)")
	processCmd.Flags().StringP("type", "t", "", "document type override (prescription, lab_report, medical_note)")
	processCmd.Flags().String("pages", "", "PDF page range, e.g. 1-3 or 2")
	processCmd.Flags().Int("psm", 0, "try this tesseract page segmentation mode first")
	processCmd.Flags().Int("oem", 0, "try this tesseract engine mode first")
	processCmd.Flags().Bool("words", false, "include per-word geometry in JSON output")
}
