package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		v, commit, date := version.Info()
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "medocr %s\n", v)
		_, _ = fmt.Fprintf(out, "  commit:  %s\n", commit)
		_, _ = fmt.Fprintf(out, "  built:   %s\n", date)
		_, _ = fmt.Fprintf(out, "  runtime: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version.Version
}
