package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with all defaults",
	Long: `Write a configuration file populated with every default value, as a
starting point for customization.

Examples:
  medocr config init
  medocr config init --output /etc/medocr/medocr.yaml`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		output, _ := cmd.Flags().GetString("output")
		force, _ := cmd.Flags().GetBool("force")

		if !force {
			if _, err := os.Stat(output); err == nil {
				return fmt.Errorf("%s already exists, use --force to overwrite", output)
			}
		}
		if err := config.GenerateDefaultConfigFile(output); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", output)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration the process would run with, after merging
defaults, the config file, environment variables and flags.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := GetConfig()

		out := cmd.OutOrStdout()
		if used := configLoader.ConfigFileUsed(); used != "" {
			_, _ = fmt.Fprintf(out, "# loaded from %s\n", used)
		} else {
			_, _ = fmt.Fprintf(out, "# no config file found, searched: %v\n", config.ConfigSearchPaths())
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to render configuration: %w", err)
		}
		_, _ = out.Write(data)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().StringP("output", "o", "medocr.yaml", "output file path")
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
}
