package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/tubedrop/internal/config"
	"github.com/aatumaykin/tubedrop/internal/constants"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Validate and inspect tubedrop configuration.`,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate configuration file",
	Long: `Load the configuration file (with .env and environment overrides applied),
report every validation error and print non-fatal warnings.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			path = constants.DefaultConfigPath
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Validating configuration: %s\n", path)

		if err := config.LoadEnvOptional(constants.DefaultEnvPath); err != nil {
			return fmt.Errorf("failed to load %s: %w", constants.DefaultEnvPath, err)
		}
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if errs := cfg.Validate(); len(errs) > 0 {
			return &validationErrors{errs: errs}
		}

		for _, w := range cfg.Warnings() {
			fmt.Fprintf(out, "⚠️  %s\n", w)
		}

		summary := cfg.Summary()
		keys := make([]string, 0, len(summary))
		for k := range summary {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "  %-18s %s\n", k, summary[k])
		}

		fmt.Fprintln(out, "✅ Configuration is valid")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}
