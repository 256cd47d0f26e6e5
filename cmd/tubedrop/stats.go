package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/tubedrop/internal/app/builders"
)

var statsJSON bool

// statsCmd reports download directory usage
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show download directory usage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}

		svc, err := builders.NewCleanupBuilder(cfg, log).Build(nil)
		if err != nil {
			return err
		}
		files, size := svc.FileCount(), svc.DirectorySize()
		out := cmd.OutOrStdout()

		if statsJSON {
			return json.NewEncoder(out).Encode(map[string]any{
				"dir":   svc.Dir(),
				"files": files,
				"bytes": size,
			})
		}

		fmt.Fprintf(out, "📁 %s\n", svc.Dir())
		fmt.Fprintf(out, "Files: %d\n", files)
		fmt.Fprintf(out, "Size:  %s\n", formatBytes(size))
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print usage as JSON")
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
