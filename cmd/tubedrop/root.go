package main

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tubedrop",
	Short: "tubedrop - download videos over HTTP and expire them automatically",
	Long: `tubedrop is a small HTTP service that fetches video metadata and downloads
through yt-dlp, serves the downloaded files and removes them from the download
directory once they are older than the retention window.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: ./config.toml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "Override log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(statsCmd)
}
