package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/tubedrop/internal/app/builders"
	"github.com/aatumaykin/tubedrop/internal/retention"
)

var cleanDryRun bool

// cleanCmd runs a single cleanup cycle
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove expired files once and exit",
	Long: `Run one cleanup cycle against the download directory using the configured
retention.max_age_seconds. With --dry-run the expired files are listed but not removed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		dir := cfg.Storage.DownloadDir
		maxAge := cfg.Retention.MaxAge()

		if cleanDryRun {
			expired, err := retention.Scan(dir, maxAge, time.Now(), log)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d file(s) older than %s in %s:\n", len(expired), maxAge, dir)
			for _, name := range expired {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		}

		svc, err := builders.NewCleanupBuilder(cfg, log).Build(nil)
		if err != nil {
			return err
		}

		deleted := svc.RunCycle()
		report, _ := svc.LastReport()
		if report.Error != "" {
			return fmt.Errorf("cleanup cycle failed: %s", report.Error)
		}

		fmt.Fprintf(out, "🧹 Removed %d of %d expired file(s), freed %s\n",
			deleted, report.Candidates, formatBytes(report.BytesFreed))
		if report.Failed > 0 {
			return fmt.Errorf("%d file(s) could not be removed", report.Failed)
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "List expired files without removing them")
}
