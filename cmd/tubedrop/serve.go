package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/tubedrop/internal/app"
	"github.com/aatumaykin/tubedrop/internal/logger"
	"github.com/aatumaykin/tubedrop/internal/version"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the cleanup service",
	Long: `Start tubedrop with the specified configuration.
This creates the download directory, starts the background cleanup service
and the download workers, and serves the HTTP API until SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: serveHandler,
}

func serveHandler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	logger.SetDefault(log)

	log.Info(version.FormatStartupMessage(),
		logger.Field{Key: "version", Value: version.Version},
		logger.Field{Key: "git_commit", Value: version.Get().GitCommit},
		logger.Field{Key: "addr", Value: cfg.Server.Addr()},
		logger.Field{Key: "download_dir", Value: cfg.Storage.DownloadDir},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.New(cfg, log).Run(ctx); err != nil {
		log.Error("Application stopped with error", err)
		return err
	}

	log.Info("👋 tubedrop stopped gracefully")
	return nil
}
