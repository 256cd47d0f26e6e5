package app

import (
	"context"
	"fmt"
)

// Shutdown stops the application in the following order:
//  1. HTTP server (waits for in-flight requests up to server.shutdown_timeout_seconds)
//  2. Cleanup service (waits for the current cycle up to retention.stop_timeout_seconds)
//  3. Worker pool (running downloads finish, queued ones are rejected)
//  4. Application context
//
// Calling Shutdown on an app that was never started only cancels the context.
func (a *App) Shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		defer a.cancel()
	}
	if !a.started {
		return nil
	}

	var serverErr error
	if a.server != nil {
		a.logger.Info("🛑 Stopping HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout())
		if err := a.server.Shutdown(ctx); err != nil {
			serverErr = fmt.Errorf("failed to shut down HTTP server: %w", err)
			a.logger.Error("Failed to shut down HTTP server", err)
		}
		cancel()
	}

	if a.cleanup != nil {
		a.logger.Info("🛑 Stopping cleanup service")
		a.cleanup.Stop(a.config.Retention.StopTimeout())
	}

	if a.workerPool != nil {
		a.logger.Info("🛑 Stopping worker pool")
		a.workerPool.Stop()
	}

	a.started = false
	a.logger.Info("Application shutdown complete")

	return serverErr
}
