package main

import (
	"fmt"
	"strings"

	"github.com/aatumaykin/tubedrop/internal/config"
	"github.com/aatumaykin/tubedrop/internal/constants"
	"github.com/aatumaykin/tubedrop/internal/logger"
)

// loadConfig reads .env (if present) and the configuration file, applies the
// --log-level override and validates the result. A missing file at the default
// path yields the defaults; an explicitly given path must exist.
func loadConfig(path string) (*config.Config, error) {
	if err := config.LoadEnvOptional(constants.DefaultEnvPath); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", constants.DefaultEnvPath, err)
	}

	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		cfg, err = config.LoadOrDefault(constants.DefaultConfigPath)
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &validationErrors{errs: errs}
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

type validationErrors struct {
	errs []error
}

func (v *validationErrors) Error() string {
	var b strings.Builder
	b.WriteString("configuration validation failed:")
	for _, e := range v.errs {
		b.WriteString("\n  - ")
		b.WriteString(e.Error())
	}
	return b.String()
}

func (v *validationErrors) Unwrap() []error {
	return v.errs
}
