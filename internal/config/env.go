package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment overrides. FILE_MAX_AGE_HOURS and CLEANUP_INTERVAL_MINUTES keep
// the names existing deployments already set.
const (
	EnvMaxAgeHours     = "FILE_MAX_AGE_HOURS"
	EnvIntervalMinutes = "CLEANUP_INTERVAL_MINUTES"
	EnvDownloadDir     = "TUBEDROP_DOWNLOAD_DIR"
	EnvPort            = "TUBEDROP_PORT"
	EnvLogLevel        = "TUBEDROP_LOG_LEVEL"
)

// LoadEnv загружает переменные окружения из .env файла.
// Уже установленные переменные не перезаписываются.
func LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoadEnvOptional загружает .env файл, если он существует.
func LoadEnvOptional(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	return LoadEnv(path)
}

// applyEnvOverrides переносит значения переменных окружения поверх файла конфигурации.
func applyEnvOverrides(c *Config) error {
	if v, ok, err := envInt(EnvMaxAgeHours); err != nil {
		return err
	} else if ok {
		c.Retention.MaxAgeSeconds = v * 3600
	}

	if v, ok, err := envInt(EnvIntervalMinutes); err != nil {
		return err
	} else if ok {
		c.Retention.ScanIntervalSeconds = v * 60
	}

	if v, ok, err := envInt(EnvPort); err != nil {
		return err
	} else if ok {
		c.Server.Port = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvDownloadDir)); v != "" {
		c.Storage.DownloadDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Logging.Level = v
	}

	return nil
}

func envInt(key string) (int, bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s=%q: %w", key, raw, err)
	}
	if v <= 0 {
		return 0, false, fmt.Errorf("invalid %s=%q: must be > 0", key, raw)
	}
	return v, true, nil
}
