package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/wasilibs/go-re2"
	"gopkg.in/yaml.v3"

	"github.com/aatumaykin/tubedrop/internal/cleanup"
	"github.com/aatumaykin/tubedrop/internal/logger"
)

// Load загружает конфигурацию из TOML или YAML файла (по расширению).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := decode(path, data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return finish(&cfg)
}

// LoadOrDefault ведёт себя как Load, но при отсутствии файла возвращает
// значения по умолчанию (с учётом переменных окружения).
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return finish(&Config{})
	}
	return nil, err
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return toml.Unmarshal(data, cfg)
	}
}

func finish(cfg *Config) (*Config, error) {
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := expandEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("failed to expand environment variables: %w", err)
	}

	return cfg, nil
}

// Validate проверяет валидность конфигурации
func (c *Config) Validate() []error {
	var errs []error

	// server
	if c.Server.Host == "" {
		errs = append(errs, fieldError("server.host", "is required"))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fieldError("server.port", fmt.Sprintf("must be between 1 and 65535 (got %d)", c.Server.Port)))
	}
	if c.Server.MaxBodyBytes < 0 {
		errs = append(errs, fieldError("server.max_body_bytes", "must be >= 0"))
	}
	if c.Server.ShutdownTimeoutSeconds < 0 || c.Server.ReadTimeoutSeconds < 0 {
		errs = append(errs, fieldError("server", "timeouts must be >= 0"))
	}

	// storage
	if err := validatePath(c.Storage.DownloadDir, "storage.download_dir"); err != nil {
		errs = append(errs, err)
	}

	// retention
	if c.Retention.MaxAgeSeconds <= 0 {
		errs = append(errs, fieldError("retention.max_age_seconds", fmt.Sprintf("must be > 0 (got %d)", c.Retention.MaxAgeSeconds)))
	}
	if c.Retention.ScanIntervalSeconds <= 0 {
		errs = append(errs, fieldError("retention.scan_interval_seconds", fmt.Sprintf("must be > 0 (got %d)", c.Retention.ScanIntervalSeconds)))
	}
	if c.Retention.StopTimeoutSeconds <= 0 {
		errs = append(errs, fieldError("retention.stop_timeout_seconds", "must be > 0"))
	}
	if c.Retention.Schedule != "" {
		if _, err := cleanup.ParseSchedule(c.Retention.Schedule); err != nil {
			errs = append(errs, fieldError("retention.schedule", err.Error()))
		}
	}

	// extractor
	if c.Extractor.Binary == "" {
		errs = append(errs, fieldError("extractor.binary", "is required"))
	}
	if c.Extractor.DefaultFormat == "" {
		errs = append(errs, fieldError("extractor.default_format", "is required"))
	}
	if c.Extractor.MaxParallelDownloads < 1 {
		errs = append(errs, fieldError("extractor.max_parallel_downloads", "must be >= 1"))
	}
	if c.Extractor.QueueSize < 1 {
		errs = append(errs, fieldError("extractor.queue_size", "must be >= 1"))
	}
	if c.Extractor.TimeoutSeconds <= 0 {
		errs = append(errs, fieldError("extractor.timeout_seconds", "must be > 0"))
	}
	if c.Extractor.MaxAttempts < 1 {
		errs = append(errs, fieldError("extractor.max_attempts", "must be >= 1"))
	}
	for _, pattern := range c.Extractor.AllowedURLPatterns {
		if _, err := re2.Compile(pattern); err != nil {
			errs = append(errs, fieldError("extractor.allowed_url_patterns", fmt.Sprintf("invalid pattern %q: %v", pattern, err)))
		}
	}

	// logging
	if c.Logging.Level == "" {
		errs = append(errs, fieldError("logging.level", "is required"))
	} else if !logger.ValidLevel(c.Logging.Level) {
		errs = append(errs, fieldError("logging.level", fmt.Sprintf("invalid value %s (expected: debug, info, warn, error)", c.Logging.Level)))
	}
	if c.Logging.Format == "" {
		errs = append(errs, fieldError("logging.format", "is required"))
	} else {
		validFormats := map[string]bool{"json": true, "text": true}
		if !validFormats[strings.ToLower(c.Logging.Format)] {
			errs = append(errs, fieldError("logging.format", fmt.Sprintf("invalid value %s (expected: json, text)", c.Logging.Format)))
		}
	}
	if c.Logging.Output == "" {
		errs = append(errs, fieldError("logging.output", "is required"))
	}

	// metrics
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fieldError("metrics.path", "must start with /"))
	}

	return errs
}

// Warnings возвращает замечания, не мешающие запуску.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Retention.MaxAge() < c.Extractor.Timeout() {
		warnings = append(warnings, fmt.Sprintf(
			"retention.max_age_seconds (%d) is shorter than extractor.timeout_seconds (%d): files of slow downloads may be removed before they complete",
			c.Retention.MaxAgeSeconds, c.Extractor.TimeoutSeconds))
	}
	if c.Retention.Schedule != "" {
		warnings = append(warnings, "retention.schedule is set, retention.scan_interval_seconds is ignored")
	}
	return warnings
}

func validatePath(path, fieldName string) error {
	if path == "" {
		return fieldError(fieldName, "cannot be empty")
	}

	if strings.HasPrefix(path, "~") {
		return nil
	}

	if strings.Contains(path, "..") {
		return fieldError(fieldName, "contains potentially dangerous path traversal sequence")
	}

	return nil
}

// expandEnvVars расширяет переменные окружения в строковых полях
func expandEnvVars(c *Config) error {
	c.Server.Host = expandEnv(c.Server.Host)

	c.Storage.DownloadDir = expandHome(expandEnv(c.Storage.DownloadDir))

	c.Extractor.Binary = expandHome(expandEnv(c.Extractor.Binary))
	c.Extractor.CookiesFile = expandHome(expandEnv(c.Extractor.CookiesFile))
	c.Extractor.Proxy = expandEnv(c.Extractor.Proxy)

	c.Logging.Output = expandHome(expandEnv(c.Logging.Output))

	if strings.Contains(c.Storage.DownloadDir, "${") {
		return fmt.Errorf("storage.download_dir: only a leading ${VAR} reference is supported: %s", c.Storage.DownloadDir)
	}
	return nil
}

// expandEnv расширяет ${VAR} и ${VAR:default} в начале строки; остаток строки сохраняется.
func expandEnv(s string) string {
	if !strings.HasPrefix(s, "${") {
		return s
	}

	end := strings.Index(s, "}")
	if end == -1 {
		return s
	}

	content, rest := s[2:end], s[end+1:]
	if parts := strings.SplitN(content, ":", 2); len(parts) == 2 {
		if val := os.Getenv(parts[0]); val != "" {
			return val + rest
		}
		return parts[1] + rest
	}

	return os.Getenv(content) + rest
}

// expandHome расширяет ~ и ~/ в начале пути
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// Policy переводит секцию [retention] в политику cleanup сервиса.
func (r RetentionConfig) Policy() cleanup.Policy {
	return cleanup.Policy{
		MaxAge:   r.MaxAge(),
		Interval: r.ScanInterval(),
		Schedule: r.Schedule,
	}
}
