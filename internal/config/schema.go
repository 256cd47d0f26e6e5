// Package config provides configuration loading and validation for tubedrop.
// It reads TOML (or YAML, by file extension) with environment variable expansion,
// default values, legacy environment overrides and validation.
//
// Configuration structure:
//   - [server]: HTTP listen address, body limit, timeouts, CORS origins
//   - [storage]: download directory shared by downloads and the cleanup service
//   - [retention]: file max age, scan interval or cron schedule, stop timeout
//   - [extractor]: yt-dlp binary, request options, URL allowlist, download concurrency
//   - [logging]: logging level, format, and output
//   - [metrics]: Prometheus endpoint
//
// Environment variables:
// String values can reference ${VAR} or ${VAR:default}.
// For example: download_dir = "${TUBEDROP_DATA:/var/lib/tubedrop}/downloads"
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config represents the main application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server" yaml:"server"`
	Storage   StorageConfig   `toml:"storage" yaml:"storage"`
	Retention RetentionConfig `toml:"retention" yaml:"retention"`
	Extractor ExtractorConfig `toml:"extractor" yaml:"extractor"`
	Logging   LoggingConfig   `toml:"logging" yaml:"logging"`
	Metrics   MetricsConfig   `toml:"metrics" yaml:"metrics"`
}

// ServerConfig описывает HTTP сервер
type ServerConfig struct {
	Host                   string   `toml:"host" yaml:"host"`
	Port                   int      `toml:"port" yaml:"port"`
	MaxBodyBytes           int64    `toml:"max_body_bytes" yaml:"max_body_bytes"`
	ReadTimeoutSeconds     int      `toml:"read_timeout_seconds" yaml:"read_timeout_seconds"`
	ShutdownTimeoutSeconds int      `toml:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds"`
	CORSAllowedOrigins     []string `toml:"cors_allowed_origins" yaml:"cors_allowed_origins"`
}

// Addr возвращает адрес для net.Listen
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// StorageConfig описывает каталог загрузок
type StorageConfig struct {
	DownloadDir string `toml:"download_dir" yaml:"download_dir"`
}

// RetentionConfig описывает политику удаления старых файлов.
// Schedule (cron выражение) имеет приоритет над ScanIntervalSeconds.
type RetentionConfig struct {
	MaxAgeSeconds       int    `toml:"max_age_seconds" yaml:"max_age_seconds"`
	ScanIntervalSeconds int    `toml:"scan_interval_seconds" yaml:"scan_interval_seconds"`
	Schedule            string `toml:"schedule" yaml:"schedule"`
	StopTimeoutSeconds  int    `toml:"stop_timeout_seconds" yaml:"stop_timeout_seconds"`
}

func (r RetentionConfig) MaxAge() time.Duration {
	return time.Duration(r.MaxAgeSeconds) * time.Second
}

func (r RetentionConfig) ScanInterval() time.Duration {
	return time.Duration(r.ScanIntervalSeconds) * time.Second
}

func (r RetentionConfig) StopTimeout() time.Duration {
	return time.Duration(r.StopTimeoutSeconds) * time.Second
}

// ExtractorConfig описывает вызов yt-dlp
type ExtractorConfig struct {
	Binary               string   `toml:"binary" yaml:"binary"`
	DefaultFormat        string   `toml:"default_format" yaml:"default_format"`
	CookiesFile          string   `toml:"cookies_file" yaml:"cookies_file"`
	UserAgent            string   `toml:"user_agent" yaml:"user_agent"`
	Referer              string   `toml:"referer" yaml:"referer"`
	Impersonate          string   `toml:"impersonate" yaml:"impersonate"`
	Proxy                string   `toml:"proxy" yaml:"proxy"`
	ExtractorArgs        []string `toml:"extractor_args" yaml:"extractor_args"`
	AllowedURLPatterns   []string `toml:"allowed_url_patterns" yaml:"allowed_url_patterns"`
	MaxParallelDownloads int      `toml:"max_parallel_downloads" yaml:"max_parallel_downloads"`
	QueueSize            int      `toml:"queue_size" yaml:"queue_size"`
	TimeoutSeconds       int      `toml:"timeout_seconds" yaml:"timeout_seconds"`
	MaxAttempts          int      `toml:"max_attempts" yaml:"max_attempts"`
}

func (e ExtractorConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// LoggingConfig представляет конфигурацию логирования
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
	Output string `toml:"output" yaml:"output"`
}

// MetricsConfig описывает Prometheus endpoint
type MetricsConfig struct {
	Enabled   bool   `toml:"enabled" yaml:"enabled"`
	Path      string `toml:"path" yaml:"path"`
	Namespace string `toml:"namespace" yaml:"namespace"`
}

// Summary возвращает поля конфигурации для стартового лога; прокси маскируется.
func (c *Config) Summary() map[string]string {
	return map[string]string{
		"addr":              c.Server.Addr(),
		"download_dir":      c.Storage.DownloadDir,
		"max_age":           c.Retention.MaxAge().String(),
		"scan_interval":     c.Retention.ScanInterval().String(),
		"schedule":          c.Retention.Schedule,
		"extractor":         c.Extractor.Binary,
		"proxy":             maskProxy(c.Extractor.Proxy),
		"parallel":          fmt.Sprint(c.Extractor.MaxParallelDownloads),
		"metrics_enabled":   fmt.Sprint(c.Metrics.Enabled),
		"allowed_url_rules": fmt.Sprint(len(c.Extractor.AllowedURLPatterns)),
	}
}
