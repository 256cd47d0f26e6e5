package config

import (
	"github.com/aatumaykin/tubedrop/internal/constants"
)

// Default возвращает конфигурацию со значениями по умолчанию.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// DefaultExtractorArgs mirror the player clients and skips that keep YouTube
// extraction working without a logged-in session.
func DefaultExtractorArgs() []string {
	return []string{
		"youtube:player_client=web_creator,mediaconnect,android,ios",
		"youtube:skip=hls,dash,translated_subs",
		"youtube:player_skip=webpage,configs",
	}
}

// applyDefaults применяет значения по умолчанию
func applyDefaults(c *Config) {
	if c.Server.Host == "" {
		c.Server.Host = constants.DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = constants.DefaultPort
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = constants.DefaultMaxBodyBytes
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = int(constants.DefaultReadTimeout.Seconds())
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = int(constants.DefaultShutdownTimeout.Seconds())
	}
	if len(c.Server.CORSAllowedOrigins) == 0 {
		c.Server.CORSAllowedOrigins = []string{"*"}
	}

	if c.Storage.DownloadDir == "" {
		c.Storage.DownloadDir = constants.DefaultDownloadDir
	}

	if c.Retention.MaxAgeSeconds == 0 {
		c.Retention.MaxAgeSeconds = constants.DefaultMaxAgeSeconds
	}
	if c.Retention.ScanIntervalSeconds == 0 {
		c.Retention.ScanIntervalSeconds = constants.DefaultScanIntervalSeconds
	}
	if c.Retention.StopTimeoutSeconds == 0 {
		c.Retention.StopTimeoutSeconds = int(constants.DefaultStopTimeout.Seconds())
	}

	if c.Extractor.Binary == "" {
		c.Extractor.Binary = constants.DefaultExtractorBinary
	}
	if c.Extractor.DefaultFormat == "" {
		c.Extractor.DefaultFormat = constants.DefaultFormat
	}
	if c.Extractor.CookiesFile == "" {
		c.Extractor.CookiesFile = constants.DefaultCookiesFile
	}
	if c.Extractor.UserAgent == "" {
		c.Extractor.UserAgent = constants.DefaultUserAgent
	}
	if c.Extractor.Referer == "" {
		c.Extractor.Referer = constants.DefaultReferer
	}
	if c.Extractor.Impersonate == "" {
		c.Extractor.Impersonate = constants.DefaultImpersonate
	}
	if c.Extractor.ExtractorArgs == nil {
		c.Extractor.ExtractorArgs = DefaultExtractorArgs()
	}
	if c.Extractor.MaxParallelDownloads == 0 {
		c.Extractor.MaxParallelDownloads = constants.DefaultParallelDownloads
	}
	if c.Extractor.QueueSize == 0 {
		c.Extractor.QueueSize = constants.DefaultQueueSize
	}
	if c.Extractor.TimeoutSeconds == 0 {
		c.Extractor.TimeoutSeconds = int(constants.DefaultExtractorTimeout.Seconds())
	}
	if c.Extractor.MaxAttempts == 0 {
		c.Extractor.MaxAttempts = 2
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = constants.DefaultMetricsNamespace
	}
}
