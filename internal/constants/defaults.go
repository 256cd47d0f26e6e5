package constants

import "time"

// DefaultVersion is the default version of the application
const DefaultVersion = "0.1.0-dev"

// DefaultBuildTime is the default build time when not provided at build time
const DefaultBuildTime = "unknown"

// DefaultGitCommit is the default git commit hash when not provided at build time
const DefaultGitCommit = "unknown"

// HTTP server defaults.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 5038
	DefaultMaxBodyBytes    = 500 << 20
	DefaultReadTimeout     = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Retention defaults: files live for an hour and the directory is scanned every five minutes.
const (
	DefaultMaxAgeSeconds       = 3600
	DefaultScanIntervalSeconds = 300
	DefaultStopTimeout         = 5 * time.Second
)

// Extractor defaults.
const (
	DefaultExtractorBinary   = "yt-dlp"
	DefaultFormat            = "best"
	DefaultCookiesFile       = "cookies.txt"
	DefaultImpersonate       = "chrome"
	DefaultParallelDownloads = 2
	DefaultQueueSize         = 16
	DefaultExtractorTimeout  = 10 * time.Minute
	DefaultUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:120.0) Gecko/20100101 Firefox/120.0"
	DefaultReferer           = "https://www.youtube.com/"
)

// DefaultMetricsNamespace prefixes every exported Prometheus metric.
const DefaultMetricsNamespace = "tubedrop"
