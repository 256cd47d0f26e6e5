package extractor

import (
	"sync"

	"github.com/lrstanley/go-ytdlp"

	"github.com/aatumaykin/tubedrop/internal/logger"
)

// progressLogger logs download progress at debug level, at most once per
// ten-percent step so long downloads do not flood the log.
type progressLogger struct {
	mu       sync.Mutex
	log      *logger.Logger
	url      string
	lastStep int
}

func newProgressLogger(log *logger.Logger, url string) *progressLogger {
	return &progressLogger{log: log, url: url, lastStep: -1}
}

func (p *progressLogger) update(u ytdlp.ProgressUpdate) {
	p.observe(float64(u.DownloadedBytes), float64(u.TotalBytes), u.ETA().Seconds())
}

func (p *progressLogger) observe(downloaded, total, etaSeconds float64) bool {
	if total <= 0 {
		return false
	}
	percent := downloaded / total * 100
	step := int(percent) / 10

	p.mu.Lock()
	defer p.mu.Unlock()
	if step <= p.lastStep {
		return false
	}
	p.lastStep = step

	p.log.Debug("download progress",
		logger.Field{Key: "url", Value: p.url},
		logger.Field{Key: "percent", Value: int(percent)},
		logger.Field{Key: "eta_seconds", Value: int(etaSeconds)})
	return true
}
