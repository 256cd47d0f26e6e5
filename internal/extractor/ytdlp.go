package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/aatumaykin/tubedrop/internal/logger"
	"github.com/aatumaykin/tubedrop/internal/retry"
)

// OutputTemplate names downloaded files after the video title.
const OutputTemplate = "%(title)s.%(ext)s"

// Options configures the yt-dlp invocation.
type Options struct {
	Binary           string   // executable name or path
	DownloadDir      string   // where downloads are written
	CookiesFile      string   // used only when the file exists
	UserAgent        string   // sent as a User-Agent header
	Referer          string   // sent as a Referer header
	Impersonate      string   // browser impersonation target, e.g. "chrome"
	Proxy            string   // optional proxy URL
	ExtractorArgs    []string // values for --extractor-args
	Timeout          time.Duration
	Retry            retry.Config
	ProgressInterval time.Duration
}

// YTDLP runs yt-dlp through go-ytdlp.
type YTDLP struct {
	opts   Options
	logger *logger.Logger
}

// NewYTDLP creates an extractor backed by the yt-dlp executable.
func NewYTDLP(opts Options, log *logger.Logger) *YTDLP {
	if log == nil {
		log = logger.Discard()
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = 2 * time.Second
	}
	opts.Retry.Logger = log
	return &YTDLP{
		opts:   opts,
		logger: log.With(logger.Field{Key: "component", Value: "extractor"}),
	}
}

// Info fetches metadata without downloading.
func (y *YTDLP) Info(ctx context.Context, url string) (*Metadata, error) {
	ctx, cancel := y.withTimeout(ctx)
	defer cancel()

	cfg := y.opts.Retry
	cfg.Operation = "info"

	result, err := retry.Do(ctx, cfg, func(ctx context.Context) (*ytdlp.Result, error) {
		return y.command().SkipDownload().PrintJSON().Run(ctx, url)
	})
	if err != nil {
		return nil, &Error{Op: "info", URL: url, Err: cleanError(err)}
	}

	infos, err := result.GetExtractedInfo()
	if err != nil {
		return nil, &Error{Op: "info", URL: url, Err: err}
	}
	if len(infos) == 0 {
		return nil, &Error{Op: "info", URL: url, Err: errors.New("no video information returned")}
	}

	raw, err := json.Marshal(infos[0])
	if err != nil {
		return nil, &Error{Op: "info", URL: url, Err: err}
	}
	return decodeMetadata(raw)
}

// Download fetches the video in the given format into the download directory.
func (y *YTDLP) Download(ctx context.Context, url, format string) (*DownloadResult, error) {
	ctx, cancel := y.withTimeout(ctx)
	defer cancel()

	if err := os.MkdirAll(y.opts.DownloadDir, 0755); err != nil {
		return nil, &Error{Op: "download", URL: url, Err: err}
	}

	dl := y.downloadCommand(format)

	progress := newProgressLogger(y.logger, url)
	dl.ProgressFunc(y.opts.ProgressInterval, progress.update)

	cfg := y.opts.Retry
	cfg.Operation = "download"

	started := time.Now()
	result, err := retry.Do(ctx, cfg, func(ctx context.Context) (*ytdlp.Result, error) {
		return dl.Run(ctx, url)
	})
	if err != nil {
		return nil, &Error{Op: "download", URL: url, Err: cleanError(err)}
	}

	infos, err := result.GetExtractedInfo()
	if err != nil {
		return nil, &Error{Op: "download", URL: url, Err: err}
	}
	if len(infos) == 0 || infos[0].Filename == nil || *infos[0].Filename == "" {
		return nil, &Error{Op: "download", URL: url, Err: errors.New("extractor did not report an output file")}
	}

	path := *infos[0].Filename
	if !filepath.IsAbs(path) {
		path = filepath.Join(y.opts.DownloadDir, filepath.Base(path))
	}
	res := &DownloadResult{
		Filename: filepath.Base(path),
		Filepath: path,
		Title:    untitled,
	}
	if infos[0].Title != nil && *infos[0].Title != "" {
		res.Title = *infos[0].Title
	}

	y.logger.Info("download finished",
		logger.Field{Key: "url", Value: url},
		logger.Field{Key: "file", Value: res.Filename},
		logger.Field{Key: "duration_ms", Value: time.Since(started).Milliseconds()})

	return res, nil
}

// downloadCommand keeps the title as the file name and stamps files with the
// download time, which is what the cleanup loop measures age from.
func (y *YTDLP) downloadCommand(format string) *ytdlp.Command {
	dl := y.command().
		ForceOverwrites().
		NoMtime().
		PrintJSON().
		Output(filepath.Join(y.opts.DownloadDir, OutputTemplate))
	if format != "" {
		dl = dl.Format(format)
	}
	return dl
}

// command builds the options shared by info and download calls.
func (y *YTDLP) command() *ytdlp.Command {
	dl := ytdlp.New().
		NoPlaylist().
		NoWarnings().
		NoCheckCertificates()

	if y.opts.Binary != "" {
		dl = dl.SetExecutable(y.opts.Binary)
	}
	for _, header := range y.headers() {
		dl = dl.AddHeaders(header)
	}
	for _, arg := range mergeExtractorArgs(y.opts.ExtractorArgs) {
		dl = dl.ExtractorArgs(arg)
	}
	if y.opts.Impersonate != "" {
		dl = dl.Impersonate(y.opts.Impersonate)
	}
	if y.opts.Proxy != "" {
		dl = dl.Proxy(y.opts.Proxy)
	}
	if cookies := y.cookiesFile(); cookies != "" {
		dl = dl.Cookies(cookies)
	}
	return dl
}

func (y *YTDLP) headers() []string {
	headers := []string{
		"Accept:text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language:en-US,en;q=0.5",
	}
	if y.opts.UserAgent != "" {
		headers = append(headers, "User-Agent:"+y.opts.UserAgent)
	}
	if y.opts.Referer != "" {
		headers = append(headers, "Referer:"+y.opts.Referer)
	}
	return headers
}

func (y *YTDLP) cookiesFile() string {
	if y.opts.CookiesFile == "" {
		return ""
	}
	info, err := os.Stat(y.opts.CookiesFile)
	if err != nil || info.IsDir() {
		return ""
	}
	return y.opts.CookiesFile
}

func (y *YTDLP) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if y.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, y.opts.Timeout)
}

// toolError keeps the tool's final "ERROR:" line as the message while
// preserving the full error for errors.Is / errors.As.
type toolError struct {
	msg string
	err error
}

func (e *toolError) Error() string { return e.msg }
func (e *toolError) Unwrap() error { return e.err }

// cleanError trims the tool's output down to its last "ERROR:" line when present.
func cleanError(err error) error {
	msg := err.Error()
	idx := strings.LastIndex(msg, "ERROR:")
	if idx < 0 {
		return err
	}
	line := msg[idx:]
	if nl := strings.IndexByte(line, '\n'); nl >= 0 {
		line = line[:nl]
	}
	return &toolError{msg: strings.TrimSpace(line), err: err}
}

// mergeExtractorArgs folds "ie:key=value" entries sharing an extractor into
// one "ie:k1=v1;k2=v2" argument, keeping first-seen order.
func mergeExtractorArgs(args []string) []string {
	var order []string
	grouped := make(map[string][]string)
	for _, arg := range args {
		ie, kv, ok := strings.Cut(arg, ":")
		if !ok || ie == "" || kv == "" {
			continue
		}
		if _, seen := grouped[ie]; !seen {
			order = append(order, ie)
		}
		grouped[ie] = append(grouped[ie], kv)
	}

	merged := make([]string, 0, len(order))
	for _, ie := range order {
		merged = append(merged, ie+":"+strings.Join(grouped[ie], ";"))
	}
	return merged
}
