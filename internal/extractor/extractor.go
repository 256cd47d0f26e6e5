// Package extractor wraps the external media extraction tool (yt-dlp) behind
// a small interface: fetch metadata for a URL, or download it into a directory.
package extractor

import (
	"context"
	"errors"
)

var (
	// ErrInvalidURL is returned for empty, unparsable or non-http(s) URLs.
	ErrInvalidURL = errors.New("invalid url")
	// ErrURLNotAllowed is returned when a URL does not match any allowlist pattern.
	ErrURLNotAllowed = errors.New("url is not allowed")
)

// Metadata describes a video without downloading it.
type Metadata struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Duration  float64 `json:"duration"` // seconds, 0 when unknown
	Thumbnail string  `json:"thumbnail"`
	Uploader  string  `json:"uploader"`
	ViewCount int64   `json:"view_count"`
}

// DownloadResult describes a file written into the download directory.
type DownloadResult struct {
	Filename string `json:"filename"` // base name inside the download directory
	Filepath string `json:"filepath"` // full path as written by the tool
	Title    string `json:"title"`
}

// Extractor fetches metadata and downloads media.
type Extractor interface {
	Info(ctx context.Context, url string) (*Metadata, error)
	Download(ctx context.Context, url, format string) (*DownloadResult, error)
}

// Error carries the failing operation and URL together with the tool's message.
type Error struct {
	Op  string // "info" or "download"
	URL string
	Err error
}

func (e *Error) Error() string {
	return e.Op + " failed: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
