// Package retention inspects the download directory and decides which files
// have outlived the retention window. It never modifies the filesystem.
package retention

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/aatumaykin/tubedrop/internal/logger"
)

// File is a regular file found directly inside the scanned directory.
type File struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Age returns how long ago the file was last modified.
func (f File) Age(now time.Time) time.Duration {
	return now.Sub(f.ModTime)
}

// Usage summarizes the contents of a directory.
type Usage struct {
	Files int
	Bytes int64
}

// readDir is replaced in tests to change the directory between listing and stat.
var readDir = os.ReadDir

// List returns the regular files directly inside dir. Subdirectories, symlinks
// and other special entries are ignored. A missing directory yields no files
// and no error. Entries whose metadata cannot be read (for example a file
// removed between listing and stat) are logged and skipped.
func List(dir string, log *logger.Logger) ([]File, error) {
	entries, err := readDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			if log != nil {
				log.Warn("failed to stat file, skipping",
					logger.Field{Key: "file", Value: entry.Name()},
					logger.Field{Key: "error", Value: err.Error()})
			}
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		files = append(files, File{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	return files, nil
}

// Expired returns the names of files strictly older than maxAge at now.
// A file exactly maxAge old is retained.
func Expired(files []File, maxAge time.Duration, now time.Time) []string {
	var names []string
	for _, f := range files {
		if f.Age(now) > maxAge {
			names = append(names, f.Name)
		}
	}
	return names
}

// Scan lists dir and returns the names of files older than maxAge.
func Scan(dir string, maxAge time.Duration, now time.Time, log *logger.Logger) ([]string, error) {
	files, err := List(dir, log)
	if err != nil {
		return nil, err
	}
	return Expired(files, maxAge, now), nil
}

// Measure counts regular files in dir and sums their sizes. Listing failures
// are logged and reported as an empty directory.
func Measure(dir string, log *logger.Logger) Usage {
	files, err := List(dir, log)
	if err != nil {
		if log != nil {
			log.Error("failed to measure directory", err,
				logger.Field{Key: "dir", Value: dir})
		}
		return Usage{}
	}

	usage := Usage{Files: len(files)}
	for _, f := range files {
		usage.Bytes += f.Size
	}
	return usage
}
