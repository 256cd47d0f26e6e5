// Package storage manages the flat download directory shared by downloads,
// the file endpoint and the cleanup service.
//
//	dir := storage.New("/var/lib/tubedrop/downloads")
//	if err := dir.EnsureDir(); err != nil {
//	    return err
//	}
//	path, info, err := dir.Resolve("My Video.mp4")
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrOutsideDir is returned when a name resolves outside the directory,
	// lexically or through a symlink.
	ErrOutsideDir = errors.New("path escapes the download directory")
	// ErrNotFound is returned when no regular file matches the name.
	ErrNotFound = errors.New("file not found")
)

// Dir is a download directory.
type Dir struct {
	path string
}

// New creates a Dir. The path is used as given; ~ and ${VAR} are expanded
// once, when the configuration is loaded.
func New(path string) *Dir {
	return &Dir{path: path}
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// EnsureDir creates the directory if it doesn't exist.
func (d *Dir) EnsureDir() error {
	if d.path == "" {
		return fmt.Errorf("download directory path is empty")
	}

	info, err := os.Stat(d.path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("download path exists but is not a directory: %s", d.path)
		}
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to access download directory %s: %w", d.path, err)
	}

	if err := os.MkdirAll(d.path, 0755); err != nil {
		return fmt.Errorf("failed to create download directory %s: %w", d.path, err)
	}
	return nil
}

// Resolve maps a requested name to a regular file inside the directory.
// The name is tried as given and in NFC form. Both the lexical path and the
// symlink-resolved path must stay inside the directory.
func (d *Dir) Resolve(name string) (string, os.FileInfo, error) {
	if name == "" || strings.ContainsRune(name, 0) {
		return "", nil, ErrNotFound
	}

	base, err := filepath.Abs(d.path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get absolute download path: %w", err)
	}

	lastErr := ErrNotFound
	for _, candidate := range nameVariants(name) {
		path := filepath.Join(base, filepath.FromSlash(candidate))
		if !Within(base, path) {
			return "", nil, ErrOutsideDir
		}

		info, err := os.Stat(path)
		if err != nil {
			if !isAbsent(err) {
				lastErr = err
			}
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		realBase, err := filepath.EvalSymlinks(base)
		if err != nil {
			return "", nil, err
		}
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return "", nil, err
		}
		if !Within(realBase, realPath) {
			return "", nil, ErrOutsideDir
		}
		return path, info, nil
	}
	return "", nil, lastErr
}

// isAbsent reports whether a stat error means nothing exists at the path,
// including a path that walks through a regular file or is too long.
func isAbsent(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, syscall.ENOTDIR) ||
		errors.Is(err, syscall.ENAMETOOLONG)
}

// Within reports whether path lies strictly inside base. Both must be absolute and clean.
func Within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	if rel == "." || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// nameVariants returns the name as requested and, when different, its NFC
// form; browsers and filesystems disagree on Unicode normalization.
func nameVariants(name string) []string {
	nfc := norm.NFC.String(name)
	if nfc == name {
		return []string{name}
	}
	return []string{name, nfc}
}
