// Package storage persists uploaded entry images on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Storage errors.
var (
	ErrEmptyFilename = errors.New("empty filename")
	ErrFileTooLarge  = errors.New("file exceeds maximum upload size")
)

// unsafeChars matches everything outside the conservative filename
// alphabet. Whatever the client sent, the stored name only ever
// contains ASCII letters, digits, dot, underscore and hyphen.
var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Store writes uploaded files under a fixed directory.
type Store struct {
	dir     string
	maxSize int64
}

// New creates a Store and eagerly creates the upload directory.
func New(dir string, maxSize int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	return &Store{dir: dir, maxSize: maxSize}, nil
}

// Dir returns the upload directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the upload under a sanitized, collision-free name and
// returns the stored name. A fresh ULID prefix is applied on every call,
// so two uploads sharing a client filename never overwrite each other.
func (s *Store) Save(filename string, src io.Reader) (string, error) {
	base := SanitizeFilename(filename)
	if base == "" {
		return "", ErrEmptyFilename
	}

	name := ulid.Make().String() + "_" + base
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	// Read one byte past the limit so oversize uploads are detected
	// without buffering the whole body.
	written, err := io.Copy(dst, io.LimitReader(src, s.maxSize+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if written > s.maxSize {
		os.Remove(path)
		return "", ErrFileTooLarge
	}

	return name, nil
}

// Remove deletes a stored file. Removing a name that is already gone is
// not an error; file cleanup is best-effort.
func (s *Store) Remove(name string) error {
	if name == "" {
		return nil
	}
	// Stored names never contain separators, but entries written by an
	// older deployment may hold full paths.
	name = filepath.Base(name)
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload file: %w", err)
	}
	return nil
}

// SanitizeFilename reduces a client-supplied filename to a safe base
// name: path components are stripped and unsafe characters collapse to
// underscores. Returns "" when nothing usable remains.
func SanitizeFilename(filename string) string {
	// Strip directories regardless of the client's path separator.
	filename = strings.ReplaceAll(filename, "\\", "/")
	base := filepath.Base(filename)
	if base == "." || base == "/" {
		return ""
	}

	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	return base
}
