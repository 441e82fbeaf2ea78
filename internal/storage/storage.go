// Package storage is the file collaborator: it accepts a stream plus the
// original filename and returns a stable storage path and byte size.
// Filename sanitization happens here, not in the document registry.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes uploads under a single root directory.
type Store struct {
	root string
}

// New creates the root directory when missing and returns the store.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

// Save streams r into a uniquely named file and returns its path relative to
// the store root, plus the byte size written.
func (s *Store) Save(originalName string, r io.Reader) (string, int64, error) {
	name := fmt.Sprintf("%s-%s", uuid.New().String()[:8], SanitizeFilename(originalName))
	full := filepath.Join(s.root, name)

	f, err := os.Create(full)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(full)
		return "", 0, err
	}

	return name, size, nil
}

// Open returns a reader for a stored file.
func (s *Store) Open(path string) (*os.File, error) {
	return os.Open(filepath.Join(s.root, filepath.Base(path)))
}

// Remove deletes the physical file for a storage path. Missing files are not
// an error; the metadata record is authoritative.
func (s *Store) Remove(path string) error {
	err := os.Remove(filepath.Join(s.root, filepath.Base(path)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SanitizeFilename strips path separators and control characters from a
// client-supplied filename, keeping the extension usable.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == 0x7f:
			return -1
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, ". ")
	if name == "" {
		name = "upload"
	}
	return name
}
