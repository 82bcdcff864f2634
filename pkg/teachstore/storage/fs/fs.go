// Package fs is a filesystem implementation of the teachstore.FileStore
// interface, rooted at a configured upload directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/edustack/teachstore/pkg/teachstore"
)

// Store writes file content under a base directory. Keys are slash-relative
// paths produced by the content store.
type Store struct {
	baseDir string
}

// Config options for the filesystem store.
type Config struct {
	BaseDir string // Base directory for storing files
}

// New creates a filesystem store, creating the base directory if needed.
func New(config Config) (*Store, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(config.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Store{baseDir: config.BaseDir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}

// Save writes the content to a temporary file in the target directory and
// renames it into place, so a failed or interrupted write never leaves a
// partial file at key. The rename stays within one directory, so it does not
// cross filesystems.
func (s *Store) Save(ctx context.Context, key string, r io.Reader) error {
	filePath := s.path(key)
	dir := filepath.Dir(filePath)

	// A concurrent Delete may remove an emptied shard directory between
	// MkdirAll and CreateTemp; retry the pair once.
	var tmp *os.File
	for attempt := 0; ; attempt++ {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		f, err := os.CreateTemp(dir, ".upload-*")
		if err == nil {
			tmp = f
			break
		}
		if attempt == 0 && os.IsNotExist(err) {
			continue
		}
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, filePath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// Open returns a reader over the content at key.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	file, err := os.Open(s.path(key))
	if os.IsNotExist(err) {
		return nil, teachstore.ErrBlobNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes the content at key. An already absent file is not an
// error. Shard directories left empty are removed.
func (s *Store) Delete(ctx context.Context, key string) error {
	filePath := s.path(key)
	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	s.cleanupEmptyDirectories(filepath.Dir(filePath))
	return nil
}

// Exists reports whether content is present at key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	if os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

// cleanupEmptyDirectories removes empty directories up to the base directory.
func (s *Store) cleanupEmptyDirectories(dir string) {
	if dir == s.baseDir {
		return
	}
	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			s.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}
