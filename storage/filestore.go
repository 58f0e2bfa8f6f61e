package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/thefortthatholds/storefront/models"
)

// booksDirDefault is the base directory for EPUB assets when none is configured.
const booksDirDefault = "books"

// FileStore resolves a catalog file reference to readable content.
type FileStore interface {
	// Open returns the file content and its size in bytes. A missing file
	// yields models.ErrFileUnavailable.
	Open(fileRef string) (io.ReadCloser, int64, error)
}

// LocalFileStore serves pre-built EPUB files from a local directory.
type LocalFileStore struct {
	basePath string
}

// NewLocalFileStore creates a LocalFileStore rooted at basePath, defaulting
// to the local books directory.
func NewLocalFileStore(basePath string) *LocalFileStore {
	if basePath == "" {
		basePath = booksDirDefault
	}
	return &LocalFileStore{basePath: basePath}
}

func (s *LocalFileStore) Open(fileRef string) (io.ReadCloser, int64, error) {
	if fileRef == "" {
		return nil, 0, fmt.Errorf("empty file reference: %w", models.ErrFileUnavailable)
	}

	// File references come from the catalog, but flatten them anyway so a bad
	// catalog entry can never escape the books directory.
	fullPath := filepath.Join(s.basePath, filepath.Base(fileRef))

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fmt.Errorf("file %s: %w", fileRef, models.ErrFileUnavailable)
		}
		return nil, 0, fmt.Errorf("failed to open file %s: %w", fileRef, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, fmt.Errorf("failed to stat file %s: %w", fileRef, err)
	}

	return file, info.Size(), nil
}
