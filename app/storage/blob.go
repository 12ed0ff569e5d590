// Package storage holds uploaded image blobs on the local filesystem and
// hands out opaque locators for them.
package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BlobStore saves binary blobs and releases them by locator. Delete is
// best-effort: failures are logged, never propagated.
type BlobStore interface {
	Save(data []byte, ext string) (string, error)
	Delete(locator string)
}

// DiskStore keeps blobs as files under a single directory. Locators have
// the form "images/<uuid><ext>" and map onto the public /images/ route.
type DiskStore struct {
	dir string
	log zerolog.Logger
}

// NewDiskStore creates the backing directory if needed.
func NewDiskStore(dir string, log zerolog.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %v", err)
	}
	return &DiskStore{dir: dir, log: log}, nil
}

// Save writes the blob under a fresh random name and returns its locator.
func (s *DiskStore) Save(data []byte, ext string) (string, error) {
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save blob: %v", err)
	}
	return path.Join("images", name), nil
}

// Delete removes the blob behind a locator. Only the final path element is
// used, confining deletion to the blob directory.
func (s *DiskStore) Delete(locator string) {
	if locator == "" {
		return
	}
	name := filepath.Base(filepath.FromSlash(locator))
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		s.log.Warn().Err(err).Str("locator", locator).Msg("failed to delete blob")
	}
}
