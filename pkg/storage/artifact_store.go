package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ArtifactStore keeps rendered export files in one flat directory and owns their
// retention window. Artifact names are flattened with filepath.Base, so a name can
// never escape the directory.
type ArtifactStore struct {
	dir string
	ttl time.Duration
}

// NewArtifactStore ensures the directory exists. ttl bounds artifact retention; zero
// or negative falls back to 24 hours.
func NewArtifactStore(dir string, ttl time.Duration) (*ArtifactStore, error) {
	if dir == "" {
		dir = "./exports"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &ArtifactStore{dir: dir, ttl: ttl}, nil
}

// Save writes a rendered artifact.
func (s *ArtifactStore) Save(name string, data []byte) error {
	if err := os.WriteFile(s.path(name), data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", name, err)
	}
	return nil
}

// Open returns a read-only handle on a stored artifact.
func (s *ArtifactStore) Open(name string) (*os.File, error) {
	file, err := os.Open(s.path(name))
	if err != nil {
		return nil, fmt.Errorf("open artifact %s: %w", name, err)
	}
	return file, nil
}

// Remove deletes an artifact. A missing file is not an error.
func (s *ArtifactStore) Remove(name string) error {
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove artifact %s: %w", name, err)
	}
	return nil
}

// Sweep deletes artifacts older than the retention window and reports how many went.
func (s *ArtifactStore) Sweep() (int, error) {
	cutoff := time.Now().Add(-s.ttl)
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("sweep artifacts: %w", err)
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return removed, fmt.Errorf("sweep artifacts: %w", err)
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("sweep artifacts: %w", err)
		}
		removed++
	}
	return removed, nil
}

func (s *ArtifactStore) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}
