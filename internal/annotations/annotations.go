// Package annotations stores freeform per-photo annotation documents as
// JSON files. Overwriting an existing annotation first copies the old
// file into a dated backups directory, so earlier markings are never lost.
package annotations

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

var photoIDRE = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Store persists annotations under a single directory, one JSON file per
// photo ID.
type Store struct {
	dir string
}

// New returns a store rooted at dir. The directory is created on first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes the raw annotation JSON for photoID, backing up any previous
// version under backups/<date>/<photoID>_<unixmilli>.json first.
func (s *Store) Save(photoID string, data []byte) error {
	if !photoIDRE.MatchString(photoID) {
		return fmt.Errorf("invalid photo ID %q", photoID)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating annotations directory: %w", err)
	}

	path := filepath.Join(s.dir, photoID+".json")
	if prev, err := os.ReadFile(path); err == nil {
		now := time.Now()
		backupDir := filepath.Join(s.dir, "backups", now.Format("2006-01-02"))
		if err := os.MkdirAll(backupDir, 0o755); err != nil {
			return fmt.Errorf("creating backup directory: %w", err)
		}
		backupPath := filepath.Join(backupDir, fmt.Sprintf("%s_%d.json", photoID, now.UnixMilli()))
		if err := os.WriteFile(backupPath, prev, 0o644); err != nil {
			return fmt.Errorf("backing up annotation: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("saving annotation: %w", err)
	}
	return nil
}

// Load returns the stored annotation JSON for photoID, or os.ErrNotExist
// if the photo has never been annotated.
func (s *Store) Load(photoID string) ([]byte, error) {
	if !photoIDRE.MatchString(photoID) {
		return nil, fmt.Errorf("invalid photo ID %q", photoID)
	}
	return os.ReadFile(filepath.Join(s.dir, photoID+".json"))
}
