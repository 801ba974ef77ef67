// Package media stores submitted photos on disk, laid out as
// fotos/<grupo>/<fecha>/<unix-millis>.jpg so the report pages can serve them
// by group and day.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Store writes photo files under a base directory.
type Store struct {
	dir string
}

// New creates a media store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// SafeName sanitizes a group name for use as a directory name.
func SafeName(group string) string {
	return unsafeChars.ReplaceAllString(group, "_")
}

// Save writes photo bytes for a group, returning the generated filename.
// Filenames are millisecond timestamps so directory listings sort by
// submission time.
func (s *Store) Save(group string, at time.Time, data []byte) (string, error) {
	date := at.Format("2006-01-02")
	dir := filepath.Join(s.dir, SafeName(group), date)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating photo directory: %w", err)
	}

	name := fmt.Sprintf("%d.jpg", at.UnixMilli())
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return "", fmt.Errorf("writing photo: %w", err)
	}
	return name, nil
}

// Path returns the on-disk path of a stored photo.
func (s *Store) Path(group, date, file string) string {
	return filepath.Join(s.dir, SafeName(group), date, file)
}

// Dir returns the base photo directory, for static file serving.
func (s *Store) Dir() string {
	return s.dir
}
