// Package saleslog owns the append-only daily chat logs and the sales
// aggregation over them. One UTF-8 text file per (group, date) holds lines
// in the fixed format "YYYY-MM-DD HH:MM:SS ACTOR: MESSAGE". The log file is
// the only durable representation of sales: totals are recomputed by
// re-parsing the file on every query, never from a running counter.
package saleslog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/erazemk/bodega/internal/media"
)

// Log manages the daily log files under a base directory. Appends are
// serialized by a mutex so concurrent handlers cannot interleave partial
// lines.
type Log struct {
	dir string
	mu  sync.Mutex
}

// New creates a log rooted at dir (one subdirectory per group).
func New(dir string) *Log {
	return &Log{dir: dir}
}

// Today returns the current date in the log's date format.
func Today() string {
	return time.Now().Format("2006-01-02")
}

// Path returns the log file path for a group and date. Group names are
// sanitized the same way the photo store does it, so logs and photos for a
// group share one directory name.
func (l *Log) Path(group, date string) string {
	return filepath.Join(l.dir, media.SafeName(group), date+".txt")
}

// Append writes one log line for the given group, flushed before returning.
// The line's date decides which daily file it lands in.
func (l *Log) Append(group, actor, message string, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	date := at.Format("2006-01-02")
	path := l.Path(group, date)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s %s: %s\n", date, at.Format("15:04:05"), actor, message)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("appending log line: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("flushing log file: %w", err)
	}
	return nil
}
