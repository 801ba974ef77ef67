// Package index is the durable photo index: a single JSON object file
// mapping "{chatID}_{messageID}" keys to tracked photo records. The file is
// rewritten in full on every mutation, which is fine at this write volume;
// all mutations are read-modify-write sequences under one lock so that
// overlapping confirm and return operations cannot clobber each other.
package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/erazemk/bodega/internal/model"
)

// Index errors.
var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyReturned   = errors.New("record already returned")
)

// Index is the photo record store.
type Index struct {
	path string
	mu   sync.Mutex
}

// New creates an index backed by the JSON file at path. The file is created
// on first write.
func New(path string) *Index {
	return &Index{path: path}
}

// Key builds the identity key for a chat message.
func Key(chatID int64, messageID int) string {
	return fmt.Sprintf("%d_%d", chatID, messageID)
}

// Register stores a new pending record for a submitted photo. An identity
// that is already tracked is left untouched: transitions only move forward,
// so a replayed photo event must not reset a confirmed record to pending.
func (ix *Index) Register(rec model.Record) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	records, err := ix.load()
	if err != nil {
		return err
	}

	key := Key(rec.ChatID, rec.MessageID)
	if _, ok := records[key]; ok {
		return nil
	}

	rec.Status = model.StatusPending
	records[key] = rec
	return ix.save(records)
}

// Get returns the record for a chat message, or ErrNotFound.
func (ix *Index) Get(chatID int64, messageID int) (*model.Record, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	records, err := ix.load()
	if err != nil {
		return nil, err
	}

	rec, ok := records[Key(chatID, messageID)]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// Confirm transitions a pending record to confirmed, merging the
// confirmation-derived attributes over the caption-derived ones and stamping
// the confirmation fields. Confirming a record that is not pending returns
// ErrInvalidTransition and changes nothing.
func (ix *Index) Confirm(chatID int64, messageID int, by string, at time.Time, text string, attrs model.Attributes) (*model.Record, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	records, err := ix.load()
	if err != nil {
		return nil, err
	}

	key := Key(chatID, messageID)
	rec, ok := records[key]
	if !ok {
		return nil, ErrNotFound
	}
	if rec.Status != model.StatusPending {
		return nil, ErrInvalidTransition
	}

	rec.Status = model.StatusConfirmed
	rec.Attributes = rec.Attributes.Merge(attrs)
	rec.ConfirmedBy = by
	rec.ConfirmedAt = &at
	rec.ConfirmationText = text

	records[key] = rec
	if err := ix.save(records); err != nil {
		return nil, err
	}
	return &rec, nil
}

// MarkReturned transitions a confirmed record to returned. An empty items
// slice means a full return; a non-empty one itemizes a partial return.
// A second return on the same record is rejected with ErrAlreadyReturned;
// returning a pending record is rejected with ErrInvalidTransition. Neither
// rejection mutates anything.
func (ix *Index) MarkReturned(chatID int64, messageID int, by string, at time.Time, items []model.ReturnedItem) (*model.Record, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	records, err := ix.load()
	if err != nil {
		return nil, err
	}

	key := Key(chatID, messageID)
	rec, ok := records[key]
	if !ok {
		return nil, ErrNotFound
	}
	switch rec.Status {
	case model.StatusReturned:
		return nil, ErrAlreadyReturned
	case model.StatusConfirmed:
		// The only valid source state.
	default:
		return nil, ErrInvalidTransition
	}

	rec.Status = model.StatusReturned
	rec.ReturnedBy = by
	rec.ReturnedAt = &at
	rec.ReturnedItems = items

	records[key] = rec
	if err := ix.save(records); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListByStatus returns all records with the given status, or all records
// when status is empty.
func (ix *Index) ListByStatus(status string) ([]model.Record, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	records, err := ix.load()
	if err != nil {
		return nil, err
	}

	var out []model.Record
	for _, rec := range records {
		if status == "" || rec.Status == status {
			out = append(out, rec)
		}
	}
	return out, nil
}

// load reads the whole index file. A missing file is an empty index.
func (ix *Index) load() (map[string]model.Record, error) {
	data, err := os.ReadFile(ix.path)
	if os.IsNotExist(err) {
		return map[string]model.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}

	records := map[string]model.Record{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing index: %w", err)
	}

	// Identity lives in the key, not the value.
	for key, rec := range records {
		rec.ChatID, rec.MessageID = parseKey(key)
		records[key] = rec
	}
	return records, nil
}

// save rewrites the whole index file atomically (temp file + rename).
func (ix *Index) save(records map[string]model.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}

	tmp := ix.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(ix.path), 0755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	if err := os.Rename(tmp, ix.path); err != nil {
		return fmt.Errorf("replacing index: %w", err)
	}
	return nil
}

// parseKey splits a "{chatID}_{messageID}" key.
func parseKey(key string) (int64, int) {
	i := strings.LastIndex(key, "_")
	if i < 0 {
		return 0, 0
	}
	chatID, _ := strconv.ParseInt(key[:i], 10, 64)
	messageID, _ := strconv.Atoi(key[i+1:])
	return chatID, messageID
}
