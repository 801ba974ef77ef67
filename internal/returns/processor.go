// Package returns transitions confirmed photo records to returned status and
// announces the return on a notification sink.
package returns

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/bodega/internal/index"
	"github.com/erazemk/bodega/internal/model"
)

// Notifier is the outbound notification sink (the returns chat group in
// production). Notification is best-effort: a failed send does not roll back
// the status transition.
type Notifier interface {
	NotifyReturn(ctx context.Context, rec *model.Record, description string) error
}

// Processor marks confirmed records as returned.
type Processor struct {
	index    *index.Index
	notifier Notifier
}

// New creates a return processor. notifier may be nil when no sink is wired.
func New(ix *index.Index, notifier Notifier) *Processor {
	return &Processor{index: ix, notifier: notifier}
}

// MarkReturned transitions a confirmed record to returned. An empty items
// slice is a full return; a non-empty one itemizes a partial return. The
// transition is durable once the index write succeeds; the notification that
// follows may fail without undoing it. Index errors (ErrNotFound,
// ErrAlreadyReturned, ErrInvalidTransition, persistence failures) pass
// through unchanged.
func (p *Processor) MarkReturned(ctx context.Context, chatID int64, messageID int, initiator string, items []model.ReturnedItem) (*model.Record, error) {
	rec, err := p.index.MarkReturned(chatID, messageID, initiator, time.Now(), items)
	if err != nil {
		return nil, err
	}

	description := Describe(rec)
	slog.Info("photo returned", "chat", chatID, "message", messageID,
		"by", initiator, "items", len(items), "description", description)

	if p.notifier != nil {
		if err := p.notifier.NotifyReturn(ctx, rec, description); err != nil {
			slog.Error("return notification failed", "chat", chatID,
				"message", messageID, "error", err)
		}
	}
	return rec, nil
}

// Describe builds a human-readable description of a record from its
// attributes, preferring size + brand + color ("Talla 38 - nike azul") and
// falling back to the stored filename when nothing was extracted.
func Describe(rec *model.Record) string {
	detail := strings.TrimSpace(rec.Attributes.Brand + " " + rec.Attributes.Color)

	if len(rec.Attributes.Sizes) > 0 {
		sizes := fmt.Sprintf("Talla %s", strings.Join(rec.Attributes.Sizes, ", "))
		if detail != "" {
			return sizes + " - " + detail
		}
		return sizes
	}
	if detail != "" {
		return detail
	}
	return rec.File
}
