// Package recon correlates inbound photo submissions with later free-text
// confirmation replies. A photo creates a pending record in the index; a
// reply in the confirmation group that targets that photo and starts with a
// confirmation keyword transitions it to confirmed, merging the reply's
// extracted attributes over the caption's.
package recon

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/erazemk/bodega/internal/extract"
	"github.com/erazemk/bodega/internal/index"
	"github.com/erazemk/bodega/internal/model"
)

// confirmationKeywords is the fixed whitelist of reply prefixes that count
// as a confirmation. Matching requires the keyword to be the whole message
// or be followed by a space: a bare startsWith would misread unrelated text
// like "cancelado" as a "ca" confirmation.
var confirmationKeywords = []string{
	"v", "va", "c", "ca", "b", "ba", "van", "voy", "bv", "bc",
}

// Engine drives the pending -> confirmed lifecycle. State lives in the
// injected index; the index's per-file lock makes the exists-and-transition
// check a single step, which keeps confirmation at-most-once even with
// concurrent handlers.
type Engine struct {
	index         *index.Index
	confirmChatID int64
}

// New creates an engine that tracks photos from the given confirmation chat.
func New(ix *index.Index, confirmChatID int64) *Engine {
	return &Engine{index: ix, confirmChatID: confirmChatID}
}

// IsConfirmation reports whether text starts with a confirmation keyword
// on a word boundary (exact match or keyword followed by a space).
func IsConfirmation(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, kw := range confirmationKeywords {
		if lower == kw || strings.HasPrefix(lower, kw+" ") {
			return true
		}
	}
	return false
}

// HandlePhoto records a submitted photo as pending. If the photo carries a
// caption, its attributes are extracted now so a later confirmation can
// merge against them.
func (e *Engine) HandlePhoto(ev model.PhotoSubmitted) (*model.Record, error) {
	rec := model.Record{
		ChatID:      ev.ChatID,
		MessageID:   ev.MessageID,
		File:        ev.File,
		SubmittedBy: ev.Author,
		Group:       ev.Group,
		Date:        ev.Timestamp.Format("2006-01-02"),
		SubmittedAt: ev.Timestamp,
		Caption:     ev.Caption,
	}

	if ev.Caption != "" {
		info := extract.Extract(ev.Caption)
		rec.Attributes = model.Attributes{
			Sizes:       info.Sizes,
			Color:       info.Color,
			Brand:       info.Brand,
			ProductType: info.ProductType,
		}
	}

	if err := e.index.Register(rec); err != nil {
		return nil, err
	}

	slog.Info("photo tracked", "chat", ev.ChatID, "message", ev.MessageID,
		"user", ev.Author, "caption", ev.Caption != "")
	return &rec, nil
}

// HandleText processes a text event. It returns the confirmed record when
// the event was an accepted confirmation, and (nil, nil) when the event is
// not relevant: wrong chat, not a reply to a photo, no confirmation keyword,
// or no pending record for the replied-to message (duplicate confirmations
// land here and are no-ops). Only persistence failures are errors.
func (e *Engine) HandleText(ev model.TextMessage) (*model.Record, error) {
	if ev.ChatID != e.confirmChatID {
		return nil, nil
	}
	if ev.ReplyToMessageID == 0 || !ev.ReplyToHasPhoto {
		return nil, nil
	}
	if !IsConfirmation(ev.Text) {
		return nil, nil
	}

	info := extract.Extract(ev.Text)
	attrs := model.Attributes{
		Sizes:       info.Sizes,
		Color:       info.Color,
		Brand:       info.Brand,
		ProductType: info.ProductType,
	}

	rec, err := e.index.Confirm(ev.ChatID, ev.ReplyToMessageID, ev.Author, ev.Timestamp, ev.Text, attrs)
	if errors.Is(err, index.ErrNotFound) || errors.Is(err, index.ErrInvalidTransition) {
		// Never tracked, or already confirmed.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	slog.Info("photo confirmed", "chat", ev.ChatID, "message", ev.ReplyToMessageID,
		"by", ev.Author, "sizes", rec.Attributes.Sizes, "color", rec.Attributes.Color)
	return rec, nil
}
