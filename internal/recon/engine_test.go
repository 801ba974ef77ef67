package recon

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/erazemk/bodega/internal/index"
	"github.com/erazemk/bodega/internal/model"
)

const confirmChat = int64(-100555)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	ix := index.New(filepath.Join(t.TempDir(), "fotos_index.json"))
	return New(ix, confirmChat)
}

func photoEvent(messageID int, caption string) model.PhotoSubmitted {
	return model.PhotoSubmitted{
		ChatID:    confirmChat,
		MessageID: messageID,
		Author:    "Ana",
		Group:     "Entra_sale_bodega_55",
		Caption:   caption,
		File:      "1700000000000.jpg",
		Timestamp: time.Date(2026, 2, 3, 14, 30, 0, 0, time.UTC),
	}
}

func replyEvent(replyTo int, text string) model.TextMessage {
	return model.TextMessage{
		ChatID:           confirmChat,
		MessageID:        replyTo + 1,
		Author:           "Luis",
		Group:            "Entra_sale_bodega_55",
		Text:             text,
		ReplyToMessageID: replyTo,
		ReplyToHasPhoto:  true,
		Timestamp:        time.Date(2026, 2, 3, 14, 35, 0, 0, time.UTC),
	}
}

func TestIsConfirmation(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"v", true},
		{"V", true},
		{"va", true},
		{"v talla 38 color azul", true},
		{"va nike verde", true},
		{"VOY ya", true},
		// Keyword must sit on a word boundary.
		{"cancelado", false},
		{"vamos", false},
		{"bcd", false},
		{"no", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsConfirmation(tt.text); got != tt.want {
			t.Errorf("IsConfirmation(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestPhotoThenConfirmation(t *testing.T) {
	e := newTestEngine(t)

	rec, err := e.HandlePhoto(photoEvent(10, "talla 38 color azul"))
	if err != nil {
		t.Fatalf("HandlePhoto: %v", err)
	}
	if !reflect.DeepEqual(rec.Attributes.Sizes, []string{"38"}) {
		t.Errorf("caption sizes = %v, want [38]", rec.Attributes.Sizes)
	}

	confirmed, err := e.HandleText(replyEvent(10, "v"))
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if confirmed == nil {
		t.Fatal("expected a confirmed record")
	}
	if confirmed.Status != model.StatusConfirmed {
		t.Errorf("status = %q, want confirmado", confirmed.Status)
	}
	if confirmed.ConfirmationText != "v" {
		t.Errorf("confirmation text = %q, want v", confirmed.ConfirmationText)
	}
	// Bare "v" supplies nothing, so caption attributes survive the merge.
	if !reflect.DeepEqual(confirmed.Attributes.Sizes, []string{"38"}) || confirmed.Attributes.Color != "azul" {
		t.Errorf("attributes = %+v, want caption values kept", confirmed.Attributes)
	}
}

func TestConfirmationMergeReplyWins(t *testing.T) {
	e := newTestEngine(t)
	e.HandlePhoto(photoEvent(10, "talla 38 color azul"))

	confirmed, err := e.HandleText(replyEvent(10, "v color rojo"))
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if confirmed.Attributes.Color != "rojo" {
		t.Errorf("color = %q, want rojo (reply wins)", confirmed.Attributes.Color)
	}
	if !reflect.DeepEqual(confirmed.Attributes.Sizes, []string{"38"}) {
		t.Errorf("sizes = %v, want [38] kept from caption", confirmed.Attributes.Sizes)
	}
}

func TestDuplicateConfirmationIsNoop(t *testing.T) {
	e := newTestEngine(t)
	e.HandlePhoto(photoEvent(10, ""))

	first, err := e.HandleText(replyEvent(10, "v talla 40"))
	if err != nil || first == nil {
		t.Fatalf("first confirmation: rec=%v err=%v", first, err)
	}

	second, err := e.HandleText(replyEvent(10, "va talla 42"))
	if err != nil {
		t.Fatalf("second confirmation: %v", err)
	}
	if second != nil {
		t.Error("second confirmation should be a no-op")
	}
}

func TestIrrelevantTextIgnored(t *testing.T) {
	e := newTestEngine(t)
	e.HandlePhoto(photoEvent(10, ""))

	// Wrong chat.
	ev := replyEvent(10, "v")
	ev.ChatID = -100999
	if rec, err := e.HandleText(ev); rec != nil || err != nil {
		t.Errorf("wrong chat: rec=%v err=%v", rec, err)
	}

	// Not a reply.
	ev = replyEvent(10, "v")
	ev.ReplyToMessageID = 0
	if rec, err := e.HandleText(ev); rec != nil || err != nil {
		t.Errorf("not a reply: rec=%v err=%v", rec, err)
	}

	// Reply target is not a photo.
	ev = replyEvent(10, "v")
	ev.ReplyToHasPhoto = false
	if rec, err := e.HandleText(ev); rec != nil || err != nil {
		t.Errorf("non-photo target: rec=%v err=%v", rec, err)
	}

	// No confirmation keyword.
	if rec, err := e.HandleText(replyEvent(10, "cancelado")); rec != nil || err != nil {
		t.Errorf("non-keyword: rec=%v err=%v", rec, err)
	}

	// Reply to an untracked message.
	if rec, err := e.HandleText(replyEvent(99, "v")); rec != nil || err != nil {
		t.Errorf("untracked target: rec=%v err=%v", rec, err)
	}
}
