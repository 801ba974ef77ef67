package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/erazemk/bodega/internal/model"
)

// NotifyReturn posts the returned photo to the returns group with a
// description caption. It satisfies returns.Notifier.
func (b *Bot) NotifyReturn(_ context.Context, rec *model.Record, description string) error {
	if b.cfg.ReturnsGroupID == 0 {
		return fmt.Errorf("returns group not configured")
	}

	photo := tgbotapi.NewPhoto(b.cfg.ReturnsGroupID,
		tgbotapi.FilePath(b.media.Path(rec.Group, rec.Date, rec.File)))
	photo.Caption = fmt.Sprintf("[Devuelto a bodega: %s]", description)

	if _, err := b.api.Send(photo); err != nil {
		return fmt.Errorf("sending return notification: %w", err)
	}
	return nil
}
