package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/erazemk/bodega/internal/extract"
	"github.com/erazemk/bodega/internal/index"
	"github.com/erazemk/bodega/internal/model"
)

// handlePhoto archives a photo from a tracked group and, in the
// confirmation group, registers it as pending.
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	group := b.groupName(msg.Chat.ID)
	if group == "" {
		return
	}
	sender := senderName(msg)
	at := msg.Time()

	data, err := b.downloadPhoto(ctx, msg)
	if err != nil {
		slog.Error("processing photo", "chat", msg.Chat.ID, "message", msg.MessageID, "error", err)
		b.reply(msg, "❌ Error guardando la foto. Intenta de nuevo.")
		return
	}

	file, err := b.media.Save(group, at, data)
	if err != nil {
		slog.Error("saving photo", "chat", msg.Chat.ID, "message", msg.MessageID, "error", err)
		b.reply(msg, "❌ Error guardando la foto. Intenta de nuevo.")
		return
	}

	switch msg.Chat.ID {
	case b.cfg.ConfirmGroupID:
		b.logLine(group, sender, fmt.Sprintf("[Archivo guardado: %s]", file), at)
		_, err := b.engine.HandlePhoto(model.PhotoSubmitted{
			ChatID:    msg.Chat.ID,
			MessageID: msg.MessageID,
			Author:    sender,
			Group:     group,
			Caption:   msg.Caption,
			File:      file,
			Timestamp: at,
		})
		if err != nil {
			slog.Error("registering photo", "message", msg.MessageID, "error", err)
			return
		}
		b.reply(msg, "📸 Foto por confirmar")

	case b.cfg.SaleGroupID:
		b.logLine(group, sender, fmt.Sprintf("[Venta - Archivo: %s]", file), at)
		if price, ok := extract.Price(msg.Caption); ok {
			b.logLine(group, sender, "$ "+price, at)
			b.rememberPrice(msg.MessageID, price)
			b.reply(msg, fmt.Sprintf("✅ Foto de venta guardada\n💰 Precio registrado: $%s", price))
		} else {
			b.reply(msg, "✅ Foto de venta guardada\n💡 Puedes añadir el precio en un mensaje aparte")
		}
	}
}

// handleText routes a plain text message: return commands and confirmation
// replies in the confirmation group, price lines in the sales group.
func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Chat.ID {
	case b.cfg.ConfirmGroupID:
		if strings.EqualFold(strings.TrimSpace(msg.Text), "d") && msg.ReplyToMessage != nil {
			b.handleReturn(ctx, msg)
			return
		}
		b.handleConfirmation(msg)
	case b.cfg.SaleGroupID:
		b.handleSaleText(msg)
	}
}

// handleConfirmation feeds a confirmation-group text into the engine and
// logs the outcome.
func (b *Bot) handleConfirmation(msg *tgbotapi.Message) {
	group := b.cfg.ConfirmGroupName
	sender := senderName(msg)
	at := msg.Time()

	ev := model.TextMessage{
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Author:    sender,
		Group:     group,
		Text:      msg.Text,
		Timestamp: at,
	}
	if msg.ReplyToMessage != nil {
		ev.ReplyToMessageID = msg.ReplyToMessage.MessageID
		ev.ReplyToHasPhoto = len(msg.ReplyToMessage.Photo) > 0
	}

	rec, err := b.engine.HandleText(ev)
	if err != nil {
		slog.Error("processing confirmation", "message", msg.MessageID, "error", err)
		return
	}
	if rec == nil {
		b.logLine(group, sender, msg.Text, at)
		return
	}

	detail := describeAttributes(rec.Attributes)
	b.logLine(group, sender, "[CONFIRMADO] "+detail, at)
	b.reply(msg, fmt.Sprintf("✅ CONFIRMADO CORRECTAMENTE\n👤 Confirmado por: %s", sender))
}

// handleReturn processes an admin replying "d" to a tracked photo.
func (b *Bot) handleReturn(ctx context.Context, msg *tgbotapi.Message) {
	if !b.isAdmin(msg) {
		b.reply(msg, "❌ Solo administradores pueden devolver.")
		return
	}
	if len(msg.ReplyToMessage.Photo) == 0 {
		b.reply(msg, "❌ Debes responder a una foto.")
		return
	}

	sender := senderName(msg)
	_, err := b.returns.MarkReturned(ctx, msg.Chat.ID, msg.ReplyToMessage.MessageID, sender, nil)
	switch {
	case errors.Is(err, index.ErrNotFound):
		b.reply(msg, "❌ Foto no encontrada en el sistema.")
	case errors.Is(err, index.ErrAlreadyReturned):
		b.reply(msg, "⚠️ Esta foto ya fue devuelta.")
	case errors.Is(err, index.ErrInvalidTransition):
		b.reply(msg, "⚠️ La foto aún no está confirmada.")
	case err != nil:
		slog.Error("marking return", "message", msg.ReplyToMessage.MessageID, "error", err)
		b.reply(msg, "❌ Error procesando devolución.")
	default:
		b.logLine(b.cfg.ConfirmGroupName, sender, "[Devuelto]", msg.Time())
		b.reply(msg, "✅ Producto marcado como devuelto.")
	}
}

// handleSaleText logs sales-group chatter, promoting bare price messages to
// "$ N" sale lines with duplicate suppression for quick repeats on the same
// photo.
func (b *Bot) handleSaleText(msg *tgbotapi.Message) {
	group := b.cfg.SaleGroupName
	sender := senderName(msg)
	at := msg.Time()

	price, ok := extract.Price(msg.Text)
	if !ok || !extract.IsBarePrice(msg.Text) {
		b.logLine(group, sender, msg.Text, at)
		return
	}

	if msg.ReplyToMessage != nil && len(msg.ReplyToMessage.Photo) > 0 {
		if b.isDuplicatePrice(msg.ReplyToMessage.MessageID) {
			slog.Info("duplicate price ignored", "message", msg.ReplyToMessage.MessageID, "price", price)
			return
		}
		b.logLine(group, sender, "$ "+price, at)
		b.rememberPrice(msg.ReplyToMessage.MessageID, price)
		b.reply(msg, fmt.Sprintf("💰 Precio registrado: $%s\n✅ Asociado a la foto anterior", price))
		return
	}

	b.logLine(group, sender, "$ "+price, at)
	b.reply(msg, fmt.Sprintf("💰 Precio registrado: $%s\n💡 Envía una foto y responde con el precio para asociarlo", price))
}

// logLine appends to the daily log, logging failures instead of surfacing
// them to the chat.
func (b *Bot) logLine(group, sender, text string, at time.Time) {
	if err := b.sales.Append(group, sender, text, at); err != nil {
		slog.Error("appending log line", "group", group, "error", err)
	}
}

// rememberPrice records the last price attached to a photo message.
func (b *Bot) rememberPrice(messageID int, price string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastPrice[messageID] = priceEntry{price: price, at: time.Now()}
}

// isDuplicatePrice reports whether the same photo already got a price inside
// the suppression window.
func (b *Bot) isDuplicatePrice(messageID int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.lastPrice[messageID]
	return ok && time.Since(entry.at) < duplicatePriceWindow
}

// describeAttributes renders extracted attributes for log lines and chat
// replies.
func describeAttributes(attrs model.Attributes) string {
	var parts []string
	if len(attrs.Sizes) > 0 {
		parts = append(parts, "📏 "+strings.Join(attrs.Sizes, ", "))
	}
	if attrs.Color != "" {
		parts = append(parts, "🎨 "+attrs.Color)
	}
	if attrs.Brand != "" {
		parts = append(parts, "🏷️ "+attrs.Brand)
	}
	if attrs.ProductType != "" {
		parts = append(parts, "👕 "+attrs.ProductType)
	}
	if len(parts) == 0 {
		return "Sin detalles"
	}
	return strings.Join(parts, " | ")
}
