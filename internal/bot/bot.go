// Package bot is the Telegram transport: it routes group messages into the
// reconciliation engine, the sales log and the return processor, and answers
// the query commands.
package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/erazemk/bodega/internal/imaging"
	"github.com/erazemk/bodega/internal/index"
	"github.com/erazemk/bodega/internal/media"
	"github.com/erazemk/bodega/internal/recon"
	"github.com/erazemk/bodega/internal/returns"
	"github.com/erazemk/bodega/internal/saleslog"
)

// Config names the three groups the bot works with. Names are used for log
// and photo directories, so they must stay stable once chosen.
type Config struct {
	ConfirmGroupID   int64
	ConfirmGroupName string
	SaleGroupID      int64
	SaleGroupName    string
	ReturnsGroupID   int64
}

// priceEntry remembers the last price logged against a photo message, used
// to suppress near-instant duplicate price replies.
type priceEntry struct {
	price string
	at    time.Time
}

// duplicatePriceWindow is how long a repeated price reply to the same photo
// is ignored.
const duplicatePriceWindow = 5 * time.Second

// Bot consumes Telegram updates and dispatches them by group.
type Bot struct {
	api     *tgbotapi.BotAPI
	cfg     Config
	engine  *recon.Engine
	returns *returns.Processor
	index   *index.Index
	sales   *saleslog.Log
	media   *media.Store

	mu        sync.Mutex
	lastPrice map[int]priceEntry
}

// New creates a bot around an authorized Telegram API client.
func New(api *tgbotapi.BotAPI, cfg Config, engine *recon.Engine, proc *returns.Processor,
	ix *index.Index, sales *saleslog.Log, store *media.Store) *Bot {
	return &Bot{
		api:       api,
		cfg:       cfg,
		engine:    engine,
		returns:   proc,
		index:     ix,
		sales:     sales,
		media:     store,
		lastPrice: map[int]priceEntry{},
	}
}

// SetReturns wires the return processor after construction. The processor
// needs the bot as its notifier, so the two are tied together in two steps.
func (b *Bot) SetReturns(proc *returns.Processor) {
	b.returns = proc
}

// Run consumes the update stream until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	slog.Info("bot started", "username", b.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// groupName maps a chat ID to its configured directory name, or "" for
// chats the bot does not track.
func (b *Bot) groupName(chatID int64) string {
	switch chatID {
	case b.cfg.ConfirmGroupID:
		return b.cfg.ConfirmGroupName
	case b.cfg.SaleGroupID:
		return b.cfg.SaleGroupName
	}
	return ""
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	switch {
	case msg.IsCommand():
		b.handleCommand(msg)
	case len(msg.Photo) > 0:
		b.handlePhoto(ctx, msg)
	case msg.Text != "":
		b.handleText(ctx, msg)
	}
}

// downloadPhoto fetches the highest-resolution variant of a photo message
// and normalizes it for archiving.
func (b *Bot) downloadPhoto(ctx context.Context, msg *tgbotapi.Message) ([]byte, error) {
	fileID := msg.Photo[len(msg.Photo)-1].FileID
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolving photo URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading photo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading photo: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	return imaging.Normalize(data)
}

// reply sends text in answer to a message, best-effort.
func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(out); err != nil {
		slog.Error("sending reply", "chat", msg.Chat.ID, "error", err)
	}
}

// isAdmin checks whether the sender administers the chat the message came
// from. Messages without a sender (anonymous admins, channel posts) and
// lookup failures count as not-admin.
func (b *Bot) isAdmin(msg *tgbotapi.Message) bool {
	if msg.From == nil {
		return false
	}
	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: msg.Chat.ID,
			UserID: msg.From.ID,
		},
	})
	if err != nil {
		slog.Error("checking chat member", "chat", msg.Chat.ID, "user", msg.From.ID, "error", err)
		return false
	}
	return member.IsAdministrator() || member.IsCreator()
}

// senderName builds a display name for the message sender.
func senderName(msg *tgbotapi.Message) string {
	if msg.From == nil {
		return "Usuario"
	}
	name := strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
	if name == "" {
		name = msg.From.UserName
	}
	if name == "" {
		name = "Usuario"
	}
	return name
}
