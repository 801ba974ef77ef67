package bot

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/erazemk/bodega/internal/model"
	"github.com/erazemk/bodega/internal/saleslog"
)

var commandDateRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// defaultLastSales is how many sales /ultimas shows without an argument.
const defaultLastSales = 5

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	if group := b.groupName(msg.Chat.ID); group != "" {
		b.logLine(group, senderName(msg), "/"+msg.Command(), msg.Time())
	}

	switch msg.Command() {
	case "total":
		b.cmdTotal(msg)
	case "ultimas":
		b.cmdLastSales(msg)
	case "status":
		b.cmdStatus(msg)
	case "groupid":
		b.reply(msg, fmt.Sprintf("🆔 ID de este chat: %d", msg.Chat.ID))
	case "myid":
		if msg.From != nil {
			b.reply(msg, fmt.Sprintf("👤 Tu ID: %d", msg.From.ID))
		}
	case "ayudatotal":
		b.cmdHelp(msg)
	}
}

// cmdTotal answers /total, optionally restricted to a given date.
func (b *Bot) cmdTotal(msg *tgbotapi.Message) {
	date := saleslog.Today()
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		if !commandDateRE.MatchString(arg) {
			b.reply(msg, "❌ Formato de fecha incorrecto\nUsa: /total AAAA-MM-DD")
			return
		}
		date = arg
	}

	summary, err := b.sales.ComputeTotal(b.cfg.SaleGroupName, date)
	if err != nil {
		slog.Error("computing total", "date", date, "error", err)
		b.reply(msg, "❌ Error calculando total de ventas.")
		return
	}

	b.reply(msg, fmt.Sprintf("💰 VENTAS %s\nTotal: $%d\nVentas: %d", date, summary.Total, summary.Count))
}

// cmdLastSales answers /ultimas [n] with the most recent sales of the day.
func (b *Bot) cmdLastSales(msg *tgbotapi.Message) {
	n := defaultLastSales
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		parsed, err := strconv.Atoi(arg)
		if err != nil || parsed < 1 {
			b.reply(msg, "❌ Usa: /ultimas 5")
			return
		}
		n = parsed
	}

	date := saleslog.Today()
	sales, err := b.sales.LastSales(b.cfg.SaleGroupName, date, n)
	if err != nil {
		slog.Error("listing last sales", "date", date, "error", err)
		b.reply(msg, "❌ Error consultando ventas.")
		return
	}
	if len(sales) == 0 {
		b.reply(msg, "📭 No hay ventas registradas hoy.")
		return
	}

	var out strings.Builder
	fmt.Fprintf(&out, "🧾 ÚLTIMAS %d VENTAS\n", len(sales))
	for i, s := range sales {
		fmt.Fprintf(&out, "%d. $%d - %s (%s)\n", i+1, s.Price, s.Actor, s.Time)
	}
	b.reply(msg, out.String())
}

// cmdStatus answers /status with the photo pipeline counters.
func (b *Bot) cmdStatus(msg *tgbotapi.Message) {
	pending, err := b.index.ListByStatus(model.StatusPending)
	if err != nil {
		slog.Error("listing pending records", "error", err)
		b.reply(msg, "❌ Error consultando estado.")
		return
	}
	confirmed, err := b.index.ListByStatus(model.StatusConfirmed)
	if err != nil {
		slog.Error("listing confirmed records", "error", err)
		b.reply(msg, "❌ Error consultando estado.")
		return
	}

	b.reply(msg, fmt.Sprintf(
		"📊 ESTADO DEL SISTEMA\n🤖 Bot: @%s\n📸 Fotos pendientes: %d\n✅ Fotos confirmadas: %d",
		b.api.Self.UserName, len(pending), len(confirmed)))
}

// cmdHelp answers /ayudatotal.
func (b *Bot) cmdHelp(msg *tgbotapi.Message) {
	b.reply(msg,
		"📋 AYUDA - COMANDO /total\n\n"+
			"• /total - Ventas de hoy\n"+
			"• /total AAAA-MM-DD - Ventas de fecha específica\n"+
			"• /ultimas 5 - Últimas 5 ventas\n"+
			"• /status - Estado del sistema")
}
