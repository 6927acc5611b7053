package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"exec_bot/internal/modules/config"
	venue "exec_bot/internal/modules/venue/service"
	"exec_bot/pkg/logger"
)

// Flattener принимает команду оператора закрыть позицию инструмента.
type Flattener interface {
	RequestFlatten(symbol string) bool
}

// Telegram — единственный чат, никаких настроек через бота: алерты,
// пара read-only команд и /flatten как единственное управляющее действие.
type Telegram struct {
	bot     *tgbot.BotAPI
	chatID  int64
	venue   *venue.Client
	flatten Flattener

	cancel context.CancelFunc
}

// SetFlattener подключается после сборки графа: нотифаер нужен воркерам
// раньше, чем воркеры нотифаеру.
func (t *Telegram) SetFlattener(f Flattener) {
	if t != nil {
		t.flatten = f
	}
}

// New возвращает nil если токен не задан — звонилка тогда пишет в лог.
func New(cfg *config.Config, v *venue.Client) (*Telegram, error) {
	if cfg.Telegram.Token == "" {
		logger.Info("telegram token empty, notifications go to log only")
		return nil, nil
	}
	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	return &Telegram{bot: b, chatID: cfg.Telegram.ChatID, venue: v}, nil
}

func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil {
		logger.Info("notify: %s", msg)
		return
	}
	if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, msg)); err != nil {
		logger.Error("telegram send: %v", err)
	}
}

func (t *Telegram) Sendf(format string, args ...any) {
	t.Send(fmt.Sprintf(format, args...))
}

// Start крутит long-poll команд; /positions и /pnl читают биржу напрямую.
func (t *Telegram) Start(parent context.Context) {
	if t == nil || t.bot == nil {
		return
	}
	ctx, cancel := context.WithCancel(parent)
	t.cancel = cancel

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				t.bot.StopReceivingUpdates()
				return
			case upd, ok := <-updates:
				if !ok {
					return
				}
				if upd.Message == nil || !upd.Message.IsCommand() {
					continue
				}
				switch upd.Message.Command() {
				case "positions":
					t.handlePositions(ctx)
				case "pnl":
					t.handlePnL(ctx)
				case "flatten":
					t.handleFlatten(upd.Message.CommandArguments())
				}
			}
		}
	}()
}

func (t *Telegram) Stop() {
	if t != nil && t.cancel != nil {
		t.cancel()
	}
}

// /positions — открытые позиции прямо с биржи
func (t *Telegram) handlePositions(ctx context.Context) {
	positions, err := t.venue.Positions(ctx)
	if err != nil {
		t.Sendf("❗️ Ошибка получения позиций: %v", err)
		return
	}
	if len(positions) == 0 {
		t.Send("📭 Открытых позиций нет")
		return
	}

	var b strings.Builder
	b.WriteString("📊 Открытые позиции:\n")
	for _, p := range positions {
		fmt.Fprintf(&b, "- %s [%s] qty=%.8f entry=%.8f mark=%.8f\n",
			p.Symbol, p.Side(), p.Qty, p.Entry, p.MarkPx)
	}
	t.Send(b.String())
}

// /pnl — реализованный PnL за последние сутки из income-истории
func (t *Telegram) handlePnL(ctx context.Context) {
	since := time.Now().Add(-24 * time.Hour)
	records, err := t.venue.Income(ctx, "", since, 1000)
	if err != nil {
		t.Sendf("❗️ Ошибка получения PnL: %v", err)
		return
	}

	total := 0.0
	n := 0
	for _, r := range records {
		if r.IncomeType != "REALIZED_PNL" {
			continue
		}
		total += r.Income
		n++
	}
	t.Sendf("💰 Реализованный PnL за 24ч: %.4f USDT (%d сделок)", total, n)
}

// /flatten SYMBOL — закрыть позицию через спред. Единственная команда,
// которая что-то делает с биржей; автоматика так не поступает никогда.
func (t *Telegram) handleFlatten(args string) {
	symbol := strings.ToUpper(strings.TrimSpace(args))
	if symbol == "" {
		t.Send("Использование: /flatten SYMBOL")
		return
	}
	if t.flatten == nil {
		t.Send("❗️ Воркеры ещё не запущены")
		return
	}
	if !t.flatten.RequestFlatten(symbol) {
		t.Sendf("❗️ %s не торгуется этим ботом", symbol)
		return
	}
	t.Sendf("🫡 [%s] Закрываю через спред на ближайшем тике", symbol)
}
