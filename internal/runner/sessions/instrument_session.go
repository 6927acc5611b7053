package sessions

import (
	"context"
	"time"

	"exec_bot/internal/journal"
	"exec_bot/internal/models"
	"exec_bot/internal/modules/config"
	"exec_bot/internal/strategy"
)

type VenueAPI interface {
	PositionFor(ctx context.Context, symbol string) (models.Position, error)
	OpenOrders(ctx context.Context, symbol string) ([]models.Order, error)
	PlaceLimit(ctx context.Context, symbol, side string, qty, price float64) (models.Order, error)
	PlaceLimitIOC(ctx context.Context, symbol, side string, qty, price float64) (models.Order, error)
	CancelOrder(ctx context.Context, symbol string, orderID int64) error
	CancelAllOpen(ctx context.Context, symbol string) error
	LastPrice(ctx context.Context, symbol string) (float64, error)
	BookTicker(ctx context.Context, symbol string) (bid, ask float64, err error)
	USDTBalance(ctx context.Context) (float64, error)
}

type RulesSource interface {
	Rules(ctx context.Context, symbol string) (models.InstrumentRules, error)
}

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

// PriceSource — кэш цен из websocket-стрима; 0 => фолбэк в REST.
type PriceSource interface {
	Price(symbol string) float64
}

// InstrumentSession — стейт-машина одного инструмента:
// Idle → EntryPending → InPosition → ExitPending → Idle.
// Всё состояние принадлежит воркеру инструмента, тики строго последовательны,
// локов нет по построению. Снаружи только attach-канал от реконсиляции.
type InstrumentSession struct {
	Symbol   string
	Cfg      *config.Config
	Venue    VenueAPI
	Rules    RulesSource
	Notifier Notifier
	Journal  *journal.Journal
	Throttle *Throttle
	Prices   PriceSource

	// ровно один из двух не nil; оба nil == Idle
	entry *models.EntryIntent
	trail *models.TrailState

	fastEMA strategy.EMA
	slowEMA strategy.EMA
	rsi     strategy.RSI

	attachCh   chan models.Position
	flattenCh  chan struct{}
	flattenReq bool
	lastSent   map[string]time.Time

	now func() time.Time
}

func NewInstrumentSession(
	symbol string,
	cfg *config.Config,
	venue VenueAPI,
	rules RulesSource,
	notifier Notifier,
	jr *journal.Journal,
	throttle *Throttle,
	prices PriceSource,
) *InstrumentSession {
	return &InstrumentSession{
		Symbol:   symbol,
		Cfg:      cfg,
		Venue:    venue,
		Rules:    rules,
		Notifier: notifier,
		Journal:  jr,
		Throttle: throttle,
		Prices:   prices,
		fastEMA:  strategy.NewEMA(cfg.EMAFast),
		slowEMA:  strategy.NewEMA(cfg.EMASlow),
		rsi:      strategy.NewRSI(cfg.RSIPeriod),
		attachCh:  make(chan models.Position, 1),
		flattenCh: make(chan struct{}, 1),
		lastSent:  make(map[string]time.Time),
		now:       time.Now,
	}
}

// Warmup прогревает индикаторы выхода историей свечей перед стартом воркера.
func (s *InstrumentSession) Warmup(candles []models.Candle) {
	for _, c := range candles {
		s.fastEMA.Update(c.Close)
		s.slowEMA.Update(c.Close)
		s.rsi.Update(c.Close)
	}
}

// canSend — подавление дублей нотификаций в окне кулдауна.
func (s *InstrumentSession) canSend(key string, every time.Duration) bool {
	now := s.now()
	if last, ok := s.lastSent[key]; ok && now.Sub(last) < every {
		return false
	}
	s.lastSent[key] = now
	return true
}

func findOrder(orders []models.Order, id int64) *models.Order {
	if id == 0 {
		return nil
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i]
		}
	}
	return nil
}
