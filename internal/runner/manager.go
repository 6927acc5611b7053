package runner

import (
	"context"
	"sync"
	"time"

	"exec_bot/internal/journal"
	"exec_bot/internal/models"
	"exec_bot/internal/modules/config"
	healthsvc "exec_bot/internal/modules/health/service"
	venue "exec_bot/internal/modules/venue/service"
	"exec_bot/internal/runner/sessions"
	"exec_bot/internal/strategy"
	"exec_bot/pkg/logger"
)

// Manager поднимает по воркеру на инструмент плюс воркер реконсиляции.
// Вся координация между ними — общий Throttle и attach-каналы сессий,
// общих мьютексов на торговый стейт нет.
type Manager struct {
	cfg      *config.Config
	venue    *venue.Client
	rules    sessions.RulesSource
	notifier sessions.Notifier
	journal  *journal.Journal
	prices   sessions.PriceSource
	signaler strategy.Signaler
	health   *healthsvc.State
	throttle *sessions.Throttle

	mu       sync.Mutex
	sessions map[string]*sessions.InstrumentSession
	wg       sync.WaitGroup
}

func NewManager(
	cfg *config.Config,
	v *venue.Client,
	rules sessions.RulesSource,
	notifier sessions.Notifier,
	jr *journal.Journal,
	prices sessions.PriceSource,
	signaler strategy.Signaler,
	health *healthsvc.State,
	throttle *sessions.Throttle,
) *Manager {
	return &Manager{
		cfg:      cfg,
		venue:    v,
		rules:    rules,
		notifier: notifier,
		journal:  jr,
		prices:   prices,
		signaler: signaler,
		health:   health,
		throttle: throttle,
		sessions: make(map[string]*sessions.InstrumentSession),
	}
}

// Start прогревает индикаторы историей и запускает воркеры. Возврат — только
// после остановки всех воркеров.
func (m *Manager) Start(ctx context.Context) {
	if len(m.cfg.Symbols) == 0 {
		logger.Error("no symbols configured, nothing to run")
		return
	}

	for _, symbol := range m.cfg.Symbols {
		s := sessions.NewInstrumentSession(
			symbol, m.cfg, m.venue, m.rules, m.notifier, m.journal, m.throttle, m.prices,
		)
		m.warmup(ctx, s, symbol)

		m.mu.Lock()
		m.sessions[symbol] = s
		m.mu.Unlock()

		m.wg.Add(1)
		go m.runSymbol(ctx, s)
	}

	m.wg.Add(1)
	go m.runReconcile(ctx)

	m.health.SetReady(true)
	m.notifier.Sendf("🤖 Бот запущен: %d инструментов, тик %s", len(m.cfg.Symbols), m.cfg.TickInterval)
	logger.Info("manager started: %d symbols", len(m.cfg.Symbols))

	m.wg.Wait()
	m.health.SetReady(false)
	logger.Info("manager stopped")
}

// warmup: история свечей в индикаторы сессии и стратегии. Ошибка не фатальна —
// индикаторы догреются живыми тиками, просто позже.
func (m *Manager) warmup(ctx context.Context, s *sessions.InstrumentSession, symbol string) {
	limit := 3 * m.cfg.EMASlow
	if rl := 3 * m.cfg.RSIPeriod; rl > limit {
		limit = rl
	}
	candles, err := m.venue.Klines(ctx, symbol, m.cfg.WarmupTimeframe, limit)
	if err != nil {
		logger.Error("[%s] warmup klines: %v", symbol, err)
		return
	}
	s.Warmup(candles)
	for _, c := range candles {
		m.signaler.OnPrice(symbol, c.Close)
	}
	logger.Info("[%s] warmed up on %d candles", symbol, len(candles))
}

func (m *Manager) runSymbol(ctx context.Context, s *sessions.InstrumentSession) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sig := m.signalFor(ctx, s.Symbol)
			s.Tick(ctx, sig)
			m.health.TouchTick(time.Now())
		}
	}
}

// signalFor кормит стратегию последней ценой. Нет цены — нет сигнала,
// сессия сама решит, что делать на тике без него.
func (m *Manager) signalFor(ctx context.Context, symbol string) (sig models.Signal) {
	px := m.prices.Price(symbol)
	if px <= 0 {
		if time.Now().Before(m.throttle.AllUntil()) {
			return sig // бэкофф: REST не трогаем даже ради сигнала
		}
		var err error
		px, err = m.venue.LastPrice(ctx, symbol)
		if err != nil || px <= 0 {
			return sig
		}
	}
	return m.signaler.OnPrice(symbol, px)
}

// Session — для реконсиляции и тестов.
func (m *Manager) Session(symbol string) *sessions.InstrumentSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[symbol]
}

// RequestFlatten передаёт воркеру команду оператора закрыть позицию через
// спред. false == такой инструмент не торгуется.
func (m *Manager) RequestFlatten(symbol string) bool {
	s := m.Session(symbol)
	if s == nil {
		return false
	}
	s.RequestFlatten()
	return true
}
