package runner

import (
	"context"
	"time"

	venue "exec_bot/internal/modules/venue/service"
	"exec_bot/pkg/logger"
)

// runReconcile: отдельный медленный цикл сверки с биржей. Задача — найти
// позиции, о которых воркеры не знают (ручные сделки, рестарт, краш между
// постановкой ордера и появлением позиции), подкинуть их в сессии, и увидеть
// висящие ордера по символам, за которыми никто не следит.
func (m *Manager) runReconcile(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.ReconInterval)
	defer ticker.Stop()

	// первая сверка сразу: самый частый случай потерянной позиции — рестарт
	m.reconcileOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.reconcileOnce(ctx)
		}
	}
}

func (m *Manager) reconcileOnce(ctx context.Context) {
	now := time.Now()
	if now.Before(m.throttle.AllUntil()) {
		logger.Info("reconcile skipped: rate limit backoff until %s", m.throttle.AllUntil().Format(time.RFC3339))
		return
	}

	positions, err := m.venue.Positions(ctx)
	if err != nil {
		if venue.IsRateLimited(err) {
			m.throttle.BackoffAll(now, m.cfg.RateLimitBackoff)
		}
		logger.Error("reconcile positions: %v", err)
		return
	}

	for _, pos := range positions {
		s := m.Session(pos.Symbol)
		if s == nil {
			// позиция по символу вне конфига — трогать не наше дело, но сказать надо
			logger.Error("reconcile: position %s (%.8f) has no worker", pos.Symbol, pos.Qty)
			continue
		}
		// сессия сама отфильтрует то, что уже ведёт
		s.Attach(pos)
	}

	orders, err := m.venue.AllOpenOrders(ctx)
	if err != nil {
		if venue.IsRateLimited(err) {
			m.throttle.BackoffAll(now, m.cfg.RateLimitBackoff)
		}
		logger.Error("reconcile open orders: %v", err)
		return
	}
	for _, ord := range orders {
		if !ord.Live() {
			continue
		}
		// по своим символам воркер видит стакан каждый тик и сам снимает
		// лишнее; здесь ловим только ордера без хозяина
		if m.Session(ord.Symbol) == nil {
			logger.Error("reconcile: order %d on %s (%s %.8f @ %.8f) has no worker",
				ord.ID, ord.Symbol, ord.Side, ord.Qty, ord.Price)
		}
	}
}
