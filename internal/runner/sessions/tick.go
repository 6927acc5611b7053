package sessions

import (
	"context"
	"errors"

	"exec_bot/internal/models"
	venue "exec_bot/internal/modules/venue/service"
	"exec_bot/pkg/logger"
)

// Tick — один шаг стейт-машины. Любая ошибка внутри деградирует до
// "попробуем на следующем тике": ни один инструмент не валит ни другой
// инструмент, ни процесс.
func (s *InstrumentSession) Tick(ctx context.Context, sig models.Signal) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[%s] tick panic: %v", s.Symbol, r)
		}
	}()

	s.drainAttach()
	select {
	case <-s.flattenCh:
		s.flattenReq = true
	default:
	}

	if !s.Throttle.Allowed(s.Symbol, s.now()) {
		return
	}

	px := s.currentPrice(ctx)
	if px <= 0 {
		return // нет данных на этом тике
	}

	s.fastEMA.Update(px)
	s.slowEMA.Update(px)
	s.rsi.Update(px)

	pos, err := s.Venue.PositionFor(ctx, s.Symbol)
	if err != nil {
		s.onVenueErr("position", err)
		return
	}
	orders, err := s.Venue.OpenOrders(ctx, s.Symbol)
	if err != nil {
		s.onVenueErr("open orders", err)
		return
	}

	if s.flattenReq {
		s.flattenReq = false
		if s.entry != nil {
			// оператор просил флэт: висящий вход не должен исполниться позже
			if s.entry.OrderID != 0 {
				if err := s.Venue.CancelOrder(ctx, s.Symbol, s.entry.OrderID); err != nil {
					s.onVenueErr("cancel entry for flatten", err)
					s.flattenReq = true // повторим на следующем тике
					return
				}
			}
			s.abandonEntry(ctx, "flatten", px)
			s.Notifier.Sendf("🧹 [%s] Вход снят: оператор просил флэт", s.Symbol)
			if pos.Flat() {
				return
			}
		}
		if !pos.Flat() {
			if s.trail == nil {
				// частичное исполнение входа или ручная позиция: её и кроем
				s.trail = newTrailState(pos.Side(), px, pos, s.Cfg.TrailInitBufferPct, s.now())
			}
			s.trail.Size = abs(pos.Qty)
			s.flatten(ctx, px)
			return
		}
		if s.trail == nil {
			s.Notifier.Sendf("📭 [%s] Нечего закрывать", s.Symbol)
		}
	}

	switch {
	case s.entry != nil:
		s.tickEntryPending(ctx, px, pos, orders)
	case s.trail != nil:
		if s.trail.Exiting() {
			s.tickExitPending(ctx, px, pos, orders)
		} else {
			s.tickInPosition(ctx, px, pos, sig)
		}
	default:
		s.tickIdle(ctx, sig, px, pos, orders)
	}
}

func (s *InstrumentSession) currentPrice(ctx context.Context) float64 {
	if s.Prices != nil {
		if px := s.Prices.Price(s.Symbol); px > 0 {
			return px
		}
	}
	px, err := s.Venue.LastPrice(ctx, s.Symbol)
	if err != nil {
		s.onVenueErr("last price", err)
		return 0
	}
	return px
}

func (s *InstrumentSession) onVenueErr(op string, err error) {
	if venue.IsRateLimited(err) {
		s.Throttle.BackoffAll(s.now(), s.Cfg.RateLimitBackoff)
		if s.canSend("rate_limited", s.Cfg.NotifyCooldown) {
			s.Notifier.Sendf("🧊 [%s] Rate limit от биржи, бэкофф %s", s.Symbol, s.Cfg.RateLimitBackoff)
		}
		logger.Error("[%s] %s rate limited: %v", s.Symbol, op, err)
		return
	}

	var stale *venue.StaleDataError
	if errors.As(err, &stale) {
		// неожиданная форма ответа == нет данных на тике
		logger.Info("[%s] %s: %v", s.Symbol, op, err)
		return
	}

	logger.Error("[%s] %s: %v", s.Symbol, op, err)
}
