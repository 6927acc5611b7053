package sessions

import (
	"context"

	"exec_bot/internal/helper"
	"exec_bot/internal/journal"
	"exec_bot/internal/models"
	"exec_bot/pkg/logger"
)

// submitExit: пост-онли лимитка на закрытие всей позиции, чуть в свою сторону
// от рынка. Размер — по последним данным биржи, не по нашим записям.
func (s *InstrumentSession) submitExit(ctx context.Context, px float64, why string) {
	rules, err := s.Rules.Rules(ctx, s.Symbol)
	if err != nil {
		s.onVenueErr("rules", err)
		return
	}

	side, quote := s.exitQuote(px, rules, s.trail.ExitRepriceN)
	ord, err := s.Venue.PlaceLimit(ctx, s.Symbol, side, s.trail.Size, quote)
	if err != nil {
		s.onVenueErr("place exit", err)
		return
	}

	s.trail.ExitOrderID = ord.ID
	s.trail.ExitQuotedAt = s.now()
	s.trail.ExitReason = why
	s.Throttle.Mark(s.Symbol, s.now(), s.Cfg.MinActionGap)

	s.Journal.Record(ctx, journal.Event{
		Symbol: s.Symbol, Kind: journal.KindExitPlaced,
		Side: string(s.trail.Side), OrderID: ord.ID, Price: quote, Qty: s.trail.Size, Note: why,
	})
	s.Notifier.Sendf("📤 [%s] Выход %s (%s): лимитка %.8f @ %.8f",
		s.Symbol, s.trail.Side, why, s.trail.Size, quote)
}

// exitQuote: для выхода мейкер-отступ тает с каждой перестановкой — важнее
// закрыться, чем сэкономить на комиссии.
func (s *InstrumentSession) exitQuote(px float64, rules models.InstrumentRules, n int) (string, float64) {
	off := s.Cfg.ExitMakerOffsetPct
	if s.Cfg.ExitMaxReprices > 0 && n > 0 {
		off *= 1 - float64(n)/float64(s.Cfg.ExitMaxReprices)
		if off < 0 {
			off = 0
		}
	}
	if s.trail.Side == models.SideLong {
		return models.OrderSideSell, helper.RoundUpToTick(px*(1+off), rules.PriceStep)
	}
	return models.OrderSideBuy, helper.RoundDownToTick(px*(1-off), rules.PriceStep)
}

// tickExitPending: ордер на выход висит. Ждём ухода позиции; если ордер
// протух — переставляем от свежей цены. Исчерпали перестановки — ордер
// остаётся лежать: капитал уже в позиции, бить тейкером автоматика не будет.
func (s *InstrumentSession) tickExitPending(ctx context.Context, px float64, pos models.Position, orders []models.Order) {
	if pos.Flat() {
		s.toFlat(ctx, px, s.trail.ExitReason)
		return
	}
	s.trail.Size = abs(pos.Qty)
	s.advanceTrail(px)

	ord := findOrder(orders, s.trail.ExitOrderID)
	if ord == nil || !ord.Live() {
		// ордер пропал, позиция осталась: возможно частичное исполнение или
		// отмена руками — выставляем заново с той же причиной
		logger.Info("[%s] exit order %d gone, position still open", s.Symbol, s.trail.ExitOrderID)
		why := s.trail.ExitReason
		s.trail.ExitOrderID = 0
		s.submitExit(ctx, px, why)
		return
	}

	if s.now().Sub(s.trail.ExitQuotedAt) < s.Cfg.ExitRepriceAfter {
		return
	}

	if s.trail.ExitRepriceN >= s.Cfg.ExitMaxReprices {
		if s.canSend("exit_stuck", s.Cfg.NotifyCooldown) {
			s.Notifier.Sendf("⏳ [%s] Выход %s не исполняется %d перестановок, ордер лежит в стакане. /flatten %s — закрыть через спред",
				s.Symbol, s.trail.Side, s.trail.ExitRepriceN, s.Symbol)
		}
		return
	}

	if err := s.Venue.CancelOrder(ctx, s.Symbol, s.trail.ExitOrderID); err != nil {
		s.onVenueErr("cancel exit for reprice", err)
		return
	}
	s.trail.ExitOrderID = 0
	s.trail.ExitRepriceN++

	rules, err := s.Rules.Rules(ctx, s.Symbol)
	if err != nil {
		s.onVenueErr("rules", err)
		return
	}
	side, quote := s.exitQuote(px, rules, s.trail.ExitRepriceN)
	ordNew, err := s.Venue.PlaceLimit(ctx, s.Symbol, side, s.trail.Size, quote)
	if err != nil {
		// следующий тик увидит ExitOrderID == 0 из InPosition и начнёт выход заново
		s.onVenueErr("resubmit exit", err)
		return
	}
	s.trail.ExitOrderID = ordNew.ID
	s.trail.ExitQuotedAt = s.now()
	s.Throttle.Mark(s.Symbol, s.now(), s.Cfg.MinActionGap)

	s.Journal.Record(ctx, journal.Event{
		Symbol: s.Symbol, Kind: journal.KindExitReprice,
		Side: string(s.trail.Side), OrderID: ordNew.ID, Price: quote, Qty: s.trail.Size,
		Note: s.trail.ExitReason,
	})
	logger.Info("[%s] exit reprice #%d -> %.8f", s.Symbol, s.trail.ExitRepriceN, quote)
}

// flatten — осознанное решение оператора (/flatten), не автоматика:
// снимаем всё и кроем IOC-лимиткой через спред.
func (s *InstrumentSession) flatten(ctx context.Context, px float64) {
	if err := s.Venue.CancelAllOpen(ctx, s.Symbol); err != nil {
		s.onVenueErr("cancel all for flatten", err)
		return
	}
	s.trail.ExitOrderID = 0

	rules, err := s.Rules.Rules(ctx, s.Symbol)
	if err != nil {
		s.onVenueErr("rules", err)
		return
	}

	// через спред: продаём ниже рынка / покупаем выше, чтобы исполниться сразу
	cross := s.Cfg.EntryMaxChasePct
	var side string
	var quote float64
	if s.trail.Side == models.SideLong {
		side = models.OrderSideSell
		quote = helper.RoundDownToTick(px*(1-cross), rules.PriceStep)
	} else {
		side = models.OrderSideBuy
		quote = helper.RoundUpToTick(px*(1+cross), rules.PriceStep)
	}

	ord, err := s.Venue.PlaceLimitIOC(ctx, s.Symbol, side, s.trail.Size, quote)
	if err != nil {
		s.onVenueErr("place flatten", err)
		return
	}
	s.trail.ExitOrderID = ord.ID
	s.trail.ExitQuotedAt = s.now()
	s.trail.ExitReason = "flatten"
	s.Throttle.Mark(s.Symbol, s.now(), s.Cfg.MinActionGap)

	s.Journal.Record(ctx, journal.Event{
		Symbol: s.Symbol, Kind: journal.KindExitPlaced,
		Side: string(s.trail.Side), OrderID: ord.ID, Price: quote, Qty: s.trail.Size,
		Note: "flatten",
	})
	s.Notifier.Sendf("🚨 [%s] Принудительное закрытие %s %.8f @ %.8f",
		s.Symbol, s.trail.Side, s.trail.Size, quote)
	logger.Info("[%s] flatten @ %.8f", s.Symbol, quote)
}
