package sessions

import (
	"context"
	"fmt"

	"exec_bot/internal/helper"
	"exec_bot/internal/journal"
	"exec_bot/internal/models"
	"exec_bot/pkg/logger"
)

// tickEntryPending: догоняем рынок лимиткой. Приоритет — позиция: как только
// биржа её показала, интент больше не интересен.
func (s *InstrumentSession) tickEntryPending(ctx context.Context, px float64, pos models.Position, orders []models.Order) {
	if !pos.Flat() {
		s.toPosition(ctx, px, pos)
		return
	}

	if s.entry.OrderID != 0 {
		ord := findOrder(orders, s.entry.OrderID)
		if ord == nil || !ord.Live() {
			// ордер исчез, позиции нет: отменён руками или протух — начинаем заново
			logger.Info("[%s] entry order %d gone, back to idle", s.Symbol, s.entry.OrderID)
			s.abandonEntry(ctx, "order gone", px)
			return
		}
		if s.now().Sub(s.entry.QuotedAt) < s.Cfg.EntryRepriceAfter {
			return
		}
	}
	// OrderID == 0 значит прошлый resubmit сорвался после отмены — повторяем сразу

	if s.entry.OrderID != 0 && s.entry.RepriceN >= s.Cfg.EntryMaxReprices {
		// рынок ушёл — не гонимся дальше, снимаем и ждём нового сигнала
		if err := s.Venue.CancelOrder(ctx, s.Symbol, s.entry.OrderID); err != nil {
			s.onVenueErr("cancel stale entry", err)
			return
		}
		side := s.entry.Side
		s.abandonEntry(ctx, "max reprices", px)
		s.Notifier.Sendf("🏳️ [%s] Вход %s не догнал рынок за %d перестановок, отбой",
			s.Symbol, side, s.Cfg.EntryMaxReprices)
		return
	}

	n := s.entry.RepriceN
	if s.entry.OrderID != 0 {
		if err := s.Venue.CancelOrder(ctx, s.Symbol, s.entry.OrderID); err != nil {
			s.onVenueErr("cancel entry for reprice", err)
			return
		}
		n++
	}
	rules, err := s.Rules.Rules(ctx, s.Symbol)
	if err != nil {
		s.onVenueErr("rules", err)
		return
	}

	raw := chasePrice(s.entry.Side, s.entry.FirstPx, n, s.Cfg.EntryMaxReprices,
		s.Cfg.EntryMinMakerOffsetPct, s.Cfg.EntryMaxChasePct)
	var side string
	var quote float64
	if s.entry.Side == models.SideLong {
		side = models.OrderSideBuy
		quote = helper.RoundDownToTick(raw, rules.PriceStep)
	} else {
		side = models.OrderSideSell
		quote = helper.RoundUpToTick(raw, rules.PriceStep)
	}

	ordNew, err := s.Venue.PlaceLimit(ctx, s.Symbol, side, s.entry.Qty, quote)
	if err != nil {
		// старый снят, новый не встал: интент жив, следующий тик повторит resubmit
		s.onVenueErr("resubmit entry", err)
		s.entry.OrderID = 0
		s.entry.RepriceN = n
		s.entry.QuotedAt = s.now()
		return
	}

	s.entry.OrderID = ordNew.ID
	s.entry.RepriceN = n
	s.entry.LastPx = quote
	s.entry.QuotedAt = s.now()
	s.Throttle.Mark(s.Symbol, s.now(), s.Cfg.MinActionGap)

	s.Journal.Record(ctx, journal.Event{
		Symbol: s.Symbol, Kind: journal.KindEntryReprice,
		Side: string(s.entry.Side), OrderID: ordNew.ID, Price: quote, Qty: s.entry.Qty,
		Note: fmt.Sprintf("reprice %d", n),
	})
	logger.Info("[%s] entry reprice #%d -> %.8f", s.Symbol, n, quote)
}

func (s *InstrumentSession) abandonEntry(ctx context.Context, why string, px float64) {
	side := s.entry.Side
	s.Journal.Record(ctx, journal.Event{
		Symbol: s.Symbol, Kind: journal.KindEntryAbandon,
		Side: string(side), OrderID: s.entry.OrderID, Price: px,
		Note: fmt.Sprintf("%s after %d reprices", why, s.entry.RepriceN),
	})
	s.entry = nil
}

// chasePrice — цена n-й перестановки: сдвиг от первой котировки в сторону
// рынка, линейно до EntryMaxChasePct, но не меньше минимального мейкер-шага
// на каждую перестановку. Дальше максимального сдвига не идём никогда.
func chasePrice(side models.Side, firstPx float64, n, maxN int, minStepPct, maxChasePct float64) float64 {
	frac := 0.0
	if maxN > 0 {
		frac = float64(n) / float64(maxN)
	}
	off := maxChasePct * frac
	if minOff := minStepPct * float64(n); off < minOff {
		off = minOff
	}
	if off > maxChasePct {
		off = maxChasePct
	}
	if side == models.SideLong {
		return firstPx * (1 + off)
	}
	return firstPx * (1 - off)
}
