package sessions

import (
	"context"
	"time"

	"exec_bot/internal/helper"
	"exec_bot/internal/journal"
	"exec_bot/internal/models"
	"exec_bot/pkg/logger"
)

// tickIdle: вход только по направленному сигналу, без позиции и без висящего
// ордера. Отказ в размере (minQty/minNotional) — остаёмся в Idle с причиной.
func (s *InstrumentSession) tickIdle(ctx context.Context, sig models.Signal, px float64, pos models.Position, orders []models.Order) {
	if !pos.Flat() {
		// позиция есть, а стейта нет: ручная, после рестарта или после краша
		s.adopt(pos)
		return
	}
	if s.cancelStrayOrders(ctx, orders) {
		// пока на бирже висит чужой ордер, новых входов нет: сняли и ждём
		// чистого стакана на следующем тике
		return
	}
	if sig.Side == models.SideNone || (sig.Symbol != "" && sig.Symbol != s.Symbol) {
		return
	}

	rules, err := s.Rules.Rules(ctx, s.Symbol)
	if err != nil {
		s.onVenueErr("rules", err)
		return
	}

	qty, err := s.calcOrderSize(ctx, rules, sig, px)
	if err != nil {
		logger.Info("[%s] entry skipped: %v", s.Symbol, err)
		if s.canSend("entry_rejected", s.Cfg.NotifyCooldown) {
			s.Notifier.Sendf("⚠️ [%s] Вход %s пропущен: %v", s.Symbol, sig.Side, err)
		}
		s.Journal.Record(ctx, journal.Event{
			Symbol: s.Symbol, Kind: journal.KindEntryRejected,
			Side: string(sig.Side), Price: px, Note: err.Error(),
		})
		return
	}

	// мейкер-котировка: отступаем от рынка в свою сторону
	var side string
	var quote float64
	if sig.Side == models.SideLong {
		side = models.OrderSideBuy
		quote = helper.RoundDownToTick(px*(1-s.Cfg.EntryMakerOffsetPct), rules.PriceStep)
	} else {
		side = models.OrderSideSell
		quote = helper.RoundUpToTick(px*(1+s.Cfg.EntryMakerOffsetPct), rules.PriceStep)
	}

	// last price мог уехать от книги — пересечём стакан, и пост-онли отлетит;
	// прижимаемся к лучшей стороне, когда книга доступна
	if bid, ask, berr := s.Venue.BookTicker(ctx, s.Symbol); berr == nil {
		if sig.Side == models.SideLong && quote > bid {
			quote = bid
		} else if sig.Side == models.SideShort && quote < ask {
			quote = ask
		}
	}

	ord, err := s.Venue.PlaceLimit(ctx, s.Symbol, side, qty, quote)
	if err != nil {
		// состояние не меняем: следующий тик начнёт с нуля
		s.onVenueErr("place entry", err)
		return
	}

	now := s.now()
	s.entry = &models.EntryIntent{
		Side:     sig.Side,
		Qty:      qty,
		FirstPx:  quote,
		LastPx:   quote,
		OrderID:  ord.ID,
		QuotedAt: now,
		OpenedAt: now,
	}
	s.Throttle.Mark(s.Symbol, now, s.Cfg.MinActionGap)

	s.Journal.Record(ctx, journal.Event{
		Symbol: s.Symbol, Kind: journal.KindEntryPlaced,
		Side: string(sig.Side), OrderID: ord.ID, Price: quote, Qty: qty, Note: sig.Reason,
	})
	s.Notifier.Sendf("📥 [%s] Вход %s: лимитка %.8f @ %.8f (%s)", s.Symbol, sig.Side, qty, quote, sig.Reason)
}

// cancelStrayOrders: живой ордер без позиции и без стейта — рестарт между
// постановкой и исполнением или ручной ордер. Снимаем, чтобы по сигналу не
// задвоить вход.
func (s *InstrumentSession) cancelStrayOrders(ctx context.Context, orders []models.Order) bool {
	stray := false
	for i := range orders {
		if !orders[i].Live() {
			continue
		}
		stray = true
		logger.Info("[%s] idle: stray order %d %s @ %.8f, canceling",
			s.Symbol, orders[i].ID, orders[i].Side, orders[i].Price)
		if err := s.Venue.CancelOrder(ctx, s.Symbol, orders[i].ID); err != nil {
			s.onVenueErr("cancel stray order", err)
			continue
		}
		s.Journal.Record(ctx, journal.Event{
			Symbol: s.Symbol, Kind: journal.KindStrayCanceled,
			Side: orders[i].Side, OrderID: orders[i].ID, Price: orders[i].Price, Qty: orders[i].Qty,
		})
	}
	if stray && s.canSend("stray_order", s.Cfg.NotifyCooldown) {
		s.Notifier.Sendf("🧹 [%s] Снят висящий ордер без позиции", s.Symbol)
	}
	return stray
}

// toPosition: биржа показала ненулевую позицию — интент выкидываем,
// заводим трейл от цены обнаружения.
func (s *InstrumentSession) toPosition(ctx context.Context, px float64, pos models.Position) {
	side := pos.Side()
	s.entry = nil
	s.trail = newTrailState(side, px, pos, s.Cfg.TrailInitBufferPct, s.now())

	s.Journal.Record(ctx, journal.Event{
		Symbol: s.Symbol, Kind: journal.KindPositionOpen,
		Side: string(side), Price: px, Qty: s.trail.Size,
	})
	s.Notifier.Sendf("✅ [%s] Позиция %s size=%.8f entry=%.8f trail=%.8f",
		s.Symbol, side, s.trail.Size, s.trail.Entry, s.trail.Trail)
}

func newTrailState(side models.Side, px float64, pos models.Position, initBufferPct float64, now time.Time) *models.TrailState {
	trail := px * (1 - initBufferPct)
	if side == models.SideShort {
		trail = px * (1 + initBufferPct)
	}
	size := pos.Qty
	if size < 0 {
		size = -size
	}
	entry := pos.Entry
	if entry <= 0 {
		entry = px
	}
	return &models.TrailState{
		Side:     side,
		Anchor:   px,
		Peak:     px,
		Trail:    trail,
		Entry:    entry,
		Size:     size,
		OpenedAt: now,
	}
}
