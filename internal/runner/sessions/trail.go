package sessions

import (
	"context"

	"exec_bot/internal/journal"
	"exec_bot/internal/models"
	"exec_bot/pkg/logger"
)

// tickInPosition: двигаем трейл (только в сторону ужесточения) и проверяем
// триггеры выхода. Сама позиция уже на бирже, ордеров нет.
func (s *InstrumentSession) tickInPosition(ctx context.Context, px float64, pos models.Position, sig models.Signal) {
	if pos.Flat() {
		// закрыли руками или ликвидация — нам остаётся только признать
		s.toFlat(ctx, px, "position gone")
		return
	}
	// биржа — источник истины по размеру
	s.trail.Size = abs(pos.Qty)

	s.advanceTrail(px)

	if why := s.exitReason(px, sig); why != "" {
		s.submitExit(ctx, px, why)
	}
}

// advanceTrail: peak — лучший достигнутый экстремум, трейл пересчитывается от
// него и может только приближаться к цене, никогда не отъезжать.
func (s *InstrumentSession) advanceTrail(px float64) {
	t := s.trail
	if t.Side == models.SideLong {
		if px > t.Peak {
			t.Peak = px
			t.LastTrailAt = s.now()
		}
		if cand := t.Peak * (1 - s.Cfg.TrailPct); cand > t.Trail {
			t.Trail = cand
		}
		return
	}
	if px < t.Peak {
		t.Peak = px
		t.LastTrailAt = s.now()
	}
	if cand := t.Peak * (1 + s.Cfg.TrailPct); cand < t.Trail {
		t.Trail = cand
	}
}

// exitReason — первый сработавший триггер; пустая строка == держим дальше.
func (s *InstrumentSession) exitReason(px float64, sig models.Signal) string {
	t := s.trail

	if sig.Side != models.SideNone && sig.Side == t.Side.Opposite() {
		return "opposing signal"
	}

	if t.Side == models.SideLong {
		if px <= t.Trail {
			return "trail hit"
		}
		if px <= t.Anchor*(1-s.Cfg.SoftStopPct) {
			return "soft stop"
		}
	} else {
		if px >= t.Trail {
			return "trail hit"
		}
		if px >= t.Anchor*(1+s.Cfg.SoftStopPct) {
			return "soft stop"
		}
	}

	if s.fastEMA.Ready() && s.slowEMA.Ready() && s.rsi.Ready() {
		fast, slow := s.fastEMA.Value(), s.slowEMA.Value()
		if t.Side == models.SideLong {
			if px < slow*(1-s.Cfg.EMATolerancePct) && fast < slow && s.rsi.Value() <= 50 {
				return "trend break"
			}
		} else {
			if px > slow*(1+s.Cfg.EMATolerancePct) && fast > slow && s.rsi.Value() >= 50 {
				return "trend break"
			}
		}
	}

	return ""
}

// toFlat: позиция исчезла с биржи — цикл завершён, чистим стейт.
func (s *InstrumentSession) toFlat(ctx context.Context, px float64, why string) {
	t := s.trail
	s.trail = nil

	s.Journal.Record(ctx, journal.Event{
		Symbol: s.Symbol, Kind: journal.KindPositionFlat,
		Side: string(t.Side), Price: px, Qty: t.Size, Note: why,
	})
	pnlPct := 0.0
	if t.Entry > 0 {
		if t.Side == models.SideLong {
			pnlPct = (px - t.Entry) / t.Entry * 100
		} else {
			pnlPct = (t.Entry - px) / t.Entry * 100
		}
	}
	s.Notifier.Sendf("🏁 [%s] Позиция %s закрыта @ %.8f (%s), ~%.2f%%",
		s.Symbol, t.Side, px, why, pnlPct)
	logger.Info("[%s] flat: %s", s.Symbol, why)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
