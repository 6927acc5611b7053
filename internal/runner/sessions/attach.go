package sessions

import (
	"context"

	"exec_bot/internal/journal"
	"exec_bot/internal/models"
	"exec_bot/pkg/logger"
)

// Attach — вход для реконсиляции: позиция есть на бирже, воркер про неё может
// не знать. Неблокирующий, буфер на один элемент: если воркер отстаёт, хватит
// последнего снимка.
func (s *InstrumentSession) Attach(pos models.Position) {
	select {
	case s.attachCh <- pos:
	default:
	}
}

// RequestFlatten — команда оператора: закрыть позицию через спред на ближайшем
// тике. Неблокирующий, как attach; повторный запрос до тика схлопывается.
func (s *InstrumentSession) RequestFlatten() {
	select {
	case s.flattenCh <- struct{}{}:
	default:
	}
}

// drainAttach вызывается только из тика воркера — стейт трогаем безопасно.
func (s *InstrumentSession) drainAttach() {
	for {
		select {
		case pos := <-s.attachCh:
			if s.entry != nil || s.trail != nil || pos.Flat() {
				continue // воркер уже в курсе
			}
			s.adopt(pos)
		default:
			return
		}
	}
}

// adopt: чужая позиция становится нашей — трейл от текущей марк-цены,
// дальше обычный жизненный цикл.
func (s *InstrumentSession) adopt(pos models.Position) {
	px := pos.MarkPx
	if px <= 0 {
		px = pos.Entry
	}
	if px <= 0 {
		logger.Error("[%s] adopt: no reference price, skipping", s.Symbol)
		return
	}

	s.trail = newTrailState(pos.Side(), px, pos, s.Cfg.TrailInitBufferPct, s.now())

	s.Journal.Record(context.Background(), journal.Event{
		Symbol: s.Symbol, Kind: journal.KindAttached,
		Side: string(pos.Side()), Price: px, Qty: s.trail.Size,
	})
	s.Notifier.Sendf("🔗 [%s] Подхватили позицию %s size=%.8f entry=%.8f trail=%.8f",
		s.Symbol, pos.Side(), s.trail.Size, s.trail.Entry, s.trail.Trail)
	logger.Info("[%s] attached %s position size=%.8f", s.Symbol, pos.Side(), s.trail.Size)
}
