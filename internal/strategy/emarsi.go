package strategy

import (
	"fmt"
	"sync"

	"exec_bot/internal/models"

	"exec_bot/internal/modules/config"
)

const (
	rsiOverbought = 70.0
	rsiOversold   = 30.0
)

// EMARSI — дефолтная стратегия: пересечение быстрой/медленной EMA,
// подтверждённое RSI. Один сигнал на смену стороны.
type EMARSI struct {
	mu sync.Mutex

	fastN, slowN, rsiN int

	fast map[string]*EMA
	slow map[string]*EMA
	rsi  map[string]*RSI

	lastSide map[string]models.Side
}

func NewEMARSI(cfg *config.Config) *EMARSI {
	return &EMARSI{
		fastN:    cfg.EMAFast,
		slowN:    cfg.EMASlow,
		rsiN:     cfg.RSIPeriod,
		fast:     map[string]*EMA{},
		slow:     map[string]*EMA{},
		rsi:      map[string]*RSI{},
		lastSide: map[string]models.Side{},
	}
}

func (s *EMARSI) Name() string { return string(models.StrategyEMARSI) }

func (s *EMARSI) OnPrice(symbol string, price float64) models.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fast[symbol] == nil {
		f, sl, r := NewEMA(s.fastN), NewEMA(s.slowN), NewRSI(s.rsiN)
		s.fast[symbol], s.slow[symbol], s.rsi[symbol] = &f, &sl, &r
	}
	fast := s.fast[symbol]
	slow := s.slow[symbol]
	rsi := s.rsi[symbol]

	fast.Update(price)
	slow.Update(price)
	rsi.Update(price)

	none := models.Signal{Symbol: symbol, Side: models.SideNone, Price: price, Strategy: models.StrategyEMARSI}
	if !fast.Ready() || !slow.Ready() || !rsi.Ready() {
		return none
	}

	side := models.SideNone
	if fast.Value() > slow.Value() && rsi.Value() < rsiOversold {
		side = models.SideLong
	} else if fast.Value() < slow.Value() && rsi.Value() > rsiOverbought {
		side = models.SideShort
	}
	if side == models.SideNone || side == s.lastSide[symbol] {
		return none
	}
	s.lastSide[symbol] = side

	return models.Signal{
		Symbol:   symbol,
		Side:     side,
		Price:    price,
		Strategy: models.StrategyEMARSI,
		Reason:   fmt.Sprintf("EMA%d/%d cross + RSI%d=%.1f", s.fastN, s.slowN, s.rsiN, rsi.Value()),
	}
}
