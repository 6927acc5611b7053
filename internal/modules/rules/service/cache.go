package service

import (
	"context"
	"fmt"
	"sync"

	"exec_bot/internal/models"
	venue "exec_bot/internal/modules/venue/service"
	"exec_bot/pkg/logger"
)

// Cache мемоизирует торговые лимиты на время жизни процесса. Инвалидации нет:
// если биржа поменяет правила посреди сессии, округлять продолжим по старым.
type Cache struct {
	venue *venue.Client

	mu    sync.RWMutex
	rules map[string]models.InstrumentRules
}

func NewCache(v *venue.Client) *Cache {
	return &Cache{
		venue: v,
		rules: make(map[string]models.InstrumentRules),
	}
}

func (c *Cache) Rules(ctx context.Context, symbol string) (models.InstrumentRules, error) {
	c.mu.RLock()
	r, ok := c.rules[symbol]
	c.mu.RUnlock()
	if ok {
		return r, nil
	}

	r, err := c.venue.InstrumentRules(ctx, symbol)
	if err != nil {
		return models.InstrumentRules{}, fmt.Errorf("rules %s: %w", symbol, err)
	}

	// Гонка на первом заполнении безвредна: значение детерминированное,
	// перезапись идемпотентна.
	c.mu.Lock()
	c.rules[symbol] = r
	c.mu.Unlock()

	logger.Info("rules cached %s: tick=%.8f step=%.8f minQty=%.8f minNotional=%.2f",
		r.Symbol, r.PriceStep, r.QtyStep, r.MinQty, r.MinNotional)
	return r, nil
}
