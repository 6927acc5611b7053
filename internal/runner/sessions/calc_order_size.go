package sessions

import (
	"context"
	"fmt"
	"math"

	"exec_bot/internal/helper"
	"exec_bot/internal/models"
)

// calcOrderSize: размер от капитала и аллокации на инструмент; если стратегия
// дала стоп — риск-базированный размер, но не больше аллокации.
func (s *InstrumentSession) calcOrderSize(ctx context.Context, rules models.InstrumentRules, sig models.Signal, px float64) (float64, error) {
	if px <= 0 {
		return 0, fmt.Errorf("px <= 0")
	}

	equity := s.Cfg.TotalCapital
	if equity <= 0 {
		var err error
		equity, err = s.Venue.USDTBalance(ctx)
		if err != nil {
			return 0, fmt.Errorf("get equity: %w", err)
		}
	}
	if equity <= 0 {
		return 0, fmt.Errorf("equity <= 0")
	}

	allocNotional := equity * s.Cfg.AllocPct / 100.0
	if allocNotional <= 0 {
		return 0, fmt.Errorf("alloc notional <= 0")
	}
	qty := allocNotional / px

	if sig.StopLoss > 0 {
		stopDist := math.Abs(px - sig.StopLoss)
		if stopDist > 0 {
			riskQty := equity * s.Cfg.RiskPct / 100.0 / stopDist
			if riskQty < qty {
				qty = riskQty
			}
		}
	}

	return applyRules(qty, px, rules)
}

// applyRules: только усечение вниз к шагу, потом лимиты. Проверки идут по уже
// округлённому количеству — сравнивать сырое бессмысленно.
func applyRules(qty, px float64, rules models.InstrumentRules) (float64, error) {
	qty = helper.TruncateToStep(qty, rules.QtyStep)
	if qty <= 0 || qty < rules.MinQty {
		return 0, fmt.Errorf("qty %.8f below minQty %.8f", qty, rules.MinQty)
	}
	notional := qty * px
	if rules.MinNotional > 0 && notional < rules.MinNotional {
		return 0, fmt.Errorf("notional %.4f below minNotional %.4f", notional, rules.MinNotional)
	}
	return qty, nil
}
