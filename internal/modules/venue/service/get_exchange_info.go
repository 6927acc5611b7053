package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"

	"exec_bot/internal/models"
)

// InstrumentRules тянет фильтры инструмента с exchangeInfo. Кэширует не клиент,
// а rules-кэш поверх — клиент всегда ходит в сеть.
func (c *Client) InstrumentRules(ctx context.Context, symbol string) (models.InstrumentRules, error) {
	body, err := c.publicGetRetry(ctx, "/fapi/v1/exchangeInfo", params{}.with("symbol", symbol))
	if err != nil {
		if ve, ok := err.(*VenueError); ok && ve.Code == -1121 {
			// Invalid symbol
			return models.InstrumentRules{}, &UnknownInstrumentError{Symbol: symbol}
		}
		return models.InstrumentRules{}, fmt.Errorf("exchangeInfo: %w", err)
	}

	var payload struct {
		Symbols []struct {
			Symbol  string `json:"symbol"`
			Status  string `json:"status"`
			Filters []struct {
				FilterType string `json:"filterType"`
				TickSize   string `json:"tickSize"`
				StepSize   string `json:"stepSize"`
				MinQty     string `json:"minQty"`
				Notional   string `json:"notional"`
			} `json:"filters"`
		} `json:"symbols"`
	}
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return models.InstrumentRules{}, &StaleDataError{What: "exchangeInfo: " + err.Error()}
	}
	if len(payload.Symbols) == 0 {
		return models.InstrumentRules{}, &UnknownInstrumentError{Symbol: symbol}
	}

	info := payload.Symbols[0]
	if info.Status != "" && info.Status != "TRADING" {
		return models.InstrumentRules{}, fmt.Errorf("instrument %s not trading: status=%s", symbol, info.Status)
	}

	parsePos := func(name, s string) (float64, error) {
		if s == "" {
			return 0, fmt.Errorf("%s empty", name)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			return 0, fmt.Errorf("%s parse: %v (%q)", name, err, s)
		}
		return v, nil
	}

	rules := models.InstrumentRules{Symbol: info.Symbol}
	for _, f := range info.Filters {
		switch f.FilterType {
		case "PRICE_FILTER":
			if rules.PriceStep, err = parsePos("tickSize", f.TickSize); err != nil {
				return models.InstrumentRules{}, err
			}
		case "LOT_SIZE":
			if rules.QtyStep, err = parsePos("stepSize", f.StepSize); err != nil {
				return models.InstrumentRules{}, err
			}
			if rules.MinQty, err = parsePos("minQty", f.MinQty); err != nil {
				return models.InstrumentRules{}, err
			}
		case "MIN_NOTIONAL":
			if rules.MinNotional, err = parsePos("notional", f.Notional); err != nil {
				return models.InstrumentRules{}, err
			}
		}
	}
	if rules.PriceStep <= 0 || rules.QtyStep <= 0 {
		return models.InstrumentRules{}, &StaleDataError{What: "exchangeInfo: filters incomplete for " + symbol}
	}

	return rules, nil
}
