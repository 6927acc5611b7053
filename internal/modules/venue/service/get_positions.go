package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"exec_bot/internal/models"
)

type positionRow struct {
	Symbol      string `json:"symbol"`
	PositionAmt string `json:"positionAmt"`
	EntryPrice  string `json:"entryPrice"`
	MarkPrice   string `json:"markPrice"`
	UpdateTime  int64  `json:"updateTime"`
}

func (r positionRow) toModel() models.Position {
	qty, _ := strconv.ParseFloat(r.PositionAmt, 64)
	entry, _ := strconv.ParseFloat(r.EntryPrice, 64)
	mark, _ := strconv.ParseFloat(r.MarkPrice, 64)
	return models.Position{
		Symbol:    r.Symbol,
		Qty:       qty,
		Entry:     entry,
		MarkPx:    mark,
		UpdatedAt: time.UnixMilli(r.UpdateTime),
	}
}

// Positions — все позиции аккаунта; источник правды для реконсиляции.
func (c *Client) Positions(ctx context.Context) ([]models.Position, error) {
	body, err := c.signedCall(ctx, http.MethodGet, "/fapi/v2/positionRisk", nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var rows []positionRow
	if err := sonic.Unmarshal(body, &rows); err != nil {
		return nil, &StaleDataError{What: "positionRisk: " + err.Error()}
	}

	res := make([]models.Position, 0, len(rows))
	for _, r := range rows {
		p := r.toModel()
		if p.Flat() {
			continue
		}
		res = append(res, p)
	}
	return res, nil
}

// PositionFor — позиция по одному символу; нулевое Qty == flat.
func (c *Client) PositionFor(ctx context.Context, symbol string) (models.Position, error) {
	body, err := c.signedCall(ctx, http.MethodGet, "/fapi/v2/positionRisk", params{}.with("symbol", symbol))
	if err != nil {
		return models.Position{}, fmt.Errorf("position %s: %w", symbol, err)
	}

	var rows []positionRow
	if err := sonic.Unmarshal(body, &rows); err != nil {
		return models.Position{}, &StaleDataError{What: "positionRisk: " + err.Error()}
	}
	for _, r := range rows {
		if r.Symbol == symbol {
			return r.toModel(), nil
		}
	}
	return models.Position{Symbol: symbol}, nil
}
