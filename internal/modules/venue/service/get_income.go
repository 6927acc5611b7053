package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
)

type IncomeRecord struct {
	Symbol     string
	IncomeType string // REALIZED_PNL / COMMISSION / FUNDING_FEE
	Income     float64
	Time       time.Time
}

// Income — история PnL/комиссий/фандинга, для отчёта в нотифайере.
func (c *Client) Income(ctx context.Context, symbol string, since time.Time, limit int) ([]IncomeRecord, error) {
	p := params{}.withInt("limit", int64(limit))
	if symbol != "" {
		p = p.with("symbol", symbol)
	}
	if !since.IsZero() {
		p = p.withInt("startTime", since.UnixMilli())
	}

	body, err := c.signedCall(ctx, http.MethodGet, "/fapi/v1/income", p)
	if err != nil {
		return nil, fmt.Errorf("income: %w", err)
	}

	var rows []struct {
		Symbol     string `json:"symbol"`
		IncomeType string `json:"incomeType"`
		Income     string `json:"income"`
		Time       int64  `json:"time"`
	}
	if err := sonic.Unmarshal(body, &rows); err != nil {
		return nil, &StaleDataError{What: "income: " + err.Error()}
	}

	res := make([]IncomeRecord, 0, len(rows))
	for _, r := range rows {
		v, _ := strconv.ParseFloat(r.Income, 64)
		res = append(res, IncomeRecord{
			Symbol:     r.Symbol,
			IncomeType: r.IncomeType,
			Income:     v,
			Time:       time.UnixMilli(r.Time),
		})
	}
	return res, nil
}
