package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"

	"exec_bot/internal/models"
)

// Klines — недавние свечи; единственный вызов, где ретрай по транспорту
// безопасен и нужен (прогрев индикаторов на старте).
func (c *Client) Klines(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	p := params{}.
		with("symbol", symbol).
		with("interval", interval).
		withInt("limit", int64(limit))

	body, err := c.publicGetRetry(ctx, "/fapi/v1/klines", p)
	if err != nil {
		return nil, fmt.Errorf("klines %s: %w", symbol, err)
	}

	// Формат: [[openTime,"o","h","l","c","v",...],...]
	var raw [][]any
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return nil, &StaleDataError{What: "klines: " + err.Error()}
	}

	res := make([]models.Candle, 0, len(raw))
	for _, row := range raw {
		if len(row) < 6 {
			continue
		}
		ot, _ := row[0].(float64)
		c := models.Candle{OpenTime: int64(ot)}
		ok := true
		for i, dst := range []*float64{&c.Open, &c.High, &c.Low, &c.Close, &c.Volume} {
			s, isStr := row[i+1].(string)
			if !isStr {
				ok = false
				break
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				ok = false
				break
			}
			*dst = v
		}
		if ok {
			res = append(res, c)
		}
	}
	if len(res) == 0 {
		return nil, &StaleDataError{What: "klines: empty for " + symbol}
	}
	return res, nil
}
