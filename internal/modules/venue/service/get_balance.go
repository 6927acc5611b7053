package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
)

func (c *Client) USDTBalance(ctx context.Context) (float64, error) {
	body, err := c.signedCall(ctx, http.MethodGet, "/fapi/v2/balance", nil)
	if err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}

	var rows []struct {
		Asset            string `json:"asset"`
		AvailableBalance string `json:"availableBalance"`
	}
	if err := sonic.Unmarshal(body, &rows); err != nil {
		return 0, &StaleDataError{What: "balance: " + err.Error()}
	}

	for _, r := range rows {
		if r.Asset != "USDT" {
			continue
		}
		v, err := strconv.ParseFloat(r.AvailableBalance, 64)
		if err != nil {
			return 0, &StaleDataError{What: "balance: bad availableBalance " + r.AvailableBalance}
		}
		return v, nil
	}
	return 0, &StaleDataError{What: "balance: no USDT asset"}
}
