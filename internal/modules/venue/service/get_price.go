package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
)

func (c *Client) LastPrice(ctx context.Context, symbol string) (float64, error) {
	body, err := c.publicCall(ctx, http.MethodGet, "/fapi/v1/ticker/price", params{}.with("symbol", symbol))
	if err != nil {
		return 0, fmt.Errorf("last price %s: %w", symbol, err)
	}

	var r struct {
		Price string `json:"price"`
	}
	if err := sonic.Unmarshal(body, &r); err != nil {
		return 0, &StaleDataError{What: "ticker/price: " + err.Error()}
	}
	px, err := strconv.ParseFloat(r.Price, 64)
	if err != nil || px <= 0 {
		return 0, &StaleDataError{What: "ticker/price: bad price " + r.Price}
	}
	return px, nil
}

// BookTicker — лучшие bid/ask, для мейкер-котировок точнее last price.
func (c *Client) BookTicker(ctx context.Context, symbol string) (bid, ask float64, err error) {
	body, err := c.publicCall(ctx, http.MethodGet, "/fapi/v1/ticker/bookTicker", params{}.with("symbol", symbol))
	if err != nil {
		return 0, 0, fmt.Errorf("book ticker %s: %w", symbol, err)
	}

	var r struct {
		BidPrice string `json:"bidPrice"`
		AskPrice string `json:"askPrice"`
	}
	if err := sonic.Unmarshal(body, &r); err != nil {
		return 0, 0, &StaleDataError{What: "bookTicker: " + err.Error()}
	}
	bid, _ = strconv.ParseFloat(r.BidPrice, 64)
	ask, _ = strconv.ParseFloat(r.AskPrice, 64)
	if bid <= 0 || ask <= 0 {
		return 0, 0, &StaleDataError{What: "bookTicker: empty book for " + symbol}
	}
	return bid, ask, nil
}
