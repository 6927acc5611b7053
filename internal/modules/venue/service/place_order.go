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

// PlaceLimit ставит post-only лимитник (GTX): ордер либо ложится в стакан,
// либо отклоняется биржей — через спред не бьём.
func (c *Client) PlaceLimit(ctx context.Context, symbol, side string, qty, price float64) (models.Order, error) {
	return c.placeLimit(ctx, symbol, side, "GTX", qty, price)
}

// PlaceLimitIOC — агрессивная лимитка через спред: исполняет что может сразу,
// остаток отменяется биржей. Замена маркет-ордеру с защитой по цене.
func (c *Client) PlaceLimitIOC(ctx context.Context, symbol, side string, qty, price float64) (models.Order, error) {
	return c.placeLimit(ctx, symbol, side, "IOC", qty, price)
}

func (c *Client) placeLimit(ctx context.Context, symbol, side, tif string, qty, price float64) (models.Order, error) {
	if qty <= 0 || price <= 0 {
		return models.Order{}, fmt.Errorf("place limit %s: qty/price <= 0", symbol)
	}
	if c.paper {
		return c.paperOrder(symbol, side, "LIMIT", qty, price), nil
	}

	p := params{}.
		with("symbol", symbol).
		with("side", side).
		with("type", "LIMIT").
		with("timeInForce", tif).
		withFloat("quantity", qty).
		withFloat("price", price)

	body, err := c.signedCall(ctx, http.MethodPost, "/fapi/v1/order", p)
	if err != nil {
		return models.Order{}, fmt.Errorf("place limit %s %s: %w", symbol, side, err)
	}

	var r struct {
		OrderID       int64  `json:"orderId"`
		ClientOrderID string `json:"clientOrderId"`
		Status        string `json:"status"`
		Price         string `json:"price"`
		OrigQty       string `json:"origQty"`
		UpdateTime    int64  `json:"updateTime"`
	}
	if err := sonic.Unmarshal(body, &r); err != nil {
		return models.Order{}, &StaleDataError{What: "place order: " + err.Error()}
	}
	if r.OrderID == 0 {
		return models.Order{}, &StaleDataError{What: "place order: empty orderId"}
	}

	px, _ := strconv.ParseFloat(r.Price, 64)
	q, _ := strconv.ParseFloat(r.OrigQty, 64)
	return models.Order{
		ID:        r.OrderID,
		ClientID:  r.ClientOrderID,
		Symbol:    symbol,
		Side:      side,
		Type:      "LIMIT",
		Price:     px,
		Qty:       q,
		Status:    r.Status,
		CreatedAt: time.UnixMilli(r.UpdateTime),
	}, nil
}
