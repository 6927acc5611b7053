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

type orderRow struct {
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	Symbol        string `json:"symbol"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	Price         string `json:"price"`
	StopPrice     string `json:"stopPrice"`
	OrigQty       string `json:"origQty"`
	ExecutedQty   string `json:"executedQty"`
	Status        string `json:"status"`
	Time          int64  `json:"time"`
	UpdateTime    int64  `json:"updateTime"`
}

func (r orderRow) toModel() models.Order {
	price, _ := strconv.ParseFloat(r.Price, 64)
	trigger, _ := strconv.ParseFloat(r.StopPrice, 64)
	qty, _ := strconv.ParseFloat(r.OrigQty, 64)
	executed, _ := strconv.ParseFloat(r.ExecutedQty, 64)
	created := r.Time
	if created == 0 {
		created = r.UpdateTime
	}
	return models.Order{
		ID:           r.OrderID,
		ClientID:     r.ClientOrderID,
		Symbol:       r.Symbol,
		Side:         r.Side,
		Type:         r.Type,
		Price:        price,
		TriggerPrice: trigger,
		Qty:          qty,
		ExecutedQty:  executed,
		Status:       r.Status,
		CreatedAt:    time.UnixMilli(created),
	}
}

func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]models.Order, error) {
	body, err := c.signedCall(ctx, http.MethodGet, "/fapi/v1/openOrders", params{}.with("symbol", symbol))
	if err != nil {
		return nil, fmt.Errorf("open orders %s: %w", symbol, err)
	}
	return parseOrders(body)
}

// AllOpenOrders — висящие ордера всего аккаунта одним запросом. Тяжёлый по
// весу эндпоинт, только для медленного цикла реконсиляции.
func (c *Client) AllOpenOrders(ctx context.Context) ([]models.Order, error) {
	body, err := c.signedCall(ctx, http.MethodGet, "/fapi/v1/openOrders", params{})
	if err != nil {
		return nil, fmt.Errorf("all open orders: %w", err)
	}
	return parseOrders(body)
}

func parseOrders(body []byte) ([]models.Order, error) {
	var rows []orderRow
	if err := sonic.Unmarshal(body, &rows); err != nil {
		return nil, &StaleDataError{What: "openOrders: " + err.Error()}
	}

	res := make([]models.Order, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.toModel())
	}
	return res, nil
}
