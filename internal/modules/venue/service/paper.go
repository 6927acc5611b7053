package service

import (
	"fmt"
	"time"

	"exec_bot/internal/models"
)

// paperOrder — симулированный ack в бумажном режиме. Идентификаторы
// отрицательные, чтобы случайно не пересечься с настоящими.
func (c *Client) paperOrder(symbol, side, typ string, qty, price float64) models.Order {
	id := -c.paperSeq.Add(1)
	return models.Order{
		ID:        id,
		ClientID:  fmt.Sprintf("paper-%d", -id),
		Symbol:    symbol,
		Side:      side,
		Type:      typ,
		Price:     price,
		Qty:       qty,
		Status:    models.OrderStatusNew,
		CreatedAt: time.Now(),
	}
}
