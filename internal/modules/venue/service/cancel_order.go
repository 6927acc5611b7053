package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const codeUnknownOrder = -2011

// CancelOrder. "Unknown order" не считаем ошибкой: ордер мог уже
// исполниться или быть снятым — биржа авторитетна, наша цель сходимость.
func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	if c.paper {
		return nil
	}

	p := params{}.
		with("symbol", symbol).
		withInt("orderId", orderID)

	_, err := c.signedCall(ctx, http.MethodDelete, "/fapi/v1/order", p)
	if err != nil {
		var ve *VenueError
		if errors.As(err, &ve) && ve.Code == codeUnknownOrder {
			return nil
		}
		return fmt.Errorf("cancel order %s #%d: %w", symbol, orderID, err)
	}
	return nil
}

// CancelAllOpen — балковая зачистка по символу.
func (c *Client) CancelAllOpen(ctx context.Context, symbol string) error {
	if c.paper {
		return nil
	}

	_, err := c.signedCall(ctx, http.MethodDelete, "/fapi/v1/allOpenOrders", params{}.with("symbol", symbol))
	if err != nil {
		return fmt.Errorf("cancel all %s: %w", symbol, err)
	}
	return nil
}
