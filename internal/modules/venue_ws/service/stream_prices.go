package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"exec_bot/pkg/logger"
)

// StreamPrices подписывается на markPrice по всем символам одним комбо-стримом
// и крутит реконнект с нарастающей паузой. Канал закрывается по ctx.
func (c *Client) StreamPrices(ctx context.Context, symbols []string) {
	streams := make([]string, 0, len(symbols))
	for _, s := range symbols {
		streams = append(streams, strings.ToLower(s)+"@markPrice@1s")
	}
	url := c.wsURL + "/stream?streams=" + strings.Join(streams, "/")

	go func() {
		retry := 0
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			conn, _, err := c.dialer.DialContext(ctx, url, nil)
			if err != nil {
				retry++
				logger.Error("ws dial (retry %d): %v", retry, err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Duration(300*min(retry, 10)) * time.Millisecond):
				}
				continue
			}
			retry = 0
			logger.Info("ws connected: %d streams", len(streams))

			// ReadMessage блокирует: по отмене ctx соединение закрываем
			// снаружи, иначе горутина висит до закрытия со стороны биржи
			done := make(chan struct{})
			go func() {
				select {
				case <-ctx.Done():
					_ = conn.Close()
				case <-done:
				}
			}()
			c.readLoop(ctx, conn)
			close(done)
			_ = conn.Close()

			select {
			case <-ctx.Done():
				return
			case <-time.After(1 * time.Second):
			}
		}
	}()
}

type wsConn interface {
	ReadMessage() (int, []byte, error)
}

func (c *Client) readLoop(ctx context.Context, conn wsConn) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			logger.Error("ws read: %v", err)
			return
		}

		var frame struct {
			Data struct {
				Event  string `json:"e"`
				Symbol string `json:"s"`
				Mark   string `json:"p"`
			} `json:"data"`
		}
		if err := sonic.Unmarshal(msg, &frame); err != nil {
			continue
		}
		if frame.Data.Event != "markPriceUpdate" || frame.Data.Symbol == "" {
			continue
		}
		if px, err := strconv.ParseFloat(frame.Data.Mark, 64); err == nil && px > 0 {
			c.setPrice(frame.Data.Symbol, px)
		}
	}
}
