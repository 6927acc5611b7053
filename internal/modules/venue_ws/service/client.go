package service

import (
	"sync"

	"github.com/gorilla/websocket"

	"exec_bot/internal/modules/config"
)

// Client держит последний mark price по символам поверх websocket-стрима.
// Это не маркет-дата движок: только last price для тиков, REST — фолбэк.
type Client struct {
	mu     sync.RWMutex
	prices map[string]float64

	wsURL  string
	dialer *websocket.Dialer
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		prices: make(map[string]float64),
		wsURL:  cfg.Venue.WSURL,
		dialer: &websocket.Dialer{},
	}
}

func (c *Client) setPrice(symbol string, price float64) {
	c.mu.Lock()
	c.prices[symbol] = price
	c.mu.Unlock()
}

// Price — 0 когда стрим ещё не дал цену; вызывающий идёт в REST.
func (c *Client) Price(symbol string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prices[symbol]
}
