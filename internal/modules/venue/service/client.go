package service

import (
	"net/http"
	"sync/atomic"
	"time"

	"exec_bot/internal/modules/config"
)

type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	apiSecret  string
	recvWindow int64
	clock      *Clock

	paper    bool
	paperSeq atomic.Int64
}

func NewClient(cfg *config.Config) *Client {
	c := &Client{
		http:       &http.Client{Timeout: 10 * time.Second},
		baseURL:    cfg.Venue.BaseURL,
		apiKey:     cfg.Venue.APIKey,
		apiSecret:  cfg.Venue.APISecret,
		recvWindow: cfg.Venue.RecvWindowMS,
		paper:      cfg.Paper,
	}
	c.clock = NewClock(cfg.ClockSyncInterval, c.serverTime)
	return c
}

func (c *Client) Paper() bool { return c.paper }

// Clock отдаём наружу для health-отладки, мутировать его может только sync.
func (c *Client) Clock() *Clock { return c.clock }
