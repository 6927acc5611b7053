package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
)

func (c *Client) serverTime(ctx context.Context) (int64, error) {
	body, err := c.publicCall(ctx, http.MethodGet, "/fapi/v1/time", nil)
	if err != nil {
		return 0, fmt.Errorf("server time: %w", err)
	}

	var r struct {
		ServerTime int64 `json:"serverTime"`
	}
	if err := sonic.Unmarshal(body, &r); err != nil {
		return 0, &StaleDataError{What: "serverTime: " + err.Error()}
	}
	if r.ServerTime <= 0 {
		return 0, &StaleDataError{What: "serverTime <= 0"}
	}
	return r.ServerTime, nil
}
