package service

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

const (
	readAttempts = 3
	retryStep    = 500 * time.Millisecond
)

// signedCall: timestamp от скорректированных часов, канонизация, HMAC-подпись
// поверх канонической строки, подпись в хвост. Никаких ретраев: отказ биржи на
// подписанном вызове всплывает сразу.
func (c *Client) signedCall(ctx context.Context, method, path string, p params) ([]byte, error) {
	p = p.withInt("timestamp", c.clock.Timestamp(ctx))
	p = p.withInt("recvWindow", c.recvWindow)

	query := p.canonical()
	query += "&signature=" + sign(c.apiSecret, query)

	return c.do(ctx, method, path, query, true)
}

func (c *Client) publicCall(ctx context.Context, method, path string, p params) ([]byte, error) {
	return c.do(ctx, method, path, p.canonical(), false)
}

// publicGetRetry — только для идемпотентных чтений: до 3 попыток, линейный
// бэкофф attempt*500ms, ретраим исключительно транспортные ошибки.
func (c *Client) publicGetRetry(ctx context.Context, path string, p params) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= readAttempts; attempt++ {
		body, err := c.publicCall(ctx, http.MethodGet, path, p)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !IsTransport(err) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * retryStep):
		}
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, method, path, query string, signed bool) ([]byte, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "venue.call")
	ext.HTTPMethod.Set(span, method)
	ext.HTTPUrl.Set(span, path)
	defer span.Finish()

	url := c.baseURL + path
	if query != "" {
		url += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if signed {
		req.Header.Set("X-MBX-APIKEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		ext.Error.Set(span, true)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ext.Error.Set(span, true)
		return nil, &TransportError{Err: err}
	}

	ext.HTTPStatusCode.Set(span, uint16(resp.StatusCode))
	if resp.StatusCode/100 != 2 {
		ve := &VenueError{Status: resp.StatusCode, Body: string(body)}
		var ew struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		}
		if sonic.Unmarshal(body, &ew) == nil {
			ve.Code = ew.Code
			ve.Msg = ew.Msg
		}
		return nil, ve
	}

	return body, nil
}
