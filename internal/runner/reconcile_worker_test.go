package runner

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exec_bot/internal/journal"
	"exec_bot/internal/models"
	"exec_bot/internal/modules/config"
	venue "exec_bot/internal/modules/venue/service"
	"exec_bot/internal/runner/sessions"
)

type stubRules struct{}

func (stubRules) Rules(ctx context.Context, symbol string) (models.InstrumentRules, error) {
	return models.InstrumentRules{
		Symbol: symbol, PriceStep: 0.01, QtyStep: 0.001, MinQty: 0.001, MinNotional: 5,
	}, nil
}

type memoNotifier struct{ msgs []string }

func (n *memoNotifier) Send(msg string) { n.msgs = append(n.msgs, msg) }
func (n *memoNotifier) Sendf(format string, args ...any) {
	n.Send(fmt.Sprintf(format, args...))
}

type stubPrices struct{ px float64 }

func (p stubPrices) Price(string) float64 { return p.px }

// Сверка ходит за позициями и за всеми ордерами аккаунта; найденная позиция
// доезжает до воркера через attach и принимается на ближайшем тике.
func TestReconcileFetchesPositionsAndOpenOrders(t *testing.T) {
	ordersCalls := 0
	ordersSymbolQuery := "unset"
	mux := http.NewServeMux()
	mux.HandleFunc("/fapi/v1/time", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"serverTime": 1700000000000}`))
	})
	mux.HandleFunc("/fapi/v2/positionRisk", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"symbol":"BTCUSDT","positionAmt":"0.5","entryPrice":"30000","markPrice":"30100","updateTime":1700000000000}]`))
	})
	mux.HandleFunc("/fapi/v1/openOrders", func(w http.ResponseWriter, r *http.Request) {
		ordersCalls++
		ordersSymbolQuery = r.URL.Query().Get("symbol")
		// ордер по символу, за которым никто не следит — сверка его переживает
		_, _ = w.Write([]byte(`[{"orderId":9,"symbol":"DOGEUSDT","side":"BUY","type":"LIMIT","price":"0.1","origQty":"100","status":"NEW","time":1700000000000}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		RateLimitBackoff:  5 * time.Minute,
		ClockSyncInterval: time.Hour,
		NotifyCooldown:    15 * time.Minute,

		TrailInitBufferPct: 0.004,
		TrailPct:           0.006,
		SoftStopPct:        0.015,
		EMAFast:            9,
		EMASlow:            21,
		EMATolerancePct:    0.001,
		RSIPeriod:          14,
	}
	cfg.Venue.BaseURL = srv.URL
	cfg.Venue.APIKey = "test-key"
	cfg.Venue.APISecret = "test-secret"
	cfg.Venue.RecvWindowMS = 5000

	client := venue.NewClient(cfg)
	throttle := sessions.NewThrottle()
	notifier := &memoNotifier{}
	s := sessions.NewInstrumentSession(
		"BTCUSDT", cfg, client, stubRules{}, notifier, (*journal.Journal)(nil), throttle, stubPrices{px: 30100},
	)

	m := &Manager{
		cfg:      cfg,
		venue:    client,
		notifier: notifier,
		throttle: throttle,
		sessions: map[string]*sessions.InstrumentSession{"BTCUSDT": s},
	}

	m.reconcileOnce(context.Background())

	// сверка ордеров идёт одним запросом по всему аккаунту, без symbol
	assert.Equal(t, 1, ordersCalls)
	assert.Empty(t, ordersSymbolQuery)

	// подкинутая позиция принимается воркером на ближайшем тике
	s.Tick(context.Background(), models.Signal{Symbol: "BTCUSDT", Side: models.SideNone})
	require.NotEmpty(t, notifier.msgs)
	assert.Contains(t, notifier.msgs[0], "Подхватили")
}
