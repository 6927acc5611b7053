package sessions

import (
	"context"
	"fmt"
	"time"

	"exec_bot/internal/journal"
	"exec_bot/internal/models"
	"exec_bot/internal/modules/config"
	venue "exec_bot/internal/modules/venue/service"
)

func rateLimitErr() error { return &venue.VenueError{Status: 429, Msg: "Too many requests"} }

// fakeVenue — биржа в памяти: ордера висят в orders, позиция и ошибки
// задаются тестом напрямую.
type fakeVenue struct {
	pos       models.Position
	posErr    error
	orders    []models.Order
	ordersErr error
	lastPx    float64
	balance   float64
	bid, ask  float64

	placeErr       error
	placed         []models.Order
	iocPlaced      []models.Order
	canceled       []int64
	cancelAllCalls int
	nextID         int64
}

func (f *fakeVenue) PositionFor(ctx context.Context, symbol string) (models.Position, error) {
	return f.pos, f.posErr
}

func (f *fakeVenue) OpenOrders(ctx context.Context, symbol string) ([]models.Order, error) {
	return f.orders, f.ordersErr
}

func (f *fakeVenue) PlaceLimit(ctx context.Context, symbol, side string, qty, price float64) (models.Order, error) {
	if f.placeErr != nil {
		return models.Order{}, f.placeErr
	}
	f.nextID++
	ord := models.Order{
		ID: f.nextID, Symbol: symbol, Side: side, Type: "LIMIT",
		Qty: qty, Price: price, Status: "NEW",
	}
	f.placed = append(f.placed, ord)
	f.orders = append(f.orders, ord)
	return ord, nil
}

func (f *fakeVenue) PlaceLimitIOC(ctx context.Context, symbol, side string, qty, price float64) (models.Order, error) {
	if f.placeErr != nil {
		return models.Order{}, f.placeErr
	}
	f.nextID++
	ord := models.Order{
		ID: f.nextID, Symbol: symbol, Side: side, Type: "LIMIT",
		Qty: qty, Price: price, Status: "FILLED",
	}
	f.iocPlaced = append(f.iocPlaced, ord)
	return ord, nil
}

func (f *fakeVenue) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	f.canceled = append(f.canceled, orderID)
	kept := f.orders[:0]
	for _, o := range f.orders {
		if o.ID != orderID {
			kept = append(kept, o)
		}
	}
	f.orders = kept
	return nil
}

func (f *fakeVenue) CancelAllOpen(ctx context.Context, symbol string) error {
	f.cancelAllCalls++
	f.orders = nil
	return nil
}

func (f *fakeVenue) LastPrice(ctx context.Context, symbol string) (float64, error) {
	return f.lastPx, nil
}

func (f *fakeVenue) BookTicker(ctx context.Context, symbol string) (float64, float64, error) {
	if f.bid <= 0 || f.ask <= 0 {
		return 0, 0, fmt.Errorf("empty book")
	}
	return f.bid, f.ask, nil
}

func (f *fakeVenue) USDTBalance(ctx context.Context) (float64, error) {
	return f.balance, nil
}

type fakeRules struct {
	rules models.InstrumentRules
	err   error
}

func (f *fakeRules) Rules(ctx context.Context, symbol string) (models.InstrumentRules, error) {
	return f.rules, f.err
}

type fakeNotifier struct {
	msgs []string
}

func (f *fakeNotifier) Send(msg string) { f.msgs = append(f.msgs, msg) }
func (f *fakeNotifier) Sendf(format string, args ...any) {
	f.Send(fmt.Sprintf(format, args...))
}

type fakePrices struct {
	px float64
}

func (f *fakePrices) Price(symbol string) float64 { return f.px }

func testConfig() *config.Config {
	return &config.Config{
		TotalCapital: 10000,
		AllocPct:     5,
		RiskPct:      1,

		MinActionGap:     0,
		RateLimitBackoff: 5 * time.Minute,
		NotifyCooldown:   15 * time.Minute,

		EntryMakerOffsetPct:    0.002,
		EntryMinMakerOffsetPct: 0.0005,
		EntryMaxChasePct:       0.005,
		EntryRepriceAfter:      20 * time.Second,
		EntryMaxReprices:       5,

		TrailInitBufferPct: 0.004,
		TrailPct:           0.006,
		SoftStopPct:        0.015,
		EMAFast:            9,
		EMASlow:            21,
		EMATolerancePct:    0.001,
		RSIPeriod:          14,
		ExitMakerOffsetPct: 0.0005,
		ExitRepriceAfter:   30 * time.Second,
		ExitMaxReprices:    8,
	}
}

type testEnv struct {
	s        *InstrumentSession
	venue    *fakeVenue
	notifier *fakeNotifier
	prices   *fakePrices
	clock    time.Time
}

func newTestEnv() *testEnv {
	env := &testEnv{
		venue: &fakeVenue{
			lastPx:  100,
			balance: 10000,
		},
		notifier: &fakeNotifier{},
		prices:   &fakePrices{px: 100},
		clock:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	env.s = NewInstrumentSession(
		"BTCUSDT",
		testConfig(),
		env.venue,
		&fakeRules{rules: models.InstrumentRules{
			Symbol: "BTCUSDT", PriceStep: 0.01, QtyStep: 0.001, MinQty: 0.001, MinNotional: 5,
		}},
		env.notifier,
		(*journal.Journal)(nil),
		NewThrottle(),
		env.prices,
	)
	env.s.now = func() time.Time { return env.clock }
	return env
}

func (e *testEnv) advance(d time.Duration) { e.clock = e.clock.Add(d) }

func (e *testEnv) tick(sig models.Signal) {
	e.s.Tick(context.Background(), sig)
}

func longSignal(px float64) models.Signal {
	return models.Signal{Symbol: "BTCUSDT", Side: models.SideLong, Price: px, Reason: "test"}
}

func shortSignal(px float64) models.Signal {
	return models.Signal{Symbol: "BTCUSDT", Side: models.SideShort, Price: px, Reason: "test"}
}

func noSignal() models.Signal { return models.Signal{Symbol: "BTCUSDT", Side: models.SideNone} }

func longPosition(qty, entry, mark float64) models.Position {
	return models.Position{Symbol: "BTCUSDT", Qty: qty, Entry: entry, MarkPx: mark}
}

func shortPosition(qty, entry, mark float64) models.Position {
	return models.Position{Symbol: "BTCUSDT", Qty: -qty, Entry: entry, MarkPx: mark}
}
