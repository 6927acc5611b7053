package sessions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exec_bot/internal/models"
)

func TestIdleStaysIdleWithoutSignal(t *testing.T) {
	env := newTestEnv()
	env.tick(noSignal())

	assert.Nil(t, env.s.entry)
	assert.Nil(t, env.s.trail)
	assert.Empty(t, env.venue.placed)
}

func TestIdlePlacesMakerEntryOnLongSignal(t *testing.T) {
	env := newTestEnv()
	env.tick(longSignal(100))

	require.NotNil(t, env.s.entry)
	assert.Nil(t, env.s.trail)
	require.Len(t, env.venue.placed, 1)

	ord := env.venue.placed[0]
	assert.Equal(t, models.OrderSideBuy, ord.Side)
	// котировка ниже рынка на maker-отступ, кратно тику
	assert.InDelta(t, 99.8, ord.Price, 1e-9)
	// capital 10000 * 5% / 100, усечено к шагу 0.001
	assert.InDelta(t, 5.0, ord.Qty, 1e-9)

	assert.Equal(t, models.SideLong, env.s.entry.Side)
	assert.Equal(t, ord.ID, env.s.entry.OrderID)
	assert.Equal(t, ord.Price, env.s.entry.FirstPx)
	assert.Zero(t, env.s.entry.RepriceN)
}

func TestIdlePlacesMakerEntryOnShortSignal(t *testing.T) {
	env := newTestEnv()
	env.tick(shortSignal(100))

	require.NotNil(t, env.s.entry)
	require.Len(t, env.venue.placed, 1)
	ord := env.venue.placed[0]
	assert.Equal(t, models.OrderSideSell, ord.Side)
	// для шорта котировка выше рынка
	assert.InDelta(t, 100.2, ord.Price, 1e-9)
}

func TestIdleRejectsUndersizedEntry(t *testing.T) {
	env := newTestEnv()
	// аллокация даёт qty ниже minNotional
	env.s.Cfg.TotalCapital = 50 // 50*5% = 2.5 USDT notional < 5

	env.tick(longSignal(100))

	assert.Nil(t, env.s.entry)
	assert.Empty(t, env.venue.placed)
	// причина отказа ушла в нотификацию
	require.NotEmpty(t, env.notifier.msgs)
	assert.Contains(t, env.notifier.msgs[0], "пропущен")
}

func TestIdleCancelsStrayOrderInsteadOfEntering(t *testing.T) {
	env := newTestEnv()
	// ордер из прошлой жизни: рестарт между постановкой и исполнением
	env.venue.orders = []models.Order{{
		ID: 777, Symbol: "BTCUSDT", Side: models.OrderSideBuy, Type: "LIMIT",
		Price: 99.8, Qty: 5, Status: models.OrderStatusNew,
	}}

	env.tick(longSignal(100))

	// рядом с висящим второй вход не ставим, висящий снимаем
	assert.Empty(t, env.venue.placed)
	assert.Nil(t, env.s.entry)
	assert.Contains(t, env.venue.canceled, int64(777))

	// стакан чист — следующий сигнал входит как обычно
	env.advance(time.Second)
	env.tick(longSignal(100))
	require.NotNil(t, env.s.entry)
	require.Len(t, env.venue.placed, 1)
}

func TestEntryQuoteClampedToBook(t *testing.T) {
	env := newTestEnv()
	// книга уехала ниже last price: котировка 99.8 пересекла бы лучший бид
	env.venue.bid, env.venue.ask = 99.5, 99.52

	env.tick(longSignal(100))

	require.Len(t, env.venue.placed, 1)
	assert.InDelta(t, 99.5, env.venue.placed[0].Price, 1e-9)
}

func TestEntryQuoteClampedToBookShort(t *testing.T) {
	env := newTestEnv()
	env.venue.bid, env.venue.ask = 100.3, 100.5

	env.tick(shortSignal(100))

	require.Len(t, env.venue.placed, 1)
	// шорт прижимается к лучшему аску
	assert.InDelta(t, 100.5, env.venue.placed[0].Price, 1e-9)
}

func TestIdleAdoptsExistingPosition(t *testing.T) {
	env := newTestEnv()
	env.venue.pos = longPosition(0.5, 98, 100)

	env.tick(noSignal())

	assert.Nil(t, env.s.entry)
	require.NotNil(t, env.s.trail)
	assert.Equal(t, models.SideLong, env.s.trail.Side)
	assert.InDelta(t, 0.5, env.s.trail.Size, 1e-9)
	assert.InDelta(t, 98, env.s.trail.Entry, 1e-9)
	// трейл стартует под ценой обнаружения
	assert.Less(t, env.s.trail.Trail, 100.0)
	assert.Empty(t, env.venue.placed)
}

func TestEntryBecomesPositionWhenFilled(t *testing.T) {
	env := newTestEnv()
	env.tick(longSignal(100))
	require.NotNil(t, env.s.entry)

	// биржа показала позицию — интент умирает, трейл рождается
	env.venue.pos = longPosition(5.0, 99.8, 100)
	env.advance(time.Second)
	env.tick(noSignal())

	assert.Nil(t, env.s.entry)
	require.NotNil(t, env.s.trail)
	assert.Equal(t, models.SideLong, env.s.trail.Side)
	assert.InDelta(t, 100*(1-0.004), env.s.trail.Trail, 1e-9)
}

func TestEntryOrderGoneReturnsToIdle(t *testing.T) {
	env := newTestEnv()
	env.tick(longSignal(100))
	require.NotNil(t, env.s.entry)

	// ордер сняли руками, позиции нет
	env.venue.orders = nil
	env.tick(noSignal())

	assert.Nil(t, env.s.entry)
	assert.Nil(t, env.s.trail)
}

func TestCalcOrderSizeRiskCap(t *testing.T) {
	env := newTestEnv()
	// стоп в 50 от цены: риск 1% от 10000 = 100 USDT => qty = 100/50 = 2,
	// аллокация 5% дала бы 5 — риск-кап строже
	sig := longSignal(100)
	sig.StopLoss = 50
	env.tick(sig)

	require.Len(t, env.venue.placed, 1)
	assert.InDelta(t, 2.0, env.venue.placed[0].Qty, 1e-9)
}
