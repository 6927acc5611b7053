package sessions

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exec_bot/internal/models"
)

func TestChasePriceShortBounds(t *testing.T) {
	const (
		firstPx  = 100.0
		minStep  = 0.0005
		maxChase = 0.005
		maxN     = 5
	)

	// после трёх перестановок цена строго между минимальным суммарным шагом
	// и потолком погони от первой котировки
	px := chasePrice(models.SideShort, firstPx, 3, maxN, minStep, maxChase)
	assert.Greater(t, px, firstPx*(1-maxChase))
	assert.Less(t, px, firstPx*(1-minStep))

	// каждая перестановка агрессивнее предыдущей
	prev := firstPx
	for n := 1; n <= maxN; n++ {
		cur := chasePrice(models.SideShort, firstPx, n, maxN, minStep, maxChase)
		assert.Less(t, cur, prev, "n=%d", n)
		prev = cur
	}

	// потолок не пробивается даже за пределами лимита перестановок
	for n := maxN; n <= maxN*3; n++ {
		cur := chasePrice(models.SideShort, firstPx, n, maxN, minStep, maxChase)
		assert.GreaterOrEqual(t, cur, firstPx*(1-maxChase)-1e-12, "n=%d", n)
	}
}

func TestChasePriceLongMirrors(t *testing.T) {
	const (
		firstPx  = 100.0
		minStep  = 0.0005
		maxChase = 0.005
		maxN     = 5
	)

	for n := 1; n <= maxN*2; n++ {
		long := chasePrice(models.SideLong, firstPx, n, maxN, minStep, maxChase)
		short := chasePrice(models.SideShort, firstPx, n, maxN, minStep, maxChase)
		assert.InDelta(t, long-firstPx, firstPx-short, 1e-12, "n=%d", n)
		assert.LessOrEqual(t, long, firstPx*(1+maxChase)+1e-12)
	}
}

func TestChasePriceMinStepDominatesEarly(t *testing.T) {
	// при большом maxN линейная доля мизерная — минимальный шаг обязан тянуть
	px := chasePrice(models.SideShort, 100, 1, 100, 0.0005, 0.005)
	assert.InDelta(t, 100*(1-0.0005), px, 1e-9)
}

func TestEntryRepricedAfterTimeout(t *testing.T) {
	env := newTestEnv()
	env.tick(longSignal(100))
	require.NotNil(t, env.s.entry)
	firstID := env.s.entry.OrderID
	firstPx := env.s.entry.FirstPx

	// рано — ордер не трогаем
	env.advance(10 * time.Second)
	env.tick(noSignal())
	assert.Equal(t, firstID, env.s.entry.OrderID)
	assert.Empty(t, env.venue.canceled)

	// протух — cancel + новая котировка агрессивнее первой
	env.advance(11 * time.Second)
	env.tick(noSignal())
	require.NotNil(t, env.s.entry)
	assert.Equal(t, 1, env.s.entry.RepriceN)
	assert.NotEqual(t, firstID, env.s.entry.OrderID)
	assert.Equal(t, []int64{firstID}, env.venue.canceled)
	assert.Greater(t, env.s.entry.LastPx, firstPx)
	// FirstPx не переписывается: от неё меряется потолок погони
	assert.Equal(t, firstPx, env.s.entry.FirstPx)
}

func TestEntryChaseNeverExceedsCap(t *testing.T) {
	env := newTestEnv()
	env.tick(longSignal(100))
	require.NotNil(t, env.s.entry)
	firstPx := env.s.entry.FirstPx
	ceiling := firstPx * (1 + env.s.Cfg.EntryMaxChasePct)

	for env.s.entry != nil {
		env.advance(21 * time.Second)
		env.tick(noSignal())
		if env.s.entry != nil {
			assert.LessOrEqual(t, env.s.entry.LastPx, ceiling+1e-9)
		}
	}
}

func TestEntryAbandonedAfterMaxReprices(t *testing.T) {
	env := newTestEnv()
	env.tick(longSignal(100))
	require.NotNil(t, env.s.entry)

	// рынок так и не дал исполниться: гоним все перестановки до отбоя
	for i := 0; i < env.s.Cfg.EntryMaxReprices+1; i++ {
		env.advance(21 * time.Second)
		env.tick(noSignal())
	}

	assert.Nil(t, env.s.entry)
	assert.Nil(t, env.s.trail)
	// последний ордер снят, в стакане ничего не осталось
	assert.Empty(t, env.venue.orders)
}

func TestEntryRepriceRecoversFromPlaceFailure(t *testing.T) {
	env := newTestEnv()
	env.tick(longSignal(100))
	require.NotNil(t, env.s.entry)
	firstID := env.s.entry.OrderID

	// cancel прошёл, resubmit упал: интент жив, ордера нет
	env.venue.placeErr = errors.New("place rejected")
	env.advance(21 * time.Second)
	env.tick(noSignal())
	require.NotNil(t, env.s.entry)
	assert.Zero(t, env.s.entry.OrderID)
	assert.Equal(t, []int64{firstID}, env.venue.canceled)

	// следующий тик доставляет ордер без лишнего cancel
	env.venue.placeErr = nil
	env.advance(time.Second)
	env.tick(noSignal())
	require.NotNil(t, env.s.entry)
	assert.NotZero(t, env.s.entry.OrderID)
	assert.Equal(t, []int64{firstID}, env.venue.canceled)
}
