package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateToStep(t *testing.T) {
	assert.InDelta(t, 0.001, TruncateToStep(0.0014, 0.001), 1e-12)
	assert.InDelta(t, 0.123, TruncateToStep(0.1239, 0.001), 1e-12)
	assert.InDelta(t, 0.0, TruncateToStep(0.0004, 0.001), 1e-12)

	// уже кратное шагу значение не трогаем, даже с двоичным шумом
	assert.InDelta(t, 0.07, TruncateToStep(0.07, 0.01), 1e-12)
	assert.InDelta(t, 0.3, TruncateToStep(0.1+0.2, 0.1), 1e-12)
}

func TestTruncateToStepIdempotent(t *testing.T) {
	vals := []float64{0.0014, 1.23456, 100.999, 0.07, 42}
	steps := []float64{0.001, 0.01, 0.5, 1}
	for _, v := range vals {
		for _, step := range steps {
			once := TruncateToStep(v, step)
			twice := TruncateToStep(once, step)
			assert.InDelta(t, once, twice, 1e-12, "v=%v step=%v", v, step)
			assert.LessOrEqual(t, once, v+1e-12, "v=%v step=%v", v, step)
		}
	}
}

func TestTruncateToStepZeroStep(t *testing.T) {
	assert.Equal(t, 1.2345, TruncateToStep(1.2345, 0))
}

func TestRoundToTick(t *testing.T) {
	assert.InDelta(t, 99.84, RoundDownToTick(99.849, 0.01), 1e-12)
	assert.InDelta(t, 99.85, RoundUpToTick(99.841, 0.01), 1e-12)

	// кратная тику цена не двигается ни вверх, ни вниз
	assert.InDelta(t, 99.85, RoundDownToTick(99.85, 0.01), 1e-12)
	assert.InDelta(t, 99.85, RoundUpToTick(99.85, 0.01), 1e-12)
}
