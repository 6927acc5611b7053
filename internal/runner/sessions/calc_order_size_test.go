package sessions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exec_bot/internal/models"
)

func TestApplyRulesTruncatesDown(t *testing.T) {
	rules := models.InstrumentRules{QtyStep: 0.001, MinQty: 0.001, MinNotional: 5}

	qty, err := applyRules(0.1239, 100, rules)
	require.NoError(t, err)
	assert.InDelta(t, 0.123, qty, 1e-12)
}

func TestApplyRulesMinNotionalCheckedAfterTruncation(t *testing.T) {
	// 0.0014 усечётся до 0.001; 0.001*100 = 0.1 < minNotional
	rules := models.InstrumentRules{QtyStep: 0.001, MinQty: 0.001, MinNotional: 5}

	_, err := applyRules(0.0014, 100, rules)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notional")
}

func TestApplyRulesMinQty(t *testing.T) {
	rules := models.InstrumentRules{QtyStep: 0.001, MinQty: 0.01, MinNotional: 0}

	_, err := applyRules(0.005, 100, rules)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minQty")
}

func TestApplyRulesPassesValidQty(t *testing.T) {
	rules := models.InstrumentRules{QtyStep: 0.001, MinQty: 0.001, MinNotional: 5}

	qty, err := applyRules(0.1, 100, rules)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, qty, 1e-12)
}
