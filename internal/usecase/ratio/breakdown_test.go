package ratio

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/virtualcfo-backend/internal/domain"
)

func TestExpenseBreakdown_FirstQuarter(t *testing.T) {
	snap := baselineSnapshot(t)

	breakdown, err := ExpenseBreakdown(snap, q1)
	require.NoError(t, err)

	// Revenue 100000 makes every share equal to the raw amount / 1000
	assertExact(t, "60", breakdown[domain.CostOfGoodsSold])
	assertExact(t, "30", breakdown[domain.OperatingExpenses])
	assertExact(t, "2", breakdown[domain.InterestExpense])
	assertExact(t, "2", breakdown[domain.TaxExpense])
	assertExact(t, "6", breakdown[domain.NetIncome])
}

func TestExpenseBreakdown_ZeroRevenue(t *testing.T) {
	snap := snapshotWith(t, func(tables domain.Tables) {
		tables.Income[q1][domain.Revenue] = decimal.Zero
	})

	_, err := ExpenseBreakdown(snap, q1)
	assert.ErrorIs(t, err, domain.ErrDivision)
}

func TestTable_LiquidityAcrossPeriods(t *testing.T) {
	snap := baselineSnapshot(t)

	rows, err := Table(snap, domain.CategoryLiquidity)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, q1, rows[0].Period)
	assert.InDelta(t, 2.6667, rows[0].Ratios[domain.RatioCurrent].InexactFloat64(), 1e-4)
	assert.InDelta(t, 1.7778, rows[0].Ratios[domain.RatioQuick].InexactFloat64(), 1e-4)
	assert.InDelta(t, 1.1111, rows[0].Ratios[domain.RatioCash].InexactFloat64(), 1e-4)

	assert.Equal(t, q4, rows[3].Period)
	assertExact(t, "1.5", rows[3].Ratios[domain.RatioCash])
}

func TestTable_InvalidCategory(t *testing.T) {
	snap := baselineSnapshot(t)

	_, err := Table(snap, domain.RatioCategory("VALUATION"))
	assert.Error(t, err)
}
