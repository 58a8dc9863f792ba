package ratio

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/virtualcfo-backend/internal/domain"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/seeder"
)

var (
	q1 = seeder.BaselinePeriods[0]
	q4 = seeder.BaselinePeriods[3]
)

func baselineSnapshot(t *testing.T) *domain.Snapshot {
	t.Helper()
	snap, err := domain.NewSnapshot(seeder.BaselineTables())
	require.NoError(t, err)
	return snap
}

func snapshotWith(t *testing.T, mutate func(tables domain.Tables)) *domain.Snapshot {
	t.Helper()
	tables := seeder.BaselineTables()
	mutate(tables)
	snap, err := domain.NewSnapshot(tables)
	require.NoError(t, err)
	return snap
}

func assertExact(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, actual.Equal(decimal.RequireFromString(expected)),
		append([]interface{}{"expected %s, got %s", expected, actual.String()}, msgAndArgs...)...)
}

func TestAll_BaselineLatestQuarter(t *testing.T) {
	snap := baselineSnapshot(t)

	set, err := All(snap, q4)
	require.NoError(t, err)

	// Exact quotients
	assertExact(t, "13.75", set[domain.RatioNetMargin])
	assertExact(t, "6.6", set[domain.RatioReturnOnAssets])
	assertExact(t, "2.25", set[domain.RatioQuick])
	assertExact(t, "1.5", set[domain.RatioCash])
	assertExact(t, "17.5", set[domain.RatioInterestCoverage])
	assertExact(t, "0.48", set[domain.RatioAssetTurnover])
	assertExact(t, "130000", set[domain.RatioWorkingCapital])

	// Repeating quotients, full precision
	assert.InDelta(t, 44.444444444444, set[domain.RatioGrossMargin].InexactFloat64(), 1e-9)
	assert.InDelta(t, 19.444444444444, set[domain.RatioOperatingMargin].InexactFloat64(), 1e-9)
	assert.InDelta(t, 10.760869565217, set[domain.RatioReturnOnEquity].InexactFloat64(), 1e-9)
	assert.InDelta(t, 3.166666666666, set[domain.RatioCurrent].InexactFloat64(), 1e-9)
	assert.InDelta(t, 0.630434782608, set[domain.RatioDebtToEquity].InexactFloat64(), 1e-9)
	assert.InDelta(t, 0.386666666666, set[domain.RatioDebtToAssets].InexactFloat64(), 1e-9)
	assert.InDelta(t, 1.818181818181, set[domain.RatioInventoryTurnover].InexactFloat64(), 1e-9)

	assert.Len(t, set, len(definitions)+1)
}

func TestAll_NoRounding(t *testing.T) {
	snap := baselineSnapshot(t)

	current, err := Compute(snap, q4, domain.RatioCurrent)
	require.NoError(t, err)

	// The engine keeps full precision; two decimals is a display concern
	assert.True(t, current.Exponent() < -2, "expected more than two decimals, got %s", current)
}

func TestCategories_SplitTheRatioTable(t *testing.T) {
	snap := baselineSnapshot(t)

	tests := []struct {
		name     string
		fn       func(*domain.Snapshot, domain.Period) (domain.RatioSet, error)
		expected []domain.RatioName
	}{
		{
			name:     "Profitability",
			fn:       Profitability,
			expected: []domain.RatioName{domain.RatioGrossMargin, domain.RatioOperatingMargin, domain.RatioNetMargin, domain.RatioReturnOnAssets, domain.RatioReturnOnEquity},
		},
		{
			name:     "Liquidity",
			fn:       Liquidity,
			expected: []domain.RatioName{domain.RatioCurrent, domain.RatioQuick, domain.RatioCash, domain.RatioWorkingCapital},
		},
		{
			name:     "Leverage",
			fn:       Leverage,
			expected: []domain.RatioName{domain.RatioDebtToEquity, domain.RatioDebtToAssets, domain.RatioInterestCoverage},
		},
		{
			name:     "Efficiency",
			fn:       Efficiency,
			expected: []domain.RatioName{domain.RatioAssetTurnover, domain.RatioInventoryTurnover},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := tt.fn(snap, q1)
			require.NoError(t, err)

			names := make([]domain.RatioName, 0, len(set))
			for name := range set {
				names = append(names, name)
			}
			assert.ElementsMatch(t, tt.expected, names)
		})
	}
}

func TestProfitability_GrossMarginPlusCOGSShareIsHundred(t *testing.T) {
	snap := baselineSnapshot(t)

	for _, p := range snap.Periods() {
		set, err := Profitability(snap, p)
		require.NoError(t, err)

		breakdown, err := ExpenseBreakdown(snap, p)
		require.NoError(t, err)

		total := set[domain.RatioGrossMargin].Add(breakdown[domain.CostOfGoodsSold])
		assert.InDelta(t, 100.0, total.InexactFloat64(), 1e-9, "period %s", p)
	}
}

func TestCompute_DivisionByZero(t *testing.T) {
	snap := snapshotWith(t, func(tables domain.Tables) {
		tables.Income[q4][domain.Revenue] = decimal.Zero
	})

	set, err := Profitability(snap, q4)

	assert.ErrorIs(t, err, domain.ErrDivision)

	var divErr *domain.DivisionError
	require.True(t, errors.As(err, &divErr))
	assert.Equal(t, q4, divErr.Period)
	assert.Equal(t, string(domain.Revenue), divErr.Denominator)

	// Ratios that do not divide by revenue are still reported
	assert.Contains(t, set, domain.RatioReturnOnAssets)
	assert.Contains(t, set, domain.RatioReturnOnEquity)
	assert.NotContains(t, set, domain.RatioGrossMargin)
	assert.NotContains(t, set, domain.RatioNetMargin)
}

func TestCompute_InterestCoverageZeroInterest(t *testing.T) {
	snap := snapshotWith(t, func(tables domain.Tables) {
		tables.Income[q1][domain.InterestExpense] = decimal.Zero
	})

	_, err := Compute(snap, q1, domain.RatioInterestCoverage)
	assert.ErrorIs(t, err, domain.ErrDivision)

	// Other periods are unaffected
	v, err := Compute(snap, q4, domain.RatioInterestCoverage)
	require.NoError(t, err)
	assertExact(t, "17.5", v)
}

func TestCompute_MissingLineItemFailsPerRatio(t *testing.T) {
	snap := snapshotWith(t, func(tables domain.Tables) {
		delete(tables.Balance[q4], domain.Inventory)
	})

	set, err := All(snap, q4)

	assert.ErrorIs(t, err, domain.ErrLookup)
	assert.NotContains(t, set, domain.RatioQuick)
	assert.NotContains(t, set, domain.RatioInventoryTurnover)
	assert.Contains(t, set, domain.RatioCurrent)
	assert.Contains(t, set, domain.RatioNetMargin)

	_, err = Compute(snap, q4, domain.RatioQuick)
	var lookupErr *domain.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, domain.Inventory, lookupErr.Item)
	assert.Contains(t, err.Error(), string(domain.RatioQuick)+": ")
}

func TestCompute_EmptySnapshot(t *testing.T) {
	snap, err := domain.NewSnapshot(domain.Tables{})
	require.NoError(t, err)

	_, err = Compute(snap, q1, domain.RatioCurrent)
	assert.ErrorIs(t, err, domain.ErrLookup)

	set, err := All(snap, q1)
	assert.ErrorIs(t, err, domain.ErrLookup)
	assert.Empty(t, set)
}

func TestCompute_UnknownRatio(t *testing.T) {
	snap := baselineSnapshot(t)

	_, err := Compute(snap, q1, domain.RatioName("P/E"))
	assert.Error(t, err)
}

func TestNames_DisplayOrder(t *testing.T) {
	assert.Equal(t, []domain.RatioName{domain.RatioCurrent, domain.RatioQuick, domain.RatioCash, domain.RatioWorkingCapital}, Names(domain.CategoryLiquidity))
	assert.True(t, IsPercent(domain.RatioReturnOnEquity))
	assert.False(t, IsPercent(domain.RatioDebtToEquity))
}
