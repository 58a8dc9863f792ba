package summary

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/virtualcfo-backend/internal/domain"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/seeder"
)

func snapshotWith(t *testing.T, mutate func(tables domain.Tables)) *domain.Snapshot {
	t.Helper()
	tables := seeder.BaselineTables()
	if mutate != nil {
		mutate(tables)
	}
	snap, err := domain.NewSnapshot(tables)
	require.NoError(t, err)
	return snap
}

func TestSummarize_Baseline(t *testing.T) {
	snap := snapshotWith(t, nil)

	m, err := Summarize(snap)
	require.NoError(t, err)

	assert.Equal(t, domain.Period{Year: 2024, Quarter: 4}, m.LatestPeriod)
	assert.Equal(t, domain.Period{Year: 2024, Quarter: 3}, m.PreviousPeriod)

	// (180000 - 150000) / 150000 x 100
	assert.True(t, m.RevenueGrowth.Equal(decimal.NewFromInt(20)), "revenue growth %s", m.RevenueGrowth)
	// 24750 / 180000 x 100
	assert.True(t, m.NetMargin.Equal(decimal.RequireFromString("13.75")), "net margin %s", m.NetMargin)
	// 190000 / 60000
	assert.InDelta(t, 3.1666666666, m.CurrentRatio.InexactFloat64(), 1e-9)

	assert.InDelta(t, 43.4782608695, m.ProfitGrowth.InexactFloat64(), 1e-9)
	assert.InDelta(t, 44.4444444444, m.GrossMargin.InexactFloat64(), 1e-9)
	assert.InDelta(t, 0.6304347826, m.DebtToEquity.InexactFloat64(), 1e-9)
}

func TestSummarize_Idempotent(t *testing.T) {
	snap := snapshotWith(t, nil)

	first, err := Summarize(snap)
	require.NoError(t, err)
	second, err := Summarize(snap)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.Equal(t, first.CurrentRatio.String(), second.CurrentRatio.String())
}

func TestSummarize_SinglePeriod(t *testing.T) {
	snap := snapshotWith(t, func(tables domain.Tables) {
		for _, p := range seeder.BaselinePeriods[:3] {
			delete(tables.Income, p)
			delete(tables.Balance, p)
			delete(tables.CashFlow, p)
		}
	})

	_, err := Summarize(snap)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestSummarize_NoPeriods(t *testing.T) {
	snap, err := domain.NewSnapshot(domain.Tables{})
	require.NoError(t, err)

	_, err = Summarize(snap)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestSummarize_ZeroPriorRevenue(t *testing.T) {
	snap := snapshotWith(t, func(tables domain.Tables) {
		tables.Income[seeder.BaselinePeriods[2]][domain.Revenue] = decimal.Zero
	})

	m, err := Summarize(snap)

	assert.ErrorIs(t, err, domain.ErrDivision)
	assert.Equal(t, domain.MetricsSummary{}, m)
}

func TestSummarize_MissingEquity(t *testing.T) {
	snap := snapshotWith(t, func(tables domain.Tables) {
		delete(tables.Balance[seeder.BaselinePeriods[3]], domain.Equity)
	})

	_, err := Summarize(snap)
	assert.ErrorIs(t, err, domain.ErrLookup)
	assert.Contains(t, err.Error(), string(domain.RatioDebtToEquity))
}

func TestSummarize_UsesTwoLatestPeriodsOnly(t *testing.T) {
	// A zero in the first quarter does not matter to the headline summary
	snap := snapshotWith(t, func(tables domain.Tables) {
		tables.Income[seeder.BaselinePeriods[0]][domain.Revenue] = decimal.Zero
	})

	m, err := Summarize(snap)
	require.NoError(t, err)
	assert.True(t, m.RevenueGrowth.Equal(decimal.NewFromInt(20)))
}
