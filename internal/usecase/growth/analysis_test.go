package growth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/virtualcfo-backend/internal/domain"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/seeder"
)

func TestAnalyze_Baseline(t *testing.T) {
	snap, err := domain.NewSnapshot(seeder.BaselineTables())
	require.NoError(t, err)

	analysis, err := Analyze(snap)
	require.NoError(t, err)

	assert.Equal(t, seeder.BaselinePeriods, analysis.Periods)
	require.Len(t, analysis.Metrics, len(AnalysisMetrics))

	revenue := analysis.Metrics[0]
	assert.Equal(t, domain.Revenue, revenue.Metric.Item)
	assert.True(t, revenue.Deltas[0].NoPrior)
	assert.InDelta(t, 21.6667, revenue.Mean, 1e-4)
	assert.InDelta(t, 2.8868, revenue.StdDev, 1e-4)

	assets := analysis.Metrics[2]
	assert.Equal(t, domain.TotalAssets, assets.Metric.Item)
	assert.InDelta(t, 3.125, assets.Deltas[1].Percent.InexactFloat64(), 1e-9)
	assert.InDelta(t, 7.142857, assets.Deltas[3].Percent.InexactFloat64(), 1e-6)

	equity := analysis.Metrics[3]
	assert.InDelta(t, 12.195122, equity.Deltas[3].Percent.InexactFloat64(), 1e-6)
}

func TestAnalyze_SinglePeriod(t *testing.T) {
	tables := seeder.BaselineTables()
	for _, p := range seeder.BaselinePeriods[1:] {
		delete(tables.Income, p)
		delete(tables.Balance, p)
		delete(tables.CashFlow, p)
	}
	snap, err := domain.NewSnapshot(tables)
	require.NoError(t, err)

	_, err = Analyze(snap)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestAnalyze_PartialFailure(t *testing.T) {
	tables := seeder.BaselineTables()
	delete(tables.Balance[seeder.BaselinePeriods[2]], domain.Equity)
	snap, err := domain.NewSnapshot(tables)
	require.NoError(t, err)

	analysis, err := Analyze(snap)

	assert.ErrorIs(t, err, domain.ErrLookup)
	require.NotNil(t, analysis)
	assert.Len(t, analysis.Metrics, 3)
}
