package growth

import (
	"errors"
	"fmt"

	"github.com/simaogato/virtualcfo-backend/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// Metric names a line item tracked by the growth analysis
type Metric struct {
	Statement domain.StatementKind
	Item      domain.LineItem
}

// AnalysisMetrics are the series shown by the growth analysis view
var AnalysisMetrics = []Metric{
	{Statement: domain.StatementIncome, Item: domain.Revenue},
	{Statement: domain.StatementIncome, Item: domain.NetIncome},
	{Statement: domain.StatementBalance, Item: domain.TotalAssets},
	{Statement: domain.StatementBalance, Item: domain.Equity},
}

// MetricGrowth is the growth sequence of one metric plus its descriptive statistics
// Mean and StdDev are computed over the periods that have a prior period
type MetricGrowth struct {
	Metric Metric
	Deltas []Delta
	Mean   float64
	StdDev float64
}

// Analysis is the growth table across all tracked metrics
type Analysis struct {
	Periods []domain.Period
	Metrics []MetricGrowth
}

// Analyze computes the growth table for AnalysisMetrics
// A metric that cannot be computed is left out and its error joined into the result
func Analyze(snap *domain.Snapshot) (*Analysis, error) {
	periods := snap.Periods()
	if len(periods) < 2 {
		return nil, fmt.Errorf("%w: growth analysis needs at least 2 periods, got %d",
			domain.ErrInsufficientData, len(periods))
	}

	analysis := &Analysis{Periods: periods}
	var errs []error

	for _, m := range AnalysisMetrics {
		deltas, err := LineItem(snap, m.Statement, m.Item)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		rates := make([]float64, 0, len(deltas)-1)
		for _, d := range deltas {
			if d.NoPrior {
				continue
			}
			rates = append(rates, d.Percent.InexactFloat64())
		}

		mg := MetricGrowth{Metric: m, Deltas: deltas}
		mg.Mean = stat.Mean(rates, nil)
		if len(rates) > 1 {
			mg.StdDev = stat.StdDev(rates, nil)
		}
		analysis.Metrics = append(analysis.Metrics, mg)
	}

	return analysis, errors.Join(errs...)
}
