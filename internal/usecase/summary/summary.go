package summary

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/simaogato/virtualcfo-backend/internal/domain"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/growth"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/ratio"
)

// Summarize computes the headline metrics of the two latest periods
// Logic:
//   - Revenue and net income growth: latest vs previous period (growth engine)
//   - Gross margin, net margin, current ratio, debt-to-equity: latest period (ratio engine)
//
// Any failure aborts the whole summary; no partial summary is returned
func Summarize(snap *domain.Snapshot) (domain.MetricsSummary, error) {
	periods := snap.Periods()
	if len(periods) < 2 {
		return domain.MetricsSummary{}, fmt.Errorf("%w: summary needs at least 2 periods, got %d",
			domain.ErrInsufficientData, len(periods))
	}

	latest := periods[len(periods)-1]
	previous := periods[len(periods)-2]

	m := domain.MetricsSummary{
		LatestPeriod:   latest,
		PreviousPeriod: previous,
	}

	var err error
	if m.RevenueGrowth, err = growthOf(snap, domain.Revenue, previous, latest); err != nil {
		return domain.MetricsSummary{}, err
	}
	if m.ProfitGrowth, err = growthOf(snap, domain.NetIncome, previous, latest); err != nil {
		return domain.MetricsSummary{}, err
	}

	ratios := []struct {
		name   domain.RatioName
		target *decimal.Decimal
	}{
		{domain.RatioGrossMargin, &m.GrossMargin},
		{domain.RatioNetMargin, &m.NetMargin},
		{domain.RatioCurrent, &m.CurrentRatio},
		{domain.RatioDebtToEquity, &m.DebtToEquity},
	}
	for _, r := range ratios {
		v, err := ratio.Compute(snap, latest, r.name)
		if err != nil {
			return domain.MetricsSummary{}, fmt.Errorf("failed to compute %s: %w", r.name, err)
		}
		*r.target = v
	}

	return m, nil
}

func growthOf(snap *domain.Snapshot, item domain.LineItem, previous, latest domain.Period) (decimal.Decimal, error) {
	prev, err := snap.Value(domain.StatementIncome, previous, item)
	if err != nil {
		return decimal.Zero, err
	}
	cur, err := snap.Value(domain.StatementIncome, latest, item)
	if err != nil {
		return decimal.Zero, err
	}

	pct, err := growth.Between(string(item), latest, prev, cur)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute %s growth: %w", item, err)
	}
	return pct, nil
}
