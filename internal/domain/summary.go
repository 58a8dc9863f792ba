package domain

import "github.com/shopspring/decimal"

// MetricsSummary is the headline snapshot consumed by the dashboard and the chat router
// Adheres to the metrics block of the dashboard: growth between the two latest
// periods plus margins and balance sheet ratios for the latest period
type MetricsSummary struct {
	LatestPeriod   Period
	PreviousPeriod Period

	RevenueGrowth decimal.Decimal // %
	ProfitGrowth  decimal.Decimal // % (net income)
	GrossMargin   decimal.Decimal // %
	NetMargin     decimal.Decimal // %
	CurrentRatio  decimal.Decimal
	DebtToEquity  decimal.Decimal
}

// Equal reports whether two summaries hold exactly the same values
func (m MetricsSummary) Equal(other MetricsSummary) bool {
	return m.LatestPeriod == other.LatestPeriod &&
		m.PreviousPeriod == other.PreviousPeriod &&
		m.RevenueGrowth.Equal(other.RevenueGrowth) &&
		m.ProfitGrowth.Equal(other.ProfitGrowth) &&
		m.GrossMargin.Equal(other.GrossMargin) &&
		m.NetMargin.Equal(other.NetMargin) &&
		m.CurrentRatio.Equal(other.CurrentRatio) &&
		m.DebtToEquity.Equal(other.DebtToEquity)
}
