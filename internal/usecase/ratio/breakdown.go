package ratio

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/simaogato/virtualcfo-backend/internal/domain"
)

// BreakdownItems lists the income statement items expressed as a share of revenue
var BreakdownItems = []domain.LineItem{
	domain.CostOfGoodsSold,
	domain.OperatingExpenses,
	domain.InterestExpense,
	domain.TaxExpense,
	domain.NetIncome,
}

// ExpenseBreakdown expresses each of BreakdownItems as a percentage of revenue
func ExpenseBreakdown(snap *domain.Snapshot, p domain.Period) (map[domain.LineItem]decimal.Decimal, error) {
	revenue, err := snap.Value(domain.StatementIncome, p, domain.Revenue)
	if err != nil {
		return nil, err
	}
	if revenue.IsZero() {
		return nil, &domain.DivisionError{Metric: "Expense Breakdown", Period: p, Denominator: string(domain.Revenue)}
	}

	out := make(map[domain.LineItem]decimal.Decimal, len(BreakdownItems))
	var errs []error
	for _, item := range BreakdownItems {
		v, err := snap.Value(domain.StatementIncome, p, item)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[item] = v.Mul(hundred).Div(revenue)
	}

	return out, errors.Join(errs...)
}

// Row is the ratio set of one period in a multi-period table
type Row struct {
	Period domain.Period
	Ratios domain.RatioSet
}

// Table computes a category for every period of the snapshot, oldest first
func Table(snap *domain.Snapshot, category domain.RatioCategory) ([]Row, error) {
	if err := ValidateCategory(category); err != nil {
		return nil, err
	}

	periods := snap.Periods()
	rows := make([]Row, 0, len(periods))
	var errs []error

	for _, p := range periods {
		set, err := ByCategory(snap, p, category)
		if err != nil {
			errs = append(errs, err)
		}
		rows = append(rows, Row{Period: p, Ratios: set})
	}

	return rows, errors.Join(errs...)
}
