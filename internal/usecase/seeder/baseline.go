package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/virtualcfo-backend/internal/domain"
)

// Baseline periods: the four quarters of 2024
var BaselinePeriods = []domain.Period{
	{Year: 2024, Quarter: 1},
	{Year: 2024, Quarter: 2},
	{Year: 2024, Quarter: 3},
	{Year: 2024, Quarter: 4},
}

// Column values are listed in BaselinePeriods order
var (
	baselineIncome = map[domain.LineItem][4]int64{
		domain.Revenue:           {100000, 120000, 150000, 180000},
		domain.CostOfGoodsSold:   {60000, 70000, 85000, 100000},
		domain.GrossProfit:       {40000, 50000, 65000, 80000},
		domain.OperatingExpenses: {30000, 35000, 40000, 45000},
		domain.OperatingIncome:   {10000, 15000, 25000, 35000},
		domain.InterestExpense:   {2000, 2000, 2000, 2000},
		domain.IncomeBeforeTax:   {8000, 13000, 23000, 33000},
		domain.TaxExpense:        {2000, 3250, 5750, 8250},
		domain.NetIncome:         {6000, 9750, 17250, 24750},
	}

	baselineBalance = map[domain.LineItem][4]int64{
		domain.CashAndEquivalents: {50000, 55000, 70000, 90000},
		domain.AccountsReceivable: {30000, 35000, 40000, 45000},
		domain.Inventory:          {40000, 45000, 50000, 55000},
		domain.CurrentAssets:      {120000, 135000, 160000, 190000},
		domain.FixedAssets:        {200000, 195000, 190000, 185000},
		domain.TotalAssets:        {320000, 330000, 350000, 375000},
		domain.AccountsPayable:    {25000, 30000, 35000, 40000},
		domain.ShortTermDebt:      {20000, 20000, 20000, 20000},
		domain.CurrentLiabilities: {45000, 50000, 55000, 60000},
		domain.LongTermDebt:       {100000, 95000, 90000, 85000},
		domain.TotalLiabilities:   {145000, 145000, 145000, 145000},
		domain.Equity:             {175000, 185000, 205000, 230000},
	}

	baselineCashFlow = map[domain.LineItem][4]int64{
		domain.NetIncome:               {6000, 9750, 17250, 24750},
		domain.Depreciation:            {5000, 5000, 5000, 5000},
		domain.ChangesInWorkingCapital: {-3000, -5000, -7000, -8000},
		domain.OperatingCashFlow:       {8000, 9750, 15250, 21750},
		domain.CapitalExpenditures:     {0, 0, 0, 0},
		domain.InvestingCashFlow:       {0, 0, 0, 0},
		domain.DebtRepayment:           {5000, 5000, 5000, 5000},
		domain.FinancingCashFlow:       {-5000, -5000, -5000, -5000},
		domain.NetCashFlow:             {3000, 4750, 10250, 16750},
	}
)

// BaselineTables returns a fresh copy of the sample dataset restored by a reset
func BaselineTables() domain.Tables {
	return domain.Tables{
		Income:   buildTable(baselineIncome),
		Balance:  buildTable(baselineBalance),
		CashFlow: buildTable(baselineCashFlow),
	}
}

func buildTable(columns map[domain.LineItem][4]int64) domain.StatementTable {
	table := make(domain.StatementTable, len(BaselinePeriods))
	for i, p := range BaselinePeriods {
		row := make(map[domain.LineItem]decimal.Decimal, len(columns))
		for item, values := range columns {
			row[item] = decimal.NewFromInt(values[i])
		}
		table[p] = row
	}
	return table
}

// BaselineSeeder makes sure a session has statements in the repository
type BaselineSeeder struct {
	repo domain.SnapshotRepository
}

// NewBaselineSeeder creates a new BaselineSeeder instance
func NewBaselineSeeder(repo domain.SnapshotRepository) *BaselineSeeder {
	return &BaselineSeeder{
		repo: repo,
	}
}

// Seed returns the statements stored for the session
// If nothing is stored yet, it stores the baseline dataset and returns it
func (s *BaselineSeeder) Seed(ctx context.Context, sessionID uuid.UUID) (domain.Tables, error) {
	tables, err := s.repo.Get(ctx, sessionID)
	if err == nil {
		return tables, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return domain.Tables{}, fmt.Errorf("failed to load statements: %w", err)
	}

	baseline := BaselineTables()
	if err := s.repo.Save(ctx, sessionID, baseline); err != nil {
		return domain.Tables{}, fmt.Errorf("failed to seed baseline statements: %w", err)
	}

	return baseline, nil
}
