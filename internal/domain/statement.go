package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StatementKind represents one of the three financial statements
type StatementKind string

const (
	StatementIncome   StatementKind = "INCOME"
	StatementBalance  StatementKind = "BALANCE"
	StatementCashFlow StatementKind = "CASHFLOW"
)

// StatementKinds lists the statements in their canonical order
var StatementKinds = []StatementKind{StatementIncome, StatementBalance, StatementCashFlow}

// ParseStatementKind accepts the canonical names and a few common aliases
func ParseStatementKind(s string) (StatementKind, error) {
	switch s {
	case "INCOME", "income", "income_statement":
		return StatementIncome, nil
	case "BALANCE", "balance", "balance_sheet":
		return StatementBalance, nil
	case "CASHFLOW", "cashflow", "cash_flow":
		return StatementCashFlow, nil
	default:
		return "", fmt.Errorf("%w statement %q: must be income, balance or cashflow", ErrInvalidArgument, s)
	}
}

// LineItem is a named numeric field within a statement
type LineItem string

// Income statement line items
const (
	Revenue           LineItem = "Revenue"
	CostOfGoodsSold   LineItem = "Cost of Goods Sold"
	GrossProfit       LineItem = "Gross Profit"
	OperatingExpenses LineItem = "Operating Expenses"
	OperatingIncome   LineItem = "Operating Income"
	InterestExpense   LineItem = "Interest Expense"
	IncomeBeforeTax   LineItem = "Income Before Tax"
	TaxExpense        LineItem = "Tax Expense"
	NetIncome         LineItem = "Net Income"
)

// Balance sheet line items
const (
	CashAndEquivalents LineItem = "Cash and Equivalents"
	AccountsReceivable LineItem = "Accounts Receivable"
	Inventory          LineItem = "Inventory"
	CurrentAssets      LineItem = "Current Assets"
	FixedAssets        LineItem = "Fixed Assets"
	TotalAssets        LineItem = "Total Assets"
	AccountsPayable    LineItem = "Accounts Payable"
	ShortTermDebt      LineItem = "Short-term Debt"
	CurrentLiabilities LineItem = "Current Liabilities"
	LongTermDebt       LineItem = "Long-term Debt"
	TotalLiabilities   LineItem = "Total Liabilities"
	Equity             LineItem = "Equity"
)

// Cash flow statement line items (Net Income is shared with the income statement)
const (
	Depreciation            LineItem = "Depreciation"
	ChangesInWorkingCapital LineItem = "Changes in Working Capital"
	OperatingCashFlow       LineItem = "Operating Cash Flow"
	CapitalExpenditures     LineItem = "Capital Expenditures"
	InvestingCashFlow       LineItem = "Investing Cash Flow"
	DebtRepayment           LineItem = "Debt Repayment"
	FinancingCashFlow       LineItem = "Financing Cash Flow"
	NetCashFlow             LineItem = "Net Cash Flow"
)

// StatementTable maps each period to its line item values
type StatementTable map[Period]map[LineItem]decimal.Decimal

// Periods returns the table's periods sorted ascending
func (t StatementTable) Periods() []Period {
	periods := make([]Period, 0, len(t))
	for p := range t {
		periods = append(periods, p)
	}
	SortPeriods(periods)
	return periods
}

// Clone returns a deep copy of the table
func (t StatementTable) Clone() StatementTable {
	out := make(StatementTable, len(t))
	for p, items := range t {
		row := make(map[LineItem]decimal.Decimal, len(items))
		for item, v := range items {
			row[item] = v
		}
		out[p] = row
	}
	return out
}

// Tables groups the three statements handed to a load operation
type Tables struct {
	Income   StatementTable
	Balance  StatementTable
	CashFlow StatementTable
}

// Table returns the statement of the given kind
func (t Tables) Table(kind StatementKind) StatementTable {
	switch kind {
	case StatementIncome:
		return t.Income
	case StatementBalance:
		return t.Balance
	case StatementCashFlow:
		return t.CashFlow
	default:
		return nil
	}
}

// Clone returns a deep copy of all three statements
func (t Tables) Clone() Tables {
	return Tables{
		Income:   t.Income.Clone(),
		Balance:  t.Balance.Clone(),
		CashFlow: t.CashFlow.Clone(),
	}
}
