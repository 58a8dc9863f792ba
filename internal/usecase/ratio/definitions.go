package ratio

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simaogato/virtualcfo-backend/internal/domain"
)

// term is one line item read from a statement, optionally subtracted
type term struct {
	kind     domain.StatementKind
	item     domain.LineItem
	subtract bool
}

// operand is a sum of terms, e.g. Current Assets - Inventory
type operand []term

func of(kind domain.StatementKind, item domain.LineItem) operand {
	return operand{{kind: kind, item: item}}
}

func (o operand) minus(kind domain.StatementKind, item domain.LineItem) operand {
	return append(o, term{kind: kind, item: item, subtract: true})
}

func (o operand) eval(snap *domain.Snapshot, p domain.Period) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, t := range o {
		v, err := snap.Value(t.kind, p, t.item)
		if err != nil {
			return decimal.Zero, err
		}
		if t.subtract {
			total = total.Sub(v)
		} else {
			total = total.Add(v)
		}
	}
	return total, nil
}

func (o operand) label() string {
	var b strings.Builder
	for i, t := range o {
		if i > 0 {
			if t.subtract {
				b.WriteString(" - ")
			} else {
				b.WriteString(" + ")
			}
		}
		b.WriteString(string(t.item))
	}
	return b.String()
}

// definition describes how a ratio is derived
// Percent ratios are scaled by 100, the rest are raw quotients
type definition struct {
	name        domain.RatioName
	category    domain.RatioCategory
	percent     bool
	numerator   operand
	denominator operand
}

const (
	income  = domain.StatementIncome
	balance = domain.StatementBalance
)

// definitions lists every ratio in display order
var definitions = []definition{
	// Profitability
	{domain.RatioGrossMargin, domain.CategoryProfitability, true, of(income, domain.GrossProfit), of(income, domain.Revenue)},
	{domain.RatioOperatingMargin, domain.CategoryProfitability, true, of(income, domain.OperatingIncome), of(income, domain.Revenue)},
	{domain.RatioNetMargin, domain.CategoryProfitability, true, of(income, domain.NetIncome), of(income, domain.Revenue)},
	{domain.RatioReturnOnAssets, domain.CategoryProfitability, true, of(income, domain.NetIncome), of(balance, domain.TotalAssets)},
	{domain.RatioReturnOnEquity, domain.CategoryProfitability, true, of(income, domain.NetIncome), of(balance, domain.Equity)},

	// Liquidity
	{domain.RatioCurrent, domain.CategoryLiquidity, false, of(balance, domain.CurrentAssets), of(balance, domain.CurrentLiabilities)},
	{domain.RatioQuick, domain.CategoryLiquidity, false, of(balance, domain.CurrentAssets).minus(balance, domain.Inventory), of(balance, domain.CurrentLiabilities)},
	{domain.RatioCash, domain.CategoryLiquidity, false, of(balance, domain.CashAndEquivalents), of(balance, domain.CurrentLiabilities)},

	// Leverage
	{domain.RatioDebtToEquity, domain.CategoryLeverage, false, of(balance, domain.TotalLiabilities), of(balance, domain.Equity)},
	{domain.RatioDebtToAssets, domain.CategoryLeverage, false, of(balance, domain.TotalLiabilities), of(balance, domain.TotalAssets)},
	{domain.RatioInterestCoverage, domain.CategoryLeverage, false, of(income, domain.OperatingIncome), of(income, domain.InterestExpense)},

	// Efficiency
	{domain.RatioAssetTurnover, domain.CategoryEfficiency, false, of(income, domain.Revenue), of(balance, domain.TotalAssets)},
	{domain.RatioInventoryTurnover, domain.CategoryEfficiency, false, of(income, domain.CostOfGoodsSold), of(balance, domain.Inventory)},
}

// workingCapital is reported alongside the liquidity ratios
var workingCapital = of(balance, domain.CurrentAssets).minus(balance, domain.CurrentLiabilities)

func lookupDefinition(name domain.RatioName) (definition, bool) {
	for _, def := range definitions {
		if def.name == name {
			return def, true
		}
	}
	return definition{}, false
}
