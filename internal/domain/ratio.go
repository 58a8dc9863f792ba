package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RatioName identifies a derived ratio
type RatioName string

const (
	RatioGrossMargin       RatioName = "Gross Margin (%)"
	RatioOperatingMargin   RatioName = "Operating Margin (%)"
	RatioNetMargin         RatioName = "Net Margin (%)"
	RatioReturnOnAssets    RatioName = "Return on Assets (%)"
	RatioReturnOnEquity    RatioName = "Return on Equity (%)"
	RatioCurrent           RatioName = "Current Ratio"
	RatioQuick             RatioName = "Quick Ratio"
	RatioCash              RatioName = "Cash Ratio"
	RatioDebtToEquity      RatioName = "Debt-to-Equity"
	RatioDebtToAssets      RatioName = "Debt-to-Assets"
	RatioInterestCoverage  RatioName = "Interest Coverage"
	RatioAssetTurnover     RatioName = "Asset Turnover"
	RatioInventoryTurnover RatioName = "Inventory Turnover"
	RatioWorkingCapital    RatioName = "Working Capital"
)

// RatioCategory groups ratios the way the analysis views present them
type RatioCategory string

const (
	CategoryProfitability RatioCategory = "PROFITABILITY"
	CategoryLiquidity     RatioCategory = "LIQUIDITY"
	CategoryLeverage      RatioCategory = "LEVERAGE"
	CategoryEfficiency    RatioCategory = "EFFICIENCY"
)

// RatioCategories lists the categories in display order
var RatioCategories = []RatioCategory{
	CategoryProfitability,
	CategoryLiquidity,
	CategoryLeverage,
	CategoryEfficiency,
}

// ParseRatioCategory parses a category name case-insensitively
func ParseRatioCategory(s string) (RatioCategory, error) {
	candidate := RatioCategory(strings.ToUpper(strings.TrimSpace(s)))
	for _, c := range RatioCategories {
		if c == candidate {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w ratio category %q: must be one of %v", ErrInvalidArgument, s, RatioCategories)
}

// RatioSet holds the ratios computed for a single period
// A RatioSet is never modified after it has been returned
type RatioSet map[RatioName]decimal.Decimal

// Get returns the named ratio and whether it was computed
func (r RatioSet) Get(name RatioName) (decimal.Decimal, bool) {
	v, ok := r[name]
	return v, ok
}
