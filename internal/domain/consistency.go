package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// signedItem is one side of an accounting identity term
type signedItem struct {
	statement StatementKind
	item      LineItem
	negate    bool
}

func plus(kind StatementKind, item LineItem) signedItem {
	return signedItem{statement: kind, item: item}
}

func minus(kind StatementKind, item LineItem) signedItem {
	return signedItem{statement: kind, item: item, negate: true}
}

// Identity states that a total must equal the signed sum of its parts
type Identity struct {
	Name  string
	total signedItem
	parts []signedItem
}

// Identities lists the statement identities checked by CheckConsistency
var Identities = []Identity{
	{"Gross Profit", plus(StatementIncome, GrossProfit), []signedItem{plus(StatementIncome, Revenue), minus(StatementIncome, CostOfGoodsSold)}},
	{"Operating Income", plus(StatementIncome, OperatingIncome), []signedItem{plus(StatementIncome, GrossProfit), minus(StatementIncome, OperatingExpenses)}},
	{"Income Before Tax", plus(StatementIncome, IncomeBeforeTax), []signedItem{plus(StatementIncome, OperatingIncome), minus(StatementIncome, InterestExpense)}},
	{"Net Income", plus(StatementIncome, NetIncome), []signedItem{plus(StatementIncome, IncomeBeforeTax), minus(StatementIncome, TaxExpense)}},
	{"Total Assets", plus(StatementBalance, TotalAssets), []signedItem{plus(StatementBalance, CurrentAssets), plus(StatementBalance, FixedAssets)}},
	{"Total Liabilities", plus(StatementBalance, TotalLiabilities), []signedItem{plus(StatementBalance, CurrentLiabilities), plus(StatementBalance, LongTermDebt)}},
	{"Balance Sheet", plus(StatementBalance, TotalAssets), []signedItem{plus(StatementBalance, TotalLiabilities), plus(StatementBalance, Equity)}},
	{"Cash Flow Net Income", plus(StatementCashFlow, NetIncome), []signedItem{plus(StatementIncome, NetIncome)}},
	{"Operating Cash Flow", plus(StatementCashFlow, OperatingCashFlow), []signedItem{plus(StatementCashFlow, NetIncome), plus(StatementCashFlow, Depreciation), plus(StatementCashFlow, ChangesInWorkingCapital)}},
	{"Net Cash Flow", plus(StatementCashFlow, NetCashFlow), []signedItem{plus(StatementCashFlow, OperatingCashFlow), plus(StatementCashFlow, InvestingCashFlow), plus(StatementCashFlow, FinancingCashFlow)}},
}

// Inconsistency reports an identity that does not hold for a period
type Inconsistency struct {
	Identity string
	Period   Period
	Reported decimal.Decimal
	Expected decimal.Decimal
}

func (i Inconsistency) String() string {
	return fmt.Sprintf("%s for %s: reported %s, expected %s", i.Identity, i.Period, i.Reported, i.Expected)
}

// CheckConsistency evaluates every identity for every period
// Values are trusted at face value elsewhere: the check is advisory and never
// rejects a snapshot. Identities with a missing line item are skipped.
func CheckConsistency(snap *Snapshot) []Inconsistency {
	var out []Inconsistency

	for _, p := range snap.Periods() {
		for _, identity := range Identities {
			reported, expected, ok := identity.evaluate(snap, p)
			if ok && !reported.Equal(expected) {
				out = append(out, Inconsistency{
					Identity: identity.Name,
					Period:   p,
					Reported: reported,
					Expected: expected,
				})
			}
		}
	}

	return out
}

func (id Identity) evaluate(snap *Snapshot, p Period) (reported, expected decimal.Decimal, ok bool) {
	reported, err := snap.Value(id.total.statement, p, id.total.item)
	if err != nil {
		return decimal.Zero, decimal.Zero, false
	}

	for _, part := range id.parts {
		v, err := snap.Value(part.statement, p, part.item)
		if err != nil {
			return decimal.Zero, decimal.Zero, false
		}
		if part.negate {
			v = v.Neg()
		}
		expected = expected.Add(v)
	}

	return reported, expected, true
}
