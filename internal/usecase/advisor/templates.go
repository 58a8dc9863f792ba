package advisor

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/simaogato/virtualcfo-backend/internal/domain"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/growth"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/ratio"
)

// Rule names
const (
	RuleCashFlow      = "cash_flow"
	RuleProfitability = "profitability"
	RuleGrowth        = "growth"
	RuleDebt          = "debt"
	RuleLiquidity     = "liquidity"
	RuleInvestment    = "investment"
	RuleForecast      = "forecast"
	RuleDefault       = "default"
)

// DefaultRules returns the built-in rule table in priority order
func DefaultRules() []Rule {
	return []Rule{
		{Name: RuleCashFlow, Keywords: []string{"cash flow"}, Respond: cashFlowResponse},
		{Name: RuleProfitability, Keywords: []string{"profit margin", "profitability"}, Respond: profitabilityResponse},
		{Name: RuleGrowth, Keywords: []string{"growth"}, Respond: growthResponse},
		{Name: RuleDebt, Keywords: []string{"debt", "leverage"}, Respond: debtResponse},
		{Name: RuleLiquidity, Keywords: []string{"liquidity"}, Respond: liquidityResponse},
		{Name: RuleInvestment, Keywords: []string{"investment", "invest"}, Respond: investmentResponse},
		{Name: RuleForecast, Keywords: []string{"forecast", "projection", "predict"}, Respond: forecastResponse},
	}
}

// DefaultFallback returns the overview rule used when nothing matches
func DefaultFallback() Rule {
	return Rule{Name: RuleDefault, Respond: overviewResponse}
}

var printer = message.NewPrinter(language.English)

func money(d decimal.Decimal) string {
	if d.IsNegative() {
		return printer.Sprintf("-$%.0f", d.Neg().InexactFloat64())
	}
	return printer.Sprintf("$%.0f", d.InexactFloat64())
}

func pct(d decimal.Decimal) string {
	return fmt.Sprintf("%.1f%%", d.InexactFloat64())
}

func times(d decimal.Decimal) string {
	return fmt.Sprintf("%.2f", d.InexactFloat64())
}

func direction(change decimal.Decimal, up, down string) string {
	if change.IsNegative() {
		return down
	}
	return up
}

func value(in Input, kind domain.StatementKind, p domain.Period, item domain.LineItem) (decimal.Decimal, error) {
	return in.Snapshot.Value(kind, p, item)
}

func firstPeriod(in Input) domain.Period {
	periods := in.Snapshot.Periods()
	if len(periods) == 0 {
		return in.Summary.LatestPeriod
	}
	return periods[0]
}

func cashFlowResponse(in Input) (string, error) {
	latest, previous := in.Summary.LatestPeriod, in.Summary.PreviousPeriod

	ocf, err := value(in, domain.StatementCashFlow, latest, domain.OperatingCashFlow)
	if err != nil {
		return "", err
	}
	prevOCF, err := value(in, domain.StatementCashFlow, previous, domain.OperatingCashFlow)
	if err != nil {
		return "", err
	}
	wc, err := value(in, domain.StatementCashFlow, latest, domain.ChangesInWorkingCapital)
	if err != nil {
		return "", err
	}
	change, err := growth.Between(string(domain.OperatingCashFlow), latest, prevOCF, ocf)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"Your latest quarterly operating cash flow (%s) is %s, %s from %s in the previous quarter, a %s change. "+
			"Working capital changes were %s this quarter; keep an eye on inventory and receivables, which tie up cash.",
		latest, money(ocf), direction(change, "up", "down"), money(prevOCF), pct(change), money(wc),
	), nil
}

func profitabilityResponse(in Input) (string, error) {
	latest := in.Summary.LatestPeriod

	opex, err := value(in, domain.StatementIncome, latest, domain.OperatingExpenses)
	if err != nil {
		return "", err
	}
	revenue, err := value(in, domain.StatementIncome, latest, domain.Revenue)
	if err != nil {
		return "", err
	}
	if revenue.IsZero() {
		return "", &domain.DivisionError{Metric: "Operating Expense Share", Period: latest, Denominator: string(domain.Revenue)}
	}
	opexShare := opex.Mul(decimal.NewFromInt(100)).Div(revenue)

	return fmt.Sprintf(
		"Your gross margin is currently %s and your net profit margin is %s. "+
			"To further improve profitability, consider reviewing your operating expenses, which represent %s of revenue.",
		pct(in.Summary.GrossMargin), pct(in.Summary.NetMargin), pct(opexShare),
	), nil
}

func growthResponse(in Input) (string, error) {
	latest := in.Summary.LatestPeriod

	revenue, err := value(in, domain.StatementIncome, latest, domain.Revenue)
	if err != nil {
		return "", err
	}
	netIncome, err := value(in, domain.StatementIncome, latest, domain.NetIncome)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"Your revenue has %s by %s compared to the previous quarter, reaching %s. "+
			"Net income has %s by %s, reaching %s.",
		direction(in.Summary.RevenueGrowth, "grown", "fallen"), pct(in.Summary.RevenueGrowth.Abs()), money(revenue),
		direction(in.Summary.ProfitGrowth, "increased", "decreased"), pct(in.Summary.ProfitGrowth.Abs()), money(netIncome),
	), nil
}

func debtResponse(in Input) (string, error) {
	first, latest := firstPeriod(in), in.Summary.LatestPeriod

	startDebt, err := value(in, domain.StatementBalance, first, domain.LongTermDebt)
	if err != nil {
		return "", err
	}
	endDebt, err := value(in, domain.StatementBalance, latest, domain.LongTermDebt)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"Your debt-to-equity ratio is %s and operating income covers interest %s times. "+
			"Your long-term debt has %s from %s to %s between %s and %s.",
		times(in.Summary.DebtToEquity), ratioOrNA(in, domain.RatioInterestCoverage),
		direction(endDebt.Sub(startDebt), "increased", "decreased"), money(startDebt), money(endDebt), first, latest,
	), nil
}

func liquidityResponse(in Input) (string, error) {
	first, latest := firstPeriod(in), in.Summary.LatestPeriod

	startCash, err := value(in, domain.StatementBalance, first, domain.CashAndEquivalents)
	if err != nil {
		return "", err
	}
	endCash, err := value(in, domain.StatementBalance, latest, domain.CashAndEquivalents)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"Your current ratio is %s, meaning you have $%s in current assets for every $1 in current liabilities "+
			"(quick ratio: %s). Your cash position has %s from %s to %s between %s and %s.",
		times(in.Summary.CurrentRatio), times(in.Summary.CurrentRatio), ratioOrNA(in, domain.RatioQuick),
		direction(endCash.Sub(startCash), "increased", "decreased"), money(startCash), money(endCash), first, latest,
	), nil
}

func investmentResponse(in Input) (string, error) {
	latest := in.Summary.LatestPeriod

	cash, err := value(in, domain.StatementBalance, latest, domain.CashAndEquivalents)
	if err != nil {
		return "", err
	}
	ocf, err := value(in, domain.StatementCashFlow, latest, domain.OperatingCashFlow)
	if err != nil {
		return "", err
	}
	capex, err := value(in, domain.StatementCashFlow, latest, domain.CapitalExpenditures)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"With %s in cash and %s of operating cash flow last quarter (capital expenditures: %s), "+
			"weigh any investment in capacity, technology or market expansion against a net margin of %s.",
		money(cash), money(ocf), money(capex), pct(in.Summary.NetMargin),
	), nil
}

func forecastResponse(in Input) (string, error) {
	return fmt.Sprintf(
		"Projections are not modelled. The latest observed trend is %s revenue growth and %s net income growth "+
			"quarter-over-quarter (%s vs %s), at a net margin of %s.",
		pct(in.Summary.RevenueGrowth), pct(in.Summary.ProfitGrowth),
		in.Summary.LatestPeriod, in.Summary.PreviousPeriod, pct(in.Summary.NetMargin),
	), nil
}

func overviewResponse(in Input) (string, error) {
	latest := in.Summary.LatestPeriod

	revenue, err := value(in, domain.StatementIncome, latest, domain.Revenue)
	if err != nil {
		return "", err
	}
	netIncome, err := value(in, domain.StatementIncome, latest, domain.NetIncome)
	if err != nil {
		return "", err
	}
	cash, err := value(in, domain.StatementBalance, latest, domain.CashAndEquivalents)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"Your latest quarterly revenue (%s) was %s, with a net income of %s, representing a net margin of %s. "+
			"Your balance sheet shows %s in cash and a current ratio of %s.",
		latest, money(revenue), money(netIncome), pct(in.Summary.NetMargin), money(cash), times(in.Summary.CurrentRatio),
	), nil
}

// ratioOrNA renders a secondary ratio without failing the whole response
func ratioOrNA(in Input, name domain.RatioName) string {
	v, err := ratio.Compute(in.Snapshot, in.Summary.LatestPeriod, name)
	if err != nil {
		return "N/A"
	}
	return times(v)
}
