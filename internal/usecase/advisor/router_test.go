package advisor

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/virtualcfo-backend/internal/domain"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/seeder"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/summary"
)

func inputFor(t *testing.T, tables domain.Tables) Input {
	t.Helper()
	snap, err := domain.NewSnapshot(tables)
	require.NoError(t, err)
	m, err := summary.Summarize(snap)
	require.NoError(t, err)
	return Input{Summary: m, Snapshot: snap}
}

func TestRouter_Match_PriorityOrder(t *testing.T) {
	router := NewDefaultRouter()

	tests := []struct {
		query    string
		expected string
	}{
		{"How is our cash flow trending?", RuleCashFlow},
		{"What's our current profit margin?", RuleProfitability},
		{"How is our growth trajectory?", RuleGrowth},
		{"What is our debt situation?", RuleDebt},
		{"Are we over-leveraged? leverage please", RuleDebt},
		{"Check our LIQUIDITY", RuleLiquidity},
		{"What investment opportunities should we consider?", RuleInvestment},
		{"Should we invest?", RuleInvestment},
		{"Can you forecast next quarter?", RuleForecast},
		{"Any projections?", RuleForecast},
		{"Predict revenue", RuleForecast},
		{"Hello there", RuleDefault},
		{"", RuleDefault},
		// Earlier rules win when several keywords appear
		{"Does debt hurt our cash flow?", RuleCashFlow},
		{"Profitability and growth", RuleProfitability},
		{"growth funded by debt", RuleGrowth},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.expected, router.Match(tt.query).Name)
		})
	}
}

func TestRouter_Route_DebtUsesLiveSummary(t *testing.T) {
	router := NewDefaultRouter()

	baseline := inputFor(t, seeder.BaselineTables())
	response, err := router.Route("What is our debt situation?", baseline)
	require.NoError(t, err)
	assert.Contains(t, response, "debt-to-equity ratio is 0.63")
	assert.Contains(t, response, "$100,000 to $85,000")

	// Doubling liabilities in the latest quarter must change the answer
	tables := seeder.BaselineTables()
	tables.Balance[seeder.BaselinePeriods[3]][domain.TotalLiabilities] = decimal.NewFromInt(290000)
	reloaded := inputFor(t, tables)

	response, err = router.Route("What is our debt situation?", reloaded)
	require.NoError(t, err)
	assert.Contains(t, response, "debt-to-equity ratio is 1.26")
}

func TestRouter_Route_Templates(t *testing.T) {
	router := NewDefaultRouter()
	in := inputFor(t, seeder.BaselineTables())

	tests := []struct {
		query    string
		contains []string
	}{
		{"How is our cash flow trending?", []string{"$21,750", "up from $15,250", "42.6%", "-$8,000"}},
		{"What's our current profit margin?", []string{"gross margin is currently 44.4%", "25.0% of revenue"}},
		{"How is our growth trajectory?", []string{"grown by 20.0%", "$180,000", "increased by 43.5%", "$24,750"}},
		{"Check our liquidity", []string{"current ratio is 3.17", "quick ratio: 2.25", "$50,000 to $90,000"}},
		{"Should we invest?", []string{"$90,000 in cash", "$21,750 of operating cash flow"}},
		{"Forecast please", []string{"not modelled", "20.0% revenue growth", "2024-Q4 vs 2024-Q3"}},
		{"Hello", []string{"(2024-Q4) was $180,000", "$24,750", "current ratio of 3.17"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			response, err := router.Route(tt.query, in)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, response, s)
			}
		})
	}
}

func TestRouter_Route_Deterministic(t *testing.T) {
	router := NewDefaultRouter()
	in := inputFor(t, seeder.BaselineTables())

	first, err := router.Route("growth", in)
	require.NoError(t, err)
	second, err := router.Route("GROWTH", in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRouter_Route_MissingLineItem(t *testing.T) {
	router := NewDefaultRouter()
	tables := seeder.BaselineTables()
	delete(tables.CashFlow[seeder.BaselinePeriods[3]], domain.OperatingCashFlow)
	in := inputFor(t, tables)

	_, err := router.Route("cash flow", in)
	assert.ErrorIs(t, err, domain.ErrLookup)
}

func TestRouter_CustomRuleTable(t *testing.T) {
	called := ""
	rules := []Rule{
		{Name: "tax", Keywords: []string{"tax"}, Respond: func(in Input) (string, error) {
			called = "tax"
			return "tax answer", nil
		}},
	}
	fallback := Rule{Name: "none", Respond: func(in Input) (string, error) {
		return "", errors.New("no answer")
	}}
	router := NewRouter(rules, fallback)

	response, err := router.Route("What about TAX?", Input{})
	require.NoError(t, err)
	assert.Equal(t, "tax answer", response)
	assert.Equal(t, "tax", called)

	_, err = router.Route("anything else", Input{})
	assert.EqualError(t, err, "no answer")

	// The router keeps its own copy of the table
	rules[0].Name = "mutated"
	assert.Equal(t, "tax", router.Rules()[0].Name)
}
