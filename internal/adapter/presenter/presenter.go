// Package presenter converts domain values to and from the loosely typed
// payloads shared by the HTTP API and the gRPC service.
// Payloads only use map[string]interface{}, []interface{}, strings, float64,
// bools and nil so they can back a structpb.Struct. Decimals are rendered as
// exact strings.
package presenter

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/virtualcfo-backend/internal/domain"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/growth"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/ratio"
)

// Summary renders the headline metrics
func Summary(m domain.MetricsSummary) map[string]interface{} {
	return map[string]interface{}{
		"latest_period":   m.LatestPeriod.String(),
		"previous_period": m.PreviousPeriod.String(),
		"revenue_growth":  m.RevenueGrowth.String(),
		"profit_growth":   m.ProfitGrowth.String(),
		"gross_margin":    m.GrossMargin.String(),
		"net_margin":      m.NetMargin.String(),
		"current_ratio":   m.CurrentRatio.String(),
		"debt_to_equity":  m.DebtToEquity.String(),
	}
}

// Loaded renders the outcome of a statement load
// The statements are in place even when the summary could not be computed
func Loaded(periods []domain.Period, issues []domain.Inconsistency, m domain.MetricsSummary, err error) map[string]interface{} {
	out := map[string]interface{}{
		"periods":  Periods(periods),
		"warnings": Inconsistencies(issues),
		"summary":  nil,
	}
	if err != nil {
		out["errors"] = Errors(err)
	} else {
		out["summary"] = Summary(m)
	}
	return out
}

// Inconsistencies renders violated accounting identities
func Inconsistencies(issues []domain.Inconsistency) []interface{} {
	out := make([]interface{}, 0, len(issues))
	for _, i := range issues {
		out = append(out, map[string]interface{}{
			"identity": i.Identity,
			"period":   i.Period.String(),
			"reported": i.Reported.String(),
			"expected": i.Expected.String(),
		})
	}
	return out
}

// RatioSet renders ratios keyed by their display name
func RatioSet(set domain.RatioSet) map[string]interface{} {
	out := make(map[string]interface{}, len(set))
	for name, v := range set {
		out[string(name)] = v.String()
	}
	return out
}

// Ratios renders the ratios of one period along with the ratios that could not be computed
func Ratios(p domain.Period, set domain.RatioSet, err error) map[string]interface{} {
	out := map[string]interface{}{
		"period": p.String(),
		"ratios": RatioSet(set),
	}
	if err != nil {
		out["errors"] = Errors(err)
	}
	return out
}

// RatioTable renders one row per period
func RatioTable(category domain.RatioCategory, rows []ratio.Row, err error) map[string]interface{} {
	items := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		items = append(items, map[string]interface{}{
			"period": row.Period.String(),
			"ratios": RatioSet(row.Ratios),
		})
	}

	out := map[string]interface{}{
		"category": string(category),
		"rows":     items,
	}
	if err != nil {
		out["errors"] = Errors(err)
	}
	return out
}

// Deltas renders a growth sequence; the first entry has a null growth
func Deltas(deltas []growth.Delta) []interface{} {
	out := make([]interface{}, 0, len(deltas))
	for _, d := range deltas {
		var pct interface{}
		if !d.NoPrior {
			pct = d.Percent.String()
		}
		out = append(out, map[string]interface{}{
			"period": d.Period.String(),
			"growth": pct,
		})
	}
	return out
}

// Growth renders the growth of one line item
func Growth(kind domain.StatementKind, item domain.LineItem, deltas []growth.Delta) map[string]interface{} {
	return map[string]interface{}{
		"statement": string(kind),
		"item":      string(item),
		"growth":    Deltas(deltas),
	}
}

// Analysis renders the growth table of the tracked metrics
func Analysis(a *growth.Analysis, err error) map[string]interface{} {
	out := map[string]interface{}{}
	if a != nil {
		metrics := make([]interface{}, 0, len(a.Metrics))
		for _, m := range a.Metrics {
			metrics = append(metrics, map[string]interface{}{
				"statement": string(m.Metric.Statement),
				"item":      string(m.Metric.Item),
				"growth":    Deltas(m.Deltas),
				"mean":      m.Mean,
				"std_dev":   m.StdDev,
			})
		}
		out["periods"] = Periods(a.Periods)
		out["metrics"] = metrics
	}
	if err != nil {
		out["errors"] = Errors(err)
	}
	return out
}

// Breakdown renders expense shares of revenue for one period
func Breakdown(p domain.Period, shares map[domain.LineItem]decimal.Decimal, err error) map[string]interface{} {
	items := make(map[string]interface{}, len(shares))
	for item, v := range shares {
		items[string(item)] = v.String()
	}

	out := map[string]interface{}{
		"period": p.String(),
		"shares": items,
	}
	if err != nil {
		out["errors"] = Errors(err)
	}
	return out
}

// Series renders a metric series
func Series(points []growth.Point) []interface{} {
	out := make([]interface{}, 0, len(points))
	for _, pt := range points {
		out = append(out, map[string]interface{}{
			"period": pt.Period.String(),
			"value":  pt.Value.String(),
		})
	}
	return out
}

// Periods renders periods in their canonical form
func Periods(periods []domain.Period) []interface{} {
	out := make([]interface{}, 0, len(periods))
	for _, p := range periods {
		out = append(out, p.String())
	}
	return out
}

// Message renders one chat message
func Message(m domain.ChatMessage) map[string]interface{} {
	return map[string]interface{}{
		"id":         m.ID.String(),
		"role":       string(m.Role),
		"content":    m.Content,
		"rule":       m.Rule,
		"created_at": m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// History renders a chat transcript
func History(messages []domain.ChatMessage) []interface{} {
	out := make([]interface{}, 0, len(messages))
	for _, m := range messages {
		out = append(out, Message(m))
	}
	return out
}

// Errors flattens joined errors, at any depth, into a list of messages
func Errors(err error) []interface{} {
	out := []interface{}{}
	for _, e := range flatten(err) {
		out = append(out, e.Error())
	}
	return out
}

func flatten(err error) []error {
	if err == nil {
		return nil
	}

	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}

	var out []error
	for _, e := range joined.Unwrap() {
		out = append(out, flatten(e)...)
	}
	return out
}

// IsPartial reports whether err only describes ratios or metrics that could not be computed
// Partial results are still returned to the caller alongside their errors
func IsPartial(err error) bool {
	return err != nil &&
		(errors.Is(err, domain.ErrLookup) || errors.Is(err, domain.ErrDivision) || errors.Is(err, domain.ErrInsufficientData)) &&
		!errors.Is(err, domain.ErrInvalidArgument) &&
		!errors.Is(err, domain.ErrSessionNotFound)
}
