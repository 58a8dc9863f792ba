package growth

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/virtualcfo-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Point is one value of a metric series
type Point struct {
	Period domain.Period
	Value  decimal.Decimal
}

// Delta is the period-over-period change aligned to a series point
// The first point of a series has no prior period: NoPrior is true and
// Percent must not be read
type Delta struct {
	Period  domain.Period
	Percent decimal.Decimal
	NoPrior bool
}

// Compute returns one Delta per point: (v[i] - v[i-1]) / v[i-1] x 100
// Logic:
//   - fewer than two points: ErrInsufficientData
//   - periods not strictly increasing: ErrUnorderedSeries
//   - a zero prior value: *domain.DivisionError
func Compute(metric string, series []Point) ([]Delta, error) {
	if len(series) < 2 {
		return nil, fmt.Errorf("%w: growth of %s needs at least 2 periods, got %d",
			domain.ErrInsufficientData, metric, len(series))
	}

	deltas := make([]Delta, len(series))
	deltas[0] = Delta{Period: series[0].Period, NoPrior: true}

	for i := 1; i < len(series); i++ {
		prev, cur := series[i-1], series[i]
		if !prev.Period.Before(cur.Period) {
			return nil, fmt.Errorf("%w: %s follows %s", domain.ErrUnorderedSeries, cur.Period, prev.Period)
		}

		pct, err := between(metric, cur.Period, prev.Value, cur.Value)
		if err != nil {
			return nil, err
		}
		deltas[i] = Delta{Period: cur.Period, Percent: pct}
	}

	return deltas, nil
}

// Between returns the percentage change from prev to cur
func Between(metric string, p domain.Period, prev, cur decimal.Decimal) (decimal.Decimal, error) {
	return between(metric, p, prev, cur)
}

func between(metric string, p domain.Period, prev, cur decimal.Decimal) (decimal.Decimal, error) {
	if prev.IsZero() {
		return decimal.Zero, &domain.DivisionError{
			Metric:      metric + " growth",
			Period:      p,
			Denominator: "prior period " + metric,
		}
	}
	return cur.Sub(prev).Mul(hundred).Div(prev), nil
}

// Series extracts the ordered series of a line item from a snapshot
func Series(snap *domain.Snapshot, kind domain.StatementKind, item domain.LineItem) ([]Point, error) {
	periods := snap.Periods()
	series := make([]Point, 0, len(periods))

	for _, p := range periods {
		v, err := snap.Value(kind, p, item)
		if err != nil {
			return nil, err
		}
		series = append(series, Point{Period: p, Value: v})
	}

	return series, nil
}

// LineItem computes the growth sequence of a line item across the snapshot
func LineItem(snap *domain.Snapshot, kind domain.StatementKind, item domain.LineItem) ([]Delta, error) {
	series, err := Series(snap, kind, item)
	if err != nil {
		return nil, err
	}
	return Compute(string(item), series)
}

// Cumulative returns the running total of a series
func Cumulative(series []Point) []Point {
	out := make([]Point, len(series))
	total := decimal.Zero
	for i, pt := range series {
		total = total.Add(pt.Value)
		out[i] = Point{Period: pt.Period, Value: total}
	}
	return out
}
