package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Snapshot is an immutable, cross-validated view of the three statements.
// All three statements cover exactly the same periods.
type Snapshot struct {
	tables  Tables
	periods []Period
}

// NewSnapshot validates and copies the given statements
// Returns ErrPeriodMismatch if the statements cover different periods
func NewSnapshot(tables Tables) (*Snapshot, error) {
	income := tables.Income.Periods()
	for _, kind := range []StatementKind{StatementBalance, StatementCashFlow} {
		other := tables.Table(kind).Periods()
		if !samePeriods(income, other) {
			return nil, fmt.Errorf("%w: %s has %v, %s has %v",
				ErrPeriodMismatch, StatementIncome, income, kind, other)
		}
	}

	for _, p := range income {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	return &Snapshot{
		tables:  tables.Clone(),
		periods: income,
	}, nil
}

// Periods returns the ordered periods (ascending)
func (s *Snapshot) Periods() []Period {
	out := make([]Period, len(s.periods))
	copy(out, s.periods)
	return out
}

// Latest returns the most recent period
func (s *Snapshot) Latest() (Period, bool) {
	if len(s.periods) == 0 {
		return Period{}, false
	}
	return s.periods[len(s.periods)-1], true
}

// Value returns a line item value, or a *LookupError if absent
func (s *Snapshot) Value(kind StatementKind, p Period, item LineItem) (decimal.Decimal, error) {
	row, ok := s.tables.Table(kind)[p]
	if !ok {
		return decimal.Zero, &LookupError{Statement: kind, Period: p, Item: item}
	}
	v, ok := row[item]
	if !ok {
		return decimal.Zero, &LookupError{Statement: kind, Period: p, Item: item}
	}
	return v, nil
}

// Tables returns a deep copy of the underlying statements
func (s *Snapshot) Tables() Tables {
	return s.tables.Clone()
}

func samePeriods(a, b []Period) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
