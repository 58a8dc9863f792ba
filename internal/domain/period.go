package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Period identifies one reporting quarter
// Periods are totally ordered by (Year, Quarter)
type Period struct {
	Year    int
	Quarter int // 1..4
}

// NewPeriod creates a Period, validating the quarter number
func NewPeriod(year, quarter int) (Period, error) {
	p := Period{Year: year, Quarter: quarter}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// PeriodOf returns the quarter containing t
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Quarter: (int(t.Month())-1)/3 + 1}
}

// ParsePeriod parses "2024-Q1", "2024Q1" or an ISO date ("2024-03-31").
// Dates map to the quarter that contains them.
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)

	if idx := strings.Index(upper, "Q"); idx > 0 {
		year, err := strconv.Atoi(strings.TrimSuffix(upper[:idx], "-"))
		if err != nil {
			return Period{}, fmt.Errorf("%w period %q: %w", ErrInvalidArgument, s, err)
		}
		quarter, err := strconv.Atoi(upper[idx+1:])
		if err != nil {
			return Period{}, fmt.Errorf("%w period %q: %w", ErrInvalidArgument, s, err)
		}
		return NewPeriod(year, quarter)
	}

	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Period{}, fmt.Errorf("%w period %q: expected YYYY-Qn or YYYY-MM-DD", ErrInvalidArgument, s)
	}
	return PeriodOf(t), nil
}

// Validate ensures the quarter is within 1..4
func (p Period) Validate() error {
	if p.Quarter < 1 || p.Quarter > 4 {
		return fmt.Errorf("%w period: quarter must be between 1 and 4, got %d", ErrInvalidArgument, p.Quarter)
	}
	return nil
}

// Compare returns -1, 0 or +1 depending on whether p is before, equal to or after other
func (p Period) Compare(other Period) int {
	switch {
	case p.Year < other.Year:
		return -1
	case p.Year > other.Year:
		return 1
	case p.Quarter < other.Quarter:
		return -1
	case p.Quarter > other.Quarter:
		return 1
	default:
		return 0
	}
}

// Before reports whether p is strictly earlier than other
func (p Period) Before(other Period) bool {
	return p.Compare(other) < 0
}

// End returns the last calendar day of the quarter
func (p Period) End() time.Time {
	firstOfNext := time.Date(p.Year, time.Month(p.Quarter*3+1), 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.AddDate(0, 0, -1)
}

// String renders the canonical form, e.g. "2024-Q1"
func (p Period) String() string {
	return fmt.Sprintf("%d-Q%d", p.Year, p.Quarter)
}

// MarshalText implements encoding.TextMarshaler so periods can key JSON objects
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// SortPeriods sorts periods ascending in place
func SortPeriods(periods []Period) {
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Before(periods[j])
	})
}
