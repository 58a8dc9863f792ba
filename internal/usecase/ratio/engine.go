package ratio

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/virtualcfo-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Profitability computes gross, operating and net margin, ROA and ROE (all %)
func Profitability(snap *domain.Snapshot, p domain.Period) (domain.RatioSet, error) {
	return computeCategory(snap, p, domain.CategoryProfitability)
}

// Liquidity computes the current, quick and cash ratios plus working capital
func Liquidity(snap *domain.Snapshot, p domain.Period) (domain.RatioSet, error) {
	set, err := computeCategory(snap, p, domain.CategoryLiquidity)

	wc, wcErr := workingCapital.eval(snap, p)
	if wcErr != nil {
		return set, errors.Join(err, fmt.Errorf("%s: %w", domain.RatioWorkingCapital, wcErr))
	}
	set[domain.RatioWorkingCapital] = wc

	return set, err
}

// Leverage computes debt-to-equity, debt-to-assets and interest coverage
func Leverage(snap *domain.Snapshot, p domain.Period) (domain.RatioSet, error) {
	return computeCategory(snap, p, domain.CategoryLeverage)
}

// Efficiency computes asset and inventory turnover
func Efficiency(snap *domain.Snapshot, p domain.Period) (domain.RatioSet, error) {
	return computeCategory(snap, p, domain.CategoryEfficiency)
}

// ByCategory dispatches to the category function
func ByCategory(snap *domain.Snapshot, p domain.Period, category domain.RatioCategory) (domain.RatioSet, error) {
	switch category {
	case domain.CategoryProfitability:
		return Profitability(snap, p)
	case domain.CategoryLiquidity:
		return Liquidity(snap, p)
	case domain.CategoryLeverage:
		return Leverage(snap, p)
	case domain.CategoryEfficiency:
		return Efficiency(snap, p)
	default:
		return nil, fmt.Errorf("%w ratio category %q", domain.ErrInvalidArgument, category)
	}
}

// ValidateCategory rejects unknown categories
func ValidateCategory(category domain.RatioCategory) error {
	for _, c := range domain.RatioCategories {
		if c == category {
			return nil
		}
	}
	return fmt.Errorf("%w ratio category %q", domain.ErrInvalidArgument, category)
}

// All computes every ratio for the period
// The returned set holds every ratio that could be computed; the error joins
// the individual *domain.LookupError and *domain.DivisionError failures
func All(snap *domain.Snapshot, p domain.Period) (domain.RatioSet, error) {
	all := make(domain.RatioSet)
	var errs []error

	for _, category := range domain.RatioCategories {
		set, err := ByCategory(snap, p, category)
		for name, v := range set {
			all[name] = v
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	return all, errors.Join(errs...)
}

// Compute computes a single ratio
func Compute(snap *domain.Snapshot, p domain.Period, name domain.RatioName) (decimal.Decimal, error) {
	if name == domain.RatioWorkingCapital {
		wc, err := workingCapital.eval(snap, p)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%s: %w", name, err)
		}
		return wc, nil
	}

	def, ok := lookupDefinition(name)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w ratio %q", domain.ErrInvalidArgument, name)
	}
	return compute(snap, p, def)
}

// Names returns the ratio names of a category in display order
func Names(category domain.RatioCategory) []domain.RatioName {
	var names []domain.RatioName
	for _, def := range definitions {
		if def.category == category {
			names = append(names, def.name)
		}
	}
	if category == domain.CategoryLiquidity {
		names = append(names, domain.RatioWorkingCapital)
	}
	return names
}

// IsPercent reports whether the ratio is expressed as a percentage
func IsPercent(name domain.RatioName) bool {
	def, ok := lookupDefinition(name)
	return ok && def.percent
}

func computeCategory(snap *domain.Snapshot, p domain.Period, category domain.RatioCategory) (domain.RatioSet, error) {
	set := make(domain.RatioSet)
	var errs []error

	for _, def := range definitions {
		if def.category != category {
			continue
		}
		v, err := compute(snap, p, def)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		set[def.name] = v
	}

	return set, errors.Join(errs...)
}

// compute evaluates one definition; lookup failures are prefixed with the ratio name
func compute(snap *domain.Snapshot, p domain.Period, def definition) (decimal.Decimal, error) {
	num, err := def.numerator.eval(snap, p)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", def.name, err)
	}

	den, err := def.denominator.eval(snap, p)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", def.name, err)
	}

	if den.IsZero() {
		return decimal.Zero, &domain.DivisionError{
			Metric:      string(def.name),
			Period:      p,
			Denominator: def.denominator.label(),
		}
	}

	if def.percent {
		return num.Mul(hundred).Div(den), nil
	}
	return num.Div(den), nil
}
