package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrLookup is returned when a (period, line item) pair is absent from a statement
	ErrLookup = errors.New("line item not found")

	// ErrDivision is returned when a ratio or growth denominator is zero
	ErrDivision = errors.New("division by zero")

	// ErrInsufficientData is returned when a comparison needs more periods than are available
	ErrInsufficientData = errors.New("insufficient data")

	// ErrPeriodMismatch is returned when the three statements do not share the same periods
	ErrPeriodMismatch = errors.New("statement periods do not match")

	// ErrUnorderedSeries is returned when a series is not strictly increasing by period
	ErrUnorderedSeries = errors.New("series periods must be strictly increasing")

	// ErrSessionNotFound is returned when a session ID is unknown
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidArgument is wrapped by every parse or validation failure of caller input
	ErrInvalidArgument = errors.New("invalid")

	// ErrEmptyQuery is returned when a chat query has no text
	ErrEmptyQuery = errors.New("query must not be empty")
)

// LookupError describes a missing line item
type LookupError struct {
	Statement StatementKind
	Period    Period
	Item      LineItem
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: %s %q for %s", ErrLookup, e.Statement, e.Item, e.Period)
}

// Unwrap allows errors.Is(err, ErrLookup)
func (e *LookupError) Unwrap() error {
	return ErrLookup
}

// DivisionError describes a zero denominator
type DivisionError struct {
	Metric      string
	Period      Period
	Denominator string
}

func (e *DivisionError) Error() string {
	return fmt.Sprintf("%s: %s for %s (%s is zero)", ErrDivision, e.Metric, e.Period, e.Denominator)
}

// Unwrap allows errors.Is(err, ErrDivision)
func (e *DivisionError) Unwrap() error {
	return ErrDivision
}
