package model

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCatalog = errors.New("catalog contains no production units")
	ErrEmptyPeriods = errors.New("period series is empty")
)

// InvalidUnitError reports a production unit that cannot be dispatched.
type InvalidUnitError struct {
	Unit   string
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidUnitError) Error() string {
	if e.Field == "name" {
		return fmt.Sprintf("invalid production unit: name %s", e.Reason)
	}
	return fmt.Sprintf("invalid production unit %q: %s=%g %s", e.Unit, e.Field, e.Value, e.Reason)
}

// DuplicateUnitError reports two units sharing a name within one catalog.
type DuplicateUnitError struct {
	Unit string
}

func (e *DuplicateUnitError) Error() string {
	return fmt.Sprintf("duplicate production unit %q", e.Unit)
}

// UnknownUnitError reports a selected unit name missing from the catalog.
type UnknownUnitError struct {
	Unit string
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("unknown production unit %q", e.Unit)
}

// InvalidPeriodError reports a period whose demand or price is not a finite number.
type InvalidPeriodError struct {
	Index int
	Field string
	Value float64
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid period %d: %s=%g must be finite", e.Index, e.Field, e.Value)
}
