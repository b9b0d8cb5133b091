package model

import "fmt"

// ValidationError reports input rejected before computation: a missing
// required field, a negative monetary value, a rate out of range.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Message)
}

// DomainError reports a model that cannot be evaluated with the given
// parameters: a divergent perpetuity, a zero denominator. The evaluation
// fails closed instead of returning Inf or NaN.
type DomainError struct {
	Param   string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("degenerate model (%s): %s", e.Param, e.Message)
}
