package fuelcell

import (
	"errors"
	"fmt"
)

// Error classes returned by the model. Every error produced by this package
// wraps exactly one of them.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrRootNotFound     = errors.New("flood root not found")
	ErrModelDomain      = errors.New("model domain error")
)

// Kind names used on the wire.
const (
	KindInvalidParameter = "InvalidParameter"
	KindRootNotFound     = "RootNotFound"
	KindModelDomain      = "ModelDomainError"
)

// ParameterError reports an operating input or constant that was rejected
// before any computation.
type ParameterError struct {
	Name  string
	Value float64
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%v: %s = %g", ErrInvalidParameter, e.Name, e.Value)
}

func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }

// RootError reports a flood equation search that ran out of budget or never
// bracketed a root.
type RootError struct {
	Iterate    float64
	Residual   float64
	Iterations int
	Err        error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("%v: last iterate %g, residual %g after %d iterations: %v",
		ErrRootNotFound, e.Iterate, e.Residual, e.Iterations, e.Err)
}

func (e *RootError) Unwrap() []error { return []error{ErrRootNotFound, e.Err} }

// DomainError reports a computed quantity that left its valid range.
// Step is the sweep index, or -1 outside the sweep.
type DomainError struct {
	Quantity string
	Value    float64
	Step     int
}

func (e *DomainError) Error() string {
	if e.Step >= 0 {
		return fmt.Sprintf("%v: %s = %g at step %d", ErrModelDomain, e.Quantity, e.Value, e.Step)
	}
	return fmt.Sprintf("%v: %s = %g", ErrModelDomain, e.Quantity, e.Value)
}

func (e *DomainError) Unwrap() error { return ErrModelDomain }

// Kind classifies err into one of the wire kinds, or "" when err did not
// come from the model.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidParameter):
		return KindInvalidParameter
	case errors.Is(err, ErrRootNotFound):
		return KindRootNotFound
	case errors.Is(err, ErrModelDomain):
		return KindModelDomain
	}
	return ""
}
