package ifs

import (
	"errors"
	"fmt"
)

// Kind classifies a limit violation.
type Kind string

const (
	BelowMinimum Kind = "below_minimum"
	AboveMaximum Kind = "above_maximum"
)

// Field names the parameter a limit applies to.
type Field string

const (
	FieldTransformCount Field = "transform_count"
	FieldIterations     Field = "iterations"
)

// Sentinel errors for errors.Is matching.
var (
	ErrBelowMinimum = errors.New("below minimum")
	ErrAboveMaximum = errors.New("above maximum")
)

// LimitError reports the first parameter found outside its supported range.
type LimitError struct {
	Kind  Kind
	Field Field
	Value int
	Bound int
}

func (e *LimitError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case AboveMaximum:
		return fmt.Sprintf("maximum %d %s (got %d)", e.Bound, e.Field.plural(), e.Value)
	default:
		return fmt.Sprintf("%s must be at least %d (got %d)", e.Field.label(), e.Bound, e.Value)
	}
}

// Is lets errors.Is match the kind sentinels.
func (e *LimitError) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrBelowMinimum:
		return e.Kind == BelowMinimum
	case ErrAboveMaximum:
		return e.Kind == AboveMaximum
	}
	return false
}

// IsKind reports whether err is a LimitError of the given kind.
func IsKind(err error, kind Kind) bool {
	var le *LimitError
	if errors.As(err, &le) {
		return le.Kind == kind
	}
	return false
}

func (f Field) label() string {
	switch f {
	case FieldTransformCount:
		return "transform count"
	case FieldIterations:
		return "iterations"
	}
	return string(f)
}

func (f Field) plural() string {
	switch f {
	case FieldTransformCount:
		return "transforms"
	case FieldIterations:
		return "iterations"
	}
	return string(f)
}
