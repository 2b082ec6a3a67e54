// Package ifs holds the parameter limits and growth arithmetic for the IFS
// fractal generator. Everything here is pure and safe for concurrent use.
package ifs

// Supported operating envelope. Iterations is a hard cap against geometry
// explosion; transforms is the current node-graph design limit.
const (
	MinTransforms = 1
	MaxTransforms = 8
	MinIterations = 1
	MaxIterations = 12
)

// EnforceIterationLimits checks transformCount and iterations against the
// supported envelope. Checks run transform count first, lower bound before
// upper bound, and only the first violation is returned.
func EnforceIterationLimits(transformCount, iterations int) error {
	if transformCount < MinTransforms {
		return &LimitError{Kind: BelowMinimum, Field: FieldTransformCount, Value: transformCount, Bound: MinTransforms}
	}
	if transformCount > MaxTransforms {
		return &LimitError{Kind: AboveMaximum, Field: FieldTransformCount, Value: transformCount, Bound: MaxTransforms}
	}

	if iterations < MinIterations {
		return &LimitError{Kind: BelowMinimum, Field: FieldIterations, Value: iterations, Bound: MinIterations}
	}
	if iterations > MaxIterations {
		return &LimitError{Kind: AboveMaximum, Field: FieldIterations, Value: iterations, Bound: MaxIterations}
	}

	return nil
}

// Limits describes the envelope for API and CLI consumers.
type Limits struct {
	MinTransforms int `json:"min_transforms"`
	MaxTransforms int `json:"max_transforms"`
	MinIterations int `json:"min_iterations"`
	MaxIterations int `json:"max_iterations"`
}

// CurrentLimits returns the envelope enforced by EnforceIterationLimits.
func CurrentLimits() Limits {
	return Limits{
		MinTransforms: MinTransforms,
		MaxTransforms: MaxTransforms,
		MinIterations: MinIterations,
		MaxIterations: MaxIterations,
	}
}
