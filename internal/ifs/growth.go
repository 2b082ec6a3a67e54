package ifs

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/dustin/go-humanize"
)

// CalculatePointCount returns transformCount^iterations, the theoretical
// maximum number of points after every transform is applied to every point
// on each iteration. Inputs are not range checked; any non-negative pair
// gives an exact result. Negative inputs are rejected as BelowMinimum with
// bound 0.
func CalculatePointCount(transformCount, iterations int) (*big.Int, error) {
	if transformCount < 0 {
		return nil, &LimitError{Kind: BelowMinimum, Field: FieldTransformCount, Value: transformCount, Bound: 0}
	}
	if iterations < 0 {
		return nil, &LimitError{Kind: BelowMinimum, Field: FieldIterations, Value: iterations, Bound: 0}
	}
	return new(big.Int).Exp(big.NewInt(int64(transformCount)), big.NewInt(int64(iterations)), nil), nil
}

// MaxUncheckedBits caps the size of unchecked counts served to remote callers.
const MaxUncheckedBits = 4096

// ErrTooLarge is returned by BoundedPointCount when the result would exceed
// the requested bit size.
var ErrTooLarge = errors.New("point count too large")

// BoundedPointCount is CalculatePointCount for untrusted input. It refuses
// pairs whose result could need more than maxBits bits before doing any
// exponentiation.
func BoundedPointCount(transformCount, iterations, maxBits int) (*big.Int, error) {
	if transformCount < 0 || iterations < 0 {
		return CalculatePointCount(transformCount, iterations)
	}
	if width := bits.Len(uint(transformCount)); transformCount > 1 && iterations > maxBits/width {
		return nil, fmt.Errorf("%w: %d^%d exceeds %d bits", ErrTooLarge, transformCount, iterations, maxBits)
	}
	return CalculatePointCount(transformCount, iterations)
}

// MustPointCount is CalculatePointCount for callers that already validated
// their input. It panics on negative input or when the result overflows uint64.
func MustPointCount(transformCount, iterations int) uint64 {
	if transformCount < 0 || iterations < 0 {
		panic(fmt.Sprintf("ifs: negative point count input (%d, %d)", transformCount, iterations))
	}
	base := uint64(transformCount)
	result := uint64(1)
	for i := 0; i < iterations; i++ {
		hi, lo := bits.Mul64(result, base)
		if hi != 0 {
			panic(fmt.Sprintf("ifs: point count %d^%d overflows uint64", transformCount, iterations))
		}
		result = lo
	}
	return result
}

// Tier buckets a point count for pre-flight performance warnings.
type Tier string

const (
	TierLight    Tier = "light"
	TierModerate Tier = "moderate"
	TierHeavy    Tier = "heavy"
	TierExtreme  Tier = "extreme"
)

// Upper bounds (inclusive) for each tier.
const (
	LightMaxPoints    = 100_000
	ModerateMaxPoints = 1_000_000
	HeavyMaxPoints    = 16_777_216
)

// Estimate is a validated point count with its tier.
type Estimate struct {
	TransformCount int      `json:"transform_count"`
	Iterations     int      `json:"iterations"`
	PointCount     *big.Int `json:"point_count"`
	Tier           Tier     `json:"tier"`
	Warning        string   `json:"warning,omitempty"`
}

// ClassifyPointCount returns the tier for n.
func ClassifyPointCount(n *big.Int) Tier {
	switch {
	case n.Cmp(big.NewInt(LightMaxPoints)) <= 0:
		return TierLight
	case n.Cmp(big.NewInt(ModerateMaxPoints)) <= 0:
		return TierModerate
	case n.Cmp(big.NewInt(HeavyMaxPoints)) <= 0:
		return TierHeavy
	default:
		return TierExtreme
	}
}

// Assess validates the parameters and, if they are in range, estimates the
// point count and attaches a warning for heavy or extreme graphs.
func Assess(transformCount, iterations int) (*Estimate, error) {
	if err := EnforceIterationLimits(transformCount, iterations); err != nil {
		return nil, err
	}
	n, err := CalculatePointCount(transformCount, iterations)
	if err != nil {
		return nil, err
	}

	est := &Estimate{
		TransformCount: transformCount,
		Iterations:     iterations,
		PointCount:     n,
		Tier:           ClassifyPointCount(n),
	}
	switch est.Tier {
	case TierHeavy:
		est.Warning = fmt.Sprintf("%s points: expect slow evaluation, consider instanced output", bigComma(n))
	case TierExtreme:
		est.Warning = fmt.Sprintf("%s points: evaluation may exhaust memory, reduce iterations", bigComma(n))
	}
	return est, nil
}

// bigComma formats n with thousands separators. humanize.BigComma divides
// its argument in place, so it only ever sees a copy.
func bigComma(n *big.Int) string {
	return humanize.BigComma(new(big.Int).Set(n))
}

// GrowthTable assesses every (transforms, iterations) pair, row-major by
// transform count. Pairs outside the envelope fail the whole table.
func GrowthTable(transforms, iterations []int) ([][]*Estimate, error) {
	table := make([][]*Estimate, 0, len(transforms))
	for _, t := range transforms {
		row := make([]*Estimate, 0, len(iterations))
		for _, i := range iterations {
			est, err := Assess(t, i)
			if err != nil {
				return nil, err
			}
			row = append(row, est)
		}
		table = append(table, row)
	}
	return table, nil
}

// Span returns the inclusive integer range [from, to].
func Span(from, to int) []int {
	if to < from {
		return nil
	}
	out := make([]int, 0, to-from+1)
	for v := from; v <= to; v++ {
		out = append(out, v)
	}
	return out
}
