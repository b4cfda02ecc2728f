package rebalance

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Weight is the fraction of the parent's target value desired for a child.
// Sibling weights are expected to sum to one.
type Weight struct {
	value decimal.Decimal
}

func W[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Weight {
	return Weight{value: newDecimal(value)}
}

var hundred = decimal.NewFromInt(100)

// ParseWeight parses a percentage string like "40%" into a Weight.
// The percentage must be between 0 and 100.
func ParseWeight(s string) (Weight, error) {
	p, ok := strings.CutSuffix(s, "%")
	if !ok {
		return Weight{}, fmt.Errorf("invalid weight %q: missing %% suffix", s)
	}
	value, err := decimal.NewFromString(strings.TrimSpace(p))
	if err != nil {
		return Weight{}, fmt.Errorf("invalid weight %q: %w", s, err)
	}
	if value.IsNegative() || value.GreaterThan(hundred) {
		return Weight{}, fmt.Errorf("invalid weight %q: must be between 0%% and 100%%", s)
	}
	return Weight{value: value.Div(hundred)}, nil
}

// One is the weight of a whole parent, the sum all sibling weights must reach.
func One() Weight { return Weight{value: decimal.NewFromInt(1)} }

func (w Weight) Equal(v Weight) bool    { return w.value.Equal(v.value) }
func (w Weight) LessThan(v Weight) bool { return w.value.LessThan(v.value) }
func (w Weight) Add(v Weight) Weight    { return Weight{value: w.value.Add(v.value)} }
func (w Weight) Sub(v Weight) Weight    { return Weight{value: w.value.Sub(v.value)} }
func (w Weight) IsZero() bool           { return w.value.IsZero() }
func (w Weight) IsNegative() bool       { return w.value.IsNegative() }

// String renders the weight back as a percentage, e.g. "40%".
func (w Weight) String() string {
	return w.value.Mul(hundred).String() + "%"
}
