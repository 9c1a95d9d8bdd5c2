package pricev1

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidTick is returned when a price value is not a multiple of its
// tick increment, or the tick itself is not positive.
var ErrInvalidTick = errors.New("price must be a multiple of the tick size")

// DefaultTick is the default price increment, one hundredth of a unit.
var DefaultTick = decimal.New(1, -2)

// Price is an immutable monetary value validated against a fixed tick
// increment. Two prices are equal iff their values are equal; the tick used
// to validate them does not participate in equality or ordering.
type Price struct {
	value decimal.Decimal
	tick  decimal.Decimal
}

// New constructs a Price, failing with ErrInvalidTick unless value is an
// exact multiple of tick.
func New(value, tick decimal.Decimal) (Price, error) {
	if tick.Sign() <= 0 {
		return Price{}, fmt.Errorf("%w: tick %s is not positive", ErrInvalidTick, tick)
	}
	if !value.Mod(tick).IsZero() {
		return Price{}, fmt.Errorf("%w: %s is not a multiple of %s", ErrInvalidTick, value, tick)
	}
	return Price{value: value, tick: tick}, nil
}

// NewDefault constructs a Price validated against DefaultTick.
func NewDefault(value decimal.Decimal) (Price, error) {
	return New(value, DefaultTick)
}

// MustParse constructs a Price from a decimal string at the default tick and
// panics on failure. Intended for tests and static configuration.
func MustParse(value string) Price {
	p, err := NewDefault(decimal.RequireFromString(value))
	if err != nil {
		panic(err)
	}
	return p
}

// Value returns the exact decimal value.
func (p Price) Value() decimal.Decimal {
	return p.value
}

// Tick returns the increment the price was validated against.
func (p Price) Tick() decimal.Decimal {
	return p.tick
}

// Cmp compares two prices by value: -1 if p < other, 0 if equal, +1 if p > other.
func (p Price) Cmp(other Price) int {
	return p.value.Cmp(other.value)
}

// Equal reports whether the two prices have equal values, regardless of the
// ticks used to construct them.
func (p Price) Equal(other Price) bool {
	return p.value.Equal(other.value)
}

// LessThan reports whether p is strictly below other.
func (p Price) LessThan(other Price) bool {
	return p.Cmp(other) < 0
}

// GreaterThan reports whether p is strictly above other.
func (p Price) GreaterThan(other Price) bool {
	return p.Cmp(other) > 0
}

func (p Price) String() string {
	return p.value.String()
}
