package pricev1

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Test 1: construction succeeds iff value is a multiple of tick
func TestNew_TickValidation(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		tick    string
		wantErr bool
	}{
		{"exact multiple", "100.00", "0.01", false},
		{"whole number coarse tick", "105.25", "0.25", false},
		{"zero value", "0", "0.01", false},
		{"sub-tick value", "100.005", "0.01", true},
		{"off-grid coarse tick", "100.30", "0.25", true},
		{"zero tick", "100.00", "0", true},
		{"negative tick", "100.00", "-0.01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(decimal.RequireFromString(tt.value), decimal.RequireFromString(tt.tick))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTick)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// Test 2: equal values with different tick inputs are equal prices
func TestPrice_EqualityIgnoresTick(t *testing.T) {
	a, err := New(decimal.RequireFromString("100.00"), decimal.RequireFromString("0.01"))
	require.NoError(t, err)
	b, err := New(decimal.RequireFromString("100.00"), decimal.RequireFromString("0.25"))
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Zero(t, a.Cmp(b))
}

// Test 3: ordering by value
func TestPrice_Ordering(t *testing.T) {
	low := MustParse("99.99")
	high := MustParse("100.00")

	assert.True(t, low.LessThan(high))
	assert.True(t, high.GreaterThan(low))
	assert.Equal(t, -1, low.Cmp(high))
	assert.Equal(t, 1, high.Cmp(low))
}

// Test 4: no binary floating point drift on decimal values
func TestPrice_ExactDecimal(t *testing.T) {
	// 0.1 + 0.2 is the classic float trap; decimals must stay exact.
	p := MustParse("0.30")
	sum := decimal.RequireFromString("0.10").Add(decimal.RequireFromString("0.20"))
	assert.True(t, p.Value().Equal(sum))
}

// Property: any tick-aligned value constructs, any off-grid value fails.
func TestPrice_TickProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ticks := rapid.Int64Range(-1_000_000, 1_000_000).Draw(t, "ticks")
		value := decimal.New(ticks, -2)

		p, err := NewDefault(value)
		require.NoError(t, err)
		require.True(t, p.Value().Equal(value))

		// shift off the grid by a sub-tick amount
		offGrid := value.Add(decimal.New(5, -3))
		_, err = NewDefault(offGrid)
		require.ErrorIs(t, err, ErrInvalidTick)
	})
}
