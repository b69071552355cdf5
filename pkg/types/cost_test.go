package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCostArithmetic(t *testing.T) {
	a := CostFromInt(10)
	b := CostFromInt(3)

	assert.True(t, a.Add(b).Equal(CostFromInt(13)))
	assert.True(t, a.Sub(b).Equal(CostFromInt(7)))
	assert.True(t, a.Neg().Equal(CostFromInt(-10)))
	assert.True(t, ZeroCost().IsZero())
	assert.False(t, a.IsZero())
	assert.True(t, b.LessThan(a))
	assert.True(t, a.GreaterThan(b))
}

func TestCostMulRoundsBankToScale(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		factor   string
		expected string
	}{
		{name: "exact", amount: "10", factor: "2", expected: "20"},
		{name: "rounds half to even down", amount: "1", factor: "0.00005", expected: "0"},
		{name: "rounds half to even up", amount: "3", factor: "0.00005", expected: "0.0002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCost(dec(tt.amount))
			got := c.Mul(dec(tt.factor))
			assert.Equal(t, tt.expected, got.Amount.String())
		})
	}
}

func TestCostDiv(t *testing.T) {
	c := NewCost(dec("10"))

	divided := c.Div(dec("4"))
	assert.Equal(t, "2.5", divided.Amount.String())

	byZero := c.Div(dec("0"))
	assert.True(t, byZero.IsZero(), "division by zero must not panic and returns ZeroCost")
}
