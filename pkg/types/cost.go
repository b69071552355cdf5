package types

import "github.com/shopspring/decimal"

// costScale is the number of fractional digits Mul and Div round a Cost to.
// Amount.String() prints no trailing zeros, so 20 at this scale prints "20".
const costScale = 4

// Cost is a signed decimal amount of money. It wraps shopspring/decimal,
// which backs it with an arbitrary-precision scaled integer so costs never
// drift the way a float64 ledger would.
type Cost struct {
	Amount decimal.Decimal
}

// NewCost wraps a decimal amount as a Cost.
func NewCost(amount decimal.Decimal) Cost {
	return Cost{Amount: amount}
}

// CostFromInt is a convenience constructor for test fixtures and literals.
func CostFromInt(v int64) Cost {
	return Cost{Amount: decimal.NewFromInt(v)}
}

// ZeroCost is the additive identity.
func ZeroCost() Cost { return Cost{Amount: decimal.Zero} }

func (c Cost) IsZero() bool { return c.Amount.IsZero() }

func (c Cost) Add(other Cost) Cost { return Cost{Amount: c.Amount.Add(other.Amount)} }

func (c Cost) Sub(other Cost) Cost { return Cost{Amount: c.Amount.Sub(other.Amount)} }

func (c Cost) Neg() Cost { return Cost{Amount: c.Amount.Neg()} }

func (c Cost) Equal(other Cost) bool { return c.Amount.Equal(other.Amount) }

func (c Cost) LessThan(other Cost) bool { return c.Amount.LessThan(other.Amount) }

func (c Cost) GreaterThan(other Cost) bool { return c.Amount.GreaterThan(other.Amount) }

// Mul scales a cost by an arbitrary decimal factor, rounded to costScale
// using banker's rounding (round-half-to-even), as required for auto-cost
// resolution.
func (c Cost) Mul(factor decimal.Decimal) Cost {
	return Cost{Amount: c.Amount.Mul(factor).RoundBank(costScale)}
}

// Div divides a cost by a decimal quantity, rounded to costScale using
// banker's rounding. Division by zero returns ZeroCost rather than
// panicking; callers (unit-cost resolution) only reach here once they have
// already checked for a non-zero divisor.
func (c Cost) Div(divisor decimal.Decimal) Cost {
	if divisor.IsZero() {
		return ZeroCost()
	}
	return Cost{Amount: c.Amount.DivRound(divisor, costScale).RoundBank(costScale)}
}
