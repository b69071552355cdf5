package types

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Number is one leaf of a hierarchical quantity: a decimal magnitude in a
// given unit of measure, optionally broken down by an inner Number that
// describes a nested packaging factor (e.g. "2 boxes" where each box is
// itself tracked as "3 bottles").
type Number struct {
	Qty   decimal.Decimal
	Uom   uuid.UUID
	Inner *Number
}

// NewNumber builds a Number leaf.
func NewNumber(qty decimal.Decimal, uom uuid.UUID, inner *Number) Number {
	return Number{Qty: qty, Uom: uom, Inner: inner}
}

// nestingKey identifies the structural shape of a Number (its UoM and the
// UoM chain of its inner packaging), ignoring magnitude. Two numbers with
// the same nestingKey can be merged by summing their magnitudes.
func (n Number) nestingKey() string {
	var sb strings.Builder
	cur := &n
	for cur != nil {
		sb.WriteString(cur.Uom.String())
		if cur.Inner == nil {
			break
		}
		sb.WriteByte('/')
		cur = cur.Inner
	}
	return sb.String()
}

func (n Number) isZero() bool {
	return n.Qty.IsZero()
}

func (n Number) negate() Number {
	return Number{Qty: n.Qty.Neg(), Uom: n.Uom, Inner: n.Inner}
}

// Qty is an ordered, canonicalised sequence of Number leaves. Canonical form
// merges leaves that share a nestingKey and sorts the remainder by that key,
// so structural equality reduces to a slice comparison.
type Qty struct {
	Numbers []Number
}

// NewQty canonicalises an arbitrary slice of leaves: same-UoM-same-nesting
// components are merged by summing magnitudes, then the result is sorted so
// equality and serialization are order-independent of the caller.
func NewQty(numbers []Number) Qty {
	merged := make(map[string]Number, len(numbers))
	order := make([]string, 0, len(numbers))
	for _, n := range numbers {
		key := n.nestingKey()
		if existing, ok := merged[key]; ok {
			existing.Qty = existing.Qty.Add(n.Qty)
			merged[key] = existing
		} else {
			merged[key] = n
			order = append(order, key)
		}
	}
	sort.Strings(order)
	out := make([]Number, 0, len(order))
	for _, key := range order {
		out = append(out, merged[key])
	}
	return Qty{Numbers: out}
}

// ZeroQty is the empty quantity.
func ZeroQty() Qty { return Qty{} }

// IsZero reports whether every leaf magnitude is zero (or there are none).
func (q Qty) IsZero() bool {
	for _, n := range q.Numbers {
		if !n.isZero() {
			return false
		}
	}
	return true
}

// Add merges two quantities, summing magnitudes of leaves that share a
// nestingKey and keeping distinct-UoM leaves side by side.
func (q Qty) Add(other Qty) Qty {
	return NewQty(append(append([]Number{}, q.Numbers...), other.Numbers...))
}

// Sub is Add(other.Neg()); it may produce negative leaf magnitudes, which is
// legal and represents an over-issued balance.
func (q Qty) Sub(other Qty) Qty {
	return q.Add(other.Neg())
}

// Neg flips the sign of every leaf magnitude. The nested packaging factor
// (Inner) describes structure, not a separate signed quantity, so only the
// outer magnitude of each leaf is negated.
func (q Qty) Neg() Qty {
	out := make([]Number, len(q.Numbers))
	for i, n := range q.Numbers {
		out[i] = n.negate()
	}
	return Qty{Numbers: out}
}

// Equal is structural equality over the canonical, ordered leaf sequence.
func (q Qty) Equal(other Qty) bool {
	if len(q.Numbers) != len(other.Numbers) {
		return false
	}
	for i := range q.Numbers {
		a, b := q.Numbers[i], other.Numbers[i]
		if a.Uom != b.Uom || !a.Qty.Equal(b.Qty) {
			return false
		}
		if (a.Inner == nil) != (b.Inner == nil) {
			return false
		}
		if a.Inner != nil && a.Inner.nestingKey() != b.Inner.nestingKey() {
			return false
		}
	}
	return true
}

// FirstNonZeroMagnitude returns the magnitude of the first canonical leaf
// with a non-zero quantity, used by auto-cost resolution (I4) to derive a
// per-unit cost from a batch's current balance. It returns zero when every
// leaf is zero.
func (q Qty) FirstNonZeroMagnitude() decimal.Decimal {
	for _, n := range q.Numbers {
		if !n.isZero() {
			return n.Qty
		}
	}
	return decimal.Zero
}
