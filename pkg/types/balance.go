package types

// BalanceForGoods is the accumulated (qty, cost) position of a single
// (store, goods, batch) at some point in the ledger.
type BalanceForGoods struct {
	Qty  Qty
	Cost Cost
}

// ZeroBalance is the additive identity; a batch that has never been touched
// has this balance.
func ZeroBalance() BalanceForGoods { return BalanceForGoods{Qty: ZeroQty(), Cost: ZeroCost()} }

func (b BalanceForGoods) IsZero() bool { return b.Qty.IsZero() && b.Cost.IsZero() }

// Plus applies a signed delta to a balance. Balances may legally go
// negative: an Issue exceeding the recorded Receives represents an
// unresolved, over-issued position and must still be stored and reported.
func (b BalanceForGoods) Plus(d BalanceDelta) BalanceForGoods {
	return BalanceForGoods{Qty: b.Qty.Add(d.Qty), Cost: b.Cost.Add(d.Cost)}
}

func (b BalanceForGoods) Equal(other BalanceForGoods) bool {
	return b.Qty.Equal(other.Qty) && b.Cost.Equal(other.Cost)
}

// BalanceDelta is the signed (qty, cost) effect of a single operation:
// positive for Receive, negative for Issue.
type BalanceDelta struct {
	Qty  Qty
	Cost Cost
}

// ZeroDelta is the additive identity for deltas.
func ZeroDelta() BalanceDelta { return BalanceDelta{Qty: ZeroQty(), Cost: ZeroCost()} }

func (d BalanceDelta) IsZero() bool { return d.Qty.IsZero() && d.Cost.IsZero() }

func (d BalanceDelta) Add(other BalanceDelta) BalanceDelta {
	return BalanceDelta{Qty: d.Qty.Add(other.Qty), Cost: d.Cost.Add(other.Cost)}
}

func (d BalanceDelta) Sub(other BalanceDelta) BalanceDelta {
	return BalanceDelta{Qty: d.Qty.Sub(other.Qty), Cost: d.Cost.Sub(other.Cost)}
}

func (d BalanceDelta) Neg() BalanceDelta {
	return BalanceDelta{Qty: d.Qty.Neg(), Cost: d.Cost.Neg()}
}
