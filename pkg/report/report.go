// Package report implements the read side of the ledger: get_report,
// get_report_for_storage and get_balance_for_all (spec §4.4). All three
// start from the nearest checkpoint at or before the window they cover and
// replay only the operations since, rather than scanning the full
// operation log from the beginning of time.
package report

import (
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/digitaiam/wh-ledger/pkg/checkpoint"
	"github.com/digitaiam/wh-ledger/pkg/topology"
	"github.com/digitaiam/wh-ledger/pkg/types"
)

// Line is one (store, goods, batch) row of a report: the opening and
// closing balances for the window, plus the receive/issue turnover that
// explains the difference between them.
type Line struct {
	Store   types.StoreID
	Goods   types.GoodsID
	Batch   types.Batch
	Open    types.BalanceForGoods
	Receive types.BalanceDelta
	Issue   types.BalanceDelta
	Close   types.BalanceForGoods
}

// Reader answers report queries against a transaction. It is cheap to
// construct per call; it holds no state of its own beyond the two ordered
// topologies it reads through.
type Reader struct {
	store  topology.Topology
	global topology.Topology
}

// NewReader builds a report reader over the standard pair of ordered
// topologies.
func NewReader() *Reader {
	return &Reader{store: topology.NewStoreDateTypeBatch(), global: topology.NewDateTypeStoreBatch()}
}

// GetReport returns the single (store, goods, batch) line for [from, to).
func (r *Reader) GetReport(tx *bolt.Tx, store types.StoreID, goods types.GoodsID, batch types.Batch, from, to time.Time) (Line, error) {
	open, openedAt, err := checkpoint.GetBalanceBeforeDate(tx, store, goods, batch, from)
	if err != nil {
		return Line{}, err
	}
	gap, err := r.store.OpsForStoreGoodsBatch(tx, store, goods, batch, openedAt, from)
	if err != nil {
		return Line{}, err
	}
	for _, so := range gap {
		open = open.Plus(so.Op.Operation.Delta())
	}
	ops, err := r.store.OpsForStoreGoodsBatch(tx, store, goods, batch, from, to)
	if err != nil {
		return Line{}, err
	}
	return buildLine(store, goods, batch, open, ops), nil
}

// GetReportForStorage returns one line per (goods, batch) pair that had any
// activity in [from, to) for store, ordered by goods then by batch (date,
// id). A pair with no operation in the window gets no line, even when its
// opening balance is nonzero, and no line is dropped for being all zero.
func (r *Reader) GetReportForStorage(tx *bolt.Tx, store types.StoreID, from, to time.Time) ([]Line, error) {
	ops, err := r.store.OpsForStore(tx, store, from, to)
	if err != nil {
		return nil, err
	}

	type key struct {
		Goods types.GoodsID
		Batch types.Batch
	}
	byKey := map[key][]topology.StoredOp{}
	var order []key
	for _, so := range ops {
		k := key{Goods: so.Op.Goods, Batch: so.Op.Batch}
		if _, ok := byKey[k]; !ok {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], so)
	}

	lines := make([]Line, 0, len(order))
	for _, k := range order {
		open, openedAt, err := checkpoint.GetBalanceBeforeDate(tx, store, k.Goods, k.Batch, from)
		if err != nil {
			return nil, err
		}
		gap, err := r.store.OpsForStoreGoodsBatch(tx, store, k.Goods, k.Batch, openedAt, from)
		if err != nil {
			return nil, err
		}
		for _, so := range gap {
			open = open.Plus(so.Op.Operation.Delta())
		}
		lines = append(lines, buildLine(store, k.Goods, k.Batch, open, byKey[k]))
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Goods != lines[j].Goods {
			return lessUUID(lines[i].Goods, lines[j].Goods)
		}
		return lines[i].Batch.Less(lines[j].Batch)
	})
	return lines, nil
}

// GetBalanceForAll returns every (store, goods, batch) balance as of at,
// nested store -> goods -> batch, via the checkpoint series.
func (r *Reader) GetBalanceForAll(tx *bolt.Tx, at time.Time) (map[types.StoreID]map[types.GoodsID]map[types.Batch]types.BalanceForGoods, error) {
	return checkpoint.GetBalancesForAll(tx, at)
}

func buildLine(store types.StoreID, goods types.GoodsID, batch types.Batch, open types.BalanceForGoods, ops []topology.StoredOp) Line {
	line := Line{Store: store, Goods: goods, Batch: batch, Open: open, Receive: types.ZeroDelta(), Issue: types.ZeroDelta()}
	close := open
	for _, so := range ops {
		d := so.Op.Operation.Delta()
		if so.Op.Operation.IsIssueLike() {
			line.Issue = line.Issue.Add(d)
		} else {
			line.Receive = line.Receive.Add(d)
		}
		close = close.Plus(d)
	}
	line.Close = close
	return line
}

func lessUUID(a, b types.GoodsID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
