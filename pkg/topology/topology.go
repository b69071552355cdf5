// Package topology implements the two ordered secondary indices the
// ledger keeps over its operation log: StoreDateTypeBatch and
// DateTypeStoreBatch. Both store the same Op records under different byte
// keys (spec §4.1); which one a query uses depends on whether it is
// scoped to a single store or needs to range across all stores.
//
// Each topology is deliberately its own type with its own key builder: the
// spec is explicit that the two must not share byte-level code, because
// the key layout is the contract, not an implementation detail to factor
// out.
package topology

import (
	"bytes"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/digitaiam/wh-ledger/pkg/codec"
	"github.com/digitaiam/wh-ledger/pkg/types"
	"github.com/digitaiam/wh-ledger/pkg/wherr"
)

// StoredOp is one record as kept in an ordered topology: the operation
// itself plus the cumulative balance reached immediately after it within
// its (store, goods, batch) chain. The balance is a read-time shortcut,
// always recomputable by rescanning the chain from zero.
type StoredOp struct {
	Op           types.Op
	BalanceAfter types.BalanceForGoods
}

// Topology is the common interface both ordered indices implement.
type Topology interface {
	// BucketName is the column family (bbolt bucket) this topology owns.
	BucketName() []byte

	// PutOp idempotently writes (key, {op, balanceAfter}); writing the same
	// op twice with the same balance is a no-op observable by readers.
	PutOp(tx *bolt.Tx, op types.Op, balanceAfter types.BalanceForGoods) error

	// DelOp removes an op's record by its canonical key.
	DelOp(tx *bolt.Tx, op types.Op) error

	// OpsForStore returns every record for one store with date in
	// [from, to), in key order.
	OpsForStore(tx *bolt.Tx, store types.StoreID, from, to time.Time) ([]StoredOp, error)

	// OpsForStoreGoodsBatch returns every record for one (store, goods,
	// batch) triple with date in [from, to), in key order.
	OpsForStoreGoodsBatch(tx *bolt.Tx, store types.StoreID, goods types.GoodsID, batch types.Batch, from, to time.Time) ([]StoredOp, error)

	// OpsAll returns every record across all stores with date in
	// [from, to), in key order. Only DateTypeStoreBatch can serve this
	// efficiently; StoreDateTypeBatch implements it by scanning its whole
	// bucket.
	OpsAll(tx *bolt.Tx, from, to time.Time) ([]StoredOp, error)

	// NextOp returns the first record for the same (store, goods, batch)
	// chain that sorts strictly after op's key, or nil if none.
	NextOp(tx *bolt.Tx, op types.Op) (*StoredOp, error)

	// PrevOp returns the last record for the same (store, goods, batch)
	// chain that sorts strictly before op's key, or nil if none.
	PrevOp(tx *bolt.Tx, op types.Op) (*StoredOp, error)

	// BalanceBefore reads the balance stored on the previous same-(store,
	// goods, batch) record, or the zero balance if op has no predecessor.
	BalanceBefore(tx *bolt.Tx, op types.Op) (types.BalanceForGoods, error)
}

// storedValue is the CBOR-serialized shape of a topology value.
type storedValue struct {
	ID            types.OperationID
	Date          time.Time
	Store         types.StoreID
	TransferStore *types.StoreID
	Goods         types.GoodsID
	BatchID       types.OperationID
	BatchDate     time.Time
	Kind          types.OpKind
	Mode          types.Mode
	Qty           types.Qty
	Cost          types.Cost
	IsDependent   bool
	BalanceQty    types.Qty
	BalanceCost   types.Cost
}

func toStoredValue(op types.Op, balance types.BalanceForGoods) storedValue {
	return storedValue{
		ID:            op.ID,
		Date:          op.Date,
		Store:         op.Store,
		TransferStore: op.TransferStore,
		Goods:         op.Goods,
		BatchID:       op.Batch.ID,
		BatchDate:     op.Batch.Date,
		Kind:          op.Operation.Kind,
		Mode:          op.Operation.Mode,
		Qty:           op.Operation.Qty,
		Cost:          op.Operation.Cost,
		IsDependent:   op.IsDependent,
		BalanceQty:    balance.Qty,
		BalanceCost:   balance.Cost,
	}
}

func (v storedValue) toStoredOp() StoredOp {
	return StoredOp{
		Op: types.Op{
			ID:            v.ID,
			Date:          v.Date,
			Store:         v.Store,
			TransferStore: v.TransferStore,
			Goods:         v.Goods,
			Batch:         types.Batch{ID: v.BatchID, Date: v.BatchDate},
			Operation:     types.InternalOperation{Kind: v.Kind, Mode: v.Mode, Qty: v.Qty, Cost: v.Cost},
			IsDependent:   v.IsDependent,
		},
		BalanceAfter: types.BalanceForGoods{Qty: v.BalanceQty, Cost: v.BalanceCost},
	}
}

// bucket fetches this topology's column family, treating a missing bucket
// as the Inconsistent error the spec calls for (spec §7: Inconsistent
// "includes missing column family").
func bucket(tx *bolt.Tx, name []byte) (*bolt.Bucket, error) {
	b := tx.Bucket(name)
	if b == nil {
		return nil, wherr.New(wherr.Inconsistent, "missing column family "+string(name))
	}
	return b, nil
}

// putOp writes op under key in the named bucket, CBOR-encoding the stored
// value. Shared by both topology implementations; only the key layout
// differs between them.
func putOp(tx *bolt.Tx, bucketName, key []byte, op types.Op, balance types.BalanceForGoods) error {
	b, err := bucket(tx, bucketName)
	if err != nil {
		return err
	}
	val, err := codec.Encode(toStoredValue(op, balance))
	if err != nil {
		return err
	}
	if err := b.Put(key, val); err != nil {
		return wherr.Wrap(wherr.StorageIO, "put op failed", err)
	}
	return nil
}

// delOp removes the record at key in the named bucket.
func delOp(tx *bolt.Tx, bucketName, key []byte) error {
	b, err := bucket(tx, bucketName)
	if err != nil {
		return err
	}
	if err := b.Delete(key); err != nil {
		return wherr.Wrap(wherr.StorageIO, "delete op failed", err)
	}
	return nil
}

func decodeStoredOp(val []byte) (StoredOp, error) {
	var sv storedValue
	if err := codec.Decode(val, &sv); err != nil {
		return StoredOp{}, err
	}
	return sv.toStoredOp(), nil
}

// scanAll walks every record in a bucket in key order, keeping those that
// pass filter (a nil filter keeps everything).
func scanAll(tx *bolt.Tx, bucketName []byte, filter func(StoredOp) bool) ([]StoredOp, error) {
	b, err := bucket(tx, bucketName)
	if err != nil {
		return nil, err
	}
	var out []StoredOp
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		so, err := decodeStoredOp(v)
		if err != nil {
			return nil, err
		}
		if filter == nil || filter(so) {
			out = append(out, so)
		}
	}
	return out, nil
}

// scanPrefix walks every record whose key starts with prefix, in key order.
func scanPrefix(tx *bolt.Tx, bucketName, prefix []byte, filter func(StoredOp) bool) ([]StoredOp, error) {
	b, err := bucket(tx, bucketName)
	if err != nil {
		return nil, err
	}
	var out []StoredOp
	c := b.Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		so, err := decodeStoredOp(v)
		if err != nil {
			return nil, err
		}
		if filter == nil || filter(so) {
			out = append(out, so)
		}
	}
	return out, nil
}

// scanDateRange walks every record whose leading 8-byte date component lies
// in [lowDate, highDate), in key order. Used by topologies whose key begins
// with the date (DateTypeStoreBatch); store/goods/batch scoping within the
// range is left to the caller's filter.
func scanDateRange(tx *bolt.Tx, bucketName []byte, lowDate, highDate [8]byte, filter func(StoredOp) bool) ([]StoredOp, error) {
	b, err := bucket(tx, bucketName)
	if err != nil {
		return nil, err
	}
	var out []StoredOp
	c := b.Cursor()
	for k, v := c.Seek(lowDate[:]); k != nil && bytes.Compare(k, highDate[:]) < 0; k, v = c.Next() {
		so, err := decodeStoredOp(v)
		if err != nil {
			return nil, err
		}
		if filter == nil || filter(so) {
			out = append(out, so)
		}
	}
	return out, nil
}

// findNeighbor locates op by ID within an ordered slice of the same chain's
// records and returns the previous/next entry, or nil if op is absent or at
// an end.
func findNeighbor(chain []StoredOp, id types.OperationID, forward bool) *StoredOp {
	for i, so := range chain {
		if so.Op.ID == id {
			if forward {
				if i+1 < len(chain) {
					return &chain[i+1]
				}
				return nil
			}
			if i > 0 {
				return &chain[i-1]
			}
			return nil
		}
	}
	return nil
}
