package topology

import (
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/digitaiam/wh-ledger/pkg/types"
)

// storeDateTypeBucket is the bbolt column family name for this topology
// (spec §4.1: cf_store_date_type_batch_id).
var storeDateTypeBucket = []byte("cf_store_date_type_batch_id")

// storeDateTypeBatch orders records by store(16)‖date(8)‖type(1)‖goods(16)‖
// batch.date(8)‖batch.id(16)‖op-id(16). It answers "everything that
// happened in this store" efficiently, by key prefix; queries scoped to a
// single (goods, batch) chain scan the whole store range and filter.
type storeDateTypeBatch struct{}

// NewStoreDateTypeBatch constructs the StoreDateTypeBatch ordered topology.
func NewStoreDateTypeBatch() Topology { return storeDateTypeBatch{} }

func (storeDateTypeBatch) BucketName() []byte { return storeDateTypeBucket }

func (t storeDateTypeBatch) PutOp(tx *bolt.Tx, op types.Op, balanceAfter types.BalanceForGoods) error {
	return putOp(tx, t.BucketName(), op.StoreDateTypeBatchKey(), op, balanceAfter)
}

func (t storeDateTypeBatch) DelOp(tx *bolt.Tx, op types.Op) error {
	return delOp(tx, t.BucketName(), op.StoreDateTypeBatchKey())
}

func (t storeDateTypeBatch) OpsForStore(tx *bolt.Tx, store types.StoreID, from, to time.Time) ([]StoredOp, error) {
	prefix := store[:]
	return scanPrefix(tx, t.BucketName(), prefix, func(so StoredOp) bool {
		return inRange(so.Op.Date, from, to)
	})
}

func (t storeDateTypeBatch) OpsForStoreGoodsBatch(tx *bolt.Tx, store types.StoreID, goods types.GoodsID, batch types.Batch, from, to time.Time) ([]StoredOp, error) {
	prefix := store[:]
	return scanPrefix(tx, t.BucketName(), prefix, func(so StoredOp) bool {
		return so.Op.Goods == goods && so.Op.Batch.ID == batch.ID && inRange(so.Op.Date, from, to)
	})
}

func (t storeDateTypeBatch) OpsAll(tx *bolt.Tx, from, to time.Time) ([]StoredOp, error) {
	return scanAll(tx, t.BucketName(), func(so StoredOp) bool {
		return inRange(so.Op.Date, from, to)
	})
}

func (t storeDateTypeBatch) chain(tx *bolt.Tx, op types.Op) ([]StoredOp, error) {
	return t.OpsForStoreGoodsBatch(tx, op.Store, op.Goods, op.Batch, types.Epoch, types.DateMax)
}

func (t storeDateTypeBatch) NextOp(tx *bolt.Tx, op types.Op) (*StoredOp, error) {
	chain, err := t.chain(tx, op)
	if err != nil {
		return nil, err
	}
	return findNeighbor(chain, op.ID, true), nil
}

func (t storeDateTypeBatch) PrevOp(tx *bolt.Tx, op types.Op) (*StoredOp, error) {
	chain, err := t.chain(tx, op)
	if err != nil {
		return nil, err
	}
	return findNeighbor(chain, op.ID, false), nil
}

func (t storeDateTypeBatch) BalanceBefore(tx *bolt.Tx, op types.Op) (types.BalanceForGoods, error) {
	prev, err := t.PrevOp(tx, op)
	if err != nil {
		return types.BalanceForGoods{}, err
	}
	if prev == nil {
		return types.ZeroBalance(), nil
	}
	return prev.BalanceAfter, nil
}

func inRange(d, from, to time.Time) bool {
	return !d.Before(from) && d.Before(to)
}
