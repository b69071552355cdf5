package topology

import (
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/digitaiam/wh-ledger/pkg/types"
)

// dateTypeStoreBucket is the bbolt column family name for this topology
// (spec §4.1: cf_date_type_store_batch_id).
var dateTypeStoreBucket = []byte("cf_date_type_store_batch_id")

// dateTypeStoreBatch orders records by date(8)‖type(1)‖store(16)‖goods(16)‖
// batch.date(8)‖batch.id(16)‖op-id(16). It answers "everything that
// happened across all stores in this window" efficiently, by key range. The
// report queries do not read it: they use StoreDateTypeBatch and the
// checkpoint series.
type dateTypeStoreBatch struct{}

// NewDateTypeStoreBatch constructs the DateTypeStoreBatch ordered topology.
func NewDateTypeStoreBatch() Topology { return dateTypeStoreBatch{} }

func (dateTypeStoreBatch) BucketName() []byte { return dateTypeStoreBucket }

func (t dateTypeStoreBatch) PutOp(tx *bolt.Tx, op types.Op, balanceAfter types.BalanceForGoods) error {
	return putOp(tx, t.BucketName(), op.DateTypeStoreBatchKey(), op, balanceAfter)
}

func (t dateTypeStoreBatch) DelOp(tx *bolt.Tx, op types.Op) error {
	return delOp(tx, t.BucketName(), op.DateTypeStoreBatchKey())
}

func (t dateTypeStoreBatch) OpsForStore(tx *bolt.Tx, store types.StoreID, from, to time.Time) ([]StoredOp, error) {
	low, high := types.EncodeSeconds(from), types.EncodeSeconds(to)
	return scanDateRange(tx, t.BucketName(), low, high, func(so StoredOp) bool {
		return so.Op.Store == store
	})
}

func (t dateTypeStoreBatch) OpsForStoreGoodsBatch(tx *bolt.Tx, store types.StoreID, goods types.GoodsID, batch types.Batch, from, to time.Time) ([]StoredOp, error) {
	low, high := types.EncodeSeconds(from), types.EncodeSeconds(to)
	return scanDateRange(tx, t.BucketName(), low, high, func(so StoredOp) bool {
		return so.Op.Store == store && so.Op.Goods == goods && so.Op.Batch.ID == batch.ID
	})
}

func (t dateTypeStoreBatch) OpsAll(tx *bolt.Tx, from, to time.Time) ([]StoredOp, error) {
	low, high := types.EncodeSeconds(from), types.EncodeSeconds(to)
	return scanDateRange(tx, t.BucketName(), low, high, nil)
}

func (t dateTypeStoreBatch) chain(tx *bolt.Tx, op types.Op) ([]StoredOp, error) {
	return t.OpsForStoreGoodsBatch(tx, op.Store, op.Goods, op.Batch, types.Epoch, types.DateMax)
}

func (t dateTypeStoreBatch) NextOp(tx *bolt.Tx, op types.Op) (*StoredOp, error) {
	chain, err := t.chain(tx, op)
	if err != nil {
		return nil, err
	}
	return findNeighbor(chain, op.ID, true), nil
}

func (t dateTypeStoreBatch) PrevOp(tx *bolt.Tx, op types.Op) (*StoredOp, error) {
	chain, err := t.chain(tx, op)
	if err != nil {
		return nil, err
	}
	return findNeighbor(chain, op.ID, false), nil
}

func (t dateTypeStoreBatch) BalanceBefore(tx *bolt.Tx, op types.Op) (types.BalanceForGoods, error) {
	prev, err := t.PrevOp(tx, op)
	if err != nil {
		return types.BalanceForGoods{}, err
	}
	if prev == nil {
		return types.ZeroBalance(), nil
	}
	return prev.BalanceAfter, nil
}
