// Package checkpoint implements CheckDateStoreBatch, the topology that
// bounds report and propagation scans: a running balance snapshot taken at
// the end of every checkpoint period (spec §4.2), per (store, goods,
// batch). Reports need only replay operations since the last checkpoint
// instead of from the beginning of time; propagation needs every
// checkpoint at or after an edit's date corrected by the edit's delta.
//
// The checkpoint key itself (period-end first) is built to make "find the
// checkpoint active at date D" a forward scan, which is the read path's hot
// query. That layout makes the opposite query — "every period recorded for
// this (store, goods, batch)" — expensive to answer directly, so a second
// bucket (the periods registry) indexes period-ends by (store, goods,
// batch) instead, and is consulted whenever propagation needs to walk a
// batch's checkpoint history.
package checkpoint

import (
	"bytes"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/digitaiam/wh-ledger/pkg/codec"
	"github.com/digitaiam/wh-ledger/pkg/metrics"
	"github.com/digitaiam/wh-ledger/pkg/types"
	"github.com/digitaiam/wh-ledger/pkg/wherr"
)

// BucketName is the bbolt column family holding balance snapshots (spec
// §4.2: cf_checkpoint_date_store_batch).
var BucketName = []byte("cf_checkpoint_date_store_batch")

// RegistryBucketName is a side index over BucketName, keyed the other way
// round, so every period-end recorded for a (store, goods, batch) can be
// enumerated without scanning the whole checkpoint bucket.
var RegistryBucketName = []byte("cf_checkpoint_periods_registry")

func checkpointBucket(tx *bolt.Tx) (*bolt.Bucket, error) {
	b := tx.Bucket(BucketName)
	if b == nil {
		return nil, wherr.New(wherr.Inconsistent, "missing column family "+string(BucketName))
	}
	return b, nil
}

func registryBucket(tx *bolt.Tx) (*bolt.Bucket, error) {
	b := tx.Bucket(RegistryBucketName)
	if b == nil {
		return nil, wherr.New(wherr.Inconsistent, "missing column family "+string(RegistryBucketName))
	}
	return b, nil
}

// checkpointKey renders period-end(8) ‖ store(16) ‖ goods(16) ‖
// batch.date(8) ‖ batch.id(16).
func checkpointKey(periodEnd time.Time, store types.StoreID, goods types.GoodsID, batch types.Batch) []byte {
	buf := make([]byte, 0, 8+16+16+8+16)
	pe := types.EncodeSeconds(periodEnd)
	buf = append(buf, pe[:]...)
	buf = append(buf, store[:]...)
	buf = append(buf, goods[:]...)
	bd := types.EncodeSeconds(batch.Date)
	buf = append(buf, bd[:]...)
	buf = append(buf, batch.ID[:]...)
	return buf
}

// registryKey renders store(16) ‖ goods(16) ‖ batch.date(8) ‖ batch.id(16)
// ‖ period-end(8): the same fields, ordered so a fixed triple's period-ends
// form a contiguous, ascending range.
func registryKey(store types.StoreID, goods types.GoodsID, batch types.Batch, periodEnd time.Time) []byte {
	buf := make([]byte, 0, 16+16+8+16+8)
	buf = append(buf, store[:]...)
	buf = append(buf, goods[:]...)
	bd := types.EncodeSeconds(batch.Date)
	buf = append(buf, bd[:]...)
	buf = append(buf, batch.ID[:]...)
	pe := types.EncodeSeconds(periodEnd)
	buf = append(buf, pe[:]...)
	return buf
}

func registryPrefix(store types.StoreID, goods types.GoodsID, batch types.Batch) []byte {
	buf := make([]byte, 0, 16+16+8+16)
	buf = append(buf, store[:]...)
	buf = append(buf, goods[:]...)
	bd := types.EncodeSeconds(batch.Date)
	buf = append(buf, bd[:]...)
	buf = append(buf, batch.ID[:]...)
	return buf
}

// triple identifies one (store, goods, batch) checkpoint series.
type triple struct {
	Store types.StoreID
	Goods types.GoodsID
	Batch types.Batch
}

// SetBalance records the balance at the end of periodEnd's period for a
// (store, goods, batch). A zero balance is pruned rather than stored (I3:
// checkpoints never carry dead weight for batches that net to nothing).
func SetBalance(tx *bolt.Tx, store types.StoreID, goods types.GoodsID, batch types.Batch, periodEnd time.Time, balance types.BalanceForGoods) error {
	if balance.IsZero() {
		return DelBalance(tx, store, goods, batch, periodEnd)
	}
	cb, err := checkpointBucket(tx)
	if err != nil {
		return err
	}
	rb, err := registryBucket(tx)
	if err != nil {
		return err
	}
	val, err := codec.Encode(balance)
	if err != nil {
		return err
	}
	if err := cb.Put(checkpointKey(periodEnd, store, goods, batch), val); err != nil {
		return wherr.Wrap(wherr.StorageIO, "put checkpoint failed", err)
	}
	if err := rb.Put(registryKey(store, goods, batch, periodEnd), []byte{}); err != nil {
		return wherr.Wrap(wherr.StorageIO, "put checkpoint registry entry failed", err)
	}
	metrics.CheckpointRolloversTotal.WithLabelValues("written").Inc()
	return nil
}

// DelBalance removes a checkpoint entry, if present.
func DelBalance(tx *bolt.Tx, store types.StoreID, goods types.GoodsID, batch types.Batch, periodEnd time.Time) error {
	cb, err := checkpointBucket(tx)
	if err != nil {
		return err
	}
	rb, err := registryBucket(tx)
	if err != nil {
		return err
	}
	if err := cb.Delete(checkpointKey(periodEnd, store, goods, batch)); err != nil {
		return wherr.Wrap(wherr.StorageIO, "delete checkpoint failed", err)
	}
	if err := rb.Delete(registryKey(store, goods, batch, periodEnd)); err != nil {
		return wherr.Wrap(wherr.StorageIO, "delete checkpoint registry entry failed", err)
	}
	metrics.CheckpointRolloversTotal.WithLabelValues("pruned").Inc()
	return nil
}

// GetBalanceBeforeDate returns the latest checkpointed balance for a
// (store, goods, batch) whose period ends at or before at, and the
// period-end it was recorded under. If no checkpoint exists yet, it
// returns the zero balance and the zero time.
func GetBalanceBeforeDate(tx *bolt.Tx, store types.StoreID, goods types.GoodsID, batch types.Batch, at time.Time) (types.BalanceForGoods, time.Time, error) {
	rb, err := registryBucket(tx)
	if err != nil {
		return types.BalanceForGoods{}, time.Time{}, err
	}
	prefix := registryPrefix(store, goods, batch)
	atKey := types.EncodeSeconds(at)

	c := rb.Cursor()
	var bestPeriodEnd time.Time
	found := false
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		pe := types.DecodeSeconds(k[len(prefix):])
		if bytes.Compare(types.EncodeSeconds(pe)[:], atKey[:]) > 0 {
			break
		}
		bestPeriodEnd = pe
		found = true
	}
	if !found {
		return types.ZeroBalance(), time.Time{}, nil
	}
	cb, err := checkpointBucket(tx)
	if err != nil {
		return types.BalanceForGoods{}, time.Time{}, err
	}
	val := cb.Get(checkpointKey(bestPeriodEnd, store, goods, batch))
	if val == nil {
		return types.ZeroBalance(), time.Time{}, nil
	}
	var bal types.BalanceForGoods
	if err := codec.Decode(val, &bal); err != nil {
		return types.BalanceForGoods{}, time.Time{}, err
	}
	return bal, bestPeriodEnd, nil
}

// GetBalancesForAll replays, for every (store, goods, batch) series that has
// ever been checkpointed, the latest balance at or before at: a nested
// store -> goods -> batch map, per get_balance_for_all (spec §4.4). Series
// whose latest applicable checkpoint would be zero are omitted, since a
// zero checkpoint is never stored (I3).
func GetBalancesForAll(tx *bolt.Tx, at time.Time) (map[types.StoreID]map[types.GoodsID]map[types.Batch]types.BalanceForGoods, error) {
	rb, err := registryBucket(tx)
	if err != nil {
		return nil, err
	}
	cb, err := checkpointBucket(tx)
	if err != nil {
		return nil, err
	}
	atKey := types.EncodeSeconds(at)

	out := map[types.StoreID]map[types.GoodsID]map[types.Batch]types.BalanceForGoods{}
	var cur *triple
	var curBest time.Time
	var curFound bool

	flush := func() error {
		if cur == nil || !curFound {
			return nil
		}
		val := cb.Get(checkpointKey(curBest, cur.Store, cur.Goods, cur.Batch))
		if val == nil {
			return nil
		}
		var bal types.BalanceForGoods
		if err := codec.Decode(val, &bal); err != nil {
			return err
		}
		if bal.IsZero() {
			return nil
		}
		byGoods, ok := out[cur.Store]
		if !ok {
			byGoods = map[types.GoodsID]map[types.Batch]types.BalanceForGoods{}
			out[cur.Store] = byGoods
		}
		byBatch, ok := byGoods[cur.Goods]
		if !ok {
			byBatch = map[types.Batch]types.BalanceForGoods{}
			byGoods[cur.Goods] = byBatch
		}
		byBatch[cur.Batch] = bal
		return nil
	}

	c := rb.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		t, periodEnd, err := parseRegistryKey(k)
		if err != nil {
			return nil, err
		}
		if cur == nil || *cur != t {
			if err := flush(); err != nil {
				return nil, err
			}
			tc := t
			cur = &tc
			curFound = false
		}
		if bytes.Compare(types.EncodeSeconds(periodEnd)[:], atKey[:]) <= 0 {
			curBest = periodEnd
			curFound = true
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseRegistryKey(k []byte) (triple, time.Time, error) {
	if len(k) != 16+16+8+16+8 {
		return triple{}, time.Time{}, wherr.New(wherr.BadKey, "malformed checkpoint registry key")
	}
	var store types.StoreID
	copy(store[:], k[0:16])
	var goods types.GoodsID
	copy(goods[:], k[16:32])
	batchDate := types.DecodeSeconds(k[32:40])
	var batchID types.OperationID
	copy(batchID[:], k[40:56])
	periodEnd := types.DecodeSeconds(k[56:64])
	return triple{Store: store, Goods: goods, Batch: types.Batch{ID: batchID, Date: batchDate}}, periodEnd, nil
}

// Update corrects every checkpoint recorded at or after fromPeriodEnd for a
// (store, goods, batch) series by delta, creating the fromPeriodEnd
// checkpoint first if this is the series' first activity in that period:
// the checkpoint rollover step of propagation (spec §4.3 Step 4). A
// retroactive edit changes the balance carried forward by every checkpoint
// downstream of it, not just the one period it falls in.
func Update(tx *bolt.Tx, store types.StoreID, goods types.GoodsID, batch types.Batch, fromPeriodEnd time.Time, delta types.BalanceDelta) error {
	if delta.IsZero() {
		return nil
	}
	rb, err := registryBucket(tx)
	if err != nil {
		return err
	}
	prefix := registryPrefix(store, goods, batch)
	fromKey := types.EncodeSeconds(fromPeriodEnd)

	periods := []time.Time{fromPeriodEnd}
	c := rb.Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		pe := types.DecodeSeconds(k[len(prefix):])
		peKey := types.EncodeSeconds(pe)
		if bytes.Compare(peKey[:], fromKey[:]) > 0 {
			periods = append(periods, pe)
		}
	}

	cb, err := checkpointBucket(tx)
	if err != nil {
		return err
	}
	for _, pe := range periods {
		var before types.BalanceForGoods
		if val := cb.Get(checkpointKey(pe, store, goods, batch)); val != nil {
			if err := codec.Decode(val, &before); err != nil {
				return err
			}
		} else {
			before, _, err = GetBalanceBeforeDate(tx, store, goods, batch, pe.Add(-time.Nanosecond))
			if err != nil {
				return err
			}
		}
		if err := SetBalance(tx, store, goods, batch, pe, before.Plus(delta)); err != nil {
			return err
		}
	}
	return nil
}
