package checkpoint

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	bolt "go.etcd.io/bbolt"

	"github.com/digitaiam/wh-ledger/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *bolt.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checkpoint_test.db")
	db, err := bolt.Open(path, 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(BucketName); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(RegistryBucketName)
		return err
	})
	require.NoError(t, err)
	return db
}

func balanceQty(box uuid.UUID, v string) types.Qty {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return types.NewQty([]types.Number{types.NewNumber(d, box, nil)})
}

func TestSetBalancePrunesZero(t *testing.T) {
	db := openTestDB(t)
	store, goods := uuid.New(), uuid.New()
	batch := types.Batch{ID: uuid.New(), Date: types.Epoch}
	periodEnd := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)

	err := db.Update(func(tx *bolt.Tx) error {
		return SetBalance(tx, store, goods, batch, periodEnd, types.ZeroBalance())
	})
	require.NoError(t, err)

	err = db.View(func(tx *bolt.Tx) error {
		bal, _, err := GetBalanceBeforeDate(tx, store, goods, batch, periodEnd)
		assert.True(t, bal.IsZero())
		return err
	})
	require.NoError(t, err)
}

func TestGetBalanceBeforeDateFindsNearestAtOrBefore(t *testing.T) {
	db := openTestDB(t)
	store, goods, box := uuid.New(), uuid.New(), uuid.New()
	batch := types.Batch{ID: uuid.New(), Date: types.Epoch}

	jan := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)
	feb := time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC)

	err := db.Update(func(tx *bolt.Tx) error {
		if err := SetBalance(tx, store, goods, batch, jan, types.BalanceForGoods{Qty: balanceQty(box, "10")}); err != nil {
			return err
		}
		return SetBalance(tx, store, goods, batch, feb, types.BalanceForGoods{Qty: balanceQty(box, "15")})
	})
	require.NoError(t, err)

	err = db.View(func(tx *bolt.Tx) error {
		bal, pe, err := GetBalanceBeforeDate(tx, store, goods, batch, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.True(t, pe.Equal(jan), "mid-February resolves to the January checkpoint, not February's")
		assert.True(t, bal.Qty.Equal(balanceQty(box, "10")))
		return nil
	})
	require.NoError(t, err)

	err = db.View(func(tx *bolt.Tx) error {
		bal, pe, err := GetBalanceBeforeDate(tx, store, goods, batch, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.True(t, pe.Equal(feb))
		assert.True(t, bal.Qty.Equal(balanceQty(box, "15")))
		return nil
	})
	require.NoError(t, err)
}

func TestGetBalanceBeforeDateWithNoCheckpointReturnsZero(t *testing.T) {
	db := openTestDB(t)
	store, goods := uuid.New(), uuid.New()
	batch := types.Batch{ID: uuid.New(), Date: types.Epoch}

	err := db.View(func(tx *bolt.Tx) error {
		bal, pe, err := GetBalanceBeforeDate(tx, store, goods, batch, time.Now().UTC())
		assert.True(t, bal.IsZero())
		assert.True(t, pe.IsZero())
		return err
	})
	require.NoError(t, err)
}

func TestUpdateRollsForwardEveryLaterPeriod(t *testing.T) {
	db := openTestDB(t)
	store, goods, box := uuid.New(), uuid.New(), uuid.New()
	batch := types.Batch{ID: uuid.New(), Date: types.Epoch}

	jan := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)
	feb := time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC)
	mar := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)

	err := db.Update(func(tx *bolt.Tx) error {
		for _, pe := range []time.Time{jan, feb, mar} {
			if err := SetBalance(tx, store, goods, batch, pe, types.BalanceForGoods{Qty: balanceQty(box, "10")}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	// A retroactive receive dated in January must shift January, February
	// and March's checkpoints alike, not just January's own.
	delta := types.BalanceDelta{Qty: balanceQty(box, "5")}
	err = db.Update(func(tx *bolt.Tx) error {
		return Update(tx, store, goods, batch, jan, delta)
	})
	require.NoError(t, err)

	err = db.View(func(tx *bolt.Tx) error {
		for _, pe := range []time.Time{jan, feb, mar} {
			bal, _, err := GetBalanceBeforeDate(tx, store, goods, batch, pe)
			require.NoError(t, err)
			assert.True(t, bal.Qty.Equal(balanceQty(box, "15")), "period %s should include the retroactive delta", pe)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestUpdateCreatesFirstCheckpointWhenSeriesHasNoHistory(t *testing.T) {
	db := openTestDB(t)
	store, goods, box := uuid.New(), uuid.New(), uuid.New()
	batch := types.Batch{ID: uuid.New(), Date: types.Epoch}
	periodEnd := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)

	err := db.Update(func(tx *bolt.Tx) error {
		return Update(tx, store, goods, batch, periodEnd, types.BalanceDelta{Qty: balanceQty(box, "7")})
	})
	require.NoError(t, err)

	err = db.View(func(tx *bolt.Tx) error {
		bal, pe, err := GetBalanceBeforeDate(tx, store, goods, batch, periodEnd)
		require.NoError(t, err)
		assert.True(t, pe.Equal(periodEnd))
		assert.True(t, bal.Qty.Equal(balanceQty(box, "7")))
		return nil
	})
	require.NoError(t, err)
}

func TestGetBalancesForAllNestsAndSuppressesZero(t *testing.T) {
	db := openTestDB(t)
	store, goods, box := uuid.New(), uuid.New(), uuid.New()
	liveBatch := types.Batch{ID: uuid.New(), Date: types.Epoch}
	zeroedBatch := types.Batch{ID: uuid.New(), Date: types.Epoch}
	periodEnd := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)

	err := db.Update(func(tx *bolt.Tx) error {
		if err := SetBalance(tx, store, goods, liveBatch, periodEnd, types.BalanceForGoods{Qty: balanceQty(box, "4")}); err != nil {
			return err
		}
		if err := SetBalance(tx, store, goods, zeroedBatch, periodEnd, types.BalanceForGoods{Qty: balanceQty(box, "3")}); err != nil {
			return err
		}
		// Net the second batch back to zero; its checkpoint should be pruned.
		return Update(tx, store, goods, zeroedBatch, periodEnd, types.BalanceDelta{Qty: balanceQty(box, "-3")})
	})
	require.NoError(t, err)

	err = db.View(func(tx *bolt.Tx) error {
		all, err := GetBalancesForAll(tx, periodEnd)
		require.NoError(t, err)
		byBatch, ok := all[store][goods]
		require.True(t, ok)
		_, liveOK := byBatch[liveBatch]
		_, zeroedOK := byBatch[zeroedBatch]
		assert.True(t, liveOK)
		assert.False(t, zeroedOK, "a batch netted back to zero is omitted, not stored as a zero checkpoint")
		return nil
	})
	require.NoError(t, err)
}
