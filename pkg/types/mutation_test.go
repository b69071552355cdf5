package types

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func sampleMutation(before, after *InternalOperation) OpMutation {
	return NewOpMutation(
		uuid.New(), time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		uuid.New(), nil, uuid.New(), NoBatch(),
		before, after,
	)
}

func TestMutationKindClassification(t *testing.T) {
	box := uuid.New()
	qty := NewQty([]Number{NewNumber(dec("1"), box, nil)})
	op := Receive(qty, CostFromInt(1))

	newM := sampleMutation(nil, &op)
	assert.True(t, newM.IsNew())
	assert.False(t, newM.IsDelete())
	assert.False(t, newM.IsEdit())

	delM := sampleMutation(&op, nil)
	assert.True(t, delM.IsDelete())
	assert.False(t, delM.IsNew())

	editOp := Receive(qty, CostFromInt(2))
	editM := sampleMutation(&op, &editOp)
	assert.True(t, editM.IsEdit())
	assert.False(t, editM.IsNew())
	assert.False(t, editM.IsDelete())
}

func TestMutationNetDelta(t *testing.T) {
	box := uuid.New()
	qty5 := NewQty([]Number{NewNumber(dec("5"), box, nil)})
	qty8 := NewQty([]Number{NewNumber(dec("8"), box, nil)})

	before := Receive(qty5, CostFromInt(50))
	after := Receive(qty8, CostFromInt(80))

	m := sampleMutation(&before, &after)
	net := m.NetDelta()

	assert.True(t, net.Qty.Numbers[0].Qty.Equal(dec("3")), "net qty delta is after minus before")
	assert.True(t, net.Cost.Amount.Equal(dec("30")))
}

func TestMutationNetDeltaForNewOp(t *testing.T) {
	box := uuid.New()
	qty := NewQty([]Number{NewNumber(dec("5"), box, nil)})
	after := Receive(qty, CostFromInt(50))

	m := sampleMutation(nil, &after)
	net := m.NetDelta()

	assert.True(t, net.Qty.Equal(after.Delta().Qty))
	assert.True(t, net.Cost.Equal(after.Delta().Cost))
}

func TestOpKeysDifferByTopology(t *testing.T) {
	box := uuid.New()
	qty := NewQty([]Number{NewNumber(dec("1"), box, nil)})
	op := Op{
		ID: uuid.New(), Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Store: uuid.New(), Goods: uuid.New(), Batch: NoBatch(),
		Operation: Receive(qty, CostFromInt(1)),
	}

	storeKey := op.StoreDateTypeBatchKey()
	globalKey := op.DateTypeStoreBatchKey()

	assert.Len(t, storeKey, 16+8+1+16+8+16+16)
	assert.Len(t, globalKey, 8+1+16+16+8+16+16)
	assert.NotEqual(t, storeKey[:16], globalKey[:16], "store-first and date-first keys lead with different fields")
}

func TestStoreDateTypeBatchKeyOrdersByStoreThenDate(t *testing.T) {
	store1 := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	store2 := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	box := uuid.New()
	qty := NewQty([]Number{NewNumber(dec("1"), box, nil)})

	earlyStore1 := Op{ID: uuid.New(), Date: Epoch, Store: store1, Goods: uuid.New(), Batch: NoBatch(), Operation: Receive(qty, CostFromInt(1))}
	lateStore1 := Op{ID: uuid.New(), Date: Epoch.Add(48 * time.Hour), Store: store1, Goods: uuid.New(), Batch: NoBatch(), Operation: Receive(qty, CostFromInt(1))}
	anyStore2 := Op{ID: uuid.New(), Date: Epoch, Store: store2, Goods: uuid.New(), Batch: NoBatch(), Operation: Receive(qty, CostFromInt(1))}

	k1 := string(earlyStore1.StoreDateTypeBatchKey())
	k2 := string(lateStore1.StoreDateTypeBatchKey())
	k3 := string(anyStore2.StoreDateTypeBatchKey())

	assert.Less(t, k1, k2, "within a store, earlier date sorts first")
	assert.Less(t, k2, k3, "store id is the primary sort key")
}
