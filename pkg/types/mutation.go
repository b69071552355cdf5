package types

import "time"

// Op is a persisted log record: the operation currently stored at a given
// (op-id, date, store, goods, batch) identifying tuple, plus the dependency
// flag propagation needs to know whether to recompute its cost.
type Op struct {
	ID            OperationID
	Date          time.Time
	Store         StoreID
	TransferStore *StoreID // set for Transfer legs; nil otherwise
	Goods         GoodsID
	Batch         Batch
	Operation     InternalOperation
	IsDependent   bool
}

// OpMutation is the atomic unit of change the propagation engine consumes:
// a before/after pair of payloads at a given identifying tuple. A nil
// Before means "new op"; a nil After means "delete"; both present is an
// edit of an existing op in place.
type OpMutation struct {
	ID            OperationID
	Date          time.Time
	Store         StoreID
	TransferStore *StoreID
	Goods         GoodsID
	Batch         Batch
	Before        *InternalOperation
	After         *InternalOperation
	IsDependent   bool
}

// NewOpMutation builds a mutation record. Passing a nil before and non-nil
// after creates a new op; non-nil before and nil after deletes it; both
// non-nil edits it in place.
func NewOpMutation(id OperationID, date time.Time, store StoreID, transferStore *StoreID, goods GoodsID, batch Batch, before, after *InternalOperation) OpMutation {
	return OpMutation{
		ID:            id,
		Date:          date,
		Store:         store,
		TransferStore: transferStore,
		Goods:         goods,
		Batch:         batch,
		Before:        before,
		After:         after,
	}
}

// IsNew reports whether this mutation introduces a brand new op.
func (m OpMutation) IsNew() bool { return m.Before == nil && m.After != nil }

// IsDelete reports whether this mutation removes an existing op.
func (m OpMutation) IsDelete() bool { return m.Before != nil && m.After == nil }

// IsEdit reports whether this mutation replaces an existing op's payload.
func (m OpMutation) IsEdit() bool { return m.Before != nil && m.After != nil }

// BeforeDelta and AfterDelta are the signed balance effects of the
// mutation's before/after payloads; NetDelta is what the propagation engine
// actually applies to the ledger (I2/I5).
func (m OpMutation) BeforeDelta() BalanceDelta {
	if m.Before == nil {
		return ZeroDelta()
	}
	return m.Before.Delta()
}

func (m OpMutation) AfterDelta() BalanceDelta {
	if m.After == nil {
		return ZeroDelta()
	}
	return m.After.Delta()
}

func (m OpMutation) NetDelta() BalanceDelta {
	return m.AfterDelta().Sub(m.BeforeDelta())
}

// ToOp projects the "after" half of a mutation into the persisted record
// form, the shape both ordered topologies store.
func (m OpMutation) ToOp() Op {
	var op InternalOperation
	if m.After != nil {
		op = *m.After
	}
	return Op{
		ID:            m.ID,
		Date:          m.Date,
		Store:         m.Store,
		TransferStore: m.TransferStore,
		Goods:         m.Goods,
		Batch:         m.Batch,
		Operation:     op,
		IsDependent:   m.IsDependent,
	}
}

// StoreDateTypeBatchKey renders the canonical key for the StoreDateTypeBatch
// topology (spec §4.1):
//
//	store(16) ‖ date-seconds(8) ‖ op-type-tag(1) ‖ goods(16) ‖ batch.date(8) ‖ batch.id(16) ‖ op-id(16)
func (o Op) StoreDateTypeBatchKey() []byte {
	buf := make([]byte, 0, 16+8+1+16+8+16+16)
	buf = append(buf, o.Store[:]...)
	d := EncodeSeconds(o.Date)
	buf = append(buf, d[:]...)
	buf = append(buf, o.Operation.Tag())
	buf = append(buf, o.Goods[:]...)
	bd := EncodeSeconds(o.Batch.Date)
	buf = append(buf, bd[:]...)
	buf = append(buf, o.Batch.ID[:]...)
	buf = append(buf, o.ID[:]...)
	return buf
}

// DateTypeStoreBatchKey renders the canonical key for the DateTypeStoreBatch
// topology (spec §4.1):
//
//	date-seconds(8) ‖ op-type-tag(1) ‖ store(16) ‖ goods(16) ‖ batch.date(8) ‖ batch.id(16) ‖ op-id(16)
func (o Op) DateTypeStoreBatchKey() []byte {
	buf := make([]byte, 0, 8+1+16+16+8+16+16)
	d := EncodeSeconds(o.Date)
	buf = append(buf, d[:]...)
	buf = append(buf, o.Operation.Tag())
	buf = append(buf, o.Store[:]...)
	buf = append(buf, o.Goods[:]...)
	bd := EncodeSeconds(o.Batch.Date)
	buf = append(buf, bd[:]...)
	buf = append(buf, o.Batch.ID[:]...)
	buf = append(buf, o.ID[:]...)
	return buf
}
