/*
Package types defines the core data model of the warehouse ledger: the
primitive value types (identifiers, Batch, Qty, Cost, balances) and the
operation model (InternalOperation, Op, OpMutation) that every other
package in the module builds on.

# Identifiers

Store, Goods, Document and Operation ids are 128-bit opaque tags backed by
google/uuid. UUIDNil and UUIDMax are process-wide sentinels used to bound
key ranges; they are initialised once and never mutated.

# Batch

A Batch is (id, date): the lot a unit of goods belongs to, and the cost
basis is tracked against. Batch.Date is the instant of the batch's first
receive. NoBatch is the sentinel used by an Issue recorded without a lot;
nothing later assigns it a real batch. MinBatch/MaxBatch bound range scans.

# Qty

Qty is an ordered, canonicalised sequence of Number leaves. Each Number
carries a decimal magnitude, a unit-of-measure id, and an optional Inner
Number describing a nested packaging factor (for example "2 boxes" where
each box also tracks "3 bottles"). Addition and subtraction merge leaves
that share a unit/nesting shape and keep distinct ones side by side;
negation flips every leaf's magnitude. Equality is structural over the
canonical, sorted leaf sequence.

# Cost and balances

Cost wraps shopspring/decimal so money never drifts the way float64 would.
BalanceForGoods is a (Qty, Cost) position; BalanceDelta is the same shape,
signed, and is what a single operation contributes to a balance. Balances
may legally go negative: an Issue that exceeds recorded Receives is an
unresolved, over-issued position, not an error.

# Operation model

InternalOperation is a small tagged struct standing in for the
Receive/Issue/Transfer sum type: Kind says which variant it is, Mode
distinguishes a manually-costed Issue from one whose cost the propagation
engine derives from upstream batch balance at write time (I4).

Op is the persisted log record at a given (op-id, date, store, goods,
batch) identifying tuple. OpMutation is the atomic unit of change the
propagation engine consumes: a before/after pair of payloads. A nil Before
means "new op"; a nil After means "delete"; both present is an edit.

Op carries the canonical key projections for both ordered topologies
(StoreDateTypeBatchKey, DateTypeStoreBatchKey) so the byte layout lives in
one place next to the record it describes, even though the topologies that
read and write those keys live in their own package.
*/
package types
