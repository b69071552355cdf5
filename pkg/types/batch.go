package types

import (
	"time"

	"github.com/google/uuid"
)

// Epoch is the zero instant of the key encoding: Unix second 0, 1970-01-01.
var Epoch = time.Unix(0, 0).UTC()

// DateMax is the sentinel instant used to bound range scans from above.
// The wire format reserves u64::MAX for "no upper bound"; Go's time.Time
// cannot hold 2^64-1 seconds since the epoch without risking overflow in
// the standard library's internal representation, so DateMax uses a date
// far enough in the future (year 9999) to serve the same purpose for any
// realistic ledger while staying safely representable.
var DateMax = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// Batch identifies a lot of goods entering the system. Date is the instant
// of the first receive against this batch.
type Batch struct {
	ID   uuid.UUID
	Date time.Time
}

// NoBatch is the empty batch for issues recorded without a lot. Propagation
// does not assign a batch: an op carrying NoBatch stays under it.
func NoBatch() Batch {
	return Batch{ID: UUIDNil, Date: Epoch}
}

// MinBatch bounds batch-ordered range scans from below.
func MinBatch() Batch {
	return Batch{ID: UUIDNil, Date: Epoch}
}

// MaxBatch bounds batch-ordered range scans from above.
func MaxBatch() Batch {
	return Batch{ID: UUIDMax, Date: DateMax}
}

// IsEmpty reports whether this is the sentinel "no batch" value.
func (b Batch) IsEmpty() bool {
	return b.ID == UUIDNil
}

// Less orders batches by (date, id), the order auto-issue resolution walks
// batches in: earliest date first, then lowest id.
func (b Batch) Less(other Batch) bool {
	if !b.Date.Equal(other.Date) {
		return b.Date.Before(other.Date)
	}
	return lessUUID(b.ID, other.ID)
}

func lessUUID(a, b uuid.UUID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
