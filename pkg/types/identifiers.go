package types

import "github.com/google/uuid"

// StoreID, GoodsID, DocumentID and OperationID are 128-bit opaque tags.
// They are plain uuid.UUID values; the distinct names only document intent
// at call sites, the same way Warren used to alias Node/Service ids.
type (
	StoreID     = uuid.UUID
	GoodsID     = uuid.UUID
	DocumentID  = uuid.UUID
	OperationID = uuid.UUID
)

// UUIDNil and UUIDMax bound key ranges: UUIDNil sorts before every real
// identifier, UUIDMax sorts after every real identifier. They are
// process-wide constants, never mutated after package init.
var (
	UUIDNil = uuid.Nil
	UUIDMax = uuid.UUID{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	}
)

// NewID generates a fresh random identifier for a store, goods, document or
// operation.
func NewID() uuid.UUID {
	return uuid.New()
}
