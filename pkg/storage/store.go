package storage

import (
	"time"

	"github.com/digitaiam/wh-ledger/pkg/report"
	"github.com/digitaiam/wh-ledger/pkg/types"
)

// Ledger is the top-level interface the rest of the system talks to: apply
// a batch of operation mutations atomically, then ask it for balances and
// turnover across any window. BoltLedger is the bbolt-backed
// implementation.
type Ledger interface {
	// Mutate applies a batch of OpMutations as a single atomic unit: either
	// every mutation (and everything it propagates onto) lands, or none do.
	Mutate(mutations []types.OpMutation) error

	// GetReport returns the opening/closing balance and turnover for one
	// (store, goods, batch) across [from, to).
	GetReport(store types.StoreID, goods types.GoodsID, batch types.Batch, from, to time.Time) (report.Line, error)

	// GetReportForStorage returns one line per (goods, batch) active in
	// store across [from, to).
	GetReportForStorage(store types.StoreID, from, to time.Time) ([]report.Line, error)

	// GetBalanceForAll returns every (store, goods, batch) balance as of at.
	GetBalanceForAll(at time.Time) (map[types.StoreID]map[types.GoodsID]map[types.Batch]types.BalanceForGoods, error)

	// Close releases the underlying database.
	Close() error
}
