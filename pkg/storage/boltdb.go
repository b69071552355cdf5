package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/digitaiam/wh-ledger/pkg/checkpoint"
	"github.com/digitaiam/wh-ledger/pkg/config"
	"github.com/digitaiam/wh-ledger/pkg/metrics"
	"github.com/digitaiam/wh-ledger/pkg/propagate"
	"github.com/digitaiam/wh-ledger/pkg/report"
	"github.com/digitaiam/wh-ledger/pkg/topology"
	"github.com/digitaiam/wh-ledger/pkg/types"
)

// BoltLedger implements Ledger on top of a single bbolt database file
// holding the two ordered topologies and the checkpoint series as separate
// buckets (column families).
type BoltLedger struct {
	db     *bolt.DB
	dbPath string
	engine *propagate.Engine
	reader *report.Reader
}

// Open opens (creating if absent) the ledger database under dataDir,
// sizing checkpoint rollover at the given period.
func Open(dataDir string, period config.Period) (*BoltLedger, error) {
	dbPath := filepath.Join(dataDir, "ledger.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			topology.NewStoreDateTypeBatch().BucketName(),
			topology.NewDateTypeStoreBatch().BucketName(),
			checkpoint.BucketName,
			checkpoint.RegistryBucketName,
		}
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltLedger{
		db:     db,
		dbPath: dbPath,
		engine: propagate.NewEngine(period),
		reader: report.NewReader(),
	}, nil
}

// Close closes the database.
func (l *BoltLedger) Close() error {
	return l.db.Close()
}

// Mutate applies mutations inside one write transaction.
func (l *BoltLedger) Mutate(mutations []types.OpMutation) error {
	timer := metrics.NewTimer()
	err := l.db.Update(func(tx *bolt.Tx) error {
		return l.engine.Mutate(tx, mutations)
	})
	timer.ObserveDuration(metrics.MutateDuration)
	if err == nil {
		for _, m := range mutations {
			metrics.MutationsTotal.WithLabelValues(mutationKind(m)).Inc()
		}
	}
	if info, statErr := os.Stat(l.dbPath); statErr == nil {
		metrics.DatabaseSizeBytes.Set(float64(info.Size()))
	}
	return err
}

func mutationKind(m types.OpMutation) string {
	switch {
	case m.IsNew():
		return "new"
	case m.IsDelete():
		return "delete"
	default:
		return "edit"
	}
}

// GetReport answers a single (store, goods, batch) report within a read
// transaction.
func (l *BoltLedger) GetReport(store types.StoreID, goods types.GoodsID, batch types.Batch, from, to time.Time) (report.Line, error) {
	timer := metrics.NewTimer()
	var line report.Line
	err := l.db.View(func(tx *bolt.Tx) error {
		var err error
		line, err = l.reader.GetReport(tx, store, goods, batch, from, to)
		return err
	})
	timer.ObserveDurationVec(metrics.ReportDuration, "report")
	return line, err
}

// GetReportForStorage answers a whole-store report within a read
// transaction.
func (l *BoltLedger) GetReportForStorage(store types.StoreID, from, to time.Time) ([]report.Line, error) {
	timer := metrics.NewTimer()
	var lines []report.Line
	err := l.db.View(func(tx *bolt.Tx) error {
		var err error
		lines, err = l.reader.GetReportForStorage(tx, store, from, to)
		return err
	})
	timer.ObserveDurationVec(metrics.ReportDuration, "report_for_storage")
	return lines, err
}

// GetBalanceForAll answers the full checkpoint snapshot as of at.
func (l *BoltLedger) GetBalanceForAll(at time.Time) (map[types.StoreID]map[types.GoodsID]map[types.Batch]types.BalanceForGoods, error) {
	timer := metrics.NewTimer()
	var balances map[types.StoreID]map[types.GoodsID]map[types.Batch]types.BalanceForGoods
	err := l.db.View(func(tx *bolt.Tx) error {
		var err error
		balances, err = l.reader.GetBalanceForAll(tx, at)
		return err
	})
	timer.ObserveDurationVec(metrics.ReportDuration, "balance_for_all")
	return balances, err
}
