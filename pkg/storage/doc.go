/*
Package storage wires the ordered topologies, the checkpoint series and the
propagation engine into a single BoltDB-backed Ledger.

# Architecture

	┌──────────────────── BOLTDB STORAGE ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │              BoltLedger                      │          │
	│  │  - File: <dataDir>/ledger.db                 │          │
	│  │  - Format: B+tree with MVCC                  │          │
	│  │  - Transactions: ACID with fsync             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │              Bucket Structure                 │          │
	│  │  ┌────────────────────────────────────┐     │          │
	│  │  │ cf_store_date_type_batch_id        │     │          │
	│  │  │ cf_date_type_store_batch_id        │     │          │
	│  │  │ cf_checkpoint_date_store_batch      │     │          │
	│  │  │ cf_checkpoint_periods_registry      │     │          │
	│  │  └────────────────────────────────────┘     │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │        Transaction Management                │          │
	│  │  - Read: db.View() - concurrent reads       │          │
	│  │  - Write: db.Update() - serialized writes   │          │
	│  │  - Rollback: automatic on error             │          │
	│  └──────────────────────────────────────────────┘          │
	└────────────────────────────────────────────────────────┘

# Core Components

BoltLedger:
  - Implements Ledger using BoltDB
  - One database file per ledger instance
  - Automatic bucket creation on Open
  - Thread-safe via BoltDB's single-writer transaction model

Buckets:
  - cf_store_date_type_batch_id: ops ordered by store, then date
  - cf_date_type_store_batch_id: ops ordered by date, then store
  - cf_checkpoint_date_store_batch: balance snapshots ordered by period end
  - cf_checkpoint_periods_registry: period-end index per (store, goods, batch)

# Usage

	ledger, err := storage.Open("/var/lib/wh-ledger", config.PeriodMonthly)
	if err != nil {
		log.Fatal(err)
	}
	defer ledger.Close()

	err = ledger.Mutate([]types.OpMutation{
		types.NewOpMutation(types.NewID(), time.Now(), storeID, nil, goodsID, batch, nil, &receive),
	})

	line, err := ledger.GetReport(storeID, goodsID, batch, from, to)

# Transaction Guarantees

  - Atomicity: one bbolt transaction per Mutate call; all four index
    writes a mutation touches land together or not at all.
  - Consistency: every write goes through the propagation engine, which
    keeps both ordered topologies and the checkpoint series agreeing on
    the same balances.
  - Isolation: snapshot reads via db.View, serialized writes via db.Update.
  - Durability: fsync on commit.

# See Also

  - pkg/propagate for the mutation/propagation engine
  - pkg/topology for the two ordered indices
  - pkg/checkpoint for the balance snapshot series
  - pkg/report for read-side aggregation
*/
package storage
