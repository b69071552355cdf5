// Package propagate implements mutate(), the engine that turns a batch of
// OpMutations into durable changes across both ordered topologies and the
// checkpoint series (spec §4.3). A single call is one bbolt transaction:
// either every mutation's effects land, including everything they ripple
// forward onto, or none do.
//
// Applying one mutation is five steps: resolve any auto-issue's cost from
// its batch's balance at that point, write (or delete) the record in both
// topologies, walk forward through the same (store, goods, batch) chain
// recomputing balances and cascading auto-issue costs until nothing
// downstream changes, roll the checkpoint series forward by the mutation's
// net delta, and repeat for dependent ops the forward walk touched. The
// forward walk always terminates: each step moves to a op that is later in
// the scanned chain's key order, the chain is finite per transaction.
package propagate

import (
	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"

	"github.com/digitaiam/wh-ledger/pkg/checkpoint"
	"github.com/digitaiam/wh-ledger/pkg/config"
	"github.com/digitaiam/wh-ledger/pkg/log"
	"github.com/digitaiam/wh-ledger/pkg/metrics"
	"github.com/digitaiam/wh-ledger/pkg/topology"
	"github.com/digitaiam/wh-ledger/pkg/types"
)

// Engine applies mutations against the two ordered topologies and the
// checkpoint series, rolling checkpoints forward at the configured period
// granularity.
type Engine struct {
	store  topology.Topology
	global topology.Topology
	period config.Period
	logger zerolog.Logger
}

// NewEngine builds a propagation engine. period sizes checkpoint rollover
// windows (spec §9: checkpoint period length).
func NewEngine(period config.Period) *Engine {
	return &Engine{
		store:  topology.NewStoreDateTypeBatch(),
		global: topology.NewDateTypeStoreBatch(),
		period: period,
		logger: log.WithComponent("propagate"),
	}
}

// Mutate applies a batch of mutations in order within tx. A failure aborts
// and the caller is expected to roll tx back; bbolt has no partial commit,
// so atomicity is automatic as long as the caller's db.Update wraps this.
func (e *Engine) Mutate(tx *bolt.Tx, mutations []types.OpMutation) error {
	e.logger.Info().Int("count", len(mutations)).Msg("applying mutation batch")
	for _, m := range mutations {
		if err := e.applyOne(tx, m); err != nil {
			e.logger.Error().Err(err).Str("mutation_id", m.ID.String()).Msg("mutation failed, aborting batch")
			return err
		}
	}
	return nil
}

func (e *Engine) applyOne(tx *bolt.Tx, m types.OpMutation) error {
	opLog := log.WithOperation(m.ID.String())

	if m.Before != nil {
		oldOp := types.Op{
			ID: m.ID, Date: m.Date, Store: m.Store, TransferStore: m.TransferStore,
			Goods: m.Goods, Batch: m.Batch, Operation: *m.Before, IsDependent: m.IsDependent,
		}
		// Captured before the delete: once oldOp's record is gone, looking
		// up its neighbor by ID can no longer find it in the chain.
		successor, err := e.store.NextOp(tx, oldOp)
		if err != nil {
			return err
		}
		if err := e.store.DelOp(tx, oldOp); err != nil {
			return err
		}
		if err := e.global.DelOp(tx, oldOp); err != nil {
			return err
		}

		if m.After == nil {
			// Deleting an op still leaves every later op in its chain
			// holding a stale BalanceAfter (I2), and any auto-issue
			// downstream may have priced off the now-gone receive (I4):
			// the chain still needs the same forward walk an edit gets,
			// starting at the successor captured above.
			storeLog := log.WithStore(m.Store.String())
			chainLen, err := e.propagateFrom(tx, successor)
			if err != nil {
				storeLog.Error().Err(err).Msg("forward propagation failed")
				return err
			}
			metrics.PropagationChainLength.Observe(float64(chainLen))
			if chainLen > 0 {
				storeLog.Debug().Int("chain_len", chainLen).Msg("propagated balance change downstream")
			}
			return e.afterWrite(tx, m)
		}
	}

	op := types.Op{
		ID: m.ID, Date: m.Date, Store: m.Store, TransferStore: m.TransferStore,
		Goods: m.Goods, Batch: m.Batch, Operation: *m.After, IsDependent: m.IsDependent,
	}

	goodsLog := log.WithGoods(op.Goods.String())
	storeLog := log.WithStore(op.Store.String())

	balanceBefore, err := e.store.BalanceBefore(tx, op)
	if err != nil {
		opLog.Error().Err(err).Msg("failed to read balance before mutation")
		return err
	}

	if op.Operation.IsAutoIssue() {
		resolved := resolveUnitCost(balanceBefore).Mul(op.Operation.Qty.FirstNonZeroMagnitude())
		op.Operation.Cost = clampIssueCost(resolved, balanceBefore.Cost)
		op.IsDependent = true
		metrics.AutoIssueResolutionsTotal.Inc()
		goodsLog.Debug().Str("unit_cost_basis", op.Operation.Cost.Amount.String()).Msg("resolved auto-issue cost")
	}

	balanceAfter := balanceBefore.Plus(op.Operation.Delta())
	if err := e.store.PutOp(tx, op, balanceAfter); err != nil {
		return err
	}
	if err := e.global.PutOp(tx, op, balanceAfter); err != nil {
		return err
	}

	chainLen, err := e.propagateForward(tx, op)
	if err != nil {
		storeLog.Error().Err(err).Msg("forward propagation failed")
		return err
	}
	metrics.PropagationChainLength.Observe(float64(chainLen))
	if chainLen > 0 {
		storeLog.Debug().Int("chain_len", chainLen).Msg("propagated balance change downstream")
	}

	// Checkpoints must move by the payload as stored, with any auto-issue
	// cost already resolved, not by the zero-cost payload the caller sent.
	m.After = &op.Operation
	return e.afterWrite(tx, m)
}

// afterWrite rolls the checkpoint series forward by this mutation's net
// effect on the (store, goods, batch) balance (Step 4). Every checkpoint at
// or after the mutation's own period shifts by exactly this delta: the
// forward walk already re-homed every downstream op's own stored balance,
// but the checkpoint's running total moves uniformly.
func (e *Engine) afterWrite(tx *bolt.Tx, m types.OpMutation) error {
	delta := m.NetDelta()
	if delta.IsZero() {
		return nil
	}
	periodEnd := e.period.End(m.Date)
	if err := checkpoint.Update(tx, m.Store, m.Goods, m.Batch, periodEnd, delta); err != nil {
		return err
	}
	e.logger.Debug().Time("period_end", periodEnd).Msg("checkpoint series rolled forward")
	return nil
}

// clampIssueCost bounds a resolved auto-issue cost to what the batch
// actually has on hand (spec §4.3 Step 1: "clamped so it never exceeds
// available cost"). An issue whose quantity exceeds the batch's balance is
// legal (I1: negative balances are allowed) but its cost cannot exceed the
// batch's recorded cost, or the batch would carry negative cost basis
// alongside a negative quantity for no reason.
func clampIssueCost(resolved, available types.Cost) types.Cost {
	if !available.GreaterThan(types.ZeroCost()) {
		return types.ZeroCost()
	}
	if resolved.GreaterThan(available) {
		return available
	}
	return resolved
}

// resolveUnitCost derives a per-unit cost from a batch's balance, used to
// price an auto-issue (I4). A batch with zero quantity on hand resolves to
// zero cost; the issue still records, leaving an over-issued, cost-free
// position for the report layer to surface.
func resolveUnitCost(balance types.BalanceForGoods) types.Cost {
	mag := balance.Qty.FirstNonZeroMagnitude()
	if mag.IsZero() {
		return types.ZeroCost()
	}
	return balance.Cost.Div(mag)
}

// propagateForward walks the same (store, goods, batch) chain starting
// just after anchor, recomputing each downstream record's balance and, for
// dependent auto-issues, its resolved cost, until a step produces no
// further change (the stored balance and cost already match what the
// chain would recompute).
func (e *Engine) propagateForward(tx *bolt.Tx, anchor types.Op) (int, error) {
	next, err := e.store.NextOp(tx, anchor)
	if err != nil {
		return 0, err
	}
	return e.propagateFrom(tx, next)
}

// propagateFrom runs the same walk as propagateForward but starting at an
// already-located successor record, rather than one found by looking up
// anchor's neighbor. A delete needs this form: the deleted op's key is
// already gone from the chain by the time propagation runs, so its
// successor must be captured before the delete and handed in directly.
func (e *Engine) propagateFrom(tx *bolt.Tx, next *topology.StoredOp) (int, error) {
	steps := 0
	for next != nil {
		nextOp := next.Op
		prevBalance, err := e.store.BalanceBefore(tx, nextOp)
		if err != nil {
			return steps, err
		}

		if nextOp.IsDependent && nextOp.Operation.IsAutoIssue() {
			resolved := resolveUnitCost(prevBalance).Mul(nextOp.Operation.Qty.FirstNonZeroMagnitude())
			nextOp.Operation.Cost = clampIssueCost(resolved, prevBalance.Cost)
			metrics.AutoIssueResolutionsTotal.Inc()
		}
		newBalance := prevBalance.Plus(nextOp.Operation.Delta())

		unchanged := newBalance.Equal(next.BalanceAfter) && nextOp.Operation.Cost.Equal(next.Op.Operation.Cost)
		if unchanged {
			return steps, nil
		}
		steps++

		if err := e.store.PutOp(tx, nextOp, newBalance); err != nil {
			return steps, err
		}
		if err := e.global.PutOp(tx, nextOp, newBalance); err != nil {
			return steps, err
		}

		// Only the change introduced at this op itself — its re-resolved
		// cost, typically — needs its own checkpoint update. The portion of
		// newBalance that merely carries the upstream mutation's delta
		// forward is already applied to every period at or after the
		// mutation's own date by afterWrite; re-applying the cumulative
		// balance swing here would double-count it on every downstream
		// period.
		ownDelta := nextOp.Operation.Delta().Sub(next.Op.Operation.Delta())
		if !ownDelta.IsZero() {
			periodEnd := e.period.End(nextOp.Date)
			if err := checkpoint.Update(tx, nextOp.Store, nextOp.Goods, nextOp.Batch, periodEnd, ownDelta); err != nil {
				return steps, err
			}
		}

		next, err = e.store.NextOp(tx, nextOp)
		if err != nil {
			return steps, err
		}
	}
	return steps, nil
}
