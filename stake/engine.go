// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"

	"github.com/vechain/lockstake/lockstake"
	"github.com/vechain/lockstake/metrics"
	"github.com/vechain/lockstake/stake/reverts"
	"github.com/vechain/lockstake/stake/stakes"
	"github.com/vechain/lockstake/storage"
)

// Work units charged by the sweep. A tick's work budget bounds the number
// of visits before the engine yields with its cursor persisted.
const (
	costAccountVisit  = 1
	costPositionVisit = 1
)

var (
	metricTicks       = metrics.LazyLoadCounter("engine_tick_count")
	metricYields      = metrics.LazyLoadCounter("engine_yield_count")
	metricVisited     = metrics.LazyLoadCounter("engine_position_visit_count")
	metricDistributed = metrics.LazyLoadCounter("engine_distributed_total")
	metricCycles      = metrics.LazyLoadCounter("engine_cycle_count")
)

// TickResult reports what one tick accomplished. Distributed counts
// only the rewards credited during this tick, so summing the results of
// a chunked sweep gives the cycle total; the CycleCompleted event
// carries that total directly.
type TickResult struct {
	Done        bool   // cycle completed during this tick
	Visited     uint64 // positions processed
	Distributed *big.Int
	Drift       *big.Int
}

// Tick drives the reward sweep by one bounded unit of work. The caller
// must hold the ticker role. When the engine is idle a tick is admitted
// once a cycle period, minus the grace tolerance, has elapsed since the
// last completed cycle; it then opens a sweep. An in-progress sweep is
// resumed from its durable cursor regardless of the clock. The tick
// either completes the cycle (Done true) or yields with all progress
// persisted; yielding is not an error.
//
// Shares are computed against the totals frozen when the sweep opened,
// so the result is identical whether the sweep takes one tick or many.
func (l *Ledger) Tick(caller lockstake.Address, now uint64, workBudget uint64) (*TickResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ok, err := l.auth.IsTicker(caller)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, reject("tick", reverts.ErrUnauthorized)
	}
	metricTicks().Add(1)

	inProgress, err := l.stats.CycleInProgress()
	if err != nil {
		return nil, err
	}
	if !inProgress {
		last, err := l.stats.LastCycleTime()
		if err != nil {
			return nil, err
		}
		if now+lockstake.TickGrace < last+lockstake.CyclePeriod {
			return nil, reject("tick", reverts.ErrCycleNotDue)
		}
		if err := l.stats.SetCycleInProgress(true); err != nil {
			return nil, err
		}
		logger.Debug("sweep opened", "now", now)
	}
	return l.sweep(now, workBudget)
}

// adjustedBudget returns the cycle's effective budget: the target minus
// the carried drift, clamped to [0, 2 x target]. Both inputs are stable
// for the whole sweep, so resumed ticks recompute the same value.
func (l *Ledger) adjustedBudget() (*big.Int, error) {
	target, err := l.stats.TargetBudget()
	if err != nil {
		return nil, err
	}
	drift, err := l.stats.Drift()
	if err != nil {
		return nil, err
	}
	budget := new(big.Int).Sub(target, drift)
	if budget.Sign() < 0 {
		return new(big.Int), nil
	}
	if ceiling := new(big.Int).Lsh(target, 1); budget.Cmp(ceiling) > 0 {
		return ceiling, nil
	}
	return budget, nil
}

func (l *Ledger) sweep(now uint64, workBudget uint64) (*TickResult, error) {
	budget, err := l.adjustedBudget()
	if err != nil {
		return nil, err
	}
	totalWeighted, err := l.stats.TotalWeighted()
	if err != nil {
		return nil, err
	}
	table, err := l.tierTable()
	if err != nil {
		return nil, err
	}
	accountIdx, positionIdx, err := l.stats.Cursor()
	if err != nil {
		return nil, err
	}
	count, err := l.positions.AccountCount()
	if err != nil {
		return nil, err
	}

	meter := storage.NewMeter(workBudget)
	// tick-local accumulators, folded into the durable deltas on exit
	pending := stakes.Zero()
	distributed := new(big.Int)
	visited := uint64(0)

	for accountIdx < count {
		if !meter.TryUse(costAccountVisit) {
			return l.yield(accountIdx, positionIdx, pending, distributed, visited)
		}
		owner, err := l.positions.AccountAt(accountIdx)
		if err != nil {
			return nil, err
		}
		list, err := l.positions.Get(owner)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			// prune; the swapped-in tail account is unvisited, so the
			// cursor stays put
			if err := l.positions.Save(owner, nil); err != nil {
				return nil, err
			}
			count--
			continue
		}

		for int(positionIdx) < len(list) {
			if !meter.TryUse(costPositionVisit) {
				if err := l.positions.Save(owner, list); err != nil {
					return nil, err
				}
				return l.yield(accountIdx, positionIdx, pending, distributed, visited)
			}
			position := list[positionIdx]
			share := stakes.Share(position.WeightedAmount, budget, totalWeighted)
			if share.Sign() > 0 {
				if position.Compounding {
					weightedShare := stakes.Weighted(share, table.Multiplier(position.Tier))
					position.RawAmount.Add(position.RawAmount, share)
					position.WeightedAmount.Add(position.WeightedAmount, weightedShare)
					pending.Add(&stakes.WeightedStake{Raw: share, Weighted: weightedShare})
					l.notifyPrincipal(lockstake.Address{}, owner, votingWeight(weightedShare))
				} else {
					position.UnclaimedAccrual.Add(position.UnclaimedAccrual, share)
				}
				distributed.Add(distributed, share)
			}
			position.LastUpdateTime = now
			positionIdx++
			visited++
		}
		if err := l.positions.Save(owner, list); err != nil {
			return nil, err
		}
		positionIdx = 0
		accountIdx++
	}

	return l.complete(now, budget, pending, distributed, visited)
}

func (l *Ledger) yield(accountIdx, positionIdx uint64, pending *stakes.WeightedStake, distributed *big.Int, visited uint64) (*TickResult, error) {
	if err := l.stats.SetCursor(accountIdx, positionIdx); err != nil {
		return nil, err
	}
	if err := l.stats.AddDeltas(pending, distributed); err != nil {
		return nil, err
	}
	metricYields().Add(1)
	metricVisited().Add(int64(visited))
	logger.Debug("sweep yielded", "account", accountIdx, "position", positionIdx, "visited", visited)
	return &TickResult{Done: false, Visited: visited, Distributed: new(big.Int).Set(distributed)}, nil
}

// complete folds the sweep's accumulated deltas into the totals, mints
// the distributed amount into custody, stores the next cycle's drift and
// stamps the cycle boundary.
func (l *Ledger) complete(now uint64, budget *big.Int, pending *stakes.WeightedStake, distributed *big.Int, visited uint64) (*TickResult, error) {
	if err := l.stats.AddDeltas(pending, distributed); err != nil {
		return nil, err
	}
	staked, totalDistributed, err := l.stats.Deltas()
	if err != nil {
		return nil, err
	}

	if err := l.stats.AddStake(staked); err != nil {
		return nil, err
	}
	if err := l.tokens.Mint(l.custody, totalDistributed); err != nil {
		return nil, err
	}
	drift := new(big.Int).Sub(totalDistributed, budget)
	if err := l.stats.SetDrift(drift); err != nil {
		return nil, err
	}
	if err := l.stats.ResetCursor(); err != nil {
		return nil, err
	}
	if err := l.stats.ResetDeltas(); err != nil {
		return nil, err
	}

	if err := l.stats.SetLastCycleTime(now); err != nil {
		return nil, err
	}
	if err := l.stats.SetCycleInProgress(false); err != nil {
		return nil, err
	}

	l.emit(&CycleCompleted{Timestamp: now, Distributed: totalDistributed, Drift: new(big.Int).Set(drift)})
	metricVisited().Add(int64(visited))
	metricCycles().Add(1)
	if totalDistributed.IsInt64() {
		metricDistributed().Add(totalDistributed.Int64())
	}
	l.gaugeTotals()
	logger.Info("cycle completed", "now", now, "distributed", totalDistributed, "drift", drift)

	return &TickResult{Done: true, Visited: visited, Distributed: new(big.Int).Set(distributed), Drift: drift}, nil
}
