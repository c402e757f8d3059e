// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"

	"github.com/vechain/lockstake/lockstake"
	"github.com/vechain/lockstake/metrics"
	"github.com/vechain/lockstake/stake/penalty"
	"github.com/vechain/lockstake/stake/positions"
	"github.com/vechain/lockstake/stake/reverts"
	"github.com/vechain/lockstake/stake/stakes"
	"github.com/vechain/lockstake/stake/tiers"
)

var (
	metricStaked      = metrics.LazyLoadCounter("stake_opened_count")
	metricUnstaked    = metrics.LazyLoadCounter("stake_closed_count")
	metricBurned      = metrics.LazyLoadCounter("stake_penalty_burned_total")
	metricOpRejected  = metrics.LazyLoadCounterVec("stake_op_rejected_count", []string{"op"})
	metricTotalStaked = metrics.LazyLoadGauge("stake_total_raw_gauge")
)

// ensureIdle rejects user-facing mutations while a reward sweep is active.
func (l *Ledger) ensureIdle() error {
	inProgress, err := l.stats.CycleInProgress()
	if err != nil {
		return err
	}
	if inProgress {
		return reverts.ErrCycleInProgress
	}
	return nil
}

func reject(op string, err error) error {
	if reverts.IsRevertErr(err) {
		metricOpRejected().AddWithLabel(1, map[string]string{"op": op})
	}
	return err
}

// Stake opens a position. The amount is debited from the owner into
// custody. Locked tiers always compound; the compound flag only applies
// to tier 0. Returns the index of the new position.
func (l *Ledger) Stake(owner lockstake.Address, amount *big.Int, tier uint8, compound bool, now uint64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	index, err := l.stake(owner, amount, tier, compound, now)
	if err != nil {
		return 0, reject("stake", err)
	}
	return index, nil
}

func (l *Ledger) stake(owner lockstake.Address, amount *big.Int, tier uint8, compound bool, now uint64) (int, error) {
	if err := l.ensureIdle(); err != nil {
		return 0, err
	}
	table, err := l.tierTable()
	if err != nil {
		return 0, err
	}
	if !table.Contains(tier) {
		return 0, reverts.ErrInvalidTier
	}
	if amount == nil || amount.Cmp(table.MinStake(tier)) < 0 {
		return 0, reverts.ErrAmountTooLow
	}
	if tier == lockstake.TierCount-1 {
		genesis, err := l.genesisTime.Get()
		if err != nil {
			return 0, err
		}
		if now > genesis+lockstake.Tier4Window {
			return 0, reverts.ErrTierWindowClosed
		}
	}

	if err := l.tokens.Transfer(owner, l.custody, amount); err != nil {
		return 0, err
	}

	var maturity uint64
	if table.Locked(tier) {
		maturity = now + uint64(table.Lock(tier))*lockstake.CyclePeriod
		compound = true
	}
	staked := stakes.New(amount, table.Multiplier(tier))
	position := &positions.Position{
		RawAmount:        staked.Raw,
		WeightedAmount:   staked.Weighted,
		UnclaimedAccrual: new(big.Int),
		StartTime:        now,
		MaturityTime:     maturity,
		LastUpdateTime:   now,
		Tier:             tier,
		Compounding:      compound,
	}
	index, err := l.positions.Append(owner, position)
	if err != nil {
		return 0, err
	}
	if err := l.stats.AddStake(staked); err != nil {
		return 0, err
	}

	l.notifyPrincipal(owner, l.custody, votingWeight(staked.Weighted))
	l.emit(&PositionOpened{Owner: owner, Index: index, Amount: new(big.Int).Set(amount), Tier: tier})
	metricStaked().Add(1)
	l.gaugeTotals()
	logger.Debug("position opened", "owner", owner, "index", index, "tier", tier, "amount", amount)
	return index, nil
}

// Unstake withdraws principal from a matured position, expressed as a
// weighted amount. The raw payout floors the weighted to raw conversion.
// Emptying the position also pays its unclaimed accrual and removes it;
// a partial withdrawal must leave at least the tier minimum behind.
func (l *Ledger) Unstake(owner lockstake.Address, index int, weightedAmount *big.Int, now uint64) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	paid, err := l.unstake(owner, index, weightedAmount, now)
	if err != nil {
		return nil, reject("unstake", err)
	}
	return paid, nil
}

func (l *Ledger) unstake(owner lockstake.Address, index int, weightedAmount *big.Int, now uint64) (*big.Int, error) {
	if err := l.ensureIdle(); err != nil {
		return nil, err
	}
	position, err := l.positions.GetAt(owner, index)
	if err != nil {
		return nil, err
	}
	if !position.Matured(now) {
		return nil, reverts.ErrNotMatured
	}
	if weightedAmount == nil || weightedAmount.Sign() <= 0 {
		return nil, reverts.ErrNothingToClaim
	}
	if weightedAmount.Cmp(position.WeightedAmount) > 0 {
		return nil, reverts.ErrExceedsPosition
	}
	table, err := l.tierTable()
	if err != nil {
		return nil, err
	}

	full := weightedAmount.Cmp(position.WeightedAmount) == 0
	var raw, paid *big.Int
	if full {
		raw = new(big.Int).Set(position.RawAmount)
		paid = new(big.Int).Add(raw, position.UnclaimedAccrual)
	} else {
		raw = stakes.Raw(weightedAmount, table.Multiplier(position.Tier))
		remainder := new(big.Int).Sub(position.RawAmount, raw)
		if remainder.Cmp(table.MinStake(position.Tier)) < 0 {
			return nil, reverts.ErrAmountTooLow
		}
		paid = raw
	}

	if err := l.tokens.Transfer(l.custody, owner, paid); err != nil {
		return nil, err
	}
	if full {
		accrual := new(big.Int).Set(position.UnclaimedAccrual)
		if err := l.positions.RemoveAt(owner, index); err != nil {
			return nil, err
		}
		l.emit(&PositionClosed{Owner: owner, Principal: raw, Accrual: accrual, Tier: position.Tier})
	} else {
		position.RawAmount.Sub(position.RawAmount, raw)
		position.WeightedAmount.Sub(position.WeightedAmount, weightedAmount)
		position.LastUpdateTime = now
		list, err := l.positions.Get(owner)
		if err != nil {
			return nil, err
		}
		list[index] = position
		if err := l.positions.Save(owner, list); err != nil {
			return nil, err
		}
	}
	if err := l.stats.SubStake(&stakes.WeightedStake{Raw: raw, Weighted: weightedAmount}); err != nil {
		return nil, err
	}

	l.notifyPrincipal(l.custody, owner, votingWeight(weightedAmount))
	metricUnstaked().Add(1)
	l.gaugeTotals()
	logger.Debug("position unstaked", "owner", owner, "index", index, "paid", paid, "full", full)
	return paid, nil
}

// EarlyUnstake exits a locked position before maturity, expressed as a
// weighted amount like Unstake. The burn schedule of the tier keeps a
// share of the withdrawn principal plus accrual, which is destroyed.
// Accrual only leaves with a full exit. Returns the net payout.
func (l *Ledger) EarlyUnstake(owner lockstake.Address, index int, weightedAmount *big.Int, now uint64) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	paid, err := l.earlyUnstake(owner, index, weightedAmount, now)
	if err != nil {
		return nil, reject("early_unstake", err)
	}
	return paid, nil
}

func (l *Ledger) earlyUnstake(owner lockstake.Address, index int, weightedAmount *big.Int, now uint64) (*big.Int, error) {
	if err := l.ensureIdle(); err != nil {
		return nil, err
	}
	position, err := l.positions.GetAt(owner, index)
	if err != nil {
		return nil, err
	}
	if position.Tier == 0 {
		return nil, reverts.ErrInvalidTier
	}
	if position.Matured(now) {
		return nil, reverts.ErrAlreadyMatured
	}
	if weightedAmount == nil || weightedAmount.Sign() <= 0 {
		return nil, reverts.ErrNothingToClaim
	}
	if weightedAmount.Cmp(position.WeightedAmount) > 0 {
		return nil, reverts.ErrExceedsPosition
	}
	table, err := l.tierTable()
	if err != nil {
		return nil, err
	}

	full := weightedAmount.Cmp(position.WeightedAmount) == 0
	var raw, gross, accrual *big.Int
	if full {
		raw = new(big.Int).Set(position.RawAmount)
		accrual = new(big.Int).Set(position.UnclaimedAccrual)
		gross = new(big.Int).Add(raw, accrual)
	} else {
		raw = stakes.Raw(weightedAmount, table.Multiplier(position.Tier))
		remainder := new(big.Int).Sub(position.RawAmount, raw)
		if remainder.Cmp(table.MinStake(position.Tier)) < 0 {
			return nil, reverts.ErrAmountTooLow
		}
		accrual = new(big.Int)
		gross = new(big.Int).Set(raw)
	}

	elapsed := position.ElapsedPeriods(now, lockstake.CyclePeriod)
	bps := penalty.Lookup(position.Tier, elapsed)
	burned := penalty.Apply(gross, bps)
	paid := new(big.Int).Sub(gross, burned)

	if err := l.tokens.Transfer(l.custody, owner, paid); err != nil {
		return nil, err
	}
	if err := l.tokens.Burn(l.custody, burned); err != nil {
		return nil, err
	}
	if full {
		if err := l.positions.RemoveAt(owner, index); err != nil {
			return nil, err
		}
		l.emit(&PositionClosed{Owner: owner, Principal: raw, Accrual: accrual, Tier: position.Tier})
	} else {
		position.RawAmount.Sub(position.RawAmount, raw)
		position.WeightedAmount.Sub(position.WeightedAmount, weightedAmount)
		position.LastUpdateTime = now
		list, err := l.positions.Get(owner)
		if err != nil {
			return nil, err
		}
		list[index] = position
		if err := l.positions.Save(owner, list); err != nil {
			return nil, err
		}
	}
	if err := l.stats.SubStake(&stakes.WeightedStake{Raw: raw, Weighted: weightedAmount}); err != nil {
		return nil, err
	}

	l.notifyPrincipal(l.custody, owner, votingWeight(weightedAmount))
	l.emit(&EarlyExit{Owner: owner, Tier: position.Tier, ElapsedPeriods: elapsed, Paid: paid, Burned: burned})
	metricUnstaked().Add(1)
	if burned.IsInt64() {
		metricBurned().Add(burned.Int64())
	}
	l.gaugeTotals()
	logger.Info("early exit", "owner", owner, "tier", position.Tier, "elapsed", elapsed, "burned", burned)
	return paid, nil
}

// votingWeight divides the multiplier scale out of a weighted delta for
// hook notification.
func votingWeight(weighted *big.Int) *big.Int {
	return new(big.Int).Quo(weighted, big.NewInt(stakes.WeightScale))
}

// ClaimAccrual pays out the unclaimed accrual of a non-compounding
// position and zeroes it.
func (l *Ledger) ClaimAccrual(owner lockstake.Address, index int) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	paid, err := l.claimAccrual(owner, index)
	if err != nil {
		return nil, reject("claim", err)
	}
	return paid, nil
}

func (l *Ledger) claimAccrual(owner lockstake.Address, index int) (*big.Int, error) {
	if err := l.ensureIdle(); err != nil {
		return nil, err
	}
	position, err := l.positions.GetAt(owner, index)
	if err != nil {
		return nil, err
	}
	if position.UnclaimedAccrual == nil || position.UnclaimedAccrual.Sign() == 0 {
		return nil, reverts.ErrNothingToClaim
	}
	paid := new(big.Int).Set(position.UnclaimedAccrual)
	if err := l.tokens.Transfer(l.custody, owner, paid); err != nil {
		return nil, err
	}
	position.UnclaimedAccrual = new(big.Int)
	list, err := l.positions.Get(owner)
	if err != nil {
		return nil, err
	}
	list[index] = position
	if err := l.positions.Save(owner, list); err != nil {
		return nil, err
	}
	l.emit(&AccrualClaimed{Owner: owner, Index: index, Amount: paid})
	return paid, nil
}

// ToggleCompounding flips the compounding flag of a tier 0 position.
// Locked tiers always compound. The change applies from the next cycle.
func (l *Ledger) ToggleCompounding(owner lockstake.Address, index int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	compounding, err := l.toggleCompounding(owner, index)
	if err != nil {
		return false, reject("toggle", err)
	}
	return compounding, nil
}

func (l *Ledger) toggleCompounding(owner lockstake.Address, index int) (bool, error) {
	if err := l.ensureIdle(); err != nil {
		return false, err
	}
	position, err := l.positions.GetAt(owner, index)
	if err != nil {
		return false, err
	}
	if position.Tier != 0 {
		return false, reverts.ErrNotCompoundable
	}
	position.Compounding = !position.Compounding
	list, err := l.positions.Get(owner)
	if err != nil {
		return false, err
	}
	list[index] = position
	if err := l.positions.Save(owner, list); err != nil {
		return false, err
	}
	return position.Compounding, nil
}

// SetMultipliers replaces the tier multipliers. Admin only, idle only.
func (l *Ledger) SetMultipliers(caller lockstake.Address, multipliers []uint32) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return reject("set_multipliers", l.adminMutateTable(caller, func(table *tiersTableRef) error {
		next, err := table.current.WithMultipliers(multipliers)
		if err != nil {
			return err
		}
		table.next = next
		return nil
	}))
}

// SetMinStakes replaces the per-tier minimum stakes. Admin only, idle only.
func (l *Ledger) SetMinStakes(caller lockstake.Address, minStakes []*big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return reject("set_min_stakes", l.adminMutateTable(caller, func(table *tiersTableRef) error {
		next, err := table.current.WithMinStakes(minStakes)
		if err != nil {
			return err
		}
		table.next = next
		return nil
	}))
}

// SetTargetBudget replaces the per-cycle reward budget. Admin only, idle only.
func (l *Ledger) SetTargetBudget(caller lockstake.Address, budget *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return reject("set_budget", func() error {
		if err := l.ensureAdmin(caller); err != nil {
			return err
		}
		if budget == nil || budget.Sign() <= 0 {
			return reverts.ErrInvalidConfig
		}
		logger.Info("target budget changed", "budget", budget)
		return l.stats.SetTargetBudget(budget)
	}())
}

func (l *Ledger) ensureAdmin(caller lockstake.Address) error {
	if err := l.ensureIdle(); err != nil {
		return err
	}
	ok, err := l.auth.IsAdmin(caller)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.ErrUnauthorized
	}
	return nil
}

type tiersTableRef struct {
	current *tiers.Table
	next    *tiers.Table
}

func (l *Ledger) adminMutateTable(caller lockstake.Address, mutate func(*tiersTableRef) error) error {
	if err := l.ensureAdmin(caller); err != nil {
		return err
	}
	current, err := l.tierTable()
	if err != nil {
		return err
	}
	ref := &tiersTableRef{current: current}
	if err := mutate(ref); err != nil {
		return err
	}
	logger.Info("tier table changed")
	return l.table.Set(ref.next)
}

func (l *Ledger) gaugeTotals() {
	if raw, err := l.stats.TotalRaw(); err == nil && raw.IsInt64() {
		metricTotalStaked().Set(raw.Int64())
	}
}
