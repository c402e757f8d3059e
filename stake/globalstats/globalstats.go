// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package globalstats keeps the ledger-wide aggregates and the accrual
// engine's durable state: totals, the budget drift corrector, sweep
// cursors and the pending deltas accumulated across resumable ticks.
package globalstats

import (
	"math/big"

	"github.com/vechain/lockstake/lockstake"
	"github.com/vechain/lockstake/stake/stakes"
	"github.com/vechain/lockstake/storage"
)

// driftRecord holds the signed budget drift. RLP cannot carry negative
// big integers, so the sign is kept apart from the magnitude.
type driftRecord struct {
	Neg bool
	Abs *big.Int
}

// cursorRecord marks where an in-progress sweep resumes.
type cursorRecord struct {
	Account  uint64
	Position uint64
}

// deltaRecord accumulates sweep results until the cycle completes.
type deltaRecord struct {
	Raw         *big.Int // principal added by compounding
	Weighted    *big.Int // weighted amount added by compounding
	Distributed *big.Int // total rewards handed out this cycle
}

type Service struct {
	totalRaw      *storage.Uint256
	totalWeighted *storage.Uint256
	targetBudget  *storage.Uint256
	drift         *storage.Value[*driftRecord]
	lastCycleTime *storage.Uint64
	inProgress    *storage.Bool
	cursor        *storage.Value[*cursorRecord]
	deltas        *storage.Value[*deltaRecord]
}

func New(context *storage.Context) *Service {
	return &Service{
		totalRaw:      storage.NewUint256(context, storage.NameToSlot("total-raw")),
		totalWeighted: storage.NewUint256(context, storage.NameToSlot("total-weighted")),
		targetBudget:  storage.NewUint256(context, storage.NameToSlot("target-budget")),
		drift:         storage.NewValue[*driftRecord](context, storage.NameToSlot("budget-drift")),
		lastCycleTime: storage.NewUint64(context, storage.NameToSlot("last-cycle-time")),
		inProgress:    storage.NewBool(context, storage.NameToSlot("cycle-in-progress")),
		cursor:        storage.NewValue[*cursorRecord](context, storage.NameToSlot("sweep-cursor")),
		deltas:        storage.NewValue[*deltaRecord](context, storage.NameToSlot("sweep-deltas")),
	}
}

func (s *Service) TotalRaw() (*big.Int, error) {
	return s.totalRaw.Get()
}

func (s *Service) TotalWeighted() (*big.Int, error) {
	return s.totalWeighted.Get()
}

// AddStake grows both totals by a weighted stake.
func (s *Service) AddStake(delta *stakes.WeightedStake) error {
	if err := s.totalRaw.Add(delta.Raw); err != nil {
		return err
	}
	return s.totalWeighted.Add(delta.Weighted)
}

// SubStake shrinks both totals by a weighted stake.
func (s *Service) SubStake(delta *stakes.WeightedStake) error {
	if err := s.totalRaw.Sub(delta.Raw); err != nil {
		return err
	}
	return s.totalWeighted.Sub(delta.Weighted)
}

// TargetBudget returns the configured per-cycle reward budget. An
// unconfigured ledger falls back to the initial budget.
func (s *Service) TargetBudget() (*big.Int, error) {
	v, err := s.targetBudget.Get()
	if err != nil {
		return nil, err
	}
	if v.Sign() == 0 {
		return new(big.Int).Set(lockstake.InitialTargetBudget), nil
	}
	return v, nil
}

func (s *Service) SetTargetBudget(budget *big.Int) error {
	return s.targetBudget.Set(budget)
}

// Drift returns the signed accumulated budget drift. Positive means the
// ledger has over-distributed and the next cycle's budget shrinks.
func (s *Service) Drift() (*big.Int, error) {
	rec, err := s.drift.Get()
	if err != nil {
		return nil, err
	}
	if rec.Abs == nil {
		return new(big.Int), nil
	}
	v := new(big.Int).Set(rec.Abs)
	if rec.Neg {
		v.Neg(v)
	}
	return v, nil
}

// SetDrift stores the signed drift, clamping its magnitude to the target
// budget so skipped cycles cannot grow it without bound.
func (s *Service) SetDrift(drift *big.Int) error {
	target, err := s.TargetBudget()
	if err != nil {
		return err
	}
	abs := new(big.Int).Abs(drift)
	if abs.Cmp(target) > 0 {
		abs.Set(target)
	}
	return s.drift.Set(&driftRecord{Neg: drift.Sign() < 0, Abs: abs})
}

func (s *Service) LastCycleTime() (uint64, error) {
	return s.lastCycleTime.Get()
}

func (s *Service) SetLastCycleTime(ts uint64) error {
	return s.lastCycleTime.Set(ts)
}

func (s *Service) CycleInProgress() (bool, error) {
	return s.inProgress.Get()
}

func (s *Service) SetCycleInProgress(v bool) error {
	return s.inProgress.Set(v)
}

// Cursor returns where the in-progress sweep resumes.
func (s *Service) Cursor() (account, position uint64, err error) {
	rec, err := s.cursor.Get()
	if err != nil {
		return 0, 0, err
	}
	return rec.Account, rec.Position, nil
}

func (s *Service) SetCursor(account, position uint64) error {
	return s.cursor.Set(&cursorRecord{Account: account, Position: position})
}

func (s *Service) ResetCursor() error {
	return s.cursor.Set(&cursorRecord{})
}

// Deltas returns the sweep accumulators. Unset fields read as zero.
func (s *Service) Deltas() (staked *stakes.WeightedStake, distributed *big.Int, err error) {
	rec, err := s.deltas.Get()
	if err != nil {
		return nil, nil, err
	}
	staked = &stakes.WeightedStake{Raw: orZero(rec.Raw), Weighted: orZero(rec.Weighted)}
	return staked, orZero(rec.Distributed), nil
}

// AddDeltas grows the sweep accumulators. A nil staked delta is skipped.
func (s *Service) AddDeltas(staked *stakes.WeightedStake, distributed *big.Int) error {
	cur, d, err := s.Deltas()
	if err != nil {
		return err
	}
	cur.Add(staked)
	if distributed != nil {
		d.Add(d, distributed)
	}
	return s.deltas.Set(&deltaRecord{Raw: cur.Raw, Weighted: cur.Weighted, Distributed: d})
}

func (s *Service) ResetDeltas() error {
	return s.deltas.Set(&deltaRecord{})
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
