// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tiers

import (
	"math/big"

	"github.com/vechain/lockstake/lockstake"
	"github.com/vechain/lockstake/stake/reverts"
)

// BaseMultiplier is the multiplier of the unlocked tier, in hundredths.
const BaseMultiplier = uint32(100)

// Table is the duration tier table. Index is the tier; tier 0 is unlocked.
// Multipliers are expressed in hundredths (130 == 1.3x).
type Table struct {
	Multipliers []uint32
	LockCycles  []uint32
	MinStakes   []*big.Int
}

// DefaultTable returns the genesis tier table.
func DefaultTable() *Table {
	return &Table{
		Multipliers: []uint32{100, 130, 160, 220, 300},
		LockCycles:  []uint32{0, 90, 180, 365, 365},
		MinStakes: []*big.Int{
			new(big.Int).Set(lockstake.InitialMinStake),
			new(big.Int).Set(lockstake.InitialMinStake),
			new(big.Int).Set(lockstake.InitialMinStake),
			new(big.Int).Set(lockstake.InitialMinStake),
			new(big.Int).Set(lockstake.InitialTier4MinStake),
		},
	}
}

// Validate checks the structural invariants of the table.
// Tier 0 keeps the base multiplier and weights strictly increase by index.
func (t *Table) Validate() error {
	if len(t.Multipliers) != lockstake.TierCount ||
		len(t.LockCycles) != lockstake.TierCount ||
		len(t.MinStakes) != lockstake.TierCount {
		return reverts.ErrInvalidConfig
	}
	if t.Multipliers[0] != BaseMultiplier || t.LockCycles[0] != 0 {
		return reverts.ErrInvalidConfig
	}
	for i := 1; i < lockstake.TierCount; i++ {
		if t.Multipliers[i] <= t.Multipliers[i-1] {
			return reverts.ErrInvalidConfig
		}
	}
	for _, min := range t.MinStakes {
		if min == nil || min.Sign() <= 0 {
			return reverts.ErrInvalidConfig
		}
	}
	return nil
}

// Contains reports whether the tier index is in range.
func (t *Table) Contains(tier uint8) bool {
	return int(tier) < len(t.Multipliers)
}

// Multiplier returns the weight multiplier of the tier, in hundredths.
func (t *Table) Multiplier(tier uint8) uint32 {
	return t.Multipliers[tier]
}

// Lock returns the lock length of the tier, in cycles.
func (t *Table) Lock(tier uint8) uint32 {
	return t.LockCycles[tier]
}

// MinStake returns the minimum raw stake accepted for the tier.
func (t *Table) MinStake(tier uint8) *big.Int {
	return t.MinStakes[tier]
}

// Locked reports whether the tier carries a lock period.
func (t *Table) Locked(tier uint8) bool {
	return t.LockCycles[tier] > 0
}

// WithMultipliers returns a copy of the table with the multipliers replaced.
// The copy is validated before being returned.
func (t *Table) WithMultipliers(multipliers []uint32) (*Table, error) {
	next := &Table{
		Multipliers: append([]uint32(nil), multipliers...),
		LockCycles:  append([]uint32(nil), t.LockCycles...),
		MinStakes:   make([]*big.Int, len(t.MinStakes)),
	}
	for i, min := range t.MinStakes {
		next.MinStakes[i] = new(big.Int).Set(min)
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return next, nil
}

// WithMinStakes returns a copy of the table with the minimum stakes replaced.
// The copy is validated before being returned.
func (t *Table) WithMinStakes(minStakes []*big.Int) (*Table, error) {
	next := &Table{
		Multipliers: append([]uint32(nil), t.Multipliers...),
		LockCycles:  append([]uint32(nil), t.LockCycles...),
		MinStakes:   make([]*big.Int, len(minStakes)),
	}
	for i, min := range minStakes {
		if min == nil {
			return nil, reverts.ErrInvalidConfig
		}
		next.MinStakes[i] = new(big.Int).Set(min)
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return next, nil
}
