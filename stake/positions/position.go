// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package positions

import (
	"math/big"
)

// Position is one open stake owned by an account. Amounts are big.Ints in
// base units; WeightedAmount carries the x100 multiplier scale.
type Position struct {
	RawAmount        *big.Int
	WeightedAmount   *big.Int
	UnclaimedAccrual *big.Int
	StartTime        uint64
	MaturityTime     uint64 // 0 for the unlocked tier
	LastUpdateTime   uint64
	Tier             uint8
	Compounding      bool // forced true for locked tiers
}

// IsEmpty returns whether the position holds no principal.
func (p *Position) IsEmpty() bool {
	return p.RawAmount == nil || p.RawAmount.Sign() == 0
}

// Matured reports whether the lock has expired. Unlocked positions are
// always matured.
func (p *Position) Matured(now uint64) bool {
	return p.MaturityTime == 0 || now >= p.MaturityTime
}

// ElapsedPeriods returns the count of whole periods since the position started.
func (p *Position) ElapsedPeriods(now, period uint64) uint32 {
	if now <= p.StartTime || period == 0 {
		return 0
	}
	return uint32((now - p.StartTime) / period)
}
