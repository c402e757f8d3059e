// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package penalty

import (
	"math/big"

	"github.com/vechain/lockstake/lockstake"
	"github.com/vechain/lockstake/stake/reverts"
)

// BpsDenominator is the basis point scale of penalty rates.
const BpsDenominator = 10_000

// Point is one breakpoint of a decaying burn schedule. The rate applies from
// FromPeriod (inclusive) until the next breakpoint.
type Point struct {
	FromPeriod uint32
	Bps        uint32
}

// Schedule is the ordered breakpoint table of one tier.
type Schedule []Point

// schedules holds the per-tier burn schedules, keyed by tier index.
// Tier 0 is unlocked and has no schedule. Every locked schedule starts at
// 9000 bps and decays to exactly zero at the tier's maturity boundary.
var schedules = [lockstake.TierCount]Schedule{
	1: {{0, 9000}, {30, 6000}, {60, 3000}, {90, 0}},
	2: {{0, 9000}, {45, 6750}, {90, 4500}, {135, 2250}, {180, 0}},
	3: {{0, 9000}, {91, 6750}, {182, 4500}, {273, 2250}, {365, 0}},
	4: {{0, 9000}, {73, 7200}, {146, 5400}, {219, 3600}, {292, 1800}, {365, 0}},
}

// Tier returns the burn schedule of the tier, nil for the unlocked tier.
func Tier(tier uint8) Schedule {
	if int(tier) >= len(schedules) {
		return nil
	}
	return schedules[tier]
}

// Lookup returns the burn rate in basis points for a position of the given
// tier exited after elapsed whole periods. The unlocked tier always yields 0.
func Lookup(tier uint8, elapsed uint32) uint32 {
	schedule := Tier(tier)
	if len(schedule) == 0 {
		return 0
	}
	bps := uint32(0)
	for _, point := range schedule {
		if elapsed < point.FromPeriod {
			break
		}
		bps = point.Bps
	}
	return bps
}

// Apply computes floor(amount * bps / 10000).
func Apply(amount *big.Int, bps uint32) *big.Int {
	burned := new(big.Int).Mul(amount, big.NewInt(int64(bps)))
	return burned.Quo(burned, big.NewInt(BpsDenominator))
}

// Validate checks a schedule against a tier's lock length: breakpoints in
// strictly increasing order, rates non-increasing, and an exact zero at or
// before maturity.
func Validate(schedule Schedule, lockCycles uint32) error {
	if len(schedule) == 0 {
		if lockCycles == 0 {
			return nil
		}
		return reverts.ErrInvalidConfig
	}
	if schedule[0].FromPeriod != 0 {
		return reverts.ErrInvalidConfig
	}
	for i := 1; i < len(schedule); i++ {
		if schedule[i].FromPeriod <= schedule[i-1].FromPeriod {
			return reverts.ErrInvalidConfig
		}
		if schedule[i].Bps > schedule[i-1].Bps {
			return reverts.ErrInvalidConfig
		}
	}
	last := schedule[len(schedule)-1]
	if last.Bps != 0 || last.FromPeriod > lockCycles {
		return reverts.ErrInvalidConfig
	}
	return nil
}
