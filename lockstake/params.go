// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lockstake

import "math/big"

// Constants of the staking ledger.
const (
	CyclePeriod    uint64 = 24 * 60 * 60 // seconds per accrual cycle
	TickGrace      uint64 = 5 * 60       // tolerance subtracted from the cycle period when admitting a tick
	TierCount             = 5
	TokenDecimals         = 8 // amounts are base units scaled by 1e8

	// Tier4Window is the window after genesis time during which tier 4
	// accepts new positions.
	Tier4Window uint64 = 30 * CyclePeriod
)

var (
	// CustodyAddress holds staked principal and undistributed rewards in
	// the token ledger.
	CustodyAddress = BytesToAddress([]byte("lockstake-custody"))

	// InitialTargetBudget is the default reward budget distributed per cycle, in base units.
	InitialTargetBudget = big.NewInt(624_657_534_246)

	// InitialMinStake is the default minimum stake for tiers 0..3, in base units.
	InitialMinStake = big.NewInt(100_0000_0000) // 100 tokens

	// InitialTier4MinStake is the default minimum stake for tier 4, in base units.
	InitialTier4MinStake = big.NewInt(1000_0000_0000) // 1000 tokens
)
