// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/lockstake/stake/positions"
)

// Position is the JSON view of one open position.
type Position struct {
	RawAmount        *math.HexOrDecimal256 `json:"rawAmount"`
	WeightedAmount   *math.HexOrDecimal256 `json:"weightedAmount"`
	UnclaimedAccrual *math.HexOrDecimal256 `json:"unclaimedAccrual"`
	StartTime        uint64                `json:"startTime"`
	MaturityTime     uint64                `json:"maturityTime"`
	LastUpdateTime   uint64                `json:"lastUpdateTime"`
	Tier             uint8                 `json:"tier"`
	Compounding      bool                  `json:"compounding"`
}

func convertPosition(p *positions.Position) *Position {
	return &Position{
		RawAmount:        (*math.HexOrDecimal256)(p.RawAmount),
		WeightedAmount:   (*math.HexOrDecimal256)(p.WeightedAmount),
		UnclaimedAccrual: (*math.HexOrDecimal256)(p.UnclaimedAccrual),
		StartTime:        p.StartTime,
		MaturityTime:     p.MaturityTime,
		LastUpdateTime:   p.LastUpdateTime,
		Tier:             p.Tier,
		Compounding:      p.Compounding,
	}
}

// Totals is the JSON view of the global aggregates.
type Totals struct {
	Accounts        uint64                `json:"accounts"`
	TotalStaked     *math.HexOrDecimal256 `json:"totalStaked"`
	TotalWeighted   *math.HexOrDecimal256 `json:"totalWeighted"`
	Distributed     *math.HexOrDecimal256 `json:"distributed"` // to date
	Burned          *math.HexOrDecimal256 `json:"burned"`
	Drift           string                `json:"drift"` // signed decimal
	CycleInProgress bool                  `json:"cycleInProgress"`
	LastCycleTime   uint64                `json:"lastCycleTime"`
}

// Config is the JSON view of the tier table and budget.
type Config struct {
	Multipliers  []uint32                `json:"multipliers"` // hundredths
	LockCycles   []uint32                `json:"lockCycles"`
	MinStakes    []*math.HexOrDecimal256 `json:"minStakes"`
	TargetBudget *math.HexOrDecimal256   `json:"targetBudget"`
	GenesisTime  uint64                  `json:"genesisTime"`
}

// TickRequest asks the engine for one bounded unit of work.
type TickRequest struct {
	Caller     string `json:"caller"`
	Now        uint64 `json:"now,omitempty"`        // unix seconds, defaults to the clock
	WorkBudget uint64 `json:"workBudget,omitempty"` // defaults to defaultWorkBudget
}

// TickResponse reports what the tick accomplished. Distributed counts
// the rewards credited during this tick only.
type TickResponse struct {
	Done        bool                  `json:"done"`
	Visited     uint64                `json:"visited"`
	Distributed *math.HexOrDecimal256 `json:"distributed"`
	Drift       string                `json:"drift,omitempty"`
}
