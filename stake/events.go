// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"

	"github.com/vechain/lockstake/lockstake"
)

// Event is a notification emitted by the ledger after a state change.
type Event interface {
	EventName() string
}

// Sink receives ledger events. Implementations must not call back into
// the ledger.
type Sink interface {
	HandleEvent(Event)
}

// VotingHook is notified on every principal movement so an external
// governance system can track voting weight. The amount is the
// duration-adjusted delta: the weighted principal change with the
// multiplier scale divided out. A zero `from` address marks newly issued
// principal (a compounding credit).
type VotingHook interface {
	OnPrincipalMoved(from, to lockstake.Address, amount *big.Int)
}

type PositionOpened struct {
	Owner  lockstake.Address
	Index  int
	Amount *big.Int
	Tier   uint8
}

func (*PositionOpened) EventName() string { return "PositionOpened" }

type PositionClosed struct {
	Owner     lockstake.Address
	Principal *big.Int
	Accrual   *big.Int
	Tier      uint8
}

func (*PositionClosed) EventName() string { return "PositionClosed" }

type AccrualClaimed struct {
	Owner  lockstake.Address
	Index  int
	Amount *big.Int
}

func (*AccrualClaimed) EventName() string { return "AccrualClaimed" }

type EarlyExit struct {
	Owner          lockstake.Address
	Tier           uint8
	ElapsedPeriods uint32
	Paid           *big.Int
	Burned         *big.Int
}

func (*EarlyExit) EventName() string { return "EarlyExit" }

type CycleCompleted struct {
	Timestamp   uint64
	Distributed *big.Int
	Drift       *big.Int
}

func (*CycleCompleted) EventName() string { return "CycleCompleted" }

func (l *Ledger) emit(ev Event) {
	if l.sink != nil {
		l.sink.HandleEvent(ev)
	}
}

func (l *Ledger) notifyPrincipal(from, to lockstake.Address, amount *big.Int) {
	if l.hook != nil && amount.Sign() > 0 {
		l.hook.OnPrincipalMoved(from, to, amount)
	}
}
