// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stake implements the time-locked staking ledger. Positions
// carry duration-weighted amounts; a resumable accrual engine distributes
// a per-cycle budget proportionally across all open positions.
package stake

import (
	"math/big"
	"sync"

	"github.com/vechain/lockstake/authority"
	"github.com/vechain/lockstake/lockstake"
	"github.com/vechain/lockstake/log"
	"github.com/vechain/lockstake/stake/globalstats"
	"github.com/vechain/lockstake/stake/positions"
	"github.com/vechain/lockstake/stake/tiers"
	"github.com/vechain/lockstake/storage"
	"github.com/vechain/lockstake/token"
)

var logger = log.WithContext("pkg", "stake")

// Ledger is the staking ledger facade. All mutations validate before
// touching state and revert with errors from the reverts package. A
// single mutex serializes every public operation; the accrual engine
// and the HTTP surface share one Ledger.
type Ledger struct {
	mu        sync.Mutex
	positions *positions.Service
	stats     *globalstats.Service
	auth      *authority.Service
	tokens    *token.Ledger

	table       *storage.Value[*tiers.Table]
	genesisTime *storage.Uint64

	custody lockstake.Address
	sink    Sink
	hook    VotingHook
}

// Options carries the optional collaborators of a Ledger.
type Options struct {
	Sink Sink
	Hook VotingHook
}

// New creates a Ledger over a storage context. The custody address holds
// staked principal and undistributed rewards in the token ledger.
func New(
	context *storage.Context,
	tokens *token.Ledger,
	auth *authority.Service,
	custody lockstake.Address,
	options Options,
) *Ledger {
	return &Ledger{
		positions:   positions.New(context),
		stats:       globalstats.New(context),
		auth:        auth,
		tokens:      tokens,
		table:       storage.NewValue[*tiers.Table](context, storage.NameToSlot("tier-table")),
		genesisTime: storage.NewUint64(context, storage.NameToSlot("genesis-time")),
		custody:     custody,
		sink:        options.Sink,
		hook:        options.Hook,
	}
}

// Initialize seeds the ledger at genesis: stamps the genesis time, aligns
// the first cycle and sets the admin. Re-initialization is a no-op.
func (l *Ledger) Initialize(admin lockstake.Address, now uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	stamped, err := l.genesisTime.Get()
	if err != nil {
		return err
	}
	if stamped != 0 {
		return nil
	}
	if err := l.genesisTime.Set(now); err != nil {
		return err
	}
	if err := l.stats.SetLastCycleTime(now); err != nil {
		return err
	}
	return l.auth.Initialize(admin)
}

// TierTable returns the active tier table, falling back to the default
// when no override is stored.
func (l *Ledger) TierTable() (*tiers.Table, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tierTable()
}

// tierTable reads the table without taking the ledger lock; callers
// already hold it.
func (l *Ledger) tierTable() (*tiers.Table, error) {
	table, err := l.table.Get()
	if err != nil {
		return nil, err
	}
	if len(table.Multipliers) == 0 {
		return tiers.DefaultTable(), nil
	}
	return table, nil
}

// GenesisTime returns the timestamp stamped by Initialize.
func (l *Ledger) GenesisTime() (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.genesisTime.Get()
}

// Positions returns the open positions of an account.
func (l *Ledger) Positions(owner lockstake.Address) ([]*positions.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.positions.Get(owner)
}

// AccountCount returns the number of accounts holding open positions.
func (l *Ledger) AccountCount() (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.positions.AccountCount()
}

// Totals returns the global raw and weighted staked totals.
func (l *Ledger) Totals() (raw, weighted *big.Int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if raw, err = l.stats.TotalRaw(); err != nil {
		return nil, nil, err
	}
	if weighted, err = l.stats.TotalWeighted(); err != nil {
		return nil, nil, err
	}
	return raw, weighted, nil
}

// TargetBudget returns the per-cycle reward budget.
func (l *Ledger) TargetBudget() (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats.TargetBudget()
}

// Drift returns the signed budget drift carried into the next cycle.
func (l *Ledger) Drift() (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats.Drift()
}

// CycleInProgress reports whether a reward sweep is active.
func (l *Ledger) CycleInProgress() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats.CycleInProgress()
}

// LastCycleTime returns the timestamp of the last completed cycle.
func (l *Ledger) LastCycleTime() (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats.LastCycleTime()
}
