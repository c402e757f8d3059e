// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import "fmt"

// Meter bounds the unit of work a single invocation may spend.
// Work is an abstract cost, not wall time; callers decide the per-op price.
type Meter struct {
	budget uint64
	used   uint64
	ops    uint64
}

// NewMeter creates a meter with the given work budget.
func NewMeter(budget uint64) *Meter {
	return &Meter{budget: budget}
}

// TryUse consumes units from the budget.
// It returns false, consuming nothing, when the budget would be exceeded.
func (m *Meter) TryUse(units uint64) bool {
	if m.used+units > m.budget {
		return false
	}
	m.used += units
	m.ops++
	return true
}

// Used returns the consumed work units.
func (m *Meter) Used() uint64 {
	return m.used
}

// Remaining returns the work units left in the budget.
func (m *Meter) Remaining() uint64 {
	return m.budget - m.used
}

// Breakdown returns a human readable usage summary.
func (m *Meter) Breakdown() string {
	return fmt.Sprintf("OPS: %d | USED: %d | BUDGET: %d", m.ops, m.used, m.budget)
}
