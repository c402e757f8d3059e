// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package globalstats

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/lockstake/kv"
	"github.com/vechain/lockstake/lockstake"
	"github.com/vechain/lockstake/stake/stakes"
	"github.com/vechain/lockstake/storage"
)

func newTestService(t *testing.T) *Service {
	db, err := kv.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(storage.NewContext(db, 128))
}

func TestTotals(t *testing.T) {
	svc := newTestService(t)

	raw, err := svc.TotalRaw()
	require.NoError(t, err)
	assert.Equal(t, int64(0), raw.Int64())

	require.NoError(t, svc.AddStake(stakes.New(big.NewInt(100), 130)))
	require.NoError(t, svc.AddStake(stakes.New(big.NewInt(50), 100)))
	require.NoError(t, svc.SubStake(stakes.New(big.NewInt(30), 100)))

	raw, err = svc.TotalRaw()
	require.NoError(t, err)
	assert.Equal(t, int64(120), raw.Int64())

	weighted, err := svc.TotalWeighted()
	require.NoError(t, err)
	assert.Equal(t, int64(15000), weighted.Int64())

	// totals never go negative
	assert.Error(t, svc.SubStake(stakes.New(big.NewInt(1000), 100)))
}

func TestTargetBudgetDefault(t *testing.T) {
	svc := newTestService(t)

	budget, err := svc.TargetBudget()
	require.NoError(t, err)
	assert.Equal(t, 0, budget.Cmp(lockstake.InitialTargetBudget))

	require.NoError(t, svc.SetTargetBudget(big.NewInt(777)))
	budget, err = svc.TargetBudget()
	require.NoError(t, err)
	assert.Equal(t, int64(777), budget.Int64())
}

func TestDriftSignAndClamp(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.SetTargetBudget(big.NewInt(1000)))

	d, err := svc.Drift()
	require.NoError(t, err)
	assert.Equal(t, int64(0), d.Int64())

	require.NoError(t, svc.SetDrift(big.NewInt(-42)))
	d, err = svc.Drift()
	require.NoError(t, err)
	assert.Equal(t, int64(-42), d.Int64())

	require.NoError(t, svc.SetDrift(big.NewInt(42)))
	d, err = svc.Drift()
	require.NoError(t, err)
	assert.Equal(t, int64(42), d.Int64())

	// magnitude is clamped to the target budget
	require.NoError(t, svc.SetDrift(big.NewInt(-5000)))
	d, err = svc.Drift()
	require.NoError(t, err)
	assert.Equal(t, int64(-1000), d.Int64())
}

func TestCursorAndDeltas(t *testing.T) {
	svc := newTestService(t)

	acct, pos, err := svc.Cursor()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), acct)
	assert.Equal(t, uint64(0), pos)

	require.NoError(t, svc.SetCursor(5, 2))
	acct, pos, err = svc.Cursor()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), acct)
	assert.Equal(t, uint64(2), pos)

	require.NoError(t, svc.AddDeltas(&stakes.WeightedStake{Raw: big.NewInt(10), Weighted: big.NewInt(13)}, big.NewInt(20)))
	require.NoError(t, svc.AddDeltas(nil, big.NewInt(5)))

	staked, distributed, err := svc.Deltas()
	require.NoError(t, err)
	assert.Equal(t, int64(10), staked.Raw.Int64())
	assert.Equal(t, int64(13), staked.Weighted.Int64())
	assert.Equal(t, int64(25), distributed.Int64())

	require.NoError(t, svc.ResetCursor())
	require.NoError(t, svc.ResetDeltas())

	acct, pos, err = svc.Cursor()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), acct+pos)
	staked, _, err = svc.Deltas()
	require.NoError(t, err)
	assert.Equal(t, int64(0), staked.Raw.Int64())
}

func TestCycleFlagsAndTime(t *testing.T) {
	svc := newTestService(t)

	v, err := svc.CycleInProgress()
	require.NoError(t, err)
	assert.False(t, v)

	require.NoError(t, svc.SetCycleInProgress(true))
	v, err = svc.CycleInProgress()
	require.NoError(t, err)
	assert.True(t, v)

	require.NoError(t, svc.SetLastCycleTime(86400))
	ts, err := svc.LastCycleTime()
	require.NoError(t, err)
	assert.Equal(t, uint64(86400), ts)
}
