// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/lockstake/kv"
	"github.com/vechain/lockstake/lockstake"
)

func newTestContext(t *testing.T) *Context {
	db, err := kv.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(db, 16)
}

func TestUint256(t *testing.T) {
	ctx := newTestContext(t)
	cell := NewUint256(ctx, NameToSlot("total"))

	v, err := cell.Get()
	require.NoError(t, err)
	assert.Equal(t, int64(0), v.Int64())

	require.NoError(t, cell.Set(big.NewInt(100)))
	require.NoError(t, cell.Add(big.NewInt(30)))
	require.NoError(t, cell.Sub(big.NewInt(10)))

	v, err = cell.Get()
	require.NoError(t, err)
	assert.Equal(t, int64(120), v.Int64())

	assert.Error(t, cell.Set(big.NewInt(-1)))
}

func TestUint64AndBool(t *testing.T) {
	ctx := newTestContext(t)
	num := NewUint64(ctx, NameToSlot("cursor"))
	flag := NewBool(ctx, NameToSlot("in-progress"))

	n, err := num.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	require.NoError(t, num.Set(42))
	n, err = num.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), n)

	b, err := flag.Get()
	require.NoError(t, err)
	assert.False(t, b)

	require.NoError(t, flag.Set(true))
	b, err = flag.Get()
	require.NoError(t, err)
	assert.True(t, b)

	require.NoError(t, flag.Set(false))
	b, err = flag.Get()
	require.NoError(t, err)
	assert.False(t, b)
}

type record struct {
	Amount *big.Int
	Count  uint64
}

func TestMapping(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[lockstake.Address, *record](ctx, NameToSlot("records"))

	addr := lockstake.BytesToAddress([]byte("a1"))

	got, err := m.Get(addr)
	require.NoError(t, err)
	assert.Nil(t, got.Amount)

	require.NoError(t, m.Set(addr, &record{Amount: big.NewInt(7), Count: 2}))

	got, err = m.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Amount.Int64())
	assert.Equal(t, uint64(2), got.Count)

	require.NoError(t, m.Delete(addr))
	got, err = m.Get(addr)
	require.NoError(t, err)
	assert.Nil(t, got.Amount)
}

func TestMappingSurvivesCacheEviction(t *testing.T) {
	db, err := kv.NewMem()
	require.NoError(t, err)
	defer db.Close()

	ctx := NewContext(db, 1)
	m := NewMapping[lockstake.Address, *record](ctx, NameToSlot("records"))

	a1 := lockstake.BytesToAddress([]byte("a1"))
	a2 := lockstake.BytesToAddress([]byte("a2"))

	require.NoError(t, m.Set(a1, &record{Amount: big.NewInt(1), Count: 1}))
	require.NoError(t, m.Set(a2, &record{Amount: big.NewInt(2), Count: 2}))

	got, err := m.Get(a1) // evicted, reloaded from the store
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Amount.Int64())
}

func TestValue(t *testing.T) {
	ctx := newTestContext(t)
	cell := NewValue[*record](ctx, NameToSlot("singleton"))

	got, err := cell.Get()
	require.NoError(t, err)
	assert.Nil(t, got.Amount)

	require.NoError(t, cell.Set(&record{Amount: big.NewInt(9), Count: 1}))
	got, err = cell.Get()
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.Amount.Int64())
}

func TestContextsOverBucketsIsolated(t *testing.T) {
	db, err := kv.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	a := NewContext(kv.Bucket("a-").NewStore(db), 16)
	b := NewContext(kv.Bucket("b-").NewStore(db), 16)

	slot := NameToSlot("counter")
	require.NoError(t, NewUint64(a, slot).Set(7))

	// the same slot under another bucket reads empty
	got, err := NewUint64(b, slot).Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)

	got, err = NewUint64(a, slot).Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), got)
}

func TestMeter(t *testing.T) {
	m := NewMeter(10)

	assert.True(t, m.TryUse(4))
	assert.True(t, m.TryUse(6))
	assert.False(t, m.TryUse(1))
	assert.Equal(t, uint64(10), m.Used())
	assert.Equal(t, uint64(0), m.Remaining())
}
