// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tiers

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()
	require.NoError(t, table.Validate())

	assert.Equal(t, uint32(100), table.Multiplier(0))
	assert.Equal(t, uint32(300), table.Multiplier(4))
	assert.Equal(t, uint32(0), table.Lock(0))
	assert.Equal(t, uint32(365), table.Lock(3))
	assert.False(t, table.Locked(0))
	assert.True(t, table.Locked(1))
	assert.True(t, table.Contains(4))
	assert.False(t, table.Contains(5))
	assert.True(t, table.MinStake(4).Cmp(table.MinStake(0)) > 0)
}

func TestValidateRejectsMalformed(t *testing.T) {
	tests := []struct {
		name        string
		multipliers []uint32
	}{
		{"tier0 not base", []uint32{110, 130, 160, 220, 300}},
		{"not increasing", []uint32{100, 130, 130, 220, 300}},
		{"decreasing", []uint32{100, 130, 120, 220, 300}},
		{"wrong length", []uint32{100, 130, 160, 220}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultTable().WithMultipliers(tt.multipliers)
			assert.Error(t, err)
		})
	}
}

func TestWithMultipliers(t *testing.T) {
	table, err := DefaultTable().WithMultipliers([]uint32{100, 150, 200, 250, 400})
	require.NoError(t, err)
	assert.Equal(t, uint32(150), table.Multiplier(1))
	// original untouched
	assert.Equal(t, uint32(130), DefaultTable().Multiplier(1))
}

func TestWithMinStakes(t *testing.T) {
	mins := []*big.Int{
		big.NewInt(1), big.NewInt(1), big.NewInt(1), big.NewInt(1), big.NewInt(10),
	}
	table, err := DefaultTable().WithMinStakes(mins)
	require.NoError(t, err)
	assert.Equal(t, int64(10), table.MinStake(4).Int64())

	mins[0] = big.NewInt(0)
	_, err = DefaultTable().WithMinStakes(mins)
	assert.Error(t, err)
}
