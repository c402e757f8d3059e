// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package datagen provides random fixtures for tests.
package datagen

import (
	"crypto/rand"
	"math/big"
	mathrand "math/rand"

	"github.com/vechain/lockstake/lockstake"
)

func RandInt() int {
	return mathrand.Int() //#nosec G404
}

func RandIntN(n int) int {
	return mathrand.Intn(n) //#nosec G404
}

func RandUint64() uint64 {
	return mathrand.Uint64() //#nosec G404
}

func RandAddress() (addr lockstake.Address) {
	rand.Read(addr[:])
	return
}

func RandBytes32() (b lockstake.Bytes32) {
	rand.Read(b[:])
	return
}

// RandAmount returns a random token amount in [min, min+spread), at base
// unit scale.
func RandAmount(min int64, spread int64) *big.Int {
	return big.NewInt(min + mathrand.Int63n(spread)) //#nosec G404
}
