// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/lockstake/api"
	"github.com/vechain/lockstake/api/stakes"
	"github.com/vechain/lockstake/authority"
	"github.com/vechain/lockstake/kv"
	"github.com/vechain/lockstake/lockstake"
	"github.com/vechain/lockstake/stake"
	"github.com/vechain/lockstake/storage"
	"github.com/vechain/lockstake/token"
)

const genesis = uint64(1_000_000)

var (
	admin   = lockstake.BytesToAddress([]byte("admin"))
	custody = lockstake.BytesToAddress([]byte("custody"))
	alice   = lockstake.BytesToAddress([]byte("alice"))
)

func newTestServer(t *testing.T) (*httptest.Server, *stake.Ledger) {
	db, err := kv.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	context := storage.NewContext(db, 1024)
	tokens := token.New(context)
	auth := authority.New(context)
	ledger := stake.New(context, tokens, auth, custody, stake.Options{})
	require.NoError(t, ledger.Initialize(admin, genesis))
	require.NoError(t, tokens.InitializeSupply(alice, big.NewInt(1e18)))

	server := httptest.NewServer(api.New(ledger, tokens, api.Options{LogRequests: true}))
	t.Cleanup(server.Close)
	return server, ledger
}

func httpGet(t *testing.T, url string, out any) int {
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil && res.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func httpPost(t *testing.T, url string, body any, out any) (int, string) {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if out != nil && res.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(raw, out))
	}
	return res.StatusCode, string(raw)
}

func TestGetAccountPositions(t *testing.T) {
	server, ledger := newTestServer(t)

	_, err := ledger.Stake(alice, big.NewInt(100_0000_0000), 1, false, genesis)
	require.NoError(t, err)

	var out []*stakes.Position
	status := httpGet(t, server.URL+"/stakes/"+alice.String(), &out)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, out, 1)
	assert.Equal(t, uint8(1), out[0].Tier)
	assert.True(t, out[0].Compounding)
	assert.Equal(t, genesis, out[0].StartTime)

	// unknown account yields an empty list
	other := lockstake.BytesToAddress([]byte("other"))
	out = nil
	status = httpGet(t, server.URL+"/stakes/"+other.String(), &out)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, out)

	status = httpGet(t, server.URL+"/stakes/not-an-address", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetTotalsAndConfig(t *testing.T) {
	server, ledger := newTestServer(t)

	_, err := ledger.Stake(alice, big.NewInt(100_0000_0000), 0, false, genesis)
	require.NoError(t, err)

	var totals stakes.Totals
	status := httpGet(t, server.URL+"/stakes/totals", &totals)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, uint64(1), totals.Accounts)
	assert.Equal(t, "0", totals.Drift)
	assert.False(t, totals.CycleInProgress)
	assert.Equal(t, genesis, totals.LastCycleTime)

	var config stakes.Config
	status = httpGet(t, server.URL+"/stakes/config", &config)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []uint32{100, 130, 160, 220, 300}, config.Multipliers)
	assert.Equal(t, []uint32{0, 90, 180, 365, 365}, config.LockCycles)
	assert.Equal(t, genesis, config.GenesisTime)
}

func TestTickEndpoint(t *testing.T) {
	server, ledger := newTestServer(t)

	_, err := ledger.Stake(alice, big.NewInt(100_0000_0000), 0, false, genesis)
	require.NoError(t, err)

	// unauthorized caller
	status, _ := httpPost(t, server.URL+"/stakes/tick", &stakes.TickRequest{
		Caller: alice.String(),
		Now:    genesis + lockstake.CyclePeriod,
	}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// not due yet
	status, body := httpPost(t, server.URL+"/stakes/tick", &stakes.TickRequest{
		Caller: admin.String(),
		Now:    genesis + 10,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "not elapsed")

	var out stakes.TickResponse
	status, _ = httpPost(t, server.URL+"/stakes/tick", &stakes.TickRequest{
		Caller: admin.String(),
		Now:    genesis + lockstake.CyclePeriod,
	}, &out)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, out.Done)
	assert.Equal(t, uint64(1), out.Visited)

	// strict JSON: unknown fields rejected
	res, err := http.Post(server.URL+"/stakes/tick", "application/json",
		bytes.NewReader([]byte(fmt.Sprintf(`{"caller": %q, "bogus": 1}`, admin.String()))))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
