// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelDB(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	key := []byte("key")
	value := []byte("value")

	_, err = db.Get(key)
	assert.True(t, db.IsNotFound(err))

	has, err := db.Has(key)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, db.Put(key, value))

	got, err := db.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, got)

	has, err = db.Has(key)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, db.Delete(key))
	_, err = db.Get(key)
	assert.True(t, db.IsNotFound(err))
}

func TestBucket(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	b1 := Bucket("b1-").NewStore(db)
	b2 := Bucket("b2-").NewStore(db)

	require.NoError(t, b1.Put([]byte("key"), []byte("v1")))
	require.NoError(t, b2.Put([]byte("key"), []byte("v2")))

	v1, err := b1.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v1)

	v2, err := b2.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), v2)

	// raw keys carry the bucket prefix
	raw, err := db.Get([]byte("b1-key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), raw)

	require.NoError(t, b1.Delete([]byte("key")))
	_, err = b1.Get([]byte("key"))
	assert.True(t, b1.IsNotFound(err))
}
