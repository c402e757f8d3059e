// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/vechain/lockstake/kv"
	"github.com/vechain/lockstake/lockstake"
)

// Context is the root of a keyed storage space. Typed cells and mappings
// derive their slots from it and share its read cache.
type Context struct {
	store kv.GetPutter
	cache *lru.Cache // decoded values keyed by slot
}

// NewContext creates a storage context over the given store.
// cacheSize <= 0 disables the read cache.
func NewContext(store kv.GetPutter, cacheSize int) *Context {
	var c *lru.Cache
	if cacheSize > 0 {
		c, _ = lru.New(cacheSize)
	}
	return &Context{store: store, cache: c}
}

func (c *Context) cacheGet(slot lockstake.Bytes32) (any, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(slot)
}

func (c *Context) cacheAdd(slot lockstake.Bytes32, v any) {
	if c.cache != nil {
		c.cache.Add(slot, v)
	}
}

func (c *Context) cacheRemove(slot lockstake.Bytes32) {
	if c.cache != nil {
		c.cache.Remove(slot)
	}
}

// getRaw loads raw bytes of a slot. Missing slots yield nil bytes and no error.
func (c *Context) getRaw(slot lockstake.Bytes32) ([]byte, error) {
	data, err := c.store.Get(slot.Bytes())
	if err != nil {
		if c.store.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// putRaw stores raw bytes of a slot. Empty bytes delete the slot.
func (c *Context) putRaw(slot lockstake.Bytes32, data []byte) error {
	if len(data) == 0 {
		return c.store.Delete(slot.Bytes())
	}
	return c.store.Put(slot.Bytes(), data)
}

// NameToSlot derives the slot of a named root cell.
func NameToSlot(name string) lockstake.Bytes32 {
	return lockstake.BytesToBytes32([]byte(name))
}
