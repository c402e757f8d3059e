// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/lockstake/lockstake"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction, similar to a mapping in Solidity.
// Values are RLP encoded; decoded values are kept in the context's read cache.
type Mapping[K Key, V any] struct {
	context *Context
	basePos lockstake.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos lockstake.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) slot(key K) lockstake.Bytes32 {
	return lockstake.Blake2b(key.Bytes(), m.basePos.Bytes())
}

func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	slot := m.slot(key)
	if cached, ok := m.context.cacheGet(slot); ok {
		return cached.(V), nil
	}
	if reflect.ValueOf(value).Kind() == reflect.Ptr {
		value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
	}
	raw, err := m.context.getRaw(slot)
	if err != nil {
		return value, err
	}
	if len(raw) == 0 {
		return value, nil
	}
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, err
	}
	m.context.cacheAdd(slot, value)
	return value, nil
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	slot := m.slot(key)
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	if err := m.context.putRaw(slot, raw); err != nil {
		return err
	}
	m.context.cacheAdd(slot, value)
	return nil
}

func (m *Mapping[K, V]) Delete(key K) error {
	slot := m.slot(key)
	m.context.cacheRemove(slot)
	return m.context.putRaw(slot, nil)
}

// Value is a single-slot cell holding one RLP encoded value.
type Value[V any] struct {
	context *Context
	pos     lockstake.Bytes32
}

func NewValue[V any](context *Context, slot lockstake.Bytes32) *Value[V] {
	return &Value[V]{context: context, pos: slot}
}

func (v *Value[V]) Get() (value V, err error) {
	if cached, ok := v.context.cacheGet(v.pos); ok {
		return cached.(V), nil
	}
	if reflect.ValueOf(value).Kind() == reflect.Ptr {
		value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
	}
	raw, err := v.context.getRaw(v.pos)
	if err != nil {
		return value, err
	}
	if len(raw) == 0 {
		return value, nil
	}
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, err
	}
	v.context.cacheAdd(v.pos, value)
	return value, nil
}

func (v *Value[V]) Set(value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	if err := v.context.putRaw(v.pos, raw); err != nil {
		return err
	}
	v.context.cacheAdd(v.pos, value)
	return nil
}
