// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/lockstake/lockstake"
)

// Uint256 is a wrapper for storage and retrieval of an unsigned big integer,
// similar to storing an uint256 in a smart contract. A missing slot reads as zero.
type Uint256 struct {
	context *Context
	pos     lockstake.Bytes32
}

func NewUint256(context *Context, slot lockstake.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: slot}
}

func (u *Uint256) Get() (*big.Int, error) {
	raw, err := u.context.getRaw(u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(raw), nil
}

func (u *Uint256) Set(value *big.Int) error {
	if value.Sign() < 0 {
		return errors.New("uint256 cell cannot hold negative value")
	}
	return u.context.putRaw(u.pos, value.Bytes())
}

func (u *Uint256) Add(value *big.Int) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(stored.Add(stored, value))
}

func (u *Uint256) Sub(value *big.Int) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(stored.Sub(stored, value))
}

// Uint64 is a storage cell holding an uint64. A missing slot reads as zero.
type Uint64 struct {
	context *Context
	pos     lockstake.Bytes32
}

func NewUint64(context *Context, slot lockstake.Bytes32) *Uint64 {
	return &Uint64{context: context, pos: slot}
}

func (u *Uint64) Get() (uint64, error) {
	raw, err := u.context.getRaw(u.pos)
	if err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return 0, nil
	}
	if len(raw) != 8 {
		return 0, errors.New("uint64 cell holds malformed value")
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (u *Uint64) Set(value uint64) error {
	if value == 0 {
		return u.context.putRaw(u.pos, nil)
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], value)
	return u.context.putRaw(u.pos, b[:])
}

// Bool is a storage cell holding a bool. A missing slot reads as false.
type Bool struct {
	context *Context
	pos     lockstake.Bytes32
}

func NewBool(context *Context, slot lockstake.Bytes32) *Bool {
	return &Bool{context: context, pos: slot}
}

func (b *Bool) Get() (bool, error) {
	raw, err := b.context.getRaw(b.pos)
	if err != nil {
		return false, err
	}
	return len(raw) == 1 && raw[0] == 1, nil
}

func (b *Bool) Set(value bool) error {
	if !value {
		return b.context.putRaw(b.pos, nil)
	}
	return b.context.putRaw(b.pos, []byte{1})
}

// Addr is a storage cell holding an address. A missing slot reads as the zero address.
type Addr struct {
	context *Context
	pos     lockstake.Bytes32
}

func NewAddr(context *Context, slot lockstake.Bytes32) *Addr {
	return &Addr{context: context, pos: slot}
}

func (a *Addr) Get() (lockstake.Address, error) {
	raw, err := a.context.getRaw(a.pos)
	if err != nil {
		return lockstake.Address{}, err
	}
	return lockstake.BytesToAddress(raw), nil
}

func (a *Addr) Set(value lockstake.Address) error {
	if value.IsZero() {
		return a.context.putRaw(a.pos, nil)
	}
	return a.context.putRaw(a.pos, value.Bytes())
}
