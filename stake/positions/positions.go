// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package positions keeps the per-account stake positions and the set of
// active accounts. Accounts are stored as a dense array so the accrual
// engine can walk them by index and resume from a cursor; removal swaps
// the last entry into the gap.
package positions

import (
	"encoding/binary"

	"github.com/vechain/lockstake/lockstake"
	"github.com/vechain/lockstake/stake/reverts"
	"github.com/vechain/lockstake/storage"
)

type indexKey uint64

func (k indexKey) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return b[:]
}

type Service struct {
	positions    *storage.Mapping[lockstake.Address, []*Position]
	accounts     *storage.Mapping[indexKey, lockstake.Address]
	accountIndex *storage.Mapping[lockstake.Address, uint64] // stores index+1, 0 means absent
	accountCount *storage.Uint64
}

func New(context *storage.Context) *Service {
	return &Service{
		positions:    storage.NewMapping[lockstake.Address, []*Position](context, storage.NameToSlot("positions")),
		accounts:     storage.NewMapping[indexKey, lockstake.Address](context, storage.NameToSlot("accounts")),
		accountIndex: storage.NewMapping[lockstake.Address, uint64](context, storage.NameToSlot("account-index")),
		accountCount: storage.NewUint64(context, storage.NameToSlot("account-count")),
	}
}

// AccountCount returns the number of accounts holding at least one position.
func (s *Service) AccountCount() (uint64, error) {
	return s.accountCount.Get()
}

// AccountAt returns the account registered at the given index.
func (s *Service) AccountAt(index uint64) (lockstake.Address, error) {
	count, err := s.accountCount.Get()
	if err != nil {
		return lockstake.Address{}, err
	}
	if index >= count {
		return lockstake.Address{}, reverts.ErrInvalidPosition
	}
	return s.accounts.Get(indexKey(index))
}

// Get returns the ordered positions of an account. Accounts without
// positions yield an empty slice.
func (s *Service) Get(owner lockstake.Address) ([]*Position, error) {
	return s.positions.Get(owner)
}

// GetAt returns one position of an account by index.
func (s *Service) GetAt(owner lockstake.Address, index int) (*Position, error) {
	list, err := s.positions.Get(owner)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(list) {
		return nil, reverts.ErrInvalidPosition
	}
	return list[index], nil
}

// Append adds a position to an account, registering the account when it is
// new. It returns the index of the appended position.
func (s *Service) Append(owner lockstake.Address, position *Position) (int, error) {
	list, err := s.positions.Get(owner)
	if err != nil {
		return 0, err
	}
	if len(list) == 0 {
		if err := s.register(owner); err != nil {
			return 0, err
		}
	}
	list = append(list, position)
	if err := s.positions.Set(owner, list); err != nil {
		return 0, err
	}
	return len(list) - 1, nil
}

// Save persists a full position list for an account. An empty list clears
// the account's slot and deregisters it from the active set.
func (s *Service) Save(owner lockstake.Address, list []*Position) error {
	if len(list) == 0 {
		if err := s.positions.Delete(owner); err != nil {
			return err
		}
		return s.deregister(owner)
	}
	return s.positions.Set(owner, list)
}

// RemoveAt removes one position by swapping the last one into its place.
// Removing the last remaining position deregisters the account.
func (s *Service) RemoveAt(owner lockstake.Address, index int) error {
	list, err := s.positions.Get(owner)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(list) {
		return reverts.ErrInvalidPosition
	}
	last := len(list) - 1
	list[index] = list[last]
	list[last] = nil
	return s.Save(owner, list[:last])
}

func (s *Service) register(owner lockstake.Address) error {
	stored, err := s.accountIndex.Get(owner)
	if err != nil {
		return err
	}
	if stored != 0 {
		return nil
	}
	count, err := s.accountCount.Get()
	if err != nil {
		return err
	}
	if err := s.accounts.Set(indexKey(count), owner); err != nil {
		return err
	}
	if err := s.accountIndex.Set(owner, count+1); err != nil {
		return err
	}
	return s.accountCount.Set(count + 1)
}

func (s *Service) deregister(owner lockstake.Address) error {
	stored, err := s.accountIndex.Get(owner)
	if err != nil {
		return err
	}
	if stored == 0 {
		return nil
	}
	index := stored - 1
	count, err := s.accountCount.Get()
	if err != nil {
		return err
	}
	last := count - 1
	if index != last {
		moved, err := s.accounts.Get(indexKey(last))
		if err != nil {
			return err
		}
		if err := s.accounts.Set(indexKey(index), moved); err != nil {
			return err
		}
		if err := s.accountIndex.Set(moved, index+1); err != nil {
			return err
		}
	}
	if err := s.accounts.Delete(indexKey(last)); err != nil {
		return err
	}
	if err := s.accountIndex.Delete(owner); err != nil {
		return err
	}
	return s.accountCount.Set(last)
}
