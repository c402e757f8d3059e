// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package authority keeps the access control roles of the ledger: the
// admin allowed to change configuration and the tickers allowed to drive
// the accrual engine.
package authority

import (
	"github.com/vechain/lockstake/lockstake"
	"github.com/vechain/lockstake/storage"
)

type Service struct {
	admin   *storage.Addr
	tickers *storage.Mapping[lockstake.Address, bool]
}

func New(context *storage.Context) *Service {
	return &Service{
		admin:   storage.NewAddr(context, storage.NameToSlot("admin")),
		tickers: storage.NewMapping[lockstake.Address, bool](context, storage.NameToSlot("tickers")),
	}
}

// Initialize sets the admin. It only acts on an uninitialized registry.
func (s *Service) Initialize(admin lockstake.Address) error {
	current, err := s.admin.Get()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return nil
	}
	return s.admin.Set(admin)
}

func (s *Service) Admin() (lockstake.Address, error) {
	return s.admin.Get()
}

// SetAdmin hands the admin role to another address.
func (s *Service) SetAdmin(admin lockstake.Address) error {
	return s.admin.Set(admin)
}

func (s *Service) IsAdmin(addr lockstake.Address) (bool, error) {
	admin, err := s.admin.Get()
	if err != nil {
		return false, err
	}
	return !admin.IsZero() && admin == addr, nil
}

// GrantTicker allows an address to drive accrual ticks.
func (s *Service) GrantTicker(addr lockstake.Address) error {
	return s.tickers.Set(addr, true)
}

func (s *Service) RevokeTicker(addr lockstake.Address) error {
	return s.tickers.Delete(addr)
}

// IsTicker reports whether an address may drive accrual ticks. The admin
// is always allowed.
func (s *Service) IsTicker(addr lockstake.Address) (bool, error) {
	if ok, err := s.IsAdmin(addr); err != nil || ok {
		return ok, err
	}
	return s.tickers.Get(addr)
}
