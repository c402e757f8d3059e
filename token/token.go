// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements the fungible token ledger backing stakes and
// accrued rewards. Balances live in keyed storage; mint and burn totals
// are tracked so the circulating supply stays auditable.
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/lockstake/lockstake"
	"github.com/vechain/lockstake/storage"
)

var ErrInsufficientBalance = errors.New("insufficient token balance")

type Ledger struct {
	context *storage.Context

	supply      *storage.Uint256
	totalMinted *storage.Uint256
	totalBurned *storage.Uint256
}

func New(context *storage.Context) *Ledger {
	return &Ledger{
		context:     context,
		supply:      storage.NewUint256(context, storage.NameToSlot("token-supply")),
		totalMinted: storage.NewUint256(context, storage.NameToSlot("token-total-minted")),
		totalBurned: storage.NewUint256(context, storage.NameToSlot("token-total-burned")),
	}
}

func (l *Ledger) balanceCell(addr lockstake.Address) *storage.Uint256 {
	slot := lockstake.Blake2b([]byte("token-balance"), addr.Bytes())
	return storage.NewUint256(l.context, slot)
}

// Balance returns the token balance of an account.
func (l *Ledger) Balance(addr lockstake.Address) (*big.Int, error) {
	return l.balanceCell(addr).Get()
}

// TotalSupply returns the circulating supply: initial plus minted minus burned.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	supply, err := l.supply.Get()
	if err != nil {
		return nil, err
	}
	minted, err := l.totalMinted.Get()
	if err != nil {
		return nil, err
	}
	burned, err := l.totalBurned.Get()
	if err != nil {
		return nil, err
	}
	supply.Add(supply, minted)
	return supply.Sub(supply, burned), nil
}

// TotalMinted returns the cumulative amount created by Mint.
func (l *Ledger) TotalMinted() (*big.Int, error) {
	return l.totalMinted.Get()
}

// TotalBurned returns the cumulative amount destroyed by Burn.
func (l *Ledger) TotalBurned() (*big.Int, error) {
	return l.totalBurned.Get()
}

// InitializeSupply seeds the initial supply into an account. It is meant
// for genesis and test fixtures.
func (l *Ledger) InitializeSupply(addr lockstake.Address, supply *big.Int) error {
	if err := l.supply.Set(supply); err != nil {
		return err
	}
	return l.balanceCell(addr).Set(supply)
}

// Transfer moves tokens between accounts. It fails when the sender's
// balance cannot cover the amount.
func (l *Ledger) Transfer(from, to lockstake.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := l.debit(from, amount); err != nil {
		return err
	}
	return l.balanceCell(to).Add(amount)
}

// Mint creates new tokens in an account.
func (l *Ledger) Mint(to lockstake.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := l.totalMinted.Add(amount); err != nil {
		return err
	}
	return l.balanceCell(to).Add(amount)
}

// Burn destroys tokens held by an account.
func (l *Ledger) Burn(from lockstake.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := l.debit(from, amount); err != nil {
		return err
	}
	return l.totalBurned.Add(amount)
}

func (l *Ledger) debit(from lockstake.Address, amount *big.Int) error {
	cell := l.balanceCell(from)
	balance, err := cell.Get()
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return errors.WithMessagef(ErrInsufficientBalance, "account %v", from)
	}
	return cell.Set(balance.Sub(balance, amount))
}
