// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// ErrRevert marks an error as a domain precondition failure. Operations
// returning it have left state untouched.
type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

// IsRevertErr reports whether err is (or wraps) an ErrRevert.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// Rejections shared by the staking ledger operations.
var (
	ErrAmountTooLow     = New("amount below tier minimum")
	ErrInvalidTier      = New("tier index out of range")
	ErrTierWindowClosed = New("tier eligibility window closed")
	ErrCycleInProgress  = New("reward sweep in progress")
	ErrNotMatured       = New("position not matured")
	ErrAlreadyMatured   = New("position already matured")
	ErrNothingToClaim   = New("nothing to claim")
	ErrInvalidPosition  = New("invalid position reference")
	ErrNotCompoundable  = New("compounding fixed for locked tier")
	ErrExceedsPosition  = New("amount exceeds position")
	ErrUnauthorized     = New("caller not authorized")
	ErrInvalidConfig    = New("malformed configuration")
	ErrCycleNotDue      = New("cycle period not elapsed")
)
