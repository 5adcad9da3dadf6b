// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the failures a raffle contract call can end with.
// Any of them aborts the call and reverts its state changes.
package reverts

import (
	"errors"
)

// ErrRevert is a domain failure. Instances are sentinels, compare them with errors.Is.
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

// arithmetic
var (
	ErrAddOverflow = New("add overflow")
	ErrSubOverflow = New("sub overflow")
	ErrMulOverflow = New("mul overflow")
	ErrDivByZero   = New("div by zero")
)

// configuration
var (
	ErrIncorrectRatio = New("incorrect ratio")
	ErrNoRatioSet     = New("no ratio set")
)

// round state
var (
	ErrRaffleAlreadyDone     = New("raffle already done")
	ErrNoReward              = New("no reward")
	ErrNoParticipant         = New("no participant")
	ErrNoSelectedParticipant = New("no selected participant")
)

// capacity
var (
	ErrMaxSizeExceeded = New("max size exceeded")
	ErrPageNotFound    = New("page not found")
)

// transfer and cross-component calls
var (
	ErrTransferError                  = New("transfer error")
	ErrInsufficientTransferredBalance = New("insufficient transferred balance")
	ErrCrossCallFailed                = New("cross call failed")
)

// access
var (
	ErrAccessControl = New("access control error")
)

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
