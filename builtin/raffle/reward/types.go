// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"github.com/holiman/uint256"

	"github.com/luckydraw/lucky/lucky"
)

// Pending is an amount won in an era and not claimed yet.
type Pending struct {
	Account lucky.Address
	Era     uint32
	Amount  *uint256.Int
}

// entry is the stored form of a Pending, kept in the list of its account.
type entry struct {
	Era    uint32
	Amount *uint256.Int
}

// Reward is a pre-computed winner amount.
type Reward struct {
	Account lucky.Address
	Amount  *uint256.Int
}

// Summary describes the rewards registered for one era by a single call.
type Summary struct {
	Era         uint32
	GivenReward *uint256.Int
	NbWinners   int
	Entries     []Pending
}

// Transfer moves amount to an account. It must either fully succeed or change nothing.
type Transfer func(to lucky.Address, amount *uint256.Int) error

func match(p Pending, era *uint32, account *lucky.Address) bool {
	if era != nil && *era != p.Era {
		return false
	}
	if account != nil && *account != p.Account {
		return false
	}
	return true
}
