// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lucky

import (
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// ParseBalance parses a balance given either in decimal or as 0x-prefixed hex.
func ParseBalance(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty balance")
	}
	var (
		v   *uint256.Int
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = uint256.FromHex(s)
	} else {
		v, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse balance %q", s)
	}
	return v, nil
}

// MustParseBalance parses a balance, panic on error.
func MustParseBalance(s string) *uint256.Int {
	v, err := ParseBalance(s)
	if err != nil {
		panic(err)
	}
	return v
}
