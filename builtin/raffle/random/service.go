// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package random draws numbers in a range from a salted seed.
// The output is not secure randomness, see Seeder.
package random

import (
	"encoding/binary"
	"math"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20"

	"github.com/luckydraw/lucky/builtin/reverts"
	"github.com/luckydraw/lucky/builtin/solidity"
	"github.com/luckydraw/lucky/log"
	"github.com/luckydraw/lucky/lucky"
)

var (
	slotSalt = lucky.BytesToBytes32([]byte("random-salt"))

	logger = log.WithContext("pkg", "random")

	// 2^64, the span of one stream word
	wordSpan = new(uint256.Int).Lsh(uint256.NewInt(1), 64)
)

// Service draws numbers. The salt advances on every draw so no two draws share a seed.
type Service struct {
	salt   *solidity.Uint64
	seeder Seeder
}

func NewService(sctx *solidity.Context, seeder Seeder) *Service {
	return &Service{
		salt:   solidity.NewUint64(sctx, slotSalt),
		seeder: seeder,
	}
}

// Salt returns the current draw counter.
func (s *Service) Salt() (uint64, error) {
	salt, err := s.salt.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get salt")
	}
	return salt, nil
}

func (s *Service) SetSalt(salt uint64) {
	s.salt.Set(salt)
}

// Draw returns low + floor(raw * (high - low) / 2^64), raw being the first
// word of a chacha20 stream keyed by the seed. The value lies in [low, high),
// or is low when both bounds are equal.
func (s *Service) Draw(low, high *uint256.Int, subject lucky.Address) (*uint256.Int, error) {
	salt, err := s.Salt()
	if err != nil {
		return nil, err
	}
	if salt == math.MaxUint64 {
		return nil, reverts.ErrAddOverflow
	}
	s.salt.Set(salt + 1)

	diff, underflow := new(uint256.Int).SubOverflow(high, low)
	if underflow {
		return nil, reverts.ErrSubOverflow
	}

	seed, err := s.seeder.Seed(salt, subject)
	if err != nil {
		return nil, errors.Wrap(err, "seed")
	}
	raw, err := word(seed)
	if err != nil {
		return nil, err
	}

	scaled, overflow := new(uint256.Int).MulDivOverflow(uint256.NewInt(raw), diff, wordSpan)
	if overflow {
		return nil, reverts.ErrMulOverflow
	}
	value, overflow := scaled.AddOverflow(scaled, low)
	if overflow {
		return nil, reverts.ErrAddOverflow
	}

	logger.Trace("drawn", "salt", salt, "subject", subject, "low", low, "high", high, "value", value)
	return value, nil
}

func word(seed lucky.Bytes32) (uint64, error) {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		return 0, errors.Wrap(err, "chacha20")
	}
	var buf [8]byte
	c.XORKeyStream(buf[:], buf[:])
	return binary.BigEndian.Uint64(buf[:]), nil
}
