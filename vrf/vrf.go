// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vrf seeds raffle draws with a verifiable random function, so
// anyone holding the public key can check every draw afterwards.
package vrf

import (
	"crypto/ecdsa"
	"os"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/vechain/go-ecvrf"

	"github.com/luckydraw/lucky/builtin/raffle/random"
	"github.com/luckydraw/lucky/lucky"
)

const (
	pubLen   = 33
	proofLen = 81
)

// Signature is composed by [ Compressed Public Key(33bytes) + Proof(81bytes) ].
type Signature []byte

// Proof binds one seed to the message it was proved for.
type Proof struct {
	Alpha     lucky.Bytes32
	Signature Signature
}

// Seeder implements random.Seeder, recording a proof per seed.
type Seeder struct {
	key    *ecdsa.PrivateKey
	block  random.Block
	proofs []Proof
}

var _ random.Seeder = (*Seeder)(nil)

func NewSeeder(key *ecdsa.PrivateKey, block random.Block) *Seeder {
	return &Seeder{key: key, block: block}
}

func (s *Seeder) Seed(salt uint64, subject lucky.Address) (lucky.Bytes32, error) {
	alpha := s.block.Alpha(salt, subject)
	beta, proof, err := ecvrf.Secp256k1Sha256Tai.Prove(s.key, alpha.Bytes())
	if err != nil {
		return lucky.Bytes32{}, errors.Wrap(err, "vrf prove")
	}
	sig := make(Signature, 0, pubLen+proofLen)
	sig = append(sig, crypto.CompressPubkey(&s.key.PublicKey)...)
	sig = append(sig, proof...)
	s.proofs = append(s.proofs, Proof{Alpha: alpha, Signature: sig})
	return lucky.BytesToBytes32(beta), nil
}

// Proofs returns the proofs of all seeds produced so far.
func (s *Seeder) Proofs() []Proof {
	return append([]Proof(nil), s.proofs...)
}

// Verify checks the proof and returns the seed and the signer.
func Verify(p Proof) (seed lucky.Bytes32, signer lucky.Address, err error) {
	if len(p.Signature) != pubLen+proofLen {
		return lucky.Bytes32{}, lucky.Address{}, errors.New("invalid VRF signature length, 114 bytes needed")
	}
	pub, err := crypto.DecompressPubkey(p.Signature[:pubLen])
	if err != nil {
		return lucky.Bytes32{}, lucky.Address{}, errors.Wrap(err, "decompress public key")
	}
	beta, err := ecvrf.Secp256k1Sha256Tai.Verify(pub, p.Alpha.Bytes(), p.Signature[pubLen:])
	if err != nil {
		return lucky.Bytes32{}, lucky.Address{}, errors.Wrap(err, "vrf verify")
	}
	return lucky.BytesToBytes32(beta), lucky.Address(crypto.PubkeyToAddress(*pub)), nil
}

// LoadOrGenerateKey reads a hex encoded key from keyFile, creating one if the file does not exist.
func LoadOrGenerateKey(keyFile string) (key *ecdsa.PrivateKey, err error) {
	// try to load from file
	if key, err = crypto.LoadECDSA(keyFile); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		return key, nil
	}

	// no such file, generate new key and write in
	key, err = crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := crypto.SaveECDSA(keyFile, key); err != nil {
		return nil, err
	}
	return key, nil
}
