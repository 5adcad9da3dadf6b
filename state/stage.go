// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/luckydraw/lucky/kv"
	"github.com/luckydraw/lucky/lucky"
)

// Stage abstracts the changes accumulated by a state.
type Stage struct {
	state    *State
	storage  map[string][]byte
	balances map[string][]byte
}

// Len returns the number of distinct keys changed.
func (s *Stage) Len() int {
	return len(s.storage) + len(s.balances)
}

// Commit writes all changes into the underlying store in a single batch.
// Zero values are written as deletions.
func (s *Stage) Commit() error {
	bulk := s.state.store.Bulk()
	if err := write(storageBucket.NewPutter(bulk), s.storage); err != nil {
		return errors.Wrap(err, "stage storage")
	}
	if err := write(balanceBucket.NewPutter(bulk), s.balances); err != nil {
		return errors.Wrap(err, "stage balances")
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "commit state")
	}

	// keep the read cache in line with what is now persisted
	for k, v := range s.storage {
		s.state.cache.setBlob([]byte(k), v)
	}
	for k, v := range s.balances {
		s.state.cache.setBalance(lucky.BytesToAddress([]byte(k)), new(uint256.Int).SetBytes(v))
	}
	return nil
}

func write(putter kv.Putter, changes map[string][]byte) error {
	for k, v := range changes {
		var err error
		if len(v) == 0 {
			err = putter.Delete([]byte(k))
		} else {
			err = putter.Put([]byte(k), v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
