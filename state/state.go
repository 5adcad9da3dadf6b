// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/luckydraw/lucky/kv"
	"github.com/luckydraw/lucky/lucky"
	"github.com/luckydraw/lucky/stackedmap"
)

const (
	storageBucket = kv.Bucket("s")
	balanceBucket = kv.Bucket("b")
)

// ErrInsufficientBalance is returned by Transfer when the sender cannot cover the amount.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// State manages contract storage and balances on top of a kv store.
type State struct {
	store   kv.Store
	storage kv.Getter
	balance kv.Getter
	cache   *readCache
	sm      *stackedmap.StackedMap[any, any]
}

// New create state object.
func New(store kv.Store) *State {
	s := &State{
		store:   store,
		storage: storageBucket.NewGetter(store),
		balance: balanceBucket.NewGetter(store),
		cache:   newReadCache(),
	}
	s.sm = stackedmap.New(s.cacheGetter)
	return s
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key any) (any, bool, error) {
	switch k := key.(type) {
	case storageKey:
		dbKey := k.dbKey()
		if blob, ok := s.cache.getBlob(dbKey); ok {
			return rlp.RawValue(blob), true, nil
		}
		blob, err := load(s.storage, dbKey)
		if err != nil {
			return nil, false, err
		}
		s.cache.setBlob(dbKey, blob)
		return rlp.RawValue(blob), true, nil
	case balanceKey:
		if bal, ok := s.cache.getBalance(lucky.Address(k)); ok {
			return bal, true, nil
		}
		raw, err := load(s.balance, k[:])
		if err != nil {
			return nil, false, err
		}
		bal := new(uint256.Int).SetBytes(raw)
		s.cache.setBalance(lucky.Address(k), bal)
		return bal, true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

// load reads dbKey, a missing key reads as empty.
func load(store kv.Getter, dbKey []byte) ([]byte, error) {
	raw, err := store.Get(dbKey)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return raw, nil
}

// GetBalance returns balance for the given address.
func (s *State) GetBalance(addr lucky.Address) (*uint256.Int, error) {
	v, _, err := s.sm.Get(balanceKey(addr))
	if err != nil {
		return nil, &Error{err}
	}
	return new(uint256.Int).Set(v.(*uint256.Int)), nil
}

// SetBalance set balance for the given address.
func (s *State) SetBalance(addr lucky.Address, balance *uint256.Int) {
	s.sm.Put(balanceKey(addr), new(uint256.Int).Set(balance))
}

// AddBalance credits amount to the given address.
func (s *State) AddBalance(addr lucky.Address, amount *uint256.Int) error {
	bal, err := s.GetBalance(addr)
	if err != nil {
		return err
	}
	if _, overflow := bal.AddOverflow(bal, amount); overflow {
		return &Error{errors.New("balance overflow")}
	}
	s.SetBalance(addr, bal)
	return nil
}

// Transfer moves amount from one address to another.
// It fails with ErrInsufficientBalance and changes nothing if from cannot cover it.
func (s *State) Transfer(from, to lucky.Address, amount *uint256.Int) error {
	fromBal, err := s.GetBalance(from)
	if err != nil {
		return err
	}
	if fromBal.Lt(amount) {
		return errors.WithMessagef(ErrInsufficientBalance, "%v has %v, needs %v", from, fromBal.Dec(), amount.Dec())
	}
	if from == to {
		return nil
	}
	toBal, err := s.GetBalance(to)
	if err != nil {
		return err
	}
	if _, overflow := toBal.AddOverflow(toBal, amount); overflow {
		return &Error{errors.New("balance overflow")}
	}
	s.SetBalance(from, fromBal.Sub(fromBal, amount))
	s.SetBalance(to, toBal)
	return nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr lucky.Address, key lucky.Bytes32) (lucky.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return lucky.Bytes32{}, err
	}
	if len(raw) == 0 {
		return lucky.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return lucky.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// customized storage value, return hash of raw data
		return lucky.Blake2b(raw), nil
	}
	return lucky.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr lucky.Address, key, value lucky.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr lucky.Address, key lucky.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr lucky.Address, key lucky.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr lucky.Address, key lucky.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr lucky.Address, key lucky.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage makes a stage object to commit all changes.
func (s *State) Stage() *Stage {
	storage := make(map[string][]byte)
	balances := make(map[string][]byte)

	s.sm.Journal(func(k, v any) bool {
		switch key := k.(type) {
		case storageKey:
			storage[string(key.dbKey())] = v.(rlp.RawValue)
		case balanceKey:
			balances[string(key[:])] = v.(*uint256.Int).Bytes()
		}
		return true
	})

	return &Stage{
		state:    s,
		storage:  storage,
		balances: balances,
	}
}

type (
	storageKey struct {
		addr lucky.Address
		key  lucky.Bytes32
	}
	balanceKey lucky.Address
)

func (k storageKey) dbKey() []byte {
	return append(k.addr.Bytes(), k.key.Bytes()...)
}
