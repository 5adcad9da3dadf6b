// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/luckydraw/lucky/builtin/reverts"
	"github.com/luckydraw/lucky/lucky"
	"github.com/luckydraw/lucky/state"
)

// BlockContext block context.
type BlockContext struct {
	Number uint32
	Time   uint64
}

// Event is a log emitted by a contract call.
// Topics[0] identifies the event kind.
type Event struct {
	Address lucky.Address
	Topics  []lucky.Bytes32
	Data    []byte
}

type vmError struct {
	cause error
}

// Environment an env to execute native method.
type Environment struct {
	state    *state.State
	blockCtx *BlockContext
	caller   lucky.Address
	to       lucky.Address
	value    *uint256.Int
	events   []*Event
}

// New create a new env.
func New(
	state *state.State,
	blockCtx *BlockContext,
	caller lucky.Address,
	to lucky.Address,
	value *uint256.Int,
) *Environment {
	if value == nil {
		value = new(uint256.Int)
	}
	return &Environment{
		state:    state,
		blockCtx: blockCtx,
		caller:   caller,
		to:       to,
		value:    value,
	}
}

func (env *Environment) State() *state.State         { return env.state }
func (env *Environment) BlockContext() *BlockContext { return env.blockCtx }
func (env *Environment) Caller() lucky.Address       { return env.caller }
func (env *Environment) To() lucky.Address           { return env.to }

// Value returns the amount transferred with the call.
func (env *Environment) Value() *uint256.Int { return new(uint256.Int).Set(env.value) }

// Events returns the events emitted by successful calls so far.
func (env *Environment) Events() []*Event { return env.events }

// Require stops the running call with err if cond does not hold.
func (env *Environment) Require(cond bool, err error) {
	if !cond {
		panic(&vmError{err})
	}
}

// Stop aborts the running call with the given error.
func (env *Environment) Stop(err error) {
	panic(&vmError{err})
}

// Log emits an event on behalf of the called contract.
func (env *Environment) Log(topics []lucky.Bytes32, data []byte) {
	env.events = append(env.events, &Event{
		Address: env.to,
		Topics:  append([]lucky.Bytes32(nil), topics...),
		Data:    data,
	})
}

// Call runs proc within a state checkpoint. The value sent with the call is moved
// from the caller to the contract first. Any error, returned or raised via Stop,
// reverts all state changes and events made since the checkpoint.
func (env *Environment) Call(proc func(env *Environment) error) (err error) {
	checkpoint := env.state.NewCheckpoint()
	nEvents := len(env.events)

	defer func() {
		if e := recover(); e != nil {
			rec, ok := e.(*vmError)
			if !ok {
				panic(e)
			}
			err = rec.cause
		}
		if err != nil {
			env.state.RevertTo(checkpoint)
			env.events = env.events[:nEvents]
		}
	}()

	if !env.value.IsZero() {
		if err := env.state.Transfer(env.caller, env.to, env.value); err != nil {
			if errors.Is(err, state.ErrInsufficientBalance) {
				return errors.WithMessage(reverts.ErrTransferError, err.Error())
			}
			return err
		}
	}
	return proc(env)
}
