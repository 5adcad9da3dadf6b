// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luckydraw/lucky/builtin/reverts"
	"github.com/luckydraw/lucky/lucky"
	"github.com/luckydraw/lucky/lvldb"
	"github.com/luckydraw/lucky/state"
)

type entry struct {
	Account lucky.Address
	Amount  *uint256.Int
}

func slot(name string) lucky.Bytes32 {
	return lucky.BytesToBytes32([]byte(name))
}

func newContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(lucky.Address{1}, state.New(db))
}

func TestAddress(t *testing.T) {
	ctx := newContext(t)
	address := NewAddress(ctx, slot("treasury"))

	value := lucky.BytesToAddress([]byte("treasury"))
	address.Set(&value)

	got, err := address.Get()
	require.NoError(t, err)
	assert.Equal(t, value, got)

	address.Set(nil)
	got, err = address.Get()
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	assert.Equal(t, lucky.Address{1}, ctx.Address())
}

func TestAddressInvalidStorage(t *testing.T) {
	ctx := newContext(t)
	pos := slot("broken")
	ctx.State().SetRawStorage(ctx.Address(), pos, rlp.RawValue{0xFF})

	addr, err := NewAddress(ctx, pos).Get()
	assert.Error(t, err)
	assert.True(t, addr.IsZero())
}

func TestUint256(t *testing.T) {
	ctx := newContext(t)
	u := NewUint256(ctx, slot("total"))

	v, err := u.Get()
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	require.NoError(t, u.Add(uint256.NewInt(700)))
	require.NoError(t, u.Sub(uint256.NewInt(200)))
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(500), v.Uint64())

	assert.ErrorIs(t, u.Sub(uint256.NewInt(501)), reverts.ErrSubOverflow)

	full := new(uint256.Int).SetAllOne()
	assert.ErrorIs(t, u.Add(full), reverts.ErrAddOverflow)

	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(500), v.Uint64(), "failed ops leave the slot untouched")
}

func TestUint64(t *testing.T) {
	ctx := newContext(t)
	u := NewUint64(ctx, slot("salt"))

	v, err := u.Get()
	require.NoError(t, err)
	assert.Zero(t, v)

	u.Set(1 << 40)
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<40), v)
}

func TestMapping(t *testing.T) {
	ctx := newContext(t)
	m := NewMapping[Uint64Key, *entry](ctx, slot("entries"))

	empty, err := m.Get(1)
	require.NoError(t, err)
	require.NotNil(t, empty)
	assert.True(t, empty.Account.IsZero())

	e := &entry{Account: lucky.BytesToAddress([]byte("winner")), Amount: uint256.NewInt(42)}
	require.NoError(t, m.Set(1, e))

	got, err := m.Get(1)
	require.NoError(t, err)
	assert.Equal(t, e.Account, got.Account)
	assert.Equal(t, uint64(42), got.Amount.Uint64())

	other, err := m.Get(2)
	require.NoError(t, err)
	assert.True(t, other.Account.IsZero())

	m.Delete(1)
	got, err = m.Get(1)
	require.NoError(t, err)
	assert.True(t, got.Account.IsZero())
}

func TestMappingAddressKey(t *testing.T) {
	ctx := newContext(t)
	m := NewMapping[lucky.Address, []uint64](ctx, slot("eras"))

	account := lucky.BytesToAddress([]byte("account"))
	require.NoError(t, m.Set(account, []uint64{1, 3}))

	eras, err := m.Get(account)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, eras)
}

func TestRaw(t *testing.T) {
	ctx := newContext(t)
	r := NewRaw[[]lucky.Address](ctx, slot("winners"))

	list, err := r.Get()
	require.NoError(t, err)
	assert.Empty(t, list)

	want := []lucky.Address{{1}, {2}, {3}}
	require.NoError(t, r.Set(want))
	list, err = r.Get()
	require.NoError(t, err)
	assert.Equal(t, want, list)

	r.Clear()
	list, err = r.Get()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOffset(t *testing.T) {
	base := slot("pages")
	assert.NotEqual(t, base, slot("totals"))
	assert.NotEqual(t, Offset(base, 1), Offset(base, 2))
	assert.Equal(t, Offset(base, 1), Offset(base, 1))
}
