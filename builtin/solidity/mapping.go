// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/vechain/streams/thor"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction for built-in contracts, similar to the mapping in Solidity.
// Values are rlp encoded. Writing the zero value of V deletes the entry.
type Mapping[K Key, V any] struct {
	context *Context
	basePos thor.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos thor.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) thor.Bytes32 {
	return thor.Blake2b(key.Bytes(), m.basePos.Bytes())
}

// Get loads the value of key, returning the zero value of V if absent.
// Every load charges at least one SLOAD.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	return decodeSlot[V](m.context, m.position(key))
}

// Update overwrites the value of an existing entry.
func (m *Mapping[K, V]) Update(key K, value V) error {
	return encodeSlot(m.context, m.position(key), value, false)
}

// Set writes the value, charging as new entry or update according to newValue.
func (m *Mapping[K, V]) Set(key K, value V, newValue bool) error {
	return encodeSlot(m.context, m.position(key), value, newValue)
}

func slots(n int) uint64 {
	if n == 0 {
		return 1
	}
	return (uint64(n) + 31) / 32
}

func decodeSlot[V any](ctx *Context, position thor.Bytes32) (value V, err error) {
	err = ctx.state.DecodeStorage(ctx.address, position, func(raw []byte) error {
		ctx.UseGas(slots(len(raw)) * thor.SloadGas)
		if len(raw) == 0 {
			return nil
		}
		// rlp allocates when V is a pointer type
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// emptiable is implemented by records that define their own notion of empty.
type emptiable interface {
	IsEmpty() bool
}

func isZero[V any](value V) bool {
	v := reflect.ValueOf(&value).Elem()
	if v.IsZero() {
		return true
	}
	switch val := any(value).(type) {
	case *uint256.Int:
		return val.IsZero()
	case emptiable:
		return val.IsEmpty()
	}
	return false
}

func encodeSlot[V any](ctx *Context, position thor.Bytes32, value V, newValue bool) error {
	return ctx.state.EncodeStorage(ctx.address, position, func() ([]byte, error) {
		if isZero(value) {
			return nil, nil
		}
		val, err := rlp.EncodeToBytes(value)
		if err != nil {
			return nil, err
		}
		if newValue {
			ctx.UseGas(slots(len(val)) * thor.SstoreSetGas)
		} else {
			ctx.UseGas(slots(len(val)) * thor.SstoreResetGas)
		}
		return val, nil
	})
}
