// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import "github.com/vechain/streams/thor"

// Variable is a rlp encoded value stored at a fixed position, similar to a state variable in Solidity.
type Variable[V any] struct {
	context *Context
	pos     thor.Bytes32
}

func NewVariable[V any](context *Context, pos thor.Bytes32) *Variable[V] {
	return &Variable[V]{context: context, pos: pos}
}

func (v *Variable[V]) Get() (V, error) {
	return decodeSlot[V](v.context, v.pos)
}

func (v *Variable[V]) Set(value V, newValue bool) error {
	return encodeSlot(v.context, v.pos, value, newValue)
}
