// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages contract storage of the engine.
// It follows the flow as bellow:
//
//	         o
//	         |
//	[ revertable state ]
//	         |
//	  [ stacked map ] -> [ journal ] -> [ staging ] -> [ kv bulk write ]
//	         |
//	    [ lru cache ]
//	         |
//	    [ kv store ]
//
// Every slot is addressed by (contract address, 32-byte position) and holds an rlp encoded value.
// An empty value deletes the slot.
package state
