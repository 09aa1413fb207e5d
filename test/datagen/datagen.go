// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package datagen produces random fixtures for tests.
package datagen

import (
	"crypto/rand"

	"github.com/vechain/streams/thor"
)

// RandAddress returns a random account or token address.
func RandAddress() (addr thor.Address) {
	rand.Read(addr[:])
	return
}

// RandAddresses returns n random addresses.
func RandAddresses(n int) []thor.Address {
	addrs := make([]thor.Address, n)
	for i := range addrs {
		addrs[i] = RandAddress()
	}
	return addrs
}

// RandBytes32 returns a random 32 byte word, usable as a storage slot or topic.
func RandBytes32() (b thor.Bytes32) {
	rand.Read(b[:])
	return
}
