// Copyright (c) 2019 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import "github.com/pkg/errors"

type sequence int64

// Adjust these constants based on your bit allocation requirements
// 32+31=63 bits, the sign bit stays clear
const (
	numberBits = 32
	indexBits  = 31
	numberMask = (1 << numberBits) - 1
	indexMask  = (1 << indexBits) - 1
)

func newSequence(number uint32, index uint32) (sequence, error) {
	if index > indexMask {
		return 0, errors.New("index out of range: uses 31 bits")
	}
	return (sequence(number) << indexBits) | sequence(index), nil
}

func (s sequence) Number() uint32 {
	return uint32(s>>indexBits) & numberMask
}

func (s sequence) Index() uint32 {
	return uint32(s & indexMask)
}
