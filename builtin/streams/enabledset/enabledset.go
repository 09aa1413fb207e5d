// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package enabledset

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/streams/builtin/solidity"
	"github.com/vechain/streams/thor"
)

// ErrLimitReached is returned when adding to a set that already holds its maximum number of members.
var ErrLimitReached = errors.New("set limit reached")

// Set is an insertion ordered set of addresses, stored as a doubly linked list.
// Each set lives at positions derived from its id, so many sets share one contract storage.
type Set struct {
	limit uint64
	head  *solidity.Address
	tail  *solidity.Address
	count *solidity.Uint256
	next  *solidity.Mapping[thor.Address, thor.Address]
	prev  *solidity.Mapping[thor.Address, thor.Address]
}

// New returns the set identified by id. A zero limit means unbounded.
func New(sctx *solidity.Context, id thor.Bytes32, limit uint64) *Set {
	headPos := thor.Blake2b(id.Bytes(), []byte("head"))
	tailPos := thor.Blake2b(id.Bytes(), []byte("tail"))
	countPos := thor.Blake2b(id.Bytes(), []byte("count"))

	return &Set{
		limit: limit,
		head:  solidity.NewAddress(sctx, headPos),
		tail:  solidity.NewAddress(sctx, tailPos),
		count: solidity.NewUint256(sctx, countPos),
		next:  solidity.NewMapping[thor.Address, thor.Address](sctx, headPos),
		prev:  solidity.NewMapping[thor.Address, thor.Address](sctx, tailPos),
	}
}

// Contains reports whether address is a member.
func (s *Set) Contains(address thor.Address) (bool, error) {
	if address.IsZero() {
		return false, nil
	}
	prev, err := s.prev.Get(address)
	if err != nil {
		return false, err
	}
	if !prev.IsZero() {
		return true, nil
	}
	head, err := s.head.Get()
	if err != nil {
		return false, err
	}
	return head == address, nil
}

// Add appends address to the set. It returns false if address is already a member.
func (s *Set) Add(address thor.Address) (bool, error) {
	if address.IsZero() {
		return false, errors.New("zero address")
	}
	exists, err := s.Contains(address)
	if err != nil || exists {
		return false, err
	}
	if s.limit > 0 {
		n, err := s.Len()
		if err != nil {
			return false, err
		}
		if n >= s.limit {
			return false, ErrLimitReached
		}
	}

	oldTail, err := s.tail.Get()
	if err != nil {
		return false, err
	}

	if oldTail.IsZero() {
		// the set is currently empty, set this entry to head & tail
		s.head.Set(&address, true)
		s.tail.Set(&address, true)
		return true, s.count.Add(uint256.NewInt(1))
	}

	if err := s.next.Set(oldTail, address, true); err != nil {
		return false, err
	}
	if err := s.prev.Set(address, oldTail, true); err != nil {
		return false, err
	}
	s.tail.Set(&address, false)

	return true, s.count.Add(uint256.NewInt(1))
}

// Remove unlinks address from the set. It returns false if address is not a member.
func (s *Set) Remove(address thor.Address) (bool, error) {
	exists, err := s.Contains(address)
	if err != nil || !exists {
		return false, err
	}

	prev, err := s.prev.Get(address)
	if err != nil {
		return false, err
	}
	next, err := s.next.Get(address)
	if err != nil {
		return false, err
	}

	if !prev.IsZero() {
		if err := s.next.Set(prev, next, false); err != nil {
			return false, err
		}
	} else {
		s.head.Set(&next, false)
	}

	if !next.IsZero() {
		if err := s.prev.Set(next, prev, false); err != nil {
			return false, err
		}
	} else {
		s.tail.Set(&prev, false)
	}

	// clear the removed node's pointers
	if err := s.next.Set(address, thor.Address{}, false); err != nil {
		return false, err
	}
	if err := s.prev.Set(address, thor.Address{}, false); err != nil {
		return false, err
	}

	return true, s.count.Sub(uint256.NewInt(1))
}

// Len returns the number of members.
func (s *Set) Len() (uint64, error) {
	n, err := s.count.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Iter visits members in insertion order until callback returns an error.
func (s *Set) Iter(callback func(thor.Address) error) error {
	ptr, err := s.head.Get()
	if err != nil {
		return err
	}
	for !ptr.IsZero() {
		if err := callback(ptr); err != nil {
			return err
		}
		if ptr, err = s.next.Get(ptr); err != nil {
			return err
		}
	}
	return nil
}

// Members returns all members in insertion order.
func (s *Set) Members() ([]thor.Address, error) {
	var members []thor.Address
	err := s.Iter(func(address thor.Address) error {
		members = append(members, address)
		return nil
	})
	return members, err
}
