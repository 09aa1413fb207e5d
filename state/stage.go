// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/streams/thor"
)

// Stage abstracts changes of contract storage pending commit.
type Stage struct {
	state   *State
	changes map[storageKey]rlp.RawValue
	order   []storageKey
}

// Len returns the number of changed slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Hash computes a digest over the staged changes, in write order.
func (s *Stage) Hash() thor.Bytes32 {
	parts := make([][]byte, 0, len(s.order)*2)
	for _, k := range s.order {
		parts = append(parts, k.encode(), s.changes[k])
	}
	return thor.Blake2b(parts...)
}

// Commit writes all changes into the store in a single bulk and resets the journal.
func (s *Stage) Commit() error {
	bulk := s.state.store.Bulk()
	for _, k := range s.order {
		v := s.changes[k]
		var err error
		if len(v) == 0 {
			err = bulk.Delete(k.encode())
		} else {
			err = bulk.Put(k.encode(), v)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{err}
	}
	metricCommitCounter().Add(int64(len(s.order)))
	s.state.reset(s.changes)

	if hit, miss, permille, moved := s.state.cache.Stats().Report(); moved {
		metricCacheHitRate().Set(int64(permille))
		logger.Debug("storage cache", "hit", hit, "miss", miss, "permille", permille)
	}
	return nil
}
