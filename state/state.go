// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/streams/cache"
	"github.com/vechain/streams/kv"
	"github.com/vechain/streams/stackedmap"
	"github.com/vechain/streams/thor"
)

const (
	// StoreName is the kv bucket holding committed storage.
	StoreName = "s"

	storageCacheSize = 8192
)

// Error wraps a storage read or decode failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr thor.Address
	key  thor.Bytes32
}

func (k storageKey) encode() []byte {
	b := make([]byte, 0, thor.AddressLength+32)
	return append(append(b, k.addr[:]...), k.key[:]...)
}

// State is contract storage with nested checkpoints over a kv bucket.
// The runtime owns it and serialises access.
type State struct {
	store kv.Store
	cache *cache.LRU[storageKey, rlp.RawValue] // committed storage
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
}

// New opens state over the committed slots in store.
func New(store kv.Store) *State {
	lru, _ := cache.NewLRU[storageKey, rlp.RawValue](storageCacheSize)
	s := &State{
		store: kv.Bucket(StoreName).NewStore(store),
		cache: lru,
	}
	s.sm = stackedmap.New[storageKey, rlp.RawValue](s.load)
	return s
}

// load reads committed storage through the cache. Absent slots load as empty values.
func (s *State) load(k storageKey) (rlp.RawValue, bool, error) {
	v, err := s.cache.GetOrLoad(k, func(k storageKey) (rlp.RawValue, error) {
		metricStorageCounter().AddWithLabel(1, map[string]string{"type": "read"})
		data, err := s.store.Get(k.encode())
		if err != nil {
			if s.store.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// GetStorage returns the 32-byte word at key, or the hash of raw list values.
func (s *State) GetStorage(addr thor.Address, key thor.Bytes32) (thor.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return thor.Bytes32{}, err
	}
	if len(raw) == 0 {
		return thor.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return thor.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		return thor.Blake2b(raw), nil
	}
	return thor.BytesToBytes32(content), nil
}

// SetStorage writes a word. The zero word clears the slot.
func (s *State) SetStorage(addr thor.Address, key, value thor.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns the rlp encoded value at key, empty when unset.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage writes an rlp encoded value.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage writes the value produced by enc.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage reads the value at key and hands it to dec.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint returns a revision that RevertTo can roll back to.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo discards every write made after revision was taken.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage collects all changes since the state was created or last committed.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey]rlp.RawValue)
	var order []storageKey
	s.sm.Journal(func(key storageKey, v rlp.RawValue) bool {
		if _, ok := changes[key]; !ok {
			order = append(order, key)
		}
		changes[key] = v
		return true
	})
	return &Stage{state: s, changes: changes, order: order}
}

// reset drops the journal and refreshes the read cache with committed values.
func (s *State) reset(changes map[storageKey]rlp.RawValue) {
	for k, v := range changes {
		s.cache.Add(k, v)
	}
	s.sm = stackedmap.New[storageKey, rlp.RawValue](s.load)
}
