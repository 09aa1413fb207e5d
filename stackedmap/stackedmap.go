// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stackedmap provides a journaled overlay map with nested checkpoints.
package stackedmap

// Source loads keys that were never put.
type Source[K comparable, V any] func(key K) (value V, exist bool, err error)

// StackedMap layers writable levels over a Source. Reads see the newest write of a key
// in any level; popping a level discards every write made since its push.
type StackedMap[K comparable, V any] struct {
	src     Source[K, V]
	levels  []map[K]V
	marks   []int // journal length when each level was pushed
	journal []entry[K, V]
	revs    map[K][]int // ascending levels holding the key
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// New creates a map with one level over src.
func New[K comparable, V any](src Source[K, V]) *StackedMap[K, V] {
	sm := &StackedMap[K, V]{
		src:  src,
		revs: make(map[K][]int),
	}
	sm.Push()
	return sm
}

// Depth returns the number of levels.
func (sm *StackedMap[K, V]) Depth() int {
	return len(sm.levels)
}

// Push opens a level and returns the depth before it, for PopTo.
func (sm *StackedMap[K, V]) Push() int {
	sm.levels = append(sm.levels, make(map[K]V))
	sm.marks = append(sm.marks, len(sm.journal))
	return len(sm.levels) - 1
}

// Pop drops the top level with its writes.
func (sm *StackedMap[K, V]) Pop() {
	n := len(sm.levels) - 1
	for key := range sm.levels[n] {
		revs := sm.revs[key]
		if len(revs) == 1 {
			delete(sm.revs, key)
		} else {
			sm.revs[key] = revs[:len(revs)-1]
		}
	}
	sm.journal = sm.journal[:sm.marks[n]]
	sm.levels = sm.levels[:n]
	sm.marks = sm.marks[:n]
}

// PopTo pops levels until depth remain.
func (sm *StackedMap[K, V]) PopTo(depth int) {
	for len(sm.levels) > depth {
		sm.Pop()
	}
}

// Get returns the newest value of key, falling back to the source.
func (sm *StackedMap[K, V]) Get(key K) (V, bool, error) {
	if revs, ok := sm.revs[key]; ok {
		return sm.levels[revs[len(revs)-1]][key], true, nil
	}
	return sm.src(key)
}

// Put writes key at the top level. It panics when every level was popped.
func (sm *StackedMap[K, V]) Put(key K, value V) {
	n := len(sm.levels) - 1
	top := sm.levels[n]
	if _, ok := top[key]; !ok {
		sm.revs[key] = append(sm.revs[key], n)
	}
	top[key] = value
	sm.journal = append(sm.journal, entry[K, V]{key, value})
}

// Journal replays the live writes in order until cb returns false.
func (sm *StackedMap[K, V]) Journal(cb func(key K, value V) bool) {
	for _, e := range sm.journal {
		if !cb(e.key, e.value) {
			return
		}
	}
}
