// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import lru "github.com/hashicorp/golang-lru"

// LRU is a typed, read-through view of golang-lru that counts hits and misses.
type LRU[K comparable, V any] struct {
	c     *lru.Cache
	stats Stats
}

// NewLRU creates a cache holding at most size entries. size must be positive.
func NewLRU[K comparable, V any](size int) (*LRU[K, V], error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{c: c}, nil
}

// Get returns the cached value of key.
func (l *LRU[K, V]) Get(key K) (v V, ok bool) {
	if cached, found := l.c.Get(key); found {
		return cached.(V), true
	}
	return
}

// Add caches value under key, evicting the oldest entry when full.
func (l *LRU[K, V]) Add(key K, value V) {
	l.c.Add(key, value)
}

// GetOrLoad returns the cached value of key, or loads and caches it. Failed loads
// are not cached.
func (l *LRU[K, V]) GetOrLoad(key K, load func(K) (V, error)) (V, error) {
	if v, ok := l.Get(key); ok {
		l.stats.Hit()
		return v, nil
	}
	l.stats.Miss()

	v, err := load(key)
	if err != nil {
		return v, err
	}
	l.Add(key, v)
	return v, nil
}

// Stats returns the lookup counters of GetOrLoad.
func (l *LRU[K, V]) Stats() *Stats {
	return &l.stats
}
