// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import "sync"

// Bucket is a key prefix partitioning one store into independent namespaces.
// Keys are prefixed on the way in and stripped on the way out.
type Bucket string

var keyPool = sync.Pool{
	New: func() any { return new([]byte) },
}

// withKey calls fn with the prefixed form of key, valid only for the duration of the call.
func (b Bucket) withKey(key []byte, fn func(k []byte)) {
	buf := keyPool.Get().(*[]byte)
	*buf = append(append((*buf)[:0], b...), key...)
	fn(*buf)
	keyPool.Put(buf)
}

type bucketGetter struct {
	Bucket
	src Getter
}

func (g *bucketGetter) Get(key []byte) (val []byte, err error) {
	g.withKey(key, func(k []byte) { val, err = g.src.Get(k) })
	return
}

func (g *bucketGetter) Has(key []byte) (has bool, err error) {
	g.withKey(key, func(k []byte) { has, err = g.src.Has(k) })
	return
}

func (g *bucketGetter) IsNotFound(err error) bool { return g.src.IsNotFound(err) }

type bucketPutter struct {
	Bucket
	src Putter
}

func (p *bucketPutter) Put(key, val []byte) (err error) {
	p.withKey(key, func(k []byte) { err = p.src.Put(k, val) })
	return
}

func (p *bucketPutter) Delete(key []byte) (err error) {
	p.withKey(key, func(k []byte) { err = p.src.Delete(k) })
	return
}

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter { return &bucketGetter{b, src} }

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter { return &bucketPutter{b, src} }

type bucketStore struct {
	bucketGetter
	bucketPutter
}

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src Store) Store {
	return &bucketStore{bucketGetter{b, src}, bucketPutter{b, src}}
}

func (s *bucketStore) source() Store { return s.bucketGetter.src.(Store) }

func (s *bucketStore) Snapshot() Snapshot {
	snapshot := s.source().Snapshot()
	return &struct {
		Getter
		ReleaseFunc
	}{s.bucketGetter.Bucket.NewGetter(snapshot), snapshot.Release}
}

func (s *bucketStore) Bulk() Bulk {
	bulk := s.source().Bulk()
	return &struct {
		Putter
		WriteFunc
	}{s.bucketPutter.Bucket.NewPutter(bulk), bulk.Write}
}

func (s *bucketStore) Iterate(r Range) Iterator {
	prefix := []byte(s.bucketGetter.Bucket)
	// the underlying iterator may keep references to range keys
	r.Start = append(append([]byte(nil), prefix...), r.Start...)
	if len(r.Limit) == 0 {
		r.Limit = PrefixRange(prefix).Limit
	} else {
		r.Limit = append(append([]byte(nil), prefix...), r.Limit...)
	}
	return &bucketIterator{Iterator: s.source().Iterate(r), n: len(prefix)}
}

// bucketIterator strips the bucket prefix from keys.
type bucketIterator struct {
	Iterator
	n int
}

func (it *bucketIterator) Key() []byte { return it.Iterator.Key()[it.n:] }
