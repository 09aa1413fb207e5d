// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pebbledb

import (
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/pkg/errors"

	"github.com/vechain/streams/kv"
	"github.com/vechain/streams/log"
)

var (
	_ kv.StoreCloser = (*PebbleDB)(nil)

	logger = log.WithContext("pkg", "pebbledb")
)

// errorOnlyLogger implements pebble.Logger to reduce noise.
type errorOnlyLogger struct{}

func (errorOnlyLogger) Infof(format string, args ...any) {}
func (errorOnlyLogger) Errorf(format string, args ...any) {
	logger.Error("pebble error", "msg", fmt.Sprintf(format, args...))
}
func (errorOnlyLogger) Fatalf(format string, args ...any) {
	logger.Crit("pebble fatal", "msg", fmt.Sprintf(format, args...))
}

// PebbleDB implements kv.Store on top of pebble.
type PebbleDB struct {
	db *pebble.DB
}

// Options for opening a pebble database.
type Options struct {
	CacheSize    int // MiB
	MaxOpenFiles int
}

func defaultOptions(opts Options) *pebble.Options {
	if opts.CacheSize < 16 {
		opts.CacheSize = 16
	}
	if opts.MaxOpenFiles < 16 {
		opts.MaxOpenFiles = 16
	}
	return &pebble.Options{
		Cache:                       pebble.NewCache(int64(opts.CacheSize) << 20),
		L0CompactionThreshold:       4,
		L0StopWritesThreshold:       12,
		LBaseMaxBytes:               64 << 20,
		MaxOpenFiles:                opts.MaxOpenFiles,
		MemTableSize:                uint64(opts.CacheSize/4) << 20,
		MemTableStopWritesThreshold: 4,
		Logger:                      errorOnlyLogger{},
	}
}

// Open opens or creates the database at the given path.
func Open(path string, opts Options) (*PebbleDB, error) {
	db, err := pebble.Open(path, defaultOptions(opts))
	if err != nil {
		return nil, errors.Wrap(err, "open pebble db")
	}
	return &PebbleDB{db: db}, nil
}

// NewMem creates a pebble database held in memory.
func NewMem() (*PebbleDB, error) {
	o := defaultOptions(Options{})
	o.FS = vfs.NewMem()
	db, err := pebble.Open("", o)
	if err != nil {
		return nil, errors.Wrap(err, "open pebble mem db")
	}
	return &PebbleDB{db: db}, nil
}

// IsNotFound reports whether the error indicates a missing key.
func (p *PebbleDB) IsNotFound(err error) bool {
	return errors.Is(err, pebble.ErrNotFound)
}

func get(r pebble.Reader, key []byte) ([]byte, error) {
	val, closer, err := r.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	// the returned slice is only valid until closer is closed
	return append([]byte(nil), val...), nil
}

func has(r pebble.Reader, key []byte) (bool, error) {
	_, closer, err := r.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	closer.Close()
	return true, nil
}

func (p *PebbleDB) Get(key []byte) ([]byte, error) { return get(p.db, key) }
func (p *PebbleDB) Has(key []byte) (bool, error)   { return has(p.db, key) }

func (p *PebbleDB) Put(key, val []byte) error {
	return p.db.Set(key, val, pebble.NoSync)
}

func (p *PebbleDB) Delete(key []byte) error {
	return p.db.Delete(key, pebble.NoSync)
}

// Snapshot returns a point-in-time read view.
func (p *PebbleDB) Snapshot() kv.Snapshot {
	s := p.db.NewSnapshot()
	return &struct {
		kv.GetFunc
		kv.HasFunc
		kv.IsNotFoundFunc
		kv.ReleaseFunc
	}{
		func(key []byte) ([]byte, error) { return get(s, key) },
		func(key []byte) (bool, error) { return has(s, key) },
		p.IsNotFound,
		func() { s.Close() },
	}
}

// Bulk returns a batch committed with fsync on Write.
func (p *PebbleDB) Bulk() kv.Bulk {
	var batch *pebble.Batch
	getBatch := func() *pebble.Batch {
		if batch == nil {
			batch = p.db.NewBatch()
		}
		return batch
	}
	return &struct {
		kv.PutFunc
		kv.DeleteFunc
		kv.WriteFunc
	}{
		func(key, val []byte) error { return getBatch().Set(key, val, nil) },
		func(key []byte) error { return getBatch().Delete(key, nil) },
		func() error {
			if batch == nil {
				return nil
			}
			defer func() { batch = nil }()
			if err := batch.Commit(pebble.Sync); err != nil {
				batch.Close()
				return err
			}
			return batch.Close()
		},
	}
}

// Iterate creates an iterator over the given range.
func (p *PebbleDB) Iterate(r kv.Range) kv.Iterator {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: r.Start,
		UpperBound: r.Limit,
	})
	return &iterator{iter: iter, err: err}
}

func (p *PebbleDB) Close() error {
	return p.db.Close()
}

// iterator adapts pebble.Iterator to the leveldb-like kv.Iterator, where Next on a fresh
// iterator moves to the first pair.
type iterator struct {
	iter    *pebble.Iterator
	err     error
	started bool
}

func (i *iterator) ok() bool { return i.err == nil && i.iter != nil }

func (i *iterator) First() bool {
	if !i.ok() {
		return false
	}
	i.started = true
	return i.iter.First()
}

func (i *iterator) Last() bool {
	if !i.ok() {
		return false
	}
	i.started = true
	return i.iter.Last()
}

func (i *iterator) Next() bool {
	if !i.started {
		return i.First()
	}
	if !i.ok() {
		return false
	}
	return i.iter.Next()
}

func (i *iterator) Prev() bool {
	if !i.started {
		return i.Last()
	}
	if !i.ok() {
		return false
	}
	return i.iter.Prev()
}

func (i *iterator) Key() []byte {
	if !i.ok() || !i.iter.Valid() {
		return nil
	}
	return append([]byte(nil), i.iter.Key()...)
}

func (i *iterator) Value() []byte {
	if !i.ok() || !i.iter.Valid() {
		return nil
	}
	return append([]byte(nil), i.iter.Value()...)
}

func (i *iterator) Error() error {
	if i.err != nil {
		return i.err
	}
	return i.iter.Error()
}

func (i *iterator) Release() {
	if i.iter != nil {
		i.iter.Close()
	}
}
