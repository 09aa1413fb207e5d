// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/vechain/streams/kv"
)

var _ kv.StoreCloser = (*LevelDB)(nil)

const minCache = 16

var (
	readOpt  = &opt.ReadOptions{}
	scanOpt  = &opt.ReadOptions{DontFillCache: true}
	writeOpt = &opt.WriteOptions{}
	syncOpt  = &opt.WriteOptions{Sync: true}
)

// Options for opening a leveldb store.
type Options struct {
	CacheSize              int // MiB
	OpenFilesCacheCapacity int
}

func (o Options) leveldb() *opt.Options {
	o.CacheSize = max(o.CacheSize, minCache)
	o.OpenFilesCacheCapacity = max(o.OpenFilesCacheCapacity, minCache)
	return &opt.Options{
		OpenFilesCacheCapacity: o.OpenFilesCacheCapacity,
		BlockCacheCapacity:     o.CacheSize / 2 * opt.MiB,
		WriteBuffer:            o.CacheSize / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	}
}

// LevelDB is the goleveldb backed kv.Store.
type LevelDB struct {
	db *leveldb.DB
}

// New opens the store at path, creating it when absent.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrapf(err, "open leveldb storage %s", path)
	}
	return open(stg, opts)
}

// NewMem opens a store held in memory.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), Options{})
}

func open(stg storage.Storage, opts Options) (*LevelDB, error) {
	db, err := leveldb.Open(stg, opts.leveldb())
	if err != nil {
		return nil, errors.Wrap(err, "open leveldb")
	}
	return &LevelDB{db}, nil
}

func (ldb *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

// Get returns the value of key. A missing key yields an error recognised by IsNotFound.
func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	return get(ldb.db.Get(key, readOpt))
}

func (ldb *LevelDB) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, readOpt)
}

func (ldb *LevelDB) Put(key, val []byte) error {
	return ldb.db.Put(key, val, writeOpt)
}

func (ldb *LevelDB) Delete(key []byte) error {
	return ldb.db.Delete(key, writeOpt)
}

// Snapshot pins the current state for reading.
func (ldb *LevelDB) Snapshot() kv.Snapshot {
	s, err := ldb.db.GetSnapshot()
	return &snapshot{s, err}
}

// Bulk buffers writes in a batch that Write applies atomically and syncs.
func (ldb *LevelDB) Bulk() kv.Bulk {
	return &batch{db: ldb.db}
}

func (ldb *LevelDB) Iterate(r kv.Range) kv.Iterator {
	return ldb.db.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit}, scanOpt)
}

func (ldb *LevelDB) Close() error {
	return ldb.db.Close()
}

// get drops the empty slice goleveldb returns alongside errors.
func get(val []byte, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	return val, nil
}

type snapshot struct {
	s   *leveldb.Snapshot
	err error
}

func (s *snapshot) Get(key []byte) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return get(s.s.Get(key, readOpt))
}

func (s *snapshot) Has(key []byte) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.s.Has(key, readOpt)
}

func (s *snapshot) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

func (s *snapshot) Release() {
	if s.s != nil {
		s.s.Release()
	}
}

type batch struct {
	db *leveldb.DB
	b  leveldb.Batch
}

func (b *batch) Put(key, val []byte) error {
	b.b.Put(key, val)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.b.Delete(key)
	return nil
}

func (b *batch) Write() error {
	if b.b.Len() == 0 {
		return nil
	}
	if err := b.db.Write(&b.b, syncOpt); err != nil {
		return err
	}
	b.b.Reset()
	return nil
}
