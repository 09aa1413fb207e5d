// Copyright (c) 2019 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import "github.com/syndtr/goleveldb/leveldb/util"

type (
	// Getter reads values by key.
	Getter interface {
		Get(key []byte) ([]byte, error)
		Has(key []byte) (bool, error)
		IsNotFound(err error) bool
	}

	// Putter writes and deletes values by key.
	Putter interface {
		Put(key, val []byte) error
		Delete(key []byte) error
	}

	// Snapshot is a frozen read view. It must be released.
	Snapshot interface {
		Getter
		Release()
	}

	// Bulk buffers writes until Write applies them atomically.
	Bulk interface {
		Putter
		Write() error
	}

	// Iterator walks key-ordered pairs within a Range.
	Iterator interface {
		First() bool
		Last() bool
		Next() bool
		Prev() bool
		Key() []byte
		Value() []byte
		Release()
		Error() error
	}

	// Store is the storage surface the ledger state and event index are built on.
	Store interface {
		Getter
		Putter

		Snapshot() Snapshot
		Bulk() Bulk
		Iterate(r Range) Iterator
	}

	// StoreCloser is a store backed by a database handle.
	StoreCloser interface {
		Store
		Close() error
	}
)

// Range is a half-open key range. Empty bounds are unbounded.
type Range struct {
	Start []byte
	Limit []byte
}

// PrefixRange returns the range covering every key starting with prefix.
func PrefixRange(prefix []byte) Range {
	r := util.BytesPrefix(prefix)
	return Range{Start: r.Start, Limit: r.Limit}
}
