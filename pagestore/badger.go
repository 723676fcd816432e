// Copyright (c) 2014 The btcsuite developers
// Copyright (c) 2015 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pagestore

import (
	"fmt"

	"decred.org/dcrwallet/v2/errors"
	"github.com/dgraph-io/badger"
	"github.com/dgraph-io/badger/options"
	"github.com/decred/slog"
)

// Key prefixes partitioning the badger keyspace. Memory keys are laid out as
// prefixMemory | id | key so a prefix scan visits exactly one memory in key
// order.
const (
	prefixMeta   byte = 0x00
	prefixMemory byte = 0x01
)

// convertErr wraps a driver-specific error with an error code.
func convertErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*errors.Error); ok {
		return err
	}
	var kind errors.Kind
	switch err {
	case badger.ErrValueLogSize, badger.ErrTxnTooBig, badger.ErrReadOnlyTxn, badger.ErrDiscardedTxn, badger.ErrEmptyKey, badger.ErrThresholdZero,
		badger.ErrRejected, badger.ErrInvalidRequest, badger.ErrManagedTxn, badger.ErrInvalidDump, badger.ErrZeroBandwidth, badger.ErrInvalidLoadingMode, badger.ErrWindowsNotSupported, badger.ErrReplayNeeded, badger.ErrTruncateNeeded:
		kind = errors.Invalid
	case badger.ErrKeyNotFound:
		kind = errors.NotExist
	default:
		kind = errors.IO
	}
	return errors.E(kind, err)
}

// badgerLogger routes badger's internal logging to the package logger.
type badgerLogger struct {
	slog.Logger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}

// badgerDB keeps each memory under its own key prefix.
type badgerDB struct {
	db *badger.DB
}

var _ backend = (*badgerDB)(nil)

func openBadgerDB(dbPath string) (*badgerDB, error) {
	opts := badger.DefaultOptions(dbPath).
		WithValueDir(dbPath).
		WithValueLogLoadingMode(options.FileIO).
		WithTableLoadingMode(options.FileIO).
		WithValueLogFileSize(200 << 20).
		WithMaxTableSize(40 << 20).
		WithLevelOneSize(200 << 20).
		WithNumMemtables(1).
		WithNumCompactors(1).
		WithNumLevelZeroTables(1).
		WithNumLevelZeroTablesStall(2).
		WithLogger(badgerLogger{log})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, convertErr(err)
	}
	return &badgerDB{db: db}, nil
}

func memoryPrefix(id MemoryID) []byte {
	return []byte{prefixMemory, byte(id)}
}

func memoryKey(id MemoryID, key []byte) []byte {
	k := make([]byte, 0, len(key)+2)
	k = append(k, prefixMemory, byte(id))
	return append(k, key...)
}

func metaKey(key string) []byte {
	return append([]byte{prefixMeta}, key...)
}

// getItem reads key inside txn and reports a missing key as a nil value.
func getItem(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (b *badgerDB) initMemory(id MemoryID) error {
	marker := metaKey(fmt.Sprintf("memory-%03d", id))
	err := b.db.Update(func(txn *badger.Txn) error {
		v, err := getItem(txn, marker)
		if err != nil || v != nil {
			return err
		}
		return txn.Set(marker, []byte{byte(id)})
	})
	return convertErr(err)
}

func (b *badgerDB) get(id MemoryID, key []byte) (value []byte, err error) {
	err = b.db.View(func(txn *badger.Txn) error {
		value, err = getItem(txn, memoryKey(id, key))
		return err
	})
	if err != nil {
		return nil, convertErr(err)
	}
	return value, nil
}

func (b *badgerDB) put(id MemoryID, key, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(memoryKey(id, key), value)
	})
	return convertErr(err)
}

func (b *badgerDB) keyCount(id MemoryID) (n uint64, err error) {
	prefix := memoryPrefix(id)
	err = b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		// Key-only iteration for faster counting.
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, convertErr(err)
	}
	return n, nil
}

func (b *badgerDB) readMeta(key string) (value []byte, err error) {
	err = b.db.View(func(txn *badger.Txn) error {
		value, err = getItem(txn, metaKey(key))
		return err
	})
	if err != nil {
		return nil, convertErr(err)
	}
	return value, nil
}

func (b *badgerDB) writeMeta(key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(metaKey(key), value)
	})
	return convertErr(err)
}

// close cleanly shuts down the database and syncs all data.
func (b *badgerDB) close() error {
	return convertErr(b.db.Close())
}
