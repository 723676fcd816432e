package pagestore

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"

	"decred.org/dcrwallet/v2/errors"
)

const (
	// DriverBolt stores every memory as a bucket inside one bbolt file.
	DriverBolt = "bdb"
	// DriverBadger stores every memory under its own key prefix in a badger
	// database directory.
	DriverBadger = "badgerdb"

	// StoreVersion must be incremented whenever the on-disk layout of memories
	// changes in a way older binaries cannot read.
	StoreVersion uint32 = 1

	keyStoreVersion = "StoreVersion"
)

// MemoryID addresses an independent region of the page store.
type MemoryID uint8

// backend is implemented by each storage driver. All keys passed to a backend
// are relative to the memory being addressed.
type backend interface {
	initMemory(id MemoryID) error
	get(id MemoryID, key []byte) ([]byte, error)
	put(id MemoryID, key, value []byte) error
	keyCount(id MemoryID) (uint64, error)
	readMeta(key string) ([]byte, error)
	writeMeta(key string, value []byte) error
	close() error
}

// Manager owns the durable store and hands out Memory handles. It is meant to
// be opened once at process start and closed on shutdown.
type Manager struct {
	driver string
	db     backend

	mu       sync.Mutex
	memories map[MemoryID]*Memory
	closed   bool
}

// Open opens or creates the page store kept in dir using the named driver.
// Reopening an existing store never resets its memories.
func Open(driver, dir string) (*Manager, error) {
	const op errors.Op = "pagestore.Open"

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.E(op, errors.IO, err)
	}

	var db backend
	var err error
	switch driver {
	case DriverBolt:
		db, err = openBoltDB(filepath.Join(dir, "pages.db"))
	case DriverBadger:
		db, err = openBadgerDB(filepath.Join(dir, "pages.badger"))
	default:
		return nil, errors.E(op, errors.Invalid, errors.Errorf("unknown page store driver %q", driver))
	}
	if err != nil {
		return nil, errors.E(op, err)
	}

	if err := ensureStoreVersion(db); err != nil {
		db.close()
		return nil, errors.E(op, err)
	}

	log.Infof("Opened %s page store at %s", driver, dir)

	return &Manager{
		driver:   driver,
		db:       db,
		memories: make(map[MemoryID]*Memory),
	}, nil
}

// ensureStoreVersion stamps a new store with StoreVersion and refuses to use a
// store written with a different layout.
func ensureStoreVersion(db backend) error {
	raw, err := db.readMeta(keyStoreVersion)
	if err != nil {
		return err
	}

	if raw == nil {
		log.Debugf("New page store, writing version %d", StoreVersion)
		return db.writeMeta(keyStoreVersion, encodeUint32(StoreVersion))
	}

	if len(raw) != 4 {
		return errors.E(errors.Encoding, "corrupt page store version")
	}
	if v := decodeUint32(raw); v != StoreVersion {
		return errors.E(errors.Invalid, errors.Errorf("page store version %d is not supported (want %d)", v, StoreVersion))
	}
	return nil
}

// Memory returns the handle for region id, initializing the region on first
// use. The same id always addresses the same persisted data.
func (m *Manager) Memory(id MemoryID) (*Memory, error) {
	const op errors.Op = "pagestore.Memory"

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, errors.E(op, errors.Invalid, "page store is closed")
	}

	if mem, ok := m.memories[id]; ok {
		return mem, nil
	}

	if err := m.db.initMemory(id); err != nil {
		return nil, errors.E(op, err)
	}

	mem := &Memory{id: id, manager: m}
	m.memories[id] = mem
	return mem, nil
}

// Driver returns the name of the driver backing the store.
func (m *Manager) Driver() string {
	return m.driver
}

// Close flushes and releases the underlying database. Memory handles must not
// be used afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errors.E(errors.Invalid, "page store is already closed")
	}
	m.closed = true

	log.Infof("Closing %s page store", m.driver)
	return m.db.close()
}

func (m *Manager) backend() (backend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.E(errors.Invalid, "page store is closed")
	}
	return m.db, nil
}

func encodeUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func decodeUint32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}
