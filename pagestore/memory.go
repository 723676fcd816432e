package pagestore

import (
	"decred.org/dcrwallet/v2/errors"
)

// Memory is a handle to one region of the page store. Keys within a memory
// are kept in ascending byte order and never collide with keys of another
// memory.
type Memory struct {
	id      MemoryID
	manager *Manager
}

// ID returns the region id the handle is bound to.
func (m *Memory) ID() MemoryID {
	return m.id
}

// Get returns a copy of the value stored at key, or nil if the key is absent.
func (m *Memory) Get(key []byte) ([]byte, error) {
	db, err := m.manager.backend()
	if err != nil {
		return nil, err
	}
	return db.get(m.id, key)
}

// Put stores value at key, overwriting any existing value.
func (m *Memory) Put(key, value []byte) error {
	if len(key) == 0 {
		return errors.E(errors.Invalid, "empty key")
	}
	db, err := m.manager.backend()
	if err != nil {
		return err
	}
	return db.put(m.id, key, value)
}

// Len returns the number of keys stored in the memory.
func (m *Memory) Len() (uint64, error) {
	db, err := m.manager.backend()
	if err != nil {
		return 0, err
	}
	return db.keyCount(m.id)
}
