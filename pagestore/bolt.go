package pagestore

import (
	"fmt"
	"time"

	"decred.org/dcrwallet/v2/errors"
	bolt "go.etcd.io/bbolt"
)

var metaBucketName = []byte("pagestore_meta")

// boltDB keeps each memory in its own top-level bucket.
type boltDB struct {
	db *bolt.DB
}

var _ backend = (*boltDB)(nil)

func openBoltDB(dbPath string) (*boltDB, error) {
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		switch err {
		case bolt.ErrTimeout:
			// timeout error occurs if bolt fails to acquire a lock on the database file
			return nil, errors.E(errors.IO, "page store is in use by another process")
		default:
			return nil, errors.E(errors.IO, errors.Errorf("error opening page store: %v", err))
		}
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(metaBucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, convertBoltErr(err)
	}

	return &boltDB{db: db}, nil
}

// convertBoltErr wraps a bbolt error with an error kind.
func convertBoltErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*errors.Error); ok {
		return err
	}
	var kind errors.Kind
	switch err {
	case bolt.ErrDatabaseNotOpen, bolt.ErrTxClosed, bolt.ErrBucketNameRequired,
		bolt.ErrKeyRequired, bolt.ErrKeyTooLarge, bolt.ErrValueTooLarge, bolt.ErrIncompatibleValue:
		kind = errors.Invalid
	case bolt.ErrBucketNotFound:
		kind = errors.NotExist
	case bolt.ErrDatabaseReadOnly, bolt.ErrTxNotWritable:
		kind = errors.Permission
	default:
		kind = errors.IO
	}
	return errors.E(kind, err)
}

func bucketName(id MemoryID) []byte {
	return []byte(fmt.Sprintf("memory-%03d", id))
}

func (b *boltDB) memoryBucket(tx *bolt.Tx, id MemoryID) (*bolt.Bucket, error) {
	bucket := tx.Bucket(bucketName(id))
	if bucket == nil {
		return nil, errors.E(errors.NotExist, errors.Errorf("memory %d is not initialized", id))
	}
	return bucket, nil
}

func (b *boltDB) initMemory(id MemoryID) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName(id))
		return err
	})
	return convertBoltErr(err)
}

func (b *boltDB) get(id MemoryID, key []byte) (value []byte, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		bucket, err := b.memoryBucket(tx, id)
		if err != nil {
			return err
		}
		value = copyBytes(bucket.Get(key))
		return nil
	})
	if err != nil {
		return nil, convertBoltErr(err)
	}
	return value, nil
}

func (b *boltDB) put(id MemoryID, key, value []byte) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := b.memoryBucket(tx, id)
		if err != nil {
			return err
		}
		return bucket.Put(key, value)
	})
	return convertBoltErr(err)
}

func (b *boltDB) keyCount(id MemoryID) (n uint64, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		bucket, err := b.memoryBucket(tx, id)
		if err != nil {
			return err
		}
		n = uint64(bucket.Stats().KeyN)
		return nil
	})
	if err != nil {
		return 0, convertBoltErr(err)
	}
	return n, nil
}

func (b *boltDB) readMeta(key string) (value []byte, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		value = copyBytes(tx.Bucket(metaBucketName).Get([]byte(key)))
		return nil
	})
	if err != nil {
		return nil, convertBoltErr(err)
	}
	return value, nil
}

func (b *boltDB) writeMeta(key string, value []byte) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(metaBucketName).Put([]byte(key), value)
	})
	return convertBoltErr(err)
}

func (b *boltDB) close() error {
	return convertBoltErr(b.db.Close())
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
