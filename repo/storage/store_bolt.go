package storage

import (
	"errors"

	bolt "go.etcd.io/bbolt"
)

var BoltBucket = []byte("data")
var ErrBoltNoBucket = errors.New("no bucket in bolt")

// Store implementation using bbolt
// Internally it uses a single bucket to store all records
// Note: insertions to bolt are comically slow unless batched.
//
//	The key is the 8-byte content id (big endian)
//	The value is the encoded record: name, key locator hash, data wire
type BoltStore struct {
	db *bolt.DB
	tx *bolt.Tx
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(BoltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Put(rec Record) error {
	key, val := idKey(rec.ID), encodeRecord(rec)
	return s.update(func(bucket *bolt.Bucket) error {
		return bucket.Put(key, val)
	})
}

func (s *BoltStore) Get(id uint64) (wire []byte, err error) {
	if s.tx != nil {
		panic("Get() called within a write transaction")
	}

	err = s.view(func(bucket *bolt.Bucket) error {
		val := bucket.Get(idKey(id))
		if val == nil {
			return nil
		}
		rec, err := decodeRecord(id, val, true)
		wire = rec.Wire
		return err
	})

	return
}

func (s *BoltStore) Remove(id uint64) error {
	key := idKey(id)
	return s.update(func(bucket *bolt.Bucket) error {
		return bucket.Delete(key)
	})
}

func (s *BoltStore) Scan(fn func(rec Record) error) error {
	if s.tx != nil {
		panic("Scan() called within a write transaction")
	}

	return s.view(func(bucket *bolt.Bucket) error {
		return bucket.ForEach(func(k, v []byte) error {
			rec, err := decodeRecord(keyId(k), v, false)
			if err != nil {
				return err
			}
			return fn(rec)
		})
	})
}

func (s *BoltStore) Begin() (Store, error) {
	if s.tx != nil {
		panic("Begin() called within a write transaction")
	}

	// bolt has only one concurrent write transaction
	// so this will block if there is already a write transaction
	tx, err := s.db.Begin(true)
	if err != nil {
		return nil, err
	}

	return &BoltStore{db: s.db, tx: tx}, nil
}

func (s *BoltStore) Commit() error {
	if s.tx == nil {
		panic("Commit() called without a write transaction")
	}
	return s.tx.Commit()
}

func (s *BoltStore) Rollback() error {
	if s.tx == nil {
		panic("Rollback() called without a write transaction")
	}
	return s.tx.Rollback()
}

func (s *BoltStore) view(f func(bucket *bolt.Bucket) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BoltBucket)
		if bucket == nil {
			return ErrBoltNoBucket
		}
		return f(bucket)
	})
}

// update uses the current transaction if available, otherwise creates a new one
func (s *BoltStore) update(f func(bucket *bolt.Bucket) error) error {
	update := func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BoltBucket)
		if bucket == nil {
			return ErrBoltNoBucket
		}
		return f(bucket)
	}

	if s.tx != nil {
		return update(s.tx)
	} else {
		return s.db.Update(update)
	}
}
