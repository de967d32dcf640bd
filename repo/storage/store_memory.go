package storage

import (
	"bytes"
	"maps"
	"slices"
	"sync"
)

type MemoryStore struct {
	root *memoryRoot
	// pending writes of a transaction; a nil record is a removal
	tx map[uint64]*Record
}

type memoryRoot struct {
	// records by id
	records map[uint64]Record
	// thread safety
	mutex sync.RWMutex
	// one transaction at a time
	txMutex sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		root: &memoryRoot{records: make(map[uint64]Record)},
	}
}

func (s *MemoryStore) Put(rec Record) error {
	rec.Name = rec.Name.Clone()
	rec.KeyLocatorHash = bytes.Clone(rec.KeyLocatorHash)
	rec.Wire = bytes.Clone(rec.Wire)

	if s.tx != nil {
		s.tx[rec.ID] = &rec
		return nil
	}

	s.root.mutex.Lock()
	defer s.root.mutex.Unlock()
	s.root.records[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Get(id uint64) ([]byte, error) {
	if s.tx != nil {
		panic("Get() called within a write transaction")
	}

	s.root.mutex.RLock()
	defer s.root.mutex.RUnlock()
	if rec, ok := s.root.records[id]; ok {
		return rec.Wire, nil
	}
	return nil, nil
}

func (s *MemoryStore) Remove(id uint64) error {
	if s.tx != nil {
		s.tx[id] = nil
		return nil
	}

	s.root.mutex.Lock()
	defer s.root.mutex.Unlock()
	delete(s.root.records, id)
	return nil
}

func (s *MemoryStore) Scan(fn func(rec Record) error) error {
	if s.tx != nil {
		panic("Scan() called within a write transaction")
	}

	s.root.mutex.RLock()
	recs := make([]Record, 0, len(s.root.records))
	for _, id := range slices.Sorted(maps.Keys(s.root.records)) {
		rec := s.root.records[id]
		rec.Wire = nil
		recs = append(recs, rec)
	}
	s.root.mutex.RUnlock()

	for _, rec := range recs {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) Begin() (Store, error) {
	if s.tx != nil {
		panic("Begin() called within a write transaction")
	}
	s.root.txMutex.Lock()
	return &MemoryStore{root: s.root, tx: make(map[uint64]*Record)}, nil
}

func (s *MemoryStore) Commit() error {
	if s.tx == nil {
		panic("Commit() called without a write transaction")
	}
	defer s.root.txMutex.Unlock()

	s.root.mutex.Lock()
	defer s.root.mutex.Unlock()
	for id, rec := range s.tx {
		if rec == nil {
			delete(s.root.records, id)
		} else {
			s.root.records[id] = *rec
		}
	}
	s.tx = nil
	return nil
}

func (s *MemoryStore) Rollback() error {
	if s.tx == nil {
		panic("Rollback() called without a write transaction")
	}
	defer s.root.txMutex.Unlock()
	s.tx = nil
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
