package repo

import (
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/named-data/ndnrepo/repo/index"
	"github.com/named-data/ndnrepo/repo/storage"
	enc "github.com/named-data/ndnrepo/std/encoding"
	"github.com/named-data/ndnrepo/std/log"
	"github.com/named-data/ndnrepo/std/ndn"
)

// Repo is an NDN Data repository: an ordered in-memory index over a
// persistent store. The index is rebuilt from the store on Start.
type Repo struct {
	config *Config

	// mutex guards index, store and nextId
	mutex  sync.RWMutex
	index  *index.Index
	store  storage.Store
	nextId uint64

	stop chan struct{}
	done chan struct{}
}

// Stats is a snapshot of the repository counters.
type Stats struct {
	Live        int
	Physical    int
	Capacity    int
	Fingerprint uint64
}

func NewRepo(config *Config) *Repo {
	return &Repo{
		config: config,
	}
}

func (r *Repo) String() string {
	return "repo"
}

func (r *Repo) Start() (err error) {
	log.Info(r, "Starting NDN Data Repository",
		"name", r.config.NameN, "backend", r.config.StorageBackend, "dir", r.config.StorageDir)

	r.store, err = storage.Open(r.config.StorageBackend, r.config.StorageDir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	r.index = index.New(r.config.Capacity)
	if err = r.rebuild(); err != nil {
		r.store.Close()
		return err
	}
	log.Info(r, "Index rebuilt", "entries", r.index.Len(), "capacity", r.index.Capacity())

	if interval := r.config.CompactIntervalD; interval > 0 {
		r.stop = make(chan struct{})
		r.done = make(chan struct{})
		go r.compactLoop(interval)
	}

	return nil
}

func (r *Repo) Stop() error {
	log.Info(r, "Stopping NDN Data Repository")

	if r.stop != nil {
		close(r.stop)
		<-r.done
		r.stop = nil
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.store.Close()
}

// rebuild fills the index from the stored records without parsing packets.
func (r *Repo) rebuild() error {
	r.nextId = 1
	return r.store.Scan(func(rec storage.Record) error {
		r.nextId = max(r.nextId, rec.ID+1)

		ok, err := r.index.InsertName(rec.Name, rec.ID, rec.KeyLocatorHash)
		if err != nil {
			return fmt.Errorf("failed to rebuild index at %s: %w", rec.Name, err)
		}
		if !ok {
			log.Warn(r, "Duplicate record in store", "name", rec.Name, "id", rec.ID)
		}
		return nil
	})
}

// Insert parses and stores a Data packet.
// It returns false if the same packet is already stored.
func (r *Repo) Insert(wire []byte) (bool, error) {
	data, err := ndn.ParseData(wire)
	if err != nil {
		return false, fmt.Errorf("invalid data: %w", err)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	_, ok, err := r.insert(r.store, data)
	return ok, err
}

// InsertBatch stores several packets in one store transaction.
// Either all new packets are stored or none is.
func (r *Repo) InsertBatch(wires [][]byte) (int, error) {
	datas := make([]*ndn.Data, len(wires))
	for i, wire := range wires {
		var err error
		if datas[i], err = ndn.ParseData(wire); err != nil {
			return 0, fmt.Errorf("invalid data at %d: %w", i, err)
		}
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	tx, err := r.store.Begin()
	if err != nil {
		return 0, err
	}

	added := make([]enc.Name, 0, len(datas))
	undo := func() {
		for _, name := range added {
			r.index.Erase(name)
		}
	}

	for _, data := range datas {
		name, ok, err := r.insert(tx, data)
		if err != nil {
			tx.Rollback()
			undo()
			return 0, err
		}
		if ok {
			added = append(added, name)
		}
	}

	if err := tx.Commit(); err != nil {
		undo()
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return len(added), nil
}

func (r *Repo) insert(store storage.Store, data *ndn.Data) (enc.Name, bool, error) {
	rec := storage.Record{
		ID:             r.nextId,
		Name:           data.FullName(),
		KeyLocatorHash: index.KeyLocatorHash(data.KeyLocator()),
		Wire:           data.Wire(),
	}

	ok, err := r.index.InsertName(rec.Name, rec.ID, rec.KeyLocatorHash)
	if err != nil || !ok {
		return nil, false, err
	}
	r.nextId++

	if err := store.Put(rec); err != nil {
		r.index.Erase(rec.Name)
		return nil, false, fmt.Errorf("failed to store %s: %w", data.Name, err)
	}

	log.Debug(r, "Inserted data", "name", data.Name, "id", rec.ID)
	return rec.Name, true, nil
}

// Read returns the wire of the packet the Interest selects, or nil.
func (r *Repo) Read(interest *ndn.Interest) ([]byte, error) {
	q := index.QueryFromInterest(interest)

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	m, ok := r.index.FindQuery(q)
	if !ok {
		return nil, nil
	}

	wire, err := r.store.Get(m.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", m.Name, err)
	}
	if wire == nil {
		log.Warn(r, "Indexed data missing from store", "name", m.Name, "id", m.ID)
	}
	return wire, nil
}

// Delete removes every packet under name.
func (r *Repo) Delete(name enc.Name) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.deleteWhile(func() (index.Match, bool) {
		return r.index.Find(name)
	})
}

// DeleteMatching removes every packet the Interest could select.
func (r *Repo) DeleteMatching(interest *ndn.Interest) (int, error) {
	q := index.QueryFromInterest(interest)

	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.deleteWhile(func() (index.Match, bool) {
		return r.index.FindQuery(q)
	})
}

func (r *Repo) deleteWhile(next func() (index.Match, bool)) (count int, err error) {
	for {
		m, ok := next()
		if !ok {
			return count, nil
		}
		if err = r.store.Remove(m.ID); err != nil {
			return count, fmt.Errorf("failed to remove %s: %w", m.Name, err)
		}
		if !r.index.Erase(m.Name) {
			panic(fmt.Sprintf("found entry %s could not be erased", m.Name))
		}
		log.Debug(r, "Deleted data", "name", m.Name, "id", m.ID)
		count++
	}
}

// Compact drops all tombstones from the index.
func (r *Repo) Compact() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.compact()
}

func (r *Repo) compact() int {
	n := r.index.Compact()
	if n > 0 {
		log.Info(r, "Compacted index", "removed", n, "entries", r.index.Len())
	}
	return n
}

// maybeCompact compacts when the tombstones reach the configured threshold.
func (r *Repo) maybeCompact() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if tombs := r.index.Size() - r.index.Len(); tombs == 0 || tombs < r.config.CompactThreshold {
		return 0
	}
	return r.compact()
}

func (r *Repo) compactLoop(interval time.Duration) {
	defer close(r.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.maybeCompact()
		}
	}
}

func (r *Repo) Stats() Stats {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return Stats{
		Live:        r.index.Len(),
		Physical:    r.index.Size(),
		Capacity:    r.index.Capacity(),
		Fingerprint: r.index.Fingerprint(),
	}
}

// List returns a snapshot of the entries under prefix in name order.
// Tombstones are included only if all is set.
func (r *Repo) List(prefix enc.Name, all bool) iter.Seq2[index.Match, index.Status] {
	type item struct {
		m index.Match
		s index.Status
	}
	var items []item

	r.mutex.RLock()
	r.index.Walk(prefix, func(m index.Match, s index.Status) bool {
		if all || s.IsLive() {
			items = append(items, item{m, s})
		}
		return true
	})
	r.mutex.RUnlock()

	return func(yield func(index.Match, index.Status) bool) {
		for _, it := range items {
			if !yield(it.m, it.s) {
				return
			}
		}
	}
}
