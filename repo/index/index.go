package index

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"iter"

	"github.com/cespare/xxhash"
	enc "github.com/named-data/ndnrepo/std/encoding"
	"github.com/named-data/ndnrepo/std/log"
	"github.com/named-data/ndnrepo/std/ndn"
	"github.com/tidwall/btree"
)

// Index is an ordered index of stored Data, keyed by full name.
//
// Erased entries stay in place as tombstones until Compact is called.
// Because the order is component-wise over the whole name, all names under
// a prefix form one contiguous run; prefix lookups rely on this.
//
// Index is not safe for concurrent use.
type Index struct {
	tree     *btree.BTreeG[*entry]
	live     int
	capacity int
}

// New creates an index admitting at most capacity live entries.
func New(capacity int) *Index {
	return &Index{
		tree:     btree.NewBTreeGOptions(entryLess, btree.Options{NoLocks: true}),
		capacity: capacity,
	}
}

func (x *Index) String() string {
	return "index"
}

// Insert adds a Data packet under its full name.
// The publisher key hash is taken from the signature's KeyLocator.
func (x *Index) Insert(data *ndn.Data, id uint64) (bool, error) {
	return x.InsertName(data.FullName(), id, KeyLocatorHash(data.KeyLocator()))
}

// InsertName adds an entry with a precomputed full name and key locator hash.
// It returns false if a live entry with the same name exists. A tombstone of
// the same name is replaced by a recreated entry.
func (x *Index) InsertName(fullName enc.Name, id uint64, keyLocatorHash []byte) (bool, error) {
	if x.Full() {
		return false, ErrCapacityExceeded
	}

	status := StatusExisting
	if old, ok := x.tree.Get(&entry{name: fullName}); ok {
		if old.status.IsLive() {
			return false, nil
		}
		status = StatusRecreated
		log.Trace(x, "Replacing tombstone", "name", fullName, "id", id, "old", old.id)
	}

	x.tree.Set(&entry{
		name:           fullName.Clone(),
		id:             id,
		keyLocatorHash: bytes.Clone(keyLocatorHash),
		status:         status,
	})
	x.live++
	return true, nil
}

// Erase marks the live entry with exactly this name as tombstoned.
func (x *Index) Erase(fullName enc.Name) bool {
	old, ok := x.tree.Get(&entry{name: fullName})
	if !ok || !old.status.IsLive() {
		return false
	}

	tomb := *old
	tomb.status = StatusTombstoned
	if _, replaced := x.tree.Set(&tomb); !replaced {
		panic(fmt.Sprintf("tombstone of %s was not re-registered", fullName))
	}
	x.live--
	return true
}

// Find returns the first live entry at or after name, if name is a prefix of it.
func (x *Index) Find(name enc.Name) (Match, bool) {
	e := firstLive(x, x.lowerBound(name))
	if e == nil || !name.IsPrefix(e.name) {
		return Match{}, false
	}
	return e.match(), true
}

// FindQuery resolves a selector query.
func (x *Index) FindQuery(q *Query) (Match, bool) {
	var e *entry
	if q.ChildSelector == Rightmost {
		e = selectRightmost(x, q)
	} else {
		e = selectLeftmost(x, q)
	}
	if e == nil {
		return Match{}, false
	}
	return e.match(), true
}

// Status returns the status of the first entry at or after name, tombstones
// included, or StatusAbsent if name is not a prefix of it.
func (x *Index) Status(name enc.Name) Status {
	e := x.lowerBound(name)
	if e == nil || !name.IsPrefix(e.name) {
		return StatusAbsent
	}
	return e.status
}

// Contains reports whether the packet is indexed and live.
func (x *Index) Contains(data *ndn.Data) bool {
	return x.Has(data.FullName())
}

// Has reports whether a live entry has exactly this full name.
func (x *Index) Has(fullName enc.Name) bool {
	e, ok := x.tree.Get(&entry{name: fullName})
	return ok && e.status.IsLive()
}

// Compact physically removes tombstones and returns how many were removed.
func (x *Index) Compact() int {
	var dead []*entry
	x.tree.Scan(func(e *entry) bool {
		if e.status == StatusTombstoned {
			dead = append(dead, e)
		}
		return true
	})
	for _, e := range dead {
		x.tree.Delete(e)
	}

	if len(dead) > 0 {
		log.Trace(x, "Compacted", "removed", len(dead), "size", x.tree.Len())
	}
	return len(dead)
}

// Enumerate yields every entry in ascending order, tombstones included.
func (x *Index) Enumerate() iter.Seq2[enc.Name, Status] {
	return func(yield func(enc.Name, Status) bool) {
		x.tree.Scan(func(e *entry) bool {
			return yield(e.name.Clone(), e.status)
		})
	}
}

// Walk calls fn for each entry under prefix in ascending order, tombstones
// included, until fn returns false.
func (x *Index) Walk(prefix enc.Name, fn func(m Match, s Status) bool) {
	x.ascend(x.lowerBound(prefix), func(e *entry) bool {
		if !prefix.IsPrefix(e.name) {
			return false
		}
		return fn(e.match(), e.status)
	})
}

// Len returns the number of live entries.
func (x *Index) Len() int {
	return x.live
}

func (x *Index) Capacity() int {
	return x.capacity
}

// Size returns the number of entries including tombstones.
func (x *Index) Size() int {
	return x.tree.Len()
}

func (x *Index) Full() bool {
	return x.live >= x.capacity
}

// Fingerprint hashes the complete index state in order.
// Two indexes with equal contents have equal fingerprints.
func (x *Index) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [9]byte
	x.tree.Scan(func(e *entry) bool {
		h.Write(e.name.Bytes())
		binary.BigEndian.PutUint64(buf[:8], e.id)
		buf[8] = byte(e.status)
		h.Write(buf[:])
		h.Write([]byte{byte(len(e.keyLocatorHash))})
		h.Write(e.keyLocatorHash)
		return true
	})
	return h.Sum64()
}
