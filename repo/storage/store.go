package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"path/filepath"

	enc "github.com/named-data/ndnrepo/std/encoding"
	"github.com/named-data/ndnrepo/std/ndn"
)

// Record is one stored Data packet.
type Record struct {
	ID uint64
	// Name is the full name of the packet.
	Name           enc.Name
	KeyLocatorHash []byte
	Wire           []byte
}

// Store persists Data packets by content id.
type Store interface {
	// Put stores a record, replacing any record with the same id.
	Put(rec Record) error
	// Get returns the wire of a record, or nil if there is none.
	Get(id uint64) ([]byte, error)
	Remove(id uint64) error
	// Scan calls fn for every record in id order. Wire is not loaded.
	Scan(fn func(rec Record) error) error

	// Begin starts a write transaction. Get and Scan must not be called on
	// the returned store.
	Begin() (Store, error)
	Commit() error
	Rollback() error

	Close() error
}

// Open opens the store of the named backend under dir.
func Open(backend string, dir string) (Store, error) {
	switch backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "badger":
		s, err := NewBadgerStore(filepath.Join(dir, "badger"))
		if err != nil {
			return nil, err
		}
		return s, nil
	case "bolt":
		s, err := NewBoltStore(filepath.Join(dir, "repo.db"))
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := NewSqliteStore(filepath.Join(dir, "repo.sqlite"))
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}

// Backends lists the names accepted by Open.
var Backends = []string{"memory", "badger", "bolt", "sqlite"}

func idKey(id uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, id)
}

func keyId(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}

// encodeRecord encodes the value of a key-value record:
// the Name TLV, the key locator hash as a KeyDigest TLV if present, then the Data wire.
func encodeRecord(rec Record) []byte {
	buf := rec.Name.Bytes()
	if len(rec.KeyLocatorHash) > 0 {
		buf = enc.AppendTLV(buf, ndn.TypeKeyDigest, rec.KeyLocatorHash)
	}
	return append(buf, rec.Wire...)
}

// decodeRecord decodes a value written by encodeRecord. The result does not alias buf.
func decodeRecord(id uint64, buf []byte, withWire bool) (rec Record, err error) {
	rec.ID = id
	r := enc.NewBufferView(buf)

	typ, val, err := r.ReadTLV()
	if err != nil {
		return rec, err
	}
	if typ != enc.TypeName {
		return rec, fmt.Errorf("record %d: %w", id, enc.ErrUnexpectedType)
	}
	nv := enc.NewBufferView(val)
	if rec.Name, err = nv.ReadName(); err != nil {
		return rec, err
	}
	rec.Name = rec.Name.Clone()

	for !r.IsEOF() {
		pos := r.Pos()
		typ, val, err := r.ReadTLV()
		if err != nil {
			return rec, err
		}
		switch typ {
		case ndn.TypeKeyDigest:
			rec.KeyLocatorHash = bytes.Clone(val)
		case ndn.TypeData:
			if withWire {
				rec.Wire = bytes.Clone(buf[pos:r.Pos()])
			}
			return rec, nil
		default:
			return rec, fmt.Errorf("record %d: %w", id, enc.ErrUnexpectedType)
		}
	}
	return rec, fmt.Errorf("record %d has no data", id)
}
