package index

import enc "github.com/named-data/ndnrepo/std/encoding"

// Status is the lifecycle state of an index entry.
type Status int

const (
	// StatusAbsent is only reported by lookups; no entry carries it.
	StatusAbsent Status = iota
	StatusExisting
	// StatusRecreated marks an entry that replaced a tombstone of the same name.
	StatusRecreated
	StatusTombstoned
)

func (s Status) String() string {
	switch s {
	case StatusAbsent:
		return "absent"
	case StatusExisting:
		return "existing"
	case StatusRecreated:
		return "recreated"
	case StatusTombstoned:
		return "tombstoned"
	default:
		return "unknown"
	}
}

// IsLive reports whether the status counts towards the live entries.
func (s Status) IsLive() bool {
	return s == StatusExisting || s == StatusRecreated
}

type entry struct {
	name           enc.Name
	id             uint64
	keyLocatorHash []byte
	status         Status
}

func entryLess(a, b *entry) bool {
	return a.name.Compare(b.name) < 0
}

// Match is the result of a lookup. It does not alias index memory.
type Match struct {
	ID   uint64
	Name enc.Name
}

func (e *entry) match() Match {
	return Match{ID: e.id, Name: e.name.Clone()}
}
