package index

import enc "github.com/named-data/ndnrepo/std/encoding"

// orderedView is the positional access selector resolution needs.
// A nil *entry is the end position.
type orderedView interface {
	// lowerBound returns the first entry not less than name.
	lowerBound(name enc.Name) *entry
	// prev returns the entry before pos, or nil at the beginning.
	// prev(nil) is the last entry.
	prev(pos *entry) *entry
	// ascend calls yield from pos onwards until it returns false.
	ascend(pos *entry, yield func(*entry) bool)
}

func (x *Index) lowerBound(name enc.Name) *entry {
	it := x.tree.Iter()
	defer it.Release()
	if !it.Seek(&entry{name: name}) {
		return nil
	}
	return it.Item()
}

func (x *Index) prev(pos *entry) *entry {
	it := x.tree.Iter()
	defer it.Release()
	if pos == nil {
		if !it.Last() {
			return nil
		}
		return it.Item()
	}
	if !it.Seek(pos) || !it.Prev() {
		return nil
	}
	return it.Item()
}

func (x *Index) ascend(pos *entry, yield func(*entry) bool) {
	if pos == nil {
		return
	}
	x.tree.Ascend(pos, yield)
}

// firstLive returns the first live entry at or after pos.
func firstLive(v orderedView, pos *entry) *entry {
	var ret *entry
	v.ascend(pos, func(e *entry) bool {
		if e.status.IsLive() {
			ret = e
			return false
		}
		return true
	})
	return ret
}
