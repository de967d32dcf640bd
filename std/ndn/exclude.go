package ndn

import (
	"strings"

	enc "github.com/named-data/ndnrepo/std/encoding"
)

// Exclude is the Exclude selector of an Interest: a list of components in
// ascending canonical order, optionally separated by ANY markers.
// A listed component is excluded. An ANY excludes every component strictly
// between its neighbours, and is unbounded when it is first or last.
type Exclude struct {
	entries []excludeEntry
}

type excludeEntry struct {
	comp enc.Component
	any  bool
}

// AppendComponent adds a component. Components must be added in ascending order.
func (e *Exclude) AppendComponent(c enc.Component) *Exclude {
	e.entries = append(e.entries, excludeEntry{comp: c.Clone()})
	return e
}

// AppendAny adds an ANY marker.
func (e *Exclude) AppendAny() *Exclude {
	if n := len(e.entries); n > 0 && e.entries[n-1].any {
		return e
	}
	e.entries = append(e.entries, excludeEntry{any: true})
	return e
}

func (e *Exclude) Empty() bool {
	return e == nil || len(e.entries) == 0
}

// IsExcluded reports whether c is covered by the filter.
func (e *Exclude) IsExcluded(c enc.Component) bool {
	if e == nil {
		return false
	}
	for i, ent := range e.entries {
		if !ent.any {
			if ent.comp.Equal(c) {
				return true
			}
			continue
		}
		above := i == 0 || c.Compare(e.entries[i-1].comp) > 0
		below := i == len(e.entries)-1 || c.Compare(e.entries[i+1].comp) < 0
		if above && below {
			return true
		}
	}
	return false
}

func (e *Exclude) String() string {
	if e == nil {
		return ""
	}
	parts := make([]string, len(e.entries))
	for i, ent := range e.entries {
		if ent.any {
			parts[i] = "*"
		} else {
			parts[i] = ent.comp.String()
		}
	}
	return strings.Join(parts, ",")
}
