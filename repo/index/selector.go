package index

import (
	"bytes"
	"math"

	enc "github.com/named-data/ndnrepo/std/encoding"
	"github.com/named-data/ndnrepo/std/ndn"
	"github.com/named-data/ndnrepo/std/types/optional"
)

type ChildSelector int

const (
	// Leftmost picks the smallest matching name.
	Leftmost ChildSelector = iota
	// Rightmost picks a match under the greatest child component.
	Rightmost
)

func (c ChildSelector) String() string {
	if c == Rightmost {
		return "rightmost"
	}
	return "leftmost"
}

// ExclusionFilter rejects child components.
type ExclusionFilter interface {
	IsExcluded(c enc.Component) bool
}

// Query is a name with selectors. Unset or negative suffix bounds are not
// checked; a nil Exclude or empty PublisherKeyHash disables that check.
type Query struct {
	Name                enc.Name
	MinSuffixComponents optional.Optional[int]
	MaxSuffixComponents optional.Optional[int]
	Exclude             ExclusionFilter
	PublisherKeyHash    []byte
	ChildSelector       ChildSelector
}

// suffixBound saturates a wire suffix count at math.MaxInt.
func suffixBound(v optional.Optional[uint64]) optional.Optional[int] {
	if n, ok := v.Get(); ok && n > math.MaxInt {
		return optional.Some(math.MaxInt)
	}
	return optional.CastInt[uint64, int](v)
}

// QueryFromInterest converts the selectors of an Interest.
// The publisher KeyLocator is hashed once here.
func QueryFromInterest(interest *ndn.Interest) *Query {
	q := &Query{
		Name:                interest.Name,
		MinSuffixComponents: suffixBound(interest.MinSuffixComponents),
		MaxSuffixComponents: suffixBound(interest.MaxSuffixComponents),
		PublisherKeyHash:    KeyLocatorHash(interest.PublisherPublicKeyLocator),
	}
	// a nil *Exclude must not become a non-nil interface
	if !interest.Exclude.Empty() {
		q.Exclude = interest.Exclude
	}
	if interest.ChildSelector > 0 {
		q.ChildSelector = Rightmost
	}
	return q
}

// matches checks a single entry against every selector except the child selector.
func (q *Query) matches(e *entry) bool {
	if !e.status.IsLive() || !q.Name.IsPrefix(e.name) {
		return false
	}

	suffix := len(e.name) - len(q.Name)
	if lo, ok := q.MinSuffixComponents.Get(); ok && lo >= 0 && suffix < lo {
		return false
	}
	if hi, ok := q.MaxSuffixComponents.Get(); ok && hi >= 0 && suffix > hi {
		return false
	}

	if q.Exclude != nil && suffix > 0 && q.Exclude.IsExcluded(e.name[len(q.Name)]) {
		return false
	}

	if len(q.PublisherKeyHash) > 0 && !bytes.Equal(q.PublisherKeyHash, e.keyLocatorHash) {
		return false
	}
	return true
}

// selectLeftmost scans the subtree of q.Name forward for the first match.
func selectLeftmost(v orderedView, q *Query) *entry {
	var ret *entry
	v.ascend(v.lowerBound(q.Name), func(e *entry) bool {
		if !q.Name.IsPrefix(e.name) {
			return false
		}
		if q.matches(e) {
			ret = e
			return false
		}
		return true
	})
	return ret
}

// selectRightmost walks the subtree of q.Name backwards one child-component
// bucket at a time, returning the first match of the highest bucket that
// has one.
func selectRightmost(v orderedView, q *Query) *entry {
	boundary := firstLive(v, v.lowerBound(q.Name))
	if boundary == nil || !q.Name.IsPrefix(boundary.name) {
		return nil
	}

	// end of the subtree; the empty name covers everything
	var last *entry
	if len(q.Name) > 0 {
		last = v.lowerBound(q.Name.Successor())
	}

	for {
		prev := v.prev(last)
		if prev == nil || !q.Name.IsPrefix(prev.name) {
			return nil
		}
		if prev == boundary {
			if q.matches(prev) {
				return prev
			}
			return nil
		}

		first := v.lowerBound(prev.name.Prefix(len(q.Name) + 1))
		if e := scanRange(v, q, first, last); e != nil {
			return e
		}
		last = first
	}
}

// scanRange returns the first match in [first, last).
func scanRange(v orderedView, q *Query, first, last *entry) *entry {
	var ret *entry
	v.ascend(first, func(e *entry) bool {
		if e == last {
			return false
		}
		if q.matches(e) {
			ret = e
			return false
		}
		return true
	})
	return ret
}
