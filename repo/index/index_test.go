package index_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/named-data/ndnrepo/repo/index"
	enc "github.com/named-data/ndnrepo/std/encoding"
	"github.com/named-data/ndnrepo/std/ndn"
	"github.com/named-data/ndnrepo/std/types/optional"
	tu "github.com/named-data/ndnrepo/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

func insertAll(t *testing.T, x *index.Index, names ...string) {
	for i, n := range names {
		ok, err := x.InsertName(tu.Name(n), uint64(i+1), nil)
		require.NoError(t, err)
		require.True(t, ok, n)
	}
}

func find(x *index.Index, q *index.Query) string {
	m, ok := x.FindQuery(q)
	if !ok {
		return ""
	}
	return m.Name.String()
}

func makeData(name string, signer ndn.Signer) *ndn.Data {
	d := &ndn.Data{Name: tu.Name(name), Content: []byte(name)}
	tu.NoErr(d.Encode(signer))
	return d
}

func TestOrdering(t *testing.T) {
	tu.SetT(t)

	sorted := []string{
		"/",
		"/a",
		"/a/b",
		"/a/b/c",
		"/a/c",
		"/a/aa",
		"/b",
		"/b/seg=1",
		"/b/seg=2",
		"/b/seg=256",
		"/aa",
	}
	shuffled := append([]string(nil), sorted...)
	rand.New(rand.NewPCG(1, 2)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	x := index.New(100)
	insertAll(t, x, shuffled...)
	require.Equal(t, len(sorted), x.Len())
	require.Equal(t, len(sorted), x.Size())

	got := []string{}
	for name, status := range x.Enumerate() {
		require.Equal(t, index.StatusExisting, status)
		got = append(got, name.String())
	}
	require.Equal(t, sorted, got)

	// enumeration can stop early and restart
	count := 0
	for range x.Enumerate() {
		if count++; count == 3 {
			break
		}
	}
	require.Equal(t, 3, count)
	count = 0
	for range x.Enumerate() {
		count++
	}
	require.Equal(t, len(sorted), count)
}

func TestInsertDuplicate(t *testing.T) {
	tu.SetT(t)

	x := index.New(10)
	require.True(t, tu.NoErr(x.InsertName(tu.Name("/a/1"), 1, nil)))
	require.False(t, tu.NoErr(x.InsertName(tu.Name("/a/1"), 2, nil)))
	require.Equal(t, 1, x.Len())

	m, ok := x.Find(tu.Name("/a/1"))
	require.True(t, ok)
	require.Equal(t, uint64(1), m.ID)
}

func TestTombstone(t *testing.T) {
	tu.SetT(t)

	x := index.New(10)
	insertAll(t, x, "/a/1", "/a/2")

	require.True(t, x.Erase(tu.Name("/a/1")))
	require.Equal(t, index.StatusTombstoned, x.Status(tu.Name("/a/1")))
	require.Equal(t, 1, x.Len())
	require.Equal(t, 2, x.Size())
	require.False(t, x.Has(tu.Name("/a/1")))

	// second erase is a no-op
	require.False(t, x.Erase(tu.Name("/a/1")))
	require.Equal(t, 1, x.Len())

	// absent
	require.False(t, x.Erase(tu.Name("/a/3")))
	require.False(t, x.Erase(tu.Name("/a")))

	// find skips the tombstone
	m, ok := x.Find(tu.Name("/a"))
	require.True(t, ok)
	require.Equal(t, "/a/2", m.Name.String())
	_, ok = x.Find(tu.Name("/a/1"))
	require.False(t, ok)

	// status does not skip it
	require.Equal(t, index.StatusTombstoned, x.Status(tu.Name("/a")))
	require.Equal(t, index.StatusExisting, x.Status(tu.Name("/a/2")))
	require.Equal(t, index.StatusAbsent, x.Status(tu.Name("/b")))

	statuses := map[string]index.Status{}
	for name, status := range x.Enumerate() {
		statuses[name.String()] = status
	}
	require.Equal(t, map[string]index.Status{
		"/a/1": index.StatusTombstoned,
		"/a/2": index.StatusExisting,
	}, statuses)
}

func TestRevival(t *testing.T) {
	tu.SetT(t)

	x := index.New(10)
	insertAll(t, x, "/a/1")
	require.True(t, x.Erase(tu.Name("/a/1")))
	require.Equal(t, 0, x.Len())

	require.True(t, tu.NoErr(x.InsertName(tu.Name("/a/1"), 7, nil)))
	require.Equal(t, 1, x.Len())
	require.Equal(t, 1, x.Size())
	require.Equal(t, index.StatusRecreated, x.Status(tu.Name("/a/1")))
	require.True(t, index.StatusRecreated.IsLive())

	m, ok := x.Find(tu.Name("/a/1"))
	require.True(t, ok)
	require.Equal(t, uint64(7), m.ID)

	// a recreated entry is live
	require.False(t, tu.NoErr(x.InsertName(tu.Name("/a/1"), 8, nil)))
	require.True(t, x.Erase(tu.Name("/a/1")))
}

func TestCapacity(t *testing.T) {
	tu.SetT(t)

	x := index.New(3)
	insertAll(t, x, "/a", "/b", "/c")
	require.True(t, x.Full())

	_, err := x.InsertName(tu.Name("/d"), 4, nil)
	require.ErrorIs(t, err, index.ErrCapacityExceeded)
	require.Equal(t, 3, x.Len())
	require.Equal(t, index.StatusAbsent, x.Status(tu.Name("/d")))

	// tombstones do not count
	require.True(t, x.Erase(tu.Name("/b")))
	require.True(t, tu.NoErr(x.InsertName(tu.Name("/d"), 4, nil)))
	require.Equal(t, 3, x.Len())
	require.Equal(t, 4, x.Size())

	_, err = x.InsertName(tu.Name("/b"), 5, nil)
	require.ErrorIs(t, err, index.ErrCapacityExceeded)
	require.Equal(t, index.StatusTombstoned, x.Status(tu.Name("/b")))

	zero := index.New(0)
	_, err = zero.InsertName(tu.Name("/a"), 1, nil)
	require.ErrorIs(t, err, index.ErrCapacityExceeded)
}

func TestCompact(t *testing.T) {
	tu.SetT(t)

	x := index.New(10)
	insertAll(t, x, "/a/1", "/a/2", "/a/3", "/b")
	require.True(t, x.Erase(tu.Name("/a/1")))
	require.True(t, x.Erase(tu.Name("/a/3")))

	before := x.Fingerprint()
	require.Equal(t, 2, x.Compact())
	require.NotEqual(t, before, x.Fingerprint())
	require.Equal(t, 2, x.Len())
	require.Equal(t, 2, x.Size())
	require.Equal(t, index.StatusAbsent, x.Status(tu.Name("/a/1")))
	require.Equal(t, index.StatusAbsent, x.Status(tu.Name("/a/3")))

	after := x.Fingerprint()
	require.Equal(t, 0, x.Compact())
	require.Equal(t, after, x.Fingerprint())

	// compacted names are inserted as new
	require.True(t, tu.NoErr(x.InsertName(tu.Name("/a/1"), 9, nil)))
	require.Equal(t, index.StatusExisting, x.Status(tu.Name("/a/1")))
}

func TestMatchIsCopy(t *testing.T) {
	tu.SetT(t)

	x := index.New(10)
	name := tu.Name("/a/b")
	require.True(t, tu.NoErr(x.InsertName(name, 1, nil)))
	name[1].Val[0] = 'z'

	m, ok := x.Find(tu.Name("/a"))
	require.True(t, ok)
	m.Name[1].Val[0] = 'q'

	m, ok = x.Find(tu.Name("/a"))
	require.True(t, ok)
	require.Equal(t, "/a/b", m.Name.String())
}

func TestInsertData(t *testing.T) {
	tu.SetT(t)

	x := index.New(10)
	d1 := makeData("/a/b", ndn.NewSha256Signer())
	d2 := makeData("/a/c", ndn.NewHmacSigner(tu.Name("/key/1"), []byte("k")))

	require.True(t, tu.NoErr(x.Insert(d1, 1)))
	require.True(t, tu.NoErr(x.Insert(d2, 2)))
	require.False(t, tu.NoErr(x.Insert(d1, 3)))
	require.True(t, x.Contains(d1))
	require.True(t, x.Contains(d2))

	// indexed under the full name
	require.False(t, x.Has(tu.Name("/a/b")))
	require.True(t, x.Has(d1.FullName()))
	require.Equal(t, index.StatusExisting, x.Status(tu.Name("/a/b")))

	m, ok := x.Find(tu.Name("/a/b"))
	require.True(t, ok)
	require.True(t, m.Name.Equal(d1.FullName()))
	require.Equal(t, uint64(1), m.ID)

	// publisher key filter
	q := &index.Query{
		Name:             tu.Name("/a"),
		PublisherKeyHash: index.KeyLocatorHash(&ndn.KeyLocator{Name: tu.Name("/key/1")}),
	}
	m, ok = x.FindQuery(q)
	require.True(t, ok)
	require.Equal(t, uint64(2), m.ID)

	q.PublisherKeyHash = index.KeyLocatorHash(&ndn.KeyLocator{Name: tu.Name("/key/2")})
	_, ok = x.FindQuery(q)
	require.False(t, ok)

	require.True(t, x.Erase(d1.FullName()))
	require.False(t, x.Contains(d1))
}

func TestInsertDataEndingInDigest(t *testing.T) {
	tu.SetT(t)

	name := "/a/sha256digest=0000000000000000000000000000000000000000000000000000000000000000"
	d1 := &ndn.Data{Name: tu.Name(name), Content: []byte("one")}
	d2 := &ndn.Data{Name: tu.Name(name), Content: []byte("two")}
	tu.NoErr(d1.Encode(ndn.NewSha256Signer()))
	tu.NoErr(d2.Encode(ndn.NewSha256Signer()))
	require.Equal(t, 3, len(d1.FullName()))
	require.False(t, d1.FullName().Equal(d2.FullName()))

	x := index.New(10)
	require.True(t, tu.NoErr(x.Insert(d1, 1)))
	require.False(t, x.Contains(d2))
	require.True(t, tu.NoErr(x.Insert(d2, 2)))
	require.True(t, x.Contains(d1))
	require.True(t, x.Contains(d2))
	require.Equal(t, 2, x.Len())

	m, ok := x.Find(d2.FullName())
	require.True(t, ok)
	require.Equal(t, uint64(2), m.ID)
}

func TestLeftmostRightmost(t *testing.T) {
	tu.SetT(t)

	x := index.New(10)
	insertAll(t, x, "/P/a", "/P/b", "/P/c")

	q := &index.Query{Name: tu.Name("/P")}
	require.Equal(t, "/P/a", find(x, q))
	q.ChildSelector = index.Rightmost
	require.Equal(t, "/P/c", find(x, q))
}

func TestPrefixBoundary(t *testing.T) {
	tu.SetT(t)

	x := index.New(10)
	insertAll(t, x, "/P/x/1", "/Q", "/P0")

	for _, cs := range []index.ChildSelector{index.Leftmost, index.Rightmost} {
		q := &index.Query{Name: tu.Name("/P"), ChildSelector: cs}
		require.Equal(t, "/P/x/1", find(x, q), cs)

		// the only candidate is rejected; siblings are never returned
		q.MaxSuffixComponents = optional.Some(1)
		require.Equal(t, "", find(x, q), cs)

		q = &index.Query{Name: tu.Name("/P/y"), ChildSelector: cs}
		require.Equal(t, "", find(x, q), cs)
		q = &index.Query{Name: tu.Name("/R"), ChildSelector: cs}
		require.Equal(t, "", find(x, q), cs)
	}
}

func TestRightmostBuckets(t *testing.T) {
	tu.SetT(t)

	x := index.New(20)
	insertAll(t, x,
		"/P/a/1",
		"/P/b/1",
		"/P/b/2",
		"/P/b/2/x",
		"/P/c/1/deep",
		"/Q/a",
	)

	q := &index.Query{Name: tu.Name("/P"), ChildSelector: index.Rightmost}
	require.Equal(t, "/P/c/1/deep", find(x, q))

	// bucket c fails the suffix bound, b is the next bucket; ties go forward
	q.MaxSuffixComponents = optional.Some(2)
	require.Equal(t, "/P/b/1", find(x, q))

	q.MinSuffixComponents = optional.Some(2)
	q.MaxSuffixComponents = optional.Some(3)
	require.Equal(t, "/P/c/1/deep", find(x, q))

	q.MinSuffixComponents = optional.Some(3)
	q.Exclude = (&ndn.Exclude{}).AppendComponent(enc.NewGenericComponent("c"))
	require.Equal(t, "/P/b/2/x", find(x, q))

	// negative bounds are ignored
	q = &index.Query{
		Name:                tu.Name("/P"),
		ChildSelector:       index.Rightmost,
		MinSuffixComponents: optional.Some(-1),
		MaxSuffixComponents: optional.Some(-1),
	}
	require.Equal(t, "/P/c/1/deep", find(x, q))

	// leftmost counterpart
	q = &index.Query{Name: tu.Name("/P"), MinSuffixComponents: optional.Some(3)}
	require.Equal(t, "/P/b/2/x", find(x, q))
}

func TestRightmostTombstones(t *testing.T) {
	tu.SetT(t)

	x := index.New(20)
	insertAll(t, x, "/P/a", "/P/b/1", "/P/b/2", "/P/c", "/Q")
	require.True(t, x.Erase(tu.Name("/P/c")))
	require.True(t, x.Erase(tu.Name("/Q")))

	q := &index.Query{Name: tu.Name("/P"), ChildSelector: index.Rightmost}
	require.Equal(t, "/P/b/1", find(x, q))

	require.True(t, x.Erase(tu.Name("/P/b/1")))
	require.Equal(t, "/P/b/2", find(x, q))

	require.True(t, x.Erase(tu.Name("/P/b/2")))
	require.Equal(t, "/P/a", find(x, q))

	// only tombstones left under /P
	require.True(t, x.Erase(tu.Name("/P/a")))
	require.Equal(t, "", find(x, q))
	q.ChildSelector = index.Leftmost
	require.Equal(t, "", find(x, q))

	// tombstones before the first live entry of the subtree
	insertAll(t, x, "/P/d")
	q.ChildSelector = index.Rightmost
	require.Equal(t, "/P/d", find(x, q))
	q.Exclude = (&ndn.Exclude{}).AppendComponent(enc.NewGenericComponent("d"))
	require.Equal(t, "", find(x, q))
}

func TestEmptyQueryName(t *testing.T) {
	tu.SetT(t)

	x := index.New(10)
	insertAll(t, x, "/a/1", "/b", "/c/1")

	q := &index.Query{Name: enc.Name{}}
	require.Equal(t, "/a/1", find(x, q))
	q.ChildSelector = index.Rightmost
	require.Equal(t, "/c/1", find(x, q))

	q.Exclude = (&ndn.Exclude{}).AppendComponent(enc.NewGenericComponent("c"))
	require.Equal(t, "/b", find(x, q))

	empty := index.New(10)
	require.Equal(t, "", find(empty, q))
	_, ok := empty.Find(enc.Name{})
	require.False(t, ok)
}

func TestQueryFromInterest(t *testing.T) {
	tu.SetT(t)

	kl := &ndn.KeyLocator{Name: tu.Name("/key")}
	i := &ndn.Interest{
		Name:                      tu.Name("/a"),
		MinSuffixComponents:       optional.Some(uint64(1)),
		PublisherPublicKeyLocator: kl,
		ChildSelector:             1,
	}
	q := index.QueryFromInterest(i)
	require.True(t, q.Name.Equal(i.Name))
	require.Equal(t, 1, q.MinSuffixComponents.Unwrap())
	require.False(t, q.MaxSuffixComponents.IsSet())
	require.Equal(t, index.KeyLocatorHash(kl), q.PublisherKeyHash)
	require.Equal(t, 32, len(q.PublisherKeyHash))
	require.Equal(t, index.Rightmost, q.ChildSelector)
	require.Nil(t, q.Exclude)

	i = &ndn.Interest{Name: tu.Name("/a"), Exclude: &ndn.Exclude{}}
	q = index.QueryFromInterest(i)
	require.Nil(t, q.Exclude)
	require.Nil(t, q.PublisherKeyHash)
	require.Equal(t, index.Leftmost, q.ChildSelector)

	i.Exclude.AppendAny()
	q = index.QueryFromInterest(i)
	require.NotNil(t, q.Exclude)
}

func TestQueryHugeSuffixBounds(t *testing.T) {
	tu.SetT(t)

	x := index.New(10)
	insertAll(t, x, "/a/b")

	i := &ndn.Interest{Name: tu.Name("/a"), MinSuffixComponents: optional.Some(uint64(1) << 63)}
	q := index.QueryFromInterest(i)
	require.Equal(t, math.MaxInt, q.MinSuffixComponents.Unwrap())
	require.Equal(t, "", find(x, q))

	i = &ndn.Interest{Name: tu.Name("/a"), MaxSuffixComponents: optional.Some(uint64(math.MaxUint64))}
	q = index.QueryFromInterest(i)
	require.Equal(t, math.MaxInt, q.MaxSuffixComponents.Unwrap())
	require.Equal(t, "/a/b", find(x, q))
}

func TestWalk(t *testing.T) {
	tu.SetT(t)

	x := index.New(10)
	insertAll(t, x, "/a", "/a/1", "/a/2", "/ab", "/b")
	require.True(t, x.Erase(tu.Name("/a/2")))

	got := map[string]index.Status{}
	x.Walk(tu.Name("/a"), func(m index.Match, s index.Status) bool {
		got[m.Name.String()] = s
		return true
	})
	require.Equal(t, map[string]index.Status{
		"/a":   index.StatusExisting,
		"/a/1": index.StatusExisting,
		"/a/2": index.StatusTombstoned,
	}, got)

	n := 0
	x.Walk(enc.Name{}, func(index.Match, index.Status) bool {
		n++
		return n < 2
	})
	require.Equal(t, 2, n)
}

func TestEraseReinsertScenario(t *testing.T) {
	tu.SetT(t)

	x := index.New(10)
	insertAll(t, x, "/x/1", "/x/2", "/x/3")
	require.True(t, x.Erase(tu.Name("/x/2")))
	require.Equal(t, index.StatusTombstoned, x.Status(tu.Name("/x/2")))

	excl3 := (&ndn.Exclude{}).AppendComponent(enc.NewGenericComponent("3"))
	steps := []struct {
		reinsert bool
		query    *index.Query
		id       uint64
		name     string
	}{
		{false, &index.Query{Name: tu.Name("/x")}, 1, "/x/1"},
		{false, &index.Query{Name: tu.Name("/x"), ChildSelector: index.Rightmost}, 3, "/x/3"},
		{false, &index.Query{Name: tu.Name("/x"), ChildSelector: index.Rightmost, Exclude: excl3}, 1, "/x/1"},
		{true, &index.Query{Name: tu.Name("/x"), ChildSelector: index.Rightmost, Exclude: excl3}, 4, "/x/2"},
		{false, &index.Query{Name: tu.Name("/x")}, 1, "/x/1"},
		{false, &index.Query{Name: tu.Name("/x"), ChildSelector: index.Rightmost}, 3, "/x/3"},
	}
	for i, s := range steps {
		if s.reinsert {
			require.True(t, tu.NoErr(x.InsertName(tu.Name("/x/2"), 4, nil)))
			require.Equal(t, index.StatusRecreated, x.Status(tu.Name("/x/2")))
		}
		m, ok := x.FindQuery(s.query)
		require.True(t, ok, i)
		require.Equal(t, s.id, m.ID, i)
		require.Equal(t, s.name, m.Name.String(), i)
	}
	require.Equal(t, 3, x.Len())
	require.Equal(t, 3, x.Size())
}
