package storage_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/named-data/ndnrepo/repo/storage"
	enc "github.com/named-data/ndnrepo/std/encoding"
	"github.com/named-data/ndnrepo/std/ndn"
	tu "github.com/named-data/ndnrepo/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

func makeRecord(id uint64, name string, hash []byte, content ...byte) storage.Record {
	return storage.Record{
		ID:             id,
		Name:           tu.Name(name),
		KeyLocatorHash: hash,
		Wire:           enc.AppendTLV(nil, ndn.TypeData, content),
	}
}

func scanAll(t *testing.T, store storage.Store) []storage.Record {
	var recs []storage.Record
	require.NoError(t, store.Scan(func(rec storage.Record) error {
		recs = append(recs, rec)
		return nil
	}))
	return recs
}

func testStoreBasic(t *testing.T, store storage.Store) {
	rec1 := makeRecord(1, "/ndn/edu/ucla/test/packet/v1", nil, 0x01, 0x02, 0x03)
	rec2 := makeRecord(2, "/ndn/edu/ucla/test/packet/v5", []byte{0xaa, 0xbb}, 0x04, 0x05, 0x06)
	rec3 := makeRecord(300, "/ndn/edu/arizona/test/packet/v11", nil)

	// test get when empty
	data, err := store.Get(1)
	require.NoError(t, err)
	require.Equal(t, []byte(nil), data)
	require.Empty(t, scanAll(t, store))

	// put data
	require.NoError(t, store.Put(rec1))
	require.NoError(t, store.Put(rec2))
	require.NoError(t, store.Put(rec3))

	data, err = store.Get(1)
	require.NoError(t, err)
	require.Equal(t, rec1.Wire, data)
	data, err = store.Get(2)
	require.NoError(t, err)
	require.Equal(t, rec2.Wire, data)
	data, err = store.Get(300)
	require.NoError(t, err)
	require.Equal(t, rec3.Wire, data)

	data, err = store.Get(3)
	require.NoError(t, err)
	require.Equal(t, []byte(nil), data)

	// scan returns records in id order without wire
	recs := scanAll(t, store)
	require.Equal(t, 3, len(recs))
	require.Equal(t, uint64(1), recs[0].ID)
	require.True(t, recs[0].Name.Equal(rec1.Name))
	require.Nil(t, recs[0].KeyLocatorHash)
	require.Nil(t, recs[0].Wire)
	require.Equal(t, uint64(2), recs[1].ID)
	require.True(t, recs[1].Name.Equal(rec2.Name))
	require.Equal(t, []byte{0xaa, 0xbb}, recs[1].KeyLocatorHash)
	require.Equal(t, uint64(300), recs[2].ID)

	// overwrite
	rec1b := makeRecord(1, "/ndn/edu/ucla/test/packet/v1", nil, 0x09)
	require.NoError(t, store.Put(rec1b))
	data, err = store.Get(1)
	require.NoError(t, err)
	require.Equal(t, rec1b.Wire, data)

	// remove
	require.NoError(t, store.Remove(2))
	data, err = store.Get(2)
	require.NoError(t, err)
	require.Equal(t, []byte(nil), data)
	require.Equal(t, 2, len(scanAll(t, store)))

	// remove absent
	require.NoError(t, store.Remove(2))

	// scan stops on error
	stop := errors.New("stop")
	n := 0
	err = store.Scan(func(storage.Record) error {
		n++
		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, n)

	require.NoError(t, store.Remove(1))
	require.NoError(t, store.Remove(300))
}

func testStoreTxn(t *testing.T, store storage.Store) {
	rec1 := makeRecord(11, "/ndn/edu/memphis/test/packet/v1", nil, 0x01, 0x02, 0x03)
	rec2 := makeRecord(12, "/ndn/edu/memphis/test/packet/v5", nil, 0x04, 0x05, 0x06)
	rec3 := makeRecord(13, "/ndn/edu/memphis/test/packet/v9", nil, 0x07, 0x08, 0x09)

	// put data1 and data2 under transaction
	// verify that neither can be seen
	tx, err := store.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Put(rec1))
	data, err := store.Get(11)
	require.NoError(t, err)
	require.Equal(t, []byte(nil), data)

	require.NoError(t, tx.Put(rec2))
	data, err = store.Get(12)
	require.NoError(t, err)
	require.Equal(t, []byte(nil), data)

	// commit transaction
	require.NoError(t, tx.Commit())

	// verify that both data can be seen
	data, err = store.Get(11)
	require.NoError(t, err)
	require.Equal(t, rec1.Wire, data)
	data, err = store.Get(12)
	require.NoError(t, err)
	require.Equal(t, rec2.Wire, data)

	// add data3 and remove data1 under transaction and rollback
	tx, err = store.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Put(rec3))
	require.NoError(t, tx.Remove(11))
	require.NoError(t, tx.Rollback())
	data, err = store.Get(13)
	require.NoError(t, err)
	require.Equal(t, []byte(nil), data)
	data, err = store.Get(11)
	require.NoError(t, err)
	require.Equal(t, rec1.Wire, data)

	// removal under transaction
	tx, err = store.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Remove(11))
	require.NoError(t, tx.Commit())
	data, err = store.Get(11)
	require.NoError(t, err)
	require.Equal(t, []byte(nil), data)

	// insert data3 now without transaction
	require.NoError(t, store.Put(rec3))
	data, err = store.Get(13)
	require.NoError(t, err)
	require.Equal(t, rec3.Wire, data)
}

func testStoreMisuse(t *testing.T, store storage.Store) {
	require.Panics(t, func() { store.Commit() })
	require.Panics(t, func() { store.Rollback() })

	tx, err := store.Begin()
	require.NoError(t, err)
	require.Panics(t, func() { tx.Get(1) })
	require.Panics(t, func() { tx.Begin() })
	require.NoError(t, tx.Rollback())
}

func testStore(t *testing.T, store storage.Store) {
	tu.SetT(t)
	testStoreBasic(t, store)
	testStoreTxn(t, store)
	testStoreMisuse(t, store)
	require.NoError(t, store.Close())
}

func TestMemoryStore(t *testing.T) {
	testStore(t, storage.NewMemoryStore())
}

func TestBadgerStore(t *testing.T) {
	store, err := storage.NewBadgerStore(filepath.Join(t.TempDir(), "badger"))
	require.NoError(t, err)
	testStore(t, store)
}

func TestBoltStore(t *testing.T) {
	store, err := storage.NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	testStore(t, store)
}

func TestSqliteStore(t *testing.T) {
	store, err := storage.NewSqliteStore(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	testStore(t, store)
}

func TestOpen(t *testing.T) {
	tu.SetT(t)

	for _, backend := range storage.Backends {
		dir := t.TempDir()
		store, err := storage.Open(backend, dir)
		require.NoError(t, err, backend)
		require.NoError(t, store.Put(makeRecord(1, "/a", nil, 0x01)))
		require.NoError(t, store.Close())

		if backend == "memory" {
			continue
		}

		// persisted across reopen
		store = tu.NoErr(storage.Open(backend, dir))
		recs := scanAll(t, store)
		require.Equal(t, 1, len(recs), backend)
		require.Equal(t, "/a", recs[0].Name.String())
		require.NoError(t, store.Close())
	}

	_, err := storage.Open("leveldb", t.TempDir())
	require.Error(t, err)
}
