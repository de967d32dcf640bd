package storage

import (
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"
	enc "github.com/named-data/ndnrepo/std/encoding"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS records (
	id INTEGER PRIMARY KEY,
	name BLOB NOT NULL,
	key_locator_hash BLOB,
	wire BLOB NOT NULL
)`

// Store implementation using sqlite.
// Records are rows of a single table; the name is stored as a Name TLV.
type SqliteStore struct {
	db *sql.DB
	tx *sql.Tx
}

func NewSqliteStore(path string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) String() string {
	return "sqlite-store"
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) Put(rec Record) error {
	_, err := s.exec(
		"INSERT OR REPLACE INTO records (id, name, key_locator_hash, wire) VALUES (?, ?, ?, ?)",
		int64(rec.ID), rec.Name.Bytes(), rec.KeyLocatorHash, rec.Wire,
	)
	return err
}

func (s *SqliteStore) Get(id uint64) ([]byte, error) {
	if s.tx != nil {
		panic("Get() called within a write transaction")
	}

	var wire []byte
	err := s.db.QueryRow("SELECT wire FROM records WHERE id=?", int64(id)).Scan(&wire)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return wire, err
}

func (s *SqliteStore) Remove(id uint64) error {
	_, err := s.exec("DELETE FROM records WHERE id=?", int64(id))
	return err
}

func (s *SqliteStore) Scan(fn func(rec Record) error) error {
	if s.tx != nil {
		panic("Scan() called within a write transaction")
	}

	rows, err := s.db.Query("SELECT id, name, key_locator_hash FROM records ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var nameWire, hash []byte
		if err := rows.Scan(&id, &nameWire, &hash); err != nil {
			return err
		}
		name, err := enc.NameFromBytes(nameWire)
		if err != nil {
			return err
		}
		rec := Record{ID: uint64(id), Name: name}
		if len(hash) > 0 {
			rec.KeyLocatorHash = hash
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *SqliteStore) Begin() (Store, error) {
	if s.tx != nil {
		panic("Begin() called within a write transaction")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	return &SqliteStore{db: s.db, tx: tx}, nil
}

func (s *SqliteStore) Commit() error {
	if s.tx == nil {
		panic("Commit() called without a write transaction")
	}
	return s.tx.Commit()
}

func (s *SqliteStore) Rollback() error {
	if s.tx == nil {
		panic("Rollback() called without a write transaction")
	}
	return s.tx.Rollback()
}

func (s *SqliteStore) exec(query string, args ...any) (sql.Result, error) {
	if s.tx != nil {
		return s.tx.Exec(query, args...)
	}
	return s.db.Exec(query, args...)
}
