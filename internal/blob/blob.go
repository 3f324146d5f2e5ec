// Package blob stores raw image bytes keyed by reference. Memories persist
// only the reference; the bytes live here so the SQLite rows stay small.
package blob

import (
	"errors"
	"time"

	"go.etcd.io/bbolt"
)

var bucketImages = []byte("images")

// ErrNotFound is returned when no blob exists for a reference.
var ErrNotFound = errors.New("blob not found")

// Store is a bbolt-backed blob store.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the blob store at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketImages)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Put stores data under ref, overwriting any previous blob.
func (s *Store) Put(ref string, data []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketImages).Put([]byte(ref), data)
	})
}

// Get returns the blob stored under ref.
func (s *Store) Get(ref string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketImages).Get([]byte(ref))
		if data == nil {
			return ErrNotFound
		}
		out = make([]byte, len(data))
		copy(out, data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the blob stored under ref. Deleting a missing ref is a
// no-op.
func (s *Store) Delete(ref string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketImages).Delete([]byte(ref))
	})
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
