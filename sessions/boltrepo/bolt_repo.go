// Package boltrepo persists session slots in a BBolt database.
package boltrepo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jrsteele09/go-bank-session/sessions"
	"go.etcd.io/bbolt"
)

// DefaultBucket holds the slots of the default profile.
const DefaultBucket = "session"

var _ sessions.Repo = (*BoltRepo)(nil)

// BoltRepo stores one profile's slots in a single bucket.
type BoltRepo struct {
	db     *bbolt.DB
	bucket []byte
}

// NewRepository returns a BoltRepo using the given database and bucket.
func NewRepository(db *bbolt.DB, bucket string) *BoltRepo {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &BoltRepo{db: db, bucket: []byte(bucket)}
}

// NewRepositoryFromFile opens (or creates) a BBolt database at path.
func NewRepositoryFromFile(path, bucket string) (*BoltRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return NewRepository(db, bucket), nil
}

// Close closes the underlying BBolt database.
func (r *BoltRepo) Close() error {
	return r.db.Close()
}

func (r *BoltRepo) Get(key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(r.bucket)
		if b == nil {
			return nil
		}
		if data := b.Get([]byte(key)); data != nil {
			value, found = string(data), true
		}
		return nil
	})
	return value, found, err
}

func (r *BoltRepo) Put(values map[string]string) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(r.bucket)
		if err != nil {
			return err
		}
		for k, v := range values {
			if err := b.Put([]byte(k), []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *BoltRepo) Delete(keys ...string) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(r.bucket)
		if b == nil {
			return nil
		}
		for _, k := range keys {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}
