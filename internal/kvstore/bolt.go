package kvstore

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// BoltStore is a durable, single-file KV backend for running EdgeSearch
// outside of the edge platform it targets — a bbolt database plays the
// role the platform's KV namespace plays in production.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
}

var bucketName = []byte("edgesearch")

// OpenBoltStore opens (creating if necessary) a bbolt database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("kvstore: failed to open bolt db %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kvstore: failed to create bucket in %s: %w", path, err)
	}
	return &BoltStore{db: db, bucket: bucketName}, nil
}

// Close releases the underlying file handle.
func (b *BoltStore) Close() error {
	return b.db.Close()
}

func (b *BoltStore) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(b.bucket).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		out = make([]byte, len(v))
		copy(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *BoltStore) Put(_ context.Context, key string, value []byte) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("kvstore: put %s: %w", key, err)
	}
	return nil
}

func (b *BoltStore) Delete(_ context.Context, key string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("kvstore: delete %s: %w", key, err)
	}
	return nil
}

func (b *BoltStore) List(_ context.Context, prefix, cursor string, limit int) (ListPage, error) {
	var page ListPage
	err := b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(b.bucket).Cursor()
		prefixBytes := []byte(prefix)

		var k, v []byte
		if cursor != "" {
			k, v = c.Seek([]byte(cursor))
			if k != nil && string(k) == cursor {
				k, v = c.Next()
			}
		} else {
			k, v = c.Seek(prefixBytes)
		}

		for ; k != nil; k, v = c.Next() {
			_ = v
			if !hasPrefix(k, prefixBytes) {
				break
			}
			if limit > 0 && len(page.Keys) >= limit {
				page.Cursor = page.Keys[len(page.Keys)-1]
				page.ListComplete = false
				return nil
			}
			page.Keys = append(page.Keys, string(k))
		}
		page.ListComplete = true
		return nil
	})
	if err != nil {
		return ListPage{}, fmt.Errorf("kvstore: list prefix %s: %w", prefix, err)
	}
	return page, nil
}

func hasPrefix(key, prefix []byte) bool {
	if len(key) < len(prefix) {
		return false
	}
	for i := range prefix {
		if key[i] != prefix[i] {
			return false
		}
	}
	return true
}
