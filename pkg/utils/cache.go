package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Cache is a badger-backed key/value store for downloaded resources.
type Cache struct {
	db *badger.DB
}

func OpenCache(path string) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	// Decrease logging verbosity
	opts.Logger = nil
	return openCache(opts)
}

// OpenMemoryCache returns a cache that lives only as long as the process.
func OpenMemoryCache() (*Cache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return openCache(opts)
}

func openCache(opts badger.Options) (*Cache, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Put stores value under key. A positive ttl expires the entry.
func (c *Cache) Put(key string, value []byte, ttl time.Duration) error {
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// PutBatch stores several downloads in one write batch, all with the same ttl.
func (c *Cache) PutBatch(entries map[string][]byte, ttl time.Duration) error {
	wb := c.db.NewWriteBatch()
	defer wb.Cancel()

	for k, v := range entries {
		e := badger.NewEntry([]byte(k), v)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		if err := wb.SetEntry(e); err != nil {
			return fmt.Errorf("caching %s: %w", k, err)
		}
	}
	return wb.Flush()
}

// Get returns nil without an error when the key is absent or expired.
func (c *Cache) Get(key string) ([]byte, error) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	return val, err
}

func (c *Cache) Delete(key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Entry describes one cached download without loading its contents.
type Entry struct {
	Key  string
	Size int64
	// Expires is zero for entries without a ttl.
	Expires time.Time
}

// Entries calls fn for every live entry in key order.
func (c *Cache) Entries(fn func(Entry) error) error {
	return c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			e := Entry{Key: string(item.KeyCopy(nil)), Size: item.ValueSize()}
			if at := item.ExpiresAt(); at > 0 {
				e.Expires = time.Unix(int64(at), 0)
			}
			if err := fn(e); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear drops every cached download.
func (c *Cache) Clear() error {
	return c.db.DropAll()
}
