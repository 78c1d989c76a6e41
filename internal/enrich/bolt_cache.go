package enrich

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var lookupBucket = []byte("isbn_lookups")

type cacheEntry struct {
	Result   Result    `json:"result"`
	StoredAt time.Time `json:"stored_at"`
}

// BoltCache keeps lookup results on disk, keyed by ISBN. Entries older
// than ttl are treated as missing; a zero ttl keeps them forever.
type BoltCache struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

func OpenBoltCache(path string, ttl time.Duration) (*BoltCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open lookup cache: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(lookupBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &BoltCache{db: db, ttl: ttl, now: time.Now}, nil
}

func (c *BoltCache) Get(isbn string) (Result, bool, error) {
	var entry cacheEntry
	var hit bool
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(lookupBucket).Get([]byte(isbn))
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &entry); err != nil {
			return fmt.Errorf("decode cache entry %s: %w", isbn, err)
		}
		hit = true
		return nil
	})
	if err != nil || !hit {
		return Result{}, false, err
	}
	if c.ttl > 0 && c.now().Sub(entry.StoredAt) > c.ttl {
		return Result{}, false, nil
	}
	return entry.Result, true, nil
}

func (c *BoltCache) Put(isbn string, r Result) error {
	data, err := json.Marshal(cacheEntry{Result: r, StoredAt: c.now()})
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(lookupBucket).Put([]byte(isbn), data)
	})
}

func (c *BoltCache) Close() error {
	return c.db.Close()
}
