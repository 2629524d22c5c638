package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Each value is an 8-byte big-endian expiry followed by the content digest.
const (
	renderBucket = "renders"
	expiryBytes  = 8
)

type boltStore struct {
	db              *bolt.DB
	ttl             time.Duration
	cleanupInterval time.Duration
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	now             func() time.Time
}

func openBolt(path string, opts Options) (Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(renderBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		ttl:             opts.TTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Announced reports whether guid was marked with the same digest and has not expired.
func (b *boltStore) Announced(guid, digest string) (bool, error) {
	now := b.now()
	if err := b.maybeCleanup(now); err != nil {
		return false, err
	}

	var announced bool
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(renderBucket))
		if bucket == nil {
			return fmt.Errorf("render bucket missing")
		}
		expiry, stored, ok := decodeEntry(bucket.Get([]byte(guid)))
		announced = ok && expiry.After(now) && stored == digest
		return nil
	})
	return announced, err
}

func (b *boltStore) MarkAnnounced(guid, digest string) error {
	now := b.now()
	if err := b.maybeCleanup(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(renderBucket))
		if bucket == nil {
			return fmt.Errorf("render bucket missing")
		}
		return bucket.Put([]byte(guid), encodeEntry(now.Add(b.ttl), digest))
	})
}

// maybeCleanup drops expired entries at most once per cleanup interval.
func (b *boltStore) maybeCleanup(now time.Time) error {
	if now.Sub(time.Unix(b.lastCleanup.Load(), 0)) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()
	if now.Sub(time.Unix(b.lastCleanup.Load(), 0)) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(renderBucket))
		if bucket == nil {
			return fmt.Errorf("render bucket missing")
		}
		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if expiry, _, ok := decodeEntry(v); !ok || !expiry.After(now) {
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func encodeEntry(expiry time.Time, digest string) []byte {
	buf := make([]byte, expiryBytes+len(digest))
	binary.BigEndian.PutUint64(buf, uint64(expiry.Unix()))
	copy(buf[expiryBytes:], digest)
	return buf
}

func decodeEntry(value []byte) (time.Time, string, bool) {
	if len(value) < expiryBytes {
		return time.Time{}, "", false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryBytes]))
	if unix <= 0 {
		return time.Time{}, "", false
	}
	return time.Unix(unix, 0), string(value[expiryBytes:]), true
}
