package storage

import (
	"sync"
	"time"
)

type memoryEntry struct {
	digest string
	expiry time.Time
}

// memoryStore keeps announcements for the life of the process.
type memoryStore struct {
	mu          sync.Mutex
	entries     map[string]memoryEntry
	ttl         time.Duration
	cleanup     time.Duration
	lastCleanup time.Time
	now         func() time.Time
}

func newMemoryStore(opts Options) *memoryStore {
	return &memoryStore{
		entries:     make(map[string]memoryEntry),
		ttl:         opts.TTL,
		cleanup:     opts.CleanupInterval,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) Announced(guid, digest string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)
	e, ok := m.entries[guid]
	return ok && e.digest == digest && now.Before(e.expiry), nil
}

func (m *memoryStore) MarkAnnounced(guid, digest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.entries[guid] = memoryEntry{digest: digest, expiry: now.Add(m.ttl)}
	m.sweep(now)
	return nil
}

func (m *memoryStore) sweep(now time.Time) {
	if now.Sub(m.lastCleanup) < m.cleanup {
		return
	}
	for guid, e := range m.entries {
		if !now.Before(e.expiry) {
			delete(m.entries, guid)
		}
	}
	m.lastCleanup = now
}
