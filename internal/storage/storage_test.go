package storage

import (
	"strings"
	"testing"
	"time"
)

func TestNewStoreSelectsBackend(t *testing.T) {
	for _, typ := range []string{"", "none", "DISABLED", "memory"} {
		s, err := NewStore(typ, "", Options{})
		if err != nil {
			t.Fatalf("NewStore(%q): %v", typ, err)
		}
		s.Close()
	}

	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("bbolt without path should fail")
	}
	_, err := NewStore("redis", "", Options{})
	if err == nil || !strings.Contains(err.Error(), "bbolt, memory, none") {
		t.Fatalf("unexpected error for unknown backend: %v", err)
	}
}

func TestNoopStoreNeverRemembers(t *testing.T) {
	s, _ := NewStore("none", "", Options{})
	if err := s.MarkAnnounced("g", "d"); err != nil {
		t.Fatalf("MarkAnnounced: %v", err)
	}
	if ok, _ := s.Announced("g", "d"); ok {
		t.Fatalf("noop store must not remember")
	}
}

func TestMemoryStoreDigestAndExpiry(t *testing.T) {
	m := newMemoryStore(Options{TTL: time.Hour, CleanupInterval: time.Minute})
	clock := time.Now()
	m.now = func() time.Time { return clock }

	if err := m.MarkAnnounced("g1", "d1"); err != nil {
		t.Fatalf("MarkAnnounced: %v", err)
	}
	if ok, _ := m.Announced("g1", "d1"); !ok {
		t.Fatalf("expected announced")
	}
	if ok, _ := m.Announced("g1", "d2"); ok {
		t.Fatalf("edited body must count as unannounced")
	}

	clock = clock.Add(2 * time.Hour)
	if ok, _ := m.Announced("g1", "d1"); ok {
		t.Fatalf("expired entry reported as announced")
	}
	if len(m.entries) != 0 {
		t.Fatalf("sweep should drop expired entries, have %d", len(m.entries))
	}
}
