// Package storage remembers which article renderings the warmer already announced.
package storage

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Store tracks announced renderings by article guid and content digest. A new
// digest for a known guid counts as unannounced.
type Store interface {
	Close() error
	Announced(guid, digest string) (bool, error)
	MarkAnnounced(guid, digest string) error
}

// Options controls how long an announcement is remembered.
type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// Backend names accepted by NewStore.
const (
	TypeNone   = "none"
	TypeMemory = "memory"
	TypeBBolt  = "bbolt"
)

var openers = map[string]func(path string, opts Options) (Store, error){
	TypeNone:   func(string, Options) (Store, error) { return noopStore{}, nil },
	TypeMemory: func(_ string, opts Options) (Store, error) { return newMemoryStore(opts), nil },
	TypeBBolt:  openBoltPath,
}

func openBoltPath(path string, opts Options) (Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("bbolt storage requires a path")
	}
	return openBolt(path, opts)
}

// NewStore opens the named backend. An empty name selects none.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.ToLower(strings.TrimSpace(typ))
	if typ == "" || typ == "disabled" {
		typ = TypeNone
	}
	open, ok := openers[typ]
	if !ok {
		return nil, fmt.Errorf("unsupported storage type %q (want one of %s)", typ, strings.Join(backendNames(), ", "))
	}

	if opts.TTL <= 0 {
		opts.TTL = 30 * 24 * time.Hour
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = 12 * time.Hour
	}
	return open(path, opts)
}

func backendNames() []string {
	names := make([]string, 0, len(openers))
	for name := range openers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// noopStore never remembers anything, so every pass re-announces every article.
type noopStore struct{}

func (noopStore) Close() error                           { return nil }
func (noopStore) Announced(string, string) (bool, error) { return false, nil }
func (noopStore) MarkAnnounced(string, string) error     { return nil }
