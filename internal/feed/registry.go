package feed

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Registry selects a Fetcher by source type.
type Registry struct {
	mu       sync.RWMutex
	bySource map[string]Fetcher
}

func NewRegistry(fetchers ...Fetcher) *Registry {
	reg := &Registry{bySource: make(map[string]Fetcher)}
	for _, f := range fetchers {
		reg.Register(f)
	}
	return reg
}

// Register adds or replaces the fetcher for f.Source().
func (r *Registry) Register(f Fetcher) {
	if f == nil {
		return
	}
	key := strings.ToLower(strings.TrimSpace(f.Source()))
	if key == "" {
		return
	}

	r.mu.Lock()
	r.bySource[key] = f
	r.mu.Unlock()
}

// FetcherFor returns the fetcher registered for source.
func (r *Registry) FetcherFor(source string) (Fetcher, error) {
	if r == nil {
		return nil, fmt.Errorf("feed registry is nil")
	}
	key := strings.ToLower(strings.TrimSpace(source))

	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.bySource[key]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("no fetcher registered for feed source %q", source)
}

// Settings locate the feed and the proxy in front of it.
type Settings struct {
	FeedURL  string
	ProxyURL string
}

// DefaultRegistry wires both known sources against one HTTP client.
func DefaultRegistry(client HTTPClient, s Settings) *Registry {
	return NewRegistry(
		NewRSS2JSONFetcher(client, s.ProxyURL, s.FeedURL),
		NewRSSFetcher(client, s.FeedURL),
	)
}

func now() time.Time { return time.Now() }
