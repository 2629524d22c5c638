package rewriter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/samvad-hq/horizonti-reader/internal/domain"
)

type cacheEntry struct {
	digest  string
	article domain.Article
}

// Cache memoizes rewritten articles per guid. Concurrent requests for the same
// article share one rewrite; an edited body is rewritten again.
type Cache struct {
	rw      *Rewriter
	timeout time.Duration
	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// defaultRewriteTimeout bounds one shared rewrite, which runs detached from
// the caller that started it.
const defaultRewriteTimeout = 30 * time.Second

func NewCache(rw *Rewriter) *Cache {
	return &Cache{rw: rw, timeout: defaultRewriteTimeout, entries: make(map[string]cacheEntry)}
}

// Get returns the rewritten article, rewriting it on a miss.
func (c *Cache) Get(ctx context.Context, article domain.Article) (domain.Article, error) {
	key := article.GUID
	if key == "" {
		key = article.Link
	}
	digest := article.ContentDigest()

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && entry.digest == digest {
		return entry.article, nil
	}

	ch := c.group.DoChan(key+"@"+digest, func() (interface{}, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		out, err := c.rw.Rewrite(flightCtx, article)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = cacheEntry{digest: digest, article: out}
		c.mu.Unlock()
		return out, nil
	})

	select {
	case <-ctx.Done():
		return article, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return article, res.Err
		}
		return res.Val.(domain.Article), nil
	}
}

// Invalidate drops one article so the next Get rewrites it.
func (c *Cache) Invalidate(guid string) {
	c.mu.Lock()
	delete(c.entries, guid)
	c.mu.Unlock()
}

// Reset drops everything.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Len reports the number of cached articles.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
