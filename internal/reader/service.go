// Package reader serves the feed and individual articles with rewritten bodies.
package reader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/samvad-hq/horizonti-reader/internal/domain"
	"github.com/samvad-hq/horizonti-reader/internal/logger"
)

// ErrArticleNotFound is returned when no feed item carries the requested guid.
var ErrArticleNotFound = errors.New("article not found")

const eagerConcurrency = 4

// FeedFetcher retrieves one snapshot of the feed.
type FeedFetcher interface {
	Fetch(ctx context.Context) (*domain.Snapshot, error)
}

// ArticleCache rewrites articles, memoizing the result.
type ArticleCache interface {
	Get(ctx context.Context, article domain.Article) (domain.Article, error)
	Reset()
}

// Service is the read side used by the HTTP layer.
type Service struct {
	feed  FeedFetcher
	cache ArticleCache
	eager bool
	log   logger.Logger

	mu   sync.RWMutex
	last *domain.Snapshot
}

// New builds a Service. With eager set, Feed returns fully rewritten bodies.
func New(feed FeedFetcher, cache ArticleCache, eager bool, log logger.Logger) *Service {
	return &Service{feed: feed, cache: cache, eager: eager, log: logger.Ensure(log)}
}

// Feed fetches the feed and keeps only items tagged with category, when given.
func (s *Service) Feed(ctx context.Context, category string) (*domain.Snapshot, error) {
	snap, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	out := &domain.Snapshot{Feed: snap.Feed, FetchedAt: snap.FetchedAt}
	out.Items = filterCategory(snap.Items, category)

	if s.eager {
		if err := s.rewriteAll(ctx, out.Items); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Service) rewriteAll(ctx context.Context, items []domain.Article) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(eagerConcurrency)
	for i := range items {
		g.Go(func() error {
			rewritten, err := s.cache.Get(gctx, items[i])
			if err != nil {
				return err
			}
			items[i] = rewritten
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("rewrite feed: %w", err)
	}
	return nil
}

// Article returns one article with its body rewritten. The last snapshot is
// consulted first; a miss triggers a fresh fetch.
func (s *Service) Article(ctx context.Context, guid string) (domain.Article, error) {
	guid = strings.TrimSpace(guid)
	if guid == "" {
		return domain.Article{}, ErrArticleNotFound
	}

	article, ok := s.lookup(guid)
	if !ok {
		if _, err := s.fetch(ctx); err != nil {
			return domain.Article{}, err
		}
		if article, ok = s.lookup(guid); !ok {
			return domain.Article{}, fmt.Errorf("%w: %s", ErrArticleNotFound, guid)
		}
	}
	return s.cache.Get(ctx, article)
}

func (s *Service) fetch(ctx context.Context) (*domain.Snapshot, error) {
	snap, err := s.feed.Fetch(ctx)
	if err != nil {
		s.log.ErrorObj("feed fetch failed", "feed_error", map[string]any{"error": err.Error()})
		return nil, err
	}
	s.mu.Lock()
	s.last = snap
	s.mu.Unlock()
	return snap, nil
}

func (s *Service) lookup(guid string) (domain.Article, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return domain.Article{}, false
	}
	for _, a := range s.last.Items {
		if a.GUID == guid {
			return a, true
		}
	}
	return domain.Article{}, false
}

// Refresh forgets the cached snapshot and every rewritten article.
func (s *Service) Refresh() {
	s.mu.Lock()
	s.last = nil
	s.mu.Unlock()
	s.cache.Reset()
	s.log.InfoObj("reader cache reset", "reader", map[string]any{"reset": true})
}

func filterCategory(items []domain.Article, category string) []domain.Article {
	category = strings.ToLower(strings.TrimSpace(category))
	out := make([]domain.Article, 0, len(items))
	for _, a := range items {
		if category == "" || category == "all" || a.HasCategory(category) {
			out = append(out, a)
		}
	}
	return out
}
