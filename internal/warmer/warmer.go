// Package warmer pre-renders new feed articles and announces them to publishers.
package warmer

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/horizonti-reader/internal/domain"
	"github.com/samvad-hq/horizonti-reader/internal/logger"
	"github.com/samvad-hq/horizonti-reader/internal/storage"
	"github.com/samvad-hq/horizonti-reader/pkg/publishers"
)

// Summary counts what one pass did.
type Summary struct {
	Fetched   int `json:"fetched"`
	Skipped   int `json:"skipped"`
	Rendered  int `json:"rendered"`
	Announced int `json:"announced"`
	Failed    int `json:"failed"`
}

// Service runs warm passes over the feed.
type Service struct {
	feed    FeedFetcher
	rw      ArticleRewriter
	pub     EventPublisher
	store   storage.Store
	feedURL string
	log     logger.Logger
}

func NewService(feed FeedFetcher, rw ArticleRewriter, pub EventPublisher, store storage.Store, feedURL string, log logger.Logger) *Service {
	return &Service{
		feed:    feed,
		rw:      rw,
		pub:     pub,
		store:   store,
		feedURL: feedURL,
		log:     logger.Ensure(log),
	}
}

// Run executes one pass. An article is marked only after every publisher
// accepted it, so a failing sink sees it again on the next pass.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	if s == nil || s.feed == nil || s.rw == nil || s.pub == nil || s.store == nil {
		return sum, fmt.Errorf("warmer service is not initialized")
	}

	snap, err := s.feed.Fetch(ctx)
	if err != nil {
		return sum, fmt.Errorf("fetch feed: %w", err)
	}
	sum.Fetched = len(snap.Items)

	var errs []error
	for _, article := range snap.Items {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.warm(ctx, article, &sum); err != nil {
			sum.Failed++
			errs = append(errs, err)
			s.log.ErrorObj("article warm failed", "warm_error", map[string]any{
				"guid":  article.GUID,
				"error": err.Error(),
			})
		}
	}

	s.log.InfoObj("warm pass completed", "warm_result", sum)
	return sum, errors.Join(errs...)
}

func (s *Service) warm(ctx context.Context, article domain.Article, sum *Summary) error {
	digest := article.ContentDigest()
	announced, err := s.store.Announced(article.GUID, digest)
	if err != nil {
		return fmt.Errorf("check %s: %w", article.GUID, err)
	}
	if announced {
		sum.Skipped++
		return nil
	}

	rendered, err := s.rw.Rewrite(ctx, article)
	if err != nil {
		return fmt.Errorf("rewrite %s: %w", article.GUID, err)
	}
	sum.Rendered++

	if _, err := s.pub.Publish(ctx, publishers.NewArticleRendered(s.feedURL, rendered)); err != nil {
		return fmt.Errorf("publish %s: %w", article.GUID, err)
	}
	if err := s.store.MarkAnnounced(article.GUID, digest); err != nil {
		return fmt.Errorf("mark %s: %w", article.GUID, err)
	}
	sum.Announced++
	return nil
}
