package warmer

import (
	"context"

	"github.com/samvad-hq/horizonti-reader/internal/domain"
	"github.com/samvad-hq/horizonti-reader/pkg/publishers"
)

// FeedFetcher retrieves one snapshot of the feed.
type FeedFetcher interface {
	Fetch(ctx context.Context) (*domain.Snapshot, error)
}

// ArticleRewriter renders one article body.
type ArticleRewriter interface {
	Rewrite(ctx context.Context, article domain.Article) (domain.Article, error)
}

// EventPublisher delivers rendered articles downstream and reports how many sinks accepted them.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
