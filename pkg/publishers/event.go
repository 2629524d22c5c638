package publishers

import (
	"time"

	"github.com/samvad-hq/horizonti-reader/internal/domain"
)

// EventArticleRendered announces an article whose body was rewritten.
const EventArticleRendered = "article.rendered"

// Event is the payload published downstream.
type Event struct {
	Type       string         `json:"type"`
	FeedURL    string         `json:"feed_url"`
	Digest     string         `json:"digest"`
	Article    domain.Article `json:"article"`
	RenderedAt time.Time      `json:"rendered_at"`
}

// NewArticleRendered builds the event for one rewritten article.
func NewArticleRendered(feedURL string, article domain.Article) Event {
	return Event{
		Type:       EventArticleRendered,
		FeedURL:    feedURL,
		Digest:     article.ContentDigest(),
		Article:    article,
		RenderedAt: time.Now().UTC(),
	}
}

// attributes are the routing fields every sink receives next to the body.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_type":   e.Type,
		"article_guid": e.Article.GUID,
	}
}
