package feed

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/samvad-hq/horizonti-reader/internal/domain"
)

// rssFetcher reads Medium's RSS directly and parses it with gofeed.
type rssFetcher struct {
	client  HTTPClient
	feedURL string
	clock   func() time.Time
}

func NewRSSFetcher(client HTTPClient, feedURL string) Fetcher {
	return &rssFetcher{client: client, feedURL: feedURL, clock: now}
}

func (f *rssFetcher) Source() string { return SourceRSS }

func (f *rssFetcher) Fetch(ctx context.Context) (*domain.Snapshot, error) {
	if strings.TrimSpace(f.feedURL) == "" {
		return nil, fmt.Errorf("%w: feed url is empty", ErrFeedFailure)
	}

	resp, err := f.client.Get(ctx, f.feedURL, map[string]string{
		"Accept": "application/rss+xml, application/xml;q=0.9, */*;q=0.8",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fetch rss: %v", ErrFeedFailure, err)
	}
	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: rss returned status %d body: %s", ErrFeedFailure, resp.StatusCode(), responseSnippet(body))
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse rss: %v", ErrFeedFailure, err)
	}

	snap := &domain.Snapshot{
		Feed: domain.Feed{
			URL:         f.feedURL,
			Title:       parsed.Title,
			Link:        parsed.Link,
			Description: parsed.Description,
		},
		Items:     make([]domain.Article, 0, len(parsed.Items)),
		FetchedAt: f.clock(),
	}
	if parsed.Image != nil {
		snap.Feed.Image = parsed.Image.URL
	}

	for _, item := range parsed.Items {
		article := domain.Article{
			GUID:           item.GUID,
			Link:           item.Link,
			Title:          item.Title,
			PubDate:        item.Published,
			Categories:     lowerCategories(item.Categories),
			Content:        item.Description,
			ContentEncoded: item.Content,
			Embeds:         []string{},
		}
		if article.GUID == "" {
			article.GUID = article.Link
		}
		if item.Author != nil {
			article.Creator = item.Author.Name
		}
		if item.PublishedParsed != nil {
			article.ISODate = item.PublishedParsed.UTC()
		} else {
			article.ISODate = parseDate(item.Published)
		}
		if item.Image != nil {
			article.Thumbnail = item.Image.URL
		}
		snap.Items = append(snap.Items, article)
	}
	return snap, nil
}
