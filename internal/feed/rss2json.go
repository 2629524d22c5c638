package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samvad-hq/horizonti-reader/internal/domain"
)

type rss2jsonResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Feed    rss2jsonFeed   `json:"feed"`
	Items   []rss2jsonItem `json:"items"`
}

type rss2jsonFeed struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type rss2jsonItem struct {
	Title       string   `json:"title"`
	PubDate     string   `json:"pubDate"`
	Link        string   `json:"link"`
	GUID        string   `json:"guid"`
	Author      string   `json:"author"`
	Thumbnail   string   `json:"thumbnail"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Categories  []string `json:"categories"`
}

// rss2jsonFetcher reads the feed through the rss2json proxy.
type rss2jsonFetcher struct {
	client   HTTPClient
	proxyURL string
	feedURL  string
	clock    func() time.Time
}

func NewRSS2JSONFetcher(client HTTPClient, proxyURL, feedURL string) Fetcher {
	return &rss2jsonFetcher{client: client, proxyURL: proxyURL, feedURL: feedURL, clock: now}
}

func (f *rss2jsonFetcher) Source() string { return SourceRSS2JSON }

// requestURL adds a millisecond timestamp so neither the proxy nor any cache in
// between serves a stale copy.
func (f *rss2jsonFetcher) requestURL() (string, error) {
	u, err := url.Parse(strings.TrimSpace(f.proxyURL))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: invalid rss2json url %q", ErrFeedFailure, f.proxyURL)
	}
	q := u.Query()
	q.Set("rss_url", f.feedURL)
	q.Set("t", strconv.FormatInt(f.clock().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (f *rss2jsonFetcher) Fetch(ctx context.Context) (*domain.Snapshot, error) {
	reqURL, err := f.requestURL()
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Get(ctx, reqURL, map[string]string{
		"Accept":        "application/json",
		"Cache-Control": "no-store",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fetch rss2json: %v", ErrFeedFailure, err)
	}
	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: rss2json returned status %d body: %s", ErrFeedFailure, resp.StatusCode(), responseSnippet(body))
	}

	var payload rss2jsonResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode rss2json: %v", ErrFeedFailure, err)
	}
	if payload.Status != "ok" {
		msg := payload.Message
		if msg == "" {
			msg = "status " + strconv.Quote(payload.Status)
		}
		return nil, fmt.Errorf("%w: rss2json: %s", ErrFeedFailure, msg)
	}

	snap := &domain.Snapshot{
		Feed: domain.Feed{
			URL:         payload.Feed.URL,
			Title:       payload.Feed.Title,
			Link:        payload.Feed.Link,
			Author:      payload.Feed.Author,
			Description: payload.Feed.Description,
			Image:       payload.Feed.Image,
		},
		Items:     make([]domain.Article, 0, len(payload.Items)),
		FetchedAt: f.clock(),
	}
	for _, item := range payload.Items {
		snap.Items = append(snap.Items, domain.Article{
			GUID:           item.GUID,
			Link:           item.Link,
			Title:          item.Title,
			Creator:        item.Author,
			PubDate:        item.PubDate,
			ISODate:        parseDate(item.PubDate),
			Categories:     lowerCategories(item.Categories),
			Content:        item.Description,
			ContentEncoded: item.Content,
			Thumbnail:      item.Thumbnail,
			Embeds:         []string{},
		})
	}
	return snap, nil
}
