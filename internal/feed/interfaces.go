// Package feed reads the publication feed, either through the rss2json proxy
// or directly from Medium's RSS endpoint.
package feed

import (
	"context"
	"errors"

	"github.com/samvad-hq/horizonti-reader/internal/domain"
	"github.com/samvad-hq/horizonti-reader/pkg/httpclient"
)

// ErrFeedFailure marks any failure to obtain a usable feed.
var ErrFeedFailure = errors.New("feed failure")

const (
	SourceRSS2JSON = "rss2json"
	SourceRSS      = "rss"
)

// Fetcher retrieves one snapshot of the feed.
type Fetcher interface {
	Source() string
	Fetch(ctx context.Context) (*domain.Snapshot, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within feed.
type HTTPClient = httpclient.Client
