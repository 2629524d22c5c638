package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Feed is the channel-level metadata returned alongside the articles.
type Feed struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Snapshot is one successful read of the feed.
type Snapshot struct {
	Feed      Feed      `json:"feed"`
	Items     []Article `json:"items"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Article is one feed entry. ContentEncoded is the authored HTML and is never
// modified; rewriting produces RenderedContent instead.
type Article struct {
	GUID           string    `json:"guid"`
	Link           string    `json:"link"`
	Title          string    `json:"title"`
	Creator        string    `json:"creator"`
	PubDate        string    `json:"pubDate"`
	ISODate        time.Time `json:"isoDate"`
	Categories     []string  `json:"categories"`
	Content        string    `json:"content"`
	ContentEncoded string    `json:"content:encoded"`
	Thumbnail      string    `json:"thumbnail,omitempty"`

	RenderedContent    string   `json:"renderedContent,omitempty"`
	Embeds             []string `json:"embeds"`
	NeedsTwitterWidget bool     `json:"needsTwitterWidget"`
}

// HasCategory reports whether the article is tagged with category (case-insensitive input
// is expected to be lower-cased by the caller).
func (a Article) HasCategory(category string) bool {
	for _, c := range a.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// RefState is the position of a MediaReference in the resolution state machine.
type RefState int

const (
	RefFound RefState = iota
	RefClassified
	RefResolving
	RefResolved
	RefFailed
)

func (s RefState) String() string {
	switch s {
	case RefFound:
		return "found"
	case RefClassified:
		return "classified"
	case RefResolving:
		return "resolving"
	case RefResolved:
		return "resolved"
	case RefFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s RefState) Terminal() bool { return s == RefResolved || s == RefFailed }

// MediaReference is a candidate embed found while rewriting one article.
type MediaReference struct {
	SourceURL     string
	PlaceholderID string
	State         RefState
	ResolvedHTML  string
	Twitter       bool
}

// ContentDigest identifies the authored body; it changes whenever Medium edits the post.
func (a Article) ContentDigest() string {
	sum := sha256.Sum256([]byte(a.Body()))
	return hex.EncodeToString(sum[:])
}

// Body is the authored HTML, preferring content:encoded over the summary.
func (a Article) Body() string {
	if a.ContentEncoded != "" {
		return a.ContentEncoded
	}
	return a.Content
}
