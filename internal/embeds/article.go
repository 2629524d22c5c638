package embeds

import (
	"context"
	"fmt"
	"strings"

	"github.com/samvad-hq/horizonti-reader/pkg/scraper"
)

// PageResult lists every embed found on a full article page.
type PageResult struct {
	Embeds     []string `json:"embeds"`
	HasTwitter bool     `json:"hasTwitterEmbed"`
}

// ArticleEmbeds fetches a whole article page and returns all embed markup on it.
// Unlike Resolve, a failed fetch is returned as an error.
func (p *Pipeline) ArticleEmbeds(ctx context.Context, articleURL string) (PageResult, error) {
	articleURL = strings.TrimSpace(articleURL)
	page, err := p.pages.Resolve(ctx, articleURL)
	if err != nil {
		return PageResult{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	found, hasTwitter, err := scraper.PageEmbeds(page.Body)
	if err != nil {
		return PageResult{}, fmt.Errorf("%w: %v", ErrNoEmbed, err)
	}

	p.log.DebugObj("article embeds scraped", "article_embeds", map[string]any{
		"url":         articleURL,
		"count":       len(found),
		"has_twitter": hasTwitter,
	})
	return PageResult{Embeds: found, HasTwitter: hasTwitter}, nil
}
