// Package embeds turns a single media link into embeddable markup, trying the
// cheap classification paths before any network access.
package embeds

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samvad-hq/horizonti-reader/internal/logger"
	"github.com/samvad-hq/horizonti-reader/pkg/media"
	"github.com/samvad-hq/horizonti-reader/pkg/resolver"
	"github.com/samvad-hq/horizonti-reader/pkg/scraper"
)

// Status is the terminal outcome of one resolution.
type Status string

const (
	StatusResolved Status = "resolved"
	StatusFailed   Status = "failed"
)

var (
	// ErrFetch wraps network errors and non-2xx responses from media pages.
	ErrFetch = errors.New("media fetch failed")
	// ErrNoEmbed means a page was fetched but held no usable embed evidence.
	ErrNoEmbed = errors.New("no embed evidence")
)

const defaultMaxHops = 2

// PageResolver fetches a URL and reports the post-redirect location and body.
type PageResolver interface {
	Resolve(ctx context.Context, rawURL string) (resolver.Page, error)
}

// Result describes how a media URL was resolved.
type Result struct {
	URL      string
	Status   Status
	HTML     string
	Twitter  bool
	Kind     media.Kind
	FinalURL string
	// Direct is true when no network call was needed.
	Direct bool
	Err    error
}

// Resolved reports whether markup is available.
func (r Result) Resolved() bool { return r.Status == StatusResolved }

// Pipeline chains classification, redirect resolution, scraping and markup building.
type Pipeline struct {
	pages   PageResolver
	builder media.Builder
	log     logger.Logger
	maxHops int
}

// NewPipeline wires a pipeline. pages must not be nil.
func NewPipeline(pages PageResolver, builder media.Builder, log logger.Logger) *Pipeline {
	return &Pipeline{
		pages:   pages,
		builder: builder,
		log:     logger.Ensure(log),
		maxHops: defaultMaxHops,
	}
}

// Resolve never returns an error: failures are reported in Result.Err so one
// broken link cannot affect anything else.
func (p *Pipeline) Resolve(ctx context.Context, mediaURL string) Result {
	mediaURL = strings.TrimSpace(mediaURL)
	res := p.resolve(ctx, mediaURL, 0)
	res.URL = mediaURL

	if res.Resolved() {
		p.log.DebugObj("media resolved", "embed_result", map[string]any{
			"url":       mediaURL,
			"final_url": res.FinalURL,
			"kind":      res.Kind.String(),
			"direct":    res.Direct,
		})
	} else {
		p.log.WarnObj("media resolution failed", "embed_error", map[string]any{
			"url":   mediaURL,
			"error": errString(res.Err),
		})
	}
	return res
}

func (p *Pipeline) resolve(ctx context.Context, raw string, hop int) Result {
	if m, ok := classifyDirect(raw); ok {
		res := p.build(m, false)
		res.FinalURL = raw
		res.Direct = true
		return res
	}

	if err := ctx.Err(); err != nil {
		return failed(fmt.Errorf("%w: %v", ErrFetch, err))
	}

	page, err := p.pages.Resolve(ctx, raw)
	if err != nil {
		return failed(fmt.Errorf("%w: %v", ErrFetch, err))
	}

	// The final URL is cheaper to check than the body.
	if m := media.Classify(page.FinalURL); m.Known() {
		res := p.build(m, false)
		res.FinalURL = page.FinalURL
		return res
	}

	found, err := scraper.Extract(page.Body)
	if err != nil {
		return failed(fmt.Errorf("%w: %v", ErrNoEmbed, err))
	}
	best, ok := scraper.Best(found)
	if !ok {
		return failed(fmt.Errorf("%w: %s", ErrNoEmbed, page.FinalURL))
	}

	if !best.Media.Known() && best.URL != "" && best.URL != raw &&
		hop+1 < p.maxHops && media.ProviderHost(best.URL) {
		if nested := p.resolve(ctx, best.URL, hop+1); nested.Resolved() {
			return nested
		}
	}

	res := p.build(best.Media, best.Twitter)
	res.FinalURL = page.FinalURL
	return res
}

func (p *Pipeline) build(m media.Media, twitter bool) Result {
	markup, ok := p.builder.Build(m)
	if !ok {
		return failed(fmt.Errorf("%w: cannot render %s", ErrNoEmbed, m.Kind))
	}
	return Result{
		Status:  StatusResolved,
		HTML:    markup,
		Twitter: twitter || m.Kind == media.KindTwitter,
		Kind:    m.Kind,
	}
}

func classifyDirect(raw string) (media.Media, bool) {
	if m := media.Classify(raw); m.Known() {
		return m, true
	}
	if target, ok := media.MediumTarget(raw); ok {
		if m := media.Classify(target); m.Known() {
			return m, true
		}
	}
	return media.Media{}, false
}

func failed(err error) Result {
	return Result{Status: StatusFailed, Err: err}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
