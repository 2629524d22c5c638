// Package rewriter replaces Medium media proxy links in article bodies with
// directly embeddable markup.
package rewriter

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"

	"github.com/samvad-hq/horizonti-reader/internal/domain"
	"github.com/samvad-hq/horizonti-reader/internal/embeds"
	"github.com/samvad-hq/horizonti-reader/internal/logger"
	"github.com/samvad-hq/horizonti-reader/pkg/media"
)

const defaultConcurrency = 6

// MediaResolver turns one media URL into markup.
type MediaResolver interface {
	Resolve(ctx context.Context, mediaURL string) embeds.Result
}

// Options tune rendering and resolution fan-out.
type Options struct {
	Concurrency  int
	FallbackText string
	LoadingText  string
}

// Rewriter runs the full per-article pass.
type Rewriter struct {
	media MediaResolver
	opts  Options
	log   logger.Logger
}

func New(resolver MediaResolver, opts Options, log logger.Logger) *Rewriter {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return &Rewriter{media: resolver, opts: opts, log: logger.Ensure(log)}
}

// Prepare strips the footer, then cuts every Medium media link and iframe out
// of content, leaving one placeholder comment per reference.
func (r *Rewriter) Prepare(content string) (*Draft, error) {
	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(StripFooter(content)), body)
	if err != nil {
		return nil, fmt.Errorf("parse article body: %w", err)
	}

	d := &Draft{fallback: r.opts.FallbackText, loading: r.opts.LoadingText}
	for _, n := range nodes {
		body.AppendChild(n)
	}
	replaceMediaNodes(body, d)

	var b strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return nil, fmt.Errorf("render article body: %w", err)
		}
	}
	d.template = b.String()
	return d, nil
}

func replaceMediaNodes(n *html.Node, d *Draft) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if src, ok := mediaSource(c); ok {
			id := uuid.NewString()
			ref := domain.MediaReference{SourceURL: src, PlaceholderID: id, State: domain.RefFound}
			if target, ok := media.MediumTarget(src); ok && media.Classify(target).Known() {
				ref.State = domain.RefClassified
			}
			d.refs = append(d.refs, ref)
			n.InsertBefore(&html.Node{Type: html.CommentNode, Data: placeholderPrefix + id}, c)
			n.RemoveChild(c)
		} else {
			replaceMediaNodes(c, d)
		}
		c = next
	}
}

func mediaSource(n *html.Node) (string, bool) {
	if n.Type != html.ElementNode {
		return "", false
	}
	var key string
	switch n.DataAtom {
	case atom.A:
		key = "href"
	case atom.Iframe:
		key = "src"
	default:
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			v := strings.TrimSpace(attr.Val)
			return v, media.IsMediumMedia(v)
		}
	}
	return "", false
}

// Resolve settles every pending reference concurrently. Individual failures
// become fallback fragments; only context cancellation is returned.
func (r *Rewriter) Resolve(ctx context.Context, d *Draft) error {
	var g errgroup.Group
	g.SetLimit(r.opts.Concurrency)

	for i := range d.Refs() {
		if ctx.Err() != nil {
			break
		}
		src, ok := d.begin(i)
		if !ok {
			continue
		}
		g.Go(func() error {
			res := r.media.Resolve(ctx, src)
			d.settle(i, res.HTML, res.Twitter, res.Resolved())
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}

// Rewrite runs Prepare, Resolve and Render over an article. ContentEncoded is
// left untouched.
func (r *Rewriter) Rewrite(ctx context.Context, article domain.Article) (domain.Article, error) {
	d, err := r.Prepare(article.Body())
	if err != nil {
		return article, err
	}
	if err := r.Resolve(ctx, d); err != nil {
		return article, fmt.Errorf("rewrite %s: %w", article.GUID, err)
	}

	out := article
	out.RenderedContent = d.Render()
	out.Embeds = d.Embeds()
	out.NeedsTwitterWidget = d.NeedsTwitterWidget()

	refs := d.Refs()
	failed := 0
	for _, ref := range refs {
		if ref.State == domain.RefFailed {
			failed++
		}
	}
	r.log.InfoObj("article rewritten", "rewrite", map[string]any{
		"guid":    article.GUID,
		"refs":    len(refs),
		"failed":  failed,
		"twitter": out.NeedsTwitterWidget,
	})
	return out, nil
}
