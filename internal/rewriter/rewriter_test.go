package rewriter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/samvad-hq/horizonti-reader/internal/domain"
	"github.com/samvad-hq/horizonti-reader/internal/embeds"
	"github.com/samvad-hq/horizonti-reader/internal/logger"
	"github.com/samvad-hq/horizonti-reader/pkg/media"
	"github.com/samvad-hq/horizonti-reader/pkg/resolver"
)

type fakeMedia struct {
	mu      sync.Mutex
	results map[string]embeds.Result
	calls   int
}

func (f *fakeMedia) Resolve(_ context.Context, mediaURL string) embeds.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if res, ok := f.results[mediaURL]; ok {
		return res
	}
	return embeds.Result{Status: embeds.StatusFailed, Err: embeds.ErrFetch}
}

func resolved(markup string) embeds.Result {
	return embeds.Result{Status: embeds.StatusResolved, HTML: markup}
}

var testOpts = Options{Concurrency: 2, FallbackText: "failed to load", LoadingText: "loading"}

func TestStripFooter(t *testing.T) {
	content := `<p>Body</p><img src="https://medium.com/_/stat?event=post.clientViewed&amp;referrerSource=full_rss&amp;postId=1" width="1" height="1" alt=""><hr><p><a href="https://medium.com/horizonti/post">Post</a> was originally published in <a href="https://medium.com/horizonti">Horizonti</a> on Medium, where people are continuing the conversation by highlighting and responding to this story.</p>`

	if got := StripFooter(content); got != "<p>Body</p>" {
		t.Fatalf("StripFooter = %q", got)
	}
	if got := StripFooter("<p>plain</p>"); got != "<p>plain</p>" {
		t.Fatalf("content without footer changed: %q", got)
	}
}

func TestStripFooterKeepsBodyQuotingThePhrase(t *testing.T) {
	body := `<p>This essay was originally published in Foreign Affairs.</p>` +
		`<p>Watch <a href="https://medium.com/media/abc">video</a></p>`
	content := body + `<hr><p><a href="https://medium.com/horizonti/post">Post</a> was originally published in ` +
		`<a href="https://medium.com/horizonti">Horizonti</a> on Medium, where people are continuing the conversation.</p>`

	if got := StripFooter(content); got != body {
		t.Fatalf("StripFooter = %q, want %q", got, body)
	}

	quotedLast := `<p>Intro</p><p>It was originally published in print, not on Medium.</p><p>Closing words.</p>`
	if got := StripFooter(quotedLast); got != quotedLast {
		t.Fatalf("body without trailing footer changed: %q", got)
	}

	d, err := New(&fakeMedia{}, testOpts, logger.NopLogger{}).Prepare(content)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if refs := d.Refs(); len(refs) != 1 || refs[0].SourceURL != "https://medium.com/media/abc" {
		t.Fatalf("media link in body lost: %+v", refs)
	}
}

func TestPrepareReplacesOnlyMediumMedia(t *testing.T) {
	rw := New(&fakeMedia{}, testOpts, logger.NopLogger{})
	content := `<p>Intro <a href="https://medium.com/media/aaa">video</a></p>` +
		`<iframe src="https://medium.com/media/bbb" width="680"></iframe>` +
		`<p><a href="https://example.com/page">other</a></p>`

	d, err := rw.Prepare(content)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	refs := d.Refs()
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}
	if refs[0].SourceURL != "https://medium.com/media/aaa" || refs[1].SourceURL != "https://medium.com/media/bbb" {
		t.Fatalf("refs out of document order: %+v", refs)
	}
	if refs[0].PlaceholderID == refs[1].PlaceholderID {
		t.Fatalf("placeholder ids must be unique")
	}
	for _, ref := range refs {
		if !strings.Contains(d.template, placeholderToken(ref.PlaceholderID)) {
			t.Fatalf("template missing placeholder for %s", ref.SourceURL)
		}
	}
	if strings.Contains(d.template, "medium.com/media") {
		t.Fatalf("media links left in template: %q", d.template)
	}
	if !strings.Contains(d.template, `<a href="https://example.com/page">other</a>`) {
		t.Fatalf("unrelated link was touched: %q", d.template)
	}
}

func TestRenderBeforeResolutionShowsLoading(t *testing.T) {
	rw := New(&fakeMedia{}, testOpts, logger.NopLogger{})
	d, err := rw.Prepare(`<a href="https://medium.com/media/aaa">x</a>`)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	out := d.Render()
	if strings.Contains(out, placeholderPrefix) {
		t.Fatalf("placeholder leaked: %q", out)
	}
	if !strings.Contains(out, `class="embed-loading"`) || !strings.Contains(out, "loading") {
		t.Fatalf("expected loading fragment, got %q", out)
	}
	if d.Complete() {
		t.Fatalf("draft must not be complete before resolution")
	}
}

func TestRewriteIsolatesFailures(t *testing.T) {
	fake := &fakeMedia{results: map[string]embeds.Result{}}
	var b strings.Builder
	for i := 0; i < 5; i++ {
		src := fmt.Sprintf("https://medium.com/media/ok%d", i)
		fake.results[src] = resolved(fmt.Sprintf(`<div class="embed-%d"></div>`, i))
		fmt.Fprintf(&b, `<p><a href="%s">m%d</a></p>`, src, i)
	}
	b.WriteString(`<p><a href="https://medium.com/media/broken">bad</a></p>`)

	rw := New(fake, testOpts, logger.NopLogger{})
	article := domain.Article{GUID: "g1", ContentEncoded: b.String()}
	out, err := rw.Rewrite(context.Background(), article)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}

	if strings.Contains(out.RenderedContent, placeholderPrefix) {
		t.Fatalf("placeholder left in output: %q", out.RenderedContent)
	}
	for i := 0; i < 5; i++ {
		if !strings.Contains(out.RenderedContent, fmt.Sprintf(`<div class="embed-%d"></div>`, i)) {
			t.Fatalf("embed %d missing from output", i)
		}
	}
	if strings.Count(out.RenderedContent, "failed to load") != 1 {
		t.Fatalf("expected exactly one fallback, got %q", out.RenderedContent)
	}
	if len(out.Embeds) != 5 {
		t.Fatalf("expected 5 embeds, got %d", len(out.Embeds))
	}
	if out.ContentEncoded != article.ContentEncoded {
		t.Fatalf("authored content must stay untouched")
	}
	if fake.calls != 6 {
		t.Fatalf("expected 6 resolutions, got %d", fake.calls)
	}
}

type noPages struct{}

func (noPages) Resolve(context.Context, string) (resolver.Page, error) {
	return resolver.Page{}, resolver.ErrFetchFailed
}

func TestRewriteMediumLinkToYouTube(t *testing.T) {
	pipeline := embeds.NewPipeline(noPages{}, media.Builder{}, logger.NopLogger{})
	rw := New(pipeline, testOpts, logger.NopLogger{})

	article := domain.Article{
		GUID:           "g2",
		ContentEncoded: `<p><a href="https://medium.com/media/5f2c/https://www.youtube.com/watch?v=dQw4w9WgXcQ">watch</a></p>`,
	}
	out, err := rw.Rewrite(context.Background(), article)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	want := `src="https://www.youtube.com/embed/dQw4w9WgXcQ?autoplay=0&modestbranding=1&rel=0"`
	if !strings.Contains(out.RenderedContent, want) {
		t.Fatalf("expected youtube iframe, got %q", out.RenderedContent)
	}
	if out.NeedsTwitterWidget {
		t.Fatalf("youtube embed must not need the twitter widget")
	}
}

func TestRewriteFlagsTwitter(t *testing.T) {
	fake := &fakeMedia{results: map[string]embeds.Result{
		"https://medium.com/media/tweet": {Status: embeds.StatusResolved, HTML: `<blockquote class="twitter-tweet">t</blockquote>`, Twitter: true},
	}}
	rw := New(fake, testOpts, logger.NopLogger{})

	out, err := rw.Rewrite(context.Background(), domain.Article{ContentEncoded: `<a href="https://medium.com/media/tweet">t</a>`})
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if !out.NeedsTwitterWidget {
		t.Fatalf("expected twitter flag")
	}
}

func TestSettleIsIdempotent(t *testing.T) {
	rw := New(&fakeMedia{}, testOpts, logger.NopLogger{})
	d, err := rw.Prepare(`<a href="https://medium.com/media/aaa">x</a>`)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	d.settle(0, "<b>first</b>", false, true)
	d.settle(0, "<b>second</b>", false, true)
	d.settle(0, "", false, false)

	refs := d.Refs()
	if refs[0].State != domain.RefResolved || refs[0].ResolvedHTML != "<b>first</b>" {
		t.Fatalf("resolved markup was overwritten: %+v", refs[0])
	}
	if _, ok := d.begin(0); ok {
		t.Fatalf("terminal ref must not restart")
	}
}

func TestRewriteCancelledContext(t *testing.T) {
	fake := &fakeMedia{}
	rw := New(fake, testOpts, logger.NopLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rw.Rewrite(ctx, domain.Article{GUID: "g", ContentEncoded: `<a href="https://medium.com/media/aaa">x</a>`})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if fake.calls != 0 {
		t.Fatalf("no resolution should start after cancellation")
	}
}
