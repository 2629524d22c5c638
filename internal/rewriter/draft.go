package rewriter

import (
	"html"
	"strings"
	"sync"

	"github.com/samvad-hq/horizonti-reader/internal/domain"
)

const placeholderPrefix = "embed-placeholder:"

func placeholderToken(id string) string { return "<!--" + placeholderPrefix + id + "-->" }

// Draft is an article body with every media reference cut out and replaced by
// a placeholder comment. It can be rendered at any point of resolution.
type Draft struct {
	mu       sync.Mutex
	template string
	refs     []domain.MediaReference
	fallback string
	loading  string
}

// Refs returns a snapshot of the references in document order.
func (d *Draft) Refs() []domain.MediaReference {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.MediaReference, len(d.refs))
	copy(out, d.refs)
	return out
}

// Complete reports whether every reference reached a terminal state.
func (d *Draft) Complete() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, ref := range d.refs {
		if !ref.State.Terminal() {
			return false
		}
	}
	return true
}

// Render substitutes every placeholder: resolved markup, the fallback fragment
// for failures, or a loading fragment for references still in flight.
func (d *Draft) Render() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.refs) == 0 {
		return d.template
	}

	pairs := make([]string, 0, len(d.refs)*2)
	for _, ref := range d.refs {
		pairs = append(pairs, placeholderToken(ref.PlaceholderID), d.fragment(ref))
	}
	return strings.NewReplacer(pairs...).Replace(d.template)
}

func (d *Draft) fragment(ref domain.MediaReference) string {
	switch ref.State {
	case domain.RefResolved:
		return ref.ResolvedHTML
	case domain.RefFailed:
		return `<div class="embed-fallback"><a href="` + html.EscapeString(ref.SourceURL) +
			`" target="_blank" rel="noopener">` + html.EscapeString(d.fallback) + `</a></div>`
	default:
		return `<div class="embed-loading" data-embed-id="` + ref.PlaceholderID + `">` +
			html.EscapeString(d.loading) + `</div>`
	}
}

// Embeds lists resolved markup in document order.
func (d *Draft) Embeds() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.refs))
	for _, ref := range d.refs {
		if ref.State == domain.RefResolved {
			out = append(out, ref.ResolvedHTML)
		}
	}
	return out
}

// NeedsTwitterWidget is true once any resolved reference is a tweet.
func (d *Draft) NeedsTwitterWidget() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, ref := range d.refs {
		if ref.State == domain.RefResolved && ref.Twitter {
			return true
		}
	}
	return false
}

func (d *Draft) begin(i int) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ref := &d.refs[i]
	if ref.State.Terminal() {
		return "", false
	}
	ref.State = domain.RefResolving
	return ref.SourceURL, true
}

// settle records the outcome for one reference. A terminal reference is never
// overwritten.
func (d *Draft) settle(i int, markup string, twitter bool, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ref := &d.refs[i]
	if ref.State.Terminal() {
		return
	}
	if !ok {
		ref.State = domain.RefFailed
		return
	}
	ref.State = domain.RefResolved
	ref.ResolvedHTML = markup
	ref.Twitter = twitter
}
