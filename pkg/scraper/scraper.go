// Package scraper locates embed evidence inside fetched HTML documents.
package scraper

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/samvad-hq/horizonti-reader/pkg/media"
)

// MaxUnwrapDepth bounds embedly unwrapping; observed pages nest at most twice.
const MaxUnwrapDepth = 5

// Source identifies which extraction rule produced an Embed. Lower values win.
type Source int

const (
	SourceIframe Source = iota
	SourceTweet
	SourceGist
	SourceScript
)

func (s Source) String() string {
	switch s {
	case SourceIframe:
		return "iframe"
	case SourceTweet:
		return "tweet"
	case SourceGist:
		return "gist"
	case SourceScript:
		return "script"
	default:
		return "unknown"
	}
}

// Embed is one piece of embed evidence found in a document.
type Embed struct {
	Source Source
	// URL is the iframe src after embedly unwrapping; empty for markup-only embeds.
	URL   string
	Media media.Media
	// HTML is the captured element markup or the decoded document.write payload.
	HTML    string
	Twitter bool
}

const candidateSelector = "iframe, blockquote.twitter-tweet, div.twitter-tweet, .gist, script"

var (
	documentWriteExpr = regexp.MustCompile(`(?s)document\.write\(\s*(?:"((?:[^"\\]|\\.)*)"|'((?:[^'\\]|\\.)*)')\s*\)`)
	writeUnescaper    = strings.NewReplacer(`\"`, `"`, `\'`, `'`, `\/`, `/`, `\\`, `\`, `\n`, "\n")
)

// Extract parses body and returns embeds in document order.
func Extract(body []byte) ([]Embed, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return ExtractDocument(doc), nil
}

// ExtractDocument walks an already parsed document. Elements nested inside an
// element that already produced an embed are skipped.
func ExtractDocument(doc *goquery.Document) []Embed {
	var out []Embed
	claimed := make(map[*html.Node]struct{})

	doc.Find(candidateSelector).Each(func(_ int, sel *goquery.Selection) {
		node := sel.Get(0)
		if hasClaimedAncestor(node, claimed) {
			return
		}
		if e, ok := extractElement(sel); ok {
			out = append(out, e)
			claimed[node] = struct{}{}
		}
	})
	return out
}

func hasClaimedAncestor(n *html.Node, claimed map[*html.Node]struct{}) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if _, ok := claimed[p]; ok {
			return true
		}
	}
	return false
}

func extractElement(sel *goquery.Selection) (Embed, bool) {
	switch {
	case sel.Is("iframe"):
		src := firstAttr(sel, "src", "data-src")
		if src == "" {
			return Embed{}, false
		}
		e := fromIframeSrc(src)
		e.HTML = outerHTML(sel)
		return e, true
	case sel.HasClass("twitter-tweet"):
		markup := outerHTML(sel)
		return Embed{Source: SourceTweet, Media: media.Tweet(markup), HTML: markup, Twitter: true}, true
	case sel.HasClass("gist"):
		markup := outerHTML(sel)
		return Embed{Source: SourceGist, Media: media.Fragment(markup), HTML: markup}, true
	case sel.Is("script"):
		return fromScript(sel.Text())
	default:
		return Embed{}, false
	}
}

// fromIframeSrc classifies the unwrapped src. An unclassified embed keeps the
// iframe as authored, embedly wrapper included.
func fromIframeSrc(src string) Embed {
	unwrapped, _ := UnwrapEmbedly(src)
	m := media.Classify(unwrapped)
	if !m.Known() {
		m = media.Generic(normalizeSrc(src))
	}
	return Embed{Source: SourceIframe, URL: unwrapped, Media: m}
}

// fromScript decodes legacy document.write payloads and re-runs the iframe and
// tweet rules on the decoded fragment.
func fromScript(text string) (Embed, bool) {
	matches := documentWriteExpr.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return Embed{}, false
	}

	var b strings.Builder
	for _, m := range matches {
		payload := m[1]
		if payload == "" {
			payload = m[2]
		}
		b.WriteString(writeUnescaper.Replace(payload))
	}
	fragment := strings.TrimSpace(b.String())

	switch {
	case strings.Contains(fragment, "twitter-tweet"):
		return Embed{Source: SourceScript, Media: media.Tweet(fragment), HTML: fragment, Twitter: true}, true
	case strings.Contains(fragment, "<iframe"):
		e := Embed{Source: SourceScript, HTML: fragment, Media: media.Fragment(fragment)}
		if src := fragmentIframeSrc(fragment); src != "" {
			inner := fromIframeSrc(src)
			e.URL = inner.URL
			if inner.Media.Known() {
				e.Media = inner.Media
			}
		}
		return e, true
	case strings.Contains(fragment, `class="gist`):
		return Embed{Source: SourceScript, Media: media.Fragment(fragment), HTML: fragment}, true
	default:
		return Embed{}, false
	}
}

func fragmentIframeSrc(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return firstAttr(doc.Find("iframe").First(), "src", "data-src")
}

// UnwrapEmbedly follows cdn.embedly.com media wrappers to the URL they carry.
// It returns the innermost URL reached and the number of layers removed, which
// never exceeds MaxUnwrapDepth.
func UnwrapEmbedly(src string) (string, int) {
	current := normalizeSrc(src)
	for depth := 0; depth < MaxUnwrapDepth; depth++ {
		inner, ok := embedlyInner(current)
		if !ok {
			return current, depth
		}
		current = inner
	}
	return current, MaxUnwrapDepth
}

func embedlyInner(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host != "embedly.com" && !strings.HasSuffix(host, ".embedly.com") {
		return "", false
	}
	if !strings.HasPrefix(u.Path, "/widgets/media.html") {
		return "", false
	}

	inner := strings.TrimSpace(u.Query().Get("src"))
	if inner == "" {
		return "", false
	}
	// Some pages double-encode the parameter.
	if lower := strings.ToLower(inner); strings.HasPrefix(lower, "http%3a") || strings.HasPrefix(lower, "https%3a") || strings.HasPrefix(lower, "%2f%2f") {
		if decoded, err := url.QueryUnescape(inner); err == nil {
			inner = decoded
		}
	}
	return normalizeSrc(inner), true
}

func normalizeSrc(src string) string {
	src = strings.TrimSpace(html.UnescapeString(src))
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	return src
}

// Best picks the embed that represents a single-media page: the first embed
// matched to a known provider, otherwise the first by extraction precedence.
func Best(embeds []Embed) (Embed, bool) {
	for _, e := range embeds {
		if e.Media.Known() {
			return e, true
		}
	}
	best := -1
	for i, e := range embeds {
		if best == -1 || e.Source < embeds[best].Source {
			best = i
		}
	}
	if best == -1 {
		return Embed{}, false
	}
	return embeds[best], true
}

// PageEmbeds returns the outer markup of every iframe, tweet and gist in a full
// article page, plus whether any tweet was present.
func PageEmbeds(body []byte) ([]string, bool, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("parse html: %w", err)
	}

	embeds := make([]string, 0)
	doc.Find("iframe, blockquote.twitter-tweet, .gist").Each(func(_ int, sel *goquery.Selection) {
		if markup := outerHTML(sel); markup != "" {
			embeds = append(embeds, markup)
		}
	})
	return embeds, doc.Find("blockquote.twitter-tweet").Length() > 0, nil
}

func firstAttr(sel *goquery.Selection, names ...string) string {
	for _, name := range names {
		if v, ok := sel.Attr(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func outerHTML(sel *goquery.Selection) string {
	markup, err := goquery.OuterHtml(sel)
	if err != nil {
		return ""
	}
	return markup
}
