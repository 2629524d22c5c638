package media

import (
	"strings"
	"testing"
)

func TestBuildYouTubeScenario(t *testing.T) {
	html, ok := Build(Classify("https://youtu.be/dQw4w9WgXcQ?t=5"))
	if !ok {
		t.Fatalf("expected markup")
	}
	want := `src="https://www.youtube.com/embed/dQw4w9WgXcQ?autoplay=0&modestbranding=1&rel=0"`
	if !strings.Contains(html, want) {
		t.Fatalf("markup %q missing %q", html, want)
	}
}

func TestBuildDeezerWidgetAndLegacy(t *testing.T) {
	m := Classify("https://www.deezer.com/en/track/123456789")
	html, ok := Build(m)
	if !ok || !strings.Contains(html, "widget.deezer.com/widget/auto/track/123456789") {
		t.Fatalf("unexpected deezer markup %q", html)
	}

	legacy, ok := Builder{LegacyDeezer: true}.Build(m)
	if !ok || !strings.Contains(legacy, "deezer.com/plugins/player") || !strings.Contains(legacy, "type=tracks&id=123456789") {
		t.Fatalf("unexpected legacy markup %q", legacy)
	}

	widget := Classify("https://widget.deezer.com/widget/dark/album/1")
	html, ok = Build(widget)
	if !ok || !strings.Contains(html, `src="https://widget.deezer.com/widget/dark/album/1"`) {
		t.Fatalf("widget url should pass through, got %q", html)
	}
}

func TestBuildHeights(t *testing.T) {
	cases := []struct {
		m    Media
		want string
	}{
		{Media{Kind: KindSpotify, Type: "track", ID: "a"}, `height="152"`},
		{Media{Kind: KindSpotify, Type: "episode", ID: "a"}, `height="152"`},
		{Media{Kind: KindSpotify, Type: "album", ID: "a"}, `height="352"`},
		{Media{Kind: KindApplePodcast, Country: "us", ID: "1", EpisodeID: "2"}, `height="175"`},
		{Media{Kind: KindApplePodcast, Country: "us", ID: "1"}, `height="450"`},
	}
	for _, tc := range cases {
		html, ok := Build(tc.m)
		if !ok || !strings.Contains(html, tc.want) {
			t.Errorf("Build(%+v) = %q, want %s", tc.m, html, tc.want)
		}
	}

	html, _ := Build(Media{Kind: KindApplePodcast, Country: "ua", ID: "15", EpisodeID: "100"})
	if !strings.Contains(html, `src="https://embed.podcasts.apple.com/ua/podcast/id15?i=100"`) {
		t.Fatalf("unexpected apple src in %q", html)
	}
}

func TestBuildIsDeterministicAndInjective(t *testing.T) {
	inputs := []Media{
		{Kind: KindYouTube, ID: "dQw4w9WgXcQ"},
		{Kind: KindYouTube, ID: "aaaaaaaaaaa"},
		{Kind: KindDeezer, Type: "track", ID: "1"},
		{Kind: KindDeezer, Type: "album", ID: "1"},
		{Kind: KindSpotify, Type: "track", ID: "1"},
		{Kind: KindApplePodcast, Country: "us", ID: "1"},
		{Kind: KindApplePodcast, Country: "us", ID: "1", EpisodeID: "3"},
		Generic("https://player.vimeo.com/video/1"),
		Tweet(`<blockquote class="twitter-tweet">hi</blockquote>`),
	}

	seen := map[string]Media{}
	for _, m := range inputs {
		first, ok := Build(m)
		if !ok {
			t.Fatalf("Build(%+v) failed", m)
		}
		if second, _ := Build(m); second != first {
			t.Fatalf("Build(%+v) not idempotent", m)
		}
		if prev, dup := seen[first]; dup {
			t.Fatalf("Build produced identical markup for %+v and %+v", prev, m)
		}
		seen[first] = m
	}
}

func TestBuildRejectsUnknownAndEscapesAttributes(t *testing.T) {
	if _, ok := Build(Media{}); ok {
		t.Fatalf("unknown media must not build")
	}
	html, ok := Build(Generic(`https://x.example/"><script>`))
	if !ok || strings.Contains(html, `"><script>`) {
		t.Fatalf("generic src not escaped: %q", html)
	}
}
