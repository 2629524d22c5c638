package media

import "testing"

func TestClassifyProviders(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want Media
	}{
		{"youtu.be with timestamp", "https://youtu.be/dQw4w9WgXcQ?t=5", Media{Kind: KindYouTube, ID: "dQw4w9WgXcQ"}},
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=x", Media{Kind: KindYouTube, ID: "dQw4w9WgXcQ"}},
		{"watch with leading params", "https://youtube.com/watch?feature=share&v=dQw4w9WgXcQ", Media{Kind: KindYouTube, ID: "dQw4w9WgXcQ"}},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ?feature=oembed", Media{Kind: KindYouTube, ID: "dQw4w9WgXcQ"}},
		{"mobile v", "m.youtube.com/v/dQw4w9WgXcQ", Media{Kind: KindYouTube, ID: "dQw4w9WgXcQ"}},
		{"youtube playlist player", "https://www.youtube.com/embed/videoseries?list=PLx0sYbCqOb8TBPRdmBHs5Iftvv9TPboYG", Media{}},
		{"deezer en track", "https://www.deezer.com/en/track/123456789", Media{Kind: KindDeezer, Type: "track", ID: "123456789"}},
		{"deezer album", "https://deezer.com/album/42", Media{Kind: KindDeezer, Type: "album", ID: "42"}},
		{"deezer widget", "https://widget.deezer.com/widget/dark/playlist/908622995", Media{Kind: KindDeezer, URL: "https://widget.deezer.com/widget/dark/playlist/908622995"}},
		{"spotify episode", "https://open.spotify.com/episode/4rOoJ6Egrf8K2IrywzwOMk?si=abc", Media{Kind: KindSpotify, Type: "episode", ID: "4rOoJ6Egrf8K2IrywzwOMk"}},
		{"spotify embed playlist", "https://open.spotify.com/embed/playlist/37i9dQZF1DXcBWIGoYBM5M", Media{Kind: KindSpotify, Type: "playlist", ID: "37i9dQZF1DXcBWIGoYBM5M"}},
		{"apple episode", "https://podcasts.apple.com/ua/podcast/some-show/id1512345678?i=1000600000000", Media{Kind: KindApplePodcast, Country: "ua", ID: "1512345678", EpisodeID: "1000600000000"}},
		{"apple show", "https://podcasts.apple.com/us/podcast/id99", Media{Kind: KindApplePodcast, Country: "us", ID: "99"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.url); got != tc.want {
				t.Fatalf("Classify(%q) = %+v, want %+v", tc.url, got, tc.want)
			}
		})
	}
}

func TestClassifyUnknown(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"https://medium.com/media/abc123",
		"https://medium.com/media/abc123/https://youtu.be/dQw4w9WgXcQ",
		"https://youtu.be/short",
		"https://youtu.be/dQw4w9WgXcQX",
		"https://link.deezer.com/s/30xyz",
		"https://example.com/watch?v=dQw4w9WgXcQ",
		"%%%://bad url",
		"https://podcasts.apple.com/us/podcast/no-id",
	} {
		got := Classify(raw)
		if got.Kind != KindUnknown {
			t.Errorf("Classify(%q) = %+v, want unknown", raw, got)
		}
		if again := Classify(raw); again != got {
			t.Errorf("Classify(%q) not deterministic: %+v vs %+v", raw, got, again)
		}
	}
}

func TestMediumTarget(t *testing.T) {
	target, ok := MediumTarget("https://medium.com/media/5f2c/https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if !ok || target != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Fatalf("MediumTarget = %q, %v", target, ok)
	}
	if _, ok := MediumTarget("https://medium.com/media/5f2c"); ok {
		t.Fatalf("expected no target for bare media link")
	}
}

func TestIsMediumMediaAndProviderHost(t *testing.T) {
	if !IsMediumMedia("https://medium.com/media/abc") {
		t.Fatalf("expected medium media link")
	}
	if IsMediumMedia("https://medium.com/@author/post") {
		t.Fatalf("post link is not a media link")
	}
	if !ProviderHost("https://link.deezer.com/s/abc") {
		t.Fatalf("expected deezer short link to count as provider host")
	}
	if ProviderHost("https://example.com/deezer.com") {
		t.Fatalf("path must not count as provider host")
	}
}
