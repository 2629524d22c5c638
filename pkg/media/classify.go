// Package media recognizes third-party media URLs and renders embeddable markup for them.
package media

import (
	"net/url"
	"regexp"
	"strings"
)

// Kind enumerates the supported media providers.
type Kind int

const (
	KindUnknown Kind = iota
	KindYouTube
	KindDeezer
	KindSpotify
	KindApplePodcast
	KindTwitter
	KindGeneric
)

func (k Kind) String() string {
	switch k {
	case KindYouTube:
		return "youtube"
	case KindDeezer:
		return "deezer"
	case KindSpotify:
		return "spotify"
	case KindApplePodcast:
		return "apple_podcast"
	case KindTwitter:
		return "twitter"
	case KindGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// Media is a classified media reference. Only the fields relevant to Kind are set.
type Media struct {
	Kind Kind
	// ID is the video id (YouTube), content id (Deezer, Spotify) or podcast id (Apple).
	ID string
	// Type is the content type for Deezer and Spotify (track, album, episode, ...).
	Type      string
	Country   string
	EpisodeID string
	// URL holds a pre-resolved Deezer widget URL or a generic iframe src.
	URL string
	// Fragment holds raw markup for Twitter and generic fragments.
	Fragment string
}

// Known reports whether m was matched to a named provider.
func (m Media) Known() bool {
	switch m.Kind {
	case KindYouTube, KindDeezer, KindSpotify, KindApplePodcast:
		return true
	default:
		return false
	}
}

var (
	youtubeExpr = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.|m\.)?(?:youtube\.com/(?:watch\?(?:[^#]*?&)?v=|embed/|v/)|youtu\.be/)([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`)
	deezerExpr  = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?deezer\.com/(?:[a-z]{2}/)?(track|album|playlist|episode)/(\d+)`)
	widgetExpr  = regexp.MustCompile(`(?i)^(?:https?://)?widget\.deezer\.com/widget/`)
	spotifyExpr = regexp.MustCompile(`(?i)^(?:https?://)?open\.spotify\.com/(?:intl-[a-z]{2}/)?(?:embed/)?(track|episode|album|playlist)/([A-Za-z0-9]+)`)
	appleExpr   = regexp.MustCompile(`(?i)^(?:https?://)?(?:embed\.)?podcasts\.apple\.com/([a-z]{2})/podcast/(?:[^/?#]+/)?id(\d+)`)
	mediumExpr  = regexp.MustCompile(`(?i)^https?://(?:www\.)?medium\.com/media/[^/?#]+/(https?://.+)$`)
	digitsExpr  = regexp.MustCompile(`^\d+$`)
)

// Classify maps a URL to a provider. It never fails: anything unrecognized,
// including Medium proxy links, comes back as KindUnknown.
func Classify(raw string) Media {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Media{}
	}

	// embed/videoseries is a playlist player, not a video id.
	if m := youtubeExpr.FindStringSubmatch(raw); m != nil && !strings.EqualFold(m[1], "videoseries") {
		return Media{Kind: KindYouTube, ID: m[1]}
	}
	if widgetExpr.MatchString(raw) {
		return Media{Kind: KindDeezer, URL: withScheme(raw)}
	}
	if m := deezerExpr.FindStringSubmatch(raw); m != nil {
		return Media{Kind: KindDeezer, Type: strings.ToLower(m[1]), ID: m[2]}
	}
	if m := spotifyExpr.FindStringSubmatch(raw); m != nil {
		return Media{Kind: KindSpotify, Type: strings.ToLower(m[1]), ID: m[2]}
	}
	if m := appleExpr.FindStringSubmatch(raw); m != nil {
		return Media{
			Kind:      KindApplePodcast,
			Country:   strings.ToLower(m[1]),
			ID:        m[2],
			EpisodeID: appleEpisode(raw),
		}
	}
	return Media{}
}

func appleEpisode(raw string) string {
	u, err := url.Parse(withScheme(raw))
	if err != nil {
		return ""
	}
	if ep := u.Query().Get("i"); digitsExpr.MatchString(ep) {
		return ep
	}
	return ""
}

func withScheme(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}

// MediumTarget extracts the provider URL some Medium proxy links carry after the
// media hash (https://medium.com/media/{hash}/{url}).
func MediumTarget(raw string) (string, bool) {
	m := mediumExpr.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", false
	}
	target := m[1]
	if decoded, err := url.PathUnescape(target); err == nil {
		target = decoded
	}
	return target, true
}

// IsMediumMedia reports whether raw points at Medium's media proxy.
func IsMediumMedia(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return host == "medium.com" && strings.HasPrefix(u.Path, "/media/")
}

var providerHosts = []string{
	"youtube.com", "youtu.be", "deezer.com", "deezer.page.link",
	"spotify.com", "spotify.link", "podcasts.apple.com",
}

// ProviderHost reports whether raw is hosted by a known provider even though it
// did not classify (short links, share pages). Such URLs deserve one more fetch.
func ProviderHost(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range providerHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
