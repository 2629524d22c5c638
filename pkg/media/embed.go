package media

import (
	"fmt"
	"strings"
)

const (
	youtubeEmbedBase  = "https://www.youtube.com/embed/"
	youtubeEmbedQuery = "?autoplay=0&modestbranding=1&rel=0"
	deezerWidgetBase  = "https://widget.deezer.com/widget/auto/"
	deezerPluginBase  = "https://www.deezer.com/plugins/player"
	spotifyEmbedBase  = "https://open.spotify.com/embed/"
	appleEmbedBase    = "https://embed.podcasts.apple.com/"

	spotifyCompactHeight = 152
	spotifyFullHeight    = 352
	appleEpisodeHeight   = 175
	appleShowHeight      = 450
)

// attrEscaper keeps URLs byte-identical apart from characters that would break out of an attribute.
var attrEscaper = strings.NewReplacer(`"`, "&quot;", "<", "&lt;", ">", "&gt;")

// Builder renders provider markup. The zero value uses the canonical widget forms.
type Builder struct {
	// LegacyDeezer renders Deezer ids with the old plugin-player URL.
	LegacyDeezer bool
}

// Generic wraps an unclassified iframe src.
func Generic(src string) Media { return Media{Kind: KindGeneric, URL: src} }

// Fragment wraps unclassified raw markup.
func Fragment(html string) Media { return Media{Kind: KindGeneric, Fragment: html} }

// Tweet carries captured twitter-tweet markup.
func Tweet(html string) Media { return Media{Kind: KindTwitter, Fragment: html} }

// Build returns the embed markup for m. ok is false for KindUnknown or when a
// required field is missing.
func (b Builder) Build(m Media) (string, bool) {
	switch m.Kind {
	case KindYouTube:
		if m.ID == "" {
			return "", false
		}
		return youtubeEmbed(m.ID), true
	case KindDeezer:
		return b.deezerEmbed(m)
	case KindSpotify:
		if m.ID == "" || m.Type == "" {
			return "", false
		}
		return spotifyEmbed(m.Type, m.ID), true
	case KindApplePodcast:
		if m.ID == "" || m.Country == "" {
			return "", false
		}
		return appleEmbed(m.Country, m.ID, m.EpisodeID), true
	case KindTwitter:
		if strings.TrimSpace(m.Fragment) == "" {
			return "", false
		}
		return m.Fragment, true
	case KindGeneric:
		return genericEmbed(m)
	default:
		return "", false
	}
}

// Build renders m with the default Builder.
func Build(m Media) (string, bool) { return Builder{}.Build(m) }

func youtubeEmbed(id string) string {
	return `<div class="video-responsive"><iframe width="560" height="315" src="` +
		youtubeEmbedBase + id + youtubeEmbedQuery +
		`" frameborder="0" allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture" allowfullscreen></iframe></div>`
}

func (b Builder) deezerEmbed(m Media) (string, bool) {
	var src string
	switch {
	case m.URL != "":
		src = m.URL
	case m.ID == "" || m.Type == "":
		return "", false
	case b.LegacyDeezer:
		src = fmt.Sprintf("%s?format=classic&autoplay=false&playlist=true&width=700&height=350&color=007FEB&layout=dark&size=medium&type=%ss&id=%s",
			deezerPluginBase, m.Type, m.ID)
	default:
		src = deezerWidgetBase + m.Type + "/" + m.ID
	}
	return `<div class="deezer-responsive"><iframe title="deezer-widget" scrolling="no" frameborder="0" allowtransparency="true" allow="encrypted-media; clipboard-write" src="` +
		attrEscaper.Replace(src) + `"></iframe></div>`, true
}

func spotifyEmbed(typ, id string) string {
	height := spotifyFullHeight
	if typ == "track" || typ == "episode" {
		height = spotifyCompactHeight
	}
	return fmt.Sprintf(`<div class="spotify-responsive"><iframe style="border-radius:12px" src="%s%s/%s" width="100%%" height="%d" frameborder="0" allowfullscreen allow="autoplay; clipboard-write; encrypted-media; fullscreen; picture-in-picture" loading="lazy"></iframe></div>`,
		spotifyEmbedBase, typ, id, height)
}

func appleEmbed(country, podcastID, episodeID string) string {
	src := appleEmbedBase + country + "/podcast/id" + podcastID
	height := appleShowHeight
	if episodeID != "" {
		src += "?i=" + episodeID
		height = appleEpisodeHeight
	}
	return fmt.Sprintf(`<div class="apple-podcast-responsive"><iframe allow="autoplay *; encrypted-media *; fullscreen *; clipboard-write" frameborder="0" height="%d" style="width:100%%;max-width:660px;overflow:hidden;border-radius:10px;" sandbox="allow-forms allow-popups allow-same-origin allow-scripts allow-storage-access-by-user-activation allow-top-navigation-by-user-activation" src="%s"></iframe></div>`,
		height, src)
}

func genericEmbed(m Media) (string, bool) {
	if m.URL != "" {
		return `<div class="video-responsive"><iframe src="` + attrEscaper.Replace(m.URL) +
			`" frameborder="0" allowfullscreen></iframe></div>`, true
	}
	if strings.TrimSpace(m.Fragment) != "" {
		return `<div class="video-responsive">` + m.Fragment + `</div>`, true
	}
	return "", false
}
