package app

import (
	"fmt"

	"github.com/samvad-hq/horizonti-reader/internal/config"
	"github.com/samvad-hq/horizonti-reader/internal/embeds"
	"github.com/samvad-hq/horizonti-reader/internal/feed"
	"github.com/samvad-hq/horizonti-reader/internal/logger"
	"github.com/samvad-hq/horizonti-reader/internal/rewriter"
	"github.com/samvad-hq/horizonti-reader/pkg/httpclient"
	"github.com/samvad-hq/horizonti-reader/pkg/media"
	"github.com/samvad-hq/horizonti-reader/pkg/resolver"
)

// components is the embed stack shared by the server and the warmer.
type components struct {
	pipeline *embeds.Pipeline
	rewriter *rewriter.Rewriter
	fetcher  feed.Fetcher
}

func buildComponents(cfg *config.Config, log logger.Logger) (*components, error) {
	client := httpclient.NewRestyClientWithOptions(httpclient.Options{
		Timeout:      cfg.HTTPTimeout,
		UserAgent:    cfg.UserAgent,
		RetryCount:   cfg.HTTPRetryCount,
		AllowPrivate: cfg.AllowPrivateNetworks,
	})

	pipeline := embeds.NewPipeline(
		resolver.New(client, cfg.UserAgent, cfg.HTTPTimeout),
		media.Builder{LegacyDeezer: cfg.DeezerLegacyPlayer},
		log,
	)
	rw := rewriter.New(pipeline, rewriter.Options{
		Concurrency:  cfg.RewriteConcurrency,
		FallbackText: cfg.FallbackText,
		LoadingText:  cfg.LoadingText,
	}, log)

	registry := feed.DefaultRegistry(client, feed.Settings{FeedURL: cfg.FeedURL, ProxyURL: cfg.RSS2JSONURL})
	fetcher, err := registry.FetcherFor(cfg.FeedSource)
	if err != nil {
		return nil, fmt.Errorf("select feed source: %w", err)
	}

	log.InfoObj("embed stack ready", "components", map[string]any{
		"feed_source":         fetcher.Source(),
		"feed_url":            cfg.FeedURL,
		"rewrite_concurrency": cfg.RewriteConcurrency,
		"deezer_legacy":       cfg.DeezerLegacyPlayer,
		"allow_private":       cfg.AllowPrivateNetworks,
	})
	return &components{pipeline: pipeline, rewriter: rw, fetcher: fetcher}, nil
}
