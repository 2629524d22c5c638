package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPTimeout != 8*time.Second {
		t.Fatalf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.FeedSource != "rss2json" {
		t.Fatalf("FeedSource = %q", cfg.FeedSource)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Fatalf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.WarmInterval != 15*time.Minute {
		t.Fatalf("WarmInterval = %v", cfg.WarmInterval)
	}
	if cfg.FallbackText != "Содржината не може да се вчита" || cfg.LoadingText != "Се вчитува…" {
		t.Fatalf("placeholder texts should default to Macedonian, got %q / %q", cfg.FallbackText, cfg.LoadingText)
	}
	if cfg.StorageType != "memory" {
		t.Fatalf("StorageType = %q", cfg.StorageType)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("FEED_SOURCE", " RSS ")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("REWRITE_EAGER", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FeedSource != "rss" {
		t.Fatalf("FeedSource = %q", cfg.FeedSource)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Fatalf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if !cfg.RewriteEager {
		t.Fatalf("expected eager rewriting from env")
	}
}

func TestLoadRejectsInvalidRetryCount(t *testing.T) {
	t.Setenv("HTTP_RETRY_COUNT", "3")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for retry count above 1")
	}
}
