package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/horizonti-reader/internal/config"
	"github.com/samvad-hq/horizonti-reader/internal/logger"
	"github.com/samvad-hq/horizonti-reader/internal/storage"
	"github.com/samvad-hq/horizonti-reader/internal/warmer"
	"github.com/samvad-hq/horizonti-reader/pkg/publishers"
)

// Warmer is the background runtime that pre-renders new articles on a fixed
// interval and announces them to the configured publishers.
type Warmer struct {
	cfg      *config.Config
	fanout   *publishers.Fanout
	service  *warmer.Service
	interval time.Duration
	log      logger.Logger
	store    storage.Store
}

// NewWarmer builds the warmer runtime from config and the publishers file.
func NewWarmer(ctx context.Context, cfg *config.Config, log logger.Logger) (*Warmer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)

	pubCfgs, err := publishers.LoadConfigs(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers: %w", err)
	}
	enabled := publishers.Enabled(pubCfgs)
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubs, log)

	summaries := make([]map[string]string, 0, len(enabled))
	for _, p := range enabled {
		summaries = append(summaries, map[string]string{"id": p.ID, "type": p.Type})
	}
	log.InfoObj("publishers loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		TTL:             cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"ttl_seconds":              int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	comps, err := buildComponents(cfg, log)
	if err != nil {
		_ = fanout.Close()
		_ = store.Close()
		return nil, err
	}

	return &Warmer{
		cfg:      cfg,
		fanout:   fanout,
		service:  warmer.NewService(comps.fetcher, comps.rewriter, fanout, store, cfg.FeedURL, log),
		interval: cfg.WarmInterval,
		log:      log,
		store:    store,
	}, nil
}

// Run starts the warm loop until the context is cancelled.
func (w *Warmer) Run(ctx context.Context) error {
	if w == nil || w.service == nil {
		return fmt.Errorf("warmer is not initialized")
	}
	defer w.close()

	w.log.InfoObj("warmer loop starting", "warmer_state", map[string]any{
		"publishers_count": w.fanout.Size(),
		"interval":         w.interval.String(),
	})

	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.InfoObj("warmer loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Warmer) runOnce(ctx context.Context) {
	start := time.Now()
	sum, err := w.service.Run(ctx)
	meta := map[string]any{
		"summary":    sum,
		"elapsed_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		meta["error"] = err.Error()
		w.log.ErrorObj("warm pass finished with errors", "warm_meta", meta)
		return
	}
	w.log.InfoObj("warm pass finished", "warm_meta", meta)
}

func (w *Warmer) close() {
	if err := w.fanout.Close(); err != nil {
		w.log.ErrorObj("publisher close failed", "error", err.Error())
	}
	if err := w.store.Close(); err != nil {
		w.log.ErrorObj("storage close failed", "error", err.Error())
	}
}
