package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samvad-hq/horizonti-reader/internal/api"
	"github.com/samvad-hq/horizonti-reader/internal/config"
	"github.com/samvad-hq/horizonti-reader/internal/logger"
	"github.com/samvad-hq/horizonti-reader/internal/reader"
	"github.com/samvad-hq/horizonti-reader/internal/rewriter"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP runtime serving the embed endpoints and the reader.
type Server struct {
	cfg  *config.Config
	http *http.Server
	log  logger.Logger
}

// NewServer wires the embed stack behind the gin router.
func NewServer(cfg *config.Config, log logger.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	comps, err := buildComponents(cfg, log)
	if err != nil {
		return nil, err
	}
	svc := reader.New(comps.fetcher, rewriter.NewCache(comps.rewriter), cfg.RewriteEager, log)

	return &Server{
		cfg: cfg,
		http: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.NewRouter(comps.pipeline, svc, log),
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s == nil || s.http == nil {
		return fmt.Errorf("server is not initialized")
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoObj("http server listening", "http_addr", s.cfg.HTTPAddr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.InfoObj("http server shutting down", "reason", ctx.Err().Error())
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
