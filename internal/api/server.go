// Package api exposes the embed pipeline and the reader over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samvad-hq/horizonti-reader/internal/domain"
	"github.com/samvad-hq/horizonti-reader/internal/embeds"
	"github.com/samvad-hq/horizonti-reader/internal/logger"
)

// MediaResolver is the part of the embed pipeline the endpoints need.
type MediaResolver interface {
	Resolve(ctx context.Context, mediaURL string) embeds.Result
	ArticleEmbeds(ctx context.Context, articleURL string) (embeds.PageResult, error)
}

// Reader serves the feed and rewritten articles.
type Reader interface {
	Feed(ctx context.Context, category string) (*domain.Snapshot, error)
	Article(ctx context.Context, guid string) (domain.Article, error)
	Refresh()
}

type handlers struct {
	media  MediaResolver
	reader Reader
	log    logger.Logger
}

// NewRouter constructs a Gin engine with every route registered. reader may be
// nil, in which case only the embed endpoints are served.
func NewRouter(media MediaResolver, reader Reader, log logger.Logger) *gin.Engine {
	h := &handlers{media: media, reader: reader, log: logger.Ensure(log)}

	r := gin.New()
	r.Use(gin.Recovery(), allowAllOrigins(), requestLogger(h.log))

	registerEmbedRoutes(r, h)
	if reader != nil {
		registerFeedRoutes(r, h)
	}
	RegisterHealthRoutes(r)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return r
}

// allowAllOrigins sets permissive CORS headers and answers preflight requests.
func allowAllOrigins() gin.HandlerFunc {
	return func(c *gin.Context) {
		hdr := c.Writer.Header()
		hdr.Set("Access-Control-Allow-Origin", "*")
		hdr.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		hdr.Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.InfoObj("http request", "http", map[string]any{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
	}
}

// RegisterHealthRoutes registers health check endpoints.
func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
