package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/samvad-hq/horizonti-reader/internal/reader"
)

// registerFeedRoutes adds the feed, article and refresh endpoints.
func registerFeedRoutes(r *gin.Engine, h *handlers) {
	g := r.Group("/api")
	g.GET("/feed", h.getFeed)
	g.GET("/article", h.getArticle)
	g.POST("/refresh", h.refresh)
}

func (h *handlers) getFeed(c *gin.Context) {
	snap, err := h.reader.Feed(c.Request.Context(), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *handlers) getArticle(c *gin.Context) {
	guid := strings.TrimSpace(c.Query("guid"))
	if guid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing guid"})
		return
	}

	article, err := h.reader.Article(c.Request.Context(), guid)
	switch {
	case errors.Is(err, reader.ErrArticleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, article)
	}
}

func (h *handlers) refresh(c *gin.Context) {
	h.reader.Refresh()
	c.JSON(http.StatusAccepted, gin.H{"status": "refreshed"})
}
