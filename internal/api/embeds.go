package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/samvad-hq/horizonti-reader/internal/embeds"
)

type mediaEmbedResponse struct {
	EmbedHTML      *string       `json:"embedHtml"`
	IsTwitterEmbed bool          `json:"isTwitterEmbed"`
	Status         embeds.Status `json:"status"`
}

// registerEmbedRoutes adds the media and article embed endpoints.
func registerEmbedRoutes(r *gin.Engine, h *handlers) {
	g := r.Group("/api")
	g.GET("/get-media-embed", h.getMediaEmbed)
	g.GET("/get-embeds", h.getEmbeds)
}

// getMediaEmbed never fails on resolution problems: a failed lookup is a 200
// with a null embedHtml so the client renders its fallback.
func (h *handlers) getMediaEmbed(c *gin.Context) {
	mediaURL := strings.TrimSpace(c.Query("mediaUrl"))
	if mediaURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing mediaUrl"})
		return
	}

	res := h.media.Resolve(c.Request.Context(), mediaURL)
	out := mediaEmbedResponse{IsTwitterEmbed: res.Twitter, Status: res.Status}
	if res.Resolved() {
		markup := res.HTML
		out.EmbedHTML = &markup
	} else {
		out.Status = embeds.StatusFailed
		out.IsTwitterEmbed = false
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) getEmbeds(c *gin.Context) {
	articleURL := strings.TrimSpace(c.Query("articleUrl"))
	if articleURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing articleUrl"})
		return
	}

	res, err := h.media.ArticleEmbeds(c.Request.Context(), articleURL)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, embeds.ErrFetch) {
			status = http.StatusBadGateway
		}
		h.log.WarnObj("article embeds failed", "embed_error", map[string]any{
			"url":   articleURL,
			"error": err.Error(),
		})
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
