package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tunemate/backend/internal/config"
)

// Catalog proxy endpoints. Responses are cached in Redis for a short window
// and the same window is hinted to clients via Cache-Control, so bursts of
// identical searches hit the external API once.

func (h *Handler) SearchSongs(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	limit := intQuery(c, "limit", 20)

	h.proxyCatalog(c, "catalog:search:"+query+":"+strconv.Itoa(limit), func() ([]byte, error) {
		return h.Catalog.Search(query, limit)
	})
}

func (h *Handler) TrendingSongs(c *gin.Context) {
	limit := intQuery(c, "limit", 20)

	h.proxyCatalog(c, "catalog:trending:"+strconv.Itoa(limit), func() ([]byte, error) {
		return h.Catalog.Trending(limit)
	})
}

func (h *Handler) GetSong(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	h.proxyCatalog(c, "catalog:song:"+id, func() ([]byte, error) {
		return h.Catalog.Song(id)
	})
}

// Recommendations searches the catalog for the user's most listened genre.
// With no history yet it falls back to trending.
func (h *Handler) Recommendations(c *gin.Context) {
	userID, ok := h.bearerUserID(c)
	if !ok {
		return
	}
	limit := intQuery(c, "limit", 20)

	genre, err := h.Storage.TopGenre(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load listening history"})
		return
	}

	if genre == "" {
		h.proxyCatalog(c, "catalog:trending:"+strconv.Itoa(limit), func() ([]byte, error) {
			return h.Catalog.Trending(limit)
		})
		return
	}

	h.proxyCatalog(c, "catalog:search:"+genre+":"+strconv.Itoa(limit), func() ([]byte, error) {
		return h.Catalog.Search(genre, limit)
	})
}

func (h *Handler) proxyCatalog(c *gin.Context, cacheKey string, fetch func() ([]byte, error)) {
	if h.Cache != nil {
		if cached, err := h.Cache.Get(h.ctx, cacheKey).Bytes(); err == nil {
			h.writeCatalogJSON(c, cached)
			return
		}
	}

	body, err := fetch()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Catalog unavailable"})
		return
	}

	if h.Cache != nil {
		h.Cache.Set(h.ctx, cacheKey, body, config.CatalogCacheTTL)
	}
	h.writeCatalogJSON(c, body)
}

func (h *Handler) writeCatalogJSON(c *gin.Context, body []byte) {
	c.Header("Cache-Control", "public, max-age="+strconv.Itoa(int(config.CatalogCacheTTL.Seconds())))
	c.Data(http.StatusOK, "application/json", body)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
