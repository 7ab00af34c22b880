package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orgchart-app/orgchart-backend/internal/cache"
)

// AdminHandler exposes cache maintenance operations
type AdminHandler struct {
	cache *cache.IdentityCache
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(c *cache.IdentityCache) *AdminHandler {
	return &AdminHandler{cache: c}
}

// GetCacheStats returns the cache hit/miss counters
func (h *AdminHandler) GetCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.cache.Stats())
}

// TriggerPreload starts a cache warm-up pass in the background
func (h *AdminHandler) TriggerPreload(c *gin.Context) {
	go func() {
		if err := h.cache.PreloadAll(context.Background()); err != nil {
			log.Printf("[Admin] Manual preload failed: %v", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "preload started"})
}

// RefreshEmail evicts and repopulates both cache entries for an email
func (h *AdminHandler) RefreshEmail(c *gin.Context) {
	email := c.Param("email")

	if err := h.cache.Refresh(c.Request.Context(), email); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "refreshed", "email": email})
}
