package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orgchart-app/orgchart-backend/internal/cache"
)

// PeopleHandler serves directory-enriched profile data through the cache
type PeopleHandler struct {
	cache *cache.IdentityCache
}

// NewPeopleHandler creates a new people handler
func NewPeopleHandler(c *cache.IdentityCache) *PeopleHandler {
	return &PeopleHandler{cache: c}
}

// GetProfile returns the directory profile for an email
func (h *PeopleHandler) GetProfile(c *gin.Context) {
	email := c.Param("email")

	profile, err := h.cache.GetProfile(c.Request.Context(), email)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No directory record for this email"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetPhoto returns the directory photo for an email
func (h *PeopleHandler) GetPhoto(c *gin.Context) {
	email := c.Param("email")

	photo, err := h.cache.GetPhoto(c.Request.Context(), email)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if photo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No photo for this email"})
		return
	}

	c.Data(http.StatusOK, photo.ContentType, photo.Data)
}
