package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orgchart-app/orgchart-backend/internal/cache"
	"github.com/orgchart-app/orgchart-backend/internal/repository"
	"github.com/orgchart-app/orgchart-backend/internal/service"
)

// handleServiceError maps repository and cache errors to HTTP responses
func handleServiceError(c *gin.Context, err error) {
	var hasChildren *repository.HasChildrenError
	if errors.As(err, &hasChildren) {
		c.JSON(http.StatusConflict, gin.H{
			"error":    "Position still has child positions",
			"childIds": hasChildren.ChildIDs,
		})
		return
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, repository.ErrDuplicateID):
		c.JSON(http.StatusConflict, gin.H{"error": "Id already exists"})
	case errors.Is(err, repository.ErrInvalidParent):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Parent position does not exist"})
	case errors.Is(err, repository.ErrCircularReference):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Parent assignment would create a cycle"})
	case errors.Is(err, repository.ErrOperationDisabled):
		c.JSON(http.StatusForbidden, gin.H{"error": "Operation is disabled"})
	case errors.Is(err, repository.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Document store unavailable"})
	case errors.Is(err, cache.ErrDirectoryUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Directory service unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// Handlers bundles all HTTP handlers
type Handlers struct {
	OrgChart *OrgChartHandler
	People   *PeopleHandler
	Admin    *AdminHandler
}

// NewHandlers creates all handlers from the service container
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		OrgChart: NewOrgChartHandler(services.OrgChart),
		People:   NewPeopleHandler(services.Cache),
		Admin:    NewAdminHandler(services.Cache),
	}
}
