package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orgchart-app/orgchart-backend/internal/api/middleware"
	"github.com/orgchart-app/orgchart-backend/internal/models"
	"github.com/orgchart-app/orgchart-backend/internal/service"
)

// auditLog records who performed a mutation. The user id comes from the auth
// middleware; outside an authenticated route the line is skipped.
func auditLog(c *gin.Context, format string, args ...interface{}) {
	if userID := middleware.GetUserID(c); userID != "" {
		log.Printf("[Audit] "+format+" by %s", append(args, userID)...)
	}
}

// OrgChartHandler handles org chart HTTP requests
type OrgChartHandler struct {
	orgSvc service.OrgChartService
}

// NewOrgChartHandler creates a new org chart handler
func NewOrgChartHandler(orgSvc service.OrgChartService) *OrgChartHandler {
	return &OrgChartHandler{orgSvc: orgSvc}
}

// CreatePositionRequest represents the request body for creating a position
type CreatePositionRequest struct {
	ID               string  `json:"id"`
	Title            string  `json:"title" binding:"required"`
	Description      string  `json:"description"`
	Department       string  `json:"department" binding:"required"`
	ParentPositionID string  `json:"parentPositionId"`
	Level            *int    `json:"level"`
	URL              *string `json:"url"`
}

// UpdatePositionRequest represents the request body for updating a position
type UpdatePositionRequest struct {
	Title            string  `json:"title" binding:"required"`
	Description      string  `json:"description"`
	Department       string  `json:"department" binding:"required"`
	ParentPositionID string  `json:"parentPositionId"`
	Level            *int    `json:"level"`
	URL              *string `json:"url"`
}

// EmployeeRequest represents the request body for creating or updating an employee
type EmployeeRequest struct {
	ID        string  `json:"id"`
	Name      string  `json:"name" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	StartDate string  `json:"startDate"`
	IsPrimary bool    `json:"isPrimary"`
	URL       *string `json:"url"`
}

// GetDocument returns the whole organization document
func (h *OrgChartHandler) GetDocument(c *gin.Context) {
	doc, err := h.orgSvc.GetDocument(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// CreatePosition creates a new position
func (h *OrgChartHandler) CreatePosition(c *gin.Context) {
	var req CreatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	position, err := h.orgSvc.CreatePosition(c.Request.Context(), models.Position{
		ID:               req.ID,
		Title:            req.Title,
		Description:      req.Description,
		Department:       req.Department,
		ParentPositionID: req.ParentPositionID,
		Level:            req.Level,
		URL:              req.URL,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	auditLog(c, "Position %s created", position.ID)
	c.JSON(http.StatusCreated, position)
}

// UpdatePosition updates an existing position
func (h *OrgChartHandler) UpdatePosition(c *gin.Context) {
	id := c.Param("id")

	var req UpdatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	position, err := h.orgSvc.UpdatePosition(c.Request.Context(), models.Position{
		ID:               id,
		Title:            req.Title,
		Description:      req.Description,
		Department:       req.Department,
		ParentPositionID: req.ParentPositionID,
		Level:            req.Level,
		URL:              req.URL,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	auditLog(c, "Position %s updated", position.ID)
	c.JSON(http.StatusOK, position)
}

// DeletePosition deletes a position without children
func (h *OrgChartHandler) DeletePosition(c *gin.Context) {
	id := c.Param("id")

	if err := h.orgSvc.DeletePosition(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}

	auditLog(c, "Position %s deleted", id)
	c.Status(http.StatusNoContent)
}

// CreateEmployee adds an employee to a position
func (h *OrgChartHandler) CreateEmployee(c *gin.Context) {
	positionID := c.Param("id")

	var req EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	employee, err := h.orgSvc.CreateEmployee(c.Request.Context(), positionID, models.Employee{
		ID:        req.ID,
		Name:      req.Name,
		Email:     req.Email,
		StartDate: req.StartDate,
		IsPrimary: req.IsPrimary,
		URL:       req.URL,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	auditLog(c, "Employee %s added to position %s", employee.ID, positionID)
	c.JSON(http.StatusCreated, employee)
}

// UpdateEmployee updates an employee within a position
func (h *OrgChartHandler) UpdateEmployee(c *gin.Context) {
	positionID := c.Param("id")
	employeeID := c.Param("employeeId")

	var req EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	employee, err := h.orgSvc.UpdateEmployee(c.Request.Context(), positionID, models.Employee{
		ID:        employeeID,
		Name:      req.Name,
		Email:     req.Email,
		StartDate: req.StartDate,
		IsPrimary: req.IsPrimary,
		URL:       req.URL,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	auditLog(c, "Employee %s updated in position %s", employee.ID, positionID)
	c.JSON(http.StatusOK, employee)
}

// DeleteEmployee removes an employee from a position
func (h *OrgChartHandler) DeleteEmployee(c *gin.Context) {
	positionID := c.Param("id")
	employeeID := c.Param("employeeId")

	if err := h.orgSvc.DeleteEmployee(c.Request.Context(), positionID, employeeID); err != nil {
		handleServiceError(c, err)
		return
	}

	auditLog(c, "Employee %s removed from position %s", employeeID, positionID)
	c.Status(http.StatusNoContent)
}
