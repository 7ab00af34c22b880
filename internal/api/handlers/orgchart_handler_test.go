package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgchart-app/orgchart-backend/internal/models"
	"github.com/orgchart-app/orgchart-backend/internal/repository"
	"github.com/orgchart-app/orgchart-backend/internal/service"
	"github.com/orgchart-app/orgchart-backend/internal/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, repository.OrgChartRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	flags := repository.FeatureFlags{InsertEnabled: true, UpdateEnabled: true, DeleteEnabled: true}
	repo := repository.NewStoreRepository(store.NewMemoryStore(), "test/org.json", "Test Org", flags)
	h := NewOrgChartHandler(service.NewOrgChartService(repo, nil))

	r := gin.New()
	r.GET("/api/orgchart", h.GetDocument)
	r.POST("/api/orgchart/positions", h.CreatePosition)
	r.PUT("/api/orgchart/positions/:id", h.UpdatePosition)
	r.DELETE("/api/orgchart/positions/:id", h.DeletePosition)
	r.POST("/api/orgchart/positions/:id/employees", h.CreateEmployee)
	return r, repo
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetDocumentReturnsEmptyOrganization(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/orgchart", "")
	require.Equal(t, http.StatusOK, w.Code)

	var doc models.OrganizationDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "Test Org", doc.Name)
	assert.Empty(t, doc.Positions)
}

func TestCreatePosition(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/orgchart/positions",
		`{"title":"CEO","department":"Exec"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var pos models.Position
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pos))
	assert.NotEmpty(t, pos.ID)
	assert.Equal(t, "CEO", pos.Title)
}

func TestCreatePositionValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	// Missing required department
	w := doJSON(t, r, http.MethodPost, "/api/orgchart/positions", `{"title":"CEO"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePositionInvalidParentMapsTo422(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/orgchart/positions",
		`{"title":"CTO","department":"Tech","parentPositionId":"ghost"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDeletePositionWithChildrenReturnsBlockingIDs(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/orgchart/positions",
		`{"id":"ceo","title":"CEO","department":"Exec"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/orgchart/positions",
		`{"id":"cto","title":"CTO","department":"Tech","parentPositionId":"ceo"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/orgchart/positions/ceo", "")
	require.Equal(t, http.StatusConflict, w.Code)

	var body struct {
		ChildIDs []string `json:"childIds"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"cto"}, body.ChildIDs)

	// Child first, then the parent
	w = doJSON(t, r, http.MethodDelete, "/api/orgchart/positions/cto", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, r, http.MethodDelete, "/api/orgchart/positions/ceo", "")
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestCreateEmployeeOnMissingPosition(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/orgchart/positions/ghost/employees",
		`{"name":"Dana","email":"dana@example.com"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDisabledOperationMapsTo403(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repo := repository.NewStoreRepository(store.NewMemoryStore(), "test/org.json", "Test Org", repository.FeatureFlags{})
	h := NewOrgChartHandler(service.NewOrgChartService(repo, nil))

	r := gin.New()
	r.POST("/api/orgchart/positions", h.CreatePosition)

	w := doJSON(t, r, http.MethodPost, "/api/orgchart/positions",
		`{"title":"CEO","department":"Exec"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
