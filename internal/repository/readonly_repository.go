// internal/repository/readonly_repository.go
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/orgchart-app/orgchart-backend/internal/models"
)

// readOnlyRepository serves the organization document from an external URL.
// Deployments that only render a chart published elsewhere use this instead
// of the store-backed repository; every mutation is disabled.
type readOnlyRepository struct {
	url     string
	orgName string
	client  *http.Client
}

func NewReadOnlyRepository(url, orgName string) OrgChartRepository {
	return &readOnlyRepository{
		url:     url,
		orgName: orgName,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (r *readOnlyRepository) GetDocument(ctx context.Context) (models.OrganizationDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return models.OrganizationDocument{}, storageError(err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return models.OrganizationDocument{}, storageError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.EmptyOrganization(r.orgName), nil
	}
	if resp.StatusCode != http.StatusOK {
		return models.OrganizationDocument{}, storageError(fmt.Errorf("unexpected status %d from %s", resp.StatusCode, r.url))
	}

	var doc models.OrganizationDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return models.OrganizationDocument{}, storageError(err)
	}
	if doc.Positions == nil {
		doc.Positions = []models.Position{}
	}
	return doc, nil
}

func (r *readOnlyRepository) CreatePosition(ctx context.Context, position models.Position) (models.Position, error) {
	return models.Position{}, ErrOperationDisabled
}

func (r *readOnlyRepository) UpdatePosition(ctx context.Context, position models.Position) (models.Position, error) {
	return models.Position{}, ErrOperationDisabled
}

func (r *readOnlyRepository) DeletePosition(ctx context.Context, id string) error {
	return ErrOperationDisabled
}

func (r *readOnlyRepository) CreateEmployee(ctx context.Context, positionID string, employee models.Employee) (models.Employee, error) {
	return models.Employee{}, ErrOperationDisabled
}

func (r *readOnlyRepository) UpdateEmployee(ctx context.Context, positionID string, employee models.Employee) (models.Employee, error) {
	return models.Employee{}, ErrOperationDisabled
}

func (r *readOnlyRepository) DeleteEmployee(ctx context.Context, positionID, employeeID string) error {
	return ErrOperationDisabled
}
