package service

import (
	"context"

	"github.com/orgchart-app/orgchart-backend/internal/models"
	"github.com/orgchart-app/orgchart-backend/internal/repository"
	"github.com/orgchart-app/orgchart-backend/internal/socket"
)

// ============================================
// Org Chart Service
// ============================================

// OrgChartService sits between the HTTP layer and the repository; after a
// successful mutation it broadcasts the change to connected clients.
type OrgChartService interface {
	GetDocument(ctx context.Context) (models.OrganizationDocument, error)

	CreatePosition(ctx context.Context, position models.Position) (models.Position, error)
	UpdatePosition(ctx context.Context, position models.Position) (models.Position, error)
	DeletePosition(ctx context.Context, id string) error

	CreateEmployee(ctx context.Context, positionID string, employee models.Employee) (models.Employee, error)
	UpdateEmployee(ctx context.Context, positionID string, employee models.Employee) (models.Employee, error)
	DeleteEmployee(ctx context.Context, positionID, employeeID string) error
}

type orgChartService struct {
	repo        repository.OrgChartRepository
	broadcaster *socket.Broadcaster
}

// NewOrgChartService creates a new org chart service
func NewOrgChartService(repo repository.OrgChartRepository, broadcaster *socket.Broadcaster) OrgChartService {
	return &orgChartService{
		repo:        repo,
		broadcaster: broadcaster,
	}
}

func (s *orgChartService) GetDocument(ctx context.Context) (models.OrganizationDocument, error) {
	return s.repo.GetDocument(ctx)
}

func (s *orgChartService) CreatePosition(ctx context.Context, position models.Position) (models.Position, error) {
	created, err := s.repo.CreatePosition(ctx, position)
	if err != nil {
		return models.Position{}, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastPositionCreated(created)
	}
	return created, nil
}

func (s *orgChartService) UpdatePosition(ctx context.Context, position models.Position) (models.Position, error) {
	updated, err := s.repo.UpdatePosition(ctx, position)
	if err != nil {
		return models.Position{}, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastPositionUpdated(updated)
	}
	return updated, nil
}

func (s *orgChartService) DeletePosition(ctx context.Context, id string) error {
	if err := s.repo.DeletePosition(ctx, id); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastPositionDeleted(id)
	}
	return nil
}

func (s *orgChartService) CreateEmployee(ctx context.Context, positionID string, employee models.Employee) (models.Employee, error) {
	created, err := s.repo.CreateEmployee(ctx, positionID, employee)
	if err != nil {
		return models.Employee{}, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastEmployeeCreated(positionID, created)
	}
	return created, nil
}

func (s *orgChartService) UpdateEmployee(ctx context.Context, positionID string, employee models.Employee) (models.Employee, error) {
	updated, err := s.repo.UpdateEmployee(ctx, positionID, employee)
	if err != nil {
		return models.Employee{}, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastEmployeeUpdated(positionID, updated)
	}
	return updated, nil
}

func (s *orgChartService) DeleteEmployee(ctx context.Context, positionID, employeeID string) error {
	if err := s.repo.DeleteEmployee(ctx, positionID, employeeID); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastEmployeeDeleted(positionID, employeeID)
	}
	return nil
}
