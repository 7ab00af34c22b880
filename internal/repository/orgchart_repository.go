// internal/repository/orgchart_repository.go
package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/orgchart-app/orgchart-backend/internal/models"
	"github.com/orgchart-app/orgchart-backend/internal/store"
)

// ============================================
// Org Chart Repository Interface
// ============================================

// OrgChartRepository owns the single shared organization document and
// executes CRUD operations as a validated read-modify-write.
type OrgChartRepository interface {
	GetDocument(ctx context.Context) (models.OrganizationDocument, error)

	CreatePosition(ctx context.Context, position models.Position) (models.Position, error)
	UpdatePosition(ctx context.Context, position models.Position) (models.Position, error)
	DeletePosition(ctx context.Context, id string) error

	CreateEmployee(ctx context.Context, positionID string, employee models.Employee) (models.Employee, error)
	UpdateEmployee(ctx context.Context, positionID string, employee models.Employee) (models.Employee, error)
	DeleteEmployee(ctx context.Context, positionID, employeeID string) error
}

// FeatureFlags gate all mutating operations. A disabled operation fails
// without touching the document.
type FeatureFlags struct {
	InsertEnabled bool
	UpdateEnabled bool
	DeleteEnabled bool
}

// ============================================
// Store-backed implementation
// ============================================

type storeRepository struct {
	store   store.DocumentStore
	key     string
	orgName string
	flags   FeatureFlags

	// lane serializes all read-modify-write cycles. A channel rather than a
	// sync.Mutex so a caller waiting to enter can be cancelled.
	lane chan struct{}
}

// NewStoreRepository creates a repository over a single document stored
// under key. The store has no cross-process locking; correctness is
// enforced by serializing mutations through a per-instance lane, which is
// a single-process guarantee only.
func NewStoreRepository(s store.DocumentStore, key, orgName string, flags FeatureFlags) OrgChartRepository {
	return &storeRepository{
		store:   s,
		key:     key,
		orgName: orgName,
		flags:   flags,
		lane:    make(chan struct{}, 1),
	}
}

// acquireLane enters the mutation lane or fails if the context is cancelled
// while waiting. A caller cancelled here never entered the lane.
func (r *storeRepository) acquireLane(ctx context.Context) error {
	select {
	case r.lane <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *storeRepository) releaseLane() {
	<-r.lane
}

// load fetches the whole document; a missing key reads as an empty
// organization rather than an error.
func (r *storeRepository) load(ctx context.Context) (models.OrganizationDocument, error) {
	data, err := r.store.Get(ctx, r.key)
	if errors.Is(err, store.ErrKeyNotFound) {
		return models.EmptyOrganization(r.orgName), nil
	}
	if err != nil {
		return models.OrganizationDocument{}, storageError(err)
	}

	var doc models.OrganizationDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.OrganizationDocument{}, storageError(err)
	}
	if doc.Positions == nil {
		doc.Positions = []models.Position{}
	}
	return doc, nil
}

func (r *storeRepository) save(ctx context.Context, doc models.OrganizationDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return storageError(err)
	}
	if err := r.store.Put(ctx, r.key, data); err != nil {
		return storageError(err)
	}
	return nil
}

// mutate runs one fetch-validate-modify-persist cycle inside the lane.
// Even if the store call fails the lane is released for the next waiter.
func (r *storeRepository) mutate(ctx context.Context, op func(doc *models.OrganizationDocument) error) error {
	if err := r.acquireLane(ctx); err != nil {
		return err
	}
	defer r.releaseLane()

	doc, err := r.load(ctx)
	if err != nil {
		return err
	}
	if err := op(&doc); err != nil {
		return err
	}
	return r.save(ctx, doc)
}

// GetDocument does not take the mutation lane; it may run concurrently with
// a write and observes either the pre- or post-write snapshot.
func (r *storeRepository) GetDocument(ctx context.Context) (models.OrganizationDocument, error) {
	return r.load(ctx)
}

// ============================================
// Position operations
// ============================================

func (r *storeRepository) CreatePosition(ctx context.Context, position models.Position) (models.Position, error) {
	if !r.flags.InsertEnabled {
		return models.Position{}, ErrOperationDisabled
	}

	if position.ID == "" {
		position.ID = uuid.New().String()
	}
	if position.Employees == nil {
		position.Employees = []models.Employee{}
	}
	for i := range position.Employees {
		if position.Employees[i].ID == "" {
			position.Employees[i].ID = uuid.New().String()
		}
	}

	err := r.mutate(ctx, func(doc *models.OrganizationDocument) error {
		if !positionIDIsUnique(position.ID, doc.Positions) {
			return ErrDuplicateID
		}
		// Embedded employees are part of the create; their ids must be free
		// across the whole document and distinct from each other.
		if !employeeIDsAreUnique(position.Employees, doc.Positions) {
			return ErrDuplicateID
		}
		if !parentExists(position.ParentPositionID, doc.Positions) {
			return ErrInvalidParent
		}
		doc.Positions = append(doc.Positions, position)
		return nil
	})
	if err != nil {
		return models.Position{}, err
	}
	return position, nil
}

func (r *storeRepository) UpdatePosition(ctx context.Context, position models.Position) (models.Position, error) {
	if !r.flags.UpdateEnabled {
		return models.Position{}, ErrOperationDisabled
	}

	var updated models.Position
	err := r.mutate(ctx, func(doc *models.OrganizationDocument) error {
		idx := -1
		for i, p := range doc.Positions {
			if p.ID == position.ID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return ErrNotFound
		}

		existing := doc.Positions[idx]
		if position.ParentPositionID != existing.ParentPositionID {
			if !parentExists(position.ParentPositionID, doc.Positions) {
				return ErrInvalidParent
			}
			if !noCycle(position.ID, position.ParentPositionID, doc.Positions) {
				return ErrCircularReference
			}
		}

		// Overwrite mutable fields in place; the employee list is managed
		// by the employee operations only.
		existing.Title = position.Title
		existing.Description = position.Description
		existing.Department = position.Department
		existing.ParentPositionID = position.ParentPositionID
		existing.Level = position.Level
		existing.URL = position.URL

		doc.Positions[idx] = existing
		updated = existing
		return nil
	})
	if err != nil {
		return models.Position{}, err
	}
	return updated, nil
}

func (r *storeRepository) DeletePosition(ctx context.Context, id string) error {
	if !r.flags.DeleteEnabled {
		return ErrOperationDisabled
	}

	return r.mutate(ctx, func(doc *models.OrganizationDocument) error {
		idx := -1
		for i, p := range doc.Positions {
			if p.ID == id {
				idx = i
				break
			}
		}
		if idx == -1 {
			return ErrNotFound
		}

		if children := childIDs(id, doc.Positions); len(children) > 0 {
			return &HasChildrenError{PositionID: id, ChildIDs: children}
		}

		doc.Positions = append(doc.Positions[:idx], doc.Positions[idx+1:]...)
		return nil
	})
}

// ============================================
// Employee operations
// ============================================

func (r *storeRepository) CreateEmployee(ctx context.Context, positionID string, employee models.Employee) (models.Employee, error) {
	if !r.flags.InsertEnabled {
		return models.Employee{}, ErrOperationDisabled
	}

	if employee.ID == "" {
		employee.ID = uuid.New().String()
	}

	err := r.mutate(ctx, func(doc *models.OrganizationDocument) error {
		idx := -1
		for i, p := range doc.Positions {
			if p.ID == positionID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return ErrNotFound
		}
		if !employeeIDIsUnique(employee.ID, doc.Positions) {
			return ErrDuplicateID
		}
		doc.Positions[idx].Employees = append(doc.Positions[idx].Employees, employee)
		return nil
	})
	if err != nil {
		return models.Employee{}, err
	}
	return employee, nil
}

func (r *storeRepository) UpdateEmployee(ctx context.Context, positionID string, employee models.Employee) (models.Employee, error) {
	if !r.flags.UpdateEnabled {
		return models.Employee{}, ErrOperationDisabled
	}

	err := r.mutate(ctx, func(doc *models.OrganizationDocument) error {
		for i, p := range doc.Positions {
			if p.ID != positionID {
				continue
			}
			for j, e := range p.Employees {
				if e.ID == employee.ID {
					doc.Positions[i].Employees[j] = employee
					return nil
				}
			}
			return ErrNotFound
		}
		return ErrNotFound
	})
	if err != nil {
		return models.Employee{}, err
	}
	return employee, nil
}

func (r *storeRepository) DeleteEmployee(ctx context.Context, positionID, employeeID string) error {
	if !r.flags.DeleteEnabled {
		return ErrOperationDisabled
	}

	return r.mutate(ctx, func(doc *models.OrganizationDocument) error {
		for i, p := range doc.Positions {
			if p.ID != positionID {
				continue
			}
			for j, e := range p.Employees {
				if e.ID == employeeID {
					doc.Positions[i].Employees = append(p.Employees[:j], p.Employees[j+1:]...)
					return nil
				}
			}
			return ErrNotFound
		}
		return ErrNotFound
	})
}
