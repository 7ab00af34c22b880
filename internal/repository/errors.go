// internal/repository/errors.go
package repository

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrDuplicateID        = errors.New("id already exists")
	ErrInvalidParent      = errors.New("parent position does not exist")
	ErrCircularReference  = errors.New("parent assignment would create a cycle")
	ErrHasChildren        = errors.New("position still has child positions")
	ErrOperationDisabled  = errors.New("operation is disabled")
	ErrStorageUnavailable = errors.New("document store unavailable")
)

// HasChildrenError reports which child positions block a delete so the
// caller can resolve the conflict without another round trip.
type HasChildrenError struct {
	PositionID string
	ChildIDs   []string
}

func (e *HasChildrenError) Error() string {
	return fmt.Sprintf("position %s still has child positions: %s",
		e.PositionID, strings.Join(e.ChildIDs, ", "))
}

// Is makes errors.Is(err, ErrHasChildren) match.
func (e *HasChildrenError) Is(target error) bool {
	return target == ErrHasChildren
}

func storageError(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
