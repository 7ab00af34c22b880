// internal/repository/validator.go
package repository

import "github.com/orgchart-app/orgchart-backend/internal/models"

// Pure checks against a snapshot of the position list. No state, no I/O.

// positionIDIsUnique reports whether no existing position already has the id.
func positionIDIsUnique(id string, positions []models.Position) bool {
	for _, p := range positions {
		if p.ID == id {
			return false
		}
	}
	return true
}

// employeeIDIsUnique checks the id against every employee in the whole
// document, not just one position's list.
func employeeIDIsUnique(id string, positions []models.Position) bool {
	for _, p := range positions {
		for _, e := range p.Employees {
			if e.ID == id {
				return false
			}
		}
	}
	return true
}

// employeeIDsAreUnique validates a batch of employees at once: each id must
// be unused in the document and must not repeat within the batch itself.
func employeeIDsAreUnique(employees []models.Employee, positions []models.Position) bool {
	seen := make(map[string]bool, len(employees))
	for _, e := range employees {
		if seen[e.ID] || !employeeIDIsUnique(e.ID, positions) {
			return false
		}
		seen[e.ID] = true
	}
	return true
}

// parentExists reports whether parentID references an existing position.
// An empty parentID is always valid (root position).
func parentExists(parentID string, positions []models.Position) bool {
	if parentID == "" {
		return true
	}
	for _, p := range positions {
		if p.ID == parentID {
			return true
		}
	}
	return false
}

// noCycle walks the parent chain starting at newParentID and reports whether
// assigning it as candidateID's parent keeps the hierarchy acyclic. The walk
// terminates even on a malformed or already-cyclic document: a repeated id
// that is not the candidate ends the walk.
func noCycle(candidateID, newParentID string, positions []models.Position) bool {
	byID := make(map[string]models.Position, len(positions))
	for _, p := range positions {
		byID[p.ID] = p
	}

	visited := make(map[string]bool)
	current := newParentID
	for current != "" {
		if current == candidateID {
			return false
		}
		if visited[current] {
			return true
		}
		visited[current] = true

		p, ok := byID[current]
		if !ok {
			return true
		}
		current = p.ParentPositionID
	}
	return true
}

// childIDs returns the ids of every position whose parent is positionID.
// A delete is only allowed when this list is empty.
func childIDs(positionID string, positions []models.Position) []string {
	var ids []string
	for _, p := range positions {
		if p.ParentPositionID == positionID {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
