// internal/models/models.go
package models

// ============================================
// Org Chart Document
// ============================================

// Employee represents a person attached to exactly one position.
// IDs are unique across the whole document, not just within one position.
type Employee struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	StartDate string  `json:"startDate,omitempty"`
	IsPrimary bool    `json:"isPrimary"`
	URL       *string `json:"url,omitempty"`
}

// Position represents a node in the organizational hierarchy.
// A position has at most one parent and zero or more employees.
type Position struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Department       string     `json:"department"`
	ParentPositionID string     `json:"parentPositionId,omitempty"`
	Level            *int       `json:"level,omitempty"`
	URL              *string    `json:"url,omitempty"`
	Employees        []Employee `json:"employees"`
}

// OrganizationDocument is the single root entity persisted as one opaque
// document under one key in the object store. It is read in full and
// written in full on every mutation.
type OrganizationDocument struct {
	Name      string     `json:"name"`
	Positions []Position `json:"positions"`
}

// EmptyOrganization returns the document used when the storage key does
// not exist yet.
func EmptyOrganization(name string) OrganizationDocument {
	return OrganizationDocument{
		Name:      name,
		Positions: []Position{},
	}
}

// Clone returns a deep copy so validators and callers never alias the
// repository's working snapshot.
func (d OrganizationDocument) Clone() OrganizationDocument {
	out := OrganizationDocument{
		Name:      d.Name,
		Positions: make([]Position, len(d.Positions)),
	}
	for i, p := range d.Positions {
		cp := p
		if p.Level != nil {
			lvl := *p.Level
			cp.Level = &lvl
		}
		if p.URL != nil {
			u := *p.URL
			cp.URL = &u
		}
		cp.Employees = make([]Employee, len(p.Employees))
		for j, e := range p.Employees {
			ce := e
			if e.URL != nil {
				u := *e.URL
				ce.URL = &u
			}
			cp.Employees[j] = ce
		}
		out.Positions[i] = cp
	}
	return out
}

// ============================================
// Directory Enrichment
// ============================================

// Profile is the directory record for an employee email.
type Profile struct {
	DisplayName    string `json:"displayName"`
	JobTitle       string `json:"jobTitle,omitempty"`
	Department     string `json:"department,omitempty"`
	Email          string `json:"email"`
	OfficeLocation string `json:"officeLocation,omitempty"`
	MobilePhone    string `json:"mobilePhone,omitempty"`
}

// Photo is a directory photo payload with its MIME type.
type Photo struct {
	Data        []byte `json:"-"`
	ContentType string `json:"contentType"`
}
