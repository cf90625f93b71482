package models

import (
	"time"
)

// Element represents a cataloged record tracked by the audit log
type Element struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Body         string    `json:"body" db:"body"`
	CollectionID *int64    `json:"collection_id,omitempty" db:"collection_id"`
	Active       bool      `json:"active" db:"active"`
	DateAdded    time.Time `json:"date_added" db:"date_added"`
}

// AuditID implements Auditable
func (e *Element) AuditID() int64 {
	return e.ID
}

// AuditCategory implements Auditable
func (e *Element) AuditCategory() Category {
	return CategoryElement
}

// ElementForm represents form data for creating/updating elements
type ElementForm struct {
	Name         string `json:"name"`
	Body         string `json:"body"`
	CollectionID *int64 `json:"collection_id,omitempty"`
	Active       bool   `json:"active"`
}

// Validate validates the element form data
func (f *ElementForm) Validate() []string {
	var errors []string

	if f.Name == "" {
		errors = append(errors, "Name is required")
	}

	if len(f.Name) > 200 {
		errors = append(errors, "Name must be less than 200 characters")
	}

	if len(f.Body) > 65535 {
		errors = append(errors, "Body must be less than 65535 characters")
	}

	if f.CollectionID != nil && *f.CollectionID <= 0 {
		errors = append(errors, "Collection ID must be positive")
	}

	return errors
}
