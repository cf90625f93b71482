package models

import (
	"time"
)

// Collection represents a named group of elements
type Collection struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	DateAdded   time.Time `json:"date_added" db:"date_added"`
}

// AuditID implements Auditable
func (c *Collection) AuditID() int64 {
	return c.ID
}

// AuditCategory implements Auditable
func (c *Collection) AuditCategory() Category {
	return CategoryCollection
}

// CollectionForm represents form data for creating/updating collections
type CollectionForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate validates the collection form data
func (f *CollectionForm) Validate() []string {
	var errors []string

	if f.Name == "" {
		errors = append(errors, "Name is required")
	}

	if len(f.Name) > 200 {
		errors = append(errors, "Name must be less than 200 characters")
	}

	if len(f.Description) > 2000 {
		errors = append(errors, "Description must be less than 2000 characters")
	}

	return errors
}
