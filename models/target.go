package models

import (
	"errors"
	"fmt"
)

// Category identifies the class of an auditable entity.
type Category string

const (
	CategoryElement    Category = "element"
	CategoryCollection Category = "collection"
)

// TargetType is the discriminator stored in log rows. It is derived from an
// entity's category and stays valid after the entity itself is deleted.
type TargetType string

const (
	TargetElement    TargetType = "ELEMENT"
	TargetCollection TargetType = "COLLECTION"
)

// ErrUnmappedCategory indicates an entity category without a target type
// mapping. This is a configuration error upstream, not a runtime condition.
var ErrUnmappedCategory = errors.New("no target type mapped for category")

// targetTypes is the fixed, total mapping from entity category to the
// discriminator persisted in audit_log rows. Every auditable category must
// appear here exactly once.
var targetTypes = map[Category]TargetType{
	CategoryElement:    TargetElement,
	CategoryCollection: TargetCollection,
}

// Auditable is the identity contract every audited entity satisfies: a
// stable numeric id and a category the target type can be derived from.
type Auditable interface {
	AuditID() int64
	AuditCategory() Category
}

// TargetRef is the stable (type, id) address of an audited entity. It is a
// plain value and remains usable as a query key after the entity is gone.
type TargetRef struct {
	Type TargetType `json:"type"`
	ID   int64      `json:"id"`
}

// TargetOf builds a TargetRef from an explicit category and id.
func TargetOf(category Category, id int64) (TargetRef, error) {
	t, ok := targetTypes[category]
	if !ok {
		return TargetRef{}, fmt.Errorf("%w: %q", ErrUnmappedCategory, category)
	}
	return TargetRef{Type: t, ID: id}, nil
}

// TargetFor builds a TargetRef from a live entity reference.
func TargetFor(entity Auditable) (TargetRef, error) {
	return TargetOf(entity.AuditCategory(), entity.AuditID())
}
