package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ohaus/element-audit/models"
	"github.com/ohaus/element-audit/repositories"
)

// EntityResolver resolves a stable target address back to a live entity.
// A nil result with a nil error means the entity no longer exists.
type EntityResolver interface {
	Resolve(target models.TargetRef) (models.Auditable, error)
}

// entityResolver dispatches on target type to the entity repositories
type entityResolver struct {
	elementRepo    repositories.ElementRepository
	collectionRepo repositories.CollectionRepository
}

// NewEntityResolver creates a resolver over the live entity stores
func NewEntityResolver(elementRepo repositories.ElementRepository, collectionRepo repositories.CollectionRepository) EntityResolver {
	return &entityResolver{
		elementRepo:    elementRepo,
		collectionRepo: collectionRepo,
	}
}

// Resolve looks up the entity the target addresses
func (r *entityResolver) Resolve(target models.TargetRef) (models.Auditable, error) {
	switch target.Type {
	case models.TargetElement:
		element, err := r.elementRepo.GetByID(target.ID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return element, nil

	case models.TargetCollection:
		collection, err := r.collectionRepo.GetByID(target.ID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return collection, nil

	default:
		return nil, fmt.Errorf("unknown target type: %q", target.Type)
	}
}
