package services

import (
	"github.com/ohaus/element-audit/repositories"
)

// Services holds all service instances
type Services struct {
	Audit      AuditService
	Element    ElementService
	Collection CollectionService
}

// NewServices creates and initializes all service instances
func NewServices(repos *repositories.Repositories) *Services {
	resolver := NewEntityResolver(repos.Element, repos.Collection)
	audit := NewAuditService(repos.Log, resolver)

	return &Services{
		Audit:      audit,
		Element:    NewElementService(repos.Element, repos.Log, audit),
		Collection: NewCollectionService(repos.Collection, repos.Element, repos.Log),
	}
}
