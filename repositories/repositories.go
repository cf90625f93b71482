package repositories

import (
	"database/sql"
)

// Repositories struct holds all repository interfaces
type Repositories struct {
	Log        LogRepository
	Element    ElementRepository
	Collection CollectionRepository
	User       UserRepository
}

// NewRepositories creates and initializes all repositories
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Log:        NewLogRepository(db),
		Element:    NewElementRepository(db),
		Collection: NewCollectionRepository(db),
		User:       NewUserRepository(db),
	}
}
