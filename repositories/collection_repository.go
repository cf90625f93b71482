package repositories

import (
	"database/sql"
	"fmt"

	"github.com/ohaus/element-audit/models"
)

// CollectionRepository interface defines collection database operations
type CollectionRepository interface {
	GetAll() ([]models.Collection, error)
	GetByID(id int64) (*models.Collection, error)
	Create(collection *models.Collection) error
	Update(collection *models.Collection) error
	Delete(id int64) error
}

// collectionRepository implements CollectionRepository interface
type collectionRepository struct {
	db *sql.DB
}

// NewCollectionRepository creates a new collection repository
func NewCollectionRepository(db *sql.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

// GetAll retrieves all collections
func (r *collectionRepository) GetAll() ([]models.Collection, error) {
	query := `
		SELECT id, name, description, date_added
		FROM collections
		ORDER BY id ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	var collections []models.Collection
	for rows.Next() {
		var collection models.Collection
		err := rows.Scan(
			&collection.ID,
			&collection.Name,
			&collection.Description,
			&collection.DateAdded,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		collections = append(collections, collection)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collections: %w", err)
	}

	return collections, nil
}

// GetByID retrieves a collection by ID
func (r *collectionRepository) GetByID(id int64) (*models.Collection, error) {
	query := `
		SELECT id, name, description, date_added
		FROM collections
		WHERE id = ?
	`

	var collection models.Collection
	err := r.db.QueryRow(query, id).Scan(
		&collection.ID,
		&collection.Name,
		&collection.Description,
		&collection.DateAdded,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("collection with ID %d: %w", id, sql.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	return &collection, nil
}

// Create creates a new collection
func (r *collectionRepository) Create(collection *models.Collection) error {
	query := `
		INSERT INTO collections (name, description, date_added)
		VALUES (?, ?, ?)
	`

	result, err := r.db.Exec(query,
		collection.Name,
		collection.Description,
		collection.DateAdded,
	)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}

	collection.ID = id
	return nil
}

// Update updates an existing collection
func (r *collectionRepository) Update(collection *models.Collection) error {
	query := `
		UPDATE collections
		SET name = ?, description = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		collection.Name,
		collection.Description,
		collection.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update collection: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("collection with ID %d: %w", collection.ID, sql.ErrNoRows)
	}

	return nil
}

// Delete deletes a collection by ID
func (r *collectionRepository) Delete(id int64) error {
	query := `DELETE FROM collections WHERE id = ?`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("collection with ID %d: %w", id, sql.ErrNoRows)
	}

	return nil
}
