package repositories

import (
	"database/sql"
	"fmt"

	"github.com/ohaus/element-audit/models"
)

// ElementRepository interface defines element database operations
type ElementRepository interface {
	GetAll() ([]models.Element, error)
	GetByID(id int64) (*models.Element, error)
	GetByCollection(collectionID int64) ([]models.Element, error)
	Create(element *models.Element) error
	CreateWithID(element *models.Element) error
	Update(element *models.Element) error
	Delete(id int64) error
	DetachFromCollection(id int64) error
}

// elementRepository implements ElementRepository interface
type elementRepository struct {
	db *sql.DB
}

// NewElementRepository creates a new element repository
func NewElementRepository(db *sql.DB) ElementRepository {
	return &elementRepository{db: db}
}

// GetAll retrieves all elements
func (r *elementRepository) GetAll() ([]models.Element, error) {
	query := `
		SELECT id, name, body, collection_id, active, date_added
		FROM elements
		ORDER BY id ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query elements: %w", err)
	}
	defer rows.Close()

	return scanElements(rows)
}

// GetByID retrieves an element by ID
func (r *elementRepository) GetByID(id int64) (*models.Element, error) {
	query := `
		SELECT id, name, body, collection_id, active, date_added
		FROM elements
		WHERE id = ?
	`

	var element models.Element
	var collectionID sql.NullInt64

	err := r.db.QueryRow(query, id).Scan(
		&element.ID,
		&element.Name,
		&element.Body,
		&collectionID,
		&element.Active,
		&element.DateAdded,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("element with ID %d: %w", id, sql.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get element: %w", err)
	}

	if collectionID.Valid {
		element.CollectionID = &collectionID.Int64
	}

	return &element, nil
}

// GetByCollection retrieves all elements belonging to a collection
func (r *elementRepository) GetByCollection(collectionID int64) ([]models.Element, error) {
	query := `
		SELECT id, name, body, collection_id, active, date_added
		FROM elements
		WHERE collection_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.Query(query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query elements by collection: %w", err)
	}
	defer rows.Close()

	return scanElements(rows)
}

// Create creates a new element with a store-assigned ID
func (r *elementRepository) Create(element *models.Element) error {
	query := `
		INSERT INTO elements (name, body, collection_id, active, date_added)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		element.Name,
		element.Body,
		element.CollectionID,
		element.Active,
		element.DateAdded,
	)
	if err != nil {
		return fmt.Errorf("failed to create element: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}

	element.ID = id
	return nil
}

// CreateWithID re-inserts an element under its original ID. Used by the
// undelete path so the restored entity keeps its audit stream.
func (r *elementRepository) CreateWithID(element *models.Element) error {
	query := `
		INSERT INTO elements (id, name, body, collection_id, active, date_added)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		element.ID,
		element.Name,
		element.Body,
		element.CollectionID,
		element.Active,
		element.DateAdded,
	)
	if err != nil {
		return fmt.Errorf("failed to restore element %d: %w", element.ID, err)
	}

	return nil
}

// Update updates an existing element
func (r *elementRepository) Update(element *models.Element) error {
	query := `
		UPDATE elements
		SET name = ?, body = ?, collection_id = ?, active = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		element.Name,
		element.Body,
		element.CollectionID,
		element.Active,
		element.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update element: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("element with ID %d: %w", element.ID, sql.ErrNoRows)
	}

	return nil
}

// Delete deletes an element by ID
func (r *elementRepository) Delete(id int64) error {
	query := `DELETE FROM elements WHERE id = ?`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete element: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("element with ID %d: %w", id, sql.ErrNoRows)
	}

	return nil
}

// DetachFromCollection removes an element from its collection
func (r *elementRepository) DetachFromCollection(id int64) error {
	query := `UPDATE elements SET collection_id = NULL WHERE id = ?`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to detach element: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("element with ID %d: %w", id, sql.ErrNoRows)
	}

	return nil
}

// scanElements reads element rows into a slice
func scanElements(rows *sql.Rows) ([]models.Element, error) {
	var elements []models.Element
	for rows.Next() {
		var element models.Element
		var collectionID sql.NullInt64

		err := rows.Scan(
			&element.ID,
			&element.Name,
			&element.Body,
			&collectionID,
			&element.Active,
			&element.DateAdded,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan element: %w", err)
		}

		if collectionID.Valid {
			element.CollectionID = &collectionID.Int64
		}

		elements = append(elements, element)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating elements: %w", err)
	}

	return elements, nil
}
