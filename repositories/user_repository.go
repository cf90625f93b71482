package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ohaus/element-audit/models"
)

// UserRepository handles acting-user persistence
type UserRepository interface {
	GetByID(id int64) (*models.User, error)
	GetBySubject(subject string) (*models.User, error)
	Upsert(user *models.User) error
	Delete(id int64) error
}

type sqliteUserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) UserRepository {
	return &sqliteUserRepository{db: db}
}

// GetByID retrieves a user by ID
func (r *sqliteUserRepository) GetByID(id int64) (*models.User, error) {
	return r.getOne("SELECT id, subject, name, email, date_added FROM users WHERE id = ?", id)
}

// GetBySubject retrieves a user by its OIDC subject
func (r *sqliteUserRepository) GetBySubject(subject string) (*models.User, error) {
	return r.getOne("SELECT id, subject, name, email, date_added FROM users WHERE subject = ?", subject)
}

func (r *sqliteUserRepository) getOne(query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(query, arg).Scan(
		&user.ID,
		&user.Subject,
		&user.Name,
		&user.Email,
		&user.DateAdded,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user: %w", sql.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// Upsert inserts a user or refreshes name/email for an existing subject.
// Called on every login.
func (r *sqliteUserRepository) Upsert(user *models.User) error {
	query := `
		INSERT INTO users (subject, name, email, date_added)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(subject) DO UPDATE SET name = excluded.name, email = excluded.email
	`

	if user.DateAdded.IsZero() {
		user.DateAdded = time.Now().UTC()
	}

	_, err := r.db.Exec(query, user.Subject, user.Name, user.Email, user.DateAdded)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	// LastInsertId is unreliable for upserts; read the row back.
	stored, err := r.GetBySubject(user.Subject)
	if err != nil {
		return err
	}

	user.ID = stored.ID
	user.DateAdded = stored.DateAdded
	return nil
}

// Delete deletes a user by ID. Audit log rows referencing the user are left
// untouched; attribution queries resolve them to no user.
func (r *sqliteUserRepository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with ID %d: %w", id, sql.ErrNoRows)
	}

	return nil
}
