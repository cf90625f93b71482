package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ohaus/element-audit/models"
)

// SortDirection orders query results by timestamp
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// Valid reports whether d is a known sort direction
func (d SortDirection) Valid() bool {
	return d == SortAsc || d == SortDesc
}

// LogFilter narrows a query over the audit log. The zero value matches all
// entries. A non-nil Target restricts to that entity's stream; Kinds
// restricts to the given entry kinds; Since is an inclusive lower bound on
// the logical timestamp.
type LogFilter struct {
	Target *models.TargetRef
	Kinds  []models.EntryKind
	Since  *time.Time
}

// LogRepository is the store contract for the append-only audit log.
//
// Query orders by (timestamp, id) in the requested direction; the surrogate
// id tie-break keeps results deterministic when rapid successive writes
// share a timestamp. A limit <= 0 means no limit. The acting user is
// resolved by LEFT JOIN, so entries whose user was deleted come back with a
// nil User rather than an error.
type LogRepository interface {
	Append(entry *models.LogEntry) error
	Query(filter LogFilter, dir SortDirection, limit, offset int) ([]models.LogEntry, error)
	Count(filter LogFilter) (int, error)
}

type sqliteLogRepository struct {
	db *sql.DB
}

// NewLogRepository creates a new audit log repository
func NewLogRepository(db *sql.DB) LogRepository {
	return &sqliteLogRepository{db: db}
}

// Append inserts a new audit log entry. Timestamps are normalized to UTC so
// the stored text ordering matches chronological ordering.
func (r *sqliteLogRepository) Append(entry *models.LogEntry) error {
	query := `
		INSERT INTO audit_log (timestamp, kind, target_type, target_id, user_id, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	var targetType interface{}
	var targetID interface{}
	if entry.HasTarget() {
		targetType = string(entry.TargetType)
		targetID = entry.TargetID
	}

	var userID interface{}
	if entry.UserID != nil {
		userID = *entry.UserID
	}

	result, err := r.db.Exec(
		query,
		entry.Timestamp.UTC(),
		string(entry.Kind),
		targetType,
		targetID,
		userID,
		entry.Payload,
	)
	if err != nil {
		return fmt.Errorf("failed to append log entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted log entry ID: %w", err)
	}

	entry.ID = id
	return nil
}

// Query retrieves log entries matching the filter, ordered by (timestamp, id)
// in the given direction, with the acting user joined in
func (r *sqliteLogRepository) Query(filter LogFilter, dir SortDirection, limit, offset int) ([]models.LogEntry, error) {
	if !dir.Valid() {
		return nil, fmt.Errorf("invalid sort direction: %q", dir)
	}

	where, args := buildLogFilter(filter)

	query := fmt.Sprintf(`
		SELECT
			l.id, l.timestamp, l.kind, l.target_type, l.target_id, l.user_id, l.payload,
			u.subject, u.name, u.email, u.date_added
		FROM audit_log l
		LEFT JOIN users u ON l.user_id = u.id
		%s
		ORDER BY l.timestamp %s, l.id %s
		LIMIT ? OFFSET ?
	`, where, dir, dir)

	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query log entries: %w", err)
	}
	defer rows.Close()

	var entries []models.LogEntry
	for rows.Next() {
		entry, err := scanLogEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating log entries: %w", err)
	}

	return entries, nil
}

// Count counts log entries matching the filter
func (r *sqliteLogRepository) Count(filter LogFilter) (int, error) {
	where, args := buildLogFilter(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM audit_log l %s`, where)

	var count int
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count log entries: %w", err)
	}

	return count, nil
}

// buildLogFilter translates a LogFilter into a WHERE clause with bind args
func buildLogFilter(filter LogFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Target != nil {
		conditions = append(conditions, "l.target_type = ? AND l.target_id = ?")
		args = append(args, string(filter.Target.Type), filter.Target.ID)
	}

	if len(filter.Kinds) > 0 {
		placeholders := make([]string, len(filter.Kinds))
		for i, kind := range filter.Kinds {
			placeholders[i] = "?"
			args = append(args, string(kind))
		}
		conditions = append(conditions, "l.kind IN ("+strings.Join(placeholders, ", ")+")")
	}

	if filter.Since != nil {
		// Inclusive lower bound
		conditions = append(conditions, "l.timestamp >= ?")
		args = append(args, filter.Since.UTC())
	}

	if len(conditions) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// scanLogEntry reads one joined row into a LogEntry
func scanLogEntry(rows *sql.Rows) (models.LogEntry, error) {
	var entry models.LogEntry
	var targetType sql.NullString
	var targetID, userID sql.NullInt64
	var subject, name, email sql.NullString
	var userDateAdded sql.NullTime

	err := rows.Scan(
		&entry.ID,
		&entry.Timestamp,
		&entry.Kind,
		&targetType,
		&targetID,
		&userID,
		&entry.Payload,
		&subject,
		&name,
		&email,
		&userDateAdded,
	)
	if err != nil {
		return models.LogEntry{}, err
	}

	if targetType.Valid {
		entry.TargetType = models.TargetType(targetType.String)
		entry.TargetID = targetID.Int64
	}

	if userID.Valid {
		id := userID.Int64
		entry.UserID = &id

		// The join misses when the user was deleted; the weak reference
		// then resolves to no user.
		if subject.Valid {
			entry.User = &models.User{
				ID:        id,
				Subject:   subject.String,
				Name:      name.String,
				Email:     email.String,
				DateAdded: userDateAdded.Time,
			}
		}
	}

	return entry, nil
}
