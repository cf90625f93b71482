package models

import (
	"time"
)

// User represents an acting user attributed to log entries. Log rows hold a
// weak reference to this record: deleting a user leaves its entries in
// place, and attribution queries resolve them to no user.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Subject   string    `json:"subject" db:"subject"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	DateAdded time.Time `json:"date_added" db:"date_added"`
}
