package models

import "time"

// EntryKind discriminates the closed set of log entry variants.
type EntryKind string

const (
	// EntryElementCreated marks the first existence instant of its target.
	EntryElementCreated EntryKind = "element_created"
	// EntryElementEdited marks a field-level change; the payload carries the diff.
	EntryElementEdited EntryKind = "element_edited"
	// EntryElementDeleted marks a deletion; the payload carries the serialized
	// entity needed to undelete it.
	EntryElementDeleted EntryKind = "element_deleted"
	// EntryCollectionElementDeleted marks removal of a child element from a
	// collection owned by the target.
	EntryCollectionElementDeleted EntryKind = "collection_element_deleted"
)

// Valid reports whether k is one of the known entry kinds
func (k EntryKind) Valid() bool {
	switch k {
	case EntryElementCreated, EntryElementEdited, EntryElementDeleted, EntryCollectionElementDeleted:
		return true
	}
	return false
}

// LogEntry is a single immutable audit log record. Entries are written once
// by the mutation path and never updated or deleted afterwards.
//
// ID is a monotonically increasing surrogate key and serves as the ordering
// tie-break when two entries share the same timestamp. Timestamp is the
// logical event time and is not guaranteed unique.
type LogEntry struct {
	ID         int64      `json:"id"`
	Timestamp  time.Time  `json:"timestamp"`
	Kind       EntryKind  `json:"kind"`
	TargetType TargetType `json:"target_type,omitempty"`
	TargetID   int64      `json:"target_id,omitempty"`
	UserID     *int64     `json:"user_id,omitempty"`
	User       *User      `json:"user,omitempty"`
	Payload    string     `json:"payload,omitempty"`
}

// HasTarget reports whether the entry belongs to an entity stream. Entries
// without a target are global events and are excluded from per-entity queries.
func (e *LogEntry) HasTarget() bool {
	return e.TargetType != ""
}

// Target returns the entry's (type, id) stream key. The second return value
// is false for global entries.
func (e *LogEntry) Target() (TargetRef, bool) {
	if !e.HasTarget() {
		return TargetRef{}, false
	}
	return TargetRef{Type: e.TargetType, ID: e.TargetID}, true
}
