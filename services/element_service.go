package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ohaus/element-audit/models"
	"github.com/ohaus/element-audit/repositories"
)

// fieldChange records one field's old and new value inside an edit payload
type fieldChange struct {
	From interface{} `json:"from"`
	To   interface{} `json:"to"`
}

// ElementService is the mutation path for elements. Every mutation appends
// a log entry to the target's stream before returning: creates log an
// ElementCreated entry, updates an ElementEdited entry carrying the field
// diff, and deletes an ElementDeleted entry carrying the serialized element
// so it can be undeleted later.
type ElementService interface {
	GetAll() ([]models.Element, error)
	GetByID(id int64) (*models.Element, error)
	Create(form *models.ElementForm, actorID *int64) (*models.Element, error)
	Update(id int64, form *models.ElementForm, actorID *int64) (*models.Element, error)
	Delete(id int64, actorID *int64) error
	Undelete(id int64, actorID *int64) (*models.Element, error)
}

// elementService implements ElementService interface
type elementService struct {
	elementRepo repositories.ElementRepository
	logRepo     repositories.LogRepository
	audit       AuditService
}

// NewElementService creates a new element service
func NewElementService(elementRepo repositories.ElementRepository, logRepo repositories.LogRepository, audit AuditService) ElementService {
	return &elementService{
		elementRepo: elementRepo,
		logRepo:     logRepo,
		audit:       audit,
	}
}

// GetAll retrieves all elements
func (s *elementService) GetAll() ([]models.Element, error) {
	return s.elementRepo.GetAll()
}

// GetByID retrieves an element by ID
func (s *elementService) GetByID(id int64) (*models.Element, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid element ID: %d", id)
	}
	return s.elementRepo.GetByID(id)
}

// Create creates a new element and logs its creation
func (s *elementService) Create(form *models.ElementForm, actorID *int64) (*models.Element, error) {
	if errors := form.Validate(); len(errors) > 0 {
		return nil, fmt.Errorf("validation failed: %s", strings.Join(errors, ", "))
	}

	element := &models.Element{
		Name:         strings.TrimSpace(form.Name),
		Body:         form.Body,
		CollectionID: form.CollectionID,
		Active:       form.Active,
		DateAdded:    time.Now().UTC(),
	}

	if err := s.elementRepo.Create(element); err != nil {
		return nil, fmt.Errorf("failed to create element: %w", err)
	}

	if err := s.appendEntry(models.EntryElementCreated, element, actorID, ""); err != nil {
		return nil, err
	}

	return element, nil
}

// Update updates an existing element and logs the field diff. An update
// that changes nothing appends no entry.
func (s *elementService) Update(id int64, form *models.ElementForm, actorID *int64) (*models.Element, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid element ID: %d", id)
	}

	if errors := form.Validate(); len(errors) > 0 {
		return nil, fmt.Errorf("validation failed: %s", strings.Join(errors, ", "))
	}

	element, err := s.elementRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("element not found: %w", err)
	}

	diff := elementDiff(element, form)
	if len(diff) == 0 {
		return element, nil
	}

	element.Name = strings.TrimSpace(form.Name)
	element.Body = form.Body
	element.CollectionID = form.CollectionID
	element.Active = form.Active

	if err := s.elementRepo.Update(element); err != nil {
		return nil, fmt.Errorf("failed to update element: %w", err)
	}

	payload, err := json.Marshal(diff)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize edit payload: %w", err)
	}

	if err := s.appendEntry(models.EntryElementEdited, element, actorID, string(payload)); err != nil {
		return nil, err
	}

	return element, nil
}

// Delete deletes an element, logging a snapshot of it first so the
// deletion can be reversed
func (s *elementService) Delete(id int64, actorID *int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid element ID: %d", id)
	}

	element, err := s.elementRepo.GetByID(id)
	if err != nil {
		return fmt.Errorf("element not found: %w", err)
	}

	snapshot, err := json.Marshal(element)
	if err != nil {
		return fmt.Errorf("failed to serialize element snapshot: %w", err)
	}

	if err := s.elementRepo.Delete(id); err != nil {
		return err
	}

	return s.appendEntry(models.EntryElementDeleted, element, actorID, string(snapshot))
}

// Undelete restores a deleted element from its deletion entry's snapshot.
// The element is re-inserted under its original ID and a fresh creation
// entry is appended, keeping the stream append-only.
func (s *elementService) Undelete(id int64, actorID *int64) (*models.Element, error) {
	entry, err := s.audit.UndeleteData(models.TargetElement, id)
	if err != nil {
		return nil, err
	}

	var element models.Element
	if err := json.Unmarshal([]byte(entry.Payload), &element); err != nil {
		return nil, fmt.Errorf("failed to decode element snapshot: %w", err)
	}

	if err := s.elementRepo.CreateWithID(&element); err != nil {
		return nil, err
	}

	if err := s.appendEntry(models.EntryElementCreated, &element, actorID, ""); err != nil {
		return nil, err
	}

	return &element, nil
}

// appendEntry writes one log entry for the element's stream
func (s *elementService) appendEntry(kind models.EntryKind, element *models.Element, actorID *int64, payload string) error {
	target, err := models.TargetFor(element)
	if err != nil {
		return err
	}

	entry := &models.LogEntry{
		Timestamp:  time.Now().UTC(),
		Kind:       kind,
		TargetType: target.Type,
		TargetID:   target.ID,
		UserID:     actorID,
		Payload:    payload,
	}

	if err := s.logRepo.Append(entry); err != nil {
		return fmt.Errorf("failed to log %s: %w", kind, err)
	}

	return nil
}

// elementDiff computes the field-level changes an update would apply
func elementDiff(element *models.Element, form *models.ElementForm) map[string]fieldChange {
	diff := make(map[string]fieldChange)

	if name := strings.TrimSpace(form.Name); name != element.Name {
		diff["name"] = fieldChange{From: element.Name, To: name}
	}
	if form.Body != element.Body {
		diff["body"] = fieldChange{From: element.Body, To: form.Body}
	}
	if !int64PtrEqual(form.CollectionID, element.CollectionID) {
		diff["collection_id"] = fieldChange{From: element.CollectionID, To: form.CollectionID}
	}
	if form.Active != element.Active {
		diff["active"] = fieldChange{From: element.Active, To: form.Active}
	}

	return diff
}

// int64PtrEqual compares two nullable IDs by value
func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
