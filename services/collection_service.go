package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ohaus/element-audit/models"
	"github.com/ohaus/element-audit/repositories"
)

// CollectionService is the mutation path for collections. Like the element
// path, every mutation appends to the collection's audit stream. Removing
// an element from a collection logs a CollectionElementDeleted entry on the
// collection's stream: it counts as a time-travel relevant mutation of the
// collection without being an edit of the element itself.
type CollectionService interface {
	GetAll() ([]models.Collection, error)
	GetByID(id int64) (*models.Collection, error)
	Create(form *models.CollectionForm, actorID *int64) (*models.Collection, error)
	Update(id int64, form *models.CollectionForm, actorID *int64) (*models.Collection, error)
	Delete(id int64, actorID *int64) error
	RemoveElement(collectionID, elementID int64, actorID *int64) error
}

// collectionService implements CollectionService interface
type collectionService struct {
	collectionRepo repositories.CollectionRepository
	elementRepo    repositories.ElementRepository
	logRepo        repositories.LogRepository
}

// NewCollectionService creates a new collection service
func NewCollectionService(collectionRepo repositories.CollectionRepository, elementRepo repositories.ElementRepository, logRepo repositories.LogRepository) CollectionService {
	return &collectionService{
		collectionRepo: collectionRepo,
		elementRepo:    elementRepo,
		logRepo:        logRepo,
	}
}

// GetAll retrieves all collections
func (s *collectionService) GetAll() ([]models.Collection, error) {
	return s.collectionRepo.GetAll()
}

// GetByID retrieves a collection by ID
func (s *collectionService) GetByID(id int64) (*models.Collection, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid collection ID: %d", id)
	}
	return s.collectionRepo.GetByID(id)
}

// Create creates a new collection and logs its creation
func (s *collectionService) Create(form *models.CollectionForm, actorID *int64) (*models.Collection, error) {
	if errors := form.Validate(); len(errors) > 0 {
		return nil, fmt.Errorf("validation failed: %s", strings.Join(errors, ", "))
	}

	collection := &models.Collection{
		Name:        strings.TrimSpace(form.Name),
		Description: form.Description,
		DateAdded:   time.Now().UTC(),
	}

	if err := s.collectionRepo.Create(collection); err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	if err := s.appendEntry(models.EntryElementCreated, collection, actorID, ""); err != nil {
		return nil, err
	}

	return collection, nil
}

// Update updates an existing collection and logs the field diff
func (s *collectionService) Update(id int64, form *models.CollectionForm, actorID *int64) (*models.Collection, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid collection ID: %d", id)
	}

	if errors := form.Validate(); len(errors) > 0 {
		return nil, fmt.Errorf("validation failed: %s", strings.Join(errors, ", "))
	}

	collection, err := s.collectionRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("collection not found: %w", err)
	}

	diff := make(map[string]fieldChange)
	if name := strings.TrimSpace(form.Name); name != collection.Name {
		diff["name"] = fieldChange{From: collection.Name, To: name}
	}
	if form.Description != collection.Description {
		diff["description"] = fieldChange{From: collection.Description, To: form.Description}
	}

	if len(diff) == 0 {
		return collection, nil
	}

	collection.Name = strings.TrimSpace(form.Name)
	collection.Description = form.Description

	if err := s.collectionRepo.Update(collection); err != nil {
		return nil, fmt.Errorf("failed to update collection: %w", err)
	}

	payload, err := json.Marshal(diff)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize edit payload: %w", err)
	}

	if err := s.appendEntry(models.EntryElementEdited, collection, actorID, string(payload)); err != nil {
		return nil, err
	}

	return collection, nil
}

// Delete deletes a collection, logging a snapshot so it can be undeleted.
// Member elements are detached by the schema, not deleted.
func (s *collectionService) Delete(id int64, actorID *int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid collection ID: %d", id)
	}

	collection, err := s.collectionRepo.GetByID(id)
	if err != nil {
		return fmt.Errorf("collection not found: %w", err)
	}

	snapshot, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("failed to serialize collection snapshot: %w", err)
	}

	if err := s.collectionRepo.Delete(id); err != nil {
		return err
	}

	return s.appendEntry(models.EntryElementDeleted, collection, actorID, string(snapshot))
}

// RemoveElement detaches an element from the collection and logs the
// removal on the collection's stream
func (s *collectionService) RemoveElement(collectionID, elementID int64, actorID *int64) error {
	collection, err := s.collectionRepo.GetByID(collectionID)
	if err != nil {
		return fmt.Errorf("collection not found: %w", err)
	}

	element, err := s.elementRepo.GetByID(elementID)
	if err != nil {
		return fmt.Errorf("element not found: %w", err)
	}

	if element.CollectionID == nil || *element.CollectionID != collectionID {
		return fmt.Errorf("element %d is not in collection %d", elementID, collectionID)
	}

	if err := s.elementRepo.DetachFromCollection(elementID); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]interface{}{
		"element_id":   element.ID,
		"element_name": element.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to serialize removal payload: %w", err)
	}

	return s.appendEntry(models.EntryCollectionElementDeleted, collection, actorID, string(payload))
}

// appendEntry writes one log entry for the collection's stream
func (s *collectionService) appendEntry(kind models.EntryKind, collection *models.Collection, actorID *int64, payload string) error {
	target, err := models.TargetFor(collection)
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
