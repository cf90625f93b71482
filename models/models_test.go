package models

import (
	"errors"
	"testing"
	"time"
)

// Test target addressing from an explicit (category, id) pair
func TestTargetOf(t *testing.T) {
	target, err := TargetOf(CategoryElement, 42)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if target.Type != TargetElement || target.ID != 42 {
		t.Errorf("Expected ELEMENT/42, got %s/%d", target.Type, target.ID)
	}

	target, err = TargetOf(CategoryCollection, 7)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if target.Type != TargetCollection || target.ID != 7 {
		t.Errorf("Expected COLLECTION/7, got %s/%d", target.Type, target.ID)
	}
}

// Test that an unmapped category fails rather than producing a bad address
func TestTargetOfUnmappedCategory(t *testing.T) {
	_, err := TargetOf(Category("widget"), 1)
	if err == nil {
		t.Fatal("Expected error for unmapped category")
	}
	if !errors.Is(err, ErrUnmappedCategory) {
		t.Errorf("Expected ErrUnmappedCategory, got: %v", err)
	}
}

// Test that addressing via a live entity reference matches the explicit pair
func TestTargetForMatchesTargetOf(t *testing.T) {
	element := &Element{ID: 42}
	byEntity, err := TargetFor(element)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	byPair, err := TargetOf(CategoryElement, 42)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if byEntity != byPair {
		t.Errorf("Expected identical targets, got %+v and %+v", byEntity, byPair)
	}

	collection := &Collection{ID: 7}
	byEntity, err = TargetFor(collection)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if byEntity.Type != TargetCollection || byEntity.ID != 7 {
		t.Errorf("Expected COLLECTION/7, got %+v", byEntity)
	}
}

// Test entry kind validity
func TestEntryKindValid(t *testing.T) {
	valid := []EntryKind{
		EntryElementCreated,
		EntryElementEdited,
		EntryElementDeleted,
		EntryCollectionElementDeleted,
	}
	for _, kind := range valid {
		if !kind.Valid() {
			t.Errorf("Expected kind %q to be valid", kind)
		}
	}

	if EntryKind("element_renamed").Valid() {
		t.Error("Expected unknown kind to be invalid")
	}
}

// Test global entries are distinguishable from stream entries
func TestLogEntryTarget(t *testing.T) {
	entry := LogEntry{
		ID:         1,
		Timestamp:  time.Now(),
		Kind:       EntryElementCreated,
		TargetType: TargetElement,
		TargetID:   5,
	}

	target, ok := entry.Target()
	if !ok {
		t.Fatal("Expected entry to have a target")
	}
	if target.Type != TargetElement || target.ID != 5 {
		t.Errorf("Expected ELEMENT/5, got %+v", target)
	}

	global := LogEntry{ID: 2, Timestamp: time.Now(), Kind: EntryElementCreated}
	if global.HasTarget() {
		t.Error("Expected entry without target type to be global")
	}
	if _, ok := global.Target(); ok {
		t.Error("Expected no target for global entry")
	}
}

// Test ElementForm validation
func TestElementFormValidation(t *testing.T) {
	validForm := ElementForm{
		Name: "Pump Assembly",
		Body: "Main pump assembly record",
	}
	errs := validForm.Validate()
	if len(errs) != 0 {
		t.Errorf("Expected no errors for valid form, got: %v", errs)
	}

	badCollection := int64(-1)
	invalidForm := ElementForm{
		Name:         "", // Empty name
		CollectionID: &badCollection,
	}
	errs = invalidForm.Validate()
	if len(errs) != 2 {
		t.Errorf("Expected 2 errors for invalid form, got: %v", errs)
	}
}

// Test CollectionForm validation
func TestCollectionFormValidation(t *testing.T) {
	validForm := CollectionForm{Name: "Pumps"}
	errs := validForm.Validate()
	if len(errs) != 0 {
		t.Errorf("Expected no errors for valid form, got: %v", errs)
	}

	invalidForm := CollectionForm{Name: ""}
	errs = invalidForm.Validate()
	if len(errs) != 1 {
		t.Errorf("Expected 1 error for invalid form, got: %v", errs)
	}
}

// Test timestamp round trip through the RFC 3339 helpers
func TestTimestampRoundTrip(t *testing.T) {
	original := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	parsed, err := ParseTimestamp(FormatTimestamp(original))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !parsed.Equal(original) {
		t.Errorf("Expected %v, got %v", original, parsed)
	}

	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Error("Expected error for invalid timestamp")
	}
}
