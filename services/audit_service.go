package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/ohaus/element-audit/models"
	"github.com/ohaus/element-audit/repositories"
)

// ErrNoDeletionRecord indicates that undelete data was requested for a
// target that has no deletion entry. This is a hard error: the caller's
// intent presupposes a prior deletion, so there is nothing to restore from.
var ErrNoDeletionRecord = errors.New("no deletion record for target")

// timeTravelKinds are the mutations that must be played backward to
// reconstruct a past state: field edits and child removals. Creation and
// deletion entries bound existence instead and are excluded.
var timeTravelKinds = []models.EntryKind{
	models.EntryElementEdited,
	models.EntryCollectionElementDeleted,
}

// AuditService answers retroactive questions over the append-only audit
// log: per-entity history, undelete data, time-travel reconstruction data,
// existence at an instant, and actor attribution. It is strictly read-only
// with respect to the log.
//
// All queries order by (timestamp, id) so results stay deterministic when
// entries share a timestamp. Timestamp bounds are inclusive throughout:
// TimeTravelData includes an edit exactly at the cutoff, and ExistedAt
// treats a creation exactly at the queried instant as not yet existing.
// The two conventions must match or callers get off-by-one reconstructions.
type AuditService interface {
	ElementHistory(target models.TargetRef, dir repositories.SortDirection, limit, offset int) ([]models.LogEntry, error)
	UndeleteData(targetType models.TargetType, id int64) (*models.LogEntry, error)
	TimeTravelData(target models.TargetRef, until time.Time) ([]models.LogEntry, error)
	ExistedAt(target models.TargetRef, at time.Time) (bool, error)
	LastEditingUser(target models.TargetRef) (*models.User, error)
	CreatingUser(target models.TargetRef) (*models.User, error)
	TargetElement(entry *models.LogEntry) (models.Auditable, error)
}

// auditService implements AuditService interface
type auditService struct {
	logRepo  repositories.LogRepository
	resolver EntityResolver
}

// NewAuditService creates a new audit service
func NewAuditService(logRepo repositories.LogRepository, resolver EntityResolver) AuditService {
	return &auditService{
		logRepo:  logRepo,
		resolver: resolver,
	}
}

// ElementHistory returns the target's full change history ordered by
// timestamp in the requested direction (newest first by default), paginated
// by limit/offset. An empty stream yields an empty result, not an error.
func (s *auditService) ElementHistory(target models.TargetRef, dir repositories.SortDirection, limit, offset int) ([]models.LogEntry, error) {
	if dir == "" {
		dir = repositories.SortDesc
	}

	filter := repositories.LogFilter{Target: &target}
	return s.logRepo.Query(filter, dir, limit, offset)
}

// UndeleteData returns the most recent deletion entry for the target, whose
// payload carries the serialized entity needed to restore it. Returns
// ErrNoDeletionRecord when the target was never deleted.
func (s *auditService) UndeleteData(targetType models.TargetType, id int64) (*models.LogEntry, error) {
	target := models.TargetRef{Type: targetType, ID: id}
	filter := repositories.LogFilter{
		Target: &target,
		Kinds:  []models.EntryKind{models.EntryElementDeleted},
	}

	entries, err := s.logRepo.Query(filter, repositories.SortDesc, 1, 0)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s/%d", ErrNoDeletionRecord, targetType, id)
	}

	return &entries[0], nil
}

// TimeTravelData returns every mutation that must be undone, newest first,
// to roll the target back to its state as of until. The bound is inclusive:
// an edit exactly at until had already taken effect at that instant and is
// needed to reverse past it.
func (s *auditService) TimeTravelData(target models.TargetRef, until time.Time) ([]models.LogEntry, error) {
	filter := repositories.LogFilter{
		Target: &target,
		Kinds:  timeTravelKinds,
		Since:  &until,
	}

	return s.logRepo.Query(filter, repositories.SortDesc, 0, 0)
}

// ExistedAt reports whether the target had already been created by the
// given instant. A creation entry at or after the instant means it had not.
// Deletion is not considered: "existed" means "had been created", not
// "currently alive".
func (s *auditService) ExistedAt(target models.TargetRef, at time.Time) (bool, error) {
	filter := repositories.LogFilter{
		Target: &target,
		Kinds:  []models.EntryKind{models.EntryElementCreated},
		Since:  &at,
	}

	count, err := s.logRepo.Count(filter)
	if err != nil {
		return false, err
	}

	return count == 0, nil
}

// LastEditingUser returns the actor of the target's most recent edit, or
// nil when the target was never edited or the actor is unknown.
func (s *auditService) LastEditingUser(target models.TargetRef) (*models.User, error) {
	return s.lastActor(target, models.EntryElementEdited)
}

// CreatingUser returns the actor of the target's most recent creation
// entry, or nil when no creation was logged or the actor is unknown.
func (s *auditService) CreatingUser(target models.TargetRef) (*models.User, error) {
	return s.lastActor(target, models.EntryElementCreated)
}

// lastActor returns the user attributed to the newest entry of the given
// kind in the target's stream. The store resolves the user by join, so a
// deleted user comes back nil rather than as a dangling reference. No
// matching entry is a valid outcome, not an error.
func (s *auditService) lastActor(target models.TargetRef, kind models.EntryKind) (*models.User, error) {
	filter := repositories.LogFilter{
		Target: &target,
		Kinds:  []models.EntryKind{kind},
	}

	entries, err := s.logRepo.Query(filter, repositories.SortDesc, 1, 0)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, nil
	}

	return entries[0].User, nil
}

// TargetElement resolves the entry's target back to a live entity. Returns
// nil both for entries without a target and for targets that no longer
// exist; callers that need the distinction must check HasTarget first.
func (s *auditService) TargetElement(entry *models.LogEntry) (models.Auditable, error) {
	target, ok := entry.Target()
	if !ok {
		return nil, nil
	}

	return s.resolver.Resolve(target)
}
