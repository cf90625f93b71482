package services

import (
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/ohaus/element-audit/database"
	"github.com/ohaus/element-audit/models"
	"github.com/ohaus/element-audit/repositories"
)

// epoch is the base instant seeded entries hang off; at(n) is n seconds in
const epochYear = 2025

func at(seconds int) time.Time {
	return time.Date(epochYear, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(seconds) * time.Second)
}

func setupTestDB(t *testing.T) *sql.DB {
	dbPath := "test_" + time.Now().Format("20060102150405.000000000") + ".db"

	t.Cleanup(func() {
		database.CloseDB()
		os.Remove(dbPath)
	})

	if err := database.InitializeDatabase(dbPath); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	return database.GetDB()
}

// AuditServiceTestSuite exercises the audit query engine over a real store
type AuditServiceTestSuite struct {
	suite.Suite
	repos   *repositories.Repositories
	service AuditService
}

// SetupTest sets up a fresh database before each test
func (suite *AuditServiceTestSuite) SetupTest() {
	db := setupTestDB(suite.T())
	suite.repos = repositories.NewRepositories(db)
	resolver := NewEntityResolver(suite.repos.Element, suite.repos.Collection)
	suite.service = NewAuditService(suite.repos.Log, resolver)
}

// seed appends one entry with a controlled timestamp and returns it
func (suite *AuditServiceTestSuite) seed(target models.TargetRef, kind models.EntryKind, ts time.Time, userID *int64, payload string) *models.LogEntry {
	entry := &models.LogEntry{
		Timestamp:  ts,
		Kind:       kind,
		TargetType: target.Type,
		TargetID:   target.ID,
		UserID:     userID,
		Payload:    payload,
	}
	require.NoError(suite.T(), suite.repos.Log.Append(entry))
	return entry
}

func elementTarget(id int64) models.TargetRef {
	return models.TargetRef{Type: models.TargetElement, ID: id}
}

func (suite *AuditServiceTestSuite) TestElementHistory_ReturnsAllEntriesAndReversesOrder() {
	target := elementTarget(1)
	suite.seed(target, models.EntryElementCreated, at(100), nil, "")
	suite.seed(target, models.EntryElementEdited, at(200), nil, "{}")
	suite.seed(target, models.EntryElementDeleted, at(300), nil, "{}")

	// Another stream must not leak in
	suite.seed(elementTarget(2), models.EntryElementCreated, at(100), nil, "")

	desc, err := suite.service.ElementHistory(target, repositories.SortDesc, 0, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), desc, 3)
	assert.Equal(suite.T(), models.EntryElementDeleted, desc[0].Kind)

	asc, err := suite.service.ElementHistory(target, repositories.SortAsc, 0, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), asc, 3)

	// Reversing the requested order reverses the sequence exactly
	for i := range desc {
		assert.Equal(suite.T(), desc[i].ID, asc[len(asc)-1-i].ID)
	}
}

func (suite *AuditServiceTestSuite) TestElementHistory_DefaultsToNewestFirstAndPaginates() {
	target := elementTarget(1)
	for i := 0; i < 5; i++ {
		suite.seed(target, models.EntryElementEdited, at(100+i), nil, "{}")
	}

	page, err := suite.service.ElementHistory(target, "", 2, 1)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), page, 2)

	// Newest first, offset skips the newest
	assert.True(suite.T(), page[0].Timestamp.Equal(at(103)), "expected %v, got %v", at(103), page[0].Timestamp)
	assert.True(suite.T(), page[1].Timestamp.Equal(at(102)))
}

func (suite *AuditServiceTestSuite) TestElementHistory_EmptyStream() {
	history, err := suite.service.ElementHistory(elementTarget(404), repositories.SortDesc, 0, 0)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), history)
}

func (suite *AuditServiceTestSuite) TestElementHistory_EntityReferenceAndExplicitPairAgree() {
	element := &models.Element{ID: 7, Name: "Pump", Active: true, DateAdded: at(0)}
	byEntity, err := models.TargetFor(element)
	require.NoError(suite.T(), err)
	byPair, err := models.TargetOf(models.CategoryElement, 7)
	require.NoError(suite.T(), err)

	suite.seed(byPair, models.EntryElementCreated, at(100), nil, "")
	suite.seed(byPair, models.EntryElementEdited, at(200), nil, "{}")

	fromEntity, err := suite.service.ElementHistory(byEntity, repositories.SortDesc, 0, 0)
	assert.NoError(suite.T(), err)
	fromPair, err := suite.service.ElementHistory(byPair, repositories.SortDesc, 0, 0)
	assert.NoError(suite.T(), err)

	assert.Equal(suite.T(), fromPair, fromEntity)
}

func (suite *AuditServiceTestSuite) TestUndeleteData_NoDeletionRecord() {
	target := elementTarget(1)
	suite.seed(target, models.EntryElementCreated, at(100), nil, "")

	_, err := suite.service.UndeleteData(models.TargetElement, 1)
	assert.ErrorIs(suite.T(), err, ErrNoDeletionRecord)
}

func (suite *AuditServiceTestSuite) TestUndeleteData_ReturnsNewestDeletion() {
	target := elementTarget(1)
	suite.seed(target, models.EntryElementCreated, at(100), nil, "")
	suite.seed(target, models.EntryElementDeleted, at(300), nil, `{"generation":1}`)
	suite.seed(target, models.EntryElementCreated, at(400), nil, "")
	suite.seed(target, models.EntryElementDeleted, at(500), nil, `{"generation":2}`)

	entry, err := suite.service.UndeleteData(models.TargetElement, 1)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), entry.Timestamp.Equal(at(500)))
	assert.Equal(suite.T(), `{"generation":2}`, entry.Payload)
}

func (suite *AuditServiceTestSuite) TestTimeTravelData_FiltersKindAndBoundary() {
	target := elementTarget(1)
	suite.seed(target, models.EntryElementCreated, at(100), nil, "")
	suite.seed(target, models.EntryElementEdited, at(150), nil, `{"n":1}`)
	boundary := suite.seed(target, models.EntryElementEdited, at(200), nil, `{"n":2}`)
	suite.seed(target, models.EntryCollectionElementDeleted, at(250), nil, `{"element_id":9}`)
	suite.seed(target, models.EntryElementEdited, at(300), nil, `{"n":3}`)
	suite.seed(target, models.EntryElementDeleted, at(350), nil, "{}")

	entries, err := suite.service.TimeTravelData(target, at(200))
	assert.NoError(suite.T(), err)

	// Only Edited and CollectionElementDeleted at or after the cutoff,
	// newest first. The entry exactly at the cutoff is included.
	require.Len(suite.T(), entries, 3)
	assert.True(suite.T(), entries[0].Timestamp.Equal(at(300)))
	assert.Equal(suite.T(), models.EntryCollectionElementDeleted, entries[1].Kind)
	assert.Equal(suite.T(), boundary.ID, entries[2].ID)

	for i := 0; i < len(entries)-1; i++ {
		assert.False(suite.T(), entries[i].Timestamp.Before(entries[i+1].Timestamp))
	}
}

func (suite *AuditServiceTestSuite) TestExistedAt_Boundaries() {
	target := elementTarget(1)
	suite.seed(target, models.EntryElementCreated, at(100), nil, "")
	suite.seed(target, models.EntryElementDeleted, at(300), nil, "{}")

	// Before creation: did not exist
	existed, err := suite.service.ExistedAt(target, at(50))
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), existed)

	// A creation exactly at the instant counts as not yet existing,
	// consistent with the inclusive time-travel boundary
	existed, err = suite.service.ExistedAt(target, at(100))
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), existed)

	// After creation: existed. Deletion is invisible to this check.
	existed, err = suite.service.ExistedAt(target, at(150))
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), existed)

	existed, err = suite.service.ExistedAt(target, at(400))
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), existed)
}

func (suite *AuditServiceTestSuite) TestExistedAt_Monotonic() {
	target := elementTarget(1)
	suite.seed(target, models.EntryElementCreated, at(100), nil, "")

	// If the entity did not exist at t, it did not exist at any earlier t
	instants := []int{40, 60, 80, 100}
	for _, s := range instants {
		existed, err := suite.service.ExistedAt(target, at(s))
		assert.NoError(suite.T(), err)
		assert.False(suite.T(), existed, "expected not existed at +%ds", s)
	}
}

func (suite *AuditServiceTestSuite) TestLastEditingUser_TieBreakOnSameTimestamp() {
	alice := suite.upsertUser("auth0|alice", "Alice")
	bob := suite.upsertUser("auth0|bob", "Bob")

	target := elementTarget(1)
	suite.seed(target, models.EntryElementCreated, at(100), &alice.ID, "")

	// Two edits at the same logical instant; the surrogate id decides
	first := suite.seed(target, models.EntryElementEdited, at(200), &alice.ID, "{}")
	second := suite.seed(target, models.EntryElementEdited, at(200), &bob.ID, "{}")
	require.Less(suite.T(), first.ID, second.ID)

	user, err := suite.service.LastEditingUser(target)
	assert.NoError(suite.T(), err)
	require.NotNil(suite.T(), user)
	assert.Equal(suite.T(), "Bob", user.Name)
}

func (suite *AuditServiceTestSuite) TestCreatingUser() {
	ada := suite.upsertUser("auth0|ada", "Ada")

	target := elementTarget(1)
	suite.seed(target, models.EntryElementCreated, at(100), &ada.ID, "")
	suite.seed(target, models.EntryElementEdited, at(200), nil, "{}")

	user, err := suite.service.CreatingUser(target)
	assert.NoError(suite.T(), err)
	require.NotNil(suite.T(), user)
	assert.Equal(suite.T(), "Ada", user.Name)
}

func (suite *AuditServiceTestSuite) TestActorAttribution_AbsentIsNotAnError() {
	target := elementTarget(1)

	// No entries at all
	user, err := suite.service.LastEditingUser(target)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), user)

	// An unattributed creation
	suite.seed(target, models.EntryElementCreated, at(100), nil, "")
	user, err = suite.service.CreatingUser(target)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), user)
}

func (suite *AuditServiceTestSuite) TestActorAttribution_DeletedUserResolvesToNil() {
	eve := suite.upsertUser("auth0|eve", "Eve")

	target := elementTarget(1)
	suite.seed(target, models.EntryElementEdited, at(200), &eve.ID, "{}")

	require.NoError(suite.T(), suite.repos.User.Delete(eve.ID))

	user, err := suite.service.LastEditingUser(target)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), user)
}

func (suite *AuditServiceTestSuite) TestTargetElement_ResolvesLiveEntity() {
	element := &models.Element{Name: "Pump", Active: true, DateAdded: at(0)}
	require.NoError(suite.T(), suite.repos.Element.Create(element))

	target := elementTarget(element.ID)
	entry := suite.seed(target, models.EntryElementCreated, at(100), nil, "")

	resolved, err := suite.service.TargetElement(entry)
	assert.NoError(suite.T(), err)
	require.NotNil(suite.T(), resolved)
	assert.Equal(suite.T(), element.ID, resolved.AuditID())
	assert.Equal(suite.T(), models.CategoryElement, resolved.AuditCategory())
}

func (suite *AuditServiceTestSuite) TestTargetElement_NilForGoneAndGlobal() {
	// Target no longer in the live store
	entry := suite.seed(elementTarget(12345), models.EntryElementDeleted, at(100), nil, "{}")
	resolved, err := suite.service.TargetElement(entry)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), resolved)

	// Global entry with no target
	global := &models.LogEntry{Timestamp: at(100), Kind: models.EntryElementCreated}
	require.NoError(suite.T(), suite.repos.Log.Append(global))
	resolved, err = suite.service.TargetElement(global)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), resolved)
}

// upsertUser stores a user row for attribution tests
func (suite *AuditServiceTestSuite) upsertUser(subject, name string) *models.User {
	user := &models.User{Subject: subject, Name: name}
	require.NoError(suite.T(), suite.repos.User.Upsert(user))
	return user
}

func TestAuditServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuditServiceTestSuite))
}
