package audit

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditRepo "github.com/mrlokans/library/internal/database/audit"
	"github.com/mrlokans/library/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	return NewService(auditRepo.NewRepository(db)), db
}

func TestService_RecordEvent(t *testing.T) {
	svc, db := setupTestService(t)

	svc.RecordEvent(entities.AuditActionAddBook, "book", 3, "Added book 'Dune'", nil)

	var events []entities.AuditEvent
	require.NoError(t, db.Find(&events).Error)
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, entities.AuditActionAddBook, event.Action)
	assert.Equal(t, "book", event.EntityType)
	require.NotNil(t, event.EntityID)
	assert.Equal(t, uint(3), *event.EntityID)
	assert.Equal(t, entities.AuditStatusSuccess, event.Status)
	assert.Empty(t, event.ErrorMsg)
}

func TestService_RecordEvent_Failure(t *testing.T) {
	svc, db := setupTestService(t)

	svc.RecordEvent(entities.AuditActionCheckOutBook, "book", 0, "Check out book 9", errors.New("book 9 not found"))

	var event entities.AuditEvent
	require.NoError(t, db.First(&event).Error)
	assert.Equal(t, entities.AuditStatusFailed, event.Status)
	assert.Equal(t, "book 9 not found", event.ErrorMsg)
	assert.Nil(t, event.EntityID)
}

func TestService_RecordEvent_TruncatesLongText(t *testing.T) {
	svc, db := setupTestService(t)

	svc.RecordEvent(entities.AuditActionAddBook, "book", 1, strings.Repeat("x", 800), nil)

	var event entities.AuditEvent
	require.NoError(t, db.First(&event).Error)
	assert.Len(t, event.Description, 500)
	assert.True(t, strings.HasSuffix(event.Description, "..."))
}

func TestService_RecentEventsAndHistory(t *testing.T) {
	svc, _ := setupTestService(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	svc.RecordEvent(entities.AuditActionAddBook, "book", 1, "first", nil)
	svc.RecordEvent(entities.AuditActionAddUser, "user", 1, "second", nil)
	svc.RecordEvent(entities.AuditActionCheckOutBook, "book", 1, "third", nil)

	recent, err := svc.RecentEvents(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "third", recent[0].Description)
	assert.Equal(t, "second", recent[1].Description)

	history, err := svc.EntityHistory("book", 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "first", history[0].Description)
	assert.Equal(t, "third", history[1].Description)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, db := setupTestService(t)
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	svc.now = func() time.Time { return now.Add(-40 * 24 * time.Hour) }
	svc.RecordEvent(entities.AuditActionAddBook, "book", 1, "old", nil)
	svc.now = func() time.Time { return now.Add(-time.Hour) }
	svc.RecordEvent(entities.AuditActionAddBook, "book", 2, "new", nil)

	svc.now = func() time.Time { return now }
	deleted, err := svc.DeleteOldEvents(30 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var count int64
	db.Model(&entities.AuditEvent{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
