package audit

import (
	"log"
	"time"

	"github.com/mrlokans/library/internal/database/audit"
	"github.com/mrlokans/library/internal/entities"
)

// Service records catalog operations into the audit_events table.
type Service struct {
	repo *audit.Repository
	now  func() time.Time
}

func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// RecordEvent stores one event. Failures are logged and never reach the
// caller, so auditing cannot fail a catalog operation.
func (s *Service) RecordEvent(action entities.AuditAction, entityType string, entityID uint, description string, err error) {
	event := &entities.AuditEvent{
		Action:      action,
		EntityType:  entityType,
		Description: truncate(description, 500),
		Status:      entities.AuditStatusSuccess,
		CreatedAt:   s.now(),
	}
	if entityID != 0 {
		id := entityID
		event.EntityID = &id
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	if logErr := s.repo.LogEvent(event); logErr != nil {
		log.Printf("Failed to log audit event %s: %v", action, logErr)
	}
}

// RecentEvents returns up to limit events, newest first.
func (s *Service) RecentEvents(limit int) ([]entities.AuditEvent, error) {
	return s.repo.GetRecentEvents(limit)
}

// EntityHistory returns every event recorded for one book or user.
func (s *Service) EntityHistory(entityType string, entityID uint) ([]entities.AuditEvent, error) {
	return s.repo.GetEventsForEntity(entityType, entityID)
}

// DeleteOldEvents removes events older than the retention window.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(s.now().Add(-retention))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
