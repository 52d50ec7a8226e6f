package entities

import "time"

type AuditAction string

const (
	AuditActionAddBook        AuditAction = "add_book"
	AuditActionDeleteBook     AuditAction = "delete_book"
	AuditActionEditBook       AuditAction = "edit_book"
	AuditActionAddUser        AuditAction = "add_user"
	AuditActionCheckOutBook   AuditAction = "checkout_book"
	AuditActionReturnBook     AuditAction = "return_book"
	AuditActionResyncSnapshot AuditAction = "resync_snapshot"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Action      AuditAction `gorm:"index;size:50" json:"action"`
	EntityType  string      `gorm:"size:50" json:"entity_type"` // "book", "user", "snapshot"
	EntityID    *uint       `gorm:"index" json:"entity_id,omitempty"`
	Description string      `gorm:"size:500" json:"description"` // Human-readable summary
	Status      AuditStatus `gorm:"size:20" json:"status"`
	ErrorMsg    string      `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
