package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLogEntry is append-only. A nil UserID means the system acted.
type AuditLogEntry struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    *uuid.UUID `gorm:"type:uuid;index"`
	Action    string     `gorm:"not null"`
	Table     string     `gorm:"column:table_name;not null"`
	RecordID  string     `gorm:"not null"`
	CreatedAt time.Time  `gorm:"index"`
}

// TableName keeps the singular table name used by the dashboard.
func (AuditLogEntry) TableName() string { return "audit_log" }
