package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleOperator = "operator"
	RoleManager  = "manager"
)

// User stores system users with role-based access.
// Users referenced by sales or logs are deactivated, never deleted.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex:uq_users_username;not null"`
	Name         string    `gorm:"not null;default:''"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"type:varchar(20);not null"`
	Active       bool      `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
