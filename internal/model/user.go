package model

import (
	"time"

	"gorm.io/gorm"
)

// UserStatus enumerates the lifecycle states of a user account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// User represents one human identity and its profile row.
// TenantID is null only for super admins; tenant-scoped roles must
// always carry a tenant reference.
type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Email        string         `json:"email" gorm:"type:varchar(100);uniqueIndex:idx_users_email,where:deleted_at IS NULL;not null"`
	PasswordHash string         `json:"-" gorm:"type:varchar(255)"`
	Role         string         `json:"role" gorm:"type:varchar(30);not null;default:'tenant_user'"`
	TenantID     *uint          `json:"tenant_id,omitempty" gorm:"index"`
	FullName     string         `json:"full_name" gorm:"type:varchar(100)"`
	Status       UserStatus     `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	Permissions  string         `json:"permissions,omitempty" gorm:"type:jsonb"`
	CreatedBy    *uint          `json:"created_by,omitempty" gorm:"index"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
}
