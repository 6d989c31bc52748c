package model

import (
	"time"

	"gorm.io/gorm"
)

// TenantStatus enumerates the lifecycle states of a tenant.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusInactive  TenantStatus = "inactive"
	TenantStatusSuspended TenantStatus = "suspended"
)

// Tenant represents one business account. The tenant is the unit of data
// isolation: every scoped row carries its tenant_id and is never visible
// across tenants.
type Tenant struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	Name             string         `json:"name" gorm:"type:varchar(100);not null"`
	Address          string         `json:"address,omitempty" gorm:"type:text"`
	ContactEmail     string         `json:"contact_email,omitempty" gorm:"type:varchar(100)"`
	ContactPhone     string         `json:"contact_phone,omitempty" gorm:"type:varchar(30)"`
	Status           TenantStatus   `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	SubscriptionPlan string         `json:"subscription_plan" gorm:"type:varchar(50);default:'free'"`
	MaxUsers         int            `json:"max_users" gorm:"not null;default:10;check:max_users >= 1"`
	Settings         string         `json:"settings,omitempty" gorm:"type:jsonb"`
	CreatedBy        *uint          `json:"created_by,omitempty" gorm:"index"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}
