package model

import (
	"time"

	"gorm.io/gorm"
)

// Customer represents an end customer of one tenant. The tenant reference
// is required and never changes after creation.
type Customer struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Email     *string        `json:"email,omitempty" gorm:"type:varchar(100);uniqueIndex:idx_customers_email,where:deleted_at IS NULL"`
	Phone     string         `json:"phone,omitempty" gorm:"type:varchar(30)"`
	Address   string         `json:"address,omitempty" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Tenant *Tenant `json:"-" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
}
