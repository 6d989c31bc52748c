package model

import (
	"time"

	"gorm.io/gorm"
)

// Category represents a product grouping. Names are unique within a
// tenant, not globally. Deletion is refused while any product still
// references the category.
type Category struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	TenantID    uint           `json:"tenant_id" gorm:"uniqueIndex:idx_categories_tenant_name;not null"`
	Name        string         `json:"name" gorm:"type:varchar(100);uniqueIndex:idx_categories_tenant_name,where:deleted_at IS NULL;not null"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Tenant *Tenant `json:"-" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
}
