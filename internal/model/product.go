package model

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a sellable item belonging to one tenant.
// The cost/price and stock constraints are enforced both here (check
// constraints, authoritative) and in the handlers (pre-flight validation).
type Product struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	TenantID    uint           `json:"tenant_id" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	Price       float64        `json:"price" gorm:"not null;check:price > 0"`
	Cost        float64        `json:"cost" gorm:"not null;default:0;check:cost >= 0 AND cost <= price"`
	Stock       int            `json:"stock_quantity" gorm:"not null;default:0;check:stock >= 0"`
	CategoryID  *uint          `json:"category_id,omitempty" gorm:"index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Tenant   *Tenant   `json:"-" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}
