package capacity

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/axmednajaad/shoptrack-admin/internal/apperr"
	"github.com/axmednajaad/shoptrack-admin/internal/model"
)

// Check is the result of a capacity probe: how many members a tenant has
// against its configured maximum. Membership counts every user row
// referencing the tenant, regardless of status.
type Check struct {
	CurrentCount int64 `json:"current_count"`
	MaxUsers     int   `json:"max_users"`
}

// CanAdd reports whether the tenant can accept one more member.
func (c Check) CanAdd() bool {
	return c.CurrentCount < int64(c.MaxUsers)
}

// CanAddUser probes whether the tenant can accept one more member. It is a
// pure read used for pre-flight checks and display; the race between this
// probe and a later insert is closed by AdmitUser, not here.
func CanAddUser(db *gorm.DB, tenantID uint) (Check, error) {
	var tenant model.Tenant
	if err := db.Select("id", "max_users").First(&tenant, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Check{}, apperr.ErrTenantNotFound
		}
		return Check{}, err
	}

	var count int64
	if err := db.Model(&model.User{}).Where("tenant_id = ?", tenantID).Count(&count).Error; err != nil {
		return Check{}, err
	}

	return Check{CurrentCount: count, MaxUsers: tenant.MaxUsers}, nil
}

// CanAssignToTenant checks whether an existing user may be moved to the
// target tenant. Reassignment to the tenant the user already belongs to is
// a no-op and always succeeds without touching the store.
func CanAssignToTenant(db *gorm.DB, currentTenantID *uint, targetTenantID uint) error {
	if currentTenantID != nil && *currentTenantID == targetTenantID {
		return nil
	}

	check, err := CanAddUser(db, targetTenantID)
	if err != nil {
		return err
	}
	if !check.CanAdd() {
		return &apperr.TenantAtCapacityError{CurrentCount: check.CurrentCount, MaxUsers: check.MaxUsers}
	}
	return nil
}

// AdmitUser runs the membership-changing write inside one transaction that
// holds a row lock on the tenant, re-counting members under the lock. Two
// concurrent admissions against the last free slot serialize here, so the
// final member count never exceeds max_users.
func AdmitUser(db *gorm.DB, tenantID uint, admit func(tx *gorm.DB) error) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var tenant model.Tenant
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "max_users").
			First(&tenant, tenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrTenantNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&model.User{}).Where("tenant_id = ?", tenantID).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(tenant.MaxUsers) {
			return &apperr.TenantAtCapacityError{CurrentCount: count, MaxUsers: tenant.MaxUsers}
		}

		return admit(tx)
	})
}
