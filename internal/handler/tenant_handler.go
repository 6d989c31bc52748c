package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/axmednajaad/shoptrack-admin/internal/apperr"
	"github.com/axmednajaad/shoptrack-admin/internal/capacity"
	"github.com/axmednajaad/shoptrack-admin/internal/model"
	"github.com/axmednajaad/shoptrack-admin/internal/policy"
	"github.com/axmednajaad/shoptrack-admin/pkg/database"
	"github.com/axmednajaad/shoptrack-admin/pkg/logger"
	"github.com/axmednajaad/shoptrack-admin/prometheus"
)

// TenantRequest defines the structure for tenant creation/update requests
type TenantRequest struct {
	Name             string             `json:"name"`
	Address          string             `json:"address"`
	ContactEmail     string             `json:"contact_email"`
	ContactPhone     string             `json:"contact_phone"`
	Status           model.TenantStatus `json:"status"`
	SubscriptionPlan string             `json:"subscription_plan"`
	MaxUsers         *int               `json:"max_users"`
	Settings         string             `json:"settings"`
}

// CreateTenant creates a new tenant. Super admins create tenants freely;
// an unassigned user may create one during self-service onboarding and
// becomes its tenant admin in the same transaction.
func CreateTenant(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("tenant", "create")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	var req TenantRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		return fail(c, apperr.Validation("name is required"))
	}

	maxUsers := 10
	if req.MaxUsers != nil {
		if *req.MaxUsers < 1 {
			return fail(c, apperr.Validation("max_users must be at least 1"))
		}
		maxUsers = *req.MaxUsers
	}

	onboarding := false
	switch caller.Role {
	case policy.RoleSuperAdmin:
	case policy.RoleTenantAdmin, policy.RoleTenantUser:
		// Self-service onboarding is only open to callers not yet
		// attached to a tenant.
		if caller.TenantID != nil {
			return fail(c, apperr.ErrForbidden)
		}
		onboarding = true
	default:
		return fail(c, apperr.ErrForbidden)
	}

	status := model.TenantStatusActive
	if caller.Role == policy.RoleSuperAdmin && req.Status != "" {
		status = req.Status
	}

	plan := req.SubscriptionPlan
	if plan == "" {
		plan = "free"
	}

	createdBy := caller.UserID
	tenant := model.Tenant{
		Name:             req.Name,
		Address:          req.Address,
		ContactEmail:     req.ContactEmail,
		ContactPhone:     req.ContactPhone,
		Status:           status,
		SubscriptionPlan: plan,
		MaxUsers:         maxUsers,
		Settings:         req.Settings,
		CreatedBy:        &createdBy,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&tenant); result.Error != nil {
			return result.Error
		}
		if onboarding {
			// The founding user becomes the tenant's admin.
			updates := map[string]interface{}{
				"tenant_id": tenant.ID,
				"role":      string(policy.RoleTenantAdmin),
			}
			if result := tx.Model(&model.User{}).Where("id = ?", caller.UserID).Updates(updates); result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to create tenant", zap.Error(err))
		prometheus.RecordError("tenant_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant creation failed"})
	}

	log.Info("Tenant created",
		zap.String("name", tenant.Name),
		zap.Uint("id", tenant.ID),
		zap.Bool("onboarding", onboarding))

	return c.JSON(http.StatusCreated, tenant)
}

// ListTenants lists tenants visible to the caller: all of them for a
// super admin (with search and paging), only their own for tenant roles.
func ListTenants(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("tenant", "list")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var tenants []model.Tenant

	switch caller.Role {
	case policy.RoleSuperAdmin:
		params := listParams(c)
		q := applySearch(database.GetDB().Model(&model.Tenant{}), params.Search, "name", "contact_email")
		result := q.Order("created_at DESC").Offset(params.Offset).Limit(params.Limit).Find(&tenants)
		if result.Error != nil {
			log.Error("Failed to list tenants", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve tenants"})
		}
	case policy.RoleTenantAdmin, policy.RoleTenantUser:
		if caller.TenantID == nil {
			return c.JSON(http.StatusOK, []model.Tenant{})
		}
		var tenant model.Tenant
		if result := database.GetDB().First(&tenant, *caller.TenantID); result.Error == nil {
			tenants = append(tenants, tenant)
		}
	default:
		return fail(c, apperr.ErrForbidden)
	}

	return c.JSON(http.StatusOK, tenants)
}

// GetTenant retrieves one tenant, subject to the access policy.
func GetTenant(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("tenant", "read")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var tenant model.Tenant
	if result := database.GetDB().First(&tenant, id); result.Error != nil {
		return fail(c, apperr.ErrTenantNotFound)
	}

	if !policy.CanReadTenant(caller, tenant.ID) {
		// Indistinguishable from a missing row for outsiders.
		log.Warn("Cross-tenant tenant read blocked",
			zap.Uint("tenant_id", tenant.ID),
			zap.Uint("user_id", caller.UserID))
		return fail(c, apperr.ErrTenantNotFound)
	}

	return c.JSON(http.StatusOK, tenant)
}

// UpdateTenant mutates tenant configuration; super admin only.
func UpdateTenant(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("tenant", "update")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if !policy.CanWriteTenant(caller, id) {
		return fail(c, apperr.ErrForbidden)
	}

	var req TenantRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var tenant model.Tenant
	if result := database.GetDB().First(&tenant, id); result.Error != nil {
		return fail(c, apperr.ErrTenantNotFound)
	}

	if req.Name != "" {
		tenant.Name = req.Name
	}
	tenant.Address = req.Address
	tenant.ContactEmail = req.ContactEmail
	tenant.ContactPhone = req.ContactPhone
	if req.Status != "" {
		tenant.Status = req.Status
	}
	if req.SubscriptionPlan != "" {
		tenant.SubscriptionPlan = req.SubscriptionPlan
	}
	if req.MaxUsers != nil {
		if *req.MaxUsers < 1 {
			return fail(c, apperr.Validation("max_users must be at least 1"))
		}
		tenant.MaxUsers = *req.MaxUsers
	}
	if req.Settings != "" {
		tenant.Settings = req.Settings
	}

	if result := database.GetDB().Save(&tenant); result.Error != nil {
		log.Error("Failed to update tenant", zap.Uint("tenant_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update tenant"})
	}

	log.Info("Tenant updated", zap.Uint("tenant_id", tenant.ID), zap.String("name", tenant.Name))
	return c.JSON(http.StatusOK, tenant)
}

// DeleteTenant removes a tenant and everything scoped to it. Soft deletes
// do not fire the store's FK cascade, so the scoped tables are swept in
// the same transaction.
func DeleteTenant(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("tenant", "delete")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if !policy.CanWriteTenant(caller, id) {
		return fail(c, apperr.ErrForbidden)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	var tenant model.Tenant
	if result := database.GetDB().First(&tenant, id); result.Error != nil {
		return fail(c, apperr.ErrTenantNotFound)
	}

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ?", id).Delete(&model.Product{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ?", id).Delete(&model.Category{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ?", id).Delete(&model.Customer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ?", id).Delete(&model.User{}).Error; err != nil {
			return err
		}
		return tx.Delete(&tenant).Error
	})
	if err != nil {
		log.Error("Failed to delete tenant", zap.Uint("tenant_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete tenant"})
	}

	log.Info("Tenant deleted", zap.Uint("tenant_id", id), zap.String("name", tenant.Name))
	return c.JSON(http.StatusOK, echo.Map{"message": "Tenant deleted successfully"})
}

// GetTenantCapacity reports whether the tenant can accept one more member.
func GetTenantCapacity(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("tenant", "capacity")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if !policy.CanReadTenant(caller, id) {
		return fail(c, apperr.ErrTenantNotFound)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	check, err := capacity.CanAddUser(database.GetDB(), id)
	if err != nil {
		return fail(c, err)
	}

	prometheus.SetUsersPerTenant(id, check.CurrentCount)
	log.Debug("Tenant capacity probed",
		zap.Uint("tenant_id", id),
		zap.Int64("current_count", check.CurrentCount),
		zap.Int("max_users", check.MaxUsers))

	return c.JSON(http.StatusOK, echo.Map{
		"can_add":       check.CanAdd(),
		"current_count": check.CurrentCount,
		"max_users":     check.MaxUsers,
	})
}
