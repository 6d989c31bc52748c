package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/axmednajaad/shoptrack-admin/internal/apperr"
	"github.com/axmednajaad/shoptrack-admin/internal/capacity"
	"github.com/axmednajaad/shoptrack-admin/internal/model"
	"github.com/axmednajaad/shoptrack-admin/internal/policy"
	"github.com/axmednajaad/shoptrack-admin/pkg/database"
	"github.com/axmednajaad/shoptrack-admin/pkg/logger"
	"github.com/axmednajaad/shoptrack-admin/prometheus"
)

// UserRequest defines the structure for user creation/update requests
type UserRequest struct {
	Email       string           `json:"email"`
	Password    string           `json:"password"`
	FullName    string           `json:"full_name"`
	Role        string           `json:"role"`
	TenantID    *uint            `json:"tenant_id"`
	Status      model.UserStatus `json:"status"`
	Permissions string           `json:"permissions"`
}

// CreateUser creates a user account. Super admins may create any role;
// tenant admins only tenant_user accounts inside their own tenant. When
// the new user is attached to a tenant the insert goes through the
// capacity-guarded admission so the member count cannot overshoot.
func CreateUser(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("user", "create")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	var req UserRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse user creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		return fail(c, apperr.Validation("email and password are required"))
	}

	role := policy.RoleTenantUser
	if req.Role != "" {
		parsed, err := policy.ParseRole(req.Role)
		if err != nil {
			return fail(c, apperr.Validation("unknown role %q", req.Role))
		}
		role = parsed
	}

	var tenantID *uint
	switch caller.Role {
	case policy.RoleSuperAdmin:
		if role != policy.RoleSuperAdmin {
			tenantID = req.TenantID
		}
	case policy.RoleTenantAdmin:
		// Tenant admins only mint regular members of their own tenant.
		if role != policy.RoleTenantUser {
			return fail(c, apperr.ErrForbidden)
		}
		if caller.TenantID == nil {
			return fail(c, apperr.ErrNoTenantAssigned)
		}
		tenantID = caller.TenantID
	case policy.RoleTenantUser:
		return fail(c, apperr.ErrForbidden)
	default:
		return fail(c, apperr.ErrForbidden)
	}

	// Tenant-scoped roles always carry a tenant reference; the only
	// unassigned state is self-service signup through Register.
	if role.RequiresTenant() && tenantID == nil {
		return fail(c, apperr.Validation("tenant_id is required for role %s", role))
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var existing model.User
	if result := database.GetDB().Where("email = ?", req.Email).First(&existing); result.Error == nil {
		log.Warn("Email already registered", zap.String("email", req.Email))
		prometheus.RecordError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user creation failed"})
	}

	createdBy := caller.UserID
	user := model.User{
		Email:        req.Email,
		PasswordHash: string(hashed),
		FullName:     req.FullName,
		Role:         string(role),
		TenantID:     tenantID,
		Status:       model.UserStatusActive,
		Permissions:  req.Permissions,
		CreatedBy:    &createdBy,
	}
	if req.Status != "" {
		user.Status = req.Status
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if tenantID != nil {
		err = capacity.AdmitUser(database.GetDB(), *tenantID, func(tx *gorm.DB) error {
			return tx.Create(&user).Error
		})
	} else {
		err = database.GetDB().Create(&user).Error
	}
	if err != nil {
		var atCapacity *apperr.TenantAtCapacityError
		if tenantID != nil && errors.As(err, &atCapacity) {
			prometheus.RecordCapacityRejection(*tenantID)
			log.Warn("User admission rejected at capacity",
				zap.Uint("tenant_id", *tenantID),
				zap.Int64("current_count", atCapacity.CurrentCount),
				zap.Int("max_users", atCapacity.MaxUsers))
			return fail(c, err)
		}
		log.Error("Failed to create user", zap.Error(err))
		return fail(c, err)
	}

	log.Info("User created",
		zap.String("email", user.Email),
		zap.String("role", user.Role),
		zap.Uint("created_by", caller.UserID))

	return c.JSON(http.StatusCreated, user)
}

// ListUsers lists the user rows visible to the caller per the access
// policy: everything for super admins, own-tenant regular members for
// tenant admins, only the own row for tenant users.
func ListUsers(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("user", "list")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	params := listParams(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	q := database.GetDB().Model(&model.User{})
	switch caller.Role {
	case policy.RoleSuperAdmin:
	case policy.RoleTenantAdmin:
		if caller.TenantID == nil {
			return fail(c, apperr.ErrNoTenantAssigned)
		}
		q = q.Where("(tenant_id = ? AND role = ?) OR id = ?",
			*caller.TenantID, string(policy.RoleTenantUser), caller.UserID)
	case policy.RoleTenantUser:
		q = q.Where("id = ?", caller.UserID)
	default:
		return fail(c, apperr.ErrForbidden)
	}

	var users []model.User
	q = applySearch(q, params.Search, "email", "full_name")
	result := q.Order("created_at DESC").Offset(params.Offset).Limit(params.Limit).Find(&users)
	if result.Error != nil {
		log.Error("Failed to list users", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve users"})
	}

	return c.JSON(http.StatusOK, users)
}

// GetProfile returns the caller's own profile row.
func GetProfile(c echo.Context) error {
	prometheus.RecordEntityOperation("user", "read")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	var user model.User
	if result := database.GetDB().First(&user, caller.UserID); result.Error != nil {
		return fail(c, apperr.ErrProfileMissing)
	}

	return c.JSON(http.StatusOK, user)
}

// GetUser retrieves one user row, subject to the access policy. Rows the
// caller may not see are reported as absent, not as forbidden.
func GetUser(c echo.Context) error {
	prometheus.RecordEntityOperation("user", "read")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if result := database.GetDB().First(&user, id); result.Error != nil {
		return fail(c, apperr.ErrNotFound)
	}

	if !policy.CanReadUser(caller, &user) {
		return fail(c, apperr.ErrNotFound)
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateUser mutates a user row under the access policy. Role assignment
// is a super admin operation; nobody may change their own role or status.
func UpdateUser(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("user", "update")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req UserRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse user update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if result := database.GetDB().First(&user, id); result.Error != nil {
		return fail(c, apperr.ErrNotFound)
	}

	if !policy.CanReadUser(caller, &user) {
		return fail(c, apperr.ErrNotFound)
	}
	if !policy.CanWriteUser(caller, &user) {
		return fail(c, apperr.ErrForbidden)
	}
	if err := policy.CheckSelfUpdate(caller, &user, req.Role, req.Status); err != nil {
		log.Warn("Self privilege change blocked", zap.Uint("user_id", caller.UserID))
		return fail(c, err)
	}

	if req.Role != "" && req.Role != user.Role {
		role, parseErr := policy.ParseRole(req.Role)
		if parseErr != nil {
			return fail(c, apperr.Validation("unknown role %q", req.Role))
		}
		if !policy.CanAssignRole(caller, role) {
			return fail(c, apperr.ErrForbidden)
		}
		user.Role = string(role)
	}
	if req.Status != "" && req.Status != user.Status {
		user.Status = req.Status
	}
	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Permissions != "" {
		user.Permissions = req.Permissions
	}
	if req.Password != "" {
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			log.Error("Failed to hash password", zap.Error(hashErr))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
		}
		user.PasswordHash = string(hashed)
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&user); result.Error != nil {
		log.Error("Failed to update user", zap.Uint("user_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
	}

	log.Info("User updated", zap.Uint("user_id", user.ID), zap.Uint("updated_by", caller.UserID))
	return c.JSON(http.StatusOK, user)
}

// AssignTenant moves a user to another tenant; super admin only. The
// target tenant's capacity is re-checked under a row lock so concurrent
// reassignments cannot overfill it.
func AssignTenant(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("user", "assign_tenant")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	if caller.Role != policy.RoleSuperAdmin {
		return fail(c, apperr.ErrForbidden)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		TenantID *uint `json:"tenant_id"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant assignment request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var user model.User
	if result := database.GetDB().First(&user, id); result.Error != nil {
		return fail(c, apperr.ErrNotFound)
	}

	// Detaching from any tenant needs no capacity check.
	if req.TenantID == nil {
		if result := database.GetDB().Model(&user).Update("tenant_id", nil); result.Error != nil {
			log.Error("Failed to detach user from tenant", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
		}
		user.TenantID = nil
		return c.JSON(http.StatusOK, user)
	}

	target := *req.TenantID
	if user.TenantID != nil && *user.TenantID == target {
		// No-op reassignment always succeeds.
		return c.JSON(http.StatusOK, user)
	}

	// Pre-flight check for the current/max payload; AdmitUser re-checks
	// under the row lock before the write goes through.
	err = capacity.CanAssignToTenant(database.GetDB(), user.TenantID, target)
	if err == nil {
		err = capacity.AdmitUser(database.GetDB(), target, func(tx *gorm.DB) error {
			return tx.Model(&user).Update("tenant_id", target).Error
		})
	}
	if err != nil {
		var atCapacity *apperr.TenantAtCapacityError
		if errors.As(err, &atCapacity) {
			prometheus.RecordCapacityRejection(target)
			log.Warn("Tenant reassignment rejected at capacity",
				zap.Uint("tenant_id", target),
				zap.Int64("current_count", atCapacity.CurrentCount),
				zap.Int("max_users", atCapacity.MaxUsers))
		}
		return fail(c, err)
	}

	user.TenantID = &target
	log.Info("User reassigned to tenant",
		zap.Uint("user_id", user.ID),
		zap.Uint("tenant_id", target))
	return c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user row under the access policy. Callers cannot
// delete their own account.
func DeleteUser(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("user", "delete")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if id == caller.UserID {
		return fail(c, apperr.ErrForbidden)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	var user model.User
	if result := database.GetDB().First(&user, id); result.Error != nil {
		return fail(c, apperr.ErrNotFound)
	}

	if !policy.CanReadUser(caller, &user) {
		return fail(c, apperr.ErrNotFound)
	}
	if !policy.CanWriteUser(caller, &user) {
		return fail(c, apperr.ErrForbidden)
	}

	if result := database.GetDB().Delete(&user); result.Error != nil {
		log.Error("Failed to delete user", zap.Uint("user_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete user"})
	}

	log.Info("User deleted", zap.Uint("user_id", id), zap.Uint("deleted_by", caller.UserID))
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}
