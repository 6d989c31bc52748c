package policy

import (
	"github.com/axmednajaad/shoptrack-admin/internal/apperr"
	"github.com/axmednajaad/shoptrack-admin/internal/model"
)

// CallerContext is the resolved (identity, role, tenant) triple used to
// authorize an operation. It is rebuilt from the caller's own profile row
// on every request at the middleware boundary; nothing in it outlives the
// request.
type CallerContext struct {
	UserID   uint
	Email    string
	Role     Role
	TenantID *uint
	Status   model.UserStatus
}

// SameTenant reports whether the caller is assigned to the given tenant.
func (c *CallerContext) SameTenant(tenantID uint) bool {
	return c.TenantID != nil && *c.TenantID == tenantID
}

// ResolveCaller builds the caller context from an authenticated identity
// and its profile row. A missing profile does not block the session: the
// caller is degraded to an unassigned tenant_user, the least-privileged
// context, which can see no tenant-scoped data until an admin assigns it.
func ResolveCaller(userID uint, email string, profile *model.User) (*CallerContext, error) {
	if userID == 0 {
		return nil, apperr.ErrNotAuthenticated
	}

	if profile == nil {
		return &CallerContext{
			UserID: userID,
			Email:  email,
			Role:   RoleTenantUser,
			Status: model.UserStatusActive,
		}, nil
	}

	role, err := ParseRole(profile.Role)
	if err != nil {
		// A corrupted role column degrades the same way as a missing
		// profile: least privilege, never more.
		role = RoleTenantUser
	}

	return &CallerContext{
		UserID:   profile.ID,
		Email:    profile.Email,
		Role:     role,
		TenantID: profile.TenantID,
		Status:   profile.Status,
	}, nil
}
