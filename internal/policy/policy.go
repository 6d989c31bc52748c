package policy

import (
	"github.com/axmednajaad/shoptrack-admin/internal/apperr"
	"github.com/axmednajaad/shoptrack-admin/internal/model"
)

// This package is the single source of truth for row access. The same
// decisions are enforced declaratively at the database (tenant_id filters,
// check constraints) and here for pre-flight checks; deriving both from
// one place keeps them from drifting apart.

// CanReadTenant decides whether the caller may read the given tenant row.
func CanReadTenant(caller *CallerContext, tenantID uint) bool {
	switch caller.Role {
	case RoleSuperAdmin:
		return true
	case RoleTenantAdmin, RoleTenantUser:
		return caller.SameTenant(tenantID)
	}
	return false
}

// CanWriteTenant decides whether the caller may mutate the given tenant
// row. Only super admins may; tenant admins read their own tenant but its
// configuration (plan, capacity, status) is not theirs to change.
func CanWriteTenant(caller *CallerContext, tenantID uint) bool {
	switch caller.Role {
	case RoleSuperAdmin:
		return true
	case RoleTenantAdmin, RoleTenantUser:
		return false
	}
	return false
}

// CanReadUser decides whether the caller may read the target user row.
func CanReadUser(caller *CallerContext, target *model.User) bool {
	if caller.UserID == target.ID {
		return true
	}
	switch caller.Role {
	case RoleSuperAdmin:
		return true
	case RoleTenantAdmin:
		return target.TenantID != nil &&
			caller.SameTenant(*target.TenantID) &&
			Role(target.Role) == RoleTenantUser
	case RoleTenantUser:
		return false
	}
	return false
}

// CanWriteUser decides whether the caller may mutate the target user row.
// Tenant admins manage only tenant_user rows of their own tenant: writes
// to tenant_admin or super_admin rows are rejected regardless of tenant
// match. Self-writes are allowed here; CheckSelfUpdate separately rejects
// any change to the caller's own privilege fields.
func CanWriteUser(caller *CallerContext, target *model.User) bool {
	if caller.UserID == target.ID {
		return true
	}
	switch caller.Role {
	case RoleSuperAdmin:
		return true
	case RoleTenantAdmin:
		return target.TenantID != nil &&
			caller.SameTenant(*target.TenantID) &&
			Role(target.Role) == RoleTenantUser
	case RoleTenantUser:
		return false
	}
	return false
}

// CanAssignRole decides whether the caller may give a user the requested
// role. Only super admins assign roles at all.
func CanAssignRole(caller *CallerContext, role Role) bool {
	switch caller.Role {
	case RoleSuperAdmin:
		return role.Valid()
	case RoleTenantAdmin, RoleTenantUser:
		return false
	}
	return false
}

// CheckSelfUpdate rejects any attempt by a caller to change their own role
// or status, independent of how privileged they otherwise are for the row.
func CheckSelfUpdate(caller *CallerContext, target *model.User, newRole string, newStatus model.UserStatus) error {
	if caller.UserID != target.ID {
		return nil
	}
	if newRole != "" && newRole != target.Role {
		return apperr.ErrSelfPrivilegeEscalation
	}
	if newStatus != "" && newStatus != target.Status {
		return apperr.ErrSelfPrivilegeEscalation
	}
	return nil
}

// CanAccessTenantData decides read/write access to the tenant-scoped
// tables (customers, products, categories) for rows of the given tenant.
// Any member of the owning tenant may read and write; super admins see
// everything.
func CanAccessTenantData(caller *CallerContext, tenantID uint) bool {
	switch caller.Role {
	case RoleSuperAdmin:
		return true
	case RoleTenantAdmin, RoleTenantUser:
		return caller.SameTenant(tenantID)
	}
	return false
}

// TenantScope returns the tenant filter every query against a
// tenant-scoped table must carry for this caller: nil means unrestricted
// (super admin), otherwise the caller's own tenant. Callers in a
// tenant-scoped role without an assignment get ErrNoTenantAssigned.
func TenantScope(caller *CallerContext) (*uint, error) {
	switch caller.Role {
	case RoleSuperAdmin:
		return nil, nil
	case RoleTenantAdmin, RoleTenantUser:
		if caller.TenantID == nil {
			return nil, apperr.ErrNoTenantAssigned
		}
		return caller.TenantID, nil
	}
	return nil, apperr.ErrForbidden
}
