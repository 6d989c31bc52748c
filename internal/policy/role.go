package policy

import "fmt"

// Role is the closed set of roles a user can hold. Authorization decisions
// switch exhaustively over this type so a new role cannot silently fall
// through an access check.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleTenantAdmin Role = "tenant_admin"
	RoleTenantUser  Role = "tenant_user"
)

// ParseRole validates a stored role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSuperAdmin, RoleTenantAdmin, RoleTenantUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// RequiresTenant reports whether a user holding this role must carry a
// tenant reference. Super admins are the only unscoped role.
func (r Role) RequiresTenant() bool {
	return r != RoleSuperAdmin
}
