package policy

import "testing"

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"super_admin", "tenant_admin", "tenant_user"} {
		role, err := ParseRole(valid)
		if err != nil {
			t.Fatalf("ParseRole(%q) returned error: %v", valid, err)
		}
		if string(role) != valid {
			t.Fatalf("ParseRole(%q) = %q", valid, role)
		}
	}

	for _, invalid := range []string{"", "admin", "owner", "SUPER_ADMIN", "member"} {
		if _, err := ParseRole(invalid); err == nil {
			t.Fatalf("ParseRole(%q) should fail", invalid)
		}
	}
}

func TestRoleRequiresTenant(t *testing.T) {
	if RoleSuperAdmin.RequiresTenant() {
		t.Fatalf("super_admin should not require a tenant")
	}
	if !RoleTenantAdmin.RequiresTenant() {
		t.Fatalf("tenant_admin should require a tenant")
	}
	if !RoleTenantUser.RequiresTenant() {
		t.Fatalf("tenant_user should require a tenant")
	}
}
