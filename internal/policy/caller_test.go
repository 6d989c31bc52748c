package policy

import (
	"errors"
	"testing"

	"github.com/axmednajaad/shoptrack-admin/internal/apperr"
	"github.com/axmednajaad/shoptrack-admin/internal/model"
)

func TestResolveCaller_NoIdentity(t *testing.T) {
	if _, err := ResolveCaller(0, "", nil); !errors.Is(err, apperr.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestResolveCaller_MissingProfileDegrades(t *testing.T) {
	caller, err := ResolveCaller(42, "ghost@example.com", nil)
	if err != nil {
		t.Fatalf("ResolveCaller returned error: %v", err)
	}
	if caller.Role != RoleTenantUser {
		t.Fatalf("expected least-privileged role, got %s", caller.Role)
	}
	if caller.TenantID != nil {
		t.Fatalf("degraded caller must not carry a tenant")
	}
	if caller.UserID != 42 || caller.Email != "ghost@example.com" {
		t.Fatalf("identity not carried over: %+v", caller)
	}
}

func TestResolveCaller_FromProfile(t *testing.T) {
	tenantID := uint(7)
	profile := &model.User{
		ID:       3,
		Email:    "admin@shop.test",
		Role:     "tenant_admin",
		TenantID: &tenantID,
		Status:   model.UserStatusActive,
	}

	caller, err := ResolveCaller(3, "stale@shop.test", profile)
	if err != nil {
		t.Fatalf("ResolveCaller returned error: %v", err)
	}
	if caller.Role != RoleTenantAdmin {
		t.Fatalf("expected tenant_admin, got %s", caller.Role)
	}
	if caller.Email != "admin@shop.test" {
		t.Fatalf("profile email should win over claims, got %s", caller.Email)
	}
	if caller.TenantID == nil || *caller.TenantID != 7 {
		t.Fatalf("tenant not resolved: %+v", caller)
	}
}

func TestResolveCaller_CorruptRoleDegrades(t *testing.T) {
	profile := &model.User{ID: 9, Email: "odd@shop.test", Role: "owner", Status: model.UserStatusActive}

	caller, err := ResolveCaller(9, "odd@shop.test", profile)
	if err != nil {
		t.Fatalf("ResolveCaller returned error: %v", err)
	}
	if caller.Role != RoleTenantUser {
		t.Fatalf("unknown stored role must degrade to tenant_user, got %s", caller.Role)
	}
}
