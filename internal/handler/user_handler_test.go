package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/axmednajaad/shoptrack-admin/internal/middleware"
	"github.com/axmednajaad/shoptrack-admin/internal/model"
	"github.com/axmednajaad/shoptrack-admin/internal/policy"
)

func newCreateUserContext(t *testing.T, caller *policy.CallerContext, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetCaller(c, caller)
	return c, rec
}

// Tenant-scoped roles must always carry a tenant reference, super admin
// callers included; the only unassigned state is self-service signup.
func TestCreateUserRequiresTenantForScopedRoles(t *testing.T) {
	superAdmin := &policy.CallerContext{
		UserID: 1,
		Email:  "root@example.com",
		Role:   policy.RoleSuperAdmin,
		Status: model.UserStatusActive,
	}

	for _, role := range []string{"tenant_admin", "tenant_user"} {
		t.Run(role, func(t *testing.T) {
			body := `{"email":"new@example.com","password":"secret","role":"` + role + `"}`
			c, rec := newCreateUserContext(t, superAdmin, body)

			if err := CreateUser(c); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("role %s without tenant_id: status = %d, want %d", role, rec.Code, http.StatusUnprocessableEntity)
			}
		})
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	superAdmin := &policy.CallerContext{
		UserID: 1,
		Role:   policy.RoleSuperAdmin,
		Status: model.UserStatusActive,
	}

	body := `{"email":"new@example.com","password":"secret","role":"owner"}`
	c, rec := newCreateUserContext(t, superAdmin, body)

	if err := CreateUser(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown role: status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestCreateUserForbiddenForTenantUser(t *testing.T) {
	tenantID := uint(5)
	member := &policy.CallerContext{
		UserID:   3,
		Role:     policy.RoleTenantUser,
		TenantID: &tenantID,
		Status:   model.UserStatusActive,
	}

	body := `{"email":"new@example.com","password":"secret"}`
	c, rec := newCreateUserContext(t, member, body)

	if err := CreateUser(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("tenant user creating accounts: status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
