package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	gormlogger "gorm.io/gorm/logger"

	"github.com/axmednajaad/shoptrack-admin/internal/middleware"
	"github.com/axmednajaad/shoptrack-admin/internal/model"
	"github.com/axmednajaad/shoptrack-admin/internal/policy"
	"github.com/axmednajaad/shoptrack-admin/pkg/config"
	"github.com/axmednajaad/shoptrack-admin/pkg/database"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func connectTestStore(t *testing.T) {
	t.Helper()
	host := os.Getenv("DB_HOST")
	if host == "" {
		t.Skip("set DB_HOST to run store-backed tests")
	}

	cfg := config.DBConfig{
		Host:         host,
		Port:         envOr("DB_PORT", "5432"),
		User:         envOr("DB_USER", "postgres"),
		Password:     envOr("DB_PASSWORD", "password"),
		DBName:       envOr("DB_NAME", "shoptrack_test"),
		SSLMode:      "disable",
		MaxIdleConns: 2,
		MaxOpenConns: 5,
		LogLevel:     gormlogger.Silent,
	}
	if err := database.Connect(&cfg,
		&model.Tenant{},
		&model.User{},
		&model.Customer{},
		&model.Category{},
		&model.Product{},
	); err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}

	db := database.GetDB()
	for _, m := range []interface{}{&model.Product{}, &model.Category{}, &model.Customer{}, &model.User{}, &model.Tenant{}} {
		if err := db.Unscoped().Where("1 = 1").Delete(m).Error; err != nil {
			t.Fatalf("clearing table for %T: %v", m, err)
		}
	}
}

func tenantAdminCaller(tenantID uint) *policy.CallerContext {
	return &policy.CallerContext{
		UserID:   100,
		Email:    "admin@store.test",
		Role:     policy.RoleTenantAdmin,
		TenantID: &tenantID,
		Status:   model.UserStatusActive,
	}
}

func invokeWithID(t *testing.T, caller *policy.CallerContext, fn echo.HandlerFunc, method string, id uint, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, "/", nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != 0 {
		c.SetParamNames("id")
		c.SetParamValues(fmt.Sprint(id))
	}
	middleware.SetCaller(c, caller)
	if err := fn(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

// Deleting a category is refused while products reference it, succeeds
// once they are gone, and the freed name can be used again.
func TestCategoryDeletionLifecycle(t *testing.T) {
	connectTestStore(t)
	db := database.GetDB()

	tenant := model.Tenant{Name: "Guard Shop", MaxUsers: 10, Status: model.TenantStatusActive}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatalf("creating tenant: %v", err)
	}
	caller := tenantAdminCaller(tenant.ID)

	category := model.Category{TenantID: tenant.ID, Name: "Drinks"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("creating category: %v", err)
	}
	product := model.Product{TenantID: tenant.ID, Name: "Cola", Price: 2, CategoryID: &category.ID}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("creating product: %v", err)
	}

	rec := invokeWithID(t, caller, DeleteCategory, http.MethodDelete, category.ID, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete with referencing product: status = %d, want %d", rec.Code, http.StatusConflict)
	}

	if err := db.Delete(&product).Error; err != nil {
		t.Fatalf("removing product: %v", err)
	}

	rec = invokeWithID(t, caller, DeleteCategory, http.MethodDelete, category.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete of empty category: status = %d, want %d", rec.Code, http.StatusOK)
	}
	rec = invokeWithID(t, caller, GetCategory, http.MethodGet, category.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("deleted category still readable: status = %d", rec.Code)
	}

	// The name is free again even though the old row is only soft-deleted.
	rec = invokeWithID(t, caller, CreateCategory, http.MethodPost, 0, `{"name":"Drinks"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("recreating deleted category name: status = %d, want %d, body %s",
			rec.Code, http.StatusCreated, rec.Body.String())
	}
}

// Rows of one tenant must be invisible to members of another, reported as
// absent rather than forbidden.
func TestCategoryCrossTenantIsolation(t *testing.T) {
	connectTestStore(t)
	db := database.GetDB()

	tenantA := model.Tenant{Name: "Shop A", MaxUsers: 10, Status: model.TenantStatusActive}
	tenantB := model.Tenant{Name: "Shop B", MaxUsers: 10, Status: model.TenantStatusActive}
	if err := db.Create(&tenantA).Error; err != nil {
		t.Fatalf("creating tenant A: %v", err)
	}
	if err := db.Create(&tenantB).Error; err != nil {
		t.Fatalf("creating tenant B: %v", err)
	}

	category := model.Category{TenantID: tenantA.ID, Name: "Snacks"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("creating category: %v", err)
	}

	outsider := tenantAdminCaller(tenantB.ID)
	rec := invokeWithID(t, outsider, GetCategory, http.MethodGet, category.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-tenant read: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	rec = invokeWithID(t, outsider, DeleteCategory, http.MethodDelete, category.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-tenant delete: status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	owner := tenantAdminCaller(tenantA.ID)
	rec = invokeWithID(t, owner, GetCategory, http.MethodGet, category.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("owner read: status = %d, want %d", rec.Code, http.StatusOK)
	}

	// Both tenants may use the same category name.
	rec = invokeWithID(t, outsider, CreateCategory, http.MethodPost, 0, `{"name":"Snacks"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("same name in another tenant: status = %d, want %d", rec.Code, http.StatusCreated)
	}
}
