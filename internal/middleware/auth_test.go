package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/axmednajaad/shoptrack-admin/internal/model"
	"github.com/axmednajaad/shoptrack-admin/internal/policy"
	"github.com/axmednajaad/shoptrack-admin/pkg/config"
	"github.com/axmednajaad/shoptrack-admin/pkg/jwtutil"
	"github.com/axmednajaad/shoptrack-admin/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       "error",
		Environment: "test",
		ServiceName: "shoptrack-admin-test",
	}); err != nil {
		panic(err)
	}
	jwtutil.Initialize(&config.JWTConfig{
		SigningKey:      "middleware-test-key",
		ExpirationHours: 1,
	})
	os.Exit(m.Run())
}

func runAuth(t *testing.T, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := AuthMiddleware(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	rec := runAuth(t, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["error"] == "" {
		t.Fatalf("expected error message in body, got %v", body)
	}
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	for _, header := range []string{
		"token-without-scheme",
		"Basic dXNlcjpwYXNz",
		"Bearer",
		"Bearer too many parts",
	} {
		rec := runAuth(t, header)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want %d", header, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	rec := runAuth(t, "Bearer not.a.jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestCallerWithoutMiddleware(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	if caller := Caller(c); caller != nil {
		t.Fatalf("expected nil caller without middleware, got %+v", caller)
	}
}

func TestSetCallerRoundTrip(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	tenantID := uint(7)
	want := &policy.CallerContext{
		UserID:   42,
		Email:    "ops@example.com",
		Role:     policy.RoleTenantAdmin,
		TenantID: &tenantID,
		Status:   model.UserStatusActive,
	}
	SetCaller(c, want)

	got := Caller(c)
	if got != want {
		t.Fatalf("Caller() = %+v, want the stored context", got)
	}
}
