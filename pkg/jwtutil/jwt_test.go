package jwtutil

import (
	"strings"
	"testing"

	"github.com/axmednajaad/shoptrack-admin/pkg/config"
)

func initTestConfig(key string) {
	Initialize(&config.JWTConfig{
		SigningKey:      key,
		ExpirationHours: 1,
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	initTestConfig("unit-test-signing-key")

	tenantID := uint(12)
	token, err := GenerateTokenWithTenant("admin@example.com", 7, &tenantID, "Acme Retail", "tenant_admin")
	if err != nil {
		t.Fatalf("GenerateTokenWithTenant failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Email != "admin@example.com" {
		t.Fatalf("email = %q, want %q", claims.Email, "admin@example.com")
	}
	if claims.UserID != 7 {
		t.Fatalf("user_id = %d, want 7", claims.UserID)
	}
	if claims.TenantID == nil || *claims.TenantID != 12 {
		t.Fatalf("tenant_id = %v, want 12", claims.TenantID)
	}
	if claims.TenantName != "Acme Retail" {
		t.Fatalf("tenant_name = %q, want %q", claims.TenantName, "Acme Retail")
	}
	if claims.Role != "tenant_admin" {
		t.Fatalf("role = %q, want %q", claims.Role, "tenant_admin")
	}
}

func TestGenerateTokenWithoutTenant(t *testing.T) {
	initTestConfig("unit-test-signing-key")

	token, err := GenerateToken("user@example.com", 3)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.TenantID != nil {
		t.Fatalf("tenant_id should be absent, got %v", *claims.TenantID)
	}
	if claims.ExpiresAt == nil {
		t.Fatalf("token must carry an expiry")
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	initTestConfig("unit-test-signing-key")

	token, err := GenerateToken("user@example.com", 3)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	// Flip a character in the signature segment.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := ValidateToken(tampered); err == nil {
		t.Fatalf("tampered token must be rejected")
	}
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	initTestConfig("signing-key-one")
	token, err := GenerateToken("user@example.com", 3)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	initTestConfig("signing-key-two")
	if _, err := ValidateToken(token); err == nil {
		t.Fatalf("token signed with a different key must be rejected")
	}
}

func TestGenerateTokenRequiresConfig(t *testing.T) {
	Initialize(nil)
	defer initTestConfig("unit-test-signing-key")

	if _, err := GenerateToken("user@example.com", 3); err == nil {
		t.Fatalf("token generation without configuration must fail")
	}
	if _, err := ValidateToken("whatever"); err == nil {
		t.Fatalf("validation without configuration must fail")
	}
}
