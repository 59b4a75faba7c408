package security

import (
	"testing"
	"time"

	"routinestar/internal/apperr"
)

func TestSignAndVerifyToken(t *testing.T) {
	now := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	secret := "test-secret"

	token, err := SignToken(secret, 7, 3, RoleChild, time.Hour, now)
	if err != nil {
		t.Fatalf("SignToken failed: %v", err)
	}

	claims, err := VerifyToken(secret, token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}

	if claims.ProfileID != 7 {
		t.Errorf("ProfileID = %d, want 7", claims.ProfileID)
	}
	if claims.FamilyID != 3 {
		t.Errorf("FamilyID = %d, want 3", claims.FamilyID)
	}
	if claims.Role != RoleChild {
		t.Errorf("Role = %q, want %q", claims.Role, RoleChild)
	}
	if claims.ID == "" {
		t.Error("expected a token ID")
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := SignToken("secret-a", 1, 1, RoleParent, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("SignToken failed: %v", err)
	}

	if _, err := VerifyToken("secret-b", token); !apperr.IsForbidden(err) {
		t.Errorf("expected Forbidden error, got %v", err)
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)

	token, err := SignToken("secret", 1, 1, RoleChild, time.Hour, past)
	if err != nil {
		t.Fatalf("SignToken failed: %v", err)
	}

	if _, err := VerifyToken("secret", token); !apperr.IsForbidden(err) {
		t.Errorf("expected Forbidden error for expired token, got %v", err)
	}
}
