package service

import (
	"testing"

	"routinestar/internal/apperr"
	"routinestar/internal/security"
)

func TestChildLogin(t *testing.T) {
	env := newTestEnv(t)

	child, pin, err := env.families.AddChild(env.family.ID, "Sam", "#3366FF")
	if err != nil {
		t.Fatalf("AddChild() failed: %v", err)
	}

	token, profile, err := env.auth.ChildLogin(child.Username, pin)
	if err != nil {
		t.Fatalf("ChildLogin() failed: %v", err)
	}
	if profile.ID != child.ID {
		t.Errorf("profile.ID = %d, want %d", profile.ID, child.ID)
	}

	claims, err := security.VerifyToken("test-secret", token)
	if err != nil {
		t.Fatalf("VerifyToken() failed: %v", err)
	}
	if claims.Role != security.RoleChild {
		t.Errorf("role = %s, want child", claims.Role)
	}
	if claims.ProfileID != child.ID || claims.FamilyID != env.family.ID {
		t.Errorf("claims = %+v, want profile %d family %d", claims, child.ID, env.family.ID)
	}

	t.Run("wrong pin", func(t *testing.T) {
		wrong := "0000"
		if wrong == pin {
			wrong = "1111"
		}
		if _, _, err := env.auth.ChildLogin(child.Username, wrong); !apperr.IsForbidden(err) {
			t.Fatalf("expected forbidden, got %v", err)
		}
	})

	t.Run("unknown username", func(t *testing.T) {
		if _, _, err := env.auth.ChildLogin("nobody-here", pin); !apperr.IsForbidden(err) {
			t.Fatalf("expected forbidden, got %v", err)
		}
	})
}

func TestParentLogin(t *testing.T) {
	env := newTestEnv(t)

	family, parentKey, err := env.families.CreateFamily("Second Family", "other@example.com")
	if err != nil {
		t.Fatalf("CreateFamily() failed: %v", err)
	}

	token, err := env.auth.ParentLogin(family.ID, parentKey)
	if err != nil {
		t.Fatalf("ParentLogin() failed: %v", err)
	}

	claims, err := security.VerifyToken("test-secret", token)
	if err != nil {
		t.Fatalf("VerifyToken() failed: %v", err)
	}
	if claims.Role != security.RoleParent {
		t.Errorf("role = %s, want parent", claims.Role)
	}
	if claims.ProfileID != 0 {
		t.Errorf("profileID = %d, want 0 for parent tokens", claims.ProfileID)
	}
	if claims.FamilyID != family.ID {
		t.Errorf("familyID = %d, want %d", claims.FamilyID, family.ID)
	}

	t.Run("wrong key", func(t *testing.T) {
		if _, err := env.auth.ParentLogin(family.ID, "not-the-key"); !apperr.IsForbidden(err) {
			t.Fatalf("expected forbidden, got %v", err)
		}
	})

	t.Run("unknown family", func(t *testing.T) {
		if _, err := env.auth.ParentLogin(9999, parentKey); !apperr.IsForbidden(err) {
			t.Fatalf("expected forbidden, got %v", err)
		}
	})
}
