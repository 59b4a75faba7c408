package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"routinestar/internal/apperr"
	"routinestar/internal/security"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, profileID, familyID int64, role string) string {
	t.Helper()
	token, err := security.SignToken(testSecret, profileID, familyID, role, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("SignToken() failed: %v", err)
	}
	return token
}

func TestRequireChildAuth(t *testing.T) {
	middleware := NewMiddleware(testSecret)

	var gotClaims *security.Claims
	handler := middleware.RequireChildAuth(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = GetClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		authorization  string
		expectedStatus int
	}{
		{"valid child token", "Bearer " + signTestToken(t, 7, 3, security.RoleChild), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"parent token on child route", "Bearer " + signTestToken(t, 0, 3, security.RoleParent), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/me/balance", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			rec := httptest.NewRecorder()

			handler(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.expectedStatus)
			}
		})
	}

	if gotClaims == nil {
		t.Fatal("claims not placed in context for the valid token")
	}
	if gotClaims.ProfileID != 7 || gotClaims.FamilyID != 3 {
		t.Errorf("claims = %+v, want profile 7 family 3", gotClaims)
	}
}

func TestRequireParentAuthRejectsExpiredToken(t *testing.T) {
	middleware := NewMiddleware(testSecret)
	handler := middleware.RequireParentAuth(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	expired, err := security.SignToken(testSecret, 0, 3, security.RoleParent, time.Hour, time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("SignToken() failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/family", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for expired token", rec.Code)
	}
}

func TestStatusForKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", apperr.Validation("bad input"), http.StatusBadRequest},
		{"not found", apperr.NotFound("missing"), http.StatusNotFound},
		{"conflict", apperr.Conflict("already done"), http.StatusConflict},
		{"forbidden", apperr.Forbidden("no"), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondServiceError(rec, tt.err)
			if rec.Code != tt.expected {
				t.Errorf("status = %d, want %d", rec.Code, tt.expected)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type = %s, want application/json", ct)
			}
		})
	}

	t.Run("plain error is internal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		respondServiceError(rec, http.ErrBodyNotAllowed)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})
}
