package handlers

import (
	"net/http"

	"routinestar/internal/service"
)

// AuthHandler handles registration and login requests
type AuthHandler struct {
	authService   *service.AuthService
	familyService *service.FamilyService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, familyService *service.FamilyService) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		familyService: familyService,
	}
}

// RegisterFamily creates a family and returns its parent key.
// The key is shown exactly once.
func (h *AuthHandler) RegisterFamily(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		ParentEmail string `json:"parentEmail"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	family, parentKey, err := h.familyService.CreateFamily(req.Name, req.ParentEmail)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"family":    newFamilyView(family),
		"parentKey": parentKey,
	})
}

// ChildLogin exchanges a child's username and PIN for a child token
func (h *AuthHandler) ChildLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		PIN      string `json:"pin"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	token, child, err := h.authService.ChildLogin(req.Username, req.PIN)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token":   token,
		"profile": newChildView(child),
	})
}

// ParentLogin exchanges a family ID and parent key for a parent token
func (h *AuthHandler) ParentLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FamilyID  int64  `json:"familyId"`
		ParentKey string `json:"parentKey"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	token, err := h.authService.ParentLogin(req.FamilyID, req.ParentKey)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}
