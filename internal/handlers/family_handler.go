package handlers

import (
	"net/http"
	"strconv"

	"routinestar/internal/apperr"
	"routinestar/internal/service"
)

// FamilyHandler handles parent-facing family and child profile requests
type FamilyHandler struct {
	familyService *service.FamilyService
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService *service.FamilyService) *FamilyHandler {
	return &FamilyHandler{familyService: familyService}
}

// GetFamily returns the authenticated parent's family
func (h *FamilyHandler) GetFamily(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	family, err := h.familyService.GetFamily(claims.FamilyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newFamilyView(family))
}

// UpdateFamily changes the family name and parent email
func (h *FamilyHandler) UpdateFamily(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	var req struct {
		Name        string `json:"name"`
		ParentEmail string `json:"parentEmail"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	family, err := h.familyService.UpdateFamily(claims.FamilyID, req.Name, req.ParentEmail)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newFamilyView(family))
}

// ListChildren returns the family's child profiles
func (h *FamilyHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	children, err := h.familyService.ListChildren(claims.FamilyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newChildViews(children))
}

// CreateChild adds a child profile; the generated PIN is returned once
func (h *FamilyHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	var req struct {
		Name        string `json:"name"`
		AvatarColor string `json:"avatarColor"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	child, pin, err := h.familyService.AddChild(claims.FamilyID, req.Name, req.AvatarColor)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"profile": newChildView(child),
		"pin":     pin,
	})
}

// RegenerateChildPIN issues a new PIN for a child; returned once
func (h *FamilyHandler) RegenerateChildPIN(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	childID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	pin, err := h.familyService.RegenerateChildPIN(claims.FamilyID, childID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"pin": pin})
}

// pathID parses an int64 path parameter
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, apperr.Validation("invalid " + name + " parameter")
	}
	return id, nil
}
