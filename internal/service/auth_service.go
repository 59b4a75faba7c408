package service

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"routinestar/internal/apperr"
	"routinestar/internal/models"
	"routinestar/internal/repository"
	"routinestar/internal/security"
	"routinestar/internal/validation"
)

// AuthService issues API tokens for children (username + PIN) and parents
// (family ID + parent key)
type AuthService struct {
	familyRepo    *repository.FamilyRepository
	childRepo     *repository.ChildRepository
	jwtSecret     string
	tokenDuration time.Duration
	now           func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(familyRepo *repository.FamilyRepository, childRepo *repository.ChildRepository, jwtSecret string, tokenDuration time.Duration) *AuthService {
	return &AuthService{
		familyRepo:    familyRepo,
		childRepo:     childRepo,
		jwtSecret:     jwtSecret,
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
}

// ChildLogin verifies a child's username and PIN and returns a child token.
// Failed lookups and failed PIN checks produce the same error.
func (s *AuthService) ChildLogin(username, pin string) (string, *models.ChildProfile, error) {
	if err := validation.ValidatePIN(pin); err != nil {
		return "", nil, err
	}

	child, err := s.childRepo.GetChildByUsername(username)
	if err != nil {
		return "", nil, err
	}
	if child == nil {
		return "", nil, apperr.Forbidden("invalid username or PIN")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(child.PINHash), []byte(pin)); err != nil {
		return "", nil, apperr.Forbidden("invalid username or PIN")
	}

	token, err := security.SignToken(s.jwtSecret, child.ID, child.FamilyID, security.RoleChild, s.tokenDuration, s.now())
	if err != nil {
		return "", nil, err
	}
	return token, child, nil
}

// ParentLogin verifies the family's parent key and returns a parent token
func (s *AuthService) ParentLogin(familyID int64, parentKey string) (string, error) {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return "", err
	}
	if family == nil {
		return "", apperr.Forbidden("invalid family or parent key")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(family.ParentKeyHash), []byte(parentKey)); err != nil {
		return "", apperr.Forbidden("invalid family or parent key")
	}

	return security.SignToken(s.jwtSecret, 0, family.ID, security.RoleParent, s.tokenDuration, s.now())
}
