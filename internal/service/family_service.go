package service

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"routinestar/internal/apperr"
	"routinestar/internal/credentials"
	"routinestar/internal/models"
	"routinestar/internal/repository"
	"routinestar/internal/validation"
)

// FamilyService manages families and their child profiles
type FamilyService struct {
	familyRepo *repository.FamilyRepository
	childRepo  *repository.ChildRepository
}

// NewFamilyService creates a new family service
func NewFamilyService(familyRepo *repository.FamilyRepository, childRepo *repository.ChildRepository) *FamilyService {
	return &FamilyService{
		familyRepo: familyRepo,
		childRepo:  childRepo,
	}
}

// CreateFamily registers a household. The returned parent key is shown once
// and only its bcrypt hash is stored.
func (s *FamilyService) CreateFamily(name, parentEmail string) (*models.Family, string, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, "", err
	}
	if parentEmail == "" {
		return nil, "", apperr.Validation("parent email is required")
	}

	parentKey := uuid.New().String()
	keyHash, err := bcrypt.GenerateFromPassword([]byte(parentKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash parent key: %w", err)
	}

	family, err := s.familyRepo.CreateFamily(name, parentEmail, string(keyHash))
	if err != nil {
		return nil, "", err
	}

	return family, parentKey, nil
}

// GetFamily retrieves a family by ID
func (s *FamilyService) GetFamily(familyID int64) (*models.Family, error) {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, apperr.NotFound("family not found")
	}
	return family, nil
}

// UpdateFamily changes the family name and parent email
func (s *FamilyService) UpdateFamily(familyID int64, name, parentEmail string) (*models.Family, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if _, err := s.GetFamily(familyID); err != nil {
		return nil, err
	}

	if err := s.familyRepo.UpdateFamily(familyID, name, parentEmail); err != nil {
		return nil, err
	}
	return s.familyRepo.GetFamilyByID(familyID)
}

// AddChild creates a child profile with a generated username and PIN.
// The plaintext PIN is returned once for the parent to hand over.
func (s *FamilyService) AddChild(familyID int64, name, avatarColor string) (*models.ChildProfile, string, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, "", err
	}
	if _, err := s.GetFamily(familyID); err != nil {
		return nil, "", err
	}

	username, err := credentials.GenerateChildUsername()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate username: %w", err)
	}
	// Usernames collide rarely; a numeric suffix keeps them unique
	if existing, err := s.childRepo.GetChildByUsername(username); err != nil {
		return nil, "", err
	} else if existing != nil {
		username = fmt.Sprintf("%s-%d", username, existing.ID)
	}

	pin, err := credentials.GenerateChildPIN()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate PIN: %w", err)
	}

	pinHash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash PIN: %w", err)
	}

	child, err := s.childRepo.CreateChild(familyID, name, avatarColor, username, string(pinHash))
	if err != nil {
		return nil, "", err
	}

	return child, pin, nil
}

// GetChild retrieves a child profile scoped to a family
func (s *FamilyService) GetChild(familyID, childID int64) (*models.ChildProfile, error) {
	child, err := s.childRepo.GetChildByID(childID)
	if err != nil {
		return nil, err
	}
	if child == nil || child.FamilyID != familyID {
		return nil, apperr.NotFound("child profile not found")
	}
	return child, nil
}

// ListChildren retrieves all child profiles in a family
func (s *FamilyService) ListChildren(familyID int64) ([]models.ChildProfile, error) {
	return s.childRepo.ListChildrenByFamily(familyID)
}

// RegenerateChildPIN issues a fresh PIN for a child and returns it once
func (s *FamilyService) RegenerateChildPIN(familyID, childID int64) (string, error) {
	if _, err := s.GetChild(familyID, childID); err != nil {
		return "", err
	}

	pin, err := credentials.GenerateChildPIN()
	if err != nil {
		return "", fmt.Errorf("failed to generate PIN: %w", err)
	}

	pinHash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash PIN: %w", err)
	}

	if err := s.childRepo.UpdateChildPIN(childID, string(pinHash)); err != nil {
		return "", err
	}
	return pin, nil
}
