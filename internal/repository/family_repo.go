package repository

import (
	"database/sql"
	"fmt"

	"routinestar/internal/database"
	"routinestar/internal/models"
)

// FamilyRepository handles database operations for families
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// CreateFamily creates a new family
func (r *FamilyRepository) CreateFamily(name, parentEmail, parentKeyHash string) (*models.Family, error) {
	query := "INSERT INTO families (name, parent_email, parent_key_hash) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(query, name, parentEmail, parentKeyHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	return r.GetFamilyByID(id)
}

// GetFamilyByID retrieves a family by ID
func (r *FamilyRepository) GetFamilyByID(familyID int64) (*models.Family, error) {
	query := `
		SELECT id, name, parent_email, parent_key_hash, created_at, updated_at
		FROM families
		WHERE id = ?
	`

	family := &models.Family{}
	err := r.db.QueryRow(query, familyID).Scan(
		&family.ID,
		&family.Name,
		&family.ParentEmail,
		&family.ParentKeyHash,
		&family.CreatedAt,
		&family.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}

	return family, nil
}

// UpdateFamily updates a family's name and parent email
func (r *FamilyRepository) UpdateFamily(familyID int64, name, parentEmail string) error {
	query := "UPDATE families SET name = ?, parent_email = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, name, parentEmail, familyID)
	if err != nil {
		return fmt.Errorf("failed to update family: %w", err)
	}
	return nil
}
