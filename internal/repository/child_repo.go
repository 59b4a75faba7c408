package repository

import (
	"database/sql"
	"fmt"

	"routinestar/internal/database"
	"routinestar/internal/models"
)

// ChildRepository handles database operations for child profiles
type ChildRepository struct {
	db *database.DB
}

// NewChildRepository creates a new child repository
func NewChildRepository(db *database.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

// CreateChild creates a new child profile
func (r *ChildRepository) CreateChild(familyID int64, name, avatarColor, username, pinHash string) (*models.ChildProfile, error) {
	query := `
		INSERT INTO child_profiles (family_id, name, avatar_color, username, pin_hash)
		VALUES (?, ?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(query, familyID, name, avatarColor, username, pinHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create child profile: %w", err)
	}

	return r.GetChildByID(id)
}

// GetChildByID retrieves a child profile by ID
func (r *ChildRepository) GetChildByID(childID int64) (*models.ChildProfile, error) {
	query := `
		SELECT id, family_id, name, avatar_color, username, pin_hash, created_at, updated_at
		FROM child_profiles
		WHERE id = ?
	`

	return r.scanChild(r.db.QueryRow(query, childID))
}

// GetChildByUsername retrieves a child profile by username
func (r *ChildRepository) GetChildByUsername(username string) (*models.ChildProfile, error) {
	query := `
		SELECT id, family_id, name, avatar_color, username, pin_hash, created_at, updated_at
		FROM child_profiles
		WHERE username = ?
	`

	return r.scanChild(r.db.QueryRow(query, username))
}

// ListChildrenByFamily retrieves all child profiles in a family
func (r *ChildRepository) ListChildrenByFamily(familyID int64) ([]models.ChildProfile, error) {
	query := `
		SELECT id, family_id, name, avatar_color, username, pin_hash, created_at, updated_at
		FROM child_profiles
		WHERE family_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query child profiles: %w", err)
	}
	defer rows.Close()

	var children []models.ChildProfile
	for rows.Next() {
		var child models.ChildProfile
		if err := rows.Scan(
			&child.ID, &child.FamilyID, &child.Name, &child.AvatarColor,
			&child.Username, &child.PINHash, &child.CreatedAt, &child.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan child profile: %w", err)
		}
		children = append(children, child)
	}

	return children, rows.Err()
}

// UpdateChildPIN replaces the stored PIN hash for a child
func (r *ChildRepository) UpdateChildPIN(childID int64, pinHash string) error {
	query := "UPDATE child_profiles SET pin_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, pinHash, childID)
	if err != nil {
		return fmt.Errorf("failed to update child PIN: %w", err)
	}
	return nil
}

func (r *ChildRepository) scanChild(row *sql.Row) (*models.ChildProfile, error) {
	child := &models.ChildProfile{}
	err := row.Scan(
		&child.ID,
		&child.FamilyID,
		&child.Name,
		&child.AvatarColor,
		&child.Username,
		&child.PINHash,
		&child.CreatedAt,
		&child.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child profile: %w", err)
	}

	return child, nil
}
