package repository

import (
	"database/sql"
	"fmt"
	"time"

	"routinestar/internal/apperr"
	"routinestar/internal/database"
	"routinestar/internal/models"
)

// AchievementRepository handles achievements and their grants
type AchievementRepository struct {
	db *database.DB
}

// NewAchievementRepository creates a new achievement repository
func NewAchievementRepository(db *database.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// FindByCode resolves an achievement by code for a family. A family-specific
// row wins over a global row with the same code. Returns nil when no rule
// with that code exists.
func (r *AchievementRepository) FindByCode(familyID int64, code string) (*models.Achievement, error) {
	query := `
		SELECT id, family_id, code, name, description, created_at
		FROM achievements
		WHERE code = ? AND (family_id = ? OR family_id IS NULL)
		ORDER BY (family_id IS NULL)
		LIMIT 1
	`

	achievement := &models.Achievement{}
	var achievementFamilyID sql.NullInt64

	err := r.db.QueryRow(query, code, familyID).Scan(
		&achievement.ID,
		&achievementFamilyID,
		&achievement.Code,
		&achievement.Name,
		&achievement.Description,
		&achievement.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find achievement: %w", err)
	}

	if achievementFamilyID.Valid {
		id := achievementFamilyID.Int64
		achievement.FamilyID = &id
	}

	return achievement, nil
}

// Grant awards an achievement to a child. A repeated grant for the same
// (profile, achievement) pair is reported as a Conflict.
func (r *AchievementRepository) Grant(profileID, achievementID int64, awardedAt time.Time, metadata *string) (*models.UserAchievement, error) {
	query := `
		INSERT INTO user_achievements (child_profile_id, achievement_id, awarded_at, metadata)
		VALUES (?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(query, profileID, achievementID, awardedAt, metadata)
	if err != nil {
		if r.db.Dialect.IsUniqueViolation(err) {
			return nil, apperr.Conflict("achievement already granted")
		}
		return nil, fmt.Errorf("failed to grant achievement: %w", err)
	}

	return &models.UserAchievement{
		ID:             id,
		ChildProfileID: profileID,
		AchievementID:  achievementID,
		AwardedAt:      awardedAt,
		Metadata:       metadata,
	}, nil
}

// ListByProfile retrieves a child's granted achievements, newest first
func (r *AchievementRepository) ListByProfile(profileID int64) ([]models.Achievement, []models.UserAchievement, error) {
	query := `
		SELECT a.id, a.family_id, a.code, a.name, a.description, a.created_at,
		       ua.id, ua.child_profile_id, ua.achievement_id, ua.awarded_at, ua.metadata
		FROM user_achievements ua
		INNER JOIN achievements a ON ua.achievement_id = a.id
		WHERE ua.child_profile_id = ?
		ORDER BY ua.awarded_at DESC
	`

	rows, err := r.db.Query(query, profileID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	defer rows.Close()

	var achievements []models.Achievement
	var grants []models.UserAchievement
	for rows.Next() {
		var achievement models.Achievement
		var grant models.UserAchievement
		var familyID sql.NullInt64
		var metadata sql.NullString

		if err := rows.Scan(
			&achievement.ID, &familyID, &achievement.Code, &achievement.Name,
			&achievement.Description, &achievement.CreatedAt,
			&grant.ID, &grant.ChildProfileID, &grant.AchievementID,
			&grant.AwardedAt, &metadata,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan achievement: %w", err)
		}

		if familyID.Valid {
			id := familyID.Int64
			achievement.FamilyID = &id
		}
		if metadata.Valid {
			grant.Metadata = &metadata.String
		}

		achievements = append(achievements, achievement)
		grants = append(grants, grant)
	}

	return achievements, grants, rows.Err()
}

// SeedDefaults inserts the global achievement rules when missing
func (r *AchievementRepository) SeedDefaults() error {
	defaults := []struct {
		code        string
		name        string
		description string
	}{
		{models.AchievementFirstRoutine, "First Routine!", "Completed a routine for the very first time"},
		{models.AchievementSpeedster, "Speedster", "Beat your best time on a routine"},
		{models.AchievementStreak3, "On a Roll", "Completed a routine 3 days in a row"},
		{models.AchievementStreak7, "Week Warrior", "Completed a routine 7 days in a row"},
	}

	for _, d := range defaults {
		var count int
		query := "SELECT COUNT(*) FROM achievements WHERE code = ? AND family_id IS NULL"
		if err := r.db.QueryRow(query, d.code).Scan(&count); err != nil {
			return fmt.Errorf("failed to check achievement %s: %w", d.code, err)
		}
		if count > 0 {
			continue
		}

		query = "INSERT INTO achievements (family_id, code, name, description) VALUES (NULL, ?, ?, ?)"
		if _, err := r.db.Exec(query, d.code, d.name, d.description); err != nil {
			return fmt.Errorf("failed to seed achievement %s: %w", d.code, err)
		}
	}

	return nil
}
