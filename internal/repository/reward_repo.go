package repository

import (
	"database/sql"
	"fmt"
	"time"

	"routinestar/internal/database"
	"routinestar/internal/models"
)

// RewardRepository handles rewards and their redemptions
type RewardRepository struct {
	db *database.DB
}

// NewRewardRepository creates a new reward repository
func NewRewardRepository(db *database.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

// CreateReward creates a new reward
func (r *RewardRepository) CreateReward(familyID int64, name string, pointsCost int) (*models.Reward, error) {
	query := "INSERT INTO rewards (family_id, name, points_cost, active) VALUES (?, ?, ?, TRUE)"
	id, err := r.db.ExecReturningID(query, familyID, name, pointsCost)
	if err != nil {
		return nil, fmt.Errorf("failed to create reward: %w", err)
	}

	return r.GetRewardByID(id)
}

// GetRewardByID retrieves a reward by ID
func (r *RewardRepository) GetRewardByID(rewardID int64) (*models.Reward, error) {
	query := `
		SELECT id, family_id, name, points_cost, active, created_at, updated_at
		FROM rewards
		WHERE id = ?
	`

	reward := &models.Reward{}
	err := r.db.QueryRow(query, rewardID).Scan(
		&reward.ID,
		&reward.FamilyID,
		&reward.Name,
		&reward.PointsCost,
		&reward.Active,
		&reward.CreatedAt,
		&reward.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reward: %w", err)
	}

	return reward, nil
}

// ListRewardsByFamily retrieves active rewards for a family
func (r *RewardRepository) ListRewardsByFamily(familyID int64) ([]models.Reward, error) {
	query := `
		SELECT id, family_id, name, points_cost, active, created_at, updated_at
		FROM rewards
		WHERE family_id = ? AND active = TRUE
		ORDER BY points_cost ASC
	`

	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rewards: %w", err)
	}
	defer rows.Close()

	var rewards []models.Reward
	for rows.Next() {
		var reward models.Reward
		if err := rows.Scan(
			&reward.ID, &reward.FamilyID, &reward.Name, &reward.PointsCost,
			&reward.Active, &reward.CreatedAt, &reward.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, reward)
	}

	return rewards, rows.Err()
}

// DeactivateReward hides a reward from the catalog without losing redemptions
func (r *RewardRepository) DeactivateReward(rewardID int64) error {
	query := "UPDATE rewards SET active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, rewardID)
	if err != nil {
		return fmt.Errorf("failed to deactivate reward: %w", err)
	}
	return nil
}

// InsertRedemption records a redemption and its paying ledger entry
func (r *RewardRepository) InsertRedemption(rewardID, childProfileID, transactionID int64, redeemedAt time.Time) (*models.RewardRedemption, error) {
	query := `
		INSERT INTO reward_redemptions (reward_id, child_profile_id, transaction_id, redeemed_at)
		VALUES (?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(query, rewardID, childProfileID, transactionID, redeemedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record redemption: %w", err)
	}

	return &models.RewardRedemption{
		ID:             id,
		RewardID:       rewardID,
		ChildProfileID: childProfileID,
		TransactionID:  transactionID,
		RedeemedAt:     redeemedAt,
	}, nil
}
