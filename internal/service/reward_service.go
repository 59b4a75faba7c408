package service

import (
	"fmt"
	"time"

	"routinestar/internal/apperr"
	"routinestar/internal/models"
	"routinestar/internal/repository"
	"routinestar/internal/validation"
)

// RewardService manages the reward catalog and redemptions
type RewardService struct {
	rewardRepo *repository.RewardRepository
	childRepo  *repository.ChildRepository
	ledger     *LedgerService
	notifier   *EmailService
	now        func() time.Time
}

// NewRewardService creates a new reward service
func NewRewardService(rewardRepo *repository.RewardRepository, childRepo *repository.ChildRepository, ledger *LedgerService, notifier *EmailService) *RewardService {
	return &RewardService{
		rewardRepo: rewardRepo,
		childRepo:  childRepo,
		ledger:     ledger,
		notifier:   notifier,
		now:        time.Now,
	}
}

// CreateReward adds a reward to the family catalog
func (s *RewardService) CreateReward(familyID int64, name string, pointsCost int) (*models.Reward, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if pointsCost <= 0 {
		return nil, apperr.Validation("points cost must be positive")
	}

	return s.rewardRepo.CreateReward(familyID, name, pointsCost)
}

// ListRewards retrieves the family's active rewards
func (s *RewardService) ListRewards(familyID int64) ([]models.Reward, error) {
	return s.rewardRepo.ListRewardsByFamily(familyID)
}

// DeactivateReward hides a reward from the catalog
func (s *RewardService) DeactivateReward(familyID, rewardID int64) error {
	reward, err := s.rewardRepo.GetRewardByID(rewardID)
	if err != nil {
		return err
	}
	if reward == nil || reward.FamilyID != familyID {
		return apperr.NotFound("reward not found")
	}
	return s.rewardRepo.DeactivateReward(rewardID)
}

// Redeem spends a child's points on a reward. The debit and the balance check
// are atomic per profile, so two redemptions cannot both spend the same
// points.
func (s *RewardService) Redeem(profileID, familyID, rewardID int64) (*models.RewardRedemption, *models.PointTransaction, error) {
	reward, err := s.rewardRepo.GetRewardByID(rewardID)
	if err != nil {
		return nil, nil, err
	}
	if reward == nil || reward.FamilyID != familyID || !reward.Active {
		return nil, nil, apperr.NotFound("reward not found")
	}

	child, err := s.childRepo.GetChildByID(profileID)
	if err != nil {
		return nil, nil, err
	}
	if child == nil || child.FamilyID != familyID {
		return nil, nil, apperr.NotFound("child profile not found")
	}

	refTable := "rewards"
	tx, err := s.ledger.Spend(profileID, familyID, reward.PointsCost,
		models.TransactionRewardRedeem, fmt.Sprintf("Redeemed %s", reward.Name), &reward.ID, &refTable)
	if err != nil {
		return nil, nil, err
	}

	redemption, err := s.rewardRepo.InsertRedemption(rewardID, profileID, tx.ID, s.now())
	if err != nil {
		return nil, nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyRedemption(familyID, profileID, reward.Name, reward.PointsCost, tx.BalanceAfter)
	}

	return redemption, tx, nil
}

// Adjust posts a parent-initiated manual adjustment to a child's wallet
func (s *RewardService) Adjust(familyID, profileID int64, delta int, reason string) (*models.PointTransaction, error) {
	if delta == 0 {
		return nil, apperr.Validation("adjustment delta cannot be zero")
	}
	if reason == "" {
		return nil, apperr.Validation("adjustment reason is required")
	}

	child, err := s.childRepo.GetChildByID(profileID)
	if err != nil {
		return nil, err
	}
	if child == nil || child.FamilyID != familyID {
		return nil, apperr.NotFound("child profile not found")
	}

	return s.ledger.Post(profileID, familyID, delta, models.TransactionManualAdjustment, reason, nil, nil)
}
