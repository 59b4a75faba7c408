package service

import (
	"log"
	"time"

	"routinestar/internal/apperr"
	"routinestar/internal/models"
	"routinestar/internal/repository"
)

// AwardCandidate is one achievement code to evaluate after a session outcome
type AwardCandidate struct {
	Code     string
	Metadata *string
}

// AchievementService grants achievements on a best-effort basis: a duplicate
// grant means the child already earned it and is silently skipped, and any
// other failure is logged without propagating, so awarding can never fail a
// routine completion.
type AchievementService struct {
	achievementRepo *repository.AchievementRepository
	notifier        *EmailService
	now             func() time.Time
}

// NewAchievementService creates a new achievement service
func NewAchievementService(achievementRepo *repository.AchievementRepository, notifier *EmailService) *AchievementService {
	return &AchievementService{
		achievementRepo: achievementRepo,
		notifier:        notifier,
		now:             time.Now,
	}
}

// AwardIfEligible resolves each code for the family (family-specific rules
// win over global ones) and grants it to the child. Errors never escape.
func (s *AchievementService) AwardIfEligible(profileID, familyID int64, candidates []AwardCandidate) {
	for _, candidate := range candidates {
		achievement, err := s.achievementRepo.FindByCode(familyID, candidate.Code)
		if err != nil {
			log.Printf("Warning: achievement lookup failed for %s: %v", candidate.Code, err)
			continue
		}
		if achievement == nil {
			continue
		}

		_, err = s.achievementRepo.Grant(profileID, achievement.ID, s.now(), candidate.Metadata)
		if err != nil {
			if apperr.IsConflict(err) {
				// Already earned
				continue
			}
			log.Printf("Warning: failed to grant achievement %s: %v", candidate.Code, err)
			continue
		}

		if s.notifier != nil {
			s.notifier.NotifyAchievement(familyID, profileID, achievement.Name)
		}
	}
}

// ListForChild returns a child's granted achievements with their rules
func (s *AchievementService) ListForChild(profileID int64) ([]models.Achievement, []models.UserAchievement, error) {
	return s.achievementRepo.ListByProfile(profileID)
}

// SeedDefaults installs the global achievement rules
func (s *AchievementService) SeedDefaults() error {
	return s.achievementRepo.SeedDefaults()
}
