package models

import "time"

// Achievement codes evaluated after a completed session
const (
	AchievementFirstRoutine = "first_routine"
	AchievementSpeedster    = "speedster"
	AchievementStreak3      = "streak_3"
	AchievementStreak7      = "streak_7"
)

// Achievement is a named rule keyed by code. FamilyID nil means global;
// a family-specific row with the same code takes precedence.
type Achievement struct {
	ID          int64
	FamilyID    *int64
	Code        string
	Name        string
	Description string
	CreatedAt   time.Time
}

// UserAchievement is a grant, unique per (profile, achievement)
type UserAchievement struct {
	ID             int64
	ChildProfileID int64
	AchievementID  int64
	AwardedAt      time.Time
	Metadata       *string
}
