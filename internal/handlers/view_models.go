package handlers

import (
	"time"

	"routinestar/internal/models"
)

// JSON projections of the domain models. Password and key hashes never leave
// the server.

type familyView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ParentEmail string `json:"parentEmail"`
}

func newFamilyView(f *models.Family) familyView {
	return familyView{ID: f.ID, Name: f.Name, ParentEmail: f.ParentEmail}
}

type childView struct {
	ID          int64  `json:"id"`
	FamilyID    int64  `json:"familyId"`
	Name        string `json:"name"`
	AvatarColor string `json:"avatarColor"`
	Username    string `json:"username"`
}

func newChildView(c *models.ChildProfile) childView {
	return childView{
		ID:          c.ID,
		FamilyID:    c.FamilyID,
		Name:        c.Name,
		AvatarColor: c.AvatarColor,
		Username:    c.Username,
	}
}

func newChildViews(children []models.ChildProfile) []childView {
	views := make([]childView, len(children))
	for i := range children {
		views[i] = newChildView(&children[i])
	}
	return views
}

type routineView struct {
	ID                    int64  `json:"id"`
	FamilyID              int64  `json:"familyId"`
	Name                  string `json:"name"`
	ScheduleDays          string `json:"scheduleDays"`
	AutoCloseAfterMinutes int    `json:"autoCloseAfterMinutes"`
	Active                bool   `json:"active"`
}

func newRoutineView(r *models.Routine) routineView {
	return routineView{
		ID:                    r.ID,
		FamilyID:              r.FamilyID,
		Name:                  r.Name,
		ScheduleDays:          r.ScheduleDays,
		AutoCloseAfterMinutes: r.AutoCloseAfterMinutes,
		Active:                r.Active,
	}
}

func newRoutineViews(routines []models.Routine) []routineView {
	views := make([]routineView, len(routines))
	for i := range routines {
		views[i] = newRoutineView(&routines[i])
	}
	return views
}

type taskView struct {
	ID             int64  `json:"id"`
	RoutineID      int64  `json:"routineId"`
	ChildProfileID int64  `json:"childProfileId"`
	Title          string `json:"title"`
	Position       int    `json:"position"`
	PointValue     int    `json:"pointValue"`
	IsOptional     bool   `json:"isOptional"`
}

func newTaskView(t *models.RoutineTask) taskView {
	return taskView{
		ID:             t.ID,
		RoutineID:      t.RoutineID,
		ChildProfileID: t.ChildProfileID,
		Title:          t.Title,
		Position:       t.Position,
		PointValue:     t.PointValue,
		IsOptional:     t.IsOptional,
	}
}

func newTaskViews(tasks []models.RoutineTask) []taskView {
	views := make([]taskView, len(tasks))
	for i := range tasks {
		views[i] = newTaskView(&tasks[i])
	}
	return views
}

type sessionView struct {
	ID               int64      `json:"id"`
	RoutineID        int64      `json:"routineId"`
	ChildProfileID   int64      `json:"childProfileId"`
	SessionDate      string     `json:"sessionDate"`
	Status           string     `json:"status"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	PlannedEndAt     *time.Time `json:"plannedEndAt,omitempty"`
	AutoClosedAt     *time.Time `json:"autoClosedAt,omitempty"`
	DurationSeconds  *int       `json:"durationSeconds,omitempty"`
	PointsAwarded    int        `json:"pointsAwarded"`
	BonusMultiplier  int        `json:"bonusMultiplier"`
	BestTimeBeaten   bool       `json:"bestTimeBeaten"`
	CompletionReason *string    `json:"completionReason,omitempty"`
}

func newSessionView(s *models.RoutineSession) sessionView {
	return sessionView{
		ID:               s.ID,
		RoutineID:        s.RoutineID,
		ChildProfileID:   s.ChildProfileID,
		SessionDate:      s.SessionDate,
		Status:           string(s.Status),
		StartedAt:        s.StartedAt,
		CompletedAt:      s.CompletedAt,
		PlannedEndAt:     s.PlannedEndAt,
		AutoClosedAt:     s.AutoClosedAt,
		DurationSeconds:  s.DurationSeconds,
		PointsAwarded:    s.PointsAwarded,
		BonusMultiplier:  s.BonusMultiplier,
		BestTimeBeaten:   s.BestTimeBeaten,
		CompletionReason: s.CompletionReason,
	}
}

func newSessionViews(sessions []models.RoutineSession) []sessionView {
	views := make([]sessionView, len(sessions))
	for i := range sessions {
		views[i] = newSessionView(&sessions[i])
	}
	return views
}

type completionView struct {
	ID            int64     `json:"id"`
	SessionID     int64     `json:"sessionId"`
	TaskID        int64     `json:"taskId"`
	CompletedAt   time.Time `json:"completedAt"`
	Position      int       `json:"position"`
	PointsAwarded int       `json:"pointsAwarded"`
}

func newCompletionView(c *models.TaskCompletion) completionView {
	return completionView{
		ID:            c.ID,
		SessionID:     c.SessionID,
		TaskID:        c.TaskID,
		CompletedAt:   c.CompletedAt,
		Position:      c.Position,
		PointsAwarded: c.PointsAwarded,
	}
}

func newCompletionViews(completions []models.TaskCompletion) []completionView {
	views := make([]completionView, len(completions))
	for i := range completions {
		views[i] = newCompletionView(&completions[i])
	}
	return views
}

type statView struct {
	BestDurationSeconds *int  `json:"bestDurationSeconds,omitempty"`
	BestSessionID       *int64 `json:"bestSessionId,omitempty"`
	StreakDays          int   `json:"streakDays"`
}

func newStatView(s *models.PerformanceStat) *statView {
	if s == nil {
		return nil
	}
	return &statView{
		BestDurationSeconds: s.BestDurationSeconds,
		BestSessionID:       s.BestSessionID,
		StreakDays:          s.StreakDays,
	}
}

type transactionView struct {
	ID              int64     `json:"id"`
	TransactionType string    `json:"transactionType"`
	PointsDelta     int       `json:"pointsDelta"`
	BalanceAfter    int       `json:"balanceAfter"`
	Reason          string    `json:"reason"`
	CreatedAt       time.Time `json:"createdAt"`
}

func newTransactionView(t *models.PointTransaction) transactionView {
	return transactionView{
		ID:              t.ID,
		TransactionType: t.TransactionType,
		PointsDelta:     t.PointsDelta,
		BalanceAfter:    t.BalanceAfter,
		Reason:          t.Reason,
		CreatedAt:       t.CreatedAt,
	}
}

func newTransactionViews(transactions []models.PointTransaction) []transactionView {
	views := make([]transactionView, len(transactions))
	for i := range transactions {
		views[i] = newTransactionView(&transactions[i])
	}
	return views
}

type achievementView struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AwardedAt   time.Time `json:"awardedAt"`
}

func newAchievementViews(achievements []models.Achievement, grants []models.UserAchievement) []achievementView {
	views := make([]achievementView, 0, len(grants))
	for i := range grants {
		views = append(views, achievementView{
			Code:        achievements[i].Code,
			Name:        achievements[i].Name,
			Description: achievements[i].Description,
			AwardedAt:   grants[i].AwardedAt,
		})
	}
	return views
}

type rewardView struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	PointsCost int    `json:"pointsCost"`
}

func newRewardView(r *models.Reward) rewardView {
	return rewardView{ID: r.ID, Name: r.Name, PointsCost: r.PointsCost}
}

func newRewardViews(rewards []models.Reward) []rewardView {
	views := make([]rewardView, len(rewards))
	for i := range rewards {
		views[i] = newRewardView(&rewards[i])
	}
	return views
}
