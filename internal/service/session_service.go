package service

import (
	"encoding/json"
	"fmt"
	"time"

	"routinestar/internal/apperr"
	"routinestar/internal/models"
	"routinestar/internal/repository"
	"routinestar/internal/validation"
)

// TaskCompletionInput is one client-reported task completion inside a
// session-completion request
type TaskCompletionInput struct {
	TaskID      int64  `json:"taskId"`
	CompletedAt string `json:"completedAt"`
}

// StartResult is returned from StartSession: the session row plus the ordered
// task list so the client can render the routine before any task is done
type StartResult struct {
	Session *models.RoutineSession
	Tasks   []models.RoutineTask
}

// CompletionResult is the outcome of completing a session
type CompletionResult struct {
	Status          models.SessionStatus
	CompletedAt     time.Time
	DurationSeconds *int
	PointsAwarded   int
	BonusMultiplier int
	BestTimeBeaten  bool
	StreakDays      int
	TransactionID   *int64 // base ledger posting, nil when no points were awarded
}

// SessionService drives the routine session lifecycle:
// scheduled -> in_progress -> completed, with skip/expire side exits.
// State lives entirely in the store; each call is a single short request.
type SessionService struct {
	sessionRepo  *repository.SessionRepository
	taskRepo     *repository.TaskRepository
	routineRepo  *repository.RoutineRepository
	childRepo    *repository.ChildRepository
	statRepo     *repository.PerformanceRepository
	ledger       *LedgerService
	achievements *AchievementService
	now          func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo *repository.SessionRepository,
	taskRepo *repository.TaskRepository,
	routineRepo *repository.RoutineRepository,
	childRepo *repository.ChildRepository,
	statRepo *repository.PerformanceRepository,
	ledger *LedgerService,
	achievements *AchievementService,
) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		taskRepo:     taskRepo,
		routineRepo:  routineRepo,
		childRepo:    childRepo,
		statRepo:     statRepo,
		ledger:       ledger,
		achievements: achievements,
		now:          time.Now,
	}
}

// StartSession creates or resumes the session for (child, routine, date) and
// moves it to in_progress. A second start while one is already in progress
// for that day is a Conflict. An empty date means today.
func (s *SessionService) StartSession(childProfileID, routineID int64, sessionDate string) (*StartResult, error) {
	now := s.now()

	if sessionDate == "" {
		sessionDate = now.Format(models.SessionDateLayout)
	}
	sessionDate, err := validation.ParseSessionDate(sessionDate)
	if err != nil {
		return nil, err
	}

	routine, err := s.routineRepo.GetRoutineByID(routineID)
	if err != nil {
		return nil, err
	}
	if routine == nil {
		return nil, apperr.NotFound("routine not found")
	}

	child, err := s.childRepo.GetChildByID(childProfileID)
	if err != nil {
		return nil, err
	}
	if child == nil || child.FamilyID != routine.FamilyID {
		return nil, apperr.NotFound("child profile not found")
	}

	var plannedEndAt *time.Time
	if routine.AutoCloseAfterMinutes > 0 {
		deadline := now.Add(time.Duration(routine.AutoCloseAfterMinutes) * time.Minute)
		plannedEndAt = &deadline
	}

	session, err := s.sessionRepo.StartSession(routineID, childProfileID, sessionDate, now, plannedEndAt)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListActiveTasks(routineID, childProfileID)
	if err != nil {
		return nil, err
	}

	return &StartResult{Session: session, Tasks: tasks}, nil
}

// CompleteTask records one task completion within an in-progress session,
// enforcing the mandatory-predecessor ordering rule. The task's point value
// and position are copied onto the completion row so later task edits do not
// change recorded history.
func (s *SessionService) CompleteTask(sessionID, taskID int64, completedAt time.Time) (*models.TaskCompletion, error) {
	session, err := s.getInProgressSession(sessionID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListActiveTasks(session.RoutineID, session.ChildProfileID)
	if err != nil {
		return nil, err
	}

	task := findTask(tasks, taskID)
	if task == nil {
		return nil, apperr.NotFound("task not found in this routine")
	}

	completions, err := s.taskRepo.ListCompletions(sessionID)
	if err != nil {
		return nil, err
	}

	completed := make(map[int64]bool, len(completions))
	for _, c := range completions {
		if c.TaskID == taskID {
			return nil, apperr.Conflict("task already completed in this session")
		}
		completed[c.TaskID] = true
	}

	if err := checkTaskOrder(tasks, completed, taskID); err != nil {
		return nil, err
	}

	return s.taskRepo.InsertCompletion(sessionID, taskID, completedAt, task.Position, task.PointValue)
}

// UndoTaskCompletion removes a completion from an in-progress session.
// Completed sessions are immutable, so undo is rejected once the session's
// totals are settled.
func (s *SessionService) UndoTaskCompletion(sessionID, completionID int64) error {
	if _, err := s.getInProgressSession(sessionID); err != nil {
		return err
	}

	return s.taskRepo.DeleteCompletion(sessionID, completionID)
}

// CompleteSession closes out an in-progress session: it records any not-yet-
// recorded task completions from the payload, computes points and the
// best-time bonus, updates the performance stats, posts to the ledger and
// evaluates achievements. The call is safe to retry: already-recorded task
// completions are swallowed and a second full call fails the in-progress
// precondition without double-posting.
func (s *SessionService) CompleteSession(sessionID int64, completedTasks []TaskCompletionInput) (*CompletionResult, error) {
	session, err := s.getInProgressSession(sessionID)
	if err != nil {
		return nil, err
	}

	// Validate every timestamp before mutating anything
	timestamps := make([]time.Time, len(completedTasks))
	for i, input := range completedTasks {
		t, err := validation.ParseTimestamp(input.CompletedAt)
		if err != nil {
			return nil, err
		}
		timestamps[i] = t
	}

	tasks, err := s.taskRepo.ListActiveTasks(session.RoutineID, session.ChildProfileID)
	if err != nil {
		return nil, err
	}

	taskIDs := make([]int64, len(completedTasks))
	for i, input := range completedTasks {
		taskIDs[i] = input.TaskID
	}
	basePoints := basePointsFor(tasks, taskIDs)

	// Record any completions the client reported but we have not stored yet.
	// Tasks already recorded (a retried request) are skipped; anything else,
	// including an ordering violation, aborts before the session settles.
	existing, err := s.taskRepo.ListCompletions(sessionID)
	if err != nil {
		return nil, err
	}
	recorded := make(map[int64]bool, len(existing))
	for _, c := range existing {
		recorded[c.TaskID] = true
	}
	for i, input := range completedTasks {
		if recorded[input.TaskID] {
			continue
		}
		if _, err := s.CompleteTask(sessionID, input.TaskID, timestamps[i]); err != nil {
			return nil, err
		}
		recorded[input.TaskID] = true
	}

	now := s.now()
	completedAt := resolveCompletedAt(timestamps, now)
	duration := computeDuration(session.StartedAt, completedAt)

	stat, err := s.statRepo.GetStat(session.ChildProfileID, session.RoutineID)
	if err != nil {
		return nil, err
	}

	var previousBest *int
	priorStreak := 0
	if stat != nil {
		previousBest = stat.BestDurationSeconds
		priorStreak = stat.StreakDays
	}

	bestTimeBeaten := beatsBest(previousBest, duration)
	bonusMultiplier := 1
	if bestTimeBeaten {
		bonusMultiplier = 2
	}
	totalPoints := basePoints * bonusMultiplier

	if err := s.sessionRepo.MarkCompleted(sessionID, completedAt, duration, bestTimeBeaten, totalPoints, bonusMultiplier); err != nil {
		return nil, err
	}

	hasPrior, gap, err := s.priorCompletionGap(stat, session)
	if err != nil {
		return nil, err
	}
	streakDays := nextStreak(hasPrior, gap, priorStreak)

	newStat := &models.PerformanceStat{
		ChildProfileID:      session.ChildProfileID,
		RoutineID:           session.RoutineID,
		BestDurationSeconds: previousBest,
		StreakDays:          streakDays,
	}
	if stat != nil {
		newStat.BestSessionID = stat.BestSessionID
	}
	if isNewBest(previousBest, duration) {
		newStat.BestDurationSeconds = duration
		newStat.BestSessionID = &session.ID
	}
	lastID := session.ID
	newStat.LastCompletedSessionID = &lastID

	if err := s.statRepo.UpsertStat(newStat); err != nil {
		return nil, err
	}

	child, err := s.childRepo.GetChildByID(session.ChildProfileID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, apperr.NotFound("child profile not found")
	}

	referenceTable := "routine_sessions"
	var baseTransactionID *int64
	if basePoints > 0 {
		baseTx, err := s.ledger.Post(child.ID, child.FamilyID, basePoints,
			models.TransactionTaskCompletion, "Routine completed", &session.ID, &referenceTable)
		if err != nil {
			return nil, err
		}
		baseTransactionID = &baseTx.ID

		if bestTimeBeaten {
			// Posted after the base entry so balanceAfter stays a running total
			_, err := s.ledger.Post(child.ID, child.FamilyID, basePoints,
				models.TransactionRoutineBonus, "Best time bonus", &session.ID, &referenceTable)
			if err != nil {
				return nil, err
			}
		}
	}

	s.awardForOutcome(child, session.ID, !hasPrior, bestTimeBeaten && basePoints > 0, streakDays)

	return &CompletionResult{
		Status:          models.SessionCompleted,
		CompletedAt:     completedAt,
		DurationSeconds: duration,
		PointsAwarded:   totalPoints,
		BonusMultiplier: bonusMultiplier,
		BestTimeBeaten:  bestTimeBeaten,
		StreakDays:      streakDays,
		TransactionID:   baseTransactionID,
	}, nil
}

// SkipSession marks a session skipped or expired. Completed sessions are
// terminal and cannot be skipped. Only expiry stamps autoClosedAt.
func (s *SessionService) SkipSession(sessionID int64, status models.SessionStatus, reason *string) error {
	if status != models.SessionSkipped && status != models.SessionExpired {
		return apperr.Validation("status must be skipped or expired")
	}

	session, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return apperr.NotFound("session not found")
	}
	if session.Status == models.SessionCompleted {
		return apperr.Conflict("a completed session cannot be skipped")
	}

	var autoClosedAt *time.Time
	if status == models.SessionExpired {
		now := s.now()
		autoClosedAt = &now
	}

	return s.sessionRepo.MarkSkipped(sessionID, status, reason, autoClosedAt)
}

// GetSessionDetails returns the session with its completions, the ordered
// task list and the current performance snapshot
func (s *SessionService) GetSessionDetails(sessionID int64) (*models.SessionDetails, error) {
	session, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.NotFound("session not found")
	}

	completions, err := s.taskRepo.ListCompletions(sessionID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListActiveTasks(session.RoutineID, session.ChildProfileID)
	if err != nil {
		return nil, err
	}

	stat, err := s.statRepo.GetStat(session.ChildProfileID, session.RoutineID)
	if err != nil {
		return nil, err
	}

	return &models.SessionDetails{
		Session:     *session,
		Completions: completions,
		Tasks:       tasks,
		Performance: stat,
	}, nil
}

// ExpireOverdueSessions marks every in-progress session whose auto-close
// deadline has passed as expired. Returns the number of sessions closed.
func (s *SessionService) ExpireOverdueSessions() (int, error) {
	overdue, err := s.sessionRepo.ListOverdueSessions(s.now())
	if err != nil {
		return 0, err
	}

	reason := "auto-closed after deadline"
	closed := 0
	for _, session := range overdue {
		if err := s.SkipSession(session.ID, models.SessionExpired, &reason); err != nil {
			// A concurrent completion can win the race; skip and move on
			if apperr.IsConflict(err) {
				continue
			}
			return closed, err
		}
		closed++
	}
	return closed, nil
}

// AuthorizeSession checks that a session belongs to the given child.
// Sessions of other children are reported as NotFound, not Forbidden, so the
// response does not leak which session IDs exist.
func (s *SessionService) AuthorizeSession(sessionID, childProfileID int64) error {
	session, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return err
	}
	if session == nil || session.ChildProfileID != childProfileID {
		return apperr.NotFound("session not found")
	}
	return nil
}

// ListSessions returns a child's recent sessions, newest first
func (s *SessionService) ListSessions(childProfileID int64, limit int) ([]models.RoutineSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	return s.sessionRepo.ListSessionsByChild(childProfileID, limit)
}

// getInProgressSession loads a session and checks the in-progress precondition
func (s *SessionService) getInProgressSession(sessionID int64) (*models.RoutineSession, error) {
	session, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.NotFound("session not found")
	}
	if session.Status != models.SessionInProgress {
		return nil, apperr.Conflict("session is not in progress")
	}
	return session, nil
}

// priorCompletionGap finds the most recent prior completion for the same
// (child, routine) through the stat row's last-completed pointer and returns
// the calendar gap to this session's date. A same-day redo resolves to the
// session's own earlier completion, giving a gap of zero.
func (s *SessionService) priorCompletionGap(stat *models.PerformanceStat, session *models.RoutineSession) (bool, int, error) {
	if stat == nil || stat.LastCompletedSessionID == nil {
		return false, 0, nil
	}

	prior, err := s.sessionRepo.GetSessionByID(*stat.LastCompletedSessionID)
	if err != nil {
		return false, 0, err
	}
	if prior == nil {
		return false, 0, nil
	}

	gap, err := dateGapDays(prior.SessionDate, session.SessionDate)
	if err != nil {
		return false, 0, fmt.Errorf("failed to compute streak gap: %w", err)
	}
	return true, gap, nil
}

// awardForOutcome evaluates achievement codes for a completed session.
// Best-effort: the awarder logs and swallows its own failures.
func (s *SessionService) awardForOutcome(child *models.ChildProfile, sessionID int64, firstEver, speedster bool, streakDays int) {
	metadata, _ := json.Marshal(map[string]int64{"session_id": sessionID})
	meta := string(metadata)

	var candidates []AwardCandidate
	if firstEver {
		candidates = append(candidates, AwardCandidate{Code: models.AchievementFirstRoutine, Metadata: &meta})
	}
	if speedster {
		candidates = append(candidates, AwardCandidate{Code: models.AchievementSpeedster, Metadata: &meta})
	}
	if streakDays >= 3 {
		candidates = append(candidates, AwardCandidate{Code: models.AchievementStreak3, Metadata: &meta})
	}
	if streakDays >= 7 {
		candidates = append(candidates, AwardCandidate{Code: models.AchievementStreak7, Metadata: &meta})
	}

	if len(candidates) > 0 {
		s.achievements.AwardIfEligible(child.ID, child.FamilyID, candidates)
	}
}
