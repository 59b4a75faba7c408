package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"routinestar/internal/apperr"
	"routinestar/internal/database"
	"routinestar/internal/models"
	"routinestar/internal/repository"
)

// testEnv wires the full service stack against a throwaway SQLite database
type testEnv struct {
	db       *database.DB
	family   *models.Family
	child    *models.ChildProfile
	routine  *models.Routine
	tasks    []models.RoutineTask
	sessions *SessionService
	ledger   *LedgerService
	awards   *AchievementService
	rewards  *RewardService
	families *FamilyService
	auth     *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	familyRepo := repository.NewFamilyRepository(db)
	childRepo := repository.NewChildRepository(db)
	routineRepo := repository.NewRoutineRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	performanceRepo := repository.NewPerformanceRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	rewardRepo := repository.NewRewardRepository(db)

	ledger := NewLedgerService(ledgerRepo)
	awards := NewAchievementService(achievementRepo, nil)
	if err := awards.SeedDefaults(); err != nil {
		t.Fatalf("Failed to seed achievements: %v", err)
	}
	sessions := NewSessionService(sessionRepo, taskRepo, routineRepo, childRepo, performanceRepo, ledger, awards)
	rewards := NewRewardService(rewardRepo, childRepo, ledger, nil)
	families := NewFamilyService(familyRepo, childRepo)
	auth := NewAuthService(familyRepo, childRepo, "test-secret", time.Hour)

	family, _, err := families.CreateFamily("Test Family", "parent@example.com")
	if err != nil {
		t.Fatalf("Failed to create family: %v", err)
	}
	child, _, err := families.AddChild(family.ID, "Alex", "#FF8800")
	if err != nil {
		t.Fatalf("Failed to create child: %v", err)
	}
	routine, err := routineRepo.CreateRoutine(family.ID, "Morning Routine", "mon,tue,wed,thu,fri", 0)
	if err != nil {
		t.Fatalf("Failed to create routine: %v", err)
	}

	var tasks []models.RoutineTask
	for _, spec := range []struct {
		title    string
		points   int
		optional bool
	}{
		{"Brush teeth", 15, false},
		{"Get dressed", 20, false},
		{"Make bed", 10, true},
	} {
		task, err := taskRepo.CreateTask(routine.ID, child.ID, spec.title, spec.points, spec.optional)
		if err != nil {
			t.Fatalf("Failed to create task: %v", err)
		}
		tasks = append(tasks, *task)
	}

	return &testEnv{
		db:       db,
		family:   family,
		child:    child,
		routine:  routine,
		tasks:    tasks,
		sessions: sessions,
		ledger:   ledger,
		awards:   awards,
		rewards:  rewards,
		families: families,
		auth:     auth,
	}
}

// completeDay starts and completes a session on the given date, with the
// clock advanced by elapsed between start and completion
func (env *testEnv) completeDay(t *testing.T, date string, elapsed time.Duration, taskIDs []int64) *CompletionResult {
	t.Helper()

	start, err := time.Parse("2006-01-02 15:04", date+" 07:30")
	if err != nil {
		t.Fatalf("bad test date: %v", err)
	}

	env.sessions.now = func() time.Time { return start }
	result, err := env.sessions.StartSession(env.child.ID, env.routine.ID, date)
	if err != nil {
		t.Fatalf("StartSession(%s) failed: %v", date, err)
	}

	env.sessions.now = func() time.Time { return start.Add(elapsed) }
	inputs := make([]TaskCompletionInput, len(taskIDs))
	for i, id := range taskIDs {
		inputs[i] = TaskCompletionInput{TaskID: id, CompletedAt: start.Add(elapsed).Format(time.RFC3339)}
	}
	outcome, err := env.sessions.CompleteSession(result.Session.ID, inputs)
	if err != nil {
		t.Fatalf("CompleteSession(%s) failed: %v", date, err)
	}
	return outcome
}

func (env *testEnv) mandatoryTaskIDs() []int64 {
	return []int64{env.tasks[0].ID, env.tasks[1].ID}
}

func TestStartSession(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.sessions.StartSession(env.child.ID, env.routine.ID, "2026-03-16")
	if err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	if result.Session.Status != models.SessionInProgress {
		t.Errorf("status = %v, want in_progress", result.Session.Status)
	}
	if result.Session.StartedAt == nil {
		t.Error("startedAt not stamped")
	}
	if len(result.Tasks) != 3 {
		t.Errorf("got %d tasks, want 3", len(result.Tasks))
	}

	t.Run("second start same day conflicts", func(t *testing.T) {
		_, err := env.sessions.StartSession(env.child.ID, env.routine.ID, "2026-03-16")
		if !apperr.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("unknown routine", func(t *testing.T) {
		_, err := env.sessions.StartSession(env.child.ID, 9999, "2026-03-16")
		if !apperr.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestCompleteSessionFirstRun(t *testing.T) {
	env := newTestEnv(t)

	outcome := env.completeDay(t, "2026-03-16", 10*time.Minute, env.mandatoryTaskIDs())

	if outcome.PointsAwarded != 35 {
		t.Errorf("pointsAwarded = %d, want 35", outcome.PointsAwarded)
	}
	if outcome.BonusMultiplier != 1 {
		t.Errorf("bonusMultiplier = %d, want 1 on first run", outcome.BonusMultiplier)
	}
	if outcome.BestTimeBeaten {
		t.Error("first run cannot beat a best time")
	}
	if outcome.DurationSeconds == nil || *outcome.DurationSeconds != 600 {
		t.Errorf("durationSeconds = %v, want 600", outcome.DurationSeconds)
	}
	if outcome.StreakDays != 1 {
		t.Errorf("streakDays = %d, want 1", outcome.StreakDays)
	}

	balance, err := env.ledger.Balance(env.child.ID, env.family.ID)
	if err != nil {
		t.Fatalf("Balance() failed: %v", err)
	}
	if balance != 35 {
		t.Errorf("balance = %d, want 35", balance)
	}

	achievements, _, err := env.awards.ListForChild(env.child.ID)
	if err != nil {
		t.Fatalf("ListForChild() failed: %v", err)
	}
	if len(achievements) != 1 || achievements[0].Code != models.AchievementFirstRoutine {
		t.Errorf("expected exactly the first_routine achievement, got %v", achievements)
	}
}

func TestCompleteSessionBestTimeBonus(t *testing.T) {
	env := newTestEnv(t)

	env.completeDay(t, "2026-03-16", 10*time.Minute, env.mandatoryTaskIDs())
	outcome := env.completeDay(t, "2026-03-17", 5*time.Minute, env.mandatoryTaskIDs())

	if !outcome.BestTimeBeaten {
		t.Fatal("faster run should beat the best time")
	}
	if outcome.BonusMultiplier != 2 {
		t.Errorf("bonusMultiplier = %d, want 2", outcome.BonusMultiplier)
	}
	if outcome.PointsAwarded != 70 {
		t.Errorf("pointsAwarded = %d, want 70", outcome.PointsAwarded)
	}
	if outcome.StreakDays != 2 {
		t.Errorf("streakDays = %d, want 2", outcome.StreakDays)
	}

	// 35 base day one, then 35 base + 35 bonus day two
	balance, err := env.ledger.Balance(env.child.ID, env.family.ID)
	if err != nil {
		t.Fatalf("Balance() failed: %v", err)
	}
	if balance != 105 {
		t.Errorf("balance = %d, want 105", balance)
	}

	history, err := env.ledger.History(env.child.ID, env.family.ID, 10)
	if err != nil {
		t.Fatalf("History() failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("got %d ledger entries, want 3", len(history))
	}
	// Newest first: every balanceAfter equals the prior balance plus delta
	running := 0
	for i := len(history) - 1; i >= 0; i-- {
		running += history[i].PointsDelta
		if history[i].BalanceAfter != running {
			t.Errorf("entry %d: balanceAfter = %d, want %d", history[i].ID, history[i].BalanceAfter, running)
		}
	}
	if history[0].TransactionType != models.TransactionRoutineBonus {
		t.Errorf("latest entry type = %s, want routine_bonus", history[0].TransactionType)
	}
}

func TestCompleteSessionIdempotence(t *testing.T) {
	env := newTestEnv(t)

	start := time.Date(2026, 3, 16, 7, 30, 0, 0, time.UTC)
	env.sessions.now = func() time.Time { return start }
	result, err := env.sessions.StartSession(env.child.ID, env.routine.ID, "2026-03-16")
	if err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}

	inputs := []TaskCompletionInput{
		{TaskID: env.tasks[0].ID, CompletedAt: start.Add(time.Minute).Format(time.RFC3339)},
		{TaskID: env.tasks[1].ID, CompletedAt: start.Add(2 * time.Minute).Format(time.RFC3339)},
	}
	if _, err := env.sessions.CompleteSession(result.Session.ID, inputs); err != nil {
		t.Fatalf("CompleteSession() failed: %v", err)
	}

	// A retried completion must not double-post points
	_, err = env.sessions.CompleteSession(result.Session.ID, inputs)
	if !apperr.IsConflict(err) {
		t.Fatalf("expected conflict on second completion, got %v", err)
	}

	balance, err := env.ledger.Balance(env.child.ID, env.family.ID)
	if err != nil {
		t.Fatalf("Balance() failed: %v", err)
	}
	if balance != 35 {
		t.Errorf("balance = %d, want 35 after retry", balance)
	}
}

func TestCompleteSessionRejectsGatedTask(t *testing.T) {
	env := newTestEnv(t)

	start := time.Date(2026, 3, 16, 7, 30, 0, 0, time.UTC)
	env.sessions.now = func() time.Time { return start }
	result, err := env.sessions.StartSession(env.child.ID, env.routine.ID, "2026-03-16")
	if err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}

	// Only the second mandatory task, with the first still open
	inputs := []TaskCompletionInput{
		{TaskID: env.tasks[1].ID, CompletedAt: start.Add(time.Minute).Format(time.RFC3339)},
	}
	_, err = env.sessions.CompleteSession(result.Session.ID, inputs)
	if !apperr.IsConflict(err) {
		t.Fatalf("expected ordering conflict, got %v", err)
	}

	details, err := env.sessions.GetSessionDetails(result.Session.ID)
	if err != nil {
		t.Fatalf("GetSessionDetails() failed: %v", err)
	}
	if details.Session.Status != models.SessionInProgress {
		t.Errorf("status = %v, want in_progress after rejected completion", details.Session.Status)
	}
	if len(details.Completions) != 0 {
		t.Errorf("got %d completions, want 0", len(details.Completions))
	}

	balance, err := env.ledger.Balance(env.child.ID, env.family.ID)
	if err != nil {
		t.Fatalf("Balance() failed: %v", err)
	}
	if balance != 0 {
		t.Errorf("balance = %d, want 0 after rejected completion", balance)
	}

	t.Run("session still completable in order", func(t *testing.T) {
		ordered := []TaskCompletionInput{
			{TaskID: env.tasks[0].ID, CompletedAt: start.Add(2 * time.Minute).Format(time.RFC3339)},
			{TaskID: env.tasks[1].ID, CompletedAt: start.Add(3 * time.Minute).Format(time.RFC3339)},
		}
		outcome, err := env.sessions.CompleteSession(result.Session.ID, ordered)
		if err != nil {
			t.Fatalf("CompleteSession() failed: %v", err)
		}
		if outcome.PointsAwarded != 35 {
			t.Errorf("pointsAwarded = %d, want 35", outcome.PointsAwarded)
		}
	})
}

func TestSameDayRedo(t *testing.T) {
	env := newTestEnv(t)

	env.completeDay(t, "2026-03-16", 10*time.Minute, env.mandatoryTaskIDs())

	// Restarting the same date resumes the completed row in place
	restart := time.Date(2026, 3, 16, 18, 0, 0, 0, time.UTC)
	env.sessions.now = func() time.Time { return restart }
	result, err := env.sessions.StartSession(env.child.ID, env.routine.ID, "2026-03-16")
	if err != nil {
		t.Fatalf("StartSession() on same date failed: %v", err)
	}
	if result.Session.Status != models.SessionInProgress {
		t.Errorf("status = %v, want in_progress on resume", result.Session.Status)
	}
	if result.Session.PointsAwarded != 35 {
		t.Errorf("resumed pointsAwarded = %d, want 35 preserved", result.Session.PointsAwarded)
	}
	if result.Session.CompletedAt != nil {
		t.Error("completedAt not cleared on resume")
	}

	// Re-complete slower than the morning run, so no bonus
	env.sessions.now = func() time.Time { return restart.Add(12 * time.Minute) }
	inputs := make([]TaskCompletionInput, 0, 2)
	for _, id := range env.mandatoryTaskIDs() {
		inputs = append(inputs, TaskCompletionInput{
			TaskID:      id,
			CompletedAt: restart.Add(12 * time.Minute).Format(time.RFC3339),
		})
	}
	outcome, err := env.sessions.CompleteSession(result.Session.ID, inputs)
	if err != nil {
		t.Fatalf("CompleteSession() on redo failed: %v", err)
	}

	// A same-day redo keeps the streak where it is
	if outcome.StreakDays != 1 {
		t.Errorf("streakDays = %d, want 1 unchanged by the redo", outcome.StreakDays)
	}
	if outcome.BestTimeBeaten {
		t.Error("slower redo should not beat the best time")
	}
	if outcome.PointsAwarded != 35 {
		t.Errorf("pointsAwarded = %d, want 35", outcome.PointsAwarded)
	}

	// Both runs posted to the ledger
	balance, err := env.ledger.Balance(env.child.ID, env.family.ID)
	if err != nil {
		t.Fatalf("Balance() failed: %v", err)
	}
	if balance != 70 {
		t.Errorf("balance = %d, want 70 after both runs", balance)
	}
	history, err := env.ledger.History(env.child.ID, env.family.ID, 10)
	if err != nil {
		t.Fatalf("History() failed: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("got %d ledger entries, want 2", len(history))
	}
}

func TestCompleteTaskOrdering(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.sessions.StartSession(env.child.ID, env.routine.ID, "2026-03-16")
	if err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	sessionID := result.Session.ID
	now := time.Now()

	// Second mandatory task before the first
	_, err = env.sessions.CompleteTask(sessionID, env.tasks[1].ID, now)
	if !apperr.IsConflict(err) {
		t.Fatalf("expected ordering conflict, got %v", err)
	}

	if _, err := env.sessions.CompleteTask(sessionID, env.tasks[0].ID, now); err != nil {
		t.Fatalf("CompleteTask(first) failed: %v", err)
	}
	if _, err := env.sessions.CompleteTask(sessionID, env.tasks[1].ID, now); err != nil {
		t.Fatalf("CompleteTask(second) failed: %v", err)
	}

	t.Run("duplicate completion conflicts", func(t *testing.T) {
		_, err := env.sessions.CompleteTask(sessionID, env.tasks[0].ID, now)
		if !apperr.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("optional task skippable", func(t *testing.T) {
		// Mandatory task after an uncompleted optional one is allowed;
		// already covered by task two succeeding above with task three open
		completion, err := env.sessions.CompleteTask(sessionID, env.tasks[2].ID, now)
		if err != nil {
			t.Fatalf("CompleteTask(optional) failed: %v", err)
		}
		if completion.PointsAwarded != 10 {
			t.Errorf("recorded points = %d, want 10", completion.PointsAwarded)
		}
	})
}

func TestUndoTaskCompletion(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.sessions.StartSession(env.child.ID, env.routine.ID, "2026-03-16")
	if err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	sessionID := result.Session.ID

	completion, err := env.sessions.CompleteTask(sessionID, env.tasks[0].ID, time.Now())
	if err != nil {
		t.Fatalf("CompleteTask() failed: %v", err)
	}

	if err := env.sessions.UndoTaskCompletion(sessionID, completion.ID); err != nil {
		t.Fatalf("UndoTaskCompletion() failed: %v", err)
	}

	// Re-completion after undo is allowed
	if _, err := env.sessions.CompleteTask(sessionID, env.tasks[0].ID, time.Now()); err != nil {
		t.Fatalf("CompleteTask() after undo failed: %v", err)
	}

	t.Run("unknown completion", func(t *testing.T) {
		if err := env.sessions.UndoTaskCompletion(sessionID, 9999); !apperr.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestStreakProgression(t *testing.T) {
	env := newTestEnv(t)

	days := []string{"2026-03-16", "2026-03-17", "2026-03-18"}
	var last *CompletionResult
	for _, day := range days {
		last = env.completeDay(t, day, 10*time.Minute, env.mandatoryTaskIDs())
	}
	if last.StreakDays != 3 {
		t.Errorf("streakDays = %d, want 3 after consecutive days", last.StreakDays)
	}

	achievements, _, err := env.awards.ListForChild(env.child.ID)
	if err != nil {
		t.Fatalf("ListForChild() failed: %v", err)
	}
	codes := make(map[string]bool)
	for _, a := range achievements {
		codes[a.Code] = true
	}
	if !codes[models.AchievementStreak3] {
		t.Error("streak_3 not granted after three consecutive days")
	}

	t.Run("gap resets streak", func(t *testing.T) {
		outcome := env.completeDay(t, "2026-03-21", 10*time.Minute, env.mandatoryTaskIDs())
		if outcome.StreakDays != 1 {
			t.Errorf("streakDays = %d, want 1 after a gap", outcome.StreakDays)
		}
	})
}

func TestSkipSession(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.sessions.StartSession(env.child.ID, env.routine.ID, "2026-03-16")
	if err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}

	reason := "sick day"
	if err := env.sessions.SkipSession(result.Session.ID, models.SessionSkipped, &reason); err != nil {
		t.Fatalf("SkipSession() failed: %v", err)
	}

	details, err := env.sessions.GetSessionDetails(result.Session.ID)
	if err != nil {
		t.Fatalf("GetSessionDetails() failed: %v", err)
	}
	if details.Session.Status != models.SessionSkipped {
		t.Errorf("status = %v, want skipped", details.Session.Status)
	}
	if details.Session.CompletionReason == nil || *details.Session.CompletionReason != reason {
		t.Errorf("completionReason = %v, want %q", details.Session.CompletionReason, reason)
	}

	t.Run("completed session cannot be skipped", func(t *testing.T) {
		outcome := env.completeDay(t, "2026-03-17", 5*time.Minute, env.mandatoryTaskIDs())
		_ = outcome

		sessions, err := env.sessions.ListSessions(env.child.ID, 10)
		if err != nil {
			t.Fatalf("ListSessions() failed: %v", err)
		}
		var completedID int64
		for _, s := range sessions {
			if s.Status == models.SessionCompleted {
				completedID = s.ID
			}
		}
		if completedID == 0 {
			t.Fatal("no completed session found")
		}
		if err := env.sessions.SkipSession(completedID, models.SessionSkipped, nil); !apperr.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		err := env.sessions.SkipSession(result.Session.ID, models.SessionCompleted, nil)
		if !apperr.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestExpireOverdueSessions(t *testing.T) {
	env := newTestEnv(t)

	routineRepo := repository.NewRoutineRepository(env.db)
	timed, err := routineRepo.CreateRoutine(env.family.ID, "Bedtime Routine", "", 30)
	if err != nil {
		t.Fatalf("CreateRoutine() failed: %v", err)
	}

	start := time.Date(2026, 3, 16, 19, 0, 0, 0, time.UTC)
	env.sessions.now = func() time.Time { return start }
	result, err := env.sessions.StartSession(env.child.ID, timed.ID, "2026-03-16")
	if err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	if result.Session.PlannedEndAt == nil {
		t.Fatal("plannedEndAt not stamped for a timed routine")
	}

	// Deadline not yet reached
	env.sessions.now = func() time.Time { return start.Add(10 * time.Minute) }
	closed, err := env.sessions.ExpireOverdueSessions()
	if err != nil {
		t.Fatalf("ExpireOverdueSessions() failed: %v", err)
	}
	if closed != 0 {
		t.Errorf("closed = %d, want 0 before the deadline", closed)
	}

	env.sessions.now = func() time.Time { return start.Add(31 * time.Minute) }
	closed, err = env.sessions.ExpireOverdueSessions()
	if err != nil {
		t.Fatalf("ExpireOverdueSessions() failed: %v", err)
	}
	if closed != 1 {
		t.Fatalf("closed = %d, want 1 after the deadline", closed)
	}

	details, err := env.sessions.GetSessionDetails(result.Session.ID)
	if err != nil {
		t.Fatalf("GetSessionDetails() failed: %v", err)
	}
	if details.Session.Status != models.SessionExpired {
		t.Errorf("status = %v, want expired", details.Session.Status)
	}
	if details.Session.AutoClosedAt == nil {
		t.Error("autoClosedAt not stamped on expiry")
	}
}
