package models

import "time"

// SessionStatus is the lifecycle state of a routine session.
// Valid transitions: scheduled -> in_progress -> completed, with side exits
// from scheduled/in_progress to skipped or expired. completed is terminal.
type SessionStatus string

const (
	SessionScheduled  SessionStatus = "scheduled"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionSkipped    SessionStatus = "skipped"
	SessionExpired    SessionStatus = "expired"
)

// SessionDateLayout is the calendar-day format used for session dates
const SessionDateLayout = "2006-01-02"

// RoutineSession is one dated attempt at a routine by one child.
// At most one row exists per (routine, child, session date).
type RoutineSession struct {
	ID               int64
	RoutineID        int64
	ChildProfileID   int64
	SessionDate      string // SessionDateLayout, calendar day not timestamp
	Status           SessionStatus
	StartedAt        *time.Time
	CompletedAt      *time.Time
	PlannedEndAt     *time.Time // advisory auto-close deadline for the UI timer
	AutoClosedAt     *time.Time
	DurationSeconds  *int
	PointsAwarded    int
	BonusMultiplier  int
	BestTimeBeaten   bool
	CompletionReason *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TaskCompletion records one task completed within one session.
// Unique per (session, task); position and points are copied from the task
// at completion time so later task edits do not rewrite history.
type TaskCompletion struct {
	ID            int64
	SessionID     int64
	TaskID        int64
	CompletedAt   time.Time
	Position      int
	PointsAwarded int
}

// SessionDetails is the read-only projection returned to clients: the session,
// its recorded completions, the ordered task list and the current performance
// snapshot for the child+routine.
type SessionDetails struct {
	Session     RoutineSession
	Completions []TaskCompletion
	Tasks       []RoutineTask
	Performance *PerformanceStat
}
