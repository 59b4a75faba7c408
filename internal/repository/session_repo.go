package repository

import (
	"database/sql"
	"fmt"
	"time"

	"routinestar/internal/apperr"
	"routinestar/internal/database"
	"routinestar/internal/models"
)

// SessionRepository handles database operations for routine sessions
type SessionRepository struct {
	db *database.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `
	id, routine_id, child_profile_id, session_date, status, started_at,
	completed_at, planned_end_at, auto_closed_at, duration_seconds,
	points_awarded, bonus_multiplier, best_time_beaten, completion_reason,
	created_at, updated_at
`

// GetSessionByID retrieves a session by ID
func (r *SessionRepository) GetSessionByID(sessionID int64) (*models.RoutineSession, error) {
	query := "SELECT " + sessionColumns + " FROM routine_sessions WHERE id = ?"
	return scanSession(r.db.QueryRow(query, sessionID))
}

// StartSession moves the session for (routine, child, date) to in_progress.
// An existing row in a non-conflicting status is resumed in place, preserving
// accumulated points; otherwise a new row is inserted. The whole
// find-or-create-then-transition runs in one transaction so the in-progress
// precondition holds at write time, with the unique (routine, child, date)
// index backing the insert path against concurrent starts.
func (r *SessionRepository) StartSession(routineID, childProfileID int64, sessionDate string, startedAt time.Time, plannedEndAt *time.Time) (*models.RoutineSession, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		SELECT id, status FROM routine_sessions
		WHERE routine_id = ? AND child_profile_id = ? AND session_date = ?
	`
	var existingID int64
	var status models.SessionStatus
	err = tx.QueryRow(query, routineID, childProfileID, sessionDate).Scan(&existingID, &status)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	var sessionID int64
	if err == nil {
		if status == models.SessionInProgress {
			return nil, apperr.Conflict("session already in progress for this day")
		}

		query = `
			UPDATE routine_sessions
			SET status = ?, started_at = ?, planned_end_at = ?, bonus_multiplier = 1,
			    auto_closed_at = NULL, completed_at = NULL, duration_seconds = NULL,
			    completion_reason = NULL, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`
		if _, err := tx.Exec(query, models.SessionInProgress, startedAt, plannedEndAt, existingID); err != nil {
			return nil, fmt.Errorf("failed to resume session: %w", err)
		}
		sessionID = existingID
	} else {
		query = `
			INSERT INTO routine_sessions
				(routine_id, child_profile_id, session_date, status, started_at, planned_end_at,
				 points_awarded, bonus_multiplier, best_time_beaten)
			VALUES (?, ?, ?, ?, ?, ?, 0, 1, FALSE)
		`
		sessionID, err = tx.ExecReturningID(query,
			routineID, childProfileID, sessionDate, models.SessionInProgress, startedAt, plannedEndAt)
		if err != nil {
			if r.db.Dialect.IsUniqueViolation(err) {
				return nil, apperr.Conflict("session already in progress for this day")
			}
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return r.GetSessionByID(sessionID)
}

// MarkCompleted finalizes a session with its computed outcome
func (r *SessionRepository) MarkCompleted(sessionID int64, completedAt time.Time, durationSeconds *int, bestTimeBeaten bool, pointsAwarded, bonusMultiplier int) error {
	query := `
		UPDATE routine_sessions
		SET status = ?, completed_at = ?, duration_seconds = ?, best_time_beaten = ?,
		    points_awarded = ?, bonus_multiplier = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := r.db.Exec(query, models.SessionCompleted, completedAt, durationSeconds,
		bestTimeBeaten, pointsAwarded, bonusMultiplier, sessionID)
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	return nil
}

// MarkSkipped sets a skipped or expired status with an optional reason.
// autoClosedAt is stamped only for expiry.
func (r *SessionRepository) MarkSkipped(sessionID int64, status models.SessionStatus, reason *string, autoClosedAt *time.Time) error {
	query := `
		UPDATE routine_sessions
		SET status = ?, completion_reason = ?, auto_closed_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := r.db.Exec(query, status, reason, autoClosedAt, sessionID)
	if err != nil {
		return fmt.Errorf("failed to skip session: %w", err)
	}
	return nil
}

// ListSessionsByChild retrieves recent sessions for a child
func (r *SessionRepository) ListSessionsByChild(childProfileID int64, limit int) ([]models.RoutineSession, error) {
	query := "SELECT " + sessionColumns + `
		FROM routine_sessions
		WHERE child_profile_id = ?
		ORDER BY session_date DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, childProfileID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.RoutineSession
	for rows.Next() {
		session, err := scanSessionRow(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}

	return sessions, rows.Err()
}

// ListOverdueSessions retrieves in-progress sessions whose auto-close
// deadline has passed
func (r *SessionRepository) ListOverdueSessions(now time.Time) ([]models.RoutineSession, error) {
	query := "SELECT " + sessionColumns + `
		FROM routine_sessions
		WHERE status = ? AND planned_end_at IS NOT NULL AND planned_end_at < ?
		ORDER BY id ASC
	`

	rows, err := r.db.Query(query, models.SessionInProgress, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.RoutineSession
	for rows.Next() {
		session, err := scanSessionRow(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}

	return sessions, rows.Err()
}

func scanSession(row *sql.Row) (*models.RoutineSession, error) {
	session := &models.RoutineSession{}
	var startedAt, completedAt, plannedEndAt, autoClosedAt sql.NullTime
	var durationSeconds sql.NullInt64
	var completionReason sql.NullString

	err := row.Scan(
		&session.ID,
		&session.RoutineID,
		&session.ChildProfileID,
		&session.SessionDate,
		&session.Status,
		&startedAt,
		&completedAt,
		&plannedEndAt,
		&autoClosedAt,
		&durationSeconds,
		&session.PointsAwarded,
		&session.BonusMultiplier,
		&session.BestTimeBeaten,
		&completionReason,
		&session.CreatedAt,
		&session.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	applySessionNullables(session, startedAt, completedAt, plannedEndAt, autoClosedAt, durationSeconds, completionReason)
	return session, nil
}

func scanSessionRow(rows *sql.Rows) (*models.RoutineSession, error) {
	session := &models.RoutineSession{}
	var startedAt, completedAt, plannedEndAt, autoClosedAt sql.NullTime
	var durationSeconds sql.NullInt64
	var completionReason sql.NullString

	err := rows.Scan(
		&session.ID,
		&session.RoutineID,
		&session.ChildProfileID,
		&session.SessionDate,
		&session.Status,
		&startedAt,
		&completedAt,
		&plannedEndAt,
		&autoClosedAt,
		&durationSeconds,
		&session.PointsAwarded,
		&session.BonusMultiplier,
		&session.BestTimeBeaten,
		&completionReason,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	applySessionNullables(session, startedAt, completedAt, plannedEndAt, autoClosedAt, durationSeconds, completionReason)
	return session, nil
}

func applySessionNullables(session *models.RoutineSession, startedAt, completedAt, plannedEndAt, autoClosedAt sql.NullTime, durationSeconds sql.NullInt64, completionReason sql.NullString) {
	if startedAt.Valid {
		session.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		session.CompletedAt = &completedAt.Time
	}
	if plannedEndAt.Valid {
		session.PlannedEndAt = &plannedEndAt.Time
	}
	if autoClosedAt.Valid {
		session.AutoClosedAt = &autoClosedAt.Time
	}
	if durationSeconds.Valid {
		seconds := int(durationSeconds.Int64)
		session.DurationSeconds = &seconds
	}
	if completionReason.Valid {
		session.CompletionReason = &completionReason.String
	}
}
