package repository

import (
	"database/sql"
	"fmt"

	"routinestar/internal/database"
	"routinestar/internal/models"
)

// PerformanceRepository handles the per (child, routine) performance stats
type PerformanceRepository struct {
	db *database.DB
}

// NewPerformanceRepository creates a new performance repository
func NewPerformanceRepository(db *database.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

// GetStat retrieves the performance row for (child, routine), nil when absent
func (r *PerformanceRepository) GetStat(childProfileID, routineID int64) (*models.PerformanceStat, error) {
	query := `
		SELECT id, child_profile_id, routine_id, best_duration_seconds,
		       best_session_id, last_completed_session_id, streak_days, updated_at
		FROM performance_stats
		WHERE child_profile_id = ? AND routine_id = ?
	`

	stat := &models.PerformanceStat{}
	var bestDuration, bestSession, lastSession sql.NullInt64

	err := r.db.QueryRow(query, childProfileID, routineID).Scan(
		&stat.ID,
		&stat.ChildProfileID,
		&stat.RoutineID,
		&bestDuration,
		&bestSession,
		&lastSession,
		&stat.StreakDays,
		&stat.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get performance stat: %w", err)
	}

	if bestDuration.Valid {
		seconds := int(bestDuration.Int64)
		stat.BestDurationSeconds = &seconds
	}
	if bestSession.Valid {
		id := bestSession.Int64
		stat.BestSessionID = &id
	}
	if lastSession.Valid {
		id := lastSession.Int64
		stat.LastCompletedSessionID = &id
	}

	return stat, nil
}

// UpsertStat writes the stat row for (child, routine), creating it on first
// completion and updating it afterwards. The unique (child, routine) index
// backs the select-then-write against concurrent completions.
func (r *PerformanceRepository) UpsertStat(stat *models.PerformanceStat) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existingID int64
	query := "SELECT id FROM performance_stats WHERE child_profile_id = ? AND routine_id = ?"
	err = tx.QueryRow(query, stat.ChildProfileID, stat.RoutineID).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to look up performance stat: %w", err)
	}

	if err == sql.ErrNoRows {
		query = `
			INSERT INTO performance_stats
				(child_profile_id, routine_id, best_duration_seconds, best_session_id,
				 last_completed_session_id, streak_days)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		_, err = tx.Exec(query, stat.ChildProfileID, stat.RoutineID,
			stat.BestDurationSeconds, stat.BestSessionID, stat.LastCompletedSessionID, stat.StreakDays)
		if err != nil {
			return fmt.Errorf("failed to insert performance stat: %w", err)
		}
	} else {
		query = `
			UPDATE performance_stats
			SET best_duration_seconds = ?, best_session_id = ?,
			    last_completed_session_id = ?, streak_days = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`
		_, err = tx.Exec(query, stat.BestDurationSeconds, stat.BestSessionID,
			stat.LastCompletedSessionID, stat.StreakDays, existingID)
		if err != nil {
			return fmt.Errorf("failed to update performance stat: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
