package repository

import (
	"database/sql"
	"fmt"

	"routinestar/internal/database"
	"routinestar/internal/models"
)

// RoutineRepository handles database operations for routines
type RoutineRepository struct {
	db *database.DB
}

// NewRoutineRepository creates a new routine repository
func NewRoutineRepository(db *database.DB) *RoutineRepository {
	return &RoutineRepository{db: db}
}

// CreateRoutine creates a new routine
func (r *RoutineRepository) CreateRoutine(familyID int64, name, scheduleDays string, autoCloseAfterMinutes int) (*models.Routine, error) {
	query := `
		INSERT INTO routines (family_id, name, schedule_days, auto_close_after_minutes, active)
		VALUES (?, ?, ?, ?, TRUE)
	`

	id, err := r.db.ExecReturningID(query, familyID, name, scheduleDays, autoCloseAfterMinutes)
	if err != nil {
		return nil, fmt.Errorf("failed to create routine: %w", err)
	}

	return r.GetRoutineByID(id)
}

// GetRoutineByID retrieves a routine by ID
func (r *RoutineRepository) GetRoutineByID(routineID int64) (*models.Routine, error) {
	query := `
		SELECT id, family_id, name, schedule_days, auto_close_after_minutes, active,
		       created_at, updated_at
		FROM routines
		WHERE id = ?
	`

	routine := &models.Routine{}
	err := r.db.QueryRow(query, routineID).Scan(
		&routine.ID,
		&routine.FamilyID,
		&routine.Name,
		&routine.ScheduleDays,
		&routine.AutoCloseAfterMinutes,
		&routine.Active,
		&routine.CreatedAt,
		&routine.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get routine: %w", err)
	}

	return routine, nil
}

// ListRoutinesByFamily retrieves all routines in a family
func (r *RoutineRepository) ListRoutinesByFamily(familyID int64) ([]models.Routine, error) {
	query := `
		SELECT id, family_id, name, schedule_days, auto_close_after_minutes, active,
		       created_at, updated_at
		FROM routines
		WHERE family_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query routines: %w", err)
	}
	defer rows.Close()

	var routines []models.Routine
	for rows.Next() {
		var routine models.Routine
		if err := rows.Scan(
			&routine.ID, &routine.FamilyID, &routine.Name, &routine.ScheduleDays,
			&routine.AutoCloseAfterMinutes, &routine.Active, &routine.CreatedAt, &routine.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan routine: %w", err)
		}
		routines = append(routines, routine)
	}

	return routines, rows.Err()
}

// UpdateRoutine updates a routine's settings
func (r *RoutineRepository) UpdateRoutine(routineID int64, name, scheduleDays string, autoCloseAfterMinutes int, active bool) error {
	query := `
		UPDATE routines
		SET name = ?, schedule_days = ?, auto_close_after_minutes = ?, active = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := r.db.Exec(query, name, scheduleDays, autoCloseAfterMinutes, active, routineID)
	if err != nil {
		return fmt.Errorf("failed to update routine: %w", err)
	}
	return nil
}

// DeactivateRoutine marks a routine inactive without losing its history
func (r *RoutineRepository) DeactivateRoutine(routineID int64) error {
	query := "UPDATE routines SET active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, routineID)
	if err != nil {
		return fmt.Errorf("failed to deactivate routine: %w", err)
	}
	return nil
}
