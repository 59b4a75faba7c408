package repository

import (
	"database/sql"
	"fmt"
	"time"

	"routinestar/internal/apperr"
	"routinestar/internal/database"
	"routinestar/internal/models"
)

// TaskRepository handles database operations for routine tasks and their
// per-session completions
type TaskRepository struct {
	db *database.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// CreateTask appends a task at the next free position for (routine, child)
func (r *TaskRepository) CreateTask(routineID, childProfileID int64, title string, pointValue int, isOptional bool) (*models.RoutineTask, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var maxPosition sql.NullInt64
	query := `
		SELECT MAX(position) FROM routine_tasks
		WHERE routine_id = ? AND child_profile_id = ? AND deleted_at IS NULL
	`
	if err := tx.QueryRow(query, routineID, childProfileID).Scan(&maxPosition); err != nil {
		return nil, fmt.Errorf("failed to determine task position: %w", err)
	}

	position := int(maxPosition.Int64) + 1

	query = `
		INSERT INTO routine_tasks (routine_id, child_profile_id, title, position, point_value, is_optional, active)
		VALUES (?, ?, ?, ?, ?, ?, TRUE)
	`
	id, err := tx.ExecReturningID(query, routineID, childProfileID, title, position, pointValue, isOptional)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return r.GetTaskByID(id)
}

// GetTaskByID retrieves a task by ID, including soft-deleted rows
func (r *TaskRepository) GetTaskByID(taskID int64) (*models.RoutineTask, error) {
	query := `
		SELECT id, routine_id, child_profile_id, title, position, point_value,
		       is_optional, active, deleted_at, created_at, updated_at
		FROM routine_tasks
		WHERE id = ?
	`

	task := &models.RoutineTask{}
	var deletedAt sql.NullTime

	err := r.db.QueryRow(query, taskID).Scan(
		&task.ID,
		&task.RoutineID,
		&task.ChildProfileID,
		&task.Title,
		&task.Position,
		&task.PointValue,
		&task.IsOptional,
		&task.Active,
		&deletedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if deletedAt.Valid {
		task.DeletedAt = &deletedAt.Time
	}

	return task, nil
}

// ListActiveTasks retrieves the ordered active task list for (routine, child).
// Soft-deleted and inactive tasks are excluded.
func (r *TaskRepository) ListActiveTasks(routineID, childProfileID int64) ([]models.RoutineTask, error) {
	query := `
		SELECT id, routine_id, child_profile_id, title, position, point_value,
		       is_optional, active, deleted_at, created_at, updated_at
		FROM routine_tasks
		WHERE routine_id = ? AND child_profile_id = ? AND active = TRUE AND deleted_at IS NULL
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, routineID, childProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.RoutineTask
	for rows.Next() {
		var task models.RoutineTask
		var deletedAt sql.NullTime
		if err := rows.Scan(
			&task.ID, &task.RoutineID, &task.ChildProfileID, &task.Title,
			&task.Position, &task.PointValue, &task.IsOptional, &task.Active,
			&deletedAt, &task.CreatedAt, &task.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if deletedAt.Valid {
			task.DeletedAt = &deletedAt.Time
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// UpdateTask updates a task's title, point value and optional flag
func (r *TaskRepository) UpdateTask(taskID int64, title string, pointValue int, isOptional bool) error {
	query := `
		UPDATE routine_tasks
		SET title = ?, point_value = ?, is_optional = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL
	`
	_, err := r.db.Exec(query, title, pointValue, isOptional, taskID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// SoftDeleteTask marks a task deleted; past completions keep referencing it
func (r *TaskRepository) SoftDeleteTask(taskID int64, now time.Time) error {
	query := "UPDATE routine_tasks SET deleted_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, now, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// ReorderTasks rewrites positions for (routine, child) in one transaction.
// taskIDs carries the new order; positions become 1..len(taskIDs).
func (r *TaskRepository) ReorderTasks(routineID, childProfileID int64, taskIDs []int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE routine_tasks
		SET position = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND routine_id = ? AND child_profile_id = ? AND deleted_at IS NULL
	`
	for i, taskID := range taskIDs {
		result, err := tx.Exec(query, i+1, taskID, routineID, childProfileID)
		if err != nil {
			return fmt.Errorf("failed to reorder task %d: %w", taskID, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check reorder result: %w", err)
		}
		if affected == 0 {
			return apperr.NotFound(fmt.Sprintf("task %d not found in routine", taskID))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// InsertCompletion records a task completion within a session.
// A duplicate (session, task) pair is reported as a Conflict.
func (r *TaskRepository) InsertCompletion(sessionID, taskID int64, completedAt time.Time, position, pointsAwarded int) (*models.TaskCompletion, error) {
	query := `
		INSERT INTO task_completions (session_id, task_id, completed_at, position, points_awarded)
		VALUES (?, ?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(query, sessionID, taskID, completedAt, position, pointsAwarded)
	if err != nil {
		if r.db.Dialect.IsUniqueViolation(err) {
			return nil, apperr.Conflict("task already completed in this session")
		}
		return nil, fmt.Errorf("failed to record task completion: %w", err)
	}

	return &models.TaskCompletion{
		ID:            id,
		SessionID:     sessionID,
		TaskID:        taskID,
		CompletedAt:   completedAt,
		Position:      position,
		PointsAwarded: pointsAwarded,
	}, nil
}

// ListCompletions retrieves all completions for a session in position order
func (r *TaskRepository) ListCompletions(sessionID int64) ([]models.TaskCompletion, error) {
	query := `
		SELECT id, session_id, task_id, completed_at, position, points_awarded
		FROM task_completions
		WHERE session_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task completions: %w", err)
	}
	defer rows.Close()

	var completions []models.TaskCompletion
	for rows.Next() {
		var completion models.TaskCompletion
		if err := rows.Scan(
			&completion.ID, &completion.SessionID, &completion.TaskID,
			&completion.CompletedAt, &completion.Position, &completion.PointsAwarded,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task completion: %w", err)
		}
		completions = append(completions, completion)
	}

	return completions, rows.Err()
}

// DeleteCompletion removes a completion scoped to its session.
// Returns NotFound when no such completion exists for the session.
func (r *TaskRepository) DeleteCompletion(sessionID, completionID int64) error {
	query := "DELETE FROM task_completions WHERE id = ? AND session_id = ?"
	result, err := r.db.Exec(query, completionID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete task completion: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("task completion not found")
	}
	return nil
}
