package service

import (
	"time"

	"routinestar/internal/apperr"
	"routinestar/internal/models"
	"routinestar/internal/repository"
	"routinestar/internal/validation"
)

// RoutineService manages routine definitions and their task templates
type RoutineService struct {
	routineRepo *repository.RoutineRepository
	taskRepo    *repository.TaskRepository
	childRepo   *repository.ChildRepository
	now         func() time.Time
}

// NewRoutineService creates a new routine service
func NewRoutineService(routineRepo *repository.RoutineRepository, taskRepo *repository.TaskRepository, childRepo *repository.ChildRepository) *RoutineService {
	return &RoutineService{
		routineRepo: routineRepo,
		taskRepo:    taskRepo,
		childRepo:   childRepo,
		now:         time.Now,
	}
}

// CreateRoutine creates a routine for a family
func (s *RoutineService) CreateRoutine(familyID int64, name, scheduleDays string, autoCloseAfterMinutes int) (*models.Routine, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if autoCloseAfterMinutes < 0 {
		return nil, apperr.Validation("auto close minutes cannot be negative")
	}

	return s.routineRepo.CreateRoutine(familyID, name, scheduleDays, autoCloseAfterMinutes)
}

// GetRoutine retrieves a routine scoped to a family
func (s *RoutineService) GetRoutine(familyID, routineID int64) (*models.Routine, error) {
	routine, err := s.routineRepo.GetRoutineByID(routineID)
	if err != nil {
		return nil, err
	}
	if routine == nil || routine.FamilyID != familyID {
		return nil, apperr.NotFound("routine not found")
	}
	return routine, nil
}

// ListRoutines retrieves all routines in a family
func (s *RoutineService) ListRoutines(familyID int64) ([]models.Routine, error) {
	return s.routineRepo.ListRoutinesByFamily(familyID)
}

// UpdateRoutine updates a routine's settings
func (s *RoutineService) UpdateRoutine(familyID, routineID int64, name, scheduleDays string, autoCloseAfterMinutes int, active bool) (*models.Routine, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if autoCloseAfterMinutes < 0 {
		return nil, apperr.Validation("auto close minutes cannot be negative")
	}
	if _, err := s.GetRoutine(familyID, routineID); err != nil {
		return nil, err
	}

	if err := s.routineRepo.UpdateRoutine(routineID, name, scheduleDays, autoCloseAfterMinutes, active); err != nil {
		return nil, err
	}
	return s.routineRepo.GetRoutineByID(routineID)
}

// DeactivateRoutine hides a routine from scheduling; history is kept
func (s *RoutineService) DeactivateRoutine(familyID, routineID int64) error {
	if _, err := s.GetRoutine(familyID, routineID); err != nil {
		return err
	}
	return s.routineRepo.DeactivateRoutine(routineID)
}

// AddTask appends a task to a child's list for a routine
func (s *RoutineService) AddTask(familyID, routineID, childProfileID int64, title string, pointValue int, isOptional bool) (*models.RoutineTask, error) {
	if err := validation.ValidateName(title); err != nil {
		return nil, err
	}
	if pointValue < 0 {
		return nil, apperr.Validation("point value cannot be negative")
	}
	if _, err := s.GetRoutine(familyID, routineID); err != nil {
		return nil, err
	}
	if err := s.checkChild(familyID, childProfileID); err != nil {
		return nil, err
	}

	return s.taskRepo.CreateTask(routineID, childProfileID, title, pointValue, isOptional)
}

// ListTasks retrieves the active ordered task list for (routine, child)
func (s *RoutineService) ListTasks(familyID, routineID, childProfileID int64) ([]models.RoutineTask, error) {
	if _, err := s.GetRoutine(familyID, routineID); err != nil {
		return nil, err
	}
	return s.taskRepo.ListActiveTasks(routineID, childProfileID)
}

// UpdateTask updates a task's title, point value and optional flag
func (s *RoutineService) UpdateTask(familyID, taskID int64, title string, pointValue int, isOptional bool) (*models.RoutineTask, error) {
	if err := validation.ValidateName(title); err != nil {
		return nil, err
	}
	if pointValue < 0 {
		return nil, apperr.Validation("point value cannot be negative")
	}
	if _, err := s.checkTask(familyID, taskID); err != nil {
		return nil, err
	}

	if err := s.taskRepo.UpdateTask(taskID, title, pointValue, isOptional); err != nil {
		return nil, err
	}
	return s.taskRepo.GetTaskByID(taskID)
}

// DeleteTask soft-deletes a task; past completions keep referencing it
func (s *RoutineService) DeleteTask(familyID, taskID int64) error {
	if _, err := s.checkTask(familyID, taskID); err != nil {
		return err
	}
	return s.taskRepo.SoftDeleteTask(taskID, s.now())
}

// ReorderTasks replaces the task order for (routine, child). taskIDs must be
// exactly the child's active tasks for the routine, in the desired order.
func (s *RoutineService) ReorderTasks(familyID, routineID, childProfileID int64, taskIDs []int64) ([]models.RoutineTask, error) {
	if _, err := s.GetRoutine(familyID, routineID); err != nil {
		return nil, err
	}

	current, err := s.taskRepo.ListActiveTasks(routineID, childProfileID)
	if err != nil {
		return nil, err
	}
	if len(taskIDs) != len(current) {
		return nil, apperr.Validation("task order must include every active task exactly once")
	}

	active := make(map[int64]bool, len(current))
	for _, task := range current {
		active[task.ID] = true
	}
	seen := make(map[int64]bool, len(taskIDs))
	for _, id := range taskIDs {
		if !active[id] || seen[id] {
			return nil, apperr.Validation("task order must include every active task exactly once")
		}
		seen[id] = true
	}

	if err := s.taskRepo.ReorderTasks(routineID, childProfileID, taskIDs); err != nil {
		return nil, err
	}
	return s.taskRepo.ListActiveTasks(routineID, childProfileID)
}

// checkChild ensures a child profile belongs to the family
func (s *RoutineService) checkChild(familyID, childProfileID int64) error {
	child, err := s.childRepo.GetChildByID(childProfileID)
	if err != nil {
		return err
	}
	if child == nil || child.FamilyID != familyID {
		return apperr.NotFound("child profile not found")
	}
	return nil
}

// checkTask ensures a task's routine belongs to the family
func (s *RoutineService) checkTask(familyID, taskID int64) (*models.RoutineTask, error) {
	task, err := s.taskRepo.GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil || task.DeletedAt != nil {
		return nil, apperr.NotFound("task not found")
	}
	if _, err := s.GetRoutine(familyID, task.RoutineID); err != nil {
		return nil, err
	}
	return task, nil
}
