package handlers

import (
	"net/http"

	"routinestar/internal/service"
)

// RoutineHandler handles parent-facing routine and task requests
type RoutineHandler struct {
	routineService *service.RoutineService
}

// NewRoutineHandler creates a new routine handler
func NewRoutineHandler(routineService *service.RoutineService) *RoutineHandler {
	return &RoutineHandler{routineService: routineService}
}

// CreateRoutine creates a routine for the parent's family
func (h *RoutineHandler) CreateRoutine(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	var req struct {
		Name                  string `json:"name"`
		ScheduleDays          string `json:"scheduleDays"`
		AutoCloseAfterMinutes int    `json:"autoCloseAfterMinutes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	routine, err := h.routineService.CreateRoutine(claims.FamilyID, req.Name, req.ScheduleDays, req.AutoCloseAfterMinutes)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, newRoutineView(routine))
}

// ListRoutines returns the family's routines
func (h *RoutineHandler) ListRoutines(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	routines, err := h.routineService.ListRoutines(claims.FamilyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newRoutineViews(routines))
}

// GetRoutine returns one routine
func (h *RoutineHandler) GetRoutine(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	routineID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	routine, err := h.routineService.GetRoutine(claims.FamilyID, routineID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newRoutineView(routine))
}

// UpdateRoutine updates a routine's settings
func (h *RoutineHandler) UpdateRoutine(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	routineID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var req struct {
		Name                  string `json:"name"`
		ScheduleDays          string `json:"scheduleDays"`
		AutoCloseAfterMinutes int    `json:"autoCloseAfterMinutes"`
		Active                bool   `json:"active"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	routine, err := h.routineService.UpdateRoutine(claims.FamilyID, routineID, req.Name, req.ScheduleDays, req.AutoCloseAfterMinutes, req.Active)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newRoutineView(routine))
}

// DeactivateRoutine hides a routine from scheduling
func (h *RoutineHandler) DeactivateRoutine(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	routineID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.routineService.DeactivateRoutine(claims.FamilyID, routineID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// CreateTask appends a task to a child's list for a routine
func (h *RoutineHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	routineID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	childID, err := pathID(r, "childId")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var req struct {
		Title      string `json:"title"`
		PointValue int    `json:"pointValue"`
		IsOptional bool   `json:"isOptional"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	task, err := h.routineService.AddTask(claims.FamilyID, routineID, childID, req.Title, req.PointValue, req.IsOptional)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, newTaskView(task))
}

// ListTasks returns a child's ordered active task list for a routine
func (h *RoutineHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	routineID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	childID, err := pathID(r, "childId")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	tasks, err := h.routineService.ListTasks(claims.FamilyID, routineID, childID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newTaskViews(tasks))
}

// UpdateTask updates a task's title, point value and optional flag
func (h *RoutineHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	taskID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var req struct {
		Title      string `json:"title"`
		PointValue int    `json:"pointValue"`
		IsOptional bool   `json:"isOptional"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	task, err := h.routineService.UpdateTask(claims.FamilyID, taskID, req.Title, req.PointValue, req.IsOptional)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newTaskView(task))
}

// DeleteTask soft-deletes a task
func (h *RoutineHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	taskID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.routineService.DeleteTask(claims.FamilyID, taskID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// ReorderTasks replaces the task order for (routine, child)
func (h *RoutineHandler) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	routineID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	childID, err := pathID(r, "childId")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var req struct {
		TaskIDs []int64 `json:"taskIds"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	tasks, err := h.routineService.ReorderTasks(claims.FamilyID, routineID, childID, req.TaskIDs)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newTaskViews(tasks))
}
