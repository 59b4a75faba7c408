package handlers

import (
	"net/http"
	"strconv"

	"routinestar/internal/models"
	"routinestar/internal/service"
	"routinestar/internal/validation"
)

// SessionHandler handles child-facing routine session requests
type SessionHandler struct {
	sessionService     *service.SessionService
	ledgerService      *service.LedgerService
	achievementService *service.AchievementService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *service.SessionService, ledgerService *service.LedgerService, achievementService *service.AchievementService) *SessionHandler {
	return &SessionHandler{
		sessionService:     sessionService,
		ledgerService:      ledgerService,
		achievementService: achievementService,
	}
}

// StartSession starts (or resumes) today's session for a routine
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	var req struct {
		RoutineID   int64  `json:"routineId"`
		SessionDate string `json:"sessionDate"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := h.sessionService.StartSession(claims.ProfileID, req.RoutineID, req.SessionDate)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"session": newSessionView(result.Session),
		"tasks":   newTaskViews(result.Tasks),
	})
}

// CompleteTask records one task completion in an in-progress session
func (h *SessionHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	sessionID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	taskID, err := pathID(r, "taskId")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if err := h.sessionService.AuthorizeSession(sessionID, claims.ProfileID); err != nil {
		respondServiceError(w, err)
		return
	}

	var req struct {
		CompletedAt string `json:"completedAt"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	completedAt, err := validation.ParseTimestamp(req.CompletedAt)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	completion, err := h.sessionService.CompleteTask(sessionID, taskID, completedAt)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, newCompletionView(completion))
}

// UndoTaskCompletion removes a recorded completion from an in-progress session
func (h *SessionHandler) UndoTaskCompletion(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	sessionID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	completionID, err := pathID(r, "completionId")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if err := h.sessionService.AuthorizeSession(sessionID, claims.ProfileID); err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.sessionService.UndoTaskCompletion(sessionID, completionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// CompleteSession closes out an in-progress session and returns the outcome
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	sessionID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if err := h.sessionService.AuthorizeSession(sessionID, claims.ProfileID); err != nil {
		respondServiceError(w, err)
		return
	}

	var req struct {
		CompletedTasks []service.TaskCompletionInput `json:"completedTasks"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := h.sessionService.CompleteSession(sessionID, req.CompletedTasks)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":          result.Status,
		"completedAt":     result.CompletedAt,
		"durationSeconds": result.DurationSeconds,
		"pointsAwarded":   result.PointsAwarded,
		"bonusMultiplier": result.BonusMultiplier,
		"bestTimeBeaten":  result.BestTimeBeaten,
		"streakDays":      result.StreakDays,
	})
}

// SkipSession marks a session skipped or expired
func (h *SessionHandler) SkipSession(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	sessionID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if err := h.sessionService.AuthorizeSession(sessionID, claims.ProfileID); err != nil {
		respondServiceError(w, err)
		return
	}

	var req struct {
		Status string  `json:"status"`
		Reason *string `json:"reason"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.sessionService.SkipSession(sessionID, models.SessionStatus(req.Status), req.Reason); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// GetSession returns a session with its completions, tasks and performance
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	sessionID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if err := h.sessionService.AuthorizeSession(sessionID, claims.ProfileID); err != nil {
		respondServiceError(w, err)
		return
	}

	details, err := h.sessionService.GetSessionDetails(sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"session":     newSessionView(&details.Session),
		"completions": newCompletionViews(details.Completions),
		"tasks":       newTaskViews(details.Tasks),
		"performance": newStatView(details.Performance),
	})
}

// ListSessions returns the child's recent sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	sessions, err := h.sessionService.ListSessions(claims.ProfileID, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newSessionViews(sessions))
}

// GetBalance returns the child's current point balance
func (h *SessionHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	balance, err := h.ledgerService.Balance(claims.ProfileID, claims.FamilyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"balance": balance})
}

// ListTransactions returns the child's recent ledger entries
func (h *SessionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	transactions, err := h.ledgerService.History(claims.ProfileID, claims.FamilyID, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newTransactionViews(transactions))
}

// ListAchievements returns the child's earned achievements
func (h *SessionHandler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	achievements, grants, err := h.achievementService.ListForChild(claims.ProfileID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newAchievementViews(achievements, grants))
}
