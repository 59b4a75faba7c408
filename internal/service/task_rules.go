package service

import (
	"time"

	"routinestar/internal/apperr"
	"routinestar/internal/models"
)

// findTask locates a task by ID within the active task list
func findTask(tasks []models.RoutineTask, taskID int64) *models.RoutineTask {
	for i := range tasks {
		if tasks[i].ID == taskID {
			return &tasks[i]
		}
	}
	return nil
}

// checkTaskOrder enforces the completion gate: a task may be completed only
// when every non-optional task at a lower position has been completed in this
// session. Optional predecessors never block.
func checkTaskOrder(tasks []models.RoutineTask, completed map[int64]bool, taskID int64) error {
	target := findTask(tasks, taskID)
	if target == nil {
		return apperr.NotFound("task not found in this routine")
	}

	for _, task := range tasks {
		if task.Position >= target.Position || task.IsOptional {
			continue
		}
		if !completed[task.ID] {
			return apperr.Conflict("previous mandatory task not completed")
		}
	}

	return nil
}

// basePointsFor sums the current point values of the unique set of task IDs.
// Duplicate IDs count once; IDs not in the active task list contribute
// nothing; the result never goes below zero.
func basePointsFor(tasks []models.RoutineTask, taskIDs []int64) int {
	seen := make(map[int64]bool, len(taskIDs))
	total := 0
	for _, id := range taskIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if task := findTask(tasks, id); task != nil {
			total += task.PointValue
		}
	}

	if total < 0 {
		return 0
	}
	return total
}

// resolveCompletedAt picks the session completion moment: the maximum of all
// supplied task timestamps and the server's observation time. This resists a
// client submitting stale times while still bounding by "now".
func resolveCompletedAt(timestamps []time.Time, now time.Time) time.Time {
	completedAt := now
	for _, t := range timestamps {
		if t.After(completedAt) {
			completedAt = t
		}
	}
	return completedAt
}

// computeDuration returns whole seconds between start and completion,
// clamped at zero. Nil when the session was never started.
func computeDuration(startedAt *time.Time, completedAt time.Time) *int {
	if startedAt == nil {
		return nil
	}

	seconds := int(completedAt.Sub(*startedAt).Round(time.Second) / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	return &seconds
}

// beatsBest reports whether this duration beats the recorded best. Both must
// be positive for a comparison to count.
func beatsBest(previousBest, duration *int) bool {
	return duration != nil && *duration > 0 &&
		previousBest != nil && *previousBest > 0 &&
		*duration < *previousBest
}

// isNewBest reports whether this duration should replace the recorded best
func isNewBest(previousBest, duration *int) bool {
	if duration == nil {
		return false
	}
	return previousBest == nil || *previousBest <= 0 || *duration < *previousBest
}

// dateGapDays returns the whole calendar days between two session dates
func dateGapDays(fromDate, toDate string) (int, error) {
	from, err := time.Parse(models.SessionDateLayout, fromDate)
	if err != nil {
		return 0, err
	}
	to, err := time.Parse(models.SessionDateLayout, toDate)
	if err != nil {
		return 0, err
	}

	return int(to.Sub(from).Hours() / 24), nil
}

// nextStreak computes the streak after a completion. hasPrior is whether any
// earlier completed session exists for (child, routine); gap is the calendar
// gap in days from that session's date to this one.
//
// A consecutive day extends the streak, a same-day redo keeps it, and any
// other gap (including out-of-order dates) resets to 1.
func nextStreak(hasPrior bool, gap, priorStreak int) int {
	if !hasPrior {
		return 1
	}

	switch gap {
	case 1:
		return priorStreak + 1
	case 0:
		if priorStreak < 1 {
			return 1
		}
		return priorStreak
	default:
		return 1
	}
}
