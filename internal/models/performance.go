package models

import "time"

// PerformanceStat tracks best duration and streak per (child, routine).
// One row per pair, upserted after every completed session.
type PerformanceStat struct {
	ID                     int64
	ChildProfileID         int64
	RoutineID              int64
	BestDurationSeconds    *int
	BestSessionID          *int64
	LastCompletedSessionID *int64
	StreakDays             int
	UpdatedAt              time.Time
}
