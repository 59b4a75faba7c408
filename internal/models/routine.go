package models

import "time"

// Routine is a named checklist a family runs on a schedule, e.g. a morning
// routine. ScheduleDays is a comma-separated list of weekday abbreviations
// ("mon,tue,wed"); empty means every day.
type Routine struct {
	ID                    int64
	FamilyID              int64
	Name                  string
	ScheduleDays          string
	AutoCloseAfterMinutes int // 0 disables the auto-close deadline
	Active                bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// RoutineTask is one step of a routine for one child. Tasks are ordered by
// Position and soft-deleted so past completions keep their reference.
type RoutineTask struct {
	ID             int64
	RoutineID      int64
	ChildProfileID int64
	Title          string
	Position       int
	PointValue     int
	IsOptional     bool
	Active         bool
	DeletedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
