package service

import (
	"testing"
	"time"

	"routinestar/internal/apperr"
	"routinestar/internal/models"
)

func taskList() []models.RoutineTask {
	return []models.RoutineTask{
		{ID: 1, Position: 1, PointValue: 15},
		{ID: 2, Position: 2, PointValue: 20, IsOptional: true},
		{ID: 3, Position: 3, PointValue: 10},
		{ID: 4, Position: 4, PointValue: 5},
	}
}

func TestCheckTaskOrder(t *testing.T) {
	tests := []struct {
		name      string
		completed map[int64]bool
		taskID    int64
		wantErr   func(error) bool
	}{
		{
			name:      "first task always allowed",
			completed: map[int64]bool{},
			taskID:    1,
		},
		{
			name:      "mandatory predecessor missing",
			completed: map[int64]bool{},
			taskID:    3,
			wantErr:   apperr.IsConflict,
		},
		{
			name:      "optional predecessor does not block",
			completed: map[int64]bool{1: true},
			taskID:    3,
		},
		{
			name:      "all mandatory predecessors done",
			completed: map[int64]bool{1: true, 3: true},
			taskID:    4,
		},
		{
			name:      "unknown task",
			completed: map[int64]bool{},
			taskID:    99,
			wantErr:   apperr.IsNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkTaskOrder(taskList(), tt.completed, tt.taskID)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !tt.wantErr(err) {
				t.Fatalf("wrong error kind: %v", err)
			}
		})
	}
}

func TestBasePointsFor(t *testing.T) {
	tests := []struct {
		name    string
		taskIDs []int64
		want    int
	}{
		{name: "two mandatory tasks", taskIDs: []int64{1, 3}, want: 25},
		{name: "duplicates count once", taskIDs: []int64{1, 1, 1, 3}, want: 25},
		{name: "unknown IDs contribute nothing", taskIDs: []int64{1, 42}, want: 15},
		{name: "empty input", taskIDs: nil, want: 0},
		{name: "all tasks", taskIDs: []int64{1, 2, 3, 4}, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := basePointsFor(taskList(), tt.taskIDs)
			if got != tt.want {
				t.Errorf("basePointsFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolveCompletedAt(t *testing.T) {
	now := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	past := now.Add(-10 * time.Minute)
	future := now.Add(5 * time.Minute)

	tests := []struct {
		name       string
		timestamps []time.Time
		want       time.Time
	}{
		{name: "no timestamps falls back to now", timestamps: nil, want: now},
		{name: "past timestamps bounded by now", timestamps: []time.Time{past, past}, want: now},
		{name: "latest client timestamp wins", timestamps: []time.Time{past, future}, want: future},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveCompletedAt(tt.timestamps, now)
			if !got.Equal(tt.want) {
				t.Errorf("resolveCompletedAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeDuration(t *testing.T) {
	start := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

	t.Run("normal duration", func(t *testing.T) {
		got := computeDuration(&start, start.Add(300*time.Second))
		if got == nil || *got != 300 {
			t.Fatalf("computeDuration() = %v, want 300", got)
		}
	})

	t.Run("completion before start clamps to zero", func(t *testing.T) {
		got := computeDuration(&start, start.Add(-time.Minute))
		if got == nil || *got != 0 {
			t.Fatalf("computeDuration() = %v, want 0", got)
		}
	})

	t.Run("never started", func(t *testing.T) {
		if got := computeDuration(nil, start); got != nil {
			t.Fatalf("computeDuration() = %v, want nil", got)
		}
	})
}

func TestBeatsBest(t *testing.T) {
	intp := func(n int) *int { return &n }

	tests := []struct {
		name         string
		previousBest *int
		duration     *int
		want         bool
	}{
		{name: "faster than best", previousBest: intp(400), duration: intp(300), want: true},
		{name: "slower than best", previousBest: intp(300), duration: intp(400), want: false},
		{name: "no previous best", previousBest: nil, duration: intp(300), want: false},
		{name: "zero previous best", previousBest: intp(0), duration: intp(300), want: false},
		{name: "zero duration", previousBest: intp(400), duration: intp(0), want: false},
		{name: "no duration", previousBest: intp(400), duration: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := beatsBest(tt.previousBest, tt.duration); got != tt.want {
				t.Errorf("beatsBest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNewBest(t *testing.T) {
	intp := func(n int) *int { return &n }

	tests := []struct {
		name         string
		previousBest *int
		duration     *int
		want         bool
	}{
		{name: "first recorded duration", previousBest: nil, duration: intp(300), want: true},
		{name: "beats previous", previousBest: intp(400), duration: intp(300), want: true},
		{name: "slower keeps previous", previousBest: intp(300), duration: intp(400), want: false},
		{name: "invalid previous replaced", previousBest: intp(0), duration: intp(300), want: true},
		{name: "no duration", previousBest: intp(400), duration: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNewBest(tt.previousBest, tt.duration); got != tt.want {
				t.Errorf("isNewBest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateGapDays(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want int
	}{
		{name: "consecutive days", from: "2026-03-13", to: "2026-03-14", want: 1},
		{name: "same day", from: "2026-03-14", to: "2026-03-14", want: 0},
		{name: "two day gap", from: "2026-03-12", to: "2026-03-14", want: 2},
		{name: "out of order", from: "2026-03-14", to: "2026-03-13", want: -1},
		{name: "across month boundary", from: "2026-02-28", to: "2026-03-01", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dateGapDays(tt.from, tt.to)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("dateGapDays() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNextStreak(t *testing.T) {
	tests := []struct {
		name        string
		hasPrior    bool
		gap         int
		priorStreak int
		want        int
	}{
		{name: "first ever completion", hasPrior: false, want: 1},
		{name: "consecutive day extends", hasPrior: true, gap: 1, priorStreak: 2, want: 3},
		{name: "same day redo keeps streak", hasPrior: true, gap: 0, priorStreak: 4, want: 4},
		{name: "same day redo with no stat", hasPrior: true, gap: 0, priorStreak: 0, want: 1},
		{name: "two day gap resets", hasPrior: true, gap: 2, priorStreak: 6, want: 1},
		{name: "out of order resets", hasPrior: true, gap: -3, priorStreak: 6, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextStreak(tt.hasPrior, tt.gap, tt.priorStreak); got != tt.want {
				t.Errorf("nextStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}
