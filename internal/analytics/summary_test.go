package analytics

import (
	"testing"
	"time"

	"github.com/ironlog/ironlog/internal/facts"
)

// now is a Thursday so the current ISO week starts the preceding Monday.
var now = time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)

func workout(id string, startedAt time.Time, completed bool) facts.Workout {
	w := facts.Workout{ID: id, StartedAt: startedAt}
	if completed {
		done := startedAt.Add(time.Hour)
		w.CompletedAt = &done
	}
	return w
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "thursday",
			in:   time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "monday maps to itself",
			in:   time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday belongs to the preceding monday",
			in:   time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC),
			want: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := WeekStart(tc.in); !got.Equal(tc.want) {
				t.Errorf("WeekStart(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	fcts := []facts.SetFact{
		{SetID: "s-1", WeightKg: 60, Reps: 10, IsPR: true, LoggedAt: now.AddDate(0, 0, -2)},
		{SetID: "s-2", WeightKg: 60, Reps: 8, LoggedAt: now.AddDate(0, 0, -2)},
		// Outside the 30-day window.
		{SetID: "s-3", WeightKg: 100, Reps: 5, IsPR: true, LoggedAt: now.AddDate(0, 0, -40)},
	}
	workouts := []facts.Workout{
		workout("w-1", now.AddDate(0, 0, -2), true),
		workout("w-2", now.AddDate(0, 0, -5), false),
		workout("w-3", now.AddDate(0, 0, -40), true),
	}

	stats := Summary(fcts, workouts, now, 30)
	if stats.CompletedWorkouts != 1 {
		t.Errorf("CompletedWorkouts = %d, want 1", stats.CompletedWorkouts)
	}
	if want := 60*10.0 + 60*8.0; stats.TotalVolumeKg != want {
		t.Errorf("TotalVolumeKg = %v, want %v", stats.TotalVolumeKg, want)
	}
	if stats.PRCount != 1 {
		t.Errorf("PRCount = %d, want 1 (window excludes s-3)", stats.PRCount)
	}
}

func TestStreakWeeks(t *testing.T) {
	tests := []struct {
		name     string
		workouts []facts.Workout
		want     int
	}{
		{
			name:     "no workouts",
			workouts: nil,
			want:     0,
		},
		{
			name: "three consecutive weeks including current",
			workouts: []facts.Workout{
				workout("a", now.AddDate(0, 0, -1), true),
				workout("b", now.AddDate(0, 0, -8), true),
				workout("c", now.AddDate(0, 0, -15), true),
			},
			want: 3,
		},
		{
			name: "missed week breaks the streak",
			workouts: []facts.Workout{
				workout("a", now.AddDate(0, 0, -1), true),
				workout("b", now.AddDate(0, 0, -8), true),
				workout("c", now.AddDate(0, 0, -29), true),
			},
			want: 2,
		},
		{
			name: "empty current week anchors on previous week",
			workouts: []facts.Workout{
				workout("a", now.AddDate(0, 0, -8), true),
				workout("b", now.AddDate(0, 0, -15), true),
			},
			want: 2,
		},
		{
			name: "future-dated workout ignored",
			workouts: []facts.Workout{
				workout("future", now.AddDate(0, 0, 14), true),
				workout("a", now.AddDate(0, 0, -1), true),
			},
			want: 1,
		},
		{
			name: "gap after previous week yields zero continuation",
			workouts: []facts.Workout{
				workout("old", now.AddDate(0, 0, -30), true),
			},
			want: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := StreakWeeks(tc.workouts, now); got != tc.want {
				t.Errorf("StreakWeeks() = %d, want %d", got, tc.want)
			}
		})
	}
}
