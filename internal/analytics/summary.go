package analytics

import (
	"sort"
	"time"

	"github.com/ironlog/ironlog/internal/facts"
)

// SummaryStats aggregates activity over a time window.
type SummaryStats struct {
	// CompletedWorkouts counts workouts with a completion event in the window.
	CompletedWorkouts int `json:"completed_workouts"`
	// TotalVolumeKg is the sum of weight*reps over all sets in the window.
	TotalVolumeKg float64 `json:"total_volume_kg"`
	// PRCount counts PR-flagged sets in the window.
	PRCount int `json:"pr_count"`
	// StreakWeeks counts consecutive weeks with at least one started
	// workout, backward from the current week. Not bounded by the window.
	StreakWeeks int `json:"streak_weeks"`
}

// Summary computes summary statistics for the trailing windowDays days.
func Summary(fcts []facts.SetFact, workouts []facts.Workout, now time.Time, windowDays int) SummaryStats {
	since := now.AddDate(0, 0, -windowDays)
	stats := SummaryStats{}

	for _, f := range facts.Window(fcts, since, time.Time{}) {
		stats.TotalVolumeKg += f.WeightKg * float64(f.Reps)
		if f.IsPR {
			stats.PRCount++
		}
	}
	for _, w := range workouts {
		if w.CompletedAt == nil {
			continue
		}
		if w.CompletedAt.Before(since) {
			continue
		}
		stats.CompletedWorkouts++
	}
	stats.StreakWeeks = StreakWeeks(workouts, now)
	return stats
}

// StreakWeeks counts consecutive weeks with at least one started workout,
// backward from the current week. A missed week breaks the streak; weeks
// chronologically after the current week (clock skew) are ignored. Week
// starts match the expected sequence within a half-week tolerance. The
// in-progress current week does not break the streak when still empty: the
// count then anchors on the previous week.
func StreakWeeks(workouts []facts.Workout, now time.Time) int {
	seen := make(map[time.Time]bool)
	currentWeek := WeekStart(now)
	for _, w := range workouts {
		ws := WeekStart(w.StartedAt)
		if ws.After(currentWeek) {
			// Future week, ignored rather than counted.
			continue
		}
		seen[ws] = true
	}
	if len(seen) == 0 {
		return 0
	}
	weeks := make([]time.Time, 0, len(seen))
	for ws := range seen {
		weeks = append(weeks, ws)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].After(weeks[j]) })

	expected := currentWeek
	idx := 0
	if !withinFuzz(weeks[0], expected) {
		// Current week has no workout yet; anchor on the previous week.
		expected = expected.AddDate(0, 0, -7)
	}

	streak := 0
	for idx < len(weeks) {
		if !withinFuzz(weeks[idx], expected) {
			break
		}
		streak++
		idx++
		expected = expected.AddDate(0, 0, -7)
	}
	return streak
}
