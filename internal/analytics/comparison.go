package analytics

import (
	"time"

	"github.com/ironlog/ironlog/internal/facts"
)

// ComparisonEntry batches PR/volume/frequency stats for one exercise in a
// multi-exercise comparison.
type ComparisonEntry struct {
	ExerciseID   string     `json:"exercise_id"`
	ExerciseName string     `json:"exercise_name"`
	PRCount      int        `json:"pr_count"`
	TotalVolume  float64    `json:"total_volume_kg"`
	Sessions     int        `json:"sessions"`
	BestWeightKg float64    `json:"best_weight_kg"`
	Best1RM      float64    `json:"best_estimated_1rm"`
	LastLoggedAt *time.Time `json:"last_logged_at,omitempty"`
	// Progression is merged from an externally supplied progression result;
	// it is never recomputed here.
	Progression *ExerciseProgression `json:"progression,omitempty"`
}

// ComparisonStats computes stats for the requested exercises in one pass
// over the fact stream, bounded to the trailing windowDays days. Supplied
// progression results are merged by exercise id. Output preserves the
// requested id order; ids with no facts in the window still produce a
// zero-valued entry.
func ComparisonStats(fcts []facts.SetFact, exerciseIDs []string, now time.Time, windowDays int, progression map[string]ExerciseProgression) []ComparisonEntry {
	since := now.AddDate(0, 0, -windowDays)
	wanted := make(map[string]int, len(exerciseIDs))
	entries := make([]ComparisonEntry, len(exerciseIDs))
	for i, id := range exerciseIDs {
		wanted[id] = i
		entries[i] = ComparisonEntry{ExerciseID: id}
	}

	sessions := make([]map[string]bool, len(exerciseIDs))
	for i := range sessions {
		sessions[i] = make(map[string]bool)
	}

	for _, f := range fcts {
		i, ok := wanted[f.OriginalExerciseID]
		if !ok {
			continue
		}
		if f.ExerciseName != "" {
			entries[i].ExerciseName = f.ExerciseName
		}
		if f.LoggedAt.Before(since) {
			continue
		}
		entries[i].TotalVolume += f.WeightKg * float64(f.Reps)
		if f.IsPR {
			entries[i].PRCount++
		}
		if f.WeightKg > entries[i].BestWeightKg {
			entries[i].BestWeightKg = f.WeightKg
		}
		if f.Estimated1RM > entries[i].Best1RM {
			entries[i].Best1RM = f.Estimated1RM
		}
		if entries[i].LastLoggedAt == nil || f.LoggedAt.After(*entries[i].LastLoggedAt) {
			at := f.LoggedAt
			entries[i].LastLoggedAt = &at
		}
		sessions[i][f.WorkoutID] = true
	}

	for i := range entries {
		entries[i].Sessions = len(sessions[i])
		if p, ok := progression[entries[i].ExerciseID]; ok {
			pCopy := p
			entries[i].Progression = &pCopy
		}
	}
	return entries
}
