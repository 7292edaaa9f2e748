package analytics

import (
	"sort"
	"time"

	"github.com/ironlog/ironlog/internal/facts"
)

// ProgressPoint is one per-session data point in an exercise's history.
type ProgressPoint struct {
	WorkoutID      string    `json:"workout_id"`
	Date           time.Time `json:"date"`
	TopSetWeightKg float64   `json:"top_set_weight_kg"`
	Best1RM        float64   `json:"best_estimated_1rm"`
	VolumeKg       float64   `json:"volume_kg"`
	Sets           int       `json:"sets"`
	// HasPR marks sessions containing at least one PR set.
	HasPR bool `json:"has_pr"`
}

// ExerciseProgress aggregates the fact stream of one exercise into a
// chronological per-session series for the trailing windowDays days.
func ExerciseProgress(fcts []facts.SetFact, exerciseID string, now time.Time, windowDays int) []ProgressPoint {
	since := now.AddDate(0, 0, -windowDays)
	byWorkout := make(map[string]*ProgressPoint)
	for _, f := range fcts {
		if f.OriginalExerciseID != exerciseID || f.LoggedAt.Before(since) {
			continue
		}
		p := byWorkout[f.WorkoutID]
		if p == nil {
			p = &ProgressPoint{WorkoutID: f.WorkoutID, Date: f.LoggedAt}
			byWorkout[f.WorkoutID] = p
		}
		if f.LoggedAt.Before(p.Date) {
			p.Date = f.LoggedAt
		}
		if f.WeightKg > p.TopSetWeightKg {
			p.TopSetWeightKg = f.WeightKg
		}
		if f.Estimated1RM > p.Best1RM {
			p.Best1RM = f.Estimated1RM
		}
		p.VolumeKg += f.WeightKg * float64(f.Reps)
		p.Sets++
		if f.IsPR {
			p.HasPR = true
		}
	}

	points := make([]ProgressPoint, 0, len(byWorkout))
	for _, p := range byWorkout {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool {
		if !points[i].Date.Equal(points[j].Date) {
			return points[i].Date.Before(points[j].Date)
		}
		return points[i].WorkoutID < points[j].WorkoutID
	})
	return points
}
