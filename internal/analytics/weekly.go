package analytics

import (
	"sort"
	"time"

	"github.com/ironlog/ironlog/internal/facts"
)

// WeekAggregate summarizes one exercise's sets within a 7-day window.
type WeekAggregate struct {
	Sets        int     `json:"sets"`
	VolumeKg    float64 `json:"volume_kg"`
	MaxWeightKg float64 `json:"max_weight_kg"`
}

// WeeklyComparison contrasts the trailing 7 days against the preceding
// 7-14-day window for one exercise. When the prior window has no data the
// percentage deltas are null (not zero) and FirstWeek is set. Exercises with
// no data in the current window produce no comparison at all.
type WeeklyComparison struct {
	ExerciseID   string         `json:"exercise_id"`
	ExerciseName string         `json:"exercise_name"`
	FirstWeek    bool           `json:"first_week"`
	ThisWeek     WeekAggregate  `json:"this_week"`
	LastWeek     *WeekAggregate `json:"last_week,omitempty"`
	// Deltas are fractional changes versus the prior window; nil when the
	// prior window is empty.
	SetsDelta      *float64 `json:"sets_delta,omitempty"`
	VolumeDelta    *float64 `json:"volume_delta,omitempty"`
	MaxWeightDelta *float64 `json:"max_weight_delta,omitempty"`
}

// WeeklyComparisons builds week-over-week comparisons for every exercise
// with data in the trailing 7 days, ordered by exercise name.
func WeeklyComparisons(fcts []facts.SetFact, now time.Time) []WeeklyComparison {
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	current := aggregateByExercise(facts.Window(fcts, weekAgo, now))
	prior := aggregateByExercise(facts.Window(fcts, twoWeeksAgo, weekAgo))

	names := make(map[string]string)
	for _, f := range fcts {
		if f.ExerciseName != "" {
			names[f.OriginalExerciseID] = f.ExerciseName
		}
	}

	out := make([]WeeklyComparison, 0, len(current))
	for id, this := range current {
		cmp := WeeklyComparison{
			ExerciseID:   id,
			ExerciseName: names[id],
			ThisWeek:     this,
		}
		if last, ok := prior[id]; ok {
			lastCopy := last
			cmp.LastWeek = &lastCopy
			cmp.SetsDelta = delta(float64(this.Sets), float64(last.Sets))
			cmp.VolumeDelta = delta(this.VolumeKg, last.VolumeKg)
			cmp.MaxWeightDelta = delta(this.MaxWeightKg, last.MaxWeightKg)
		} else {
			cmp.FirstWeek = true
		}
		out = append(out, cmp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExerciseName != out[j].ExerciseName {
			return out[i].ExerciseName < out[j].ExerciseName
		}
		return out[i].ExerciseID < out[j].ExerciseID
	})
	return out
}

func aggregateByExercise(fcts []facts.SetFact) map[string]WeekAggregate {
	out := make(map[string]WeekAggregate)
	for _, f := range fcts {
		agg := out[f.OriginalExerciseID]
		agg.Sets++
		agg.VolumeKg += f.WeightKg * float64(f.Reps)
		if f.WeightKg > agg.MaxWeightKg {
			agg.MaxWeightKg = f.WeightKg
		}
		out[f.OriginalExerciseID] = agg
	}
	return out
}

func delta(current, previous float64) *float64 {
	if previous == 0 {
		return nil
	}
	d := (current - previous) / previous
	return &d
}
