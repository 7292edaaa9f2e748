package analytics

import (
	"sort"
	"time"

	"github.com/ironlog/ironlog/internal/facts"
)

// Status classifies training progression for an exercise.
type Status string

const (
	StatusProgressing Status = "progressing"
	StatusPlateau     Status = "plateau"
	StatusRegressing  Status = "regressing"
	StatusUnknown     Status = "unknown"
)

// DefaultDropThreshold is the fractional drop in max weight or volume that
// classifies an exercise as regressing.
const DefaultDropThreshold = 0.10

// baselineSessions caps how many prior sessions feed the trailing recent
// average the latest session is compared against.
const baselineSessions = 5

// ProgressionConfig tunes the classification.
type ProgressionConfig struct {
	// Now anchors the trailing windows.
	Now time.Time
	// WindowDays bounds the sessions considered. Zero means 90 days.
	WindowDays int
	// DropThreshold overrides DefaultDropThreshold when > 0.
	DropThreshold float64
}

// ExerciseProgression is the classification result for one exercise.
type ExerciseProgression struct {
	ExerciseID   string     `json:"exercise_id"`
	ExerciseName string     `json:"exercise_name"`
	GymID        string     `json:"gym_id,omitempty"`
	Status       Status     `json:"status"`
	LastPRAt     *time.Time `json:"last_pr_at,omitempty"`
	// SessionsLast4Weeks counts distinct workouts in the trailing 4 weeks.
	SessionsLast4Weeks int `json:"sessions_last_4_weeks"`
	// DropPct is the observed fractional drop versus the recent baseline,
	// present only when a baseline exists.
	DropPct *float64 `json:"drop_pct,omitempty"`
}

type session struct {
	workoutID string
	at        time.Time
	maxWeight float64
	volume    float64
}

// Progression classifies one exercise. Global exercises aggregate across
// all gyms; gym-scoped exercises see only facts from their gym. Rules apply
// in precedence order: unknown, regressing, plateau, progressing.
func Progression(fcts []facts.SetFact, exerciseID string, cfg ProgressionConfig) ExerciseProgression {
	windowDays := cfg.WindowDays
	if windowDays <= 0 {
		windowDays = 90
	}
	threshold := cfg.DropThreshold
	if threshold <= 0 {
		threshold = DefaultDropThreshold
	}
	since := cfg.Now.AddDate(0, 0, -windowDays)

	result := ExerciseProgression{ExerciseID: exerciseID, Status: StatusUnknown}

	var lastPR *time.Time
	var relevant []facts.SetFact
	for _, f := range fcts {
		if f.OriginalExerciseID != exerciseID {
			continue
		}
		result.ExerciseName = f.ExerciseName
		if !f.IsGlobalExercise {
			result.GymID = f.ExerciseGymID
			// Gym-scoped exercises see only facts from their gym; global
			// ones aggregate across all gyms.
			if f.ExerciseGymID != "" && f.GymID != "" && f.GymID != f.ExerciseGymID {
				continue
			}
		}
		// Last PR date considers the full history, not just the window.
		if f.IsPR {
			at := f.LoggedAt
			lastPR = &at
		}
		if f.LoggedAt.Before(since) || f.LoggedAt.After(cfg.Now) {
			continue
		}
		relevant = append(relevant, f)
	}
	result.LastPRAt = lastPR

	sessions := sessionize(relevant)
	fourWeeksAgo := cfg.Now.AddDate(0, 0, -28)
	for _, s := range sessions {
		if !s.at.Before(fourWeeksAgo) {
			result.SessionsLast4Weeks++
		}
	}

	if len(sessions) < 2 {
		return result
	}

	latest := sessions[len(sessions)-1]
	prior := sessions[:len(sessions)-1]
	if len(prior) > baselineSessions {
		prior = prior[len(prior)-baselineSessions:]
	}
	var baseWeight, baseVolume float64
	for _, s := range prior {
		baseWeight += s.maxWeight
		baseVolume += s.volume
	}
	baseWeight /= float64(len(prior))
	baseVolume /= float64(len(prior))

	drop := 0.0
	if baseWeight > 0 {
		drop = (baseWeight - latest.maxWeight) / baseWeight
	}
	if baseVolume > 0 {
		if volumeDrop := (baseVolume - latest.volume) / baseVolume; volumeDrop > drop {
			drop = volumeDrop
		}
	}
	if drop > 0 {
		d := drop
		result.DropPct = &d
	}

	switch {
	case drop >= threshold:
		result.Status = StatusRegressing
	case result.SessionsLast4Weeks >= 2 && (lastPR == nil || cfg.Now.Sub(*lastPR) >= 28*24*time.Hour):
		result.Status = StatusPlateau
	default:
		result.Status = StatusProgressing
	}
	return result
}

// ProgressionAll classifies every exercise present in the fact stream,
// ordered by exercise name.
func ProgressionAll(fcts []facts.SetFact, cfg ProgressionConfig) []ExerciseProgression {
	ids := make(map[string]bool)
	for _, f := range fcts {
		ids[f.OriginalExerciseID] = true
	}
	out := make([]ExerciseProgression, 0, len(ids))
	for id := range ids {
		out = append(out, Progression(fcts, id, cfg))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExerciseName != out[j].ExerciseName {
			return out[i].ExerciseName < out[j].ExerciseName
		}
		return out[i].ExerciseID < out[j].ExerciseID
	})
	return out
}

// sessionize groups facts into per-workout sessions ordered by time.
func sessionize(fcts []facts.SetFact) []session {
	byWorkout := make(map[string]*session)
	for _, f := range fcts {
		s := byWorkout[f.WorkoutID]
		if s == nil {
			s = &session{workoutID: f.WorkoutID, at: f.LoggedAt}
			byWorkout[f.WorkoutID] = s
		}
		if f.LoggedAt.Before(s.at) {
			s.at = f.LoggedAt
		}
		if f.WeightKg > s.maxWeight {
			s.maxWeight = f.WeightKg
		}
		s.volume += f.WeightKg * float64(f.Reps)
	}
	sessions := make([]session, 0, len(byWorkout))
	for _, s := range byWorkout {
		sessions = append(sessions, *s)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].at.Equal(sessions[j].at) {
			return sessions[i].at.Before(sessions[j].at)
		}
		return sessions[i].workoutID < sessions[j].workoutID
	})
	return sessions
}
