// Package facts flattens set_logged events plus joined dimension state into
// an enriched fact stream: estimated one-rep-max, rolling maxima, PR flags,
// anomaly flags. Enrichment is a sequential scan with state — each row's
// flags depend on all strictly-earlier rows for the same exercise — so the
// stream is always derived in chronological order over the full history.
package facts

import (
	"context"
	"log"
	"math"
	"sort"
	"time"

	"github.com/ironlog/ironlog/internal/event"
	"github.com/ironlog/ironlog/internal/projection"
	"github.com/ironlog/ironlog/internal/storage"
)

// SetFact is one enriched logged set, keyed by OriginalExerciseID.
type SetFact struct {
	SetID     string
	WorkoutID string
	// ExerciseID is the exercise actually performed.
	ExerciseID string
	// OriginalExerciseID is the plan's exercise; all grouping uses this key.
	OriginalExerciseID string
	ExerciseName       string
	MuscleGroup        string
	IsGlobalExercise   bool
	// ExerciseGymID is the gym a non-global exercise is scoped to.
	ExerciseGymID string
	// GymID is the gym of the workout the set belongs to.
	GymID    string
	WeightKg float64
	Reps     int
	RIR      *int
	LoggedAt time.Time

	// Estimated1RM is the Epley-formula estimate weight * (1 + reps/30).
	Estimated1RM float64
	// RollingMaxWeight / RollingMax1RM are prefix maxima including this row.
	RollingMaxWeight float64
	RollingMax1RM    float64
	// IsPR is set when no prior rows exist for the exercise or when weight
	// or estimated 1RM strictly exceeds the prior rolling max.
	IsPR bool
	// IsAnomaly flags a >=50% weight delta versus the immediately preceding
	// set of the same exercise.
	IsAnomaly bool
}

// Workout is the flattened view of a workout_started / workout_completed
// pair.
type Workout struct {
	ID          string
	TemplateID  string
	GymID       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// Estimated1RM computes the Epley single-rep-max estimate.
func Estimated1RM(weightKg float64, reps int) float64 {
	return weightKg * (1 + float64(reps)/30)
}

// Deriver builds the enriched fact stream from the event log.
type Deriver struct {
	store storage.EventScanner
	proj  *projection.Engine
	logf  func(format string, args ...any)
}

// New creates a fact deriver over the given scanner and projection engine.
func New(store storage.EventScanner, proj *projection.Engine) *Deriver {
	return &Deriver{store: store, proj: proj, logf: log.Printf}
}

// SetLogf overrides the warning sink. Tests only.
func (d *Deriver) SetLogf(logf func(format string, args ...any)) {
	d.logf = logf
}

// Workouts returns all workouts ordered by start time.
func (d *Deriver) Workouts(ctx context.Context) ([]Workout, error) {
	byID := make(map[string]*Workout)
	err := d.store.Scan(ctx, storage.ScanFilter{
		Types: []event.Type{event.TypeWorkoutStarted, event.TypeWorkoutCompleted},
	}, func(evt event.Event) error {
		payload, err := event.Decode(evt)
		if err != nil {
			d.logf("facts: skipping event: %v", &storage.MalformedEventError{
				EventID: evt.ID, Type: string(evt.Type), Err: err,
			})
			return nil
		}
		switch p := payload.(type) {
		case event.WorkoutStartedPayload:
			started := p.StartedAt
			if started.IsZero() {
				started = evt.CreatedAt
			}
			w := byID[p.WorkoutID]
			if w == nil {
				w = &Workout{ID: p.WorkoutID}
				byID[p.WorkoutID] = w
			}
			w.TemplateID = p.TemplateID
			w.GymID = p.GymID
			w.StartedAt = started
		case event.WorkoutCompletedPayload:
			completed := p.CompletedAt
			if completed.IsZero() {
				completed = evt.CreatedAt
			}
			w := byID[p.WorkoutID]
			if w == nil {
				w = &Workout{ID: p.WorkoutID, StartedAt: completed}
				byID[p.WorkoutID] = w
			}
			w.CompletedAt = &completed
		}
		return nil
	})
	if err != nil {
		if storage.IsMissingRelation(err) {
			return nil, nil
		}
		return nil, err
	}

	workouts := make([]Workout, 0, len(byID))
	for _, w := range byID {
		workouts = append(workouts, *w)
	}
	sort.Slice(workouts, func(i, j int) bool {
		if !workouts[i].StartedAt.Equal(workouts[j].StartedAt) {
			return workouts[i].StartedAt.Before(workouts[j].StartedAt)
		}
		return workouts[i].ID < workouts[j].ID
	})
	return workouts, nil
}

// Facts returns the full enriched fact stream ordered by logged_at
// ascending. Callers filter by time window after derivation so rolling state
// always reflects complete history.
func (d *Deriver) Facts(ctx context.Context) ([]SetFact, error) {
	exercises, err := d.proj.ExerciseIndex(ctx)
	if err != nil {
		return nil, err
	}
	workouts, err := d.Workouts(ctx)
	if err != nil {
		return nil, err
	}
	workoutByID := make(map[string]Workout, len(workouts))
	for _, w := range workouts {
		workoutByID[w.ID] = w
	}

	type rawSet struct {
		evt     event.Event
		payload event.SetLoggedPayload
		at      time.Time
	}
	var raw []rawSet
	err = d.store.Scan(ctx, storage.ScanFilter{
		Types: []event.Type{event.TypeSetLogged},
	}, func(evt event.Event) error {
		payload, err := event.Decode(evt)
		if err != nil {
			d.logf("facts: skipping event: %v", &storage.MalformedEventError{
				EventID: evt.ID, Type: string(evt.Type), Err: err,
			})
			return nil
		}
		p := payload.(event.SetLoggedPayload)
		at := p.LoggedAt
		if at.IsZero() {
			at = evt.CreatedAt
		}
		raw = append(raw, rawSet{evt: evt, payload: p, at: at})
		return nil
	})
	if err != nil {
		if storage.IsMissingRelation(err) {
			return nil, nil
		}
		return nil, err
	}

	sort.Slice(raw, func(i, j int) bool {
		if !raw[i].at.Equal(raw[j].at) {
			return raw[i].at.Before(raw[j].at)
		}
		return raw[i].evt.ID < raw[j].evt.ID
	})

	type exerciseState struct {
		maxWeight  float64
		max1RM     float64
		lastWeight float64
		seen       bool
	}
	states := make(map[string]*exerciseState)

	facts := make([]SetFact, 0, len(raw))
	for _, r := range raw {
		p := r.payload
		fact := SetFact{
			SetID:              p.SetID,
			WorkoutID:          p.WorkoutID,
			ExerciseID:         p.ExerciseID,
			OriginalExerciseID: p.OriginalExerciseID,
			WeightKg:           p.WeightKg,
			Reps:               p.Reps,
			RIR:                p.RIR,
			LoggedAt:           r.at,
			Estimated1RM:       Estimated1RM(p.WeightKg, p.Reps),
		}
		if ex, ok := exercises[p.OriginalExerciseID]; ok {
			fact.ExerciseName = ex.Name
			fact.MuscleGroup = ex.MuscleGroup
			fact.IsGlobalExercise = ex.IsGlobal
			fact.ExerciseGymID = ex.GymID
		}
		if w, ok := workoutByID[p.WorkoutID]; ok {
			fact.GymID = w.GymID
		}

		st := states[p.OriginalExerciseID]
		if st == nil {
			st = &exerciseState{}
			states[p.OriginalExerciseID] = st
		}
		if !st.seen {
			// First-ever set for an exercise is always a PR.
			fact.IsPR = true
		} else {
			fact.IsPR = p.WeightKg > st.maxWeight || fact.Estimated1RM > st.max1RM
			if st.lastWeight > 0 {
				fact.IsAnomaly = math.Abs(p.WeightKg-st.lastWeight)/st.lastWeight >= 0.5
			}
		}
		fact.RollingMaxWeight = math.Max(st.maxWeight, p.WeightKg)
		fact.RollingMax1RM = math.Max(st.max1RM, fact.Estimated1RM)

		st.maxWeight = fact.RollingMaxWeight
		st.max1RM = fact.RollingMax1RM
		st.lastWeight = p.WeightKg
		st.seen = true

		facts = append(facts, fact)
	}
	return facts, nil
}

// Window filters an already-derived fact stream to [since, until).
func Window(facts []SetFact, since, until time.Time) []SetFact {
	var out []SetFact
	for _, f := range facts {
		if !since.IsZero() && f.LoggedAt.Before(since) {
			continue
		}
		if !until.IsZero() && !f.LoggedAt.Before(until) {
			continue
		}
		out = append(out, f)
	}
	return out
}
