// Package seed synthesizes a deterministic multi-week event history used to
// populate a fresh store for onboarding and testing. The schedule follows a
// progressive-overload arc — baseline, progression, plateau, deload, resume —
// and every emitted event carries a strictly increasing timestamp, since the
// projection and fact layers depend on event-order invariants.
package seed

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/ironlog/ironlog/internal/event"
	"github.com/ironlog/ironlog/internal/storage"
)

// Config holds configuration for the generator.
type Config struct {
	// Seed drives the rng; the same seed yields the same schedule shape.
	Seed int64
	// Weeks is the schedule length. Zero means 8.
	Weeks int
	// Verbose logs each generated workout.
	Verbose bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{Seed: 1, Weeks: 8}
}

type demoExercise struct {
	id          string
	name        string
	muscleGroup string
	baseWeight  float64
}

// Generator synthesizes demo event logs.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New creates a generator for the given configuration.
func New(cfg Config) *Generator {
	if cfg.Weeks <= 0 {
		cfg.Weeks = 8
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// Populate generates the schedule ending at now and inserts it into the
// store, preserving the generated historical timestamps.
func (g *Generator) Populate(ctx context.Context, store storage.EventImporter, now time.Time) (int, error) {
	events, err := g.Events(now)
	if err != nil {
		return 0, err
	}
	if err := store.ImportEvents(ctx, events); err != nil {
		return 0, fmt.Errorf("populate demo data: %w", err)
	}
	return len(events), nil
}

// Events generates the full demo event sequence ending at now.
func (g *Generator) Events(now time.Time) ([]event.Event, error) {
	scheduleStart := now.UTC().AddDate(0, 0, -7*g.cfg.Weeks)
	cursor := scheduleStart.Add(-time.Hour)

	gymID := uuid.NewString()
	exercises := []demoExercise{
		{id: uuid.NewString(), name: "Bench Press", muscleGroup: "Chest", baseWeight: 60},
		{id: uuid.NewString(), name: "Squat", muscleGroup: "Quads", baseWeight: 80},
		{id: uuid.NewString(), name: "Barbell Row", muscleGroup: "Back", baseWeight: 50},
		{id: uuid.NewString(), name: "Overhead Press", muscleGroup: "Shoulders", baseWeight: 35},
		{id: uuid.NewString(), name: "Deadlift", muscleGroup: "Hamstrings", baseWeight: 100},
		{id: uuid.NewString(), name: "Barbell Curl", muscleGroup: "Biceps", baseWeight: 25},
	}
	templateA := uuid.NewString()
	templateB := uuid.NewString()

	var events []event.Event
	emit := func(eventType event.Type, payload event.Payload, at time.Time) error {
		raw, err := event.Encode(payload)
		if err != nil {
			return err
		}
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("new event id: %w", err)
		}
		// Timestamps never move backward, whatever the schedule produced.
		if !at.After(cursor) {
			at = cursor.Add(time.Second)
		}
		cursor = at
		events = append(events, event.Event{
			ID:        id.String(),
			CreatedAt: at.Truncate(time.Millisecond),
			Type:      eventType,
			Payload:   raw,
		})
		return nil
	}

	if err := emit(event.TypeGymCreated, event.GymUpsertPayload{
		GymID: gymID, Name: "Demo Gym", Location: "Home",
	}, cursor.Add(time.Second)); err != nil {
		return nil, err
	}
	for _, ex := range exercises {
		if err := emit(event.TypeExerciseCreated, event.ExerciseUpsertPayload{
			ExerciseID: ex.id, Name: ex.name, MuscleGroup: ex.muscleGroup, IsGlobal: true,
		}, cursor.Add(time.Second)); err != nil {
			return nil, err
		}
	}
	for _, tpl := range []struct {
		id        string
		name      string
		exercises []demoExercise
	}{
		{templateA, "Full Body A", []demoExercise{exercises[0], exercises[1], exercises[2]}},
		{templateB, "Full Body B", []demoExercise{exercises[3], exercises[4], exercises[5]}},
	} {
		slots := make([]event.TemplateExercise, len(tpl.exercises))
		for j, ex := range tpl.exercises {
			slots[j] = event.TemplateExercise{
				ExerciseID:    ex.id,
				OrderIndex:    j,
				TargetRepsMin: 5,
				TargetRepsMax: 8,
				SuggestedSets: 3,
			}
		}
		if err := emit(event.TypeTemplateCreated, event.TemplateUpsertPayload{
			TemplateID: tpl.id, Name: tpl.name, Exercises: slots,
		}, cursor.Add(time.Second)); err != nil {
			return nil, err
		}
	}

	workoutIndex := 0
	for week := 0; week < g.cfg.Weeks; week++ {
		multiplier := phaseMultiplier(week, g.cfg.Weeks)
		for _, day := range []int{0, 2, 4} { // Mon, Wed, Fri
			startAt := scheduleStart.AddDate(0, 0, week*7+day).
				Add(17*time.Hour + time.Duration(g.rng.Intn(45))*time.Minute)
			if startAt.After(now) {
				continue
			}

			templateID := templateA
			slots := exercises[:3]
			if workoutIndex%2 == 1 {
				templateID = templateB
				slots = exercises[3:]
			}
			workoutID := uuid.NewString()

			if err := emit(event.TypeWorkoutStarted, event.WorkoutStartedPayload{
				WorkoutID: workoutID, TemplateID: templateID, GymID: gymID, StartedAt: startAt,
			}, startAt); err != nil {
				return nil, err
			}
			if g.cfg.Verbose {
				log.Printf("seed: workout %d week %d template %s", workoutIndex+1, week+1, templateID)
			}

			setAt := startAt
			for _, ex := range slots {
				weight := roundToPlate(ex.baseWeight * multiplier)
				for set := 0; set < 3; set++ {
					setAt = setAt.Add(2*time.Minute + time.Duration(g.rng.Intn(90))*time.Second)
					reps := 5 + g.rng.Intn(4)
					rir := 2
					if err := emit(event.TypeSetLogged, event.SetLoggedPayload{
						WorkoutID:          workoutID,
						SetID:              uuid.NewString(),
						ExerciseID:         ex.id,
						OriginalExerciseID: ex.id,
						WeightKg:           weight,
						Reps:               reps,
						RIR:                &rir,
						LoggedAt:           setAt,
					}, setAt); err != nil {
						return nil, err
					}
				}
			}

			completedAt := setAt.Add(3 * time.Minute)
			if err := emit(event.TypeWorkoutCompleted, event.WorkoutCompletedPayload{
				WorkoutID: workoutID, CompletedAt: completedAt,
			}, completedAt); err != nil {
				return nil, err
			}
			workoutIndex++
		}
	}
	return events, nil
}

// phaseMultiplier shapes the progressive-overload arc: baseline,
// progression, plateau, deload, resume.
func phaseMultiplier(week, totalWeeks int) float64 {
	deloadWeek := totalWeeks - 2
	switch {
	case week == 0:
		return 1.0
	case week < 4:
		return 1.0 + 0.025*float64(week)
	case week < deloadWeek:
		return 1.075 // plateau: hold the progression peak
	case week == deloadWeek:
		return 0.90 // deload
	default:
		return 1.10 // resume above the previous peak
	}
}

// roundToPlate rounds to the nearest 2.5 kg increment.
func roundToPlate(weight float64) float64 {
	return math.Round(weight/2.5) * 2.5
}
