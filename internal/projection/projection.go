// Package projection computes the current state of mutable entities by
// last-writer-wins replay over the append-only event log. Nothing here is
// persisted; every call recomputes from the log.
package projection

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/ironlog/ironlog/internal/event"
	"github.com/ironlog/ironlog/internal/storage"
)

// Engine projects entities from an event scanner.
type Engine struct {
	store storage.EventScanner
	logf  func(format string, args ...any)
}

// New creates a projection engine over the given scanner.
func New(store storage.EventScanner) *Engine {
	return &Engine{store: store, logf: log.Printf}
}

// SetLogf overrides the warning sink. Tests only.
func (e *Engine) SetLogf(logf func(format string, args ...any)) {
	e.logf = logf
}

// record pairs a winning event with its decoded payload.
type record struct {
	evt     event.Event
	payload event.Payload
}

// supersedes reports whether a beats b under latest-wins resolution:
// greater created_at wins, ties broken by event id, which is monotonic with
// insertion order and thus a deterministic tie-break.
func supersedes(a, b event.Event) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// latest resolves the winning event per entity id among the given types.
// Malformed events are skipped with a warning; one corrupt historical record
// never fails the projection.
func (e *Engine) latest(ctx context.Context, types []event.Type, idOf func(event.Payload) string) (map[string]record, error) {
	winners := make(map[string]record)
	err := e.store.Scan(ctx, storage.ScanFilter{Types: types}, func(evt event.Event) error {
		payload, err := event.Decode(evt)
		if err != nil {
			e.logf("projection: skipping event: %v", &storage.MalformedEventError{
				EventID: evt.ID, Type: string(evt.Type), Err: err,
			})
			return nil
		}
		id := idOf(payload)
		if id == "" {
			return nil
		}
		current, ok := winners[id]
		if !ok || supersedes(evt, current.evt) {
			winners[id] = record{evt: evt, payload: payload}
		}
		return nil
	})
	if err != nil {
		if storage.IsMissingRelation(err) {
			return map[string]record{}, nil
		}
		return nil, err
	}
	return winners, nil
}

// Exercise is the projected current state of an exercise.
type Exercise struct {
	ID          string
	Name        string
	MuscleGroup string
	IsGlobal    bool
	GymID       string
	UpdatedAt   time.Time
}

// Gym is the projected current state of a gym.
type Gym struct {
	ID        string
	Name      string
	Location  string
	UpdatedAt time.Time
}

// Template is the projected current state of a workout template, with
// archive status left-joined from the disjoint archive stream.
type Template struct {
	ID         string
	Name       string
	Exercises  []event.TemplateExercise
	IsArchived bool
	UpdatedAt  time.Time
}

// Rotation is the projected current state of a template rotation.
type Rotation struct {
	ID          string
	Name        string
	TemplateIDs []string
	UpdatedAt   time.Time
}

// Exercises projects all non-deleted exercises, ordered by name.
func (e *Engine) Exercises(ctx context.Context) ([]Exercise, error) {
	winners, err := e.latest(ctx,
		[]event.Type{event.TypeExerciseCreated, event.TypeExerciseUpdated, event.TypeExerciseDeleted},
		func(p event.Payload) string {
			switch payload := p.(type) {
			case event.ExerciseUpsertPayload:
				return payload.ExerciseID
			case event.ExerciseDeletedPayload:
				return payload.ExerciseID
			}
			return ""
		})
	if err != nil {
		return nil, err
	}

	var exercises []Exercise
	for _, rec := range winners {
		payload, ok := rec.payload.(event.ExerciseUpsertPayload)
		if !ok {
			// Winning event is the deletion; the id is omitted entirely.
			continue
		}
		exercises = append(exercises, Exercise{
			ID:          payload.ExerciseID,
			Name:        payload.Name,
			MuscleGroup: payload.MuscleGroup,
			IsGlobal:    payload.IsGlobal,
			GymID:       payload.GymID,
			UpdatedAt:   rec.evt.CreatedAt,
		})
	}
	sort.Slice(exercises, func(i, j int) bool {
		if exercises[i].Name != exercises[j].Name {
			return exercises[i].Name < exercises[j].Name
		}
		return exercises[i].ID < exercises[j].ID
	})
	return exercises, nil
}

// ExerciseIndex projects exercises keyed by id, for dimension joins.
func (e *Engine) ExerciseIndex(ctx context.Context) (map[string]Exercise, error) {
	exercises, err := e.Exercises(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]Exercise, len(exercises))
	for _, ex := range exercises {
		index[ex.ID] = ex
	}
	return index, nil
}

// Gyms projects all non-deleted gyms, ordered by name.
func (e *Engine) Gyms(ctx context.Context) ([]Gym, error) {
	winners, err := e.latest(ctx,
		[]event.Type{event.TypeGymCreated, event.TypeGymUpdated, event.TypeGymDeleted},
		func(p event.Payload) string {
			switch payload := p.(type) {
			case event.GymUpsertPayload:
				return payload.GymID
			case event.GymDeletedPayload:
				return payload.GymID
			}
			return ""
		})
	if err != nil {
		return nil, err
	}

	var gyms []Gym
	for _, rec := range winners {
		payload, ok := rec.payload.(event.GymUpsertPayload)
		if !ok {
			continue
		}
		gyms = append(gyms, Gym{
			ID:        payload.GymID,
			Name:      payload.Name,
			Location:  payload.Location,
			UpdatedAt: rec.evt.CreatedAt,
		})
	}
	sort.Slice(gyms, func(i, j int) bool {
		if gyms[i].Name != gyms[j].Name {
			return gyms[i].Name < gyms[j].Name
		}
		return gyms[i].ID < gyms[j].ID
	})
	return gyms, nil
}

// Templates projects all non-deleted templates with archive status. The
// archive stream is resolved independently and left-joined: a missing
// archive record means not archived, and an archive record without a base
// entity projects nothing.
func (e *Engine) Templates(ctx context.Context) ([]Template, error) {
	winners, err := e.latest(ctx,
		[]event.Type{event.TypeTemplateCreated, event.TypeTemplateUpdated, event.TypeTemplateDeleted},
		func(p event.Payload) string {
			switch payload := p.(type) {
			case event.TemplateUpsertPayload:
				return payload.TemplateID
			case event.TemplateDeletedPayload:
				return payload.TemplateID
			}
			return ""
		})
	if err != nil {
		return nil, err
	}

	archived, err := e.latest(ctx,
		[]event.Type{event.TypeTemplateArchived},
		func(p event.Payload) string {
			if payload, ok := p.(event.TemplateArchivedPayload); ok {
				return payload.TemplateID
			}
			return ""
		})
	if err != nil {
		return nil, err
	}

	var templates []Template
	for id, rec := range winners {
		payload, ok := rec.payload.(event.TemplateUpsertPayload)
		if !ok {
			continue
		}
		tpl := Template{
			ID:        payload.TemplateID,
			Name:      payload.Name,
			Exercises: sortedTemplateExercises(payload.Exercises),
			UpdatedAt: rec.evt.CreatedAt,
		}
		if arc, ok := archived[id]; ok {
			if arcPayload, ok := arc.payload.(event.TemplateArchivedPayload); ok {
				tpl.IsArchived = arcPayload.IsArchived
			}
		}
		templates = append(templates, tpl)
	}
	sort.Slice(templates, func(i, j int) bool {
		if templates[i].Name != templates[j].Name {
			return templates[i].Name < templates[j].Name
		}
		return templates[i].ID < templates[j].ID
	})
	return templates, nil
}

// Rotations projects all non-deleted rotations, ordered by name.
func (e *Engine) Rotations(ctx context.Context) ([]Rotation, error) {
	winners, err := e.latest(ctx,
		[]event.Type{event.TypeRotationCreated, event.TypeRotationUpdated, event.TypeRotationDeleted},
		func(p event.Payload) string {
			switch payload := p.(type) {
			case event.RotationUpsertPayload:
				return payload.RotationID
			case event.RotationDeletedPayload:
				return payload.RotationID
			}
			return ""
		})
	if err != nil {
		return nil, err
	}

	var rotations []Rotation
	for _, rec := range winners {
		payload, ok := rec.payload.(event.RotationUpsertPayload)
		if !ok {
			continue
		}
		rotations = append(rotations, Rotation{
			ID:          payload.RotationID,
			Name:        payload.Name,
			TemplateIDs: payload.TemplateIDs,
			UpdatedAt:   rec.evt.CreatedAt,
		})
	}
	sort.Slice(rotations, func(i, j int) bool {
		if rotations[i].Name != rotations[j].Name {
			return rotations[i].Name < rotations[j].Name
		}
		return rotations[i].ID < rotations[j].ID
	})
	return rotations, nil
}

func sortedTemplateExercises(exercises []event.TemplateExercise) []event.TemplateExercise {
	out := make([]event.TemplateExercise, len(exercises))
	copy(out, exercises)
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}
