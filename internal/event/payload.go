package event

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Payload is the tagged union of event-specific data. Every event type maps
// to exactly one payload struct; Decode performs the mapping so that
// projections and fact derivation never reach into raw JSON fields.
type Payload interface {
	payload()
}

// ExerciseUpsertPayload captures exercise_created and exercise_updated events.
type ExerciseUpsertPayload struct {
	ExerciseID  string `json:"exercise_id"`
	Name        string `json:"name"`
	MuscleGroup string `json:"muscle_group"`
	// IsGlobal marks an exercise that aggregates across all gyms.
	IsGlobal bool `json:"is_global"`
	// GymID scopes a non-global exercise to a single gym.
	GymID string `json:"gym_id,omitempty"`
}

// ExerciseDeletedPayload captures exercise_deleted events.
type ExerciseDeletedPayload struct {
	ExerciseID string `json:"exercise_id"`
}

// GymUpsertPayload captures gym_created and gym_updated events.
type GymUpsertPayload struct {
	GymID    string `json:"gym_id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// GymDeletedPayload captures gym_deleted events.
type GymDeletedPayload struct {
	GymID string `json:"gym_id"`
}

// TemplateExercise is a single slot in a workout template.
type TemplateExercise struct {
	ExerciseID    string `json:"exercise_id"`
	OrderIndex    int    `json:"order_index"`
	TargetRepsMin int    `json:"target_reps_min"`
	TargetRepsMax int    `json:"target_reps_max"`
	SuggestedSets int    `json:"suggested_sets"`
	RestSeconds   *int   `json:"rest_seconds,omitempty"`
	// ReplacementExerciseID records a sticky substitution chosen by the user.
	ReplacementExerciseID string `json:"replacement_exercise_id,omitempty"`
}

// TemplateUpsertPayload captures template_created and template_updated events.
type TemplateUpsertPayload struct {
	TemplateID string             `json:"template_id"`
	Name       string             `json:"name"`
	Exercises  []TemplateExercise `json:"exercises"`
}

// TemplateDeletedPayload captures template_deleted events.
type TemplateDeletedPayload struct {
	TemplateID string `json:"template_id"`
}

// TemplateArchivedPayload captures template_archived events. The stream is
// disjoint from the upsert stream; IsArchived false restores the template.
type TemplateArchivedPayload struct {
	TemplateID string `json:"template_id"`
	IsArchived bool   `json:"is_archived"`
}

// RotationUpsertPayload captures rotation_created and rotation_updated events.
type RotationUpsertPayload struct {
	RotationID  string   `json:"rotation_id"`
	Name        string   `json:"name"`
	TemplateIDs []string `json:"template_ids"`
}

// RotationDeletedPayload captures rotation_deleted events.
type RotationDeletedPayload struct {
	RotationID string `json:"rotation_id"`
}

// WorkoutStartedPayload captures workout_started events.
type WorkoutStartedPayload struct {
	WorkoutID  string    `json:"workout_id"`
	TemplateID string    `json:"template_id"`
	GymID      string    `json:"gym_id"`
	StartedAt  time.Time `json:"started_at"`
}

// SetLoggedPayload captures set_logged events.
type SetLoggedPayload struct {
	WorkoutID string `json:"workout_id"`
	SetID     string `json:"set_id"`
	// ExerciseID is the exercise actually performed (possibly a substitution).
	ExerciseID string `json:"exercise_id"`
	// OriginalExerciseID is the plan's exercise, substitution-invariant.
	// All analytics group by this key.
	OriginalExerciseID string    `json:"original_exercise_id"`
	WeightKg           float64   `json:"weight_kg"`
	Reps               int       `json:"reps"`
	RIR                *int      `json:"rir,omitempty"`
	LoggedAt           time.Time `json:"logged_at"`
}

// WorkoutCompletedPayload captures workout_completed events.
type WorkoutCompletedPayload struct {
	WorkoutID   string    `json:"workout_id"`
	CompletedAt time.Time `json:"completed_at"`
}

func (ExerciseUpsertPayload) payload()   {}
func (ExerciseDeletedPayload) payload()  {}
func (GymUpsertPayload) payload()        {}
func (GymDeletedPayload) payload()       {}
func (TemplateUpsertPayload) payload()   {}
func (TemplateDeletedPayload) payload()  {}
func (TemplateArchivedPayload) payload() {}
func (RotationUpsertPayload) payload()   {}
func (RotationDeletedPayload) payload()  {}
func (WorkoutStartedPayload) payload()   {}
func (SetLoggedPayload) payload()        {}
func (WorkoutCompletedPayload) payload() {}

// Decode unmarshals the event payload into its typed form and validates the
// fields every consumer depends on. A nil error guarantees the returned
// payload carries a usable entity identity.
func Decode(evt Event) (Payload, error) {
	switch evt.Type {
	case TypeExerciseCreated, TypeExerciseUpdated:
		var p ExerciseUpsertPayload
		if err := unmarshal(evt, &p); err != nil {
			return nil, err
		}
		return p, requireID(evt, "exercise_id", p.ExerciseID)
	case TypeExerciseDeleted:
		var p ExerciseDeletedPayload
		if err := unmarshal(evt, &p); err != nil {
			return nil, err
		}
		return p, requireID(evt, "exercise_id", p.ExerciseID)
	case TypeGymCreated, TypeGymUpdated:
		var p GymUpsertPayload
		if err := unmarshal(evt, &p); err != nil {
			return nil, err
		}
		return p, requireID(evt, "gym_id", p.GymID)
	case TypeGymDeleted:
		var p GymDeletedPayload
		if err := unmarshal(evt, &p); err != nil {
			return nil, err
		}
		return p, requireID(evt, "gym_id", p.GymID)
	case TypeTemplateCreated, TypeTemplateUpdated:
		var p TemplateUpsertPayload
		if err := unmarshal(evt, &p); err != nil {
			return nil, err
		}
		return p, requireID(evt, "template_id", p.TemplateID)
	case TypeTemplateDeleted:
		var p TemplateDeletedPayload
		if err := unmarshal(evt, &p); err != nil {
			return nil, err
		}
		return p, requireID(evt, "template_id", p.TemplateID)
	case TypeTemplateArchived:
		var p TemplateArchivedPayload
		if err := unmarshal(evt, &p); err != nil {
			return nil, err
		}
		return p, requireID(evt, "template_id", p.TemplateID)
	case TypeRotationCreated, TypeRotationUpdated:
		var p RotationUpsertPayload
		if err := unmarshal(evt, &p); err != nil {
			return nil, err
		}
		return p, requireID(evt, "rotation_id", p.RotationID)
	case TypeRotationDeleted:
		var p RotationDeletedPayload
		if err := unmarshal(evt, &p); err != nil {
			return nil, err
		}
		return p, requireID(evt, "rotation_id", p.RotationID)
	case TypeWorkoutStarted:
		var p WorkoutStartedPayload
		if err := unmarshal(evt, &p); err != nil {
			return nil, err
		}
		return p, requireID(evt, "workout_id", p.WorkoutID)
	case TypeSetLogged:
		var p SetLoggedPayload
		if err := unmarshal(evt, &p); err != nil {
			return nil, err
		}
		if err := requireID(evt, "set_id", p.SetID); err != nil {
			return nil, err
		}
		if err := requireID(evt, "original_exercise_id", p.OriginalExerciseID); err != nil {
			return nil, err
		}
		if p.ExerciseID == "" {
			p.ExerciseID = p.OriginalExerciseID
		}
		return p, nil
	case TypeWorkoutCompleted:
		var p WorkoutCompletedPayload
		if err := unmarshal(evt, &p); err != nil {
			return nil, err
		}
		return p, requireID(evt, "workout_id", p.WorkoutID)
	}
	return nil, fmt.Errorf("event %s: unknown event type %q", evt.ID, evt.Type)
}

// Encode marshals a typed payload for storage.
func Encode(p Payload) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return raw, nil
}

func unmarshal(evt Event, target any) error {
	if len(evt.Payload) == 0 {
		return fmt.Errorf("event %s (%s): empty payload", evt.ID, evt.Type)
	}
	if err := json.Unmarshal(evt.Payload, target); err != nil {
		return fmt.Errorf("event %s (%s): decode payload: %w", evt.ID, evt.Type, err)
	}
	return nil
}

func requireID(evt Event, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("event %s (%s): missing required field %s", evt.ID, evt.Type, field)
	}
	return nil
}
