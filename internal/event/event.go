package event

import (
	"strings"
	"time"
)

// Type identifies the type of a log event.
type Type string

// Exercise dimension events.
const (
	// TypeExerciseCreated records the creation of an exercise.
	TypeExerciseCreated Type = "exercise_created"
	// TypeExerciseUpdated records updates to an exercise.
	TypeExerciseUpdated Type = "exercise_updated"
	// TypeExerciseDeleted removes an exercise from projections.
	TypeExerciseDeleted Type = "exercise_deleted"
)

// Gym dimension events.
const (
	// TypeGymCreated records the creation of a gym.
	TypeGymCreated Type = "gym_created"
	// TypeGymUpdated records updates to a gym.
	TypeGymUpdated Type = "gym_updated"
	// TypeGymDeleted removes a gym from projections.
	TypeGymDeleted Type = "gym_deleted"
)

// Template (workout plan) events.
const (
	// TypeTemplateCreated records the creation of a workout template.
	TypeTemplateCreated Type = "template_created"
	// TypeTemplateUpdated records updates to a workout template.
	TypeTemplateUpdated Type = "template_updated"
	// TypeTemplateDeleted removes a template from projections.
	TypeTemplateDeleted Type = "template_deleted"
	// TypeTemplateArchived records an archive/restore transition.
	// Archival is a disjoint stream from the created/updated/deleted stream
	// so content state and archive state evolve independently.
	TypeTemplateArchived Type = "template_archived"
)

// Rotation events.
const (
	// TypeRotationCreated records the creation of a template rotation.
	TypeRotationCreated Type = "rotation_created"
	// TypeRotationUpdated records updates to a template rotation.
	TypeRotationUpdated Type = "rotation_updated"
	// TypeRotationDeleted removes a rotation from projections.
	TypeRotationDeleted Type = "rotation_deleted"
)

// Workout fact events.
const (
	// TypeWorkoutStarted records the start of a workout.
	TypeWorkoutStarted Type = "workout_started"
	// TypeSetLogged records a single logged set.
	TypeSetLogged Type = "set_logged"
	// TypeWorkoutCompleted records the completion of a workout.
	TypeWorkoutCompleted Type = "workout_completed"
)

// Event represents an immutable record in the append-only event log.
//
// ID is the primary key and the default total order: a UUIDv7 assigned on
// append, monotonically increasing with creation order. CreatedAt is the
// business-level order used for latest-wins resolution. The two orders can
// disagree under clock skew or out-of-order import; both are preserved.
type Event struct {
	// ID is the time-ordered unique identifier assigned by storage.
	ID string
	// CreatedAt is when the event was appended (UTC, millisecond precision).
	CreatedAt time.Time
	// Type identifies the kind of event.
	Type Type
	// Payload holds event-specific data as JSON.
	Payload []byte
}

// IsValid reports whether the event type is usable.
func (t Type) IsValid() bool {
	return strings.TrimSpace(string(t)) != ""
}

// IsDeletion reports whether the event type removes its entity from
// projections.
func (t Type) IsDeletion() bool {
	switch t {
	case TypeExerciseDeleted, TypeGymDeleted, TypeTemplateDeleted, TypeRotationDeleted:
		return true
	}
	return false
}

// Known reports whether the event type is part of the current schema.
// Unknown types are tolerated in the log and ignored by projections.
func (t Type) Known() bool {
	switch t {
	case TypeExerciseCreated, TypeExerciseUpdated, TypeExerciseDeleted,
		TypeGymCreated, TypeGymUpdated, TypeGymDeleted,
		TypeTemplateCreated, TypeTemplateUpdated, TypeTemplateDeleted, TypeTemplateArchived,
		TypeRotationCreated, TypeRotationUpdated, TypeRotationDeleted,
		TypeWorkoutStarted, TypeSetLogged, TypeWorkoutCompleted:
		return true
	}
	return false
}
