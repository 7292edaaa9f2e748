// Package session manages the ephemeral in-progress workout buffer. A
// session lives only between start and complete/cancel: completion flattens
// it into workout_started + set_logged + workout_completed events appended
// in one transaction; cancellation discards it without writing anything.
// Keeping the active session outside the event log means an unflushed
// durability checkpoint can only lose already-persisted history, never the
// workout being logged.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ironlog/ironlog/internal/event"
	"github.com/ironlog/ironlog/internal/storage"
)

// ErrNotFound indicates no active session exists for the workout id.
var ErrNotFound = errors.New("workout session not found")

// LoggedSet is one set in the working buffer.
type LoggedSet struct {
	SetID              string    `json:"set_id"`
	ExerciseID         string    `json:"exercise_id"`
	OriginalExerciseID string    `json:"original_exercise_id"`
	WeightKg           float64   `json:"weight_kg"`
	Reps               int       `json:"reps"`
	RIR                *int      `json:"rir,omitempty"`
	LoggedAt           time.Time `json:"logged_at"`
}

// CustomExercise is an ad-hoc exercise added mid-workout. Completion emits
// an exercise_created event for it before the workout events.
type CustomExercise struct {
	ExerciseID  string `json:"exercise_id"`
	Name        string `json:"name"`
	MuscleGroup string `json:"muscle_group"`
	IsGlobal    bool   `json:"is_global"`
	GymID       string `json:"gym_id,omitempty"`
}

// Session is the client-local working buffer for one workout.
type Session struct {
	WorkoutID     string                    `json:"workout_id"`
	TemplateID    string                    `json:"template_id"`
	GymID         string                    `json:"gym_id"`
	StartedAt     time.Time                 `json:"started_at"`
	Sets          []LoggedSet               `json:"sets"`
	Substitutions map[string]string         `json:"substitutions,omitempty"`
	Custom        map[string]CustomExercise `json:"custom_exercises,omitempty"`
}

// SetInput is the caller-supplied portion of a logged set.
type SetInput struct {
	ExerciseID         string
	OriginalExerciseID string
	WeightKg           float64
	Reps               int
	RIR                *int
}

// Manager tracks active sessions in memory.
type Manager struct {
	mu       sync.Mutex
	appender storage.EventAppender
	active   map[string]*Session
	now      func() time.Time
}

// NewManager creates a session manager writing to the given appender.
func NewManager(appender storage.EventAppender) *Manager {
	return &Manager{
		appender: appender,
		active:   make(map[string]*Session),
		now:      time.Now,
	}
}

// SetClock overrides the timestamp source. Tests only.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Start opens a new session and returns its snapshot.
func (m *Manager) Start(templateID, gymID string) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &Session{
		WorkoutID:  uuid.NewString(),
		TemplateID: templateID,
		GymID:      gymID,
		StartedAt:  m.now().UTC(),
	}
	m.active[s.WorkoutID] = s
	return *s
}

// Get returns a snapshot of an active session.
func (m *Manager) Get(workoutID string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.active[workoutID]
	if !ok {
		return Session{}, ErrNotFound
	}
	return snapshot(s), nil
}

// LogSet appends a set to the buffer. The original exercise id defaults to
// the performed exercise when the set is not a substitution.
func (m *Manager) LogSet(workoutID string, input SetInput) (LoggedSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.active[workoutID]
	if !ok {
		return LoggedSet{}, ErrNotFound
	}
	original := input.OriginalExerciseID
	if original == "" {
		original = input.ExerciseID
	}
	set := LoggedSet{
		SetID:              uuid.NewString(),
		ExerciseID:         input.ExerciseID,
		OriginalExerciseID: original,
		WeightKg:           input.WeightKg,
		Reps:               input.Reps,
		RIR:                input.RIR,
		LoggedAt:           m.now().UTC(),
	}
	s.Sets = append(s.Sets, set)
	return set, nil
}

// RemoveSet deletes a buffered set.
func (m *Manager) RemoveSet(workoutID, setID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.active[workoutID]
	if !ok {
		return ErrNotFound
	}
	for i, set := range s.Sets {
		if set.SetID == setID {
			s.Sets = append(s.Sets[:i], s.Sets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("set %s not found in workout %s", setID, workoutID)
}

// ReorderSets rearranges the buffer to match setIDs, which must be a
// permutation of the buffered set ids.
func (m *Manager) ReorderSets(workoutID string, setIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.active[workoutID]
	if !ok {
		return ErrNotFound
	}
	if len(setIDs) != len(s.Sets) {
		return fmt.Errorf("reorder expects %d set ids, got %d", len(s.Sets), len(setIDs))
	}
	byID := make(map[string]LoggedSet, len(s.Sets))
	for _, set := range s.Sets {
		byID[set.SetID] = set
	}
	next := make([]LoggedSet, 0, len(setIDs))
	for _, id := range setIDs {
		set, ok := byID[id]
		if !ok {
			return fmt.Errorf("set %s not found in workout %s", id, workoutID)
		}
		delete(byID, id)
		next = append(next, set)
	}
	s.Sets = next
	return nil
}

// Substitute records that replacement is performed in place of original for
// the rest of the session. Analytics keep grouping by the original id.
func (m *Manager) Substitute(workoutID, originalExerciseID, replacementExerciseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.active[workoutID]
	if !ok {
		return ErrNotFound
	}
	if s.Substitutions == nil {
		s.Substitutions = make(map[string]string)
	}
	s.Substitutions[originalExerciseID] = replacementExerciseID
	return nil
}

// AddCustomExercise registers an ad-hoc exercise for this session.
func (m *Manager) AddCustomExercise(workoutID string, custom CustomExercise) (CustomExercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.active[workoutID]
	if !ok {
		return CustomExercise{}, ErrNotFound
	}
	if custom.ExerciseID == "" {
		custom.ExerciseID = uuid.NewString()
	}
	if s.Custom == nil {
		s.Custom = make(map[string]CustomExercise)
	}
	s.Custom[custom.ExerciseID] = custom
	return custom, nil
}

// Complete flattens the session into events and appends them in one
// transaction: exercise_created for ad-hoc exercises, then workout_started,
// one set_logged per set in buffer order, and workout_completed. The
// session is discarded only after the append succeeds.
func (m *Manager) Complete(ctx context.Context, workoutID string) ([]event.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.active[workoutID]
	if !ok {
		return nil, ErrNotFound
	}

	var drafts []storage.Draft

	customIDs := make([]string, 0, len(s.Custom))
	for id := range s.Custom {
		customIDs = append(customIDs, id)
	}
	sort.Strings(customIDs)
	for _, id := range customIDs {
		custom := s.Custom[id]
		payload, err := event.Encode(event.ExerciseUpsertPayload{
			ExerciseID:  custom.ExerciseID,
			Name:        custom.Name,
			MuscleGroup: custom.MuscleGroup,
			IsGlobal:    custom.IsGlobal,
			GymID:       custom.GymID,
		})
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, storage.Draft{Type: event.TypeExerciseCreated, Payload: payload})
	}

	started, err := event.Encode(event.WorkoutStartedPayload{
		WorkoutID:  s.WorkoutID,
		TemplateID: s.TemplateID,
		GymID:      s.GymID,
		StartedAt:  s.StartedAt,
	})
	if err != nil {
		return nil, err
	}
	drafts = append(drafts, storage.Draft{Type: event.TypeWorkoutStarted, Payload: started})

	for _, set := range s.Sets {
		payload, err := event.Encode(event.SetLoggedPayload{
			WorkoutID:          s.WorkoutID,
			SetID:              set.SetID,
			ExerciseID:         set.ExerciseID,
			OriginalExerciseID: set.OriginalExerciseID,
			WeightKg:           set.WeightKg,
			Reps:               set.Reps,
			RIR:                set.RIR,
			LoggedAt:           set.LoggedAt,
		})
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, storage.Draft{Type: event.TypeSetLogged, Payload: payload})
	}

	completed, err := event.Encode(event.WorkoutCompletedPayload{
		WorkoutID:   s.WorkoutID,
		CompletedAt: m.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	drafts = append(drafts, storage.Draft{Type: event.TypeWorkoutCompleted, Payload: completed})

	events, err := m.appender.AppendBatch(ctx, drafts)
	if err != nil {
		return nil, err
	}
	delete(m.active, workoutID)
	return events, nil
}

// Cancel discards the session. No event is written.
func (m *Manager) Cancel(workoutID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.active[workoutID]; !ok {
		return ErrNotFound
	}
	delete(m.active, workoutID)
	return nil
}

func snapshot(s *Session) Session {
	out := *s
	out.Sets = append([]LoggedSet(nil), s.Sets...)
	if s.Substitutions != nil {
		out.Substitutions = make(map[string]string, len(s.Substitutions))
		for k, v := range s.Substitutions {
			out.Substitutions[k] = v
		}
	}
	if s.Custom != nil {
		out.Custom = make(map[string]CustomExercise, len(s.Custom))
		for k, v := range s.Custom {
			out.Custom[k] = v
		}
	}
	return out
}
