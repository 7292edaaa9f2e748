package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ironlog/ironlog/internal/event"
	"github.com/ironlog/ironlog/internal/storage"
	"github.com/ironlog/ironlog/internal/testkit"
)

var fixed = time.Date(2024, 3, 4, 17, 0, 0, 0, time.UTC)

func newManager(store *testkit.MemStore) *Manager {
	m := NewManager(store)
	m.SetClock(func() time.Time { return fixed })
	return m
}

func TestStartAndGet(t *testing.T) {
	m := newManager(testkit.NewMemStore())
	s := m.Start("tpl-1", "gym-1")
	if s.WorkoutID == "" {
		t.Fatal("Start() assigned no workout id")
	}
	if !s.StartedAt.Equal(fixed) {
		t.Errorf("StartedAt = %v, want %v", s.StartedAt, fixed)
	}

	got, err := m.Get(s.WorkoutID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TemplateID != "tpl-1" || got.GymID != "gym-1" {
		t.Errorf("Get() = %+v", got)
	}

	if _, err := m.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestLogSetDefaultsOriginalExercise(t *testing.T) {
	m := newManager(testkit.NewMemStore())
	s := m.Start("tpl-1", "gym-1")

	set, err := m.LogSet(s.WorkoutID, SetInput{ExerciseID: "bench", WeightKg: 60, Reps: 8})
	if err != nil {
		t.Fatalf("LogSet() error = %v", err)
	}
	if set.OriginalExerciseID != "bench" {
		t.Errorf("OriginalExerciseID = %q, want performed exercise", set.OriginalExerciseID)
	}

	sub, err := m.LogSet(s.WorkoutID, SetInput{ExerciseID: "db-press", OriginalExerciseID: "bench", WeightKg: 24, Reps: 10})
	if err != nil {
		t.Fatalf("LogSet() error = %v", err)
	}
	if sub.ExerciseID != "db-press" || sub.OriginalExerciseID != "bench" {
		t.Errorf("substituted set = %+v", sub)
	}
}

func TestRemoveSet(t *testing.T) {
	m := newManager(testkit.NewMemStore())
	s := m.Start("tpl-1", "gym-1")
	set, _ := m.LogSet(s.WorkoutID, SetInput{ExerciseID: "bench", WeightKg: 60, Reps: 8})

	if err := m.RemoveSet(s.WorkoutID, set.SetID); err != nil {
		t.Fatalf("RemoveSet() error = %v", err)
	}
	got, _ := m.Get(s.WorkoutID)
	if len(got.Sets) != 0 {
		t.Errorf("session still has %d sets", len(got.Sets))
	}

	if err := m.RemoveSet(s.WorkoutID, "missing"); err == nil {
		t.Error("RemoveSet(missing) error = nil, want error")
	}
}

func TestReorderSets(t *testing.T) {
	m := newManager(testkit.NewMemStore())
	s := m.Start("tpl-1", "gym-1")
	a, _ := m.LogSet(s.WorkoutID, SetInput{ExerciseID: "bench", WeightKg: 60, Reps: 8})
	b, _ := m.LogSet(s.WorkoutID, SetInput{ExerciseID: "bench", WeightKg: 65, Reps: 6})

	if err := m.ReorderSets(s.WorkoutID, []string{b.SetID, a.SetID}); err != nil {
		t.Fatalf("ReorderSets() error = %v", err)
	}
	got, _ := m.Get(s.WorkoutID)
	if got.Sets[0].SetID != b.SetID || got.Sets[1].SetID != a.SetID {
		t.Errorf("sets = %v, want reversed order", got.Sets)
	}

	if err := m.ReorderSets(s.WorkoutID, []string{a.SetID}); err == nil {
		t.Error("ReorderSets() with missing ids error = nil, want error")
	}
	if err := m.ReorderSets(s.WorkoutID, []string{a.SetID, "unknown"}); err == nil {
		t.Error("ReorderSets() with unknown id error = nil, want error")
	}
	if err := m.ReorderSets("missing", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReorderSets(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCompleteFlattensInOrder(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewMemStore()
	m := newManager(store)

	s := m.Start("tpl-1", "gym-1")
	custom, err := m.AddCustomExercise(s.WorkoutID, CustomExercise{Name: "Cable Fly", MuscleGroup: "Chest", GymID: "gym-1"})
	if err != nil {
		t.Fatalf("AddCustomExercise() error = %v", err)
	}
	if _, err := m.LogSet(s.WorkoutID, SetInput{ExerciseID: "bench", WeightKg: 60, Reps: 8}); err != nil {
		t.Fatalf("LogSet() error = %v", err)
	}
	if _, err := m.LogSet(s.WorkoutID, SetInput{ExerciseID: custom.ExerciseID, WeightKg: 15, Reps: 12}); err != nil {
		t.Fatalf("LogSet() error = %v", err)
	}

	events, err := m.Complete(ctx, s.WorkoutID)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	wantTypes := []event.Type{
		event.TypeExerciseCreated,
		event.TypeWorkoutStarted,
		event.TypeSetLogged,
		event.TypeSetLogged,
		event.TypeWorkoutCompleted,
	}
	if len(events) != len(wantTypes) {
		t.Fatalf("got %d events, want %d", len(events), len(wantTypes))
	}
	for i, want := range wantTypes {
		if events[i].Type != want {
			t.Errorf("event %d type = %q, want %q", i, events[i].Type, want)
		}
	}

	// Everything landed in the store in the same order.
	count, _ := store.EventCount(ctx)
	if count != int64(len(wantTypes)) {
		t.Errorf("store has %d events, want %d", count, len(wantTypes))
	}

	// The session is gone after completion.
	if _, err := m.Get(s.WorkoutID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Complete error = %v, want ErrNotFound", err)
	}
	if _, err := m.Complete(ctx, s.WorkoutID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Complete() error = %v, want ErrNotFound", err)
	}
}

func TestCancelWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewMemStore()
	m := newManager(store)

	s := m.Start("tpl-1", "gym-1")
	if _, err := m.LogSet(s.WorkoutID, SetInput{ExerciseID: "bench", WeightKg: 60, Reps: 8}); err != nil {
		t.Fatalf("LogSet() error = %v", err)
	}

	if err := m.Cancel(s.WorkoutID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	count, _ := store.EventCount(ctx)
	if count != 0 {
		t.Errorf("store has %d events after cancel, want 0", count)
	}
	if err := m.Cancel(s.WorkoutID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Cancel() error = %v, want ErrNotFound", err)
	}
}

func TestCompleteSurvivesAppendFailure(t *testing.T) {
	m := NewManager(failingAppender{})
	m.SetClock(func() time.Time { return fixed })
	s := m.Start("tpl-1", "gym-1")

	if _, err := m.Complete(context.Background(), s.WorkoutID); err == nil {
		t.Fatal("Complete() error = nil, want append failure")
	}
	// The buffer is retained so the user can retry.
	if _, err := m.Get(s.WorkoutID); err != nil {
		t.Errorf("session discarded after failed append: %v", err)
	}
}

type failingAppender struct{}

func (failingAppender) Append(context.Context, storage.Draft) (event.Event, error) {
	return event.Event{}, storage.ErrStorageUnavailable
}

func (failingAppender) AppendBatch(context.Context, []storage.Draft) ([]event.Event, error) {
	return nil, storage.ErrStorageUnavailable
}
