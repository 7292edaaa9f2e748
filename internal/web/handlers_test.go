package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ironlog/ironlog/internal/app"
	"github.com/ironlog/ironlog/internal/event"
	"github.com/ironlog/ironlog/internal/state"
	"github.com/ironlog/ironlog/internal/testkit"
)

var now = time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T) (*http.ServeMux, *testkit.MemStore) {
	t.Helper()
	store := testkit.NewMemStore()
	prefs, err := state.Load(context.Background(), store)
	if err != nil {
		t.Fatalf("state.Load() error = %v", err)
	}
	application := app.New(store, prefs)
	application.SetClock(func() time.Time { return now })
	return New(application).Routes(), store
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestWriteEventEndpoint(t *testing.T) {
	mux, _ := newTestHandler(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/events", map[string]any{
		"event_type": "gym_created",
		"payload":    map[string]any{"gym_id": "gym-1", "name": "Home"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["_event_id"] == "" || resp["event_type"] != "gym_created" {
		t.Errorf("response = %v", resp)
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/events/count", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("count status = %d", rec.Code)
	}
	var count map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &count); err != nil {
		t.Fatalf("decode count: %v", err)
	}
	if count["count"] != 1 {
		t.Errorf("count = %d, want 1", count["count"])
	}
}

func TestWriteEventRejectsBadInput(t *testing.T) {
	mux, _ := newTestHandler(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/events", map[string]any{
		"event_type": "unknown_thing",
		"payload":    map[string]any{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown type status = %d, want 400", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader("not json"))
	raw := httptest.NewRecorder()
	mux.ServeHTTP(raw, req)
	if raw.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", raw.Code)
	}
}

func TestEntityEndpoints(t *testing.T) {
	mux, store := newTestHandler(t)
	store.MustAppend(event.TypeExerciseCreated, event.ExerciseUpsertPayload{
		ExerciseID: "ex-1", Name: "Bench", MuscleGroup: "Chest",
	}, now.AddDate(0, 0, -1))
	store.MustAppend(event.TypeTemplateCreated, event.TemplateUpsertPayload{
		TemplateID: "tpl-1", Name: "Push",
	}, now.AddDate(0, 0, -1))

	rec := doJSON(t, mux, http.MethodGet, "/api/exercises", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("exercises status = %d", rec.Code)
	}
	var exercises []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &exercises); err != nil {
		t.Fatalf("decode exercises: %v", err)
	}
	if len(exercises) != 1 {
		t.Errorf("exercises = %v", exercises)
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/templates", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("templates status = %d", rec.Code)
	}
}

func TestStatsEndpoints(t *testing.T) {
	mux, store := newTestHandler(t)
	store.MustAppend(event.TypeExerciseCreated, event.ExerciseUpsertPayload{
		ExerciseID: "ex-1", Name: "Bench", MuscleGroup: "Chest", IsGlobal: true,
	}, now.AddDate(0, 0, -30))
	at := now.AddDate(0, 0, -2)
	store.MustAppend(event.TypeWorkoutStarted, event.WorkoutStartedPayload{
		WorkoutID: "w-1", GymID: "gym-1", StartedAt: at,
	}, at)
	store.MustAppend(event.TypeSetLogged, event.SetLoggedPayload{
		WorkoutID: "w-1", SetID: "s-1", ExerciseID: "ex-1", OriginalExerciseID: "ex-1",
		WeightKg: 60, Reps: 8, LoggedAt: at,
	}, at)
	done := at.Add(time.Hour)
	store.MustAppend(event.TypeWorkoutCompleted, event.WorkoutCompletedPayload{
		WorkoutID: "w-1", CompletedAt: done,
	}, done)

	rec := doJSON(t, mux, http.MethodGet, "/api/stats/summary?days=30", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d, body %s", rec.Code, rec.Body)
	}
	var summary map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary["completed_workouts"].(float64) != 1 {
		t.Errorf("summary = %v", summary)
	}

	for _, path := range []string{
		"/api/stats/progression",
		"/api/stats/volume",
		"/api/stats/weekly",
		"/api/stats/exercises/ex-1/progress",
	} {
		rec := doJSON(t, mux, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, body %s", path, rec.Code, rec.Body)
		}
	}
}

func TestComparisonEndpointRequiresIDs(t *testing.T) {
	mux, _ := newTestHandler(t)
	for _, query := range []string{"", "?ids=only-one"} {
		rec := doJSON(t, mux, http.MethodGet, "/api/stats/comparison"+query, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("comparison%s status = %d, want 400", query, rec.Code)
		}
	}
}

func TestBackupEndpoints(t *testing.T) {
	mux, store := newTestHandler(t)
	store.MustAppend(event.TypeGymCreated, event.GymUpsertPayload{
		GymID: "gym-1", Name: "Home",
	}, now.AddDate(0, 0, -1))

	rec := doJSON(t, mux, http.MethodGet, "/api/backup/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "ironlog-backup-") {
		t.Errorf("Content-Disposition = %q", got)
	}
	exported := rec.Body.Bytes()
	if len(exported) == 0 {
		t.Fatal("export body is empty")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/backup/import", bytes.NewReader(exported))
	importRec := httptest.NewRecorder()
	mux.ServeHTTP(importRec, req)
	if importRec.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", importRec.Code, importRec.Body)
	}
	var result map[string]int
	if err := json.Unmarshal(importRec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode import result: %v", err)
	}
	if result["imported"] != 0 || result["skipped"] != 1 {
		t.Errorf("import result = %v, want idempotent skip", result)
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	mux, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/api/backup/import", strings.NewReader("not a backup"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for an invalid file", rec.Code)
	}
}

func TestWorkoutSessionFlow(t *testing.T) {
	mux, store := newTestHandler(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/workouts", map[string]any{
		"template_id": "tpl-1", "gym_id": "gym-1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d, body %s", rec.Code, rec.Body)
	}
	var started map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &started); err != nil {
		t.Fatalf("decode start: %v", err)
	}
	workoutID := started["workout_id"].(string)
	if workoutID == "" {
		t.Fatal("no workout id assigned")
	}

	rec = doJSON(t, mux, http.MethodPost, "/api/workouts/"+workoutID+"/sets", map[string]any{
		"exercise_id": "ex-1", "weight_kg": 60, "reps": 8,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("log set status = %d, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, mux, http.MethodPost, "/api/workouts/"+workoutID+"/sets", map[string]any{
		"exercise_id": "ex-1", "weight_kg": 65, "reps": 6,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("log second set status = %d", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/workouts/"+workoutID, nil)
	var withSets map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &withSets); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	sets := withSets["sets"].([]any)
	firstID := sets[0].(map[string]any)["set_id"].(string)
	secondID := sets[1].(map[string]any)["set_id"].(string)

	rec = doJSON(t, mux, http.MethodPut, "/api/workouts/"+workoutID+"/sets/order", map[string]any{
		"set_ids": []string{secondID, firstID},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("reorder status = %d, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, mux, http.MethodPost, "/api/workouts/"+workoutID+"/substitutions", map[string]any{
		"original_exercise_id": "ex-1", "replacement_exercise_id": "ex-2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("substitute status = %d", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/workouts/"+workoutID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var snapshot map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	ordered := snapshot["sets"].([]any)
	if len(ordered) != 2 {
		t.Fatalf("snapshot sets = %v", ordered)
	}
	if got := ordered[0].(map[string]any)["set_id"].(string); got != secondID {
		t.Errorf("first set after reorder = %q, want %q", got, secondID)
	}

	rec = doJSON(t, mux, http.MethodPost, "/api/workouts/"+workoutID+"/complete", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete status = %d, body %s", rec.Code, rec.Body)
	}
	var completed map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &completed); err != nil {
		t.Fatalf("decode complete: %v", err)
	}
	// workout_started + 2 set_logged + workout_completed.
	if completed["events_written"] != 4 {
		t.Errorf("events_written = %d, want 4", completed["events_written"])
	}
	count, _ := store.EventCount(context.Background())
	if count != 4 {
		t.Errorf("store has %d events, want 4", count)
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/workouts/"+workoutID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after complete status = %d, want 404", rec.Code)
	}
}

func TestCancelWorkoutWritesNothing(t *testing.T) {
	mux, store := newTestHandler(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/workouts", map[string]any{"template_id": "tpl-1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d", rec.Code)
	}
	var started map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &started); err != nil {
		t.Fatalf("decode start: %v", err)
	}
	workoutID := started["workout_id"].(string)

	req := httptest.NewRequest(http.MethodDelete, "/api/workouts/"+workoutID, nil)
	cancelRec := httptest.NewRecorder()
	mux.ServeHTTP(cancelRec, req)
	if cancelRec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d", cancelRec.Code)
	}

	count, _ := store.EventCount(context.Background())
	if count != 0 {
		t.Errorf("store has %d events after cancel, want 0", count)
	}
}

func TestUnknownWorkoutReturns404(t *testing.T) {
	mux, _ := newTestHandler(t)
	rec := doJSON(t, mux, http.MethodGet, "/api/workouts/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
