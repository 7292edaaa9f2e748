package event

import (
	"strings"
	"testing"
)

func TestDecodeExerciseUpsert(t *testing.T) {
	evt := Event{
		ID:      "evt-1",
		Type:    TypeExerciseCreated,
		Payload: []byte(`{"exercise_id":"ex-1","name":"Bench Press","muscle_group":"Chest","is_global":true}`),
	}

	payload, err := Decode(evt)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	p, ok := payload.(ExerciseUpsertPayload)
	if !ok {
		t.Fatalf("Decode() returned %T, want ExerciseUpsertPayload", payload)
	}
	if p.ExerciseID != "ex-1" || p.Name != "Bench Press" || p.MuscleGroup != "Chest" || !p.IsGlobal {
		t.Errorf("unexpected payload: %+v", p)
	}
}

func TestDecodeSetLoggedDefaultsExerciseID(t *testing.T) {
	evt := Event{
		ID:      "evt-2",
		Type:    TypeSetLogged,
		Payload: []byte(`{"workout_id":"w-1","set_id":"s-1","original_exercise_id":"ex-1","weight_kg":60,"reps":8,"logged_at":"2024-03-04T17:00:00Z"}`),
	}

	payload, err := Decode(evt)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	p := payload.(SetLoggedPayload)
	if p.ExerciseID != "ex-1" {
		t.Errorf("ExerciseID = %q, want fallback to original_exercise_id", p.ExerciseID)
	}
	if p.WeightKg != 60 || p.Reps != 8 {
		t.Errorf("unexpected set values: %+v", p)
	}
}

func TestDecodeValidation(t *testing.T) {
	tests := []struct {
		name    string
		evt     Event
		wantErr string
	}{
		{
			name:    "empty payload",
			evt:     Event{ID: "e", Type: TypeGymCreated},
			wantErr: "empty payload",
		},
		{
			name:    "malformed json",
			evt:     Event{ID: "e", Type: TypeGymCreated, Payload: []byte(`{"gym_id":`)},
			wantErr: "decode payload",
		},
		{
			name:    "missing exercise id",
			evt:     Event{ID: "e", Type: TypeExerciseDeleted, Payload: []byte(`{}`)},
			wantErr: "missing required field exercise_id",
		},
		{
			name:    "missing set id",
			evt:     Event{ID: "e", Type: TypeSetLogged, Payload: []byte(`{"workout_id":"w","original_exercise_id":"ex"}`)},
			wantErr: "missing required field set_id",
		},
		{
			name:    "missing original exercise id",
			evt:     Event{ID: "e", Type: TypeSetLogged, Payload: []byte(`{"workout_id":"w","set_id":"s"}`)},
			wantErr: "missing required field original_exercise_id",
		},
		{
			name:    "unknown type",
			evt:     Event{ID: "e", Type: Type("mystery"), Payload: []byte(`{}`)},
			wantErr: "unknown event type",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.evt)
			if err == nil {
				t.Fatal("Decode() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Decode() error = %q, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rest := 90
	original := TemplateUpsertPayload{
		TemplateID: "tpl-1",
		Name:       "Full Body A",
		Exercises: []TemplateExercise{
			{ExerciseID: "ex-1", OrderIndex: 0, TargetRepsMin: 6, TargetRepsMax: 10, SuggestedSets: 3, RestSeconds: &rest},
			{ExerciseID: "ex-2", OrderIndex: 1, TargetRepsMin: 8, TargetRepsMax: 12, SuggestedSets: 3, ReplacementExerciseID: "ex-9"},
		},
	}

	raw, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, err := Decode(Event{ID: "e", Type: TypeTemplateCreated, Payload: raw})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	p := decoded.(TemplateUpsertPayload)
	if len(p.Exercises) != 2 {
		t.Fatalf("got %d exercises, want 2", len(p.Exercises))
	}
	if p.Exercises[0].RestSeconds == nil || *p.Exercises[0].RestSeconds != 90 {
		t.Error("rest_seconds not preserved")
	}
	if p.Exercises[1].ReplacementExerciseID != "ex-9" {
		t.Error("replacement_exercise_id not preserved")
	}
}
