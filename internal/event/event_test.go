package event

import "testing"

func TestTypeIsValid(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want bool
	}{
		{name: "known type", typ: TypeSetLogged, want: true},
		{name: "unknown but non-empty", typ: Type("future_event"), want: true},
		{name: "empty", typ: Type(""), want: false},
		{name: "whitespace only", typ: Type("   "), want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.typ.IsValid(); got != tc.want {
				t.Errorf("IsValid() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTypeIsDeletion(t *testing.T) {
	deletions := []Type{TypeExerciseDeleted, TypeGymDeleted, TypeTemplateDeleted, TypeRotationDeleted}
	for _, typ := range deletions {
		if !typ.IsDeletion() {
			t.Errorf("%s: IsDeletion() = false, want true", typ)
		}
	}

	// Archival hides a template but does not delete it.
	if TypeTemplateArchived.IsDeletion() {
		t.Error("template_archived: IsDeletion() = true, want false")
	}
	if TypeSetLogged.IsDeletion() {
		t.Error("set_logged: IsDeletion() = true, want false")
	}
}

func TestTypeKnown(t *testing.T) {
	known := []Type{
		TypeExerciseCreated, TypeExerciseUpdated, TypeExerciseDeleted,
		TypeGymCreated, TypeGymUpdated, TypeGymDeleted,
		TypeTemplateCreated, TypeTemplateUpdated, TypeTemplateDeleted, TypeTemplateArchived,
		TypeRotationCreated, TypeRotationUpdated, TypeRotationDeleted,
		TypeWorkoutStarted, TypeSetLogged, TypeWorkoutCompleted,
	}
	for _, typ := range known {
		if !typ.Known() {
			t.Errorf("%s: Known() = false, want true", typ)
		}
	}

	if Type("schema_v2_event").Known() {
		t.Error("unknown type reported as known")
	}
}
