package sqlite

import (
	"context"
	"testing"
)

func TestAppStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if _, ok, err := store.LoadAppState(ctx); err != nil || ok {
		t.Fatalf("LoadAppState() on fresh store = ok %v, err %v; want absent", ok, err)
	}

	blob := []byte(`{"drop_threshold":0.15,"last_gym_id":"gym-1"}`)
	if err := store.SaveAppState(ctx, blob); err != nil {
		t.Fatalf("SaveAppState() error = %v", err)
	}

	got, ok, err := store.LoadAppState(ctx)
	if err != nil {
		t.Fatalf("LoadAppState() error = %v", err)
	}
	if !ok || string(got) != string(blob) {
		t.Errorf("LoadAppState() = %q, ok %v", got, ok)
	}

	// A second save replaces the single row.
	next := []byte(`{"drop_threshold":0.2}`)
	if err := store.SaveAppState(ctx, next); err != nil {
		t.Fatalf("SaveAppState() error = %v", err)
	}
	got, _, err = store.LoadAppState(ctx)
	if err != nil {
		t.Fatalf("LoadAppState() error = %v", err)
	}
	if string(got) != string(next) {
		t.Errorf("LoadAppState() after overwrite = %q", got)
	}
}
