// Package state holds the explicit application-state object: user
// preferences that survive restarts. The store is constructed at process
// start, persisted on every mutation and rehydrated from storage — it is
// injected where needed, never a package-level singleton.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ironlog/ironlog/internal/analytics"
	"github.com/ironlog/ironlog/internal/storage"
)

// Preferences are the persisted user-tunable settings.
type Preferences struct {
	// DropThreshold is the fractional drop that classifies regression.
	DropThreshold float64 `json:"drop_threshold"`
	// LastGymID is the most recently selected gym.
	LastGymID string `json:"last_gym_id,omitempty"`
	// ZoneBounds overrides the default volume-zone boundaries per muscle
	// group.
	ZoneBounds map[string]analytics.ZoneBounds `json:"zone_bounds,omitempty"`
}

func defaultPreferences() Preferences {
	return Preferences{DropThreshold: analytics.DefaultDropThreshold}
}

// Store is the injected application-state object.
type Store struct {
	mu      sync.RWMutex
	prefs   Preferences
	backend storage.AppStateStore
}

// Load rehydrates the state from storage, falling back to defaults on a
// fresh store.
func Load(ctx context.Context, backend storage.AppStateStore) (*Store, error) {
	s := &Store{prefs: defaultPreferences(), backend: backend}
	blob, ok, err := backend.LoadAppState(ctx)
	if err != nil {
		return nil, fmt.Errorf("load app state: %w", err)
	}
	if ok {
		if err := json.Unmarshal(blob, &s.prefs); err != nil {
			return nil, fmt.Errorf("decode app state: %w", err)
		}
		if s.prefs.DropThreshold <= 0 {
			s.prefs.DropThreshold = analytics.DefaultDropThreshold
		}
	}
	return s, nil
}

// Preferences returns a copy of the current preferences.
func (s *Store) Preferences() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// Update applies fn to the preferences and persists the result before
// returning. Every mutation goes through here.
func (s *Store) Update(ctx context.Context, fn func(*Preferences)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.prefs
	fn(&next)
	blob, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode app state: %w", err)
	}
	if err := s.backend.SaveAppState(ctx, blob); err != nil {
		return err
	}
	s.prefs = next
	return nil
}

// ZoneBounds merges preference overrides over the default volume-zone
// boundaries.
func (s *Store) ZoneBounds() map[string]analytics.ZoneBounds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bounds := analytics.DefaultZoneBounds()
	for group, b := range s.prefs.ZoneBounds {
		bounds[group] = b
	}
	return bounds
}
