// Package app exposes the query surface consumed by the UI: event writes,
// entity projections, analytics reads and backup transfer. Every read is
// recomputed from the event log; nothing is materialized between calls.
package app

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ironlog/ironlog/internal/analytics"
	"github.com/ironlog/ironlog/internal/backup"
	"github.com/ironlog/ironlog/internal/event"
	"github.com/ironlog/ironlog/internal/facts"
	"github.com/ironlog/ironlog/internal/projection"
	"github.com/ironlog/ironlog/internal/session"
	"github.com/ironlog/ironlog/internal/state"
	"github.com/ironlog/ironlog/internal/storage"
)

// Default trailing windows, in days.
const (
	defaultSummaryDays     = 30
	defaultProgressionDays = 90
	defaultVolumeDays      = 28
	defaultProgressDays    = 90
	defaultComparisonDays  = 90
)

// App is the application facade.
type App struct {
	store    storage.EventStore
	proj     *projection.Engine
	deriver  *facts.Deriver
	prefs    *state.Store
	sessions *session.Manager
	tracer   trace.Tracer
	now      func() time.Time
}

// New assembles the facade over an event store and rehydrated preferences.
func New(store storage.EventStore, prefs *state.Store) *App {
	proj := projection.New(store)
	return &App{
		store:    store,
		proj:     proj,
		deriver:  facts.New(store, proj),
		prefs:    prefs,
		sessions: session.NewManager(store),
		tracer:   otel.Tracer("ironlog/app"),
		now:      time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (a *App) SetClock(now func() time.Time) {
	a.now = now
}

// Sessions returns the active-workout manager.
func (a *App) Sessions() *session.Manager {
	return a.sessions
}

// Preferences returns the injected application-state store.
func (a *App) Preferences() *state.Store {
	return a.prefs
}

// WriteEvent validates and appends one event.
func (a *App) WriteEvent(ctx context.Context, eventType string, payload json.RawMessage) (event.Event, error) {
	ctx, span := a.tracer.Start(ctx, "app.WriteEvent")
	defer span.End()

	t := event.Type(strings.TrimSpace(eventType))
	if !t.IsValid() {
		return event.Event{}, inputErrorf("event type is required")
	}
	if !t.Known() {
		return event.Event{}, inputErrorf("unknown event type %q", t)
	}
	if _, err := event.Decode(event.Event{Type: t, Payload: payload}); err != nil {
		return event.Event{}, inputErrorf("decode payload: %v", err)
	}
	return a.store.Append(ctx, storage.Draft{Type: t, Payload: payload})
}

// Exercises lists projected exercises ordered by name.
func (a *App) Exercises(ctx context.Context) ([]projection.Exercise, error) {
	return a.proj.Exercises(ctx)
}

// Gyms lists projected gyms ordered by name.
func (a *App) Gyms(ctx context.Context) ([]projection.Gym, error) {
	return a.proj.Gyms(ctx)
}

// Templates lists projected templates with archive status.
func (a *App) Templates(ctx context.Context) ([]projection.Template, error) {
	return a.proj.Templates(ctx)
}

// Rotations lists projected rotations ordered by name.
func (a *App) Rotations(ctx context.Context) ([]projection.Rotation, error) {
	return a.proj.Rotations(ctx)
}

// EventCount reports the size of the event log.
func (a *App) EventCount(ctx context.Context) (int64, error) {
	return a.store.EventCount(ctx)
}

// SummaryStats aggregates the trailing days (default 30).
func (a *App) SummaryStats(ctx context.Context, days int) (analytics.SummaryStats, error) {
	ctx, span := a.tracer.Start(ctx, "app.SummaryStats")
	defer span.End()

	if days <= 0 {
		days = defaultSummaryDays
	}
	fcts, err := a.deriver.Facts(ctx)
	if err != nil {
		return analytics.SummaryStats{}, err
	}
	workouts, err := a.deriver.Workouts(ctx)
	if err != nil {
		return analytics.SummaryStats{}, err
	}
	return analytics.Summary(fcts, workouts, a.now().UTC(), days), nil
}

// ProgressionStatus classifies every exercise with logged sets.
func (a *App) ProgressionStatus(ctx context.Context, days int) ([]analytics.ExerciseProgression, error) {
	ctx, span := a.tracer.Start(ctx, "app.ProgressionStatus")
	defer span.End()

	fcts, err := a.deriver.Facts(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.ProgressionAll(fcts, a.progressionConfig(days)), nil
}

// VolumeByMuscleGroup averages weekly sets per muscle group, back-filling
// every known group.
func (a *App) VolumeByMuscleGroup(ctx context.Context, days int) ([]analytics.MuscleGroupVolume, error) {
	ctx, span := a.tracer.Start(ctx, "app.VolumeByMuscleGroup")
	defer span.End()

	if days <= 0 {
		days = defaultVolumeDays
	}
	fcts, err := a.deriver.Facts(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.VolumeByMuscleGroup(fcts, a.now().UTC(), days, a.prefs.ZoneBounds()), nil
}

// ExerciseProgress returns the per-session series for one exercise.
func (a *App) ExerciseProgress(ctx context.Context, exerciseID string, days int) ([]analytics.ProgressPoint, error) {
	ctx, span := a.tracer.Start(ctx, "app.ExerciseProgress")
	defer span.End()

	if days <= 0 {
		days = defaultProgressDays
	}
	fcts, err := a.deriver.Facts(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.ExerciseProgress(fcts, exerciseID, a.now().UTC(), days), nil
}

// WeeklyComparison contrasts the trailing 7 days with the preceding week
// for every exercise active this week.
func (a *App) WeeklyComparison(ctx context.Context) ([]analytics.WeeklyComparison, error) {
	ctx, span := a.tracer.Start(ctx, "app.WeeklyComparison")
	defer span.End()

	fcts, err := a.deriver.Facts(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.WeeklyComparisons(fcts, a.now().UTC()), nil
}

// ComparisonStats batches stats for 2-N exercises in one fact pass. The
// progression query runs once here and its results are merged in, never
// recomputed per exercise.
func (a *App) ComparisonStats(ctx context.Context, exerciseIDs []string, days int) ([]analytics.ComparisonEntry, error) {
	ctx, span := a.tracer.Start(ctx, "app.ComparisonStats")
	defer span.End()

	if len(exerciseIDs) < 2 {
		return nil, inputErrorf("comparison requires at least 2 exercise ids")
	}
	if days <= 0 {
		days = defaultComparisonDays
	}
	fcts, err := a.deriver.Facts(ctx)
	if err != nil {
		return nil, err
	}
	progression := make(map[string]analytics.ExerciseProgression)
	for _, p := range analytics.ProgressionAll(fcts, a.progressionConfig(days)) {
		progression[p.ExerciseID] = p
	}
	return analytics.ComparisonStats(fcts, exerciseIDs, a.now().UTC(), days, progression), nil
}

// ExportBackup streams the full event log to w and returns the
// conventional filename for the export.
func (a *App) ExportBackup(ctx context.Context, w io.Writer) (string, error) {
	ctx, span := a.tracer.Start(ctx, "app.ExportBackup")
	defer span.End()

	exportedAt := a.now().UTC()
	if err := backup.Export(ctx, a.store, w, exportedAt); err != nil {
		return "", err
	}
	return backup.Filename(exportedAt), nil
}

// ImportBackup merges a backup file into the log, skipping duplicates.
func (a *App) ImportBackup(ctx context.Context, r io.Reader) (backup.Result, error) {
	ctx, span := a.tracer.Start(ctx, "app.ImportBackup")
	defer span.End()

	return backup.Import(ctx, a.store, r)
}

func (a *App) progressionConfig(days int) analytics.ProgressionConfig {
	if days <= 0 {
		days = defaultProgressionDays
	}
	return analytics.ProgressionConfig{
		Now:           a.now().UTC(),
		WindowDays:    days,
		DropThreshold: a.prefs.Preferences().DropThreshold,
	}
}
