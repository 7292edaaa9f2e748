// Package web serves the JSON query surface consumed by the UI process.
package web

import (
	"net/http"

	"github.com/ironlog/ironlog/internal/app"
)

// Handler wires the application facade to HTTP routes.
type Handler struct {
	app *app.App
}

// New creates a handler over the facade.
func New(application *app.App) *Handler {
	return &Handler{app: application}
}

// Routes registers every API route on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/events", h.handleWriteEvent)
	mux.HandleFunc("GET /api/events/count", h.handleEventCount)

	mux.HandleFunc("GET /api/exercises", h.handleExercises)
	mux.HandleFunc("GET /api/gyms", h.handleGyms)
	mux.HandleFunc("GET /api/templates", h.handleTemplates)
	mux.HandleFunc("GET /api/rotations", h.handleRotations)

	mux.HandleFunc("GET /api/stats/summary", h.handleSummary)
	mux.HandleFunc("GET /api/stats/progression", h.handleProgression)
	mux.HandleFunc("GET /api/stats/volume", h.handleVolume)
	mux.HandleFunc("GET /api/stats/weekly", h.handleWeekly)
	mux.HandleFunc("GET /api/stats/comparison", h.handleComparison)
	mux.HandleFunc("GET /api/stats/exercises/{id}/progress", h.handleExerciseProgress)

	mux.HandleFunc("GET /api/backup/export", h.handleExport)
	mux.HandleFunc("POST /api/backup/import", h.handleImport)

	mux.HandleFunc("POST /api/workouts", h.handleStartWorkout)
	mux.HandleFunc("GET /api/workouts/{id}", h.handleGetWorkout)
	mux.HandleFunc("POST /api/workouts/{id}/sets", h.handleLogSet)
	mux.HandleFunc("PUT /api/workouts/{id}/sets/order", h.handleReorderSets)
	mux.HandleFunc("POST /api/workouts/{id}/substitutions", h.handleSubstitute)
	mux.HandleFunc("POST /api/workouts/{id}/exercises", h.handleCustomExercise)
	mux.HandleFunc("POST /api/workouts/{id}/complete", h.handleCompleteWorkout)
	mux.HandleFunc("DELETE /api/workouts/{id}", h.handleCancelWorkout)

	return mux
}
