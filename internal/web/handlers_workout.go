package web

import (
	"net/http"

	"github.com/ironlog/ironlog/internal/session"
)

type startWorkoutRequest struct {
	TemplateID string `json:"template_id"`
	GymID      string `json:"gym_id"`
}

func (h *Handler) handleStartWorkout(w http.ResponseWriter, r *http.Request) {
	var req startWorkoutRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	s := h.app.Sessions().Start(req.TemplateID, req.GymID)
	writeJSON(w, http.StatusCreated, s)
}

func (h *Handler) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	s, err := h.app.Sessions().Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

type logSetRequest struct {
	ExerciseID         string  `json:"exercise_id"`
	OriginalExerciseID string  `json:"original_exercise_id"`
	WeightKg           float64 `json:"weight_kg"`
	Reps               int     `json:"reps"`
	RIR                *int    `json:"rir,omitempty"`
}

func (h *Handler) handleLogSet(w http.ResponseWriter, r *http.Request) {
	var req logSetRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	set, err := h.app.Sessions().LogSet(r.PathValue("id"), session.SetInput{
		ExerciseID:         req.ExerciseID,
		OriginalExerciseID: req.OriginalExerciseID,
		WeightKg:           req.WeightKg,
		Reps:               req.Reps,
		RIR:                req.RIR,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

type reorderRequest struct {
	SetIDs []string `json:"set_ids"`
}

func (h *Handler) handleReorderSets(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if err := h.app.Sessions().ReorderSets(r.PathValue("id"), req.SetIDs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type substituteRequest struct {
	OriginalExerciseID    string `json:"original_exercise_id"`
	ReplacementExerciseID string `json:"replacement_exercise_id"`
}

func (h *Handler) handleSubstitute(w http.ResponseWriter, r *http.Request) {
	var req substituteRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if err := h.app.Sessions().Substitute(r.PathValue("id"), req.OriginalExerciseID, req.ReplacementExerciseID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleCustomExercise(w http.ResponseWriter, r *http.Request) {
	var req session.CustomExercise
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	custom, err := h.app.Sessions().AddCustomExercise(r.PathValue("id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, custom)
}

func (h *Handler) handleCompleteWorkout(w http.ResponseWriter, r *http.Request) {
	events, err := h.app.Sessions().Complete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"events_written": len(events)})
}

func (h *Handler) handleCancelWorkout(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Sessions().Cancel(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
