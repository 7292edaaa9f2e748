package web

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
)

func daysParam(r *http.Request) int {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days < 0 {
		return 0
	}
	return days
}

type writeEventRequest struct {
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
}

func (h *Handler) handleWriteEvent(w http.ResponseWriter, r *http.Request) {
	var req writeEventRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	evt, err := h.app.WriteEvent(r.Context(), req.EventType, req.Payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"_event_id":   evt.ID,
		"_created_at": evt.CreatedAt,
		"event_type":  evt.Type,
	})
}

func (h *Handler) handleEventCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.app.EventCount(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *Handler) handleExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := h.app.Exercises(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (h *Handler) handleGyms(w http.ResponseWriter, r *http.Request) {
	gyms, err := h.app.Gyms(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gyms)
}

func (h *Handler) handleTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.app.Templates(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *Handler) handleRotations(w http.ResponseWriter, r *http.Request) {
	rotations, err := h.app.Rotations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rotations)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	stats, err := h.app.SummaryStats(r.Context(), daysParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleProgression(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.app.ProgressionStatus(r.Context(), daysParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (h *Handler) handleVolume(w http.ResponseWriter, r *http.Request) {
	volumes, err := h.app.VolumeByMuscleGroup(r.Context(), daysParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, volumes)
}

func (h *Handler) handleWeekly(w http.ResponseWriter, r *http.Request) {
	comparisons, err := h.app.WeeklyComparison(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comparisons)
}

func (h *Handler) handleComparison(w http.ResponseWriter, r *http.Request) {
	ids := strings.Split(r.URL.Query().Get("ids"), ",")
	var exerciseIDs []string
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			exerciseIDs = append(exerciseIDs, id)
		}
	}
	entries, err := h.app.ComparisonStats(r.Context(), exerciseIDs, daysParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleExerciseProgress(w http.ResponseWriter, r *http.Request) {
	points, err := h.app.ExerciseProgress(r.Context(), r.PathValue("id"), daysParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	filename, err := h.app.ExportBackup(r.Context(), &buf)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("write backup response: %v", err)
	}
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	defer func() { _ = r.Body.Close() }()
	result, err := h.app.ImportBackup(r.Context(), r.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
