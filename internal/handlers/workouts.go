package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evofit/evofit-backend/internal/models"
	"github.com/evofit/evofit-backend/pkg/utils"
)

func (h *Handler) ListWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts, err := h.svc.Workouts.List(r.Context(), currentUser(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (h *Handler) ListTodayWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts, err := h.svc.Workouts.ListToday(r.Context(), currentUser(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (h *Handler) CreateWorkout(w http.ResponseWriter, r *http.Request) {
	var req models.CreateWorkoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	workout, err := h.svc.Workouts.Create(r.Context(), currentUser(r), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (h *Handler) DeleteWorkout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Workouts.Delete(r.Context(), currentUser(r), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "Workout deleted")
}
