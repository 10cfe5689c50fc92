package handlers

import (
	"net/http"

	"github.com/evofit/evofit-backend/internal/models"
)

func (h *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := h.svc.Goals.Get(r.Context(), currentUser(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// UpdateGoal applies a partial update; omitted fields keep their value.
func (h *Handler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	var update models.GoalUpdate
	if !decodeJSON(w, r, &update) {
		return
	}
	goal, err := h.svc.Goals.Update(r.Context(), currentUser(r), update)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}
