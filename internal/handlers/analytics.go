package handlers

import (
	"net/http"
	"strconv"

	"github.com/evofit/evofit-backend/internal/services"
	"github.com/evofit/evofit-backend/pkg/utils"
)

// Summary returns the daily buckets for ?days= (default 7) with averages
// and today's progress against the goal.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	days := services.DefaultSummaryDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.WriteMessage(w, http.StatusBadRequest, "days must be a number")
			return
		}
		days = n
	}

	report, err := h.svc.Summary.Summary(r.Context(), currentUser(r), days)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
