package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/evofit/evofit-backend/internal/services"
)

type nutritionSearchRequest struct {
	Query string `json:"query"`
}

type nutritionSearchResponse struct {
	Foods []json.RawMessage `json:"foods"`
}

// SearchNutrition proxies a free-text query to the nutrition provider.
func (h *Handler) SearchNutrition(w http.ResponseWriter, r *http.Request) {
	var req nutritionSearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if h.svc.Nutrition == nil {
		h.respondError(w, r, services.ErrLookupFailed)
		return
	}
	foods, err := h.svc.Nutrition.Search(r.Context(), req.Query)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nutritionSearchResponse{Foods: foods})
}
