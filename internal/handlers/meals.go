package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evofit/evofit-backend/internal/models"
	"github.com/evofit/evofit-backend/pkg/utils"
)

func (h *Handler) ListMeals(w http.ResponseWriter, r *http.Request) {
	meals, err := h.svc.Meals.List(r.Context(), currentUser(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meals)
}

func (h *Handler) ListTodayMeals(w http.ResponseWriter, r *http.Request) {
	meals, err := h.svc.Meals.ListToday(r.Context(), currentUser(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meals)
}

func (h *Handler) CreateMeal(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMealRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	meal, err := h.svc.Meals.Create(r.Context(), currentUser(r), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meal)
}

// DeleteMeal answers the same way whether or not the caller owned the meal.
func (h *Handler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Meals.Delete(r.Context(), currentUser(r), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "Meal deleted")
}
