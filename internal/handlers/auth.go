package handlers

import (
	"net/http"

	"github.com/evofit/evofit-backend/internal/models"
	"github.com/evofit/evofit-backend/pkg/utils"
)

// Signup registers a user and returns the user with a fresh token.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.svc.Accounts.Signup(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.svc.Accounts.Login(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Me returns the caller's profile. A token for a deleted user is a 404.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Accounts.Me(r.Context(), currentUser(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteMe removes the caller's account and everything it owns.
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Accounts.DeleteAccount(r.Context(), currentUser(r)); err != nil {
		h.respondError(w, r, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "Account deleted")
}
