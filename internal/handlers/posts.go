package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evofit/evofit-backend/internal/models"
)

// ListPosts returns the global feed, newest first.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	feed, err := h.svc.Posts.Feed(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	post, err := h.svc.Posts.Create(r.Context(), currentUser(r), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.Posts.Like(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}
