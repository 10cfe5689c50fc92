package handlers

import (
	"net/http"

	"github.com/evofit/evofit-backend/internal/services"
	"github.com/evofit/evofit-backend/pkg/utils"
)

type UploadResponse struct {
	URL string `json:"url"`
}

// UploadImage stores the multipart "file" field and returns its URL for use
// as a post's imageUrl.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Images.Enabled() {
		h.respondError(w, r, services.ErrUploadUnavailable)
		return
	}

	// Leave room for the multipart envelope around a maximum-size file.
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxImageBytes+1<<20)
	if err := r.ParseMultipartForm(services.MaxImageBytes); err != nil {
		utils.WriteMessage(w, http.StatusBadRequest, "Failed to parse form: file must be at most 10MB")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		utils.WriteMessage(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	url, err := h.svc.Images.Upload(r.Context(), file)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{URL: url})
}
